// package pipeline implements the publishing state machine.
//
// The core abstraction is Engine, which drives one artifact through the
// publishing API: find-or-create an edit, upload the bundle, append a release
// to the target track, and commit. Stages run strictly in order and the
// first failing stage aborts the run; in particular a track update failure
// never proceeds to commit. Operations emit progress updates via channels
// for non-blocking status reporting to the CLI layer.
package pipeline
