package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
)

// API defines the publishing calls the engine depends on.
//
// This abstraction allows for easier testing and decoupling from the concrete
// [publisher.Client].
type API interface {
	Edit(ctx context.Context, packageName, editID string) (*publisher.Edit, error)
	InsertEdit(ctx context.Context, packageName, editID string) (*publisher.Edit, error)
	UploadBundle(ctx context.Context, packageName, editID string, r io.Reader, size int64) (*publisher.UploadedBundle, error)
	Tracks(ctx context.Context, packageName, editID string) ([]publisher.Track, error)
	UpdateTrack(ctx context.Context, packageName, editID string, track publisher.Track) (*publisher.Track, error)
	CommitEdit(ctx context.Context, packageName, editID string) (*publisher.Edit, error)
	AbandonEdit(ctx context.Context, packageName, editID string) error
}

// Options configures a single publishing run.
type Options struct {
	PackageName  string
	Track        string
	ArtifactPath string
}

// Result summarizes a completed publishing run.
type Result struct {
	EditID        string
	VersionCode   int64
	SHA256        string
	Track         string
	ReleaseName   string
	ReleaseCount  int
	ArtifactBytes int64
	Elapsed       time.Duration
}

// Engine drives the publishing state machine against an API.
type Engine struct {
	api    API
	policy publisher.EditPolicy
	logger *log.Logger
}

// NewEngine creates an Engine. A nil policy defaults to the fixed edit id
// and a nil logger to the shared default.
func NewEngine(api API, policy publisher.EditPolicy, logger *log.Logger) *Engine {
	if policy == nil {
		policy = publisher.NewFixedEdit("")
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{api: api, policy: policy, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run publishes one artifact: open edit, upload, update track, commit.
//
// Stages are strictly sequential and the first failure aborts the run; the
// partial Result accumulated so far is returned alongside the error. When the
// edit policy is non-reusable and the run created an edit, a failed run
// abandons that edit so fresh-id runs do not leak server-side state.
func (e *Engine) Run(ctx context.Context, opts Options, progress chan<- ProgressUpdate) (*Result, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: publisher API not initialized", shared.ErrInvalidConfig)
	}
	if opts.PackageName == "" {
		return nil, fmt.Errorf("%w: package name", shared.ErrMissingArgument)
	}
	if opts.Track == "" {
		opts.Track = publisher.DefaultTrack
	}

	started := time.Now()
	result := &Result{Track: opts.Track}

	edit, created, err := e.OpenEdit(ctx, opts.PackageName, progress)
	if err != nil {
		return result, err
	}
	result.EditID = edit.ID

	fail := func(err error) (*Result, error) {
		e.cleanup(ctx, opts.PackageName, edit.ID, created, progress)
		return result, err
	}

	bundle, size, err := e.uploadBundle(ctx, opts, edit.ID, progress)
	if err != nil {
		return fail(err)
	}
	result.VersionCode = bundle.VersionCode
	result.SHA256 = bundle.SHA256
	result.ArtifactBytes = size

	track, release, err := e.updateTrack(ctx, opts, edit.ID, bundle.VersionCode, progress)
	if err != nil {
		return fail(err)
	}
	result.ReleaseName = release.Name
	result.ReleaseCount = len(track.Releases)

	e.sendProgress(progress, commitUpdate(edit.ID))
	if _, err := e.api.CommitEdit(ctx, opts.PackageName, edit.ID); err != nil {
		return fail(fmt.Errorf("%w: %v", shared.ErrCommitFailed, err))
	}

	result.Elapsed = time.Since(started)
	return result, nil
}

// OpenEdit fetches the policy's edit, creating it only when the server
// reports it missing. Any other fetch failure aborts without a create
// attempt. The returned bool reports whether this run created the edit.
func (e *Engine) OpenEdit(ctx context.Context, packageName string, progress chan<- ProgressUpdate) (*publisher.Edit, bool, error) {
	editID := e.policy.EditID()
	e.sendProgress(progress, openEditUpdate(editID))

	edit, err := e.api.Edit(ctx, packageName, editID)
	if err == nil {
		e.sendProgress(progress, editReadyUpdate(edit, false))
		return edit, false, nil
	}

	if !errors.Is(err, publisher.ErrNotFound) {
		return nil, false, fmt.Errorf("%w: fetching edit %q: %v", shared.ErrEditUnavailable, editID, err)
	}

	e.logger.Debug("edit not found, creating", "edit", editID)
	edit, err = e.api.InsertEdit(ctx, packageName, editID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: creating edit %q: %v", shared.ErrEditUnavailable, editID, err)
	}

	e.sendProgress(progress, editReadyUpdate(edit, true))
	return edit, true, nil
}

// uploadBundle streams the artifact into the edit. The file handle is scoped
// to this call and released on all exit paths.
func (e *Engine) uploadBundle(ctx context.Context, opts Options, editID string, progress chan<- ProgressUpdate) (*publisher.UploadedBundle, int64, error) {
	f, err := os.Open(opts.ArtifactPath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrArtifactMissing, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrArtifactMissing, err)
	}
	size := info.Size()

	e.sendProgress(progress, uploadStartUpdate(opts.ArtifactPath, size))

	bundle, err := e.api.UploadBundle(ctx, opts.PackageName, editID, f, size)
	if err != nil {
		return nil, size, fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}

	e.sendProgress(progress, uploadDoneUpdate(bundle))
	return bundle, size, nil
}

// updateTrack selects the target track, appends the composed release, and
// pushes the track back.
func (e *Engine) updateTrack(ctx context.Context, opts Options, editID string, versionCode int64, progress chan<- ProgressUpdate) (*publisher.Track, publisher.Release, error) {
	e.sendProgress(progress, trackSelectUpdate(opts.Track))

	tracks, err := e.api.Tracks(ctx, opts.PackageName, editID)
	if err != nil {
		return nil, publisher.Release{}, fmt.Errorf("%w: listing tracks: %v", shared.ErrTrackUpdateFailed, err)
	}

	var target *publisher.Track
	for i := range tracks {
		if tracks[i].Name == opts.Track {
			target = &tracks[i]
			break
		}
	}
	if target == nil {
		return nil, publisher.Release{}, fmt.Errorf("%w: no track named %q for %s", shared.ErrTrackNotFound, opts.Track, opts.PackageName)
	}

	release := publisher.NewRelease(versionCode, len(target.Releases))
	target.Releases = append(target.Releases, release)

	updated, err := e.api.UpdateTrack(ctx, opts.PackageName, editID, *target)
	if err != nil {
		return nil, release, fmt.Errorf("%w: %v", shared.ErrTrackUpdateFailed, err)
	}

	e.sendProgress(progress, trackUpdatedUpdate(updated, release))
	return updated, release, nil
}

// cleanup abandons the edit after a failed run when the policy does not
// expect it to be reused. Best effort: an abandon failure is logged, never
// surfaced, so it cannot mask the stage error.
func (e *Engine) cleanup(ctx context.Context, packageName, editID string, created bool, progress chan<- ProgressUpdate) {
	if !created || e.policy.Reusable() {
		return
	}

	e.sendProgress(progress, abandonUpdate(editID))
	if err := e.api.AbandonEdit(ctx, packageName, editID); err != nil {
		e.logger.Warn("failed to abandon edit", "edit", editID, "error", err)
	}
}
