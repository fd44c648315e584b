package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Credential and authentication errors
	ErrInvalidCredential = fmt.Errorf("invalid credential file")
	ErrAuthFailed        = fmt.Errorf("authentication failed")

	// Publishing errors
	ErrEditUnavailable   = fmt.Errorf("edit unavailable")
	ErrUploadFailed      = fmt.Errorf("bundle upload failed")
	ErrTrackNotFound     = fmt.Errorf("track not found")
	ErrTrackUpdateFailed = fmt.Errorf("track update failed")
	ErrCommitFailed      = fmt.Errorf("edit commit failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrArtifactMissing = fmt.Errorf("artifact file not found")
)
