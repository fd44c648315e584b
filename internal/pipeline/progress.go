package pipeline

import (
	"fmt"

	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
)

// ProgressUpdate represents a progress event during a publishing run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Pipeline phase enumeration
type Phase int

const (
	OpenEdit Phase = iota
	UploadBundle
	UpdateTrack
	Commit
	Abandon
)

func (p Phase) String() string {
	switch p {
	case OpenEdit:
		return "open_edit"
	case UploadBundle:
		return "upload_bundle"
	case UpdateTrack:
		return "update_track"
	case Commit:
		return "commit"
	case Abandon:
		return "abandon"
	default:
		return ""
	}
}

func openEditUpdate(editID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   OpenEdit,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Opening edit %q...", editID),
	}
}

func editReadyUpdate(edit *publisher.Edit, created bool) ProgressUpdate {
	verb := "Found"
	if created {
		verb = "Created"
	}
	return ProgressUpdate{
		Phase:   OpenEdit,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("%s edit %s", verb, edit.ID),
		Data:    edit,
	}
}

func uploadStartUpdate(path string, size int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadBundle,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Uploading %s (%s)...", path, shared.FormatSize(size)),
	}
}

func uploadDoneUpdate(bundle *publisher.UploadedBundle) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadBundle,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Upload complete, version code %d", bundle.VersionCode),
		Data:    bundle,
	}
}

func trackSelectUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateTrack,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Selecting track %q...", name),
	}
}

func trackUpdatedUpdate(track *publisher.Track, release publisher.Release) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UpdateTrack,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Appended release %q to track %q (%d releases)", release.Name, track.Name, len(track.Releases)),
		Data:    track,
	}
}

func commitUpdate(editID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Commit,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Committing edit %s...", editID),
	}
}

func abandonUpdate(editID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Abandon,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Abandoning edit %s after failure...", editID),
	}
}
