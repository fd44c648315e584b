package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
	tu "github.com/skyforgehq/playpub/internal/testing"
)

// fakeAPI is an in-memory publishing backend recording every call.
type fakeAPI struct {
	edits  map[string]*publisher.Edit
	tracks []publisher.Track
	calls  []string

	editErr   error
	insertErr error
	uploadErr error
	tracksErr error
	updateErr error
	commitErr error

	uploaded    int64
	versionCode int64
}

func newFakeAPI(tracks ...publisher.Track) *fakeAPI {
	return &fakeAPI{
		edits:       map[string]*publisher.Edit{},
		tracks:      tracks,
		versionCode: 42,
	}
}

func (f *fakeAPI) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeAPI) called(call string) bool {
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeAPI) Edit(ctx context.Context, packageName, editID string) (*publisher.Edit, error) {
	f.record("edit")
	if f.editErr != nil {
		return nil, f.editErr
	}
	if edit, ok := f.edits[editID]; ok {
		return edit, nil
	}
	return nil, fmt.Errorf("%w: %s", publisher.ErrNotFound, editID)
}

func (f *fakeAPI) InsertEdit(ctx context.Context, packageName, editID string) (*publisher.Edit, error) {
	f.record("insert")
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	edit := &publisher.Edit{ID: editID}
	f.edits[editID] = edit
	return edit, nil
}

func (f *fakeAPI) UploadBundle(ctx context.Context, packageName, editID string, r io.Reader, size int64) (*publisher.UploadedBundle, error) {
	f.record("upload")
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, err
	}
	f.uploaded = n
	return &publisher.UploadedBundle{VersionCode: f.versionCode}, nil
}

func (f *fakeAPI) Tracks(ctx context.Context, packageName, editID string) ([]publisher.Track, error) {
	f.record("tracks")
	if f.tracksErr != nil {
		return nil, f.tracksErr
	}
	return f.tracks, nil
}

func (f *fakeAPI) UpdateTrack(ctx context.Context, packageName, editID string, track publisher.Track) (*publisher.Track, error) {
	f.record("update")
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.tracks {
		if f.tracks[i].Name == track.Name {
			f.tracks[i] = track
			return &f.tracks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", publisher.ErrNotFound, track.Name)
}

func (f *fakeAPI) CommitEdit(ctx context.Context, packageName, editID string) (*publisher.Edit, error) {
	f.record("commit")
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return &publisher.Edit{ID: editID}, nil
}

func (f *fakeAPI) AbandonEdit(ctx context.Context, packageName, editID string) error {
	f.record("abandon")
	delete(f.edits, editID)
	return nil
}

func internalTrack(releases int) publisher.Track {
	track := publisher.Track{Name: "internal"}
	for i := 0; i < releases; i++ {
		track.Releases = append(track.Releases, publisher.Release{
			Name:         fmt.Sprintf("%d", i),
			Status:       "completed",
			VersionCodes: []int64{int64(i + 1)},
		})
	}
	return track
}

func testOptions(t *testing.T, artifactSize int) Options {
	t.Helper()
	return Options{
		PackageName:  "com.example.app",
		Track:        "internal",
		ArtifactPath: tu.WriteArtifact(t, t.TempDir(), artifactSize),
	}
}

func TestEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("Full Pipeline", func(t *testing.T) {
		api := newFakeAPI(internalTrack(2))
		engine := NewEngine(api, nil, nil)

		result, err := engine.Run(ctx, testOptions(t, 4096), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.EditID != publisher.FixedEditID {
			t.Errorf("expected edit id %q, got %q", publisher.FixedEditID, result.EditID)
		}
		if result.VersionCode != 42 {
			t.Errorf("expected version code 42, got %d", result.VersionCode)
		}
		if api.uploaded != 4096 {
			t.Errorf("expected 4096 uploaded bytes, got %d", api.uploaded)
		}
		if result.ArtifactBytes != 4096 {
			t.Errorf("expected artifact size 4096, got %d", result.ArtifactBytes)
		}
		if result.ReleaseCount != 3 {
			t.Errorf("expected 3 releases after publish, got %d", result.ReleaseCount)
		}
		if result.ReleaseName != "2" {
			t.Errorf("expected new release named '2', got %q", result.ReleaseName)
		}

		latest := api.tracks[0].Releases[2]
		if latest.UserFraction != 0.9999 {
			t.Errorf("expected fraction 0.9999, got %v", latest.UserFraction)
		}
		if len(latest.VersionCodes) != 1 || latest.VersionCodes[0] != 42 {
			t.Errorf("expected version codes [42], got %v", latest.VersionCodes)
		}
		if latest.InAppUpdatePriority != 5 {
			t.Errorf("expected priority 5, got %d", latest.InAppUpdatePriority)
		}
		if latest.Status != publisher.StatusInProgress {
			t.Errorf("expected status inProgress, got %q", latest.Status)
		}
		if !api.called("commit") {
			t.Error("expected commit to be called")
		}
	})

	t.Run("Edit FindOrCreate Is Idempotent", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		engine := NewEngine(api, nil, nil)

		first, err := engine.Run(ctx, testOptions(t, 10), nil)
		if err != nil {
			t.Fatalf("first run failed: %v", err)
		}

		api.calls = nil
		second, err := engine.Run(ctx, testOptions(t, 10), nil)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		if first.EditID != second.EditID {
			t.Errorf("expected the same edit id across runs, got %q and %q", first.EditID, second.EditID)
		}
		if api.called("insert") {
			t.Error("second run must fetch, not create")
		}
	})

	t.Run("Non-NotFound Fetch Error Does Not Create", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		api.editErr = &publisher.StatusError{Code: 500}
		engine := NewEngine(api, nil, nil)

		_, err := engine.Run(ctx, testOptions(t, 10), nil)
		if !errors.Is(err, shared.ErrEditUnavailable) {
			t.Fatalf("expected ErrEditUnavailable, got %v", err)
		}
		if api.called("insert") {
			t.Error("a server error must not trigger edit creation")
		}
		if api.called("upload") || api.called("commit") {
			t.Error("pipeline must stop at the edit stage")
		}
	})

	t.Run("Create Failure", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		api.insertErr = &publisher.StatusError{Code: 500}
		engine := NewEngine(api, nil, nil)

		_, err := engine.Run(ctx, testOptions(t, 10), nil)
		if !errors.Is(err, shared.ErrEditUnavailable) {
			t.Errorf("expected ErrEditUnavailable, got %v", err)
		}
	})

	t.Run("Missing Artifact", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		engine := NewEngine(api, nil, nil)

		opts := testOptions(t, 10)
		opts.ArtifactPath = opts.ArtifactPath + ".absent"

		_, err := engine.Run(ctx, opts, nil)
		if !errors.Is(err, shared.ErrArtifactMissing) {
			t.Fatalf("expected ErrArtifactMissing, got %v", err)
		}
		if api.called("upload") || api.called("commit") {
			t.Error("pipeline must stop before upload")
		}
	})

	t.Run("Upload Failure Is Terminal", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		api.uploadErr = &publisher.StatusError{Code: 403}
		engine := NewEngine(api, nil, nil)

		_, err := engine.Run(ctx, testOptions(t, 10), nil)
		if !errors.Is(err, shared.ErrUploadFailed) {
			t.Fatalf("expected ErrUploadFailed, got %v", err)
		}
		if api.called("tracks") || api.called("update") || api.called("commit") {
			t.Error("no track or commit calls may follow a failed upload")
		}
	})

	t.Run("Track Not Found", func(t *testing.T) {
		api := newFakeAPI(publisher.Track{Name: "production"})
		engine := NewEngine(api, nil, nil)

		_, err := engine.Run(ctx, testOptions(t, 10), nil)
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Fatalf("expected ErrTrackNotFound, got %v", err)
		}
		if api.called("update") {
			t.Error("a missing track must never be created or updated")
		}
		if api.called("commit") {
			t.Error("commit must not run after a track failure")
		}
	})

	t.Run("Track Update Failure Short-Circuits Commit", func(t *testing.T) {
		api := newFakeAPI(internalTrack(1))
		api.updateErr = &publisher.StatusError{Code: 500}
		engine := NewEngine(api, nil, nil)

		_, err := engine.Run(ctx, testOptions(t, 10), nil)
		if !errors.Is(err, shared.ErrTrackUpdateFailed) {
			t.Fatalf("expected ErrTrackUpdateFailed, got %v", err)
		}
		if api.called("commit") {
			t.Error("commit must not run after a failed track update")
		}
	})

	t.Run("Commit Failure Surfaces", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		api.commitErr = &publisher.StatusError{Code: 500}
		engine := NewEngine(api, nil, nil)

		result, err := engine.Run(ctx, testOptions(t, 10), nil)
		if !errors.Is(err, shared.ErrCommitFailed) {
			t.Fatalf("expected ErrCommitFailed, got %v", err)
		}
		if result == nil || result.VersionCode != 42 {
			t.Error("partial result should carry the uploaded version code")
		}
	})

	t.Run("Fresh Policy Abandons On Failure", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		api.uploadErr = &publisher.StatusError{Code: 500}
		engine := NewEngine(api, publisher.NewFreshEdit(), nil)

		_, err := engine.Run(ctx, testOptions(t, 10), nil)
		if !errors.Is(err, shared.ErrUploadFailed) {
			t.Fatalf("expected ErrUploadFailed, got %v", err)
		}
		if !api.called("abandon") {
			t.Error("a fresh edit must be abandoned after failure")
		}
	})

	t.Run("Fixed Policy Never Abandons", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		api.uploadErr = &publisher.StatusError{Code: 500}
		engine := NewEngine(api, publisher.NewFixedEdit(""), nil)

		engine.Run(ctx, testOptions(t, 10), nil)
		if api.called("abandon") {
			t.Error("the fixed edit must survive failures for the next run")
		}
	})

	t.Run("Progress Updates Flow", func(t *testing.T) {
		api := newFakeAPI(internalTrack(0))
		engine := NewEngine(api, nil, nil)

		progress := make(chan ProgressUpdate, 50)
		if _, err := engine.Run(ctx, testOptions(t, 10), progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		phases := map[Phase]bool{}
		for update := range progress {
			phases[update.Phase] = true
			if update.Message == "" {
				t.Error("progress updates must carry a message")
			}
		}
		for _, phase := range []Phase{OpenEdit, UploadBundle, UpdateTrack, Commit} {
			if !phases[phase] {
				t.Errorf("expected a %s update", phase)
			}
		}
	})

	t.Run("Missing Package Name", func(t *testing.T) {
		engine := NewEngine(newFakeAPI(), nil, nil)
		_, err := engine.Run(ctx, Options{}, nil)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
