package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// DefaultTrack is the release channel the pipeline targets unless configured
// otherwise.
const DefaultTrack = "internal"

// StatusInProgress marks a release that is rolling out to its user fraction.
const StatusInProgress = "inProgress"

const (
	// rolloutFraction is deliberately shy of 1.0 so the release stays in a
	// controllable state under the API's rollout semantics.
	rolloutFraction = 0.9999

	// updatePriority is the maximum in-app update priority.
	updatePriority = 5
)

// defaultReleaseNotes is the fixed bilingual note pair attached to every
// composed release.
var defaultReleaseNotes = []LocalizedText{
	{Language: "en-US", Text: "Bug fixes and performance improvements."},
	{Language: "es-ES", Text: "Correcciones de errores y mejoras de rendimiento."},
}

// LocalizedText is a language-tagged release note.
type LocalizedText struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Release is one versioned rollout entry within a track.
type Release struct {
	Name                string          `json:"name,omitempty"`
	Status              string          `json:"status,omitempty"`
	UserFraction        float64         `json:"userFraction,omitempty"`
	VersionCodes        []int64         `json:"versionCodes,omitempty"`
	InAppUpdatePriority int64           `json:"inAppUpdatePriority,omitempty"`
	ReleaseNotes        []LocalizedText `json:"releaseNotes,omitempty"`
}

// Track is a named release channel holding an ordered release history.
type Track struct {
	Name     string    `json:"track"`
	Releases []Release `json:"releases"`
}

// NewRelease composes the release record appended for an uploaded version
// code, given the number of releases already on the track.
//
// Releases are named by their positional index at append time, so a track
// with N releases gains a release named strconv.Itoa(N).
func NewRelease(versionCode int64, priorReleases int) Release {
	return Release{
		Name:                strconv.Itoa(priorReleases),
		Status:              StatusInProgress,
		UserFraction:        rolloutFraction,
		VersionCodes:        []int64{versionCode},
		InAppUpdatePriority: updatePriority,
		ReleaseNotes:        defaultReleaseNotes,
	}
}

// Tracks lists all release tracks under the edit.
func (c *Client) Tracks(ctx context.Context, packageName, editID string) ([]Track, error) {
	path := editPath(packageName, editID) + "/tracks"

	var response struct {
		Tracks []Track `json:"tracks"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// UpdateTrack pushes a mutated track back to the server.
func (c *Client) UpdateTrack(ctx context.Context, packageName, editID string, track Track) (*Track, error) {
	if track.Name == "" {
		return nil, fmt.Errorf("track name is required")
	}
	path := editPath(packageName, editID) + "/tracks/" + track.Name

	var updated Track
	if err := c.do(ctx, http.MethodPut, path, &track, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
