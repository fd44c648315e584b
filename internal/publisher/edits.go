package publisher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// FixedEditID is the well-known edit id reused across runs by the default
// policy. Assumes single-writer publishing for the package.
const FixedEditID = "app-edit"

// Edit is a server-side staging transaction scoped to one package.
type Edit struct {
	ID                string `json:"id"`
	ExpiryTimeSeconds string `json:"expiryTimeSeconds,omitempty"`
}

// EditPolicy decides which edit id a run works under and whether that edit
// may be left behind for later runs to reuse.
type EditPolicy interface {
	// EditID returns the id for this run.
	EditID() string

	// Reusable reports whether the edit is expected to outlive a failed run.
	// Non-reusable edits are abandoned on pipeline failure.
	Reusable() bool
}

// FixedEdit reuses one well-known edit id across runs.
type FixedEdit struct {
	id string
}

// NewFixedEdit creates a FixedEdit policy; an empty id selects [FixedEditID].
func NewFixedEdit(id string) FixedEdit {
	if id == "" {
		id = FixedEditID
	}
	return FixedEdit{id: id}
}

func (p FixedEdit) EditID() string { return p.id }
func (p FixedEdit) Reusable() bool { return true }

// FreshEdit generates a new edit id for every run.
type FreshEdit struct {
	id string
}

// NewFreshEdit creates a FreshEdit policy with a generated id.
func NewFreshEdit() *FreshEdit {
	return &FreshEdit{id: uuid.New().String()}
}

func (p *FreshEdit) EditID() string { return p.id }
func (p *FreshEdit) Reusable() bool { return false }

// Edit fetches an existing edit by id.
func (c *Client) Edit(ctx context.Context, packageName, editID string) (*Edit, error) {
	var edit Edit
	if err := c.do(ctx, http.MethodGet, editPath(packageName, editID), nil, &edit); err != nil {
		return nil, err
	}
	return &edit, nil
}

// InsertEdit creates a new edit. A non-empty editID requests that specific id.
func (c *Client) InsertEdit(ctx context.Context, packageName, editID string) (*Edit, error) {
	path := fmt.Sprintf("%s/%s/edits", apiPrefix, packageName)

	var payload any
	if editID != "" {
		payload = &Edit{ID: editID}
	}

	var edit Edit
	if err := c.do(ctx, http.MethodPost, path, payload, &edit); err != nil {
		return nil, err
	}
	if edit.ID == "" {
		return nil, fmt.Errorf("server returned an edit without an id")
	}
	return &edit, nil
}

// CommitEdit commits all staged changes under the edit.
func (c *Client) CommitEdit(ctx context.Context, packageName, editID string) (*Edit, error) {
	path := editPath(packageName, editID) + ":commit"

	var edit Edit
	if err := c.do(ctx, http.MethodPost, path, nil, &edit); err != nil {
		return nil, err
	}
	return &edit, nil
}

// AbandonEdit deletes an edit, discarding its staged changes.
func (c *Client) AbandonEdit(ctx context.Context, packageName, editID string) error {
	return c.do(ctx, http.MethodDelete, editPath(packageName, editID), nil, nil)
}
