package publisher

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// UploadedBundle is the server's record of an uploaded artifact.
type UploadedBundle struct {
	VersionCode int64  `json:"versionCode"`
	SHA256      string `json:"sha256,omitempty"`
}

// UploadBundle streams an app bundle into the edit and returns the assigned
// version code.
//
// The reader is consumed exactly once and is never buffered in full; size
// must be the exact byte length of the artifact so the transfer carries a
// correct Content-Length. Artifacts run to hundreds of megabytes, so callers
// pass an open file rather than a byte slice.
func (c *Client) UploadBundle(ctx context.Context, packageName, editID string, r io.Reader, size int64) (*UploadedBundle, error) {
	path := fmt.Sprintf("%s/%s/edits/%s/bundles?uploadType=media", uploadPrefix, packageName, editID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = size

	var bundle UploadedBundle
	if err := c.send(req, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}
