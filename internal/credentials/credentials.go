package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/skyforgehq/playpub/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// PublisherScope is the single OAuth2 scope the pipeline requests.
const PublisherScope = "https://www.googleapis.com/auth/androidpublisher"

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// Credential is a parsed service account identity. Immutable once loaded.
type Credential struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// Load reads and validates a service account credential document.
//
// The path must end in .json, the content must parse, and the document must
// carry both an account identity and signing key material. All failures wrap
// [shared.ErrInvalidCredential].
func Load(path string) (*Credential, error) {
	if filepath.Ext(path) != ".json" {
		return nil, fmt.Errorf("%w: expected a .json file, got %q", shared.ErrInvalidCredential, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredential, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", shared.ErrInvalidCredential, filepath.Base(path), err)
	}

	if cred.ClientEmail == "" {
		return nil, fmt.Errorf("%w: missing client_email", shared.ErrInvalidCredential)
	}
	if cred.PrivateKey == "" {
		return nil, fmt.Errorf("%w: missing private_key", shared.ErrInvalidCredential)
	}
	if cred.TokenURI == "" {
		cred.TokenURI = defaultTokenURL
	}

	return &cred, nil
}

// config builds the JWT assertion flow configuration for the credential.
func (c *Credential) config() *jwt.Config {
	return &jwt.Config{
		Email:      c.ClientEmail,
		PrivateKey: []byte(c.PrivateKey),
		TokenURL:   c.TokenURI,
		Scopes:     []string{PublisherScope},
	}
}

// Authenticate exchanges the credential for an authenticated HTTP client.
//
// An initial token is fetched eagerly so that signature and endpoint problems
// surface here rather than inside the first publishing call; subsequent
// refreshes happen transparently inside the returned client's transport.
// Failures wrap [shared.ErrAuthFailed].
func (c *Credential) Authenticate(ctx context.Context) (*http.Client, error) {
	cfg := c.config()

	source := cfg.TokenSource(ctx)
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if !token.Valid() {
		return nil, fmt.Errorf("%w: token endpoint returned an expired token", shared.ErrAuthFailed)
	}

	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source)), nil
}
