// package testing contains shared testing utilities
package testing

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MustGeneratePEM returns a freshly generated RSA private key in PKCS#8 PEM
// form, suitable for the private_key field of a credential fixture.
func MustGeneratePEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("Failed to marshal private key: %v", err)
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	return string(pem.EncodeToMemory(block))
}

// WriteCredentialFile writes a service account credential fixture to dir and
// returns its path. Empty fields are filled with valid-looking defaults;
// tokenURI may be empty to exercise the loader's default.
func WriteCredentialFile(t *testing.T, dir, email, privateKey, tokenURI string) string {
	t.Helper()
	if email == "" {
		email = "publisher@test-project.iam.gserviceaccount.com"
	}

	doc := map[string]string{
		"type":           "service_account",
		"project_id":     "test-project",
		"private_key_id": "abc123",
		"private_key":    privateKey,
		"client_email":   email,
		"token_uri":      tokenURI,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal credential fixture: %v", err)
	}

	path := filepath.Join(dir, "service-account.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write credential fixture: %v", err)
	}
	return path
}

// WriteArtifact writes size bytes of fake bundle content to dir and returns
// the file path.
func WriteArtifact(t *testing.T, dir string, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(dir, "app-release.aab")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write artifact fixture: %v", err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
