package tsapi

import "github.com/ssargent/tokenstream/pkg/manifest"

// APIResponse is the JSON envelope every handler wraps its payload in.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the REST API server.
type ServerConfig struct {
	Port   int
	APIKey string
}

// RecordStore is the storage dependency the record handlers operate
// against. *tsstore.ManifestStore satisfies it; handlers depend on this
// narrower interface instead of the concrete type so they can be tested
// against a fake.
type RecordStore interface {
	Put(name string, m *manifest.Manifest) error
	Get(name string) (*manifest.Manifest, error)
	Delete(name string) error
}
