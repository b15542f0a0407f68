package tsstore

import (
	"github.com/cockroachdb/pebble"

	"github.com/ssargent/tokenstream/pkg/manifest"
)

// ManifestStore is a Pebble-backed key/value store for whole manifest
// records, keyed by manifest name rather than by the append log's offset
// index: operators querying "what did we last install under this name"
// want direct point lookups, not a log replay. It is the optional second
// storage backend alongside KVStore's append log.
type ManifestStore struct {
	db *pebble.DB
}

// NewManifestStore opens (creating if absent) a Pebble database at path.
func NewManifestStore(path string) (*ManifestStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &ManifestStore{db: db}, nil
}

// Put encodes m and stores it under name, replacing any prior manifest
// with the same name.
func (s *ManifestStore) Put(name string, m *manifest.Manifest) error {
	return s.db.Set([]byte(name), manifest.Encode(m), pebble.NoSync)
}

// GetRaw returns the undecoded TokenStream-encoded bytes stored under name,
// for callers that want to stream the wire format directly (e.g. a REST
// handler serving the raw encoding) rather than pay for a decode/re-encode
// round trip.
func (s *ManifestStore) GetRaw(name string) ([]byte, error) {
	data, closer, err := s.db.Get([]byte(name))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	raw := make([]byte, len(data))
	copy(raw, data)
	return raw, nil
}

// Get decodes and returns the manifest stored under name.
func (s *ManifestStore) Get(name string) (*manifest.Manifest, error) {
	raw, err := s.GetRaw(name)
	if err != nil {
		return nil, err
	}

	decoded, decErr := manifest.Decode(raw)
	if decErr != nil {
		return nil, decErr
	}
	return decoded, nil
}

// Delete removes the manifest stored under name, if any.
func (s *ManifestStore) Delete(name string) error {
	return s.db.Delete([]byte(name), pebble.NoSync)
}

// Close closes the underlying Pebble database.
func (s *ManifestStore) Close() error {
	return s.db.Close()
}
