package tsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tokenstream/pkg/manifest"
)

// fakeStore is an in-memory RecordStore for handler tests, independent of
// tsstore's Pebble-backed implementation.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*manifest.Manifest
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*manifest.Manifest)}
}

func (f *fakeStore) Put(name string, m *manifest.Manifest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[name] = m
	return nil
}

func (f *fakeStore) Get(name string) (*manifest.Manifest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	m, ok := f.records[name]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return m, nil
}

func (f *fakeStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, name)
	return nil
}

func newTestServer(store RecordStore) *Server {
	return NewServer(store, ServerConfig{APIKey: "test-key"}, NewMetrics())
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandlePutRecordStoresManifest(t *testing.T) {
	store := newFakeStore()
	server := newTestServer(store)

	body, err := json.Marshal(manifest.Manifest{Version: "1.0.0"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/records/tool", bytes.NewReader(body))
	req = withURLParam(req, "name", "tool")
	rec := httptest.NewRecorder()

	server.handlePutRecord(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	stored, err := store.Get("tool")
	require.NoError(t, err)
	assert.Equal(t, "tool", stored.Name)
	assert.Equal(t, "1.0.0", stored.Version)
}

func TestHandlePutRecordMissingNameRejected(t *testing.T) {
	server := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodPut, "/records/", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	server.handlePutRecord(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePutRecordInvalidJSONRejected(t *testing.T) {
	server := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodPut, "/records/tool", bytes.NewReader([]byte("not json")))
	req = withURLParam(req, "name", "tool")
	rec := httptest.NewRecorder()

	server.handlePutRecord(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetRecordReturnsJSON(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.Put("tool", &manifest.Manifest{Name: "tool", Version: "2.0.0"}))
	server := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/records/tool", nil)
	req = withURLParam(req, "name", "tool")
	rec := httptest.NewRecorder()

	server.handleGetRecord(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestHandleGetRecordMissingReturns404(t *testing.T) {
	server := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/records/missing", nil)
	req = withURLParam(req, "name", "missing")
	rec := httptest.NewRecorder()

	server.handleGetRecord(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetRecordRawStreamsTokenStreamBytes(t *testing.T) {
	store := newFakeStore()
	m := &manifest.Manifest{Name: "tool", Version: "3.0.0"}
	require.NoError(t, store.Put("tool", m))
	server := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/records/tool/raw", nil)
	req = withURLParam(req, "name", "tool")
	rec := httptest.NewRecorder()

	server.handleGetRecordRaw(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))

	decoded, err := manifest.Decode(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestHandleHealthReportsHealthy(t *testing.T) {
	server := newTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestManifestDepthReflectsPopulatedFields(t *testing.T) {
	assert.Equal(t, 1, manifestDepth(&manifest.Manifest{}))
	assert.Equal(t, 2, manifestDepth(&manifest.Manifest{Files: []manifest.FileEntry{{Path: "a"}}}))
	assert.Equal(t, 3, manifestDepth(&manifest.Manifest{
		Files:        []manifest.FileEntry{{Path: "a"}},
		CompactFiles: []manifest.PathChecksum{{Path: "a"}},
	}))
}
