package tsapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/tokenstream/pkg/manifest"
)

// Server holds the API server state.
type Server struct {
	store   RecordStore
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server.
func NewServer(store RecordStore, config ServerConfig, metrics *Metrics) *Server {
	return &Server{store: store, config: config, metrics: metrics}
}

// manifestDepth reports how many sub-stream levels a manifest's schema
// actually opens: one for the nested Platform base record, one more for
// each non-empty container field. It is a property of the schema and the
// record's contents, not of the wire bytes, used purely to give the
// sub-stream depth histogram something to observe per request.
func manifestDepth(m *manifest.Manifest) int {
	depth := 1 // Platform nested base
	if len(m.Files) > 0 {
		depth++
	}
	if len(m.CompactFiles) > 0 {
		depth++
	}
	return depth
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handlePutRecord godoc
//
//	@Summary		Store a record
//	@Description	Accepts a JSON-encoded manifest, encodes it to TokenStream bytes, and stores it under name
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string		true	"Record name"
//	@Param			body	body		manifest.Manifest	true	"Manifest"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/records/{name} [put]
//	@Security		ApiKeyAuth
func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		sendError(w, "record name is required", http.StatusBadRequest)
		return
	}

	var m manifest.Manifest
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		sendError(w, "invalid JSON request body", http.StatusBadRequest)
		return
	}
	m.Name = name

	if err := s.store.Put(name, &m); err != nil {
		sendError(w, fmt.Sprintf("failed to store record: %v", err), http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordEncode(manifestDepth(&m))
	}
	sendSuccess(w, map[string]string{"message": "record stored successfully"})
}

// handleGetRecord godoc
//
//	@Summary		Read a record as JSON
//	@Description	Decodes the stored TokenStream bytes under name and renders them as JSON
//	@Tags			records
//	@Produce		json
//	@Param			name	path		string	true	"Record name"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/records/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		sendError(w, "record name is required", http.StatusBadRequest)
		return
	}

	m, err := s.store.Get(name)
	if err != nil {
		if err == manifest.ErrMalformed {
			if s.metrics != nil {
				s.metrics.RecordBadStreamTrip()
			}
			sendError(w, "stored record is malformed", http.StatusInternalServerError)
			return
		}
		sendError(w, "record not found", http.StatusNotFound)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordDecode(manifestDepth(m))
	}
	sendSuccess(w, m)
}

// handleGetRecordRaw godoc
//
//	@Summary		Stream the raw TokenStream bytes of a record
//	@Description	Re-encodes the stored record directly onto the response body as TokenStream bytes
//	@Tags			records
//	@Produce		octet-stream
//	@Param			name	path	string	true	"Record name"
//	@Success		200
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/records/{name}/raw [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRecordRaw(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		sendError(w, "record name is required", http.StatusBadRequest)
		return
	}

	m, err := s.store.Get(name)
	if err != nil {
		sendError(w, "record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	// WriteTo streams straight onto w: once the first chunk is written the
	// response is committed, so a latch trip here can only be reported via
	// metrics, not a JSON error body.
	if writeErr := manifest.WriteTo(w, m); writeErr != nil {
		if s.metrics != nil {
			s.metrics.RecordBadStreamTrip()
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordEncode(manifestDepth(m))
	}
}
