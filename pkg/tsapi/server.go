// Package tsapi TokenStream Record API
//
// @title           TokenStream Record API
// @version         1.0.0
// @description     REST transport for storing and retrieving TokenStream-encoded records.
// @host            localhost:9200
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package tsapi

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// NewRouter builds the chi router for the record API without starting a
// listener, so callers (StartServer, and tests) can exercise it directly.
func NewRouter(store RecordStore, config ServerConfig, metrics *Metrics) http.Handler {
	server := NewServer(store, config, metrics)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Put("/records/{name}", metrics.InstrumentHandler("PUT", "/api/v1/records/{name}", server.handlePutRecord))
		r.Get("/records/{name}", metrics.InstrumentHandler("GET", "/api/v1/records/{name}", server.handleGetRecord))
		r.Get("/records/{name}/raw", metrics.InstrumentHandler("GET", "/api/v1/records/{name}/raw", server.handleGetRecordRaw))
	})

	r.Get("/swagger/*", swaggerHandler)

	return r
}

func swaggerHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/swagger/" || path == "/swagger/index.html" {
		w.Header().Set("Content-Type", "text/html")
		html := `<!DOCTYPE html>
<html>
<head>
	<title>TokenStream Record API Documentation</title>
	<link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	<div id="swagger-ui"></div>
	<script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	<script>
	  window.onload = function() {
	    SwaggerUIBundle({
	      url: '/swagger/swagger.json',
	      dom_id: '#swagger-ui',
	      presets: [
	        SwaggerUIBundle.presets.apis,
	        SwaggerUIBundle.presets.standalone
	      ]
	    });
	  };
	</script>
</body>
</html>`
		w.Write([]byte(html))
		return
	}

	if path == "/swagger/swagger.json" {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			http.Error(w, "failed to generate swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
		return
	}

	http.NotFound(w, r)
}

// StartServer starts the HTTP server with all routes configured. It blocks
// until the listener fails.
func StartServer(store RecordStore, config ServerConfig) error {
	if SwaggerInfo != nil {
		SwaggerInfo.Host = fmt.Sprintf("localhost:%d", config.Port)
	}

	router := NewRouter(store, config, NewMetrics())

	addr := fmt.Sprintf(":%d", config.Port)
	fmt.Printf("Starting TokenStream record API on %s\n", addr)
	fmt.Printf("Metrics available at: http://localhost:%d/metrics\n", config.Port)
	log.Println("listening", addr)
	return http.ListenAndServe(addr, router)
}
