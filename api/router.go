package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/public-forge/go-tower-api/datafile"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.timeoutMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "Method Not Allowed")
	})

	r.Get("/", s.handleRoot)
	r.Get("/closureData", s.handleClosureData)
	r.Get("/sunburstData", s.handleDataFile(datafile.SunburstFile))
	r.Get("/gridData", s.handleDataFile(datafile.GridFile))

	// Static chart documents
	r.Handle("/data/*", http.StripPrefix("/data", http.FileServer(s.data.FileSystem())))

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}
