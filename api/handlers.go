package api

import (
	"errors"
	"net/http"

	log "github.com/public-forge/go-logger"
	"github.com/public-forge/go-tower-api/database"
	"github.com/public-forge/go-tower-api/datafile"
)

// rootMessage is returned by the liveness endpoint.
const rootMessage = "Tower Management Azure app is running..."

// handleRoot reports that the service is up.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootMessage)
}

// handleClosureData returns every row of the closure table.
// Acquire and FetchAll log their own failures.
func (s *Server) handleClosureData(w http.ResponseWriter, r *http.Request) {
	lease, ctx := database.GetLeaseContext(r.Context(), s.pool)
	id, err := lease.Acquire()
	switch {
	case err != nil && timedOut(r):
		writeRequestTimeout(w)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, ErrCodeUnavailable, "Database connection error")
		return
	}
	defer func() {
		if err := lease.Release(id); err != nil {
			log.FromContext(ctx).Errorf("Error releasing database connection: %v", err)
		}
	}()

	rows, err := s.reader.FetchAll(ctx, s.closureTable, lease.Conn())
	switch {
	case err != nil && timedOut(r):
		writeRequestTimeout(w)
	case err != nil:
		writeInternalError(w, "Internal Server Error")
	default:
		writeJSON(w, http.StatusOK, rows)
	}
}

// handleDataFile returns a handler serving the named JSON document.
func (s *Server) handleDataFile(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		doc, err := s.data.Read(name)
		switch {
		case errors.Is(err, datafile.ErrFileNotFound):
			writeNotFound(w, "File not found")
		case errors.Is(err, datafile.ErrMalformedJSON):
			writeError(w, http.StatusUnprocessableEntity, ErrCodeMalformed, "Malformed JSON")
		case err != nil:
			writeInternalError(w, "Internal Server Error")
		default:
			writeJSON(w, http.StatusOK, doc)
		}
	}
}
