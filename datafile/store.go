// Package datafile serves the static JSON documents backing the sunburst and
// grid charts.
package datafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/public-forge/go-tower-api/metrics"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Documents served by the chart endpoints.
const (
	SunburstFile = "sunburstData.json"
	GridFile     = "gridData.json"
)

var (
	// ErrFileNotFound is returned when the requested document does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrMalformedJSON is returned when the document is not valid JSON.
	ErrMalformedJSON = errors.New("malformed JSON")

	// ErrFileRead is returned for any other failure reading the document.
	ErrFileRead = errors.New("error reading file")
)

// Store reads JSON documents from a directory of fs.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *zap.SugaredLogger
}

// New returns a Store over dir on fs.
func New(fs afero.Fs, dir string, logger *zap.SugaredLogger) *Store {
	return &Store{fs: fs, dir: dir, logger: logger}
}

// Read returns the compacted JSON content of the named document.
func (s *Store) Read(name string) (json.RawMessage, error) {
	doc, err := s.read(name)
	switch {
	case errors.Is(err, ErrFileNotFound):
		s.logger.Errorf("%s file not found", name)
	case errors.Is(err, ErrMalformedJSON):
		s.logger.Errorf("Error decoding JSON in %s: %v", name, err)
	case err != nil:
		s.logger.Errorf("Error reading %s: %v", name, err)
	default:
		s.logger.Infof("Request for %s received", name)
		metrics.DataFileReadsTotal.WithLabelValues(name, metrics.Ok).Inc()
		return doc, nil
	}
	metrics.DataFileReadsTotal.WithLabelValues(name, metrics.Fail).Inc()
	return nil, err
}

func (s *Store) read(name string) (json.RawMessage, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}

	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, name))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %w", ErrFileRead, name, err)
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedJSON, name, err)
	}
	return buf.Bytes(), nil
}

// FileSystem exposes the data directory for static serving.
func (s *Store) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.dir)
}
