// Package server exposes the import pipeline over HTTP for the web UI:
// upload, preset detection, extraction, area lookup, mapping refinement
// and commit.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kanewa-tools/quote-import/internal/config"
	"github.com/kanewa-tools/quote-import/internal/pdftext"
	"github.com/kanewa-tools/quote-import/internal/preset"
	"github.com/kanewa-tools/quote-import/internal/quotation"
	"github.com/kanewa-tools/quote-import/internal/spreadsheet"
	"github.com/kanewa-tools/quote-import/internal/store"
)

// DocKind distinguishes the two import paths.
type DocKind string

const (
	KindSpreadsheet DocKind = "xlsx"
	KindPDF         DocKind = "pdf"
)

// importDoc is one uploaded document awaiting confirmation. Parsed PDFs
// are cached (the document is immutable); workbooks are reopened per
// request.
type importDoc struct {
	ID       string
	Kind     DocKind
	Path     string
	Filename string
	pdf      *pdftext.Document
}

// Server wires the extraction pipeline behind a chi router.
type Server struct {
	cfg       *config.Config
	registry  *preset.Registry
	st        store.Store
	committer *quotation.Committer

	mu      sync.Mutex
	imports map[string]*importDoc

	httpServer *http.Server
}

// New creates a server over the given registry and store.
func New(cfg *config.Config, registry *preset.Registry, st store.Store) *Server {
	s := &Server{
		cfg:       cfg,
		registry:  registry,
		st:        st,
		committer: quotation.NewCommitter(st),
		imports:   map[string]*importDoc{},
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	s.routes(r)

	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", s.handleListPresets)
		r.Post("/imports", s.handleUpload)
		r.Route("/imports/{id}", func(r chi.Router) {
			r.Get("/sheets", s.handleSheets)
			r.Post("/extract", s.handleExtract)
			r.Post("/arealookup", s.handleAreaLookup)
			r.Post("/refine", s.handleRefine)
			r.Post("/commit", s.handleCommit)
		})
	})
}

// registerImport stores an uploaded file and indexes it by id.
func (s *Server) registerImport(filename string, data []byte) (*importDoc, error) {
	kind, err := kindFromName(filename)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	path := filepath.Join(s.cfg.ImportDir, id+filepath.Ext(filename))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("cannot store upload: %w", err)
	}

	doc := &importDoc{ID: id, Kind: kind, Path: path, Filename: filename}
	switch kind {
	case KindPDF:
		parsed, err := pdftext.Load(data)
		if err != nil {
			os.Remove(path)
			return nil, err
		}
		doc.pdf = parsed
	case KindSpreadsheet:
		// Unreadable bytes fail the import here, not on a later extract.
		wb, err := spreadsheet.OpenReader(bytes.NewReader(data))
		if err != nil {
			os.Remove(path)
			return nil, err
		}
		wb.Close()
	}

	s.mu.Lock()
	s.imports[id] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *Server) lookupImport(id string) (*importDoc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.imports[id]
	return doc, ok
}

func kindFromName(name string) (DocKind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls":
		return KindSpreadsheet, nil
	case ".pdf":
		return KindPDF, nil
	}
	return "", fmt.Errorf("unsupported file type: %s", name)
}
