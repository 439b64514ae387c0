// Package ingestd is the document ingestion service: an HTTP surface for
// uploading documents and reading back their chunks, plus a batch worker
// that drains an inbox directory through the same pipeline.
package ingestd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pikahelper/docmill/assets"
	"github.com/pikahelper/docmill/docload"
	"github.com/pikahelper/docmill/docproc"
	"github.com/pikahelper/docmill/store"
)

// Service exposes the pipeline over HTTP.
type Service struct {
	cfg    *Config
	store  *store.Store
	proc   *docproc.Processor
	logger *slog.Logger
}

// NewService wires a Service from config, an opened store, and the object
// store that receives extracted images.
func NewService(cfg *Config, st *store.Store, objects assets.ObjectStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	proc := docproc.New(objects, docproc.Config{
		Segment: cfg.segmentOptions(),
		Loader:  docload.Config{MaxFileSize: cfg.MaxFileBytes()},
		Logger:  logger,
	})
	return &Service{cfg: cfg, store: st, proc: proc, logger: logger}
}

// Router builds the chi router with the standard middleware stack.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/v1/health", s.handleHealth)
	r.Post("/v1/documents", s.handleUpload)
	r.Get("/v1/documents", s.handleListDocuments)
	r.Get("/v1/documents/{id}", s.handleGetDocument)
	r.Get("/v1/documents/{id}/chunks", s.handleListChunks)
	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "documents": counts})
}

// handleUpload accepts a multipart form with a single "file" field, runs
// the pipeline synchronously, and returns the stored document row.
func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxFileBytes()); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	if _, err := docload.Detect(header.Filename); err != nil {
		writeError(w, http.StatusUnsupportedMediaType, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxFileBytes()+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if int64(len(data)) > s.cfg.MaxFileBytes() {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file exceeds max size (%d MB)", s.cfg.MaxFileMB))
		return
	}

	doc, err := processAndStore(r.Context(), s.proc, s.store, s.logger,
		header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		var perr *docload.ParseError
		if errors.As(err, &perr) {
			// The failed attempt is recorded; the client gets the row back.
			writeJSON(w, http.StatusUnprocessableEntity, doc)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Service) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	docs, err := s.store.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if docs == nil {
		docs = []*store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("document %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// chunkView is the chunk representation returned by the API: stored
// metadata inlined instead of a raw JSON string column.
type chunkView struct {
	ID         string          `json:"id"`
	ChunkIndex int             `json:"chunk_index"`
	Content    string          `json:"content"`
	Start      int             `json:"start_offset"`
	End        int             `json:"end_offset"`
	Metadata   json.RawMessage `json:"metadata"`
}

func (s *Service) handleListChunks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("document %s not found", id))
		return
	}
	chunks, err := s.store.ListChunks(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	views := make([]chunkView, len(chunks))
	for i, c := range chunks {
		views[i] = chunkView{
			ID:         c.ID,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Start:      c.StartOffset,
			End:        c.EndOffset,
			Metadata:   json.RawMessage(c.MetadataJSON),
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
