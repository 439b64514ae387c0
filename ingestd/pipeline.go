package ingestd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pikahelper/docmill/assets"
	"github.com/pikahelper/docmill/docload"
	"github.com/pikahelper/docmill/docproc"
	"github.com/pikahelper/docmill/idgen"
	"github.com/pikahelper/docmill/linkscan"
	"github.com/pikahelper/docmill/segment"
	"github.com/pikahelper/docmill/store"
)

// newDocID generates document ids ("doc_" + UUIDv7).
var newDocID = idgen.Prefixed("doc_", idgen.Default)

// chunkMetadata is the JSON persisted per chunk alongside the lifted
// columns (index, content, offsets).
type chunkMetadata struct {
	Images     []string             `json:"images"`
	URLs       []string             `json:"urls"`
	URLDetails []linkscan.Reference `json:"url_details"`
	HasImages  bool                 `json:"has_images"`
	HasLinks   bool                 `json:"has_links"`
	ImageCount int                  `json:"image_count"`
	LinkCount  int                  `json:"link_count"`
}

// processAndStore runs one document through proc and persists the outcome.
// Every attempt leaves a document row in a terminal status; the returned
// error reflects the processing failure, if any.
func processAndStore(ctx context.Context, proc *docproc.Processor, st *store.Store, logger *slog.Logger, name, contentType string, data []byte) (*store.Document, error) {
	doc := &store.Document{
		ID:          newDocID(),
		Name:        name,
		ContentType: contentType,
		Status:      store.StatusProcessing,
	}
	if err := st.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	res, err := proc.Process(ctx, name, data)
	if err != nil {
		if ferr := st.FinishDocument(ctx, doc.ID, store.StatusFailed, err.Error(), 0, 0, 0); ferr != nil {
			logger.Error("record failure", "doc", name, "error", ferr)
		}
		doc.Status = store.StatusFailed
		doc.Error = err.Error()
		return doc, err
	}

	rows := make([]*store.Chunk, len(res.Chunks))
	for i, rec := range res.Chunks {
		meta, err := json.Marshal(chunkMetadata{
			Images:     rec.Images,
			URLs:       rec.URLs,
			URLDetails: rec.URLDetails,
			HasImages:  rec.HasImages,
			HasLinks:   rec.HasLinks,
			ImageCount: rec.ImageCount,
			LinkCount:  rec.LinkCount,
		})
		if err != nil {
			return doc, fmt.Errorf("marshal chunk metadata: %w", err)
		}
		rows[i] = &store.Chunk{
			ID:           store.ChunkID(res.Doc.Name, rec.ChunkIndex),
			DocumentID:   doc.ID,
			ChunkIndex:   rec.ChunkIndex,
			Content:      rec.Content,
			StartOffset:  rec.Start,
			EndOffset:    rec.End,
			MetadataJSON: string(meta),
		}
	}
	if err := st.InsertChunks(ctx, rows); err != nil {
		if ferr := st.FinishDocument(ctx, doc.ID, store.StatusFailed, err.Error(), 0, 0, 0); ferr != nil {
			logger.Error("record failure", "doc", name, "error", ferr)
		}
		return doc, fmt.Errorf("insert chunks: %w", err)
	}

	status := store.StatusCompleted
	if res.Empty {
		status = store.StatusEmpty
	}
	if err := st.FinishDocument(ctx, doc.ID, status, "", len(res.Chunks), len(res.Links), len(res.ImageMap)); err != nil {
		return doc, fmt.Errorf("finish document: %w", err)
	}
	doc.Status = status
	doc.ChunkCount = len(res.Chunks)
	doc.LinkCount = len(res.Links)
	doc.ImageCount = len(res.ImageMap)
	return doc, nil
}

// segmentOptions builds segmentation options from config.
func (c *Config) segmentOptions() segment.Options {
	return segment.Options{MaxChunkSize: c.ChunkSize, Overlap: c.ChunkOverlap}
}

// ProcessFile runs one in-memory document through a fresh Processor and
// persists the outcome. Used by the CLI; the HTTP service keeps one
// Processor per Service instead.
func ProcessFile(ctx context.Context, cfg *Config, st *store.Store, objects assets.ObjectStore, logger *slog.Logger, name string, data []byte) (*store.Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	proc := docproc.New(objects, docproc.Config{
		Segment: cfg.segmentOptions(),
		Loader:  docload.Config{MaxFileSize: cfg.MaxFileBytes()},
		Logger:  logger,
	})
	return processAndStore(ctx, proc, st, logger, name, "", data)
}
