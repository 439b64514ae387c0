// Package docproc runs the full segmentation pipeline for one document:
// load → link scan → image resolution → segmentation → record assembly.
//
// The core performs no retries and has no cancellation of its own: a
// failure aborts only the current document, and batch-level skip-and-
// continue belongs to the caller.
package docproc

import (
	"context"
	"log/slog"

	"github.com/pikahelper/docmill/assets"
	"github.com/pikahelper/docmill/docload"
	"github.com/pikahelper/docmill/linkscan"
	"github.com/pikahelper/docmill/segment"
)

// Config configures a Processor.
type Config struct {
	Segment segment.Options
	Loader  docload.Config
	Rules   []linkscan.Rule // link classification; nil means defaults
	Logger  *slog.Logger
}

// Processor wires the loader, link extractor, image resolver and segmenter
// around one object-store handle. It holds no per-document state; batch
// workers each construct their own so nothing is shared across documents.
type Processor struct {
	loader    *docload.Loader
	extractor *linkscan.Extractor
	resolver  *assets.Resolver
	opts      segment.Options
	logger    *slog.Logger
}

// New creates a Processor backed by store.
func New(store assets.ObjectStore, cfg Config) *Processor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Loader.Logger = cfg.Logger
	return &Processor{
		loader:    docload.New(cfg.Loader),
		extractor: linkscan.New(cfg.Rules...),
		resolver:  assets.NewResolver(store, cfg.Logger),
		opts:      cfg.Segment,
		logger:    cfg.Logger,
	}
}

// Result is the outcome of processing one document.
type Result struct {
	Doc      *docload.Document
	Links    []linkscan.Reference
	ImageMap map[string]string // relationship id → external URL
	Chunks   []segment.Record

	// Empty is set when zero chunks were produced. Not an error: the
	// caller should flag the document for manual review.
	Empty bool
}

// Process parses data, uploads its images, and returns the assembled chunk
// records. The only fatal failure is a document that cannot be loaded
// (*docload.ParseError for malformed containers); per-image upload
// failures are logged and skipped inside the resolver.
func (p *Processor) Process(ctx context.Context, name string, data []byte) (*Result, error) {
	doc, err := p.loader.Load(ctx, name, data)
	if err != nil {
		return nil, err
	}

	fullText := doc.FullText()
	links := p.extractor.Extract(fullText)
	imageMap := p.resolver.Resolve(ctx, doc)

	chunks := segment.Split(doc.Paragraphs, imageMap, links, p.opts)
	records := segment.BuildRecords(chunks)

	res := &Result{
		Doc:      doc,
		Links:    links,
		ImageMap: imageMap,
		Chunks:   records,
	}
	if len(records) == 0 {
		res.Empty = true
		p.logger.Warn("document produced no chunks", "doc", doc.Name, "paragraphs", len(doc.Paragraphs))
	} else {
		p.logger.Info("document segmented",
			"doc", doc.Name, "chunks", len(records), "links", len(links), "images", len(imageMap))
	}
	return res, nil
}
