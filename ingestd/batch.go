package ingestd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pikahelper/docmill/assets"
	"github.com/pikahelper/docmill/docload"
	"github.com/pikahelper/docmill/docproc"
	"github.com/pikahelper/docmill/store"
)

// BatchSummary reports the outcome of one inbox scan.
type BatchSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"` // unsupported extensions
}

// RunBatch processes every supported file under dir with cfg.Workers
// concurrent workers. One document failing never stops the batch: the
// failure is recorded and the next file proceeds. Files are dispatched in
// name order so runs over the same inbox are reproducible.
func RunBatch(ctx context.Context, cfg *Config, st *store.Store, objects assets.ObjectStore, logger *slog.Logger, dir string) (*BatchSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox %s: %w", dir, err)
	}

	var files []string
	summary := &BatchSummary{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		summary.Total++
		if _, err := docload.Detect(e.Name()); err != nil {
			summary.Skipped++
			logger.Info("skipping unsupported file", "file", e.Name())
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker owns its Processor; nothing is shared across
			// in-flight documents except the database.
			proc := docproc.New(objects, docproc.Config{
				Segment: cfg.segmentOptions(),
				Loader:  docload.Config{MaxFileSize: cfg.MaxFileBytes()},
				Logger:  logger,
			})
			for name := range jobs {
				doc := runBatchFile(ctx, proc, st, logger, dir, name)
				mu.Lock()
				switch {
				case doc == nil || doc.Status == store.StatusFailed:
					summary.Failed++
				case doc.Status == store.StatusEmpty:
					summary.Empty++
				default:
					summary.Completed++
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, name := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- name:
		}
	}
	close(jobs)
	wg.Wait()

	logger.Info("batch finished", "dir", dir,
		"total", summary.Total, "completed", summary.Completed,
		"empty", summary.Empty, "failed", summary.Failed, "skipped", summary.Skipped)
	return summary, ctx.Err()
}

func runBatchFile(ctx context.Context, proc *docproc.Processor, st *store.Store, logger *slog.Logger, dir, name string) *store.Document {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		logger.Error("read file, skipping", "file", name, "error", err)
		return nil
	}
	doc, err := processAndStore(ctx, proc, st, logger, name, "", data)
	if err != nil {
		logger.Error("document failed, continuing", "file", name, "error", err)
	}
	return doc
}
