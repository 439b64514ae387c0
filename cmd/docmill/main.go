// docmill is the one-shot CLI: process a single document or an inbox
// directory and either print the chunk records as JSON or persist them.
//
//	docmill -file report.docx                 # chunks to stdout
//	docmill -file report.docx -db docmill.db  # chunks to the database
//	docmill -dir inbox -db docmill.db         # batch mode
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/pikahelper/docmill/assets"
	"github.com/pikahelper/docmill/dbopen"
	"github.com/pikahelper/docmill/docload"
	"github.com/pikahelper/docmill/docproc"
	"github.com/pikahelper/docmill/ingestd"
	"github.com/pikahelper/docmill/segment"
	"github.com/pikahelper/docmill/store"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "single document to process")
	dir := flag.String("dir", "", "inbox directory to process")
	dbPath := flag.String("db", "", "SQLite database; empty prints JSON to stdout (single file only)")
	assetsDir := flag.String("assets", "assets", "directory receiving extracted images")
	assetsBase := flag.String("assets-base-url", "/assets", "public base url for extracted images")
	chunkSize := flag.Int("chunk-size", 1000, "max chunk size in characters")
	overlap := flag.Int("overlap", 200, "overlap between chunks in characters")
	workers := flag.Int("workers", 4, "batch workers")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if (*file == "") == (*dir == "") {
		logger.Error("exactly one of -file or -dir is required")
		os.Exit(2)
	}

	cfg := ingestd.DefaultConfig()
	cfg.AssetsDir = *assetsDir
	cfg.AssetsBaseURL = *assetsBase
	cfg.ChunkSize = *chunkSize
	cfg.ChunkOverlap = *overlap
	cfg.Workers = *workers
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid options", "error", err)
		os.Exit(2)
	}

	objects, err := assets.NewFSStore(cfg.AssetsDir, cfg.AssetsBaseURL)
	if err != nil {
		logger.Error("assets store", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dir != "" {
		if *dbPath == "" {
			logger.Error("-dir requires -db")
			os.Exit(2)
		}
		st := openStore(cfg, logger)
		summary, err := ingestd.RunBatch(ctx, cfg, st, objects, logger, *dir)
		if err != nil {
			logger.Error("batch", "error", err)
			os.Exit(1)
		}
		json.NewEncoder(os.Stdout).Encode(summary)
		if summary.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("read file", "error", err)
		os.Exit(1)
	}
	name := filepath.Base(*file)

	if *dbPath != "" {
		st := openStore(cfg, logger)
		doc, err := ingestd.ProcessFile(ctx, cfg, st, objects, logger, name, data)
		if err != nil {
			logger.Error("process", "doc", name, "error", err)
			os.Exit(1)
		}
		json.NewEncoder(os.Stdout).Encode(doc)
		return
	}

	proc := docproc.New(objects, docproc.Config{
		Segment: segment.Options{MaxChunkSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		Loader:  docload.Config{MaxFileSize: cfg.MaxFileBytes()},
		Logger:  logger,
	})
	res, err := proc.Process(ctx, name, data)
	if err != nil {
		logger.Error("process", "doc", name, "error", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(res.Chunks)
}

func openStore(cfg *ingestd.Config, logger *slog.Logger) *store.Store {
	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	return store.NewStore(db)
}
