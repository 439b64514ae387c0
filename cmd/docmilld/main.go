// Entry point for the docmill HTTP service: chi router over the document
// pipeline, SQLite persistence, filesystem-backed asset store.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/pikahelper/docmill/assets"
	"github.com/pikahelper/docmill/dbopen"
	"github.com/pikahelper/docmill/ingestd"
	"github.com/pikahelper/docmill/store"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config (defaults used when empty)")
	flag.Parse()

	logger := newLogger(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	cfg := ingestd.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = ingestd.LoadConfig(*configPath)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
	}
	if listen := os.Getenv("LISTEN"); listen != "" {
		cfg.Listen = listen
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
	if err != nil {
		slog.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	st := store.NewStore(db)

	objects, err := assets.NewFSStore(cfg.AssetsDir, cfg.AssetsBaseURL)
	if err != nil {
		slog.Error("assets store", "error", err)
		os.Exit(1)
	}

	svc := ingestd.NewService(cfg, st, objects, logger)

	mux := http.NewServeMux()
	mux.Handle("/", svc.Router())
	// Serve uploaded assets when the base url is a local path.
	if strings.HasPrefix(cfg.AssetsBaseURL, "/") {
		prefix := strings.TrimRight(cfg.AssetsBaseURL, "/") + "/"
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.AssetsDir))))
	}

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // uploads are processed synchronously
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("docmilld listening", "addr", cfg.Listen, "db", cfg.DBPath, "assets", cfg.AssetsDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
