package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmallory42/semchunk/internal/api"
	"github.com/dmallory42/semchunk/internal/chunker"
	"github.com/dmallory42/semchunk/internal/config"
	"github.com/dmallory42/semchunk/internal/index"
	"github.com/dmallory42/semchunk/internal/pipeline"
	"github.com/dmallory42/semchunk/internal/sentence"
	"github.com/dmallory42/semchunk/internal/token"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var counter chunker.TokenCounter = token.Estimator{}
	if cfg.Tokenizer == "tiktoken" {
		tk, err := token.NewTiktoken(cfg.TokenEncoding)
		if err != nil {
			log.Warn("tiktoken unavailable, falling back to word-count estimator", "error", err)
		} else {
			counter = tk
		}
	}
	builder := chunker.NewBuilder(counter, sentence.Splitter{}, log)

	var idx *index.Client
	if cfg.IndexURL != "" {
		idx = index.NewClient(cfg.IndexURL, cfg.IndexAPIKey)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, builder, idx, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, builder, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if idx != nil {
			idx.Close()
		}
	}()

	log.Info("starting semchunk", "port", cfg.Port, "tokenizer", cfg.Tokenizer)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
