// Package main provides the HTTP API server for coursegraph.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursegraph/coursegraph/internal/config"
	"github.com/coursegraph/coursegraph/internal/generator"
	"github.com/coursegraph/coursegraph/internal/ingest"
	"github.com/coursegraph/coursegraph/internal/llm"
	"github.com/coursegraph/coursegraph/internal/rag"
	"github.com/coursegraph/coursegraph/internal/server"
	"github.com/coursegraph/coursegraph/internal/session"
	"github.com/coursegraph/coursegraph/internal/store"
)

func main() {
	docsDir := flag.String("docs", "", "course documents folder to index on startup")
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()

	logger, closeLogger := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() {
		if err := closeLogger(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()

	slog.Info("starting coursegraph-server", "port", cfg.ServerPort)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	system, client, err := buildSystem(ctx, cfg, logger)
	cancel()
	if err != nil {
		slog.Error("failed to build system", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if *wipeDB || os.Getenv("COURSEGRAPH_WIPE_DB") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := client.ClearAll(ctx)
		cancel()
		if err != nil {
			slog.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
	}

	if *docsDir != "" {
		courses, chunks, err := system.AddCourseFolder(context.Background(), *docsDir, false, nil)
		if err != nil {
			slog.Error("startup ingestion failed", "dir", *docsDir, "error", err)
			os.Exit(1)
		}
		slog.Info("startup ingestion complete", "courses", courses, "chunks", chunks)
	}

	srv := server.New(system, cfg.ServerPort, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildSystem(ctx context.Context, cfg config.Config, logger *slog.Logger) (*rag.System, *store.Client, error) {
	client, err := store.NewClient(ctx, store.ClientConfig{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := client.InitSchema(ctx, cfg.EmbedDimension); err != nil {
		return nil, nil, err
	}

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	courseStore := store.New(client, embedder, cfg.MaxResults)
	gen := generator.New(model, generator.Config{
		MaxToolRounds: cfg.MaxToolRounds,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		Logger:        logger,
	})
	sessions := session.NewManager(cfg.MaxHistory)
	ingestor := ingest.New(courseStore, cfg.ChunkSize, cfg.ChunkOverlap, logger)

	return rag.New(courseStore, gen, sessions, ingestor, logger), client, nil
}
