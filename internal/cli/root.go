// Package cli provides the command-line interface for coursegraph.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/coursegraph/coursegraph/internal/config"
	"github.com/coursegraph/coursegraph/internal/generator"
	"github.com/coursegraph/coursegraph/internal/ingest"
	"github.com/coursegraph/coursegraph/internal/llm"
	"github.com/coursegraph/coursegraph/internal/rag"
	"github.com/coursegraph/coursegraph/internal/session"
	"github.com/coursegraph/coursegraph/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and store client
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
	storeClient *store.Client

	// Lazy-initialized question answering system
	ragSystem *rag.System
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "coursegraph",
	Short: "Course materials question answering",
	Long: `Coursegraph indexes course documents into a vector store and answers
questions about them with an LLM that searches the indexed content
and cites the lessons it used.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, closeLogger = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		ctx := context.Background()
		clientCfg := store.ClientConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		storeClient, err = store.NewClient(ctx, clientCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := storeClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if storeClient != nil {
			if err := storeClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// getSystem builds the question answering system, initializing the LLM
// backends on first use.
func getSystem(ctx context.Context) (*rag.System, error) {
	if ragSystem != nil {
		return ragSystem, nil
	}

	embedder, err := llm.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}

	courseStore := store.New(storeClient, embedder, cfg.MaxResults)
	gen := generator.New(model, generator.Config{
		MaxToolRounds: cfg.MaxToolRounds,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		Logger:        logger,
	})
	sessions := session.NewManager(cfg.MaxHistory)
	ingestor := ingest.New(courseStore, cfg.ChunkSize, cfg.ChunkOverlap, logger)

	ragSystem = rag.New(courseStore, gen, sessions, ingestor, logger)
	return ragSystem, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(clearCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
