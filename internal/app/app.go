package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mav/genflow/internal/catalog"
	"github.com/mav/genflow/internal/ctxlog"
	"github.com/mav/genflow/internal/state"
	"github.com/mav/genflow/internal/workflow"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	catalog *catalog.Catalog
	store   *state.Store
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, the node-type
// catalog (builtin plus any manifests), and the workflow loaded into the
// state store.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// .env is optional; explicit flags win over the environment.
	if err := godotenv.Load(); err == nil {
		logger.Debug(".env file loaded.")
	}
	if cfg.ServiceURL == "" {
		cfg.ServiceURL = os.Getenv("GENFLOW_API_URL")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GENFLOW_API_KEY")
	}

	cat := catalog.Builtin()
	if cfg.CatalogPath != "" {
		var err error
		cat, err = catalog.Load(ctx, cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load node-type catalog: %w", err)
		}
	}
	logger.Debug("Node-type catalog ready.", "kinds", len(cat.Kinds()))

	store := state.NewStore(cat)
	raw, err := os.ReadFile(cfg.WorkflowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	file, err := workflow.Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	store.Load(file)
	logger.Debug("Workflow loaded.",
		"name", file.Name, "nodes", len(file.Nodes), "edges", len(file.Edges))

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		catalog: cat,
		store:   store,
	}, nil
}

// Store returns the application's workflow state. This is primarily for testing.
func (a *App) Store() *state.Store {
	return a.store
}
