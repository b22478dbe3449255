package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// WorkflowPath is the persisted workflow file to load.
	WorkflowPath string
	// CatalogPath optionally points at .hcl node-type manifests layered
	// over the builtin catalog.
	CatalogPath string

	// ServiceURL and APIKey locate the remote execution service. Both may
	// also come from the environment (GENFLOW_API_URL / GENFLOW_API_KEY).
	ServiceURL string
	APIKey     string

	// Command selects what to do with the workflow: "validate" or "run".
	Command string

	DebugMode bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a config and fills environment-backed defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	if cfg.Command == "" {
		cfg.Command = "validate"
	}
	if cfg.Command != "validate" && cfg.Command != "run" {
		return nil, errors.New("command must be 'validate' or 'run'")
	}
	return &cfg, nil
}
