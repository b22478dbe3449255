package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mav/genflow/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("genflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Genflow - a node-graph runtime for generative media workflows.

Usage:
  genflow [options] COMMAND WORKFLOW_PATH

Commands:
  validate
    Check the workflow for missing inputs, bad connections, and cycles.
  run
    Execute the workflow against the configured generation service.

Options:
`)
		flagSet.PrintDefaults()
	}

	serviceURLFlag := flagSet.String("service-url", "", "Base URL of the generation service. Defaults to GENFLOW_API_URL.")
	catalogFlag := flagSet.String("catalog", "", "Path to a directory of .hcl node-type manifests.")
	debugFlag := flagSet.Bool("debug", false, "Run with provider debug payload capture enabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	command := strings.ToLower(flagSet.Arg(0))
	path := flagSet.Arg(1)
	if path == "" {
		return nil, false, &ExitError{Code: 2, Message: "a workflow file path is required"}
	}
	slog.Debug("Workflow path determined.", "command", command, "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		WorkflowPath: path,
		CatalogPath:  *catalogFlag,
		ServiceURL:   *serviceURLFlag,
		Command:      command,
		DebugMode:    *debugFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
