package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("validate command with workflow path", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"validate", "demo.json"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "validate", cfg.Command)
		assert.Equal(t, "demo.json", cfg.WorkflowPath)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("run command with flags", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{
			"--service-url", "https://api.example.com",
			"--catalog", "manifests",
			"--debug",
			"--log-level", "DEBUG",
			"--log-format", "text",
			"run", "demo.json",
		}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "run", cfg.Command)
		assert.Equal(t, "https://api.example.com", cfg.ServiceURL)
		assert.Equal(t, "manifests", cfg.CatalogPath)
		assert.True(t, cfg.DebugMode)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("no arguments prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("missing workflow path", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"validate"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("unknown command", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"teleport", "demo.json"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "command must be")
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"--log-level", "loud", "validate", "demo.json"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "invalid log-level")
	})

	t.Run("invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"--log-format", "yaml", "validate", "demo.json"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "invalid log-format")
	})

	t.Run("help flag exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		_, exit, err := Parse([]string{"--help"}, &out)
		require.NoError(t, err)
		assert.True(t, exit)
	})
}
