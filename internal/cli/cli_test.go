package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParsePositionalConfigPath(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"host.hcl"}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "host.hcl", cfg.ConfigPath)
	assert.Equal(t, "modules", cfg.ModulesPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseFlagsWin(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{
		"--config", "a.hcl",
		"--log-format", "text",
		"--log-level", "DEBUG",
		"--plugins-dir", "/opt/plugins",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.ConfigPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/opt/plugins", cfg.PluginsDir)
}

func TestParseEnvDefaults(t *testing.T) {
	t.Setenv("MODGRID_LOG_LEVEL", "warn")
	t.Setenv("MODGRID_CONFIG", "env.hcl")

	var out bytes.Buffer
	cfg, shouldExit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "env.hcl", cfg.ConfigPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParseInvalidLogFormat(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--log-format", "xml", "host.hcl"}, &out)
	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseInvalidLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--log-level", "loud", "host.hcl"}, &out)
	require.Error(t, err)
	assert.IsType(t, &ExitError{}, err)
}
