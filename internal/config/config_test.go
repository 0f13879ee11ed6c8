package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvConfigPath,
		"KIRO_ACP_CLI_PATH", "KIRO_ACP_AGENT", "KIRO_ACP_MODEL",
		"KIRO_ACP_TRUST_ALL_TOOLS", "KIRO_ACP_TRUST_TOOLS", "KIRO_ACP_WRAP",
		"KIRO_ACP_VERBOSE", "KIRO_ACP_STRATEGY", "KIRO_ACP_SETTINGS_PATH",
		"KIRO_ACP_LOG_LEVEL",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
cli_path: /opt/kiro/bin/kiro-cli
agent: reviewer
trust_all_tools: false
wrap: auto
strategy: marker
log_level: debug
`)
	t.Setenv("KIRO_ACP_MODEL", "claude-sonnet-4")
	t.Setenv("KIRO_ACP_VERBOSE", "1")
	t.Setenv("KIRO_ACP_AGENT", "planner")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		CLIPath:       "/opt/kiro/bin/kiro-cli",
		Agent:         "planner",
		Model:         "claude-sonnet-4",
		Wrap:          "auto",
		Strategy:      "marker",
		LogLevel:      "debug",
		TrustAllTools: false,
		Verbose:       true,
	}, config)
	assert.Equal(t, slog.LevelDebug, config.Level())
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, writeConfig(t, "trust_tools: fs_read,shell\n"))

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fs_read,shell", config.TrustTools)
	assert.True(t, config.TrustAllTools, "unset keys keep their defaults")
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "wrap: sometimes\nstrategy: json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrap")
	assert.Contains(t, err.Error(), "strategy")

	_, err = Load(writeConfig(t, "agent: [unterminated\n"))
	assert.Error(t, err)

	t.Setenv("KIRO_ACP_TRUST_ALL_TOOLS", "maybe")
	_, err = Load(writeConfig(t, ""))
	assert.ErrorContains(t, err, "KIRO_ACP_TRUST_ALL_TOOLS")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KIRO_ACP_CLI_PATH":        " /usr/bin/kiro-cli ",
		"KIRO_ACP_TRUST_ALL_TOOLS": "false",
		"KIRO_ACP_WRAP":            "always",
		"KIRO_ACP_VERBOSE":         "",
	}
	config := Default()
	require.NoError(t, config.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "/usr/bin/kiro-cli", config.CLIPath)
	assert.False(t, config.TrustAllTools)
	assert.Equal(t, "always", config.Wrap)
	assert.False(t, config.Verbose)
}

func TestApplyEnv_EmptyValuesKeepDefaults(t *testing.T) {
	env := map[string]string{
		"KIRO_ACP_WRAP":      "",
		"KIRO_ACP_STRATEGY":  "  ",
		"KIRO_ACP_LOG_LEVEL": "",
	}
	config := Default()
	require.NoError(t, config.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, Default(), config)
	assert.NoError(t, config.Validate())
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "kiro-acp configuration", schema["title"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "cli_path")
	assert.Contains(t, props, "trust_all_tools")

	wrap, ok := props["wrap"].(map[string]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"always", "never", "auto"}, wrap["enum"])
}

func TestSchema_NoRequiredKeys(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Empty(t, schema["required"], "every key is optional")
}
