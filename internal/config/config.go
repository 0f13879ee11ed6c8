// Package config loads kiro-acp configuration from a YAML file and
// KIRO_ACP_* environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at the config
// file.
const EnvConfigPath = "KIRO_ACP_CONFIG"

// Config is the kiro-acp configuration.
type Config struct {
	CLIPath       string `yaml:"cli_path,omitempty" jsonschema:"description=Path to the kiro-cli binary. Looked up in PATH when empty."`
	Agent         string `yaml:"agent,omitempty" jsonschema:"description=Initial mode (kiro-cli agent) for new sessions."`
	Model         string `yaml:"model,omitempty" jsonschema:"description=Initial model for new sessions."`
	TrustTools    string `yaml:"trust_tools,omitempty" jsonschema:"description=Comma separated tools to trust. Takes precedence over trust_all_tools."`
	Wrap          string `yaml:"wrap,omitempty" jsonschema:"enum=always,enum=never,enum=auto,default=never"`
	Strategy      string `yaml:"strategy,omitempty" jsonschema:"enum=lines,enum=marker,default=lines,description=How the chat transcript is translated."`
	SettingsPath  string `yaml:"settings_path,omitempty" jsonschema:"description=kiro-cli settings file read for the host default agent."`
	LogLevel      string `yaml:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	LogFile       string `yaml:"log_file,omitempty" jsonschema:"description=Also write logs to this file."`
	TrustAllTools bool   `yaml:"trust_all_tools,omitempty" jsonschema:"default=true"`
	Verbose       bool   `yaml:"verbose,omitempty" jsonschema:"description=Pass --verbose to kiro-cli chat."`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Wrap:          "never",
		Strategy:      "lines",
		LogLevel:      "info",
		TrustAllTools: true,
	}
}

// DefaultPath returns $KIRO_ACP_CONFIG, or ~/.config/kiro-acp/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "kiro-acp", "config.yaml")
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path uses DefaultPath, and a missing
// default file yields the defaults; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from KIRO_ACP_* variables found by lookup.
// Variables that are set but empty are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"KIRO_ACP_CLI_PATH":      &c.CLIPath,
		"KIRO_ACP_AGENT":         &c.Agent,
		"KIRO_ACP_MODEL":         &c.Model,
		"KIRO_ACP_TRUST_TOOLS":   &c.TrustTools,
		"KIRO_ACP_WRAP":          &c.Wrap,
		"KIRO_ACP_STRATEGY":      &c.Strategy,
		"KIRO_ACP_SETTINGS_PATH": &c.SettingsPath,
		"KIRO_ACP_LOG_LEVEL":     &c.LogLevel,
	}
	for name, field := range strs {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}

	bools := map[string]*bool{
		"KIRO_ACP_TRUST_ALL_TOOLS": &c.TrustAllTools,
		"KIRO_ACP_VERBOSE":         &c.Verbose,
	}
	for name, field := range bools {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", name, v, err)
		}
		*field = b
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	var errs []error
	if !oneOf(c.Wrap, "always", "never", "auto") {
		errs = append(errs, fmt.Errorf("wrap must be always, never or auto, got %q", c.Wrap))
	}
	if !oneOf(c.Strategy, "lines", "marker") {
		errs = append(errs, fmt.Errorf("strategy must be lines or marker, got %q", c.Strategy))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Schema returns the JSON schema of the config file format.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		FieldNameTag:   "yaml",
	}
	schema := reflector.Reflect(&Config{})
	schema.Title = "kiro-acp configuration"
	return json.MarshalIndent(schema, "", "  ")
}
