package kiro

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const defaultAgentKey = "chat.defaultAgent"

// defaultAgentPattern recovers the key from files that are not strict JSON
// (comments, trailing commas).
var defaultAgentPattern = regexp.MustCompile(`"chat\.defaultAgent"\s*:\s*"([^"]*)"`)

// DefaultSettingsPath returns kiro-cli's settings file, ~/.kiro/settings/cli.json.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kiro", "settings", "cli.json")
}

// HostSettings reads and updates the default agent in kiro-cli's settings.
type HostSettings struct {
	client *Client
	path   string
}

// NewHostSettings creates a HostSettings for the file at path. An empty path
// uses DefaultSettingsPath. Updates go through client.
func NewHostSettings(path string, client *Client) *HostSettings {
	if path == "" {
		path = DefaultSettingsPath()
	}
	return &HostSettings{path: path, client: client}
}

// Path returns the settings file path.
func (s *HostSettings) Path() string {
	return s.path
}

// DefaultAgent returns the configured default agent. The file is read on
// every call; a missing or unreadable file means no default.
func (s *HostSettings) DefaultAgent() (string, bool) {
	if s.path == "" {
		return "", false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	return ParseDefaultAgent(data)
}

// SyncDefaultAgent persists id as kiro-cli's default agent via
// `kiro-cli settings chat.defaultAgent <id>`.
func (s *HostSettings) SyncDefaultAgent(ctx context.Context, id string) error {
	if _, err := s.client.run(ctx, "settings", defaultAgentKey, id); err != nil {
		return fmt.Errorf("set %s: %w", defaultAgentKey, err)
	}
	return nil
}

// ParseDefaultAgent extracts chat.defaultAgent from settings file contents.
// Both the flat dotted key and a nested "chat" object are accepted.
func ParseDefaultAgent(data []byte) (string, bool) {
	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err == nil {
		if v, ok := settings[defaultAgentKey].(string); ok && v != "" {
			return v, true
		}
		if chat, ok := settings["chat"].(map[string]interface{}); ok {
			if v, ok := chat["defaultAgent"].(string); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if m := defaultAgentPattern.FindSubmatch(data); m != nil && len(m[1]) > 0 {
		return string(m[1]), true
	}
	return "", false
}
