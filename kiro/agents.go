package kiro

import (
	"context"
	"strings"

	"github.com/bazelment/yoloswe/kiro-acp/transcript"
)

// Agent is one entry of `kiro-cli agent list`.
type Agent struct {
	ID          string
	Description string
	Default     bool
}

// ListAgents runs `kiro-cli agent list` and parses its output.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	out, err := c.run(ctx, "agent", "list")
	if err != nil {
		return nil, err
	}
	return ParseAgentList(string(out)), nil
}

// ParseAgentList scrapes the human-readable agent listing. A leading '*'
// marks the default agent, the first token is the agent id and the rest of
// the line is its description. Lines whose first token ends in ':' are
// section headers.
func ParseAgentList(out string) []Agent {
	var agents []Agent
	seen := make(map[string]bool)

	for _, line := range strings.Split(transcript.StripANSI(out), "\n") {
		line = strings.TrimSpace(line)
		rest, isDefault := strings.CutPrefix(line, "*")
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		id := fields[0]
		if strings.HasSuffix(id, ":") || seen[id] {
			continue
		}
		seen[id] = true

		agents = append(agents, Agent{
			ID:          id,
			Description: strings.Join(fields[1:], " "),
			Default:     isDefault,
		})
	}
	return agents
}
