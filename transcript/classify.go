package transcript

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// LineKind is the classification of one transcript line.
type LineKind int

const (
	LineProse LineKind = iota
	LineThought
	LineToolStart
	LineToolOutput
	LineToolComplete
	LineToolFailed
	LineNoise
)

func (k LineKind) String() string {
	switch k {
	case LineProse:
		return "prose"
	case LineThought:
		return "thought"
	case LineToolStart:
		return "tool_start"
	case LineToolOutput:
		return "tool_output"
	case LineToolComplete:
		return "tool_complete"
	case LineToolFailed:
		return "tool_failed"
	case LineNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// Classification is the result of Classify. Command and Tool are set for
// LineToolStart only.
type Classification struct {
	Text    string
	Command string
	Tool    string
	Kind    LineKind
}

var (
	// Leading decoration (bullets, emoji, box drawing) is anything that is
	// not a letter.
	toolStartPattern = regexp.MustCompile(`^[^\p{L}]*I will run the following (?:shell )?command:\s*(.*?)\s*\(using tool:\s*([^)]*?)\s*\)\s*$`)

	toolCompletePattern = regexp.MustCompile(`^\s*(?:[-*•●✓✔]\s*)?Completed in\b`)
	toolFailedPattern   = regexp.MustCompile(`^\s*(?:[-*•●✗✘]\s*)?Failed(?:\s+in\b|:)`)

	thoughtPattern = regexp.MustCompile(`(?i)^\s*(?:thinking|thought|analysis|reasoning|scratchpad):`)

	// preambleAlertPattern matches error and warning lines the marker
	// strategy forwards from the preamble.
	preambleAlertPattern = regexp.MustCompile(`^\s*(?:[✗⚠]|Error\b|error:|Warning\b|warning:)`)
)

// Classify assigns a kind to one normalized line. toolOpen reports whether a
// tool call is currently open. Classify is pure; the caller owns all state.
func Classify(line string, toolOpen bool) Classification {
	if m := toolStartPattern.FindStringSubmatch(line); m != nil {
		return Classification{Kind: LineToolStart, Text: line, Command: m[1], Tool: m[2]}
	}
	if isSpinnerFrame(line) {
		return Classification{Kind: LineNoise, Text: line}
	}
	if toolOpen {
		switch {
		case toolCompletePattern.MatchString(line):
			return Classification{Kind: LineToolComplete, Text: line}
		case toolFailedPattern.MatchString(line):
			return Classification{Kind: LineToolFailed, Text: line}
		default:
			return Classification{Kind: LineToolOutput, Text: line}
		}
	}
	if thoughtPattern.MatchString(line) {
		return Classification{Kind: LineThought, Text: line}
	}
	return Classification{Kind: LineProse, Text: line}
}

// isSpinnerFrame reports whether line starts with a braille spinner glyph.
func isSpinnerFrame(line string) bool {
	r, _ := utf8.DecodeRuneInString(strings.TrimLeft(line, " \t"))
	return r >= '⠁' && r <= '⣿'
}

// isToolMarker reports whether line looks like a tool announcement or a
// completion or failure marker, regardless of tool state.
func isToolMarker(line string) bool {
	return toolStartPattern.MatchString(line) ||
		toolCompletePattern.MatchString(line) ||
		toolFailedPattern.MatchString(line)
}

var shellTools = map[string]bool{
	"shell":        true,
	"execute_bash": true,
	"execute_cmd":  true,
	"bash":         true,
	"sh":           true,
	"zsh":          true,
	"run_command":  true,
	"run_shell":    true,
}

// ToolKind maps a kiro-cli tool name onto an ACP tool kind.
func ToolKind(tool string) string {
	name := strings.ToLower(strings.TrimSpace(tool))
	if shellTools[name] || strings.Contains(name, "shell") || strings.Contains(name, "bash") {
		return "execute"
	}
	return "other"
}
