package transcript

import (
	"fmt"
	"strings"

	"github.com/bazelment/yoloswe/kiro-acp/agentstream"
)

// Strategy selects how a Translator interprets the transcript.
type Strategy string

const (
	// StrategyLines classifies every line and tracks tool calls.
	StrategyLines Strategy = "lines"
	// StrategyMarker drops the preamble before the answer marker and passes
	// the answer through verbatim.
	StrategyMarker Strategy = "marker"
)

// ParseStrategy validates a strategy name. The empty string selects
// StrategyLines.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyLines:
		return StrategyLines, nil
	case StrategyMarker:
		return StrategyMarker, nil
	default:
		return "", fmt.Errorf("unknown transcript strategy %q (want lines or marker)", s)
	}
}

// Translator converts raw subprocess stdout into events for one turn. It is
// not safe for concurrent use.
type Translator interface {
	// Push consumes one raw chunk in arrival order.
	Push(raw string) []agentstream.Event
	// Close flushes buffered text after the subprocess exited with exitCode
	// (negative when unknown) and closes any open tool call.
	Close(exitCode int) []agentstream.Event
}

// New returns a Translator for strategy. Unknown strategies use
// StrategyLines.
func New(strategy Strategy, newID IDFunc) Translator {
	if strategy == StrategyMarker {
		return &MarkerTranslator{}
	}
	return NewLineTranslator(newID)
}

// LineTranslator implements StrategyLines.
type LineTranslator struct {
	tools *ToolCallTracker
	buf   ChunkBuffer
	lines LineSplitter
}

// NewLineTranslator creates a LineTranslator. A nil newID uses
// NewToolCallID.
func NewLineTranslator(newID IDFunc) *LineTranslator {
	return &LineTranslator{tools: NewToolCallTracker(newID)}
}

func (t *LineTranslator) Push(raw string) []agentstream.Event {
	return t.handleLines(t.lines.Write(t.buf.Push(raw)))
}

func (t *LineTranslator) Close(exitCode int) []agentstream.Event {
	events := t.handleLines(t.lines.Write(t.buf.Flush()))
	events = append(events, t.handleLines(t.lines.Close())...)
	return append(events, t.tools.FinishExit(exitCode)...)
}

func (t *LineTranslator) handleLines(lines []string) []agentstream.Event {
	var events []agentstream.Event
	for _, line := range lines {
		c := Classify(line, t.tools.Open())
		switch c.Kind {
		case LineToolStart:
			events = append(events, t.tools.Start(c.Command, c.Tool)...)
		case LineToolOutput:
			events = append(events, t.tools.Append(c.Text)...)
		case LineToolComplete:
			events = append(events, t.tools.Finish(false)...)
		case LineToolFailed:
			events = append(events, t.tools.Finish(true)...)
		case LineThought:
			events = append(events, ThoughtEvent{Text: c.Text + "\n"})
		case LineProse:
			events = append(events, TextEvent{Text: c.Text + "\n"})
		case LineNoise:
		}
	}
	return events
}

// MarkerTranslator implements StrategyMarker. Before the answer marker (a
// line that is ">" or starts with "> ") only tool markers and error or
// warning lines are forwarded. Everything after the marker is forwarded as
// text exactly as normalized.
type MarkerTranslator struct {
	buf      ChunkBuffer
	preamble strings.Builder
	inBody   bool
}

func (t *MarkerTranslator) Push(raw string) []agentstream.Event {
	return t.handle(t.buf.Push(raw), false)
}

func (t *MarkerTranslator) Close(int) []agentstream.Event {
	return t.handle(t.buf.Flush(), true)
}

func (t *MarkerTranslator) handle(text string, final bool) []agentstream.Event {
	if t.inBody {
		return textEvents(text)
	}

	t.preamble.WriteString(text)
	pending := t.preamble.String()
	t.preamble.Reset()

	var events []agentstream.Event
	for {
		line, rest, terminated, ok := cutLine(pending, final)
		if !ok {
			t.preamble.WriteString(pending)
			return events
		}
		pending = rest

		if body, isMarker := answerBody(line); isMarker {
			t.inBody = true
			if body != "" && terminated {
				body += "\n"
			}
			return append(events, textEvents(body+rest)...)
		}
		if isToolMarker(line) || preambleAlertPattern.MatchString(line) {
			events = append(events, TextEvent{Text: line + "\n"})
		}
	}
}

// cutLine splits the first line off s. With final unset, a line is only
// returned once its terminator is known; a trailing CR could still be the
// start of CRLF.
func cutLine(s string, final bool) (line, rest string, terminated, ok bool) {
	i := strings.IndexAny(s, "\r\n")
	switch {
	case i < 0:
		if final && s != "" {
			return s, "", false, true
		}
		return "", s, false, false
	case s[i] == '\n':
		return s[:i], s[i+1:], true, true
	case i+1 < len(s):
		if s[i+1] == '\n' {
			return s[:i], s[i+2:], true, true
		}
		return s[:i], s[i+1:], true, true
	case final:
		return s[:i], "", true, true
	default:
		return "", s, false, false
	}
}

// answerBody reports whether line is the answer marker and returns the text
// that follows it on the same line.
func answerBody(line string) (string, bool) {
	if line == ">" {
		return "", true
	}
	if body, ok := strings.CutPrefix(line, "> "); ok {
		return body, true
	}
	return "", false
}

func textEvents(text string) []agentstream.Event {
	if text == "" {
		return nil
	}
	return []agentstream.Event{TextEvent{Text: text}}
}
