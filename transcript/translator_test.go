package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazelment/yoloswe/kiro-acp/agentstream"
)

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tool-%d", n)
	}
}

// translate feeds chunks to a fresh translator and closes it.
func translate(strategy Strategy, exitCode int, chunks ...string) []agentstream.Event {
	tr := New(strategy, sequentialIDs())
	var events []agentstream.Event
	for _, c := range chunks {
		events = append(events, tr.Push(c)...)
	}
	return append(events, tr.Close(exitCode)...)
}

// joinText concatenates the text of events so passthrough output can be
// compared independently of chunk boundaries.
func joinText(events []agentstream.Event) string {
	var sb strings.Builder
	for _, ev := range events {
		if text, ok := ev.(TextEvent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

const lsTranscript = "I will run the following command: ls (using tool: shell)\n" +
	"file.txt\n" +
	"- Completed in 0.1s\n" +
	"Done.\n"

func TestLineTranslator_ShellScenario(t *testing.T) {
	events := translate(StrategyLines, 0, lsTranscript)

	require.Len(t, events, 4)

	start, ok := events[0].(ToolStartEvent)
	require.True(t, ok)
	assert.Equal(t, "tool-1", start.ID)
	assert.Equal(t, "execute", start.Kind)
	assert.Contains(t, start.Title, "shell")
	assert.Contains(t, start.Title, "ls")
	assert.Equal(t, map[string]interface{}{"command": "ls", "tool": "shell"}, start.Input)

	assert.Equal(t, ToolProgressEvent{ID: "tool-1", Output: "file.txt"}, events[1])
	assert.Equal(t, ToolEndEvent{ID: "tool-1", Output: "file.txt"}, events[2])
	assert.Equal(t, TextEvent{Text: "Done.\n"}, events[3])
}

// hyperlinkTranscript wraps a word in an OSC 8 link whose target is longer
// than the ChunkBuffer tail.
const hyperlinkTranscript = "see \x1b]8;;https://example.com/a/very/long/path/to/some/file.go\x1b\\file.go\x1b]8;;\x1b\\ here\n"

func TestLineTranslator_Hyperlink(t *testing.T) {
	want := []agentstream.Event{TextEvent{Text: "see file.go here\n"}}
	assert.Equal(t, want, translate(StrategyLines, 0, hyperlinkTranscript))
	for i := 0; i <= len(hyperlinkTranscript); i++ {
		got := translate(StrategyLines, 0, hyperlinkTranscript[:i], hyperlinkTranscript[i:])
		require.Equal(t, want, got, "split at %d", i)
	}
}

func TestLineTranslator_ChunkSplitInvariance(t *testing.T) {
	transcripts := map[string]string{
		"shell": lsTranscript,
		"ansi": "\x1b[?25l\x1b[2K\r⠋ Thinking...\r\x1b[2K\x1b[1mThinking:\x1b[0m plan the change\r\n" +
			"\x1b[32m🛠️  I will run the following shell command: go test ./... (using tool: execute_bash)\x1b[0m\n" +
			"ok  \tpkg\t0.01s\r\n" +
			"\x1b]0;kiro\x07\x1b[31m - Failed in 2.1s\x1b[0m\n" +
			"Here is a summary with unicode ✓ 世界.\n" +
			"\n" +
			"I will run the following command: cat x (using tool: shell)\n" +
			"partial output without newline",
		"hyperlink": hyperlinkTranscript,
	}

	for name, raw := range transcripts {
		t.Run(name, func(t *testing.T) {
			want := translate(StrategyLines, 1, raw)
			require.NotEmpty(t, want)

			for i := 0; i <= len(raw); i++ {
				got := translate(StrategyLines, 1, raw[:i], raw[i:])
				require.Equal(t, want, got, "split at %d", i)
			}

			bytewise := make([]string, len(raw))
			for i := range raw {
				bytewise[i] = raw[i : i+1]
			}
			assert.Equal(t, want, translate(StrategyLines, 1, bytewise...))
		})
	}
}

func TestLineTranslator_ANSITranscript(t *testing.T) {
	raw := "\x1b[2K\r⠋ Thinking...\r\x1b[2K\x1b[1mThinking:\x1b[0m plan\n" +
		"\x1b[32mI will run the following command: make (using tool: shell)\x1b[0m\n" +
		"building\n" +
		"\x1b[31m- Failed in 2.1s\x1b[0m\n" +
		"\x1b[1mSorry\x1b[0m, the build failed.\n"

	events := translate(StrategyLines, 0, raw)

	require.Len(t, events, 5)
	assert.Equal(t, ThoughtEvent{Text: "Thinking: plan\n"}, events[0])
	assert.IsType(t, ToolStartEvent{}, events[1])
	assert.Equal(t, ToolProgressEvent{ID: "tool-1", Output: "building"}, events[2])
	assert.Equal(t, ToolEndEvent{ID: "tool-1", Output: "building", Failed: true}, events[3])
	assert.Equal(t, TextEvent{Text: "Sorry, the build failed.\n"}, events[4])

	for _, ev := range events {
		if text, ok := ev.(agentstream.Text); ok {
			assert.NotContains(t, text.StreamDelta(), "\x1b")
		}
	}
}

func TestLineTranslator_ExactlyOneTerminalStatus(t *testing.T) {
	raw := "I will run the following command: a (using tool: shell)\n" +
		"out a\n" +
		"I will run the following command: b (using tool: fs_read)\n" +
		"out b\n" +
		"- Completed in 1s\n" +
		"- Completed in 1s\n" +
		"I will run the following command: c (using tool: shell)\n" +
		"out c\n"

	for _, exitCode := range []int{0, 1, -1} {
		t.Run(fmt.Sprintf("exit %d", exitCode), func(t *testing.T) {
			events := translate(StrategyLines, exitCode, raw)

			terminal := map[string]int{}
			ended := map[string]bool{}
			started := 0
			for _, ev := range events {
				switch e := ev.(type) {
				case ToolStartEvent:
					started++
				case ToolProgressEvent:
					assert.False(t, ended[e.ID], "progress after end for %s", e.ID)
				case ToolEndEvent:
					terminal[e.ID]++
					ended[e.ID] = true
				}
			}

			assert.Equal(t, 3, started)
			assert.Equal(t, map[string]int{"tool-1": 1, "tool-2": 1, "tool-3": 1}, terminal)

			last, ok := events[len(events)-1].(ToolEndEvent)
			require.True(t, ok)
			assert.Equal(t, "tool-3", last.ID)
			assert.Equal(t, exitCode != 0, last.Failed)
		})
	}
}

func TestLineTranslator_ForcedCloseOnNextStart(t *testing.T) {
	events := translate(StrategyLines, 0,
		"I will run the following command: a (using tool: shell)\n",
		"line 1\nline 2\n",
		"I will run the following command: b (using tool: shell)\n",
		"- Completed in 1s\n")

	require.Len(t, events, 6)
	assert.Equal(t, ToolProgressEvent{ID: "tool-1", Output: "line 1"}, events[1])
	assert.Equal(t, ToolProgressEvent{ID: "tool-1", Output: "line 1\nline 2"}, events[2])
	assert.Equal(t, ToolEndEvent{ID: "tool-1", Output: "line 1\nline 2"}, events[3])
	assert.Equal(t, "tool-2", events[4].(ToolStartEvent).ID)
	assert.Equal(t, ToolEndEvent{ID: "tool-2"}, events[5])
}

func TestLineTranslator_DefaultIDsAreUnique(t *testing.T) {
	tr := NewLineTranslator(nil)
	a := tr.Push("I will run the following command: a (using tool: shell)\n" + strings.Repeat(" ", TailBytes))
	b := tr.Close(0)

	require.Len(t, a, 1)
	require.Len(t, b, 2)
	first := a[0].(ToolStartEvent).ID
	assert.True(t, strings.HasPrefix(first, "tool-"))
	assert.Equal(t, first, b[1].(ToolEndEvent).ID)

	assert.NotEqual(t, NewToolCallID(), NewToolCallID())
}

func TestMarkerTranslator(t *testing.T) {
	raw := "Loading agent config...\n" +
		"⠋ Thinking...\r" +
		"I will run the following command: ls (using tool: shell)\n" +
		"file.txt\n" +
		"- Completed in 0.1s\n" +
		"Warning: context is large\n" +
		"some internal chatter\n" +
		"> Here is the answer.\n" +
		"Thinking: this is body text now\n" +
		"I will run the following command: not a tool (using tool: shell)\r\n" +
		"end"

	preamble := []agentstream.Event{
		TextEvent{Text: "I will run the following command: ls (using tool: shell)\n"},
		TextEvent{Text: "- Completed in 0.1s\n"},
		TextEvent{Text: "Warning: context is large\n"},
	}
	body := "Here is the answer.\n" +
		"Thinking: this is body text now\n" +
		"I will run the following command: not a tool (using tool: shell)\r\n" +
		"end"

	events := translate(StrategyMarker, 0, raw)
	require.Greater(t, len(events), len(preamble))
	assert.Equal(t, preamble, events[:len(preamble)])
	assert.Equal(t, body, joinText(events[len(preamble):]))

	for i := 0; i <= len(raw); i++ {
		got := translate(StrategyMarker, 0, raw[:i], raw[i:])
		require.Equal(t, preamble, got[:len(preamble)], "split at %d", i)
		require.Equal(t, body, joinText(got[len(preamble):]), "split at %d", i)
	}
}

func TestMarkerTranslator_BareMarker(t *testing.T) {
	events := translate(StrategyMarker, 0, "preamble\n>\nanswer\n")
	assert.Equal(t, []agentstream.Event{TextEvent{Text: "answer\n"}}, events)
}

func TestMarkerTranslator_NoMarker(t *testing.T) {
	events := translate(StrategyMarker, 1, "error: not logged in\nother\n")
	assert.Equal(t, []agentstream.Event{TextEvent{Text: "error: not logged in\n"}}, events)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyLines, s)

	s, err = ParseStrategy("marker")
	require.NoError(t, err)
	assert.Equal(t, StrategyMarker, s)

	_, err = ParseStrategy("json")
	assert.Error(t, err)
}
