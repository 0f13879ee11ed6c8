package transcript

import (
	"strings"
	"unicode/utf8"
)

const (
	// TailBytes is the number of raw bytes a ChunkBuffer holds back on
	// every Push.
	TailBytes = 32

	// escapeWindow is how far before the cut point Push looks for an escape
	// sequence that has not completed yet.
	escapeWindow = 64

	// stringEscapeWindow bounds how much output an unterminated OSC (or
	// other string sequence) may hold back.
	stringEscapeWindow = 4096
)

// ChunkBuffer aligns raw subprocess output so that no escape sequence is
// split across two calls to StripANSI. The zero value is ready to use.
type ChunkBuffer struct {
	pending string
}

// Push appends raw and returns the normalized text of everything except a
// short trailing window. The window is extended backwards when an escape
// sequence starts shortly before the cut and is not complete before it.
func (b *ChunkBuffer) Push(raw string) string {
	b.pending += raw
	if len(b.pending) <= TailBytes {
		return ""
	}

	cut := safeCut(b.pending, len(b.pending)-TailBytes)
	if cut == 0 {
		return ""
	}
	out := b.pending[:cut]
	b.pending = b.pending[cut:]
	return StripANSI(out)
}

// Flush normalizes and returns everything still buffered.
func (b *ChunkBuffer) Flush() string {
	out := b.pending
	b.pending = ""
	return StripANSI(out)
}

// safeCut moves cut back so that s[:cut] ends on a rune boundary and does
// not end inside an escape sequence. Ordinary escapes are only considered
// when they start within escapeWindow bytes of the cut, string sequences
// within stringEscapeWindow.
func safeCut(s string, cut int) int {
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	i := max(0, cut-stringEscapeWindow)
	for i < cut {
		j := strings.IndexAny(s[i:cut], escapeIntroducers)
		if j < 0 {
			break
		}
		pos := i + j

		if end, ok := stringEscapeEnd(s, pos); ok {
			if end < 0 || end > cut {
				return pos
			}
			i = end
			continue
		}

		loc := escapePrefixPattern.FindStringIndex(s[pos:])
		switch {
		case loc != nil && pos+loc[1] <= cut:
			i = pos + loc[1]
		case pos >= cut-escapeWindow:
			return pos
		default:
			i = pos + 1
		}
	}
	return cut
}

// stringEscapeEnd reports whether a string sequence starts at s[pos] and
// returns the offset just past its terminator, or -1 when s ends before the
// terminator. A body interrupted by an ESC that is not ST ends at that ESC.
func stringEscapeEnd(s string, pos int) (int, bool) {
	body := stringBodyPattern.FindStringIndex(s[pos:])
	if body == nil {
		return 0, false
	}
	k := pos + body[1]
	switch {
	case k == len(s):
		return -1, true
	case s[k] == '\x07':
		return k + 1, true
	case k+1 == len(s):
		return -1, true
	case s[k+1] == '\\':
		return k + 2, true
	default:
		return k, true
	}
}
