package transcript

import "strings"

// LineSplitter splits normalized text into lines on LF, CR and CRLF. The
// zero value is ready to use.
//
// A trailing CR is held until the next byte shows whether it starts a CRLF
// pair, and an unterminated fragment is held until a terminator arrives or
// Close is called. Empty lines ended by a bare CR are dropped: they are the
// residue of spinner redraws, not blank lines in the transcript.
type LineSplitter struct {
	partial   strings.Builder
	pendingCR bool
}

// Write consumes text and returns the lines it completes, without
// terminators.
func (s *LineSplitter) Write(text string) []string {
	var lines []string
	for len(text) > 0 {
		if s.pendingCR {
			s.pendingCR = false
			crlf := text[0] == '\n'
			if crlf {
				text = text[1:]
			}
			if line := s.take(); line != "" || crlf {
				lines = append(lines, line)
			}
			continue
		}

		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			s.partial.WriteString(text)
			break
		}
		s.partial.WriteString(text[:i])
		if text[i] == '\r' {
			s.pendingCR = true
		} else {
			lines = append(lines, s.take())
		}
		text = text[i+1:]
	}
	return lines
}

// Close returns the held fragment, if any, as a final line.
func (s *LineSplitter) Close() []string {
	held := s.pendingCR || s.partial.Len() > 0
	s.pendingCR = false
	line := s.take()
	if !held || line == "" {
		return nil
	}
	return []string{line}
}

func (s *LineSplitter) take() string {
	line := s.partial.String()
	s.partial.Reset()
	return line
}
