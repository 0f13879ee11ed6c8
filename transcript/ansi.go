package transcript

import (
	"regexp"
	"strings"
)

// escapeSource matches one complete terminal escape sequence. String
// sequences (OSC, DCS, SOS, PM, APC) run until BEL or ST; the two-byte
// alternative excludes their introducers so an unterminated string sequence
// never looks complete.
const escapeSource = `\x1b[\]PX^_][^\x07\x1b]*(?:\x07|\x1b\\)` + // OSC/DCS/... BEL | ST
	`|(?:\x1b\[|\x{9b})[0-?]*[ -/]*[@-~]` + // CSI
	`|\x1b[()#][0-9A-Za-z]` + // charset designation
	"|\x1b[0-?@-OQ-WYZ\\\\`-~]" // Fp / Fe / Fs

var (
	escapePattern = regexp.MustCompile(escapeSource)

	// escapePrefixPattern is escapePattern anchored at the start of input.
	escapePrefixPattern = regexp.MustCompile(`^(?:` + escapeSource + `)`)

	// stringBodyPattern matches the introducer and body of a string
	// sequence up to, not including, its terminator.
	stringBodyPattern = regexp.MustCompile(`^\x1b[\]PX^_][^\x07\x1b]*`)

	// controlPattern matches C0 controls except TAB, LF and CR, plus DEL.
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// escapeIntroducers are the characters that can start an escape sequence.
const escapeIntroducers = "\x1b\u009b"

// StripANSI removes terminal escape sequences and stray control characters
// from s. TAB, LF, CR and all printable Unicode text are preserved.
func StripANSI(s string) string {
	if !strings.ContainsAny(s, escapeIntroducers) && !controlPattern.MatchString(s) {
		return s
	}
	s = escapePattern.ReplaceAllString(s, "")
	return controlPattern.ReplaceAllString(s, "")
}
