// Package transcript turns the ANSI-decorated stdout of `kiro-cli chat`
// into a stream of typed events.
//
// Raw chunks pass through a ChunkBuffer (which never tears an escape
// sequence across two normalization passes), then StripANSI, then a line
// splitter, and finally a Translator strategy. The default strategy
// classifies every line and tracks tool calls through their lifecycle; the
// marker strategy drops the preamble before the answer marker and forwards
// the answer verbatim.
//
// Events implement the interfaces in package agentstream.
package transcript
