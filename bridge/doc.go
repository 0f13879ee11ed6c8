// Package bridge implements the ACP agent on top of kiro-cli.
//
// Agent satisfies acp.Agent. It owns a Registry of sessions, runs one
// `kiro-cli chat` subprocess per prompt turn, translates its stdout with the
// transcript package and delivers the resulting session/update
// notifications in order through a per-turn UpdateSequencer.
//
// kiro-cli itself is reached only through the Checker, Lister, Settings and
// Launcher interfaces so tests can substitute fakes.
package bridge
