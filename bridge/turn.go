package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
	"github.com/bazelment/yoloswe/kiro-acp/agentstream"
	"github.com/bazelment/yoloswe/kiro-acp/kiro"
	"github.com/bazelment/yoloswe/kiro-acp/transcript"
)

const (
	readChunkSize   = 32 * 1024
	stderrTailLines = 5
)

// Prompt runs one kiro-cli chat turn and streams its transcript as
// session/update notifications. It returns once the subprocess has exited
// and every update has been delivered.
func (a *Agent) Prompt(ctx context.Context, req *acp.PromptRequest) (*acp.PromptResponse, error) {
	sess, err := a.sessions.Get(req.SessionID)
	if err != nil {
		return nil, rpcError(err)
	}
	logger := a.logger.With("session_id", sess.id)

	seq := NewUpdateSequencer(ctx, a.getNotifier(), sess.id, logger)
	if err := sess.beginTurn(seq); err != nil {
		return nil, rpcError(err)
	}
	completed := false
	defer func() { sess.endTurn(completed) }()

	prompt := AssemblePrompt(req.Prompt)
	endTurn := &acp.PromptResponse{StopReason: acp.StopReasonEndTurn}

	if sess.needsPreflight() {
		if err := a.config.Checker.Check(ctx); err != nil {
			logger.Warn("kiro-cli capability check failed", "error", err)
			seq.Send(acp.NewAgentMessageChunk(kiro.Advice(err)))
			_ = seq.Flush(ctx)
			return endTurn, nil
		}
		sess.markPreflightOK()
	}

	chatReq := sess.chatRequest(prompt)
	proc, err := a.config.Launcher.Launch(ctx, chatReq)
	if err != nil {
		var notFound *kiro.CLINotFoundError
		if errors.As(err, &notFound) {
			logger.Warn("kiro-cli not found", "path", notFound.Path)
			seq.Send(acp.NewAgentMessageChunk(kiro.Advice(err)))
			_ = seq.Flush(ctx)
			return endTurn, nil
		}
		return nil, acp.NewInternalError(fmt.Sprintf("failed to start kiro-cli: %v", err))
	}
	if sess.attach(proc) {
		if err := proc.Interrupt(); err != nil {
			logger.Debug("failed to interrupt kiro-cli", "error", err)
		}
	}
	logger.Info("turn started",
		"mode", chatReq.Agent,
		"model", chatReq.Model,
		"resume", chatReq.Resume,
		"prompt_bytes", len(prompt))

	tr := transcript.New(a.config.Strategy, a.config.NewToolCallID)
	stderr := &stderrTail{}

	var g errgroup.Group
	g.Go(func() error {
		return pumpStdout(proc.Stdout(), tr, seq)
	})
	g.Go(func() error {
		return pumpStderr(proc.Stderr(), stderr, logger)
	})

	// Wait runs alongside the pumps: it ends the streams once kiro-cli has
	// exited, even if a background child still holds its stdout.
	exitCode, err := proc.Wait()
	if err != nil {
		logger.Warn("failed to wait for kiro-cli", "error", err)
	}
	if err := g.Wait(); err != nil {
		logger.Debug("output pump stopped", "error", err)
	}
	sendEvents(seq, tr.Close(exitCode))
	_ = seq.Flush(ctx)
	completed = true

	logger.Info("turn finished", "exit_code", exitCode, "updates", seq.Sent(), "cancelled", sess.isCancelled())

	if sess.isCancelled() {
		return &acp.PromptResponse{StopReason: acp.StopReasonCancelled}, nil
	}
	if exitCode != 0 {
		if seq.Sent() > 0 {
			seq.Send(acp.NewAgentMessageChunk(fmt.Sprintf("\nkiro-cli exited with code %d\n", exitCode)))
			_ = seq.Flush(ctx)
			return endTurn, nil
		}
		msg := fmt.Sprintf("kiro-cli exited with code %d", exitCode)
		if tail := stderr.String(); tail != "" {
			msg += ": " + tail
		}
		return nil, acp.NewInternalError(msg)
	}
	return endTurn, nil
}

// pumpStdout feeds raw stdout chunks through the translator in arrival
// order. It is the only writer of the translator until the process exits.
func pumpStdout(r io.Reader, tr transcript.Translator, seq *UpdateSequencer) error {
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			sendEvents(seq, tr.Push(string(buf[:n])))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read stdout: %w", err)
		}
	}
}

// pumpStderr logs diagnostics and keeps the last few lines for error
// messages.
func pumpStderr(r io.Reader, tail *stderrTail, logger *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(transcript.StripANSI(scanner.Text()))
		if line == "" {
			continue
		}
		logger.Debug("kiro-cli stderr", "line", line)
		tail.add(line)
	}
	if err := scanner.Err(); err != nil {
		// Drain so the process never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
		return fmt.Errorf("read stderr: %w", err)
	}
	return nil
}

func sendEvents(seq *UpdateSequencer, events []agentstream.Event) {
	for _, ev := range events {
		if update, ok := toUpdate(ev); ok {
			seq.Send(update)
		}
	}
}

// toUpdate maps a transcript event onto an ACP session update.
func toUpdate(ev agentstream.Event) (acp.SessionUpdate, bool) {
	switch ev.StreamEventKind() {
	case agentstream.KindText:
		if e, ok := ev.(agentstream.Text); ok {
			return acp.NewAgentMessageChunk(e.StreamDelta()), true
		}
	case agentstream.KindThinking:
		if e, ok := ev.(agentstream.Text); ok {
			return acp.NewAgentThoughtChunk(e.StreamDelta()), true
		}
	case agentstream.KindToolStart:
		if e, ok := ev.(agentstream.ToolStart); ok {
			kind := acp.ToolKindOther
			if e.StreamToolKind() == acp.ToolKindExecute {
				kind = acp.ToolKindExecute
			}
			return acp.NewToolCall(e.StreamToolCallID(), e.StreamToolTitle(), kind, e.StreamToolInput()), true
		}
	case agentstream.KindToolProgress:
		if e, ok := ev.(agentstream.ToolProgress); ok {
			return acp.NewToolCallUpdate(e.StreamToolCallID(), acp.ToolStatusInProgress, e.StreamToolOutput()), true
		}
	case agentstream.KindToolEnd:
		if e, ok := ev.(agentstream.ToolEnd); ok {
			status := acp.ToolStatusCompleted
			if e.StreamToolFailed() {
				status = acp.ToolStatusFailed
			}
			return acp.NewToolCallUpdate(e.StreamToolCallID(), status, e.StreamToolOutput()), true
		}
	}
	return acp.SessionUpdate{}, false
}

// stderrTail keeps the last stderrTailLines lines of stderr.
type stderrTail struct {
	lines []string
	mu    sync.Mutex
}

func (t *stderrTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > stderrTailLines {
		t.lines = t.lines[len(t.lines)-stderrTailLines:]
	}
}

func (t *stderrTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, " | ")
}
