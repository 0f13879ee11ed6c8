package bridge

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
	"github.com/bazelment/yoloswe/kiro-acp/kiro"
)

type recordingNotifier struct {
	err     error
	updates []acp.SessionNotification
	mu      sync.Mutex
}

func (n *recordingNotifier) SessionUpdate(_ context.Context, notif acp.SessionNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, notif)
	return n.err
}

func (n *recordingNotifier) Updates() []acp.SessionUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]acp.SessionUpdate, 0, len(n.updates))
	for _, u := range n.updates {
		out = append(out, u.Update)
	}
	return out
}

type fakeChecker struct {
	err   error
	calls atomic.Int32
}

func (c *fakeChecker) Check(context.Context) error {
	c.calls.Add(1)
	return c.err
}

type fakeLister struct {
	err    error
	agents []kiro.Agent
}

func (l *fakeLister) ListAgents(context.Context) ([]kiro.Agent, error) {
	return l.agents, l.err
}

type fakeSettings struct {
	syncErr      error
	defaultAgent string
	synced       []string
	mu           sync.Mutex
}

func (s *fakeSettings) DefaultAgent() (string, bool) {
	return s.defaultAgent, s.defaultAgent != ""
}

func (s *fakeSettings) SyncDefaultAgent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced = append(s.synced, id)
	return s.syncErr
}

func (s *fakeSettings) Synced() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.synced...)
}

// fakeProcess is an in-memory chat subprocess driven by a script.
type fakeProcess struct {
	stdoutR     *io.PipeReader
	stderrR     *io.PipeReader
	interrupted chan struct{}
	exit        chan int
	once        sync.Once
}

// processScript writes the transcript and returns the exit code.
type processScript func(stdout, stderr io.Writer, interrupted <-chan struct{}) int

func newFakeProcess(script processScript) *fakeProcess {
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	p := &fakeProcess{
		stdoutR:     stdoutR,
		stderrR:     stderrR,
		interrupted: make(chan struct{}),
		exit:        make(chan int, 1),
	}
	go func() {
		code := script(stdoutW, stderrW, p.interrupted)
		stdoutW.Close()
		stderrW.Close()
		p.exit <- code
	}()
	return p
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdoutR }
func (p *fakeProcess) Stderr() io.Reader { return p.stderrR }

func (p *fakeProcess) Interrupt() error {
	p.once.Do(func() { close(p.interrupted) })
	return nil
}

func (p *fakeProcess) Wait() (int, error) {
	return <-p.exit, nil
}

// writeChunks returns a script that writes chunks and exits with code.
func writeChunks(code int, chunks ...string) processScript {
	return func(stdout, _ io.Writer, _ <-chan struct{}) int {
		for _, c := range chunks {
			_, _ = io.WriteString(stdout, c)
		}
		return code
	}
}

type fakeLauncher struct {
	err      error
	script   processScript
	started  chan kiro.ChatRequest
	requests []kiro.ChatRequest
	mu       sync.Mutex
}

func newFakeLauncher(script processScript) *fakeLauncher {
	return &fakeLauncher{script: script, started: make(chan kiro.ChatRequest, 8)}
}

func (l *fakeLauncher) Launch(_ context.Context, req kiro.ChatRequest) (Process, error) {
	l.mu.Lock()
	l.requests = append(l.requests, req)
	script := l.script
	l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}
	l.started <- req
	return newFakeProcess(script), nil
}

func (l *fakeLauncher) Requests() []kiro.ChatRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]kiro.ChatRequest(nil), l.requests...)
}

func (l *fakeLauncher) setScript(script processScript) {
	l.mu.Lock()
	l.script = script
	l.mu.Unlock()
}

type testBridge struct {
	agent    *Agent
	notifier *recordingNotifier
	checker  *fakeChecker
	lister   *fakeLister
	settings *fakeSettings
	launcher *fakeLauncher
}

func newTestBridge(t *testing.T, script processScript, mutate ...func(*Config)) *testBridge {
	t.Helper()

	tb := &testBridge{
		notifier: &recordingNotifier{},
		checker:  &fakeChecker{},
		lister: &fakeLister{agents: []kiro.Agent{
			{ID: "kiro_default", Description: "Default agent", Default: true},
			{ID: "reviewer", Description: "Reviews code"},
		}},
		settings: &fakeSettings{},
		launcher: newFakeLauncher(script),
	}

	toolID := 0
	sessionID := 0
	config := Config{
		Checker:       tb.checker,
		Lister:        tb.lister,
		Settings:      tb.settings,
		Launcher:      tb.launcher,
		TrustAllTools: true,
		NewToolCallID: func() string {
			toolID++
			return fmt.Sprintf("tool-%d", toolID)
		},
		NewSessionID: func() string {
			sessionID++
			return fmt.Sprintf("session-%d", sessionID)
		},
	}
	for _, m := range mutate {
		m(&config)
	}

	tb.agent = NewAgent(config)
	tb.agent.SetNotifier(tb.notifier)
	return tb
}

func (tb *testBridge) newSession(t *testing.T) string {
	t.Helper()
	resp, err := tb.agent.NewSession(context.Background(), &acp.NewSessionRequest{CWD: "/work"})
	require.NoError(t, err)
	return resp.SessionID
}

func (tb *testBridge) prompt(sessionID string, text string) (*acp.PromptResponse, error) {
	return tb.agent.Prompt(context.Background(), &acp.PromptRequest{
		SessionID: sessionID,
		Prompt:    []acp.ContentBlock{acp.NewTextContent(text)},
	})
}

type launcherFunc func(ctx context.Context, req kiro.ChatRequest) (Process, error)

func (f launcherFunc) Launch(ctx context.Context, req kiro.ChatRequest) (Process, error) {
	return f(ctx, req)
}

// lingeringProcess keeps its streams open until Wait returns, like a
// kiro-cli whose background child still holds stdout after it exits.
type lingeringProcess struct {
	stdoutR *io.PipeReader
	stderrR *io.PipeReader
	stdoutW *io.PipeWriter
	stderrW *io.PipeWriter
	written chan struct{}
}

func newLingeringProcess(output string) *lingeringProcess {
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	p := &lingeringProcess{
		stdoutR: stdoutR,
		stderrR: stderrR,
		stdoutW: stdoutW,
		stderrW: stderrW,
		written: make(chan struct{}),
	}
	go func() {
		_, _ = io.WriteString(stdoutW, output)
		close(p.written)
	}()
	return p
}

func (p *lingeringProcess) Stdout() io.Reader { return p.stdoutR }
func (p *lingeringProcess) Stderr() io.Reader { return p.stderrR }
func (p *lingeringProcess) Interrupt() error  { return nil }

func (p *lingeringProcess) Wait() (int, error) {
	<-p.written
	p.stdoutW.Close()
	p.stderrW.Close()
	return 0, nil
}
