package bridge

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
	"github.com/bazelment/yoloswe/kiro-acp/kiro"
	"github.com/bazelment/yoloswe/kiro-acp/transcript"
)

// FallbackMode is used when no mode is configured or discovered.
const FallbackMode = "kiro_default"

// AuthMethodID is the single advertised authentication method.
const AuthMethodID = "kiro-login"

const syncTimeout = 30 * time.Second

// Checker verifies that kiro-cli is installed and logged in.
type Checker interface {
	Check(ctx context.Context) error
}

// Lister discovers the kiro-cli agents offered as session modes.
type Lister interface {
	ListAgents(ctx context.Context) ([]kiro.Agent, error)
}

// Settings reads and persists kiro-cli's host default agent.
type Settings interface {
	DefaultAgent() (string, bool)
	SyncDefaultAgent(ctx context.Context, id string) error
}

// Process is a running chat turn. Stdout and Stderr are read concurrently
// with Wait and reach EOF once Wait has returned.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	Interrupt() error
	Wait() (exitCode int, err error)
}

// Launcher starts chat turns.
type Launcher interface {
	Launch(ctx context.Context, req kiro.ChatRequest) (Process, error)
}

// KiroLauncher adapts a *kiro.Client to Launcher.
type KiroLauncher struct {
	Client *kiro.Client
}

// Launch starts `kiro-cli chat`.
func (l KiroLauncher) Launch(ctx context.Context, req kiro.ChatRequest) (Process, error) {
	proc, err := l.Client.StartChat(ctx, req)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

// Config configures an Agent. Checker, Lister and Launcher are required;
// Settings may be nil when host settings are unavailable.
type Config struct {
	Checker  Checker
	Lister   Lister
	Settings Settings
	Launcher Launcher
	Logger   *slog.Logger

	// NewSessionID and NewToolCallID default to uuid-based generators.
	NewSessionID  func() string
	NewToolCallID transcript.IDFunc

	// Mode and Model override the initial selection of new sessions.
	Mode  string
	Model string

	TrustTools    string
	Wrap          string
	Strategy      transcript.Strategy
	Version       string
	TrustAllTools bool
	Verbose       bool
}

// Agent is the kiro-cli backed ACP agent.
type Agent struct {
	notifier Notifier
	logger   *slog.Logger
	sessions *Registry
	config   Config
	bg       sync.WaitGroup
	mu       sync.RWMutex
}

var _ acp.Agent = (*Agent)(nil)

// NewAgent creates an Agent.
func NewAgent(config Config) *Agent {
	if config.NewSessionID == nil {
		config.NewSessionID = uuid.NewString
	}
	if config.NewToolCallID == nil {
		config.NewToolCallID = transcript.NewToolCallID
	}
	if config.Wrap == "" {
		config.Wrap = kiro.WrapNever
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		config:   config,
		logger:   logger.With("component", "bridge"),
		sessions: NewRegistry(),
	}
}

// SetNotifier sets the connection that receives session/update
// notifications. It must be called before Serve.
func (a *Agent) SetNotifier(n Notifier) {
	a.mu.Lock()
	a.notifier = n
	a.mu.Unlock()
}

// Sessions returns the session registry.
func (a *Agent) Sessions() *Registry {
	return a.sessions
}

// Wait blocks until background default-agent syncs have finished.
func (a *Agent) Wait() {
	a.bg.Wait()
}

func (a *Agent) getNotifier() Notifier {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.notifier
}

// Initialize advertises the agent's capabilities.
func (a *Agent) Initialize(_ context.Context, req *acp.InitializeRequest) (*acp.InitializeResponse, error) {
	a.logger.Info("initialize", "client_protocol_version", req.ProtocolVersion)
	return &acp.InitializeResponse{
		ProtocolVersion: acp.ProtocolVersion,
		AgentCapabilities: &acp.AgentCapabilities{
			PromptCapabilities: &acp.PromptCapabilities{
				Image:           false,
				EmbeddedContext: true,
			},
		},
		AgentInfo: &acp.Implementation{
			Name:    "kiro-acp",
			Title:   "Kiro CLI",
			Version: a.config.Version,
		},
		AuthMethods: []acp.AuthMethod{{
			ID:          AuthMethodID,
			Name:        "Log in with kiro-cli",
			Description: "Run `kiro-cli login` in a terminal.",
		}},
	}, nil
}

// Authenticate always fails: login happens out of band through kiro-cli.
func (a *Agent) Authenticate(_ context.Context, req *acp.AuthenticateRequest) (*acp.AuthenticateResponse, error) {
	a.logger.Info("authenticate requested", "method_id", req.MethodID)
	return nil, acp.NewAuthRequired("Run `kiro-cli login` in a terminal to sign in, then retry.")
}

// NewSession discovers modes and models and registers a new session.
func (a *Agent) NewSession(ctx context.Context, req *acp.NewSessionRequest) (*acp.NewSessionResponse, error) {
	agents, err := a.config.Lister.ListAgents(ctx)
	if err != nil {
		a.logger.Warn("failed to list kiro-cli agents", "error", err)
	}

	var hostDefault string
	if a.config.Settings != nil {
		hostDefault, _ = a.config.Settings.DefaultAgent()
	}
	modes, mode := resolveModes(agents, a.config.Mode, hostDefault)

	model := a.config.Model
	if model == "" {
		model = kiro.DefaultModel
	}
	var models []acp.ModelInfo
	for _, m := range kiro.Catalog(model) {
		models = append(models, acp.ModelInfo{ModelID: m.ID, Name: m.Name, Description: m.Description})
	}

	sess := &Session{
		id:           a.config.NewSessionID(),
		cwd:          req.CWD,
		modes:        modes,
		currentMode:  mode,
		models:       models,
		currentModel: model,
		trustAll:     a.config.TrustAllTools,
		trustTools:   a.config.TrustTools,
		wrap:         a.config.Wrap,
		verbose:      a.config.Verbose,
	}
	a.sessions.Add(sess)

	a.logger.Info("session created",
		"session_id", sess.id,
		"cwd", req.CWD,
		"mode", mode,
		"model", model,
		"modes", len(modes))

	return &acp.NewSessionResponse{
		SessionID: sess.id,
		Modes:     sess.modeState(),
		Models:    sess.modelState(),
	}, nil
}

// resolveModes converts discovered agents to modes and picks the starting
// mode: override, then host default, then the discovered default, then the
// first discovered agent, then FallbackMode. The chosen mode is always part
// of the returned list.
func resolveModes(agents []kiro.Agent, override, hostDefault string) ([]acp.SessionMode, string) {
	modes := make([]acp.SessionMode, 0, len(agents)+1)
	var discoveredDefault string
	for _, ag := range agents {
		modes = append(modes, acp.SessionMode{ID: ag.ID, Name: ag.ID, Description: ag.Description})
		if ag.Default && discoveredDefault == "" {
			discoveredDefault = ag.ID
		}
	}

	current := firstNonEmpty(override, hostDefault, discoveredDefault)
	if current == "" && len(modes) > 0 {
		current = modes[0].ID
	}
	if current == "" {
		current = FallbackMode
	}

	for _, m := range modes {
		if m.ID == current {
			return modes, current
		}
	}
	return append(modes, acp.SessionMode{ID: current, Name: current}), current
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Cancel stops the session's current turn. Cancelling a session with no
// running turn is a no-op.
func (a *Agent) Cancel(_ context.Context, req *acp.CancelNotification) error {
	sess, err := a.sessions.Get(req.SessionID)
	if err != nil {
		return rpcError(err)
	}

	proc := sess.cancel()
	a.logger.Info("turn cancelled", "session_id", sess.id, "live_process", proc != nil)
	if proc != nil {
		if err := proc.Interrupt(); err != nil {
			a.logger.Warn("failed to interrupt kiro-cli", "session_id", sess.id, "error", err)
		}
	}
	return nil
}

// SetSessionMode switches the kiro-cli agent used by later turns.
func (a *Agent) SetSessionMode(ctx context.Context, req *acp.SetSessionModeRequest) (*acp.SetSessionModeResponse, error) {
	sess, err := a.sessions.Get(req.SessionID)
	if err != nil {
		return nil, rpcError(err)
	}
	if err := sess.setMode(req.ModeID); err != nil {
		return nil, rpcError(err)
	}
	a.logger.Info("mode changed", "session_id", sess.id, "mode", req.ModeID)

	if n := a.getNotifier(); n != nil {
		err := n.SessionUpdate(ctx, acp.SessionNotification{
			SessionID: sess.id,
			Update:    acp.NewCurrentModeUpdate(req.ModeID),
		})
		if err != nil {
			a.logger.Debug("mode update delivery failed", "session_id", sess.id, "error", err)
		}
	}

	a.syncDefaultAgent(sess, req.ModeID)
	return &acp.SetSessionModeResponse{}, nil
}

// syncDefaultAgent persists mode as kiro-cli's default agent in the
// background when the host settings already define one. After the first
// failure the session stops trying.
func (a *Agent) syncDefaultAgent(sess *Session, mode string) {
	settings := a.config.Settings
	if settings == nil {
		return
	}
	hostDefault, ok := settings.DefaultAgent()
	if !ok || hostDefault == mode || !sess.claimSync() {
		return
	}

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := settings.SyncDefaultAgent(ctx, mode); err != nil {
			sess.markSyncFailed()
			a.logger.Warn("failed to sync kiro-cli default agent", "session_id", sess.id, "mode", mode, "error", err)
			return
		}
		a.logger.Debug("synced kiro-cli default agent", "session_id", sess.id, "mode", mode)
	}()
}

// SetSessionModel switches the model used by later turns.
func (a *Agent) SetSessionModel(_ context.Context, req *acp.SetSessionModelRequest) (*acp.SetSessionModelResponse, error) {
	sess, err := a.sessions.Get(req.SessionID)
	if err != nil {
		return nil, rpcError(err)
	}
	if err := sess.setModel(req.ModelID); err != nil {
		return nil, rpcError(err)
	}
	a.logger.Info("model changed", "session_id", sess.id, "model", req.ModelID)
	return &acp.SetSessionModelResponse{}, nil
}
