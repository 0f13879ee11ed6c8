package bridge

import (
	"fmt"
	"sync"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
	"github.com/bazelment/yoloswe/kiro-acp/kiro"
)

// Session is the state of one ACP conversation. All fields are guarded by mu.
type Session struct {
	process      Process
	sequencer    *UpdateSequencer
	id           string
	cwd          string
	currentMode  string
	currentModel string
	trustTools   string
	wrap         string
	modes        []acp.SessionMode
	models       []acp.ModelInfo
	mu           sync.Mutex
	trustAll     bool
	verbose      bool
	started      bool
	cancelled    bool
	preflightOK  bool
	syncFailed   bool
	running      bool
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CurrentMode returns the selected mode id.
func (s *Session) CurrentMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentMode
}

// CurrentModel returns the selected model id.
func (s *Session) CurrentModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentModel
}

// Started reports whether a turn has run to completion, which makes later
// turns resume the kiro-cli conversation.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *Session) modeState() *acp.SessionModeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &acp.SessionModeState{
		CurrentModeID:  s.currentMode,
		AvailableModes: append([]acp.SessionMode(nil), s.modes...),
	}
}

func (s *Session) modelState() *acp.SessionModelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &acp.SessionModelState{
		CurrentModelID:  s.currentModel,
		AvailableModels: append([]acp.ModelInfo(nil), s.models...),
	}
}

func (s *Session) setMode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.modes {
		if m.ID == id {
			s.currentMode = id
			return nil
		}
	}
	return fmt.Errorf("%w %q for session %s", ErrUnknownMode, id, s.id)
}

func (s *Session) setModel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.models {
		if m.ModelID == id {
			s.currentModel = id
			return nil
		}
	}
	return fmt.Errorf("%w %q for session %s", ErrUnknownModel, id, s.id)
}

// beginTurn marks a turn as running and installs its sequencer.
func (s *Session) beginTurn(seq *UpdateSequencer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrPromptInProgress
	}
	s.running = true
	s.cancelled = false
	s.sequencer = seq
	return nil
}

// endTurn clears the per-turn state. completed records that the subprocess
// ran, so the next turn resumes.
func (s *Session) endTurn(completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if completed {
		s.started = true
	}
	s.running = false
	s.process = nil
	s.sequencer = nil
}

// attach records the live subprocess. It reports whether the turn was
// cancelled before the process existed, in which case the caller must
// interrupt it.
func (s *Session) attach(p Process) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.process = p
	return s.cancelled
}

// cancel flags the current turn as cancelled, stops its update stream and
// returns the live process, if any.
func (s *Session) cancel() Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	if s.sequencer != nil {
		s.sequencer.Cancel()
	}
	return s.process
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *Session) needsPreflight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.preflightOK
}

func (s *Session) markPreflightOK() {
	s.mu.Lock()
	s.preflightOK = true
	s.mu.Unlock()
}

// claimSync reports whether a default-agent sync may run for this session.
func (s *Session) claimSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.syncFailed
}

func (s *Session) markSyncFailed() {
	s.mu.Lock()
	s.syncFailed = true
	s.mu.Unlock()
}

// chatRequest snapshots the launch configuration for one turn.
func (s *Session) chatRequest(prompt string) kiro.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kiro.ChatRequest{
		Prompt:        prompt,
		WorkDir:       s.cwd,
		Agent:         s.currentMode,
		Model:         s.currentModel,
		TrustTools:    s.trustTools,
		TrustAllTools: s.trustAll,
		Wrap:          s.wrap,
		Verbose:       s.verbose,
		Resume:        s.started,
	}
}

// Registry owns all sessions of one connection.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add stores s, replacing any session with the same id.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
