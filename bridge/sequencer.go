package bridge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bazelment/yoloswe/kiro-acp/acp"
)

// Notifier delivers session/update notifications to the client.
// *acp.Conn implements it.
type Notifier interface {
	SessionUpdate(ctx context.Context, notif acp.SessionNotification) error
}

type queuedUpdate struct {
	done   chan struct{}
	update acp.SessionUpdate
}

// UpdateSequencer delivers one turn's updates strictly in the order they were
// sent, from a single background goroutine. Delivery errors and panics are
// logged and dropped; they never reach the sender or stop later updates.
type UpdateSequencer struct {
	ctx       context.Context
	notifier  Notifier
	logger    *slog.Logger
	tail      chan struct{}
	sessionID string
	queue     []queuedUpdate
	mu        sync.Mutex
	sent      int
	draining  bool
	cancelled bool
}

// NewUpdateSequencer creates a sequencer for sessionID. A nil notifier drops
// every update.
func NewUpdateSequencer(ctx context.Context, notifier Notifier, sessionID string, logger *slog.Logger) *UpdateSequencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateSequencer{
		ctx:       context.WithoutCancel(ctx),
		notifier:  notifier,
		logger:    logger,
		sessionID: sessionID,
	}
}

// Send enqueues update after every update sent before it. It reports false,
// and drops the update, once the sequencer is cancelled.
func (s *UpdateSequencer) Send(update acp.SessionUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled {
		return false
	}

	item := queuedUpdate{update: update, done: make(chan struct{})}
	s.queue = append(s.queue, item)
	s.tail = item.done
	s.sent++

	if !s.draining {
		s.draining = true
		go s.drain()
	}
	return true
}

// Cancel suppresses all later Sends. Updates already queued are still
// delivered.
func (s *UpdateSequencer) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

// Cancelled reports whether Cancel was called.
func (s *UpdateSequencer) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Sent returns the number of updates accepted by Send.
func (s *UpdateSequencer) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Flush waits until every update sent so far has been attempted, or ctx is
// done.
func (s *UpdateSequencer) Flush(ctx context.Context) error {
	s.mu.Lock()
	tail := s.tail
	s.mu.Unlock()

	if tail == nil {
		return nil
	}
	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *UpdateSequencer) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		item := s.queue[0]
		s.queue[0] = queuedUpdate{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.deliver(item.update)
		close(item.done)
	}
}

func (s *UpdateSequencer) deliver(update acp.SessionUpdate) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("update delivery panicked", "type", update.Type, "panic", r)
		}
	}()

	if s.notifier == nil {
		return
	}
	err := s.notifier.SessionUpdate(s.ctx, acp.SessionNotification{
		SessionID: s.sessionID,
		Update:    update,
	})
	if err != nil {
		s.logger.Debug("update delivery failed", "type", update.Type, "error", err)
	}
}
