package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/domain/chat"
)

// SessionManager owns the per-conversation state. Each session carries a
// weighted semaphore of size one so turns for the same session are strictly
// serialized while different sessions proceed concurrently. Sessions idle
// longer than the configured TTL are evicted by a background sweep.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	cfg      config.Session
	logger   *slog.Logger
	now      func() time.Time
}

type sessionEntry struct {
	sem     *semaphore.Weighted
	session *chat.Session
}

// NewSessionManager creates an empty session store.
func NewSessionManager(cfg config.Session, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*sessionEntry),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Acquire returns the session for id, creating it on first use, with its
// turn slot held. The returned release func must be called when the turn
// completes. Acquire blocks while another turn for the same session is in
// flight and honors context cancellation while waiting.
func (m *SessionManager) Acquire(ctx context.Context, id, page string) (*chat.Session, func(), error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if !ok {
		entry = &sessionEntry{
			sem:     semaphore.NewWeighted(1),
			session: &chat.Session{ID: id},
		}
		m.sessions[id] = entry
		m.logger.Debug("session created", "session_id", id)
	}
	m.mu.Unlock()

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	entry.session.Page = page
	entry.session.LastAccess = m.now()
	return entry.session, func() { entry.sem.Release(1) }, nil
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartCleanup runs the idle-session sweep until ctx is cancelled.
func (m *SessionManager) StartCleanup(ctx context.Context) {
	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

// sweep drops sessions idle longer than the TTL. A session whose turn slot
// is currently held is in use and survives regardless of its timestamp.
func (m *SessionManager) sweep() {
	cutoff := m.now().Add(-m.cfg.TTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.sessions {
		if !entry.session.LastAccess.Before(cutoff) {
			continue
		}
		if !entry.sem.TryAcquire(1) {
			continue
		}
		entry.sem.Release(1)
		delete(m.sessions, id)
		m.logger.Debug("session expired", "session_id", id)
	}
}

// capHistory trims the front of the message history so at most max entries
// remain. The cap keeps completion requests bounded on long conversations.
// The cut never lands mid tool exchange: a tool result whose assistant call
// was trimmed away would be rejected by the completions API, so the trim
// advances past any leading tool messages.
func capHistory(s *chat.Session, max int) {
	if max <= 0 || len(s.Messages) <= max {
		return
	}
	start := len(s.Messages) - max
	for start < len(s.Messages) && s.Messages[start].Role == chat.RoleTool {
		start++
	}
	s.Messages = s.Messages[start:]
}
