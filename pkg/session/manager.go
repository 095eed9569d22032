package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/barista"
	"github.com/aretw0/barista/internal/logging"
	"github.com/aretw0/barista/pkg/domain"
	"github.com/google/uuid"
)

// Store persists sessions by ID.
// Load returns domain.ErrSessionNotFound for unknown IDs.
type Store interface {
	Save(ctx context.Context, sessionID string, s *barista.Session) error
	Load(ctx context.Context, sessionID string) (*barista.Session, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	engine *barista.Engine
	store  Store

	mu      sync.Mutex            // Global lock for the maps
	locks   map[string]*lockEntry // Map of active locks
	touched map[string]time.Time  // Last activity per session

	ttl      time.Duration
	now      func() time.Time
	newID    func() string
	onExpire func(sessionID string)
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTTL sets how long a session may stay idle before Sweep removes it.
// Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithOnExpire registers fn to run after Sweep removes a session, outside
// the session lock.
func WithOnExpire(fn func(sessionID string)) Option {
	return func(m *Manager) {
		m.onExpire = fn
	}
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator overrides how session IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a new Session Manager for engine backed by store.
func NewManager(engine *barista.Engine, store Store, opts ...Option) *Manager {
	m := &Manager{
		engine:  engine,
		store:   store,
		locks:   make(map[string]*lockEntry),
		touched: make(map[string]time.Time),
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engine returns the engine sessions are driven by.
func (m *Manager) Engine() *barista.Engine {
	return m.engine
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) touch(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[sessionID] = m.now()
}

func (m *Manager) forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.touched, sessionID)
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	return fn(ctx)
}

// Create starts a new session and returns its ID.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := m.newID()
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		s := m.engine.Start(ctx)
		if err := m.store.Save(ctx, id, s); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	m.touch(id)
	m.logger.Debug("session created", "session_id", id)
	return id, nil
}

// View renders the current step of a session.
func (m *Manager) View(ctx context.Context, sessionID string) (domain.View, *domain.SessionSnapshot, error) {
	var (
		view domain.View
		snap *domain.SessionSnapshot
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		view = m.engine.Render(s)
		snap = s.Snapshot()
		return nil
	})
	return view, snap, err
}

// Applied is the result of Apply. Outcome is nil when the action was
// rejected.
type Applied struct {
	Outcome *domain.Outcome
	Before  *domain.SessionSnapshot
	After   *domain.SessionSnapshot
}

// Diff returns the changes made by the action, or nil if none.
func (a *Applied) Diff(sessionID string) *domain.SnapshotDiff {
	return domain.Diff(sessionID, a.Before, a.After)
}

// Dispatch applies an action to a session and stores the result.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, a domain.Action) (*domain.Outcome, error) {
	applied, err := m.Apply(ctx, sessionID, a)
	if err != nil {
		return nil, err
	}
	return applied.Outcome, nil
}

// Apply is Dispatch that also returns snapshots taken under the session lock
// before and after the action.
// The session is saved even when the action is rejected, because a rejected
// name is remembered on the session. In that case Apply returns both the
// rejection and an Applied without Outcome, so callers can publish the
// change.
//
// Sink records of a confirmed order are written before the session is
// saved. If that save fails the session is still at Checkout and a second
// Confirm writes the order again; the lines already stored are logged at
// error level.
func (m *Manager) Apply(ctx context.Context, sessionID string, a domain.Action) (*Applied, error) {
	var applied *Applied
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		before := s.Snapshot()
		out, dispatchErr := m.engine.Dispatch(ctx, s, a)
		if errors.Is(dispatchErr, domain.ErrInvariantViolation) {
			return dispatchErr
		}

		if err := m.store.Save(ctx, sessionID, s); err != nil {
			if out != nil && out.Persisted > 0 {
				m.logger.Error("order stored but session not saved",
					"session_id", sessionID, "persisted", out.Persisted, "records", out.Records, "err", err)
			}
			return fmt.Errorf("failed to save session: %w", err)
		}
		applied = &Applied{Outcome: out, Before: before, After: s.Snapshot()}
		return dispatchErr
	})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		m.touch(sessionID)
	}
	return applied, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, sessionID); err != nil {
			return err
		}
		return m.store.Delete(ctx, sessionID)
	})
	if err == nil {
		m.forget(sessionID)
	}
	return err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Adopt marks every session already in the store as active now. Hosts
// backed by a durable store call it at startup so sessions left by a
// previous process still expire.
func (m *Manager) Adopt(ctx context.Context) (int, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	adopted := 0
	for _, id := range ids {
		if _, ok := m.touched[id]; !ok {
			m.touched[id] = m.now()
			adopted++
		}
	}
	return adopted, nil
}

// Sweep deletes sessions idle for longer than the TTL and returns how many
// were removed. It is a no-op when no TTL is configured.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	if m.ttl <= 0 {
		return 0, nil
	}

	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	var expired []string
	for id, last := range m.touched {
		if last.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	removed := 0
	for _, id := range expired {
		deleted := false
		err := m.WithLock(ctx, id, func(ctx context.Context) error {
			// Activity may have happened since the scan.
			m.mu.Lock()
			last, ok := m.touched[id]
			m.mu.Unlock()
			if !ok || !last.Before(cutoff) {
				return nil
			}
			deleted = true
			return m.store.Delete(ctx, id)
		})
		if err != nil {
			return removed, fmt.Errorf("failed to expire session %s: %w", id, err)
		}
		if deleted {
			m.forget(id)
			removed++
			if m.onExpire != nil {
				m.onExpire(id)
			}
		}
	}
	if removed > 0 {
		m.logger.Info("expired idle sessions", "count", removed)
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil {
				m.logger.Warn("session sweep failed", "err", err)
			}
		}
	}
}
