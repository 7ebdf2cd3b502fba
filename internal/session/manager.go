package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/mirror"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/pending"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoSession    = errors.New("session not found")
	ErrMissingToken = errors.New("missing bearer token")
	ErrClosed       = errors.New("session manager closed")
)

// Backend is everything a session needs from the backend client.
type Backend interface {
	cart.Backend
	checkout.Backend
	payment.Backend
	GetUser(ctx context.Context) (domain.User, error)
}

type Config struct {
	UndoWindow   time.Duration
	Policy       pending.Policy
	DisplayDelay time.Duration
	IdleTimeout  time.Duration
	// Clock drives undo windows and idle tracking. Defaults to the wall clock.
	Clock pending.Clock
}

// Manager maps users to their sessions. Sessions are keyed by user id, so
// every tab of the same user shares one cart.
type Manager struct {
	backend Backend
	mirror  mirror.Mirror
	cfg     Config
	log     *zap.Logger
	group   singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
	tokens   map[string]string
	closed   bool
}

func NewManager(b Backend, m mirror.Mirror, cfg Config, log *zap.Logger) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = pending.RealClock{}
	}
	return &Manager{
		backend:  b,
		mirror:   m,
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*Session),
		tokens:   make(map[string]string),
	}
}

// Get returns the session for token, creating it on first use. ctx must
// carry token via backend.WithToken for the initial backend calls.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	now := m.cfg.Clock.Now()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if userID, ok := m.tokens[token]; ok {
		if s, ok := m.sessions[userID]; ok {
			m.mu.Unlock()
			s.touch(token, now)
			return s, nil
		}
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(token, func() (interface{}, error) {
		return m.open(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	s := v.(*Session)
	s.touch(token, now)
	return s, nil
}

func (m *Manager) open(ctx context.Context, token string) (*Session, error) {
	ctx = backend.WithToken(ctx, token)
	user, err := m.backend.GetUser(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if s, ok := m.sessions[user.ID]; ok {
		m.tokens[token] = user.ID
		m.mu.Unlock()
		return s, nil
	}
	s := m.build(user)
	m.sessions[user.ID] = s
	m.tokens[token] = user.ID
	m.mu.Unlock()

	m.log.Info("session opened", zap.String("user_id", user.ID), zap.String("role", user.Role))
	if err := s.store.Load(ctx); err != nil {
		// The Store carries the error for the cart view.
		m.log.Warn("initial cart load failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return s, nil
}

func (m *Manager) build(user domain.User) *Session {
	log := m.log.With(zap.String("user_id", user.ID))
	gateway := cart.NewSyncGateway(m.backend)
	store := cart.NewStore(gateway, log)
	return &Session{
		user:    user,
		store:   store,
		gateway: gateway,
		pending: pending.NewManager(store, gateway, pending.Config{
			Window: m.cfg.UndoWindow,
			Policy: m.cfg.Policy,
			Clock:  m.cfg.Clock,
		}, log),
		checkout: checkout.NewInitiator(m.backend, store, m.mirror, log),
		payment: payment.NewResolver(m.backend, store, m.mirror, payment.Config{
			DisplayDelay: m.cfg.DisplayDelay,
			MirrorKey:    user.ID,
		}, log),
		mirror: m.mirror,
		log:    log,
	}
}

// End closes the user's session on logout. Pending deletions are committed
// first so the user's intent is honoured.
func (m *Manager) End(ctx context.Context, userID string) error {
	s := m.detach(userID)
	if s == nil {
		return ErrNoSession
	}
	return m.teardown(ctx, s)
}

// Sweep ends every session idle since before now minus the idle timeout and
// returns how many it ended. A zero timeout disables eviction.
func (m *Manager) Sweep(ctx context.Context, now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTimeout)

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if _, seen := s.seen(); seen.Before(cutoff) {
			idle = append(idle, s)
			m.forgetLocked(id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		if err := m.teardown(ctx, s); err != nil {
			m.log.Warn("idle session teardown incomplete", zap.String("user_id", s.user.ID), zap.Error(err))
		}
	}
	if len(idle) > 0 {
		m.log.Info("idle sessions evicted", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close cancels every scheduled deletion and drops all sessions. Deletions
// still inside their undo window are not committed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.tokens = make(map[string]string)
	m.mu.Unlock()

	for _, s := range sessions {
		s.pending.Close()
		s.store.Reset()
	}
	m.log.Info("session manager closed", zap.Int("sessions", len(sessions)))
}

func (m *Manager) detach(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	m.forgetLocked(userID)
	return s
}

func (m *Manager) forgetLocked(userID string) {
	delete(m.sessions, userID)
	for token, id := range m.tokens {
		if id == userID {
			delete(m.tokens, token)
		}
	}
}

func (m *Manager) teardown(ctx context.Context, s *Session) error {
	token, _ := s.seen()
	ctx = backend.WithToken(ctx, token)

	err := s.pending.Flush(ctx)
	s.pending.Close()
	s.store.Reset()
	if ferr := m.mirror.Forget(ctx, s.user.ID); ferr != nil {
		m.log.Warn("cart mirror cleanup failed", zap.String("user_id", s.user.ID), zap.Error(ferr))
	}
	m.log.Info("session ended", zap.String("user_id", s.user.ID))
	return err
}
