package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// SweepInterval is how often the proactive expiry check runs.
const SweepInterval = 60 * time.Second

// IdleTTL is how long an anonymous session may sit unused before the
// sweeper evicts it. Without eviction every forged or crawler-minted sid
// cookie would pin a session and its cookie jar forever.
const IdleTTL = 30 * time.Minute

// Manager owns all live sessions, keyed by the sid cookie value.
type Manager struct {
	auth *api.Client

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(auth *api.Client) *Manager {
	return &Manager{auth: auth, sessions: make(map[string]*Session)}
}

// Get returns the session for sid, creating it on first sight.
func (m *Manager) Get(sid string) *Session {
	now := time.Now()
	m.mu.RLock()
	s := m.sessions[sid]
	m.mu.RUnlock()
	if s != nil {
		s.touch(now)
		return s
	}
	m.mu.Lock()
	if s = m.sessions[sid]; s == nil {
		s = newSession(sid, m.auth)
		m.sessions[sid] = s
	}
	m.mu.Unlock()
	s.touch(now)
	return s
}

// Peek returns the session for sid without creating one.
func (m *Manager) Peek(sid string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sid]
}

// Login exchanges credentials for {user, accessToken} and the refresh
// cookie. On failure the session is left untouched.
func (m *Manager) Login(ctx context.Context, sid, email, password string) (domain.User, error) {
	s := m.Get(sid)
	res, err := m.auth.Login(ctx, s.jar, email, password)
	if err != nil {
		return domain.User{}, err
	}
	s.setIdentity(res.User, res.AccessToken)
	return res.User, nil
}

func (m *Manager) Register(ctx context.Context, sid, email, password, name, role string) (domain.User, error) {
	s := m.Get(sid)
	res, err := m.auth.Register(ctx, s.jar, email, password, name, role)
	if err != nil {
		return domain.User{}, err
	}
	s.setIdentity(res.User, res.AccessToken)
	return res.User, nil
}

// Logout invalidates the refresh cookie upstream and drops the session,
// jar included, even when the upstream call fails. The error is returned
// so callers can log the dangling cookie.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	s := m.Get(sid)
	err := m.auth.Logout(ctx, s.jar)
	s.clear()
	m.Drop(sid)
	return err
}

// Drop removes a session entirely, jar included.
func (m *Manager) Drop(sid string) {
	m.mu.Lock()
	delete(m.sessions, sid)
	m.mu.Unlock()
}

// StartSweeper launches the periodic maintenance pass: every interval,
// sessions holding an expired token are refreshed before a request has to
// fail with a 401, and anonymous sessions idle past IdleTTL are evicted.
// Stops when ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				m.sweep(ctx, now)
			}
		}
	}()
}

func (m *Manager) sweep(ctx context.Context, now time.Time) {
	m.mu.Lock()
	stale := make([]*Session, 0)
	for sid, s := range m.sessions {
		if s.evictable(now, IdleTTL) {
			delete(m.sessions, sid)
			continue
		}
		if s.TokenExpired(now) {
			stale = append(stale, s)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		if _, err := s.Refresh(ctx); err != nil {
			// Refresh already cleared the session; the next request
			// lands on the login page.
			applog.Error(nil, "session.sweep.refresh", err, map[string]any{"sid": s.ID})
		}
	}
}
