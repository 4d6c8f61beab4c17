// Package session holds the per-browser-session auth state: the signed-in
// user, the in-memory access token and the upstream cookie jar carrying the
// httpOnly refresh cookie. Token refresh is single-flight per session.
package session

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/api"
	"storefront/internal/domain"
)

type Session struct {
	ID  string
	jar http.CookieJar

	auth *api.Client

	mu       sync.Mutex
	user     *domain.User
	token    string
	lastSeen time.Time
	inflight *refreshCall
}

// refreshCall is the in-flight future cell: the first caller creates it and
// performs the network call, later callers block on done and read the
// shared result.
type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

func newSession(id string, auth *api.Client) *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{ID: id, jar: jar, auth: auth, lastSeen: time.Now()}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// evictable reports whether the session is anonymous and has been idle
// longer than ttl. Authenticated sessions are never evicted here; they
// leave the manager through Logout.
func (s *Session) evictable(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user == nil && s.token == "" && now.Sub(s.lastSeen) > ttl
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticated reports whether the session holds both a user and a token.
// A stale token with no user counts as logged out.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

func (s *Session) setIdentity(u domain.User, token string) {
	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}

// Refresh implements api.TokenSource. If a refresh is already in flight the
// caller attaches to it; otherwise it creates the cell, performs the call
// and resolves all waiters with the same token or error. A failed refresh
// clears the session: it is terminal and never retried here.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	if call := s.inflight; call != nil {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	s.inflight = call
	s.mu.Unlock()

	token, err := s.auth.RefreshToken(ctx, s.jar)

	s.mu.Lock()
	if err != nil {
		s.user = nil
		s.token = ""
	} else {
		s.token = token
	}
	s.inflight = nil
	s.mu.Unlock()

	call.token, call.err = token, err
	close(call.done)
	return token, err
}

// TokenExpired reports whether the held token's embedded exp claim has
// passed. The claim is read without signature verification: the gateway
// does not hold the upstream signing key, and the check only schedules a
// refresh the upstream will authoritatively accept or reject. An unparsable
// token is treated as expired.
func (s *Session) TokenExpired(now time.Time) bool {
	tok := s.Token()
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(now)
}
