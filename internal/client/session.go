package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// SessionStore holds the process-wide authenticated identity. It is the
// only writer of that identity; every other component reads it through
// Current or subscribes to changes.
//
// Identity updates are totally ordered by an epoch counter: every publish
// and every logout bumps it, and an in-flight call that started under an
// older epoch cannot publish its result. This is what stops a slow refresh
// from re-populating the identity after a logout, or a stale login response
// from overwriting a newer one.
type SessionStore struct {
	api *Client

	mu          sync.Mutex
	identity    *domain.Identity
	epoch       uint64
	subscribers map[int]func(*domain.Identity)
	nextSubID   int
}

func NewSessionStore(api *Client) *SessionStore {
	return &SessionStore{
		api:         api,
		subscribers: make(map[int]func(*domain.Identity)),
	}
}

// Current returns a copy of the identity, or nil when logged out.
func (s *SessionStore) Current() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Subscribe registers fn to run on every identity change, including the
// current value immediately. The returned function unsubscribes.
func (s *SessionStore) Subscribe(fn func(*domain.Identity)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	current := s.identity
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Can is the client-side capability precheck. It is an optimization to
// avoid doomed network calls; the server re-validates every privileged
// operation regardless.
func (s *SessionStore) Can(cap domain.Capability) error {
	return domain.Require(s.Current(), cap)
}

// Login performs the credential exchange followed by the verify round-trip:
// the identity is published only after a bound /me call confirms it. A
// login that "succeeds" but cannot be verified is a failure, and the
// pre-call identity stays in place.
func (s *SessionStore) Login(ctx context.Context, username, password string) error {
	started := s.currentEpoch()

	err := s.api.do(ctx, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if err != nil {
		return err
	}

	var id domain.Identity
	if err := s.api.do(ctx, http.MethodGet, "/me", nil, &id); err != nil {
		if _, ok := err.(*NetworkError); ok {
			return err
		}
		return &AuthError{Message: "login succeeded but identity could not be verified"}
	}

	if !s.publish(&id, started) {
		return &StaleStateError{Message: "session changed while logging in"}
	}
	return nil
}

// Register creates an account. It does not log the new user in.
func (s *SessionStore) Register(ctx context.Context, username, password string) error {
	return s.api.do(ctx, http.MethodPost, "/register", map[string]string{
		"username": username,
		"password": password,
	}, nil)
}

// Refresh re-reads the identity from the server. Returns true iff a valid
// identity was (re)established. A 401 clears the identity; a network
// failure leaves it untouched. Either way, a logout or login that landed
// while the call was in flight wins over this result.
func (s *SessionStore) Refresh(ctx context.Context) bool {
	started := s.currentEpoch()

	var id domain.Identity
	err := s.api.do(ctx, http.MethodGet, "/me", nil, &id)
	if err != nil {
		if _, ok := err.(*AuthError); ok {
			s.publish(nil, started)
		}
		return false
	}

	return s.publish(&id, started)
}

// Logout clears the local identity unconditionally and immediately, then
// notifies the server on a best-effort basis. The epoch bump outranks any
// refresh still in flight.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	s.identity = nil
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}

	// Fire and forget: a failed remote logout must not resurrect the session.
	_ = s.api.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// ChangePassword verifies the old password server-side.
func (s *SessionStore) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return s.api.do(ctx, http.MethodPost, "/change-password", map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	}, nil)
}

func (s *SessionStore) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// publish installs id as the current identity iff no conflicting update
// happened since started. Reports whether the publish took effect.
func (s *SessionStore) publish(id *domain.Identity, started uint64) bool {
	s.mu.Lock()
	if s.epoch != started {
		s.mu.Unlock()
		return false
	}
	s.epoch++
	s.identity = id
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
	return true
}

func (s *SessionStore) snapshotSubscribers() []func(*domain.Identity) {
	subs := make([]func(*domain.Identity), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}
