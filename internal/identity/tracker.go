// Package identity tracks who is signed in. A present session is the only
// authorization signal in the system; there are no roles.
package identity

import (
	"context"
	"sync"

	"github.com/taibuivan/narratives/internal/gateway"
)

// AuthAPI is the part of the gateway auth API identity depends on.
type AuthAPI interface {
	Enabled(provider string) bool
	SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error)
	ExchangeCodeForSession(ctx context.Context, provider, state, code string) (*gateway.Session, string, error)
	GetSession(ctx context.Context, token string) (*gateway.Session, error)
	RefreshSession(ctx context.Context, token string) (*gateway.Session, error)
	SignOut(ctx context.Context, token string) error
	OnAuthStateChange(ctx context.Context, sessionID string, handler func(gateway.AuthEvent, *gateway.Session)) (*gateway.Subscription, error)
}

// Tracker follows one browser's session for as long as it is open.
//
// It asks for the session once, then applies sign-out and refresh events for
// that session. An anonymous tracker has nothing to follow and stays absent;
// a sign-in made later is seen by the next Track call with the new cookie,
// which the live pages make by reconnecting when their tab becomes visible.
type Tracker struct {
	mu           sync.Mutex
	session      *gateway.Session
	subscription *gateway.Subscription
	watchers     map[int]func(*gateway.Session)
	nextWatcher  int
	closed       bool
}

// Track resolves token and subscribes to changes of the resulting session.
func Track(ctx context.Context, auth AuthAPI, token string) (*Tracker, error) {
	session, err := auth.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	tracker := &Tracker{session: session, watchers: make(map[int]func(*gateway.Session))}
	if session == nil {
		return tracker, nil
	}

	subscription, err := auth.OnAuthStateChange(ctx, session.ID, tracker.onChange)
	if err != nil {
		return nil, err
	}

	tracker.mu.Lock()
	tracker.subscription = subscription
	tracker.mu.Unlock()
	return tracker, nil
}

// Current returns the tracked session, or nil when signed out.
func (t *Tracker) Current() *gateway.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Present reports whether a session exists.
func (t *Tracker) Present() bool {
	return t.Current() != nil
}

// Watch calls fn whenever the session changes, until cancel or Close.
func (t *Tracker) Watch(fn func(*gateway.Session)) (cancel func()) {
	t.mu.Lock()
	t.nextWatcher++
	id := t.nextWatcher
	t.watchers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.watchers, id)
		t.mu.Unlock()
	}
}

// Close unsubscribes. Only the first call has an effect.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	subscription := t.subscription
	t.subscription = nil
	clear(t.watchers)
	t.mu.Unlock()

	subscription.Unsubscribe()
}

func (t *Tracker) onChange(event gateway.AuthEvent, session *gateway.Session) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	switch event {
	case gateway.EventSignedOut:
		t.session = nil
	case gateway.EventSignedIn, gateway.EventTokenRefreshed:
		if session != nil {
			t.session = session
		}
	}

	current := t.session
	watchers := make([]func(*gateway.Session), 0, len(t.watchers))
	for _, fn := range t.watchers {
		watchers = append(watchers, fn)
	}
	t.mu.Unlock()

	for _, fn := range watchers {
		fn(current)
	}
}
