package identity_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/taibuivan/narratives/internal/gateway"
)

// fakeAuth is an in-memory [identity.AuthAPI]. Sessions are keyed by token.
type fakeAuth struct {
	mu        sync.Mutex
	sessions  map[string]*gateway.Session
	states    map[string]string
	handlers  map[int]func(gateway.AuthEvent, *gateway.Session)
	scopes    map[int]string
	next      int
	lookupErr error
	signedOut []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		sessions: map[string]*gateway.Session{},
		states:   map[string]string{},
		handlers: map[int]func(gateway.AuthEvent, *gateway.Session){},
		scopes:   map[int]string{},
	}
}

func (a *fakeAuth) addSession(token, id string) *gateway.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	session := &gateway.Session{
		ID:          id,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        gateway.User{ID: "github:1", Email: "writer@example.com"},
	}
	a.sessions[token] = session
	return session
}

func (a *fakeAuth) emit(event gateway.AuthEvent, sessionID string, session *gateway.Session) {
	a.mu.Lock()
	var targets []func(gateway.AuthEvent, *gateway.Session)
	for id, handler := range a.handlers {
		if a.scopes[id] == "" || a.scopes[id] == sessionID {
			targets = append(targets, handler)
		}
	}
	a.mu.Unlock()

	for _, handler := range targets {
		handler(event, session)
	}
}

func (a *fakeAuth) subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.handlers)
}

func (a *fakeAuth) Enabled(provider string) bool { return provider == "github" }

func (a *fakeAuth) SignInWithOAuth(_ context.Context, provider, redirectTo string) (string, error) {
	if provider != "github" {
		return "", &gateway.Error{Code: "validation_failed", Message: "Unsupported provider: " + provider}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.states["state-1"] = redirectTo
	return "https://github.test/authorize?state=state-1&redirect=" + url.QueryEscape(redirectTo), nil
}

func (a *fakeAuth) ExchangeCodeForSession(_ context.Context, _, state, code string) (*gateway.Session, string, error) {
	a.mu.Lock()
	redirectTo, found := a.states[state]
	delete(a.states, state)
	a.mu.Unlock()

	if !found {
		return nil, "", &gateway.Error{Code: "bad_oauth_state", Message: "OAuth state is invalid or has expired"}
	}
	return a.addSession("token-"+code, "session-"+code), redirectTo, nil
}

func (a *fakeAuth) GetSession(_ context.Context, token string) (*gateway.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lookupErr != nil {
		return nil, a.lookupErr
	}
	return a.sessions[token], nil
}

func (a *fakeAuth) RefreshSession(_ context.Context, token string) (*gateway.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	current, found := a.sessions[token]
	if !found {
		return nil, &gateway.Error{Code: "session_not_found", Message: "Session not found"}
	}
	delete(a.sessions, token)
	renewed := *current
	renewed.AccessToken = token + "-renewed"
	a.sessions[renewed.AccessToken] = &renewed
	return &renewed, nil
}

func (a *fakeAuth) SignOut(_ context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, found := a.sessions[token]; !found {
		return nil
	}
	delete(a.sessions, token)
	a.signedOut = append(a.signedOut, token)
	return nil
}

func (a *fakeAuth) OnAuthStateChange(_ context.Context, sessionID string, handler func(gateway.AuthEvent, *gateway.Session)) (*gateway.Subscription, error) {
	if handler == nil {
		return nil, errors.New("no handler")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	id := a.next
	a.handlers[id] = handler
	a.scopes[id] = sessionID
	return gateway.NewSubscription(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.handlers, id)
		delete(a.scopes, id)
	}), nil
}
