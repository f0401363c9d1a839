package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/narratives/internal/platform/sec"
)

// # Identity Types

// UserMetadata is the profile the OAuth provider reported.
type UserMetadata struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Provider  string `json:"provider"`
}

// User is the authenticated principal.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// Session mirrors the backend's view of a signed-in user.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Claims returns the identity carried in request contexts.
func (s *Session) Claims() *sec.AuthClaims {
	if s == nil {
		return nil
	}
	return &sec.AuthClaims{SessionID: s.ID, UserID: s.User.ID, Email: s.User.Email}
}

// AuthEvent names a session transition.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthChange is published whenever a session starts, ends or is renewed.
type AuthChange struct {
	Event     AuthEvent `json:"event"`
	SessionID string    `json:"session_id"`
	Session   *Session  `json:"session,omitempty"`
}

// # Collaborators

// ErrStateNotFound is returned when an OAuth state is unknown or expired.
var ErrStateNotFound = errors.New("gateway: oauth state not found or expired")

// SessionStore persists OAuth state values and sessions with a TTL.
type SessionStore interface {
	SaveState(ctx context.Context, state, redirectTo string, ttl time.Duration) error
	// TakeState returns the redirect bound to state and deletes it.
	TakeState(ctx context.Context, state string) (string, error)
	SaveSession(ctx context.Context, session *Session, ttl time.Duration) error
	// LoadSession returns nil, nil when the session does not exist.
	LoadSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// EventBus carries [AuthChange] notifications between processes.
type EventBus interface {
	Publish(ctx context.Context, change AuthChange) error
	Subscribe(ctx context.Context, handler func(AuthChange)) (cancel func(), err error)
}

// Provider is an OAuth identity provider.
type Provider interface {
	AuthCodeURL(state, redirectTo string) string
	Exchange(ctx context.Context, code, redirectTo string) (*User, error)
}

// # Auth API

// Auth issues and tracks sessions.
type Auth struct {
	store     SessionStore
	bus       EventBus
	tokens    *sec.TokenService
	providers map[string]Provider
	stateTTL  time.Duration
	ttl       time.Duration
	logger    *slog.Logger
}

// AuthConfig holds the collaborators of [Auth].
type AuthConfig struct {
	Store      SessionStore
	Bus        EventBus
	Tokens     *sec.TokenService
	Providers  map[string]Provider
	StateTTL   time.Duration
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// NewAuth creates the auth API.
func NewAuth(cfg AuthConfig) *Auth {
	return &Auth{
		store:     cfg.Store,
		bus:       cfg.Bus,
		tokens:    cfg.Tokens,
		providers: cfg.Providers,
		stateTTL:  cfg.StateTTL,
		ttl:       cfg.SessionTTL,
		logger:    cfg.Logger,
	}
}

// Enabled reports whether provider can be used for sign-in.
func (a *Auth) Enabled(provider string) bool {
	_, found := a.providers[provider]
	return found
}

// SignInWithOAuth starts the redirect flow and returns the provider URL.
// redirectTo is where the browser lands once the session exists.
func (a *Auth) SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error) {
	oauthProvider, found := a.providers[provider]
	if !found {
		return "", &Error{Code: "validation_failed", Message: fmt.Sprintf("Unsupported provider: %s", provider)}
	}

	state := uuid.NewString()
	if err := a.store.SaveState(ctx, state, redirectTo, a.stateTTL); err != nil {
		return "", wrap(err)
	}

	return oauthProvider.AuthCodeURL(state, redirectTo), nil
}

// ExchangeCodeForSession completes the redirect flow. It returns the new
// session and the redirect bound to state.
func (a *Auth) ExchangeCodeForSession(ctx context.Context, provider, state, code string) (*Session, string, error) {
	oauthProvider, found := a.providers[provider]
	if !found {
		return nil, "", &Error{Code: "validation_failed", Message: fmt.Sprintf("Unsupported provider: %s", provider)}
	}

	redirectTo, err := a.store.TakeState(ctx, state)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, "", &Error{Code: "bad_oauth_state", Message: "OAuth state is invalid or has expired", cause: err}
		}
		return nil, "", wrap(err)
	}

	user, err := oauthProvider.Exchange(ctx, code, redirectTo)
	if err != nil {
		return nil, "", wrap(err)
	}

	session, err := a.issue(ctx, uuid.NewString(), *user)
	if err != nil {
		return nil, "", err
	}

	a.publish(ctx, AuthChange{Event: EventSignedIn, SessionID: session.ID, Session: session})
	a.logger.Info("session_signed_in", slog.String("session_id", session.ID), slog.String("user_id", user.ID))

	return session, redirectTo, nil
}

// GetSession resolves an access token. It returns nil, nil when the token is
// absent, invalid, expired, revoked or superseded by a refresh.
func (a *Auth) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := a.tokens.VerifyToken(token)
	if err != nil {
		return nil, nil
	}

	session, err := a.store.LoadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, wrap(err)
	}
	if session == nil || session.AccessToken != token {
		return nil, nil
	}

	return session, nil
}

// RefreshSession re-issues the token of a live session.
func (a *Auth) RefreshSession(ctx context.Context, token string) (*Session, error) {
	current, err := a.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &Error{Code: "session_not_found", Message: "Session not found"}
	}

	session, err := a.issue(ctx, current.ID, current.User)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, AuthChange{Event: EventTokenRefreshed, SessionID: session.ID, Session: session})
	return session, nil
}

// SignOut revokes the session behind token. Signing out without a live
// session is not an error.
func (a *Auth) SignOut(ctx context.Context, token string) error {
	session, err := a.GetSession(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if err := a.store.DeleteSession(ctx, session.ID); err != nil {
		return wrap(err)
	}

	a.publish(ctx, AuthChange{Event: EventSignedOut, SessionID: session.ID})
	a.logger.Info("session_signed_out", slog.String("session_id", session.ID))
	return nil
}

// OnAuthStateChange delivers changes for sessionID until the subscription is
// cancelled. An empty sessionID receives every change.
func (a *Auth) OnAuthStateChange(ctx context.Context, sessionID string, handler func(AuthEvent, *Session)) (*Subscription, error) {
	cancel, err := a.bus.Subscribe(ctx, func(change AuthChange) {
		if sessionID != "" && change.SessionID != sessionID {
			return
		}
		handler(change.Event, change.Session)
	})
	if err != nil {
		return nil, wrap(err)
	}
	return NewSubscription(cancel), nil
}

func (a *Auth) issue(ctx context.Context, sessionID string, user User) (*Session, error) {
	token, expiresAt, err := a.tokens.GenerateAccessToken(sessionID, user.ID, user.Email, a.ttl)
	if err != nil {
		return nil, err
	}

	session := &Session{ID: sessionID, AccessToken: token, ExpiresAt: expiresAt, User: user}
	if err := a.store.SaveSession(ctx, session, a.ttl); err != nil {
		return nil, wrap(err)
	}
	return session, nil
}

// publish logs and drops bus failures.
func (a *Auth) publish(ctx context.Context, change AuthChange) {
	if err := a.bus.Publish(ctx, change); err != nil {
		a.logger.Warn("auth_event_publish_failed",
			slog.String("event", string(change.Event)),
			slog.String("error", err.Error()),
		)
	}
}
