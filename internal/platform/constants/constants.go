// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Session cookie and token configuration.
  - Realtime: Change-feed channel names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "narratives"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// CommentRateLimitRPS throttles anonymous comment posting per IP.
	CommentRateLimitRPS = 0.2

	// CommentRateLimitBurst allows a short conversation before throttling kicks in.
	CommentRateLimitBurst = 3

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "narratives"

	// SessionCookieName holds the session access token.
	SessionCookieName = "sb_session"

	// SessionTTL is how long a signed-in session stays valid.
	SessionTTL = 7 * 24 * time.Hour

	// OAuthStateTTL bounds the time between login redirect and provider callback.
	OAuthStateTTL = 10 * time.Minute

	// DefaultOAuthProvider is the only provider wired for admin login.
	DefaultOAuthProvider = "github"
)

// # Presentation

const (
	// FlashCookieName carries one-shot notifications across redirects.
	FlashCookieName = "flash"

	// AmbienceCookieName remembers whether background audio is playing.
	AmbienceCookieName = "ambience"

	// RecentWorksCount is the number of works shown on the landing page.
	RecentWorksCount = 3
)

// # Realtime

const (
	// ChangeFeedChannel is the PostgreSQL NOTIFY channel row triggers publish to.
	ChangeFeedChannel = "narratives_changes"

	// AuthEventsChannel is the Redis pub/sub channel for session changes.
	AuthEventsChannel = "auth:events"

	// LivePingInterval keeps idle WebSocket connections open through proxies.
	LivePingInterval = 30 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Database Tables

const (
	TableLiterature = "literature"
	TableComments   = "comments"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixOAuthState = "auth:oauth_state:"
	RedisPrefixSession    = "auth:session:"
)
