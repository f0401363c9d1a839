package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/narratives/internal/platform/constants"
	"github.com/taibuivan/narratives/internal/platform/ctxutil"
)

// Token returns the session token carried by request: the session cookie,
// or a bearer token for API clients.
func Token(request *http.Request) string {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, found := strings.Cut(request.Header.Get("Authorization"), " ")
	if found && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// Middleware resolves the session of every request and injects its claims.
//
// An unknown, expired or revoked token leaves the request anonymous. A
// backend failure is logged and also leaves it anonymous.
func Middleware(auth AuthAPI) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := Token(request)
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			session, err := auth.GetSession(request.Context(), token)
			if err != nil {
				ctxutil.GetLogger(request.Context()).Warn("session_lookup_failed", slog.String("error", err.Error()))
			}
			if session == nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithSessionClaims(request.Context(), session.Claims())
			ctx = ctxutil.WithAccessToken(ctx, token)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
