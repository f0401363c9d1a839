package identity

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/platform/apperr"
	"github.com/taibuivan/narratives/internal/platform/constants"
	"github.com/taibuivan/narratives/internal/platform/ctxutil"
	"github.com/taibuivan/narratives/internal/platform/flash"
	"github.com/taibuivan/narratives/internal/platform/middleware"
	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/platform/respond"
)

// Handler serves the OAuth redirect flow and the session API.
type Handler struct {
	auth   AuthAPI
	origin string
	secure bool
}

// NewHandler creates the auth routes. origin is the public application
// origin used as the return address; when empty it is taken from each
// request. secure marks the session cookie Secure.
func NewHandler(auth AuthAPI, origin string, secure bool) *Handler {
	return &Handler{auth: auth, origin: strings.TrimRight(origin, "/"), secure: secure}
}

// RegisterRoutes mounts the browser flow under /auth.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/login", handler.login)
	router.Get("/login/{provider}", handler.login)
	router.Get("/callback/{provider}", handler.callback)
	router.Post("/logout", handler.logout)
}

// RegisterAPIRoutes mounts the JSON session API.
func (handler *Handler) RegisterAPIRoutes(router chi.Router) {
	router.Get("/session", handler.getSession)
	router.With(middleware.RequireSession).Post("/refresh", handler.refreshSession)
	router.Post("/logout", handler.logout)
}

// CallbackURL is the address the provider sends the browser back to.
func CallbackURL(origin, provider string) string {
	return strings.TrimRight(origin, "/") + "/auth/callback/" + provider
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	provider := chi.URLParam(request, "provider")
	if provider == "" {
		provider = constants.DefaultOAuthProvider
	}

	origin := handler.originOf(request)
	if !handler.auth.Enabled(provider) {
		flash.Error(writer, "Login failed: sign-in is not configured.")
		http.Redirect(writer, request, origin+"/admin", http.StatusSeeOther)
		return
	}

	target, err := handler.auth.SignInWithOAuth(request.Context(), provider, origin)
	if err != nil {
		flash.Error(writer, "Login failed: "+apperr.Message(err))
		http.Redirect(writer, request, origin+"/admin", http.StatusSeeOther)
		return
	}

	http.Redirect(writer, request, target, http.StatusFound)
}

func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {
	origin := handler.originOf(request)
	query := request.URL.Query()

	if reason := query.Get("error"); reason != "" {
		flash.Error(writer, "Login failed: "+firstNonEmpty(query.Get("error_description"), reason))
		http.Redirect(writer, request, origin+"/admin", http.StatusSeeOther)
		return
	}

	session, redirectTo, err := handler.auth.ExchangeCodeForSession(
		request.Context(), chi.URLParam(request, "provider"), query.Get("state"), query.Get("code"),
	)
	if err != nil {
		ctxutil.GetLogger(request.Context()).Warn("oauth_callback_failed", slog.String("error", err.Error()))
		flash.Error(writer, "Login failed: "+apperr.Message(err))
		http.Redirect(writer, request, origin+"/admin", http.StatusSeeOther)
		return
	}

	handler.setCookie(writer, session)
	http.Redirect(writer, request, handler.safeRedirect(origin, redirectTo), http.StatusSeeOther)
}

func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	err := handler.auth.SignOut(request.Context(), Token(request))
	handler.clearCookie(writer)

	if requestutil.WantsJSON(request) {
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.NoContent(writer)
		return
	}

	if err != nil {
		flash.Error(writer, "Logout failed: "+apperr.Message(err))
	}
	http.Redirect(writer, request, handler.originOf(request)+"/", http.StatusSeeOther)
}

func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.auth.GetSession(request.Context(), Token(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}

func (handler *Handler) refreshSession(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.auth.RefreshSession(request.Context(), ctxutil.GetAccessToken(request.Context()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setCookie(writer, session)
	respond.OK(writer, session)
}

// # Helpers

func (handler *Handler) setCookie(writer http.ResponseWriter, session *gateway.Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    session.AccessToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   handler.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) originOf(request *http.Request) string {
	if handler.origin != "" {
		return handler.origin
	}

	scheme := "http"
	if request.TLS != nil || request.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + request.Host
}

// safeRedirect keeps the post-login redirect on this origin.
func (handler *Handler) safeRedirect(origin, redirectTo string) string {
	target, err := url.Parse(redirectTo)
	if err != nil || redirectTo == "" {
		return origin + "/"
	}
	if target.Host == "" && strings.HasPrefix(target.Path, "/") && !strings.HasPrefix(target.Path, "//") {
		return origin + target.RequestURI()
	}
	if strings.TrimRight(redirectTo, "/") == origin || strings.HasPrefix(redirectTo, origin+"/") {
		return redirectTo
	}
	return origin + "/"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
