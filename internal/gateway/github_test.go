package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/taibuivan/narratives/internal/gateway"
)

func gitHubServer(t *testing.T, profileEmail string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(writer http.ResponseWriter, request *http.Request) {
		require.NoError(t, request.ParseForm())
		assert.Equal(t, "the-code", request.Form.Get("code"))
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{"access_token": "gh-token", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer gh-token", request.Header.Get("Authorization"))
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"id": 42, "login": "sjk", "name": "", "email": profileEmail, "avatar_url": "https://avatars.test/42",
		})
	})
	mux.HandleFunc("/user/emails", func(writer http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(writer).Encode([]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "primary@example.com", "primary": true, "verified": true},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testProvider(server *httptest.Server) *gateway.GitHubProvider {
	return gateway.NewGitHubProvider("client", "secret", "https://sjk.example/auth/callback").
		WithEndpoints(oauth2.Endpoint{
			AuthURL:   server.URL + "/login/oauth/authorize",
			TokenURL:  server.URL + "/login/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		}, server.URL)
}

/*
TestGitHubProvider_AuthCodeURL includes the state and callback.
*/
func TestGitHubProvider_AuthCodeURL(t *testing.T) {
	server := gitHubServer(t, "")
	raw := testProvider(server).AuthCodeURL("state-1", "https://sjk.example")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "state-1", parsed.Query().Get("state"))
	assert.Equal(t, "https://sjk.example/auth/callback", parsed.Query().Get("redirect_uri"))
	assert.Equal(t, "client", parsed.Query().Get("client_id"))
}

/*
TestGitHubProvider_Exchange falls back to the primary verified email.
*/
func TestGitHubProvider_Exchange(t *testing.T) {
	server := gitHubServer(t, "")

	user, err := testProvider(server).Exchange(context.Background(), "the-code", "")
	require.NoError(t, err)

	assert.Equal(t, "github:42", user.ID)
	assert.Equal(t, "primary@example.com", user.Email)
	assert.Equal(t, "sjk", user.UserMetadata.Name)
	assert.Equal(t, "github", user.UserMetadata.Provider)
}

/*
TestGitHubProvider_ExchangePublicEmail uses the profile email when present.
*/
func TestGitHubProvider_ExchangePublicEmail(t *testing.T) {
	server := gitHubServer(t, "public@example.com")

	user, err := testProvider(server).Exchange(context.Background(), "the-code", "")
	require.NoError(t, err)
	assert.Equal(t, "public@example.com", user.Email)
}
