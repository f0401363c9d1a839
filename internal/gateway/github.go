package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const gitHubAPI = "https://api.github.com"

// GitHubProvider signs users in with GitHub OAuth apps.
type GitHubProvider struct {
	config  oauth2.Config
	apiBase string
}

// NewGitHubProvider creates a provider whose callback is callbackURL.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: gitHubAPI,
	}
}

// WithEndpoints points the provider at another OAuth server and API base.
func (p *GitHubProvider) WithEndpoints(endpoint oauth2.Endpoint, apiBase string) *GitHubProvider {
	p.config.Endpoint = endpoint
	p.apiBase = apiBase
	return p
}

// AuthCodeURL returns the GitHub consent URL. The final redirect is kept
// server side with the state, so redirectTo is not sent to GitHub.
func (p *GitHubProvider) AuthCodeURL(state, _ string) string {
	return p.config.AuthCodeURL(state)
}

type gitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type gitHubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades the code for a token and loads the GitHub profile.
func (p *GitHubProvider) Exchange(ctx context.Context, code, _ string) (*User, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("gateway: github code exchange: %w", err)
	}

	client := p.config.Client(ctx, token)

	var profile gitHubUser
	if err := p.get(ctx, client, "/user", &profile); err != nil {
		return nil, err
	}

	email := profile.Email
	if email == "" {
		var emails []gitHubEmail
		if err := p.get(ctx, client, "/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, candidate := range emails {
			if candidate.Primary && candidate.Verified {
				email = candidate.Email
				break
			}
		}
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	return &User{
		ID:    "github:" + strconv.FormatInt(profile.ID, 10),
		Email: email,
		UserMetadata: UserMetadata{
			Name:      name,
			AvatarURL: profile.AvatarURL,
			Provider:  "github",
		},
	}, nil
}

func (p *GitHubProvider) get(ctx context.Context, client *http.Client, path string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/vnd.github+json")

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("gateway: github %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &Error{Code: "provider_error", Message: fmt.Sprintf("GitHub responded %d for %s", response.StatusCode, path)}
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("gateway: decode github %s: %w", path, err)
	}
	return nil
}
