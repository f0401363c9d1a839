package ambience_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/ambience"
)

const track = "https://cdn.example/loop.mp3"

func TestPlayer_Toggle(t *testing.T) {
	player := ambience.NewPlayer(track, false)
	assert.True(t, player.Loop)
	assert.Equal(t, ambience.LabelPlay, player.Label())

	assert.True(t, player.Toggle())
	assert.Equal(t, ambience.LabelPause, player.Label())

	assert.False(t, player.Toggle())
	assert.False(t, player.Playing())
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		want   bool
	}{
		{name: "new visitor", want: false},
		{name: "playing", cookie: &http.Cookie{Name: "ambience", Value: "on"}, want: true},
		{name: "paused", cookie: &http.Cookie{Name: "ambience", Value: "off"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				request.AddCookie(tt.cookie)
			}
			assert.Equal(t, tt.want, ambience.FromRequest(track, request).Playing())
		})
	}
}

/*
TestHandler_Toggle checks the redirect back to the page and the JSON answer
for script callers.
*/
func TestHandler_Toggle(t *testing.T) {
	router := chi.NewRouter()
	router.Route("/ambience", ambience.NewHandler(track).RegisterRoutes)

	request := httptest.NewRequest(http.MethodPost, "/ambience/toggle", nil)
	request.Header.Set("Referer", "http://example.com/about")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/about", recorder.Header().Get("Location"))
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "on", cookies[0].Value)

	request = httptest.NewRequest(http.MethodPost, "/ambience/toggle", nil)
	request.Header.Set("Accept", "application/json")
	request.AddCookie(cookies[0])
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var body struct {
		Data struct {
			Playing bool   `json:"playing"`
			Label   string `json:"label"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.False(t, body.Data.Playing)
	assert.Equal(t, ambience.LabelPlay, body.Data.Label)
}
