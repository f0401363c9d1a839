// Package ambience is the background audio toggle. Each browser owns one
// [Player]; its state lives in a cookie and changes only through Toggle.
package ambience

import (
	"net/http"
	"sync"

	"github.com/taibuivan/narratives/internal/platform/constants"
)

const (
	LabelPlay  = "Play Ambience"
	LabelPause = "Pause Ambience"
)

// Player is the shared cell behind the toggle button.
type Player struct {
	TrackURL string
	Loop     bool

	mu      sync.Mutex
	playing bool
}

// NewPlayer creates a looping player for trackURL.
func NewPlayer(trackURL string, playing bool) *Player {
	return &Player{TrackURL: trackURL, Loop: true, playing: playing}
}

// FromRequest restores the player a browser left behind. New visitors start
// paused.
func FromRequest(trackURL string, request *http.Request) *Player {
	cookie, err := request.Cookie(constants.AmbienceCookieName)
	return NewPlayer(trackURL, err == nil && cookie.Value == "on")
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Toggle flips between playing and paused and returns the new state.
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = !p.playing
	return p.playing
}

// Label is the button text for the current state.
func (p *Player) Label() string {
	if p.Playing() {
		return LabelPause
	}
	return LabelPlay
}

// Save writes the state back to the browser.
func (p *Player) Save(writer http.ResponseWriter) {
	value := "off"
	if p.Playing() {
		value = "on"
	}
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AmbienceCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})
}
