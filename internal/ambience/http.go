package ambience

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/platform/respond"
)

type Handler struct {
	trackURL string
}

func NewHandler(trackURL string) *Handler {
	return &Handler{trackURL: trackURL}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/toggle", handler.toggle)
}

type playerView struct {
	Playing  bool   `json:"playing"`
	Label    string `json:"label"`
	TrackURL string `json:"track_url"`
	Loop     bool   `json:"loop"`
}

func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request) {
	player := FromRequest(handler.trackURL, request)
	player.Toggle()
	player.Save(writer)

	if requestutil.WantsJSON(request) {
		respond.OK(writer, playerView{
			Playing:  player.Playing(),
			Label:    player.Label(),
			TrackURL: player.TrackURL,
			Loop:     player.Loop,
		})
		return
	}

	http.Redirect(writer, request, backTo(request), http.StatusSeeOther)
}

// backTo returns the local page the toggle was pressed on.
func backTo(request *http.Request) string {
	referer, err := url.Parse(request.Referer())
	if err != nil || referer.Path == "" || (referer.Host != "" && referer.Host != request.Host) {
		return "/"
	}
	return referer.RequestURI()
}
