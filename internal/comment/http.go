package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/platform/respond"
)

type Handler struct {
	service *Service
	limit   func(http.Handler) http.Handler
}

// NewHandler creates the comment routes. limit guards comment posting and
// may be nil.
func NewHandler(service *Service, limit func(http.Handler) http.Handler) *Handler {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{service: service, limit: limit}
}

// RegisterRoutes mounts under a route that carries the work id as {id}.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listComments)
	router.With(handler.limit).Post("/", handler.createComment)
}

func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	comments, err := handler.service.ListComments(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if comments == nil {
		comments = []Comment{}
	}
	respond.OK(writer, comments)
}

func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comments, err := handler.service.CreateComment(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comments)
}
