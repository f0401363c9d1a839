package literature

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/narratives/internal/platform/middleware"
	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.listWorks)
	router.Get("/{id}", handler.getWork)

	// Signed-in only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireSession)

		adminRoute.Post("/", handler.createWork)
		adminRoute.Patch("/{id}", handler.updateWork)
		adminRoute.Delete("/{id}", handler.deleteWork)
	})
}

func (handler *Handler) listWorks(writer http.ResponseWriter, request *http.Request) {
	works, err := handler.service.ListWorks(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if works == nil {
		works = []Work{}
	}
	respond.OK(writer, works)
}

func (handler *Handler) getWork(writer http.ResponseWriter, request *http.Request) {
	work, err := handler.service.GetWork(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, work)
}

func (handler *Handler) createWork(writer http.ResponseWriter, request *http.Request) {
	var input Draft
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	work, err := handler.service.CreateWork(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, work)
}

func (handler *Handler) updateWork(writer http.ResponseWriter, request *http.Request) {
	var input Patch
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	work, err := handler.service.UpdateWork(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, work)
}

func (handler *Handler) deleteWork(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteWork(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
