// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/narratives/internal/literature"
	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/platform/respond"
)

// WorkReader loads the work to summarize.
type WorkReader interface {
	GetWork(ctx context.Context, id string) (*literature.Work, error)
}

type Handler struct {
	service *Service
	works   WorkReader
}

func NewHandler(service *Service, works WorkReader) *Handler {
	return &Handler{service: service, works: works}
}

// RegisterRoutes mounts POST /{id}/summary on a works router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/{id}/summary", handler.summarize)
}

type response struct {
	WorkID  string `json:"work_id"`
	Summary string `json:"summary"`
}

func (handler *Handler) summarize(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	work, err := handler.works.GetWork(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	text, err := handler.service.Summarize(request.Context(), work.Title, work.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response{WorkID: work.ID, Summary: text})
}
