package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/apperr"
	"github.com/taibuivan/narratives/internal/platform/constants"
	"github.com/taibuivan/narratives/internal/platform/flash"
)

const (
	MessageCommentPosted = "Comment posted!"
	MessageCommentFailed = "Failed to post comment."
)

type worksView struct {
	Works     []literature.Work
	IsLoading bool
	Error     string
}

func (handler *Handler) worksView(limit int) worksView {
	state := handler.deps.Works.State()
	works := state.Works
	if limit > 0 && len(works) > limit {
		works = works[:limit]
	}
	return worksView{Works: works, IsLoading: state.IsLoading, Error: state.Error}
}

func (handler *Handler) landing(writer http.ResponseWriter, request *http.Request) {
	p := handler.newPage(request, "", "home", handler.worksView(constants.RecentWorksCount))
	p.Live = "/live/works"
	handler.render(writer, request, http.StatusOK, "landing", p)
}

func (handler *Handler) about(writer http.ResponseWriter, request *http.Request) {
	handler.render(writer, request, http.StatusOK, "about", handler.newPage(request, "About", "about", nil))
}

func (handler *Handler) listWorks(writer http.ResponseWriter, request *http.Request) {
	p := handler.newPage(request, "Works", "works", handler.worksView(0))
	p.Live = "/live/works"
	handler.render(writer, request, http.StatusOK, "literature", p)
}

// refetchWorks is the Retry button of the works lists.
func (handler *Handler) refetchWorks(writer http.ResponseWriter, request *http.Request) {
	_ = handler.deps.Works.Refetch(request.Context())
	back(writer, request, "/literature")
}

// # Work Detail

type detailView struct {
	literature.DetailState
	ID       string
	Comments comment.ThreadState
	Summary  string
	Comment  comment.Input
}

func (handler *Handler) loadDetail(request *http.Request, id string) detailView {
	detail := literature.NewDetail(handler.deps.WorkRepo, id, handler.deps.Logger)
	defer detail.Deactivate()
	_ = detail.Activate(request.Context())

	view := detailView{DetailState: detail.State(), ID: id}
	if view.Work == nil {
		return view
	}

	thread := comment.NewThread(handler.deps.CommentRepo, handler.deps.Feed, id, handler.deps.Logger)
	defer thread.Deactivate()
	_ = thread.Activate(request.Context())
	view.Comments = thread.State()
	return view
}

func (handler *Handler) renderDetail(writer http.ResponseWriter, request *http.Request, view detailView, toasts ...flash.Message) {
	status := http.StatusOK
	title := "Work not found"
	switch {
	case view.Error != "":
		title = "Failed to load this work"
	case view.Work == nil:
		status = http.StatusNotFound
	default:
		title = view.Work.Title
	}

	p := handler.newPage(request, title, "works", view)
	if view.Work != nil {
		p.Live = "/live/works/" + view.ID
	}
	handler.render(writer, request, status, "detail", p, toasts...)
}

func (handler *Handler) showWork(writer http.ResponseWriter, request *http.Request) {
	handler.renderDetail(writer, request, handler.loadDetail(request, chi.URLParam(request, "id")))
}

// postComment adds a comment and returns to the thread.
func (handler *Handler) postComment(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")
	input := comment.Input{
		AuthorName: request.PostFormValue("author_name"),
		Content:    request.PostFormValue("content"),
	}

	if err := input.Validate(); err != nil {
		view := handler.loadDetail(request, id)
		view.Comment = input
		handler.renderDetail(writer, request, view, flash.Message{Kind: flash.KindError, Text: MessageCommentFailed})
		return
	}

	thread := comment.NewThread(handler.deps.CommentRepo, handler.deps.Feed, id, handler.deps.Logger)
	if _, err := thread.AddComment(request.Context(), input); err != nil {
		flash.Error(writer, MessageCommentFailed)
	} else {
		flash.Success(writer, MessageCommentPosted)
	}
	http.Redirect(writer, request, "/literature/"+id+"#comments", http.StatusSeeOther)
}

// summarizeWork renders the detail page with a generated summary. Failures
// become a notification on the unchanged page.
func (handler *Handler) summarizeWork(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")
	view := handler.loadDetail(request, id)
	if view.Work == nil {
		handler.renderDetail(writer, request, view)
		return
	}

	text, err := handler.deps.Summary.Summarize(request.Context(), view.Work.Title, view.Work.Content)
	if err != nil {
		handler.renderDetail(writer, request, view, flash.Message{Kind: flash.KindError, Text: apperr.Message(err)})
		return
	}

	view.Summary = strings.TrimSpace(text)
	handler.renderDetail(writer, request, view)
}
