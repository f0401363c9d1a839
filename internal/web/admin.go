package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/narratives/internal/admin"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/apperr"
	"github.com/taibuivan/narratives/internal/platform/constants"
	"github.com/taibuivan/narratives/internal/platform/flash"
	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/platform/respond"
)

// MessageConfirmDelete asks before a work is deleted.
const MessageConfirmDelete = "Are you sure you want to delete this work?"

// adminView renders either the login affordance or the dashboard, never both.
type adminView struct {
	SignedIn     bool
	LoginEnabled bool
	LoginURL     string
	Email        string

	Works     []literature.Work
	IsLoading bool
	Error     string

	FormOpen bool
	Editing  *literature.Work
	Form     literature.Draft
	Types    []literature.Type
}

// toasts collects workflow notifications for the response at hand.
type toasts struct {
	messages []flash.Message
}

func (t *toasts) Success(text string) {
	t.messages = append(t.messages, flash.Message{Kind: flash.KindSuccess, Text: text})
}

func (t *toasts) Error(text string) {
	t.messages = append(t.messages, flash.Message{Kind: flash.KindError, Text: text})
}

// carry moves the last notification into the flash cookie ahead of a redirect.
func (t *toasts) carry(writer http.ResponseWriter) {
	if len(t.messages) == 0 {
		return
	}
	last := t.messages[len(t.messages)-1]
	flash.Set(writer, last.Kind, last.Text)
}

func (handler *Handler) workflow() (*admin.Workflow, *toasts) {
	notes := &toasts{}
	return admin.NewWorkflow(handler.deps.Works, notes, handler.deps.Now), notes
}

func requireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if requestutil.Claims(request) == nil {
			http.Redirect(writer, request, "/admin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (handler *Handler) renderAdmin(writer http.ResponseWriter, request *http.Request, status int, workflow *admin.Workflow, notes *toasts) {
	view := adminView{
		LoginEnabled: handler.deps.Auth.Enabled(constants.DefaultOAuthProvider),
		LoginURL:     "/auth/login/" + constants.DefaultOAuthProvider,
		Types:        literature.Types(),
	}

	if claims := requestutil.Claims(request); claims != nil {
		state := handler.deps.Works.State()
		view.SignedIn = true
		view.Email = claims.Email
		view.Works = state.Works
		view.IsLoading = state.IsLoading
		view.Error = state.Error
		view.FormOpen = workflow.State() == admin.FormOpen
		view.Editing = workflow.Editing()
		view.Form = workflow.Form()
	}

	p := handler.newPage(request, "Admin", "admin", view)
	if view.SignedIn {
		p.Live = "/live/works"
	}
	handler.render(writer, request, status, "admin", p, notes.messages...)
}

func (handler *Handler) adminHome(writer http.ResponseWriter, request *http.Request) {
	workflow, notes := handler.workflow()
	handler.renderAdmin(writer, request, http.StatusOK, workflow, notes)
}

func (handler *Handler) newWork(writer http.ResponseWriter, request *http.Request) {
	workflow, notes := handler.workflow()
	workflow.OpenCreate()
	handler.renderAdmin(writer, request, http.StatusOK, workflow, notes)
}

func (handler *Handler) editWork(writer http.ResponseWriter, request *http.Request) {
	workflow, notes := handler.workflow()
	if !handler.openEdit(writer, request, workflow, chi.URLParam(request, "id")) {
		return
	}
	handler.renderAdmin(writer, request, http.StatusOK, workflow, notes)
}

func (handler *Handler) createWork(writer http.ResponseWriter, request *http.Request) {
	workflow, notes := handler.workflow()
	workflow.OpenCreate()
	handler.submit(writer, request, workflow, notes)
}

func (handler *Handler) updateWork(writer http.ResponseWriter, request *http.Request) {
	workflow, notes := handler.workflow()
	if !handler.openEdit(writer, request, workflow, chi.URLParam(request, "id")) {
		return
	}
	handler.submit(writer, request, workflow, notes)
}

// submit saves the posted form. A rejected form is shown again with the
// values the admin typed.
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request, workflow *admin.Workflow, notes *toasts) {
	_ = workflow.SetForm(draftFrom(request))

	if err := workflow.Submit(request.Context()); err != nil {
		handler.renderAdmin(writer, request, statusOf(request, err), workflow, notes)
		return
	}

	notes.carry(writer)
	http.Redirect(writer, request, "/admin", http.StatusSeeOther)
}

// uploadContent fills the content field from a .txt file and shows the form
// again with everything else the admin had typed.
func (handler *Handler) uploadContent(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, admin.MaxUploadBytes+1<<20)
	if err := request.ParseMultipartForm(admin.MaxUploadBytes); err != nil {
		flash.Error(writer, admin.MessageFileReadFail)
		http.Redirect(writer, request, "/admin", http.StatusSeeOther)
		return
	}

	workflow, notes := handler.workflow()
	if id := request.PostFormValue("id"); id != "" {
		if !handler.openEdit(writer, request, workflow, id) {
			return
		}
	} else {
		workflow.OpenCreate()
	}
	_ = workflow.SetForm(draftFrom(request))

	status := http.StatusOK
	file, header, err := request.FormFile("file")
	if err != nil {
		notes.Error(admin.MessageInvalidFile)
		status = http.StatusBadRequest
	} else {
		defer file.Close()
		upload := admin.FileUpload{ContentType: header.Header.Get("Content-Type"), Body: file}
		if err := workflow.LoadFile(upload); err != nil {
			status = statusOf(request, err)
		}
	}

	handler.renderAdmin(writer, request, status, workflow, notes)
}

// # Deletion

type confirmView struct {
	Work    literature.Work
	Message string
}

func (handler *Handler) confirmDelete(writer http.ResponseWriter, request *http.Request) {
	workflow, notes := handler.workflow()
	id := chi.URLParam(request, "id")

	work, err := handler.deps.WorkRepo.GetWork(request.Context(), id)
	if err != nil {
		flash.Error(writer, "Error: "+apperr.Message(err))
		http.Redirect(writer, request, "/admin", http.StatusSeeOther)
		return
	}
	if err := workflow.RequestDelete(id); err != nil {
		http.Redirect(writer, request, "/admin", http.StatusSeeOther)
		return
	}

	p := handler.newPage(request, "Delete "+work.Title, "admin", confirmView{Work: *work, Message: MessageConfirmDelete})
	handler.render(writer, request, http.StatusOK, "confirm_delete", p, notes.messages...)
}

func (handler *Handler) deleteWork(writer http.ResponseWriter, request *http.Request) {
	workflow, notes := handler.workflow()

	if err := workflow.RequestDelete(chi.URLParam(request, "id")); err == nil {
		_ = workflow.ConfirmDelete(request.Context())
	}

	notes.carry(writer)
	http.Redirect(writer, request, "/admin", http.StatusSeeOther)
}

// # Helpers

func (handler *Handler) openEdit(writer http.ResponseWriter, request *http.Request, workflow *admin.Workflow, id string) bool {
	work, err := handler.deps.WorkRepo.GetWork(request.Context(), id)
	if err != nil {
		flash.Error(writer, "Error: "+apperr.Message(err))
		http.Redirect(writer, request, "/admin", http.StatusSeeOther)
		return false
	}
	workflow.OpenEdit(*work)
	return true
}

func draftFrom(request *http.Request) literature.Draft {
	return literature.Draft{
		Type:          literature.Type(request.PostFormValue("type")),
		Title:         request.PostFormValue("title"),
		Content:       request.PostFormValue("content"),
		Excerpt:       request.PostFormValue("excerpt"),
		PublishedDate: request.PostFormValue("published_date"),
		Author:        request.PostFormValue("author"),
	}
}

func statusOf(request *http.Request, err error) int {
	if errors.Is(err, admin.ErrInvalidTransition) {
		return http.StatusConflict
	}
	return respond.Classify(request, err).HTTPStatus
}
