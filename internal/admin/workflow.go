// Package admin drives the work management dashboard: opening the form,
// submitting it, loading content from a text file and confirmed deletes.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/apperr"
	"github.com/taibuivan/narratives/internal/platform/validate"
	"github.com/taibuivan/narratives/pkg/textnorm"
)

// Notifications shown by the dashboard.
const (
	MessageIncomplete   = "Please fill out all required fields."
	MessageAdded        = "Work added successfully!"
	MessageUpdated      = "Work updated successfully!"
	MessageDeleted      = "Work deleted successfully!"
	MessageFileLoaded   = "File content loaded successfully."
	MessageInvalidFile  = "Please upload a valid .txt file."
	MessageFileReadFail = "Failed to read the file."
)

// DefaultAuthor pre-fills the author field of a new work.
const DefaultAuthor = "Admin"

// MaxUploadBytes caps how much of an uploaded text file is read.
const MaxUploadBytes = 5 << 20

// State is where the dashboard is in the edit cycle.
type State int

const (
	Browsing State = iota
	FormOpen
	Submitting
	ConfirmingDelete
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case FormOpen:
		return "form_open"
	case Submitting:
		return "submitting"
	case ConfirmingDelete:
		return "confirming_delete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an action does not apply to the
// current state.
var ErrInvalidTransition = errors.New("admin: action not allowed in the current state")

// WorkMutator is the write side of the works list.
type WorkMutator interface {
	Add(ctx context.Context, draft literature.Draft) (*literature.Work, error)
	Update(ctx context.Context, id string, patch literature.Patch) error
	Remove(ctx context.Context, id string) error
}

// Notifier shows one-shot notifications.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// FileUpload is a file picked for the content field.
type FileUpload struct {
	ContentType string
	Body        io.Reader
}

// Workflow is the dashboard state machine. It is not safe for concurrent use.
type Workflow struct {
	works    WorkMutator
	notifier Notifier
	now      func() time.Time

	state    State
	form     literature.Draft
	editing  *literature.Work
	deleting string
	err      error
}

// NewWorkflow starts in [Browsing]. now supplies the default publication
// date and may be nil.
func NewWorkflow(works WorkMutator, notifier Notifier, now func() time.Time) *Workflow {
	if now == nil {
		now = time.Now
	}
	workflow := &Workflow{works: works, notifier: notifier, now: now}
	workflow.form = workflow.defaults()
	return workflow
}

func (w *Workflow) State() State { return w.state }

// Form returns the current form values.
func (w *Workflow) Form() literature.Draft { return w.form }

// Editing returns the work being edited, or nil when creating.
func (w *Workflow) Editing() *literature.Work { return w.editing }

// Err returns the failure of the last submit, if any.
func (w *Workflow) Err() error { return w.err }

// PendingDelete returns the id awaiting confirmation.
func (w *Workflow) PendingDelete() string { return w.deleting }

// OpenCreate opens an empty form.
func (w *Workflow) OpenCreate() {
	w.reset()
	w.state = FormOpen
}

// OpenEdit opens the form filled from work, with the date as YYYY-MM-DD.
func (w *Workflow) OpenEdit(work literature.Work) {
	w.reset()
	w.editing = &work
	w.form = literature.DraftOf(work)
	w.state = FormOpen
}

// SetForm replaces the form values while the form is open.
func (w *Workflow) SetForm(draft literature.Draft) error {
	if w.state != FormOpen {
		return ErrInvalidTransition
	}
	w.form = draft
	return nil
}

// Cancel closes the form and discards its values.
func (w *Workflow) Cancel() {
	w.reset()
}

// Submit saves the form. A blank required field is reported and nothing is
// sent; the form stays open. A failed save also leaves the form open.
func (w *Workflow) Submit(ctx context.Context) error {
	if w.state != FormOpen {
		return ErrInvalidTransition
	}

	if err := w.checkRequired(); err != nil {
		w.notifier.Error(MessageIncomplete)
		return err
	}

	w.state = Submitting
	w.err = nil

	var (
		err     error
		success string
	)
	if w.editing != nil {
		err = w.works.Update(ctx, w.editing.ID, literature.PatchOf(w.form))
		success = MessageUpdated
	} else {
		_, err = w.works.Add(ctx, w.form)
		success = MessageAdded
	}

	if err != nil {
		w.state = FormOpen
		w.err = err
		w.notifier.Error("Error: " + apperr.Message(err))
		return err
	}

	w.notifier.Success(success)
	w.reset()
	return nil
}

// RequestDelete asks for confirmation before deleting id.
func (w *Workflow) RequestDelete(id string) error {
	if w.state != Browsing {
		return ErrInvalidTransition
	}
	w.deleting = id
	w.state = ConfirmingDelete
	return nil
}

// CancelDelete drops the pending delete.
func (w *Workflow) CancelDelete() {
	if w.state == ConfirmingDelete {
		w.deleting = ""
		w.state = Browsing
	}
}

// ConfirmDelete deletes the pending work and reports the outcome.
func (w *Workflow) ConfirmDelete(ctx context.Context) error {
	if w.state != ConfirmingDelete {
		return ErrInvalidTransition
	}

	id := w.deleting
	w.deleting = ""
	w.state = Browsing

	if err := w.works.Remove(ctx, id); err != nil {
		w.notifier.Error("Error: " + apperr.Message(err))
		return err
	}

	w.notifier.Success(MessageDeleted)
	return nil
}

// LoadFile replaces the content field with a plain-text file. Any other
// type is rejected and the form is left untouched.
func (w *Workflow) LoadFile(upload FileUpload) error {
	if w.state != FormOpen {
		return ErrInvalidTransition
	}

	mediaType, _, err := mime.ParseMediaType(upload.ContentType)
	if err != nil || mediaType != "text/plain" {
		w.notifier.Error(MessageInvalidFile)
		return apperr.ValidationError(MessageInvalidFile)
	}

	content, err := io.ReadAll(io.LimitReader(upload.Body, MaxUploadBytes))
	if err != nil {
		w.notifier.Error(MessageFileReadFail)
		return fmt.Errorf("admin: read upload: %w", err)
	}

	w.form.Content = textnorm.Normalize(string(content))
	w.notifier.Success(MessageFileLoaded)
	return nil
}

// # Helpers

// DefaultDraft is the form a new work starts from.
func DefaultDraft(now time.Time) literature.Draft {
	return literature.Draft{
		Type:          literature.TypePoem,
		PublishedDate: now.Format(validate.DateLayout),
		Author:        DefaultAuthor,
	}
}

func (w *Workflow) defaults() literature.Draft {
	return DefaultDraft(w.now())
}

func (w *Workflow) reset() {
	w.state = Browsing
	w.form = w.defaults()
	w.editing = nil
	w.deleting = ""
	w.err = nil
}

func (w *Workflow) checkRequired() error {
	validator := &validate.Validator{}
	validator.
		Required(literature.FieldTitle, w.form.Title).
		Required(literature.FieldContent, w.form.Content).
		Required(literature.FieldPublishedDate, w.form.PublishedDate).
		Required(literature.FieldAuthor, w.form.Author).
		Required(literature.FieldType, string(w.form.Type))
	if !validator.HasErrors() {
		return nil
	}
	return validator.Err()
}
