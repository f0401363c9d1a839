package literature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/taibuivan/narratives/internal/platform/database/schema"
	"github.com/taibuivan/narratives/internal/platform/validate"
	"github.com/taibuivan/narratives/pkg/pointer"
	"github.com/taibuivan/narratives/pkg/slice"
	"github.com/taibuivan/narratives/pkg/textnorm"
)

// ExcerptLength is the number of characters kept when an excerpt is derived.
const ExcerptLength = 150

// Type classifies a work.
type Type string

const (
	TypePoem       Type = "Poem"
	TypeEssay      Type = "Essay"
	TypeShortStory Type = "Short Story"
)

// Types lists every classification in display order.
func Types() []Type {
	return []Type{TypePoem, TypeEssay, TypeShortStory}
}

func typeNames() []string {
	return slice.Map(Types(), func(t Type) string { return string(t) })
}

// Valid reports whether t is one of [Types].
func (t Type) Valid() bool {
	return slices.Contains(Types(), t)
}

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	year, month, day := t.Date()
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD. A full timestamp is accepted and truncated.
func ParseDate(value string) (Date, error) {
	if parsed, err := time.Parse(validate.DateLayout, value); err == nil {
		return Date{parsed}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("literature: invalid date %q", value)
	}
	return NewDate(parsed), nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(validate.DateLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or an RFC 3339 timestamp. Null and
// the empty string decode to the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ScanDate implements pgtype.DateScanner.
func (d *Date) ScanDate(value pgtype.Date) error {
	if !value.Valid {
		*d = Date{}
		return nil
	}
	*d = NewDate(value.Time)
	return nil
}

// DateValue implements pgtype.DateValuer.
func (d Date) DateValue() (pgtype.Date, error) {
	return pgtype.Date{Time: d.Time, Valid: !d.IsZero()}, nil
}

// Work is one published poem, essay or short story.
type Work struct {
	ID            string    `db:"id"             json:"id"`
	Type          Type      `db:"type"           json:"type"`
	Title         string    `db:"title"          json:"title"`
	Content       string    `db:"content"        json:"content"`
	Excerpt       *string   `db:"excerpt"        json:"excerpt"`
	PublishedDate Date      `db:"published_date" json:"published_date"`
	Author        string    `db:"author"         json:"author"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}

// Preview returns the stored excerpt, or a derived one when none is stored.
func (work Work) Preview() string {
	if work.Excerpt != nil && !textnorm.IsBlank(*work.Excerpt) {
		return *work.Excerpt
	}
	return DeriveExcerpt(work.Content)
}

// DeriveExcerpt returns the first [ExcerptLength] characters of content.
func DeriveExcerpt(content string) string {
	return textnorm.Truncate(content, ExcerptLength)
}

// Draft is the editable subset of a work, as submitted by the admin form.
type Draft struct {
	Type          Type   `json:"type"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	PublishedDate string `json:"published_date"`
	Author        string `json:"author"`
}

// Global field names for validation
const (
	FieldType          = "type"
	FieldTitle         = "title"
	FieldContent       = "content"
	FieldExcerpt       = "excerpt"
	FieldPublishedDate = "published_date"
	FieldAuthor        = "author"
)

// Validate reports every blank required field, an unparseable date and an
// unknown classification.
func (draft Draft) Validate() error {
	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, draft.Title).
		Required(FieldContent, draft.Content).
		Required(FieldPublishedDate, draft.PublishedDate).
		Date(FieldPublishedDate, draft.PublishedDate).
		Required(FieldAuthor, draft.Author).
		Required(FieldType, string(draft.Type)).
		OneOf(FieldType, string(draft.Type), typeNames()...)
	return validator.Err()
}

// Values returns the column map for an insert or a full update. Content is
// stored in NFC form and a blank excerpt is replaced by its first
// characters, so the excerpt is always a prefix of the stored content.
func (draft Draft) Values() map[string]any {
	content := textnorm.Normalize(draft.Content)
	excerpt := draft.Excerpt
	if textnorm.IsBlank(excerpt) {
		excerpt = DeriveExcerpt(content)
	}

	return map[string]any{
		schema.Literature.Type:          string(draft.Type),
		schema.Literature.Title:         draft.Title,
		schema.Literature.Content:       content,
		schema.Literature.Excerpt:       excerpt,
		schema.Literature.PublishedDate: draft.PublishedDate,
		schema.Literature.Author:        draft.Author,
	}
}

// DraftOf returns the editable fields of work with the date as YYYY-MM-DD.
func DraftOf(work Work) Draft {
	return Draft{
		Type:          work.Type,
		Title:         work.Title,
		Content:       work.Content,
		Excerpt:       pointer.Val(work.Excerpt),
		PublishedDate: work.PublishedDate.String(),
		Author:        work.Author,
	}
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Type          *Type   `json:"type,omitempty"`
	Title         *string `json:"title,omitempty"`
	Content       *string `json:"content,omitempty"`
	Excerpt       *string `json:"excerpt,omitempty"`
	PublishedDate *string `json:"published_date,omitempty"`
	Author        *string `json:"author,omitempty"`
}

// PatchOf turns a full draft into a patch that replaces every editable field.
func PatchOf(draft Draft) Patch {
	values := draft.Values()
	excerpt := values[schema.Literature.Excerpt].(string)
	return Patch{
		Type:          &draft.Type,
		Title:         &draft.Title,
		Content:       &draft.Content,
		Excerpt:       &excerpt,
		PublishedDate: &draft.PublishedDate,
		Author:        &draft.Author,
	}
}

// Validate rejects fields that are present but blank.
func (patch Patch) Validate() error {
	validator := &validate.Validator{}
	check := func(field string, value *string) {
		if value != nil {
			validator.Required(field, *value)
		}
	}

	check(FieldTitle, patch.Title)
	check(FieldContent, patch.Content)
	check(FieldAuthor, patch.Author)
	check(FieldPublishedDate, patch.PublishedDate)
	if patch.PublishedDate != nil {
		validator.Date(FieldPublishedDate, *patch.PublishedDate)
	}
	if patch.Type != nil {
		validator.
			Required(FieldType, string(*patch.Type)).
			OneOf(FieldType, string(*patch.Type), typeNames()...)
	}
	return validator.Err()
}

// Values returns the column map for the present fields. A blank excerpt
// sent together with content is derived from that content.
func (patch Patch) Values() map[string]any {
	values := map[string]any{}
	if patch.Type != nil {
		values[schema.Literature.Type] = string(*patch.Type)
	}
	if patch.Title != nil {
		values[schema.Literature.Title] = *patch.Title
	}
	if patch.Content != nil {
		values[schema.Literature.Content] = textnorm.Normalize(*patch.Content)
	}
	if patch.Excerpt != nil {
		excerpt := *patch.Excerpt
		if textnorm.IsBlank(excerpt) && patch.Content != nil {
			excerpt = DeriveExcerpt(textnorm.Normalize(*patch.Content))
		}
		values[schema.Literature.Excerpt] = excerpt
	}
	if patch.PublishedDate != nil {
		values[schema.Literature.PublishedDate] = *patch.PublishedDate
	}
	if patch.Author != nil {
		values[schema.Literature.Author] = *patch.Author
	}
	return values
}

// # Ordering

// Less orders works by publication date descending, then creation time
// descending, then id, giving every list one total order.
func Less(a, b Work) bool {
	if !a.PublishedDate.Equal(b.PublishedDate.Time) {
		return a.PublishedDate.After(b.PublishedDate.Time)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return strings.Compare(a.ID, b.ID) < 0
}

// Sort orders works in place with [Less].
func Sort(works []Work) {
	slices.SortStableFunc(works, func(a, b Work) int {
		switch {
		case Less(a, b):
			return -1
		case Less(b, a):
			return 1
		default:
			return 0
		}
	})
}
