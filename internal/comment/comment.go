package comment

import (
	"slices"
	"time"

	"github.com/taibuivan/narratives/internal/platform/database/schema"
	"github.com/taibuivan/narratives/internal/platform/validate"
)

// Comment is a visitor's note on a work. Comments are never edited or deleted.
type Comment struct {
	ID           string    `db:"id"            json:"id"`
	LiteratureID string    `db:"literature_id" json:"literature_id"`
	AuthorName   string    `db:"author_name"   json:"author_name"`
	Content      string    `db:"content"       json:"content"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

// Input is what a visitor submits. The work id comes from the route.
type Input struct {
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

// Global field names for validation
const (
	FieldAuthorName = "author_name"
	FieldContent    = "content"
)

func (input Input) Validate() error {
	validator := &validate.Validator{}
	validator.
		Required(FieldAuthorName, input.AuthorName).
		Required(FieldContent, input.Content)
	return validator.Err()
}

// Values returns the column map for an insert on literatureID.
func (input Input) Values(literatureID string) map[string]any {
	return map[string]any{
		schema.Comments.LiteratureID: literatureID,
		schema.Comments.AuthorName:   input.AuthorName,
		schema.Comments.Content:      input.Content,
	}
}

// merge adds comment at its creation-time position unless its id is
// already present. Equal timestamps keep arrival order.
func merge(comments []Comment, comment Comment) []Comment {
	if slices.ContainsFunc(comments, func(existing Comment) bool { return existing.ID == comment.ID }) {
		return comments
	}

	index := len(comments)
	for index > 0 && comments[index-1].CreatedAt.After(comment.CreatedAt) {
		index--
	}
	return slices.Insert(comments, index, comment)
}
