package comment

import "context"

type Repository interface {
	// ListComments returns the comments on a work, oldest first.
	ListComments(context context.Context, literatureID string) ([]Comment, error)
	// CreateComment inserts input and returns the stored rows.
	CreateComment(context context.Context, literatureID string, input Input) ([]Comment, error)
}
