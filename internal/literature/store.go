package literature

import "context"

// Repository is the data API the hooks and handlers read and write works through.
type Repository interface {
	// ListWorks returns every work ordered by [Less].
	ListWorks(context context.Context) ([]Work, error)
	GetWork(context context.Context, id string) (*Work, error)
	// CreateWork inserts draft and returns the stored rows.
	CreateWork(context context.Context, draft Draft) ([]Work, error)
	UpdateWork(context context.Context, id string, patch Patch) error
	DeleteWork(context context.Context, id string) error
}
