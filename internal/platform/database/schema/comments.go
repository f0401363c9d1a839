package schema

// CommentsTable represents the 'comments' table
type CommentsTable struct {
	Table        string
	ID           string
	LiteratureID string
	AuthorName   string
	Content      string
	CreatedAt    string
}

// Comments is the schema definition for comments
var Comments = CommentsTable{
	Table:        "comments",
	ID:           "id",
	LiteratureID: "literature_id",
	AuthorName:   "author_name",
	Content:      "content",
	CreatedAt:    "created_at",
}
