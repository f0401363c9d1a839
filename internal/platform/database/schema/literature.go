package schema

// LiteratureTable represents the 'literature' table
type LiteratureTable struct {
	Table         string
	ID            string
	Type          string
	Title         string
	Content       string
	Excerpt       string
	PublishedDate string
	Author        string
	CreatedAt     string
	UpdatedAt     string
}

// Literature is the schema definition for literature
var Literature = LiteratureTable{
	Table:         "literature",
	ID:            "id",
	Type:          "type",
	Title:         "title",
	Content:       "content",
	Excerpt:       "excerpt",
	PublishedDate: "published_date",
	Author:        "author",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}
