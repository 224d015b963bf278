package schema

// AuthorTable represents the 'catalog.author' table
type AuthorTable struct {
	Table     string
	ID        string
	Name      string
	CreatedAt string
	UpdatedAt string
}

// Author is the schema definition for catalog.author
var Author = AuthorTable{
	Table:     "catalog.author",
	ID:        "id",
	Name:      "name",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t AuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.CreatedAt, t.UpdatedAt}
}

// TagTable represents the 'catalog.tag' table
type TagTable struct {
	Table       string
	ID          string
	Name        string
	Type        string
	Description string
}

// Tag is the schema definition for catalog.tag
var Tag = TagTable{
	Table:       "catalog.tag",
	ID:          "id",
	Name:        "name",
	Type:        "type",
	Description: "description",
}

func (t TagTable) Columns() []string {
	return []string{t.ID, t.Name, t.Type, t.Description}
}

// AuthorReferenceTable represents the 'catalog.authorreference' junction table
type AuthorReferenceTable struct {
	Table       string
	ReferenceID string
	AuthorID    string
	Position    string
}

// AuthorReference is the schema definition for catalog.authorreference
var AuthorReference = AuthorReferenceTable{
	Table:       "catalog.authorreference",
	ReferenceID: "referenceid",
	AuthorID:    "authorid",
	Position:    "position",
}

// TagReferenceTable represents the 'catalog.tagreference' junction table
type TagReferenceTable struct {
	Table       string
	ReferenceID string
	TagID       string
	Position    string
}

// TagReference is the schema definition for catalog.tagreference
var TagReference = TagReferenceTable{
	Table:       "catalog.tagreference",
	ReferenceID: "referenceid",
	TagID:       "tagid",
	Position:    "position",
}
