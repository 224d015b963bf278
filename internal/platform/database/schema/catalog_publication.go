package schema

// PublisherTable represents the 'catalog.publisher' table
type PublisherTable struct {
	Table string
	ID    string
	Name  string
	Notes string
}

// Publisher is the schema definition for catalog.publisher
var Publisher = PublisherTable{
	Table: "catalog.publisher",
	ID:    "id",
	Name:  "name",
	Notes: "notes",
}

func (t PublisherTable) Columns() []string {
	return []string{t.ID, t.Name, t.Notes}
}

// SeriesTable represents the 'catalog.series' table
type SeriesTable struct {
	Table       string
	ID          string
	Name        string
	Notes       string
	PublisherID string
}

// Series is the schema definition for catalog.series
var Series = SeriesTable{
	Table:       "catalog.series",
	ID:          "id",
	Name:        "name",
	Notes:       "notes",
	PublisherID: "publisherid",
}

func (t SeriesTable) Columns() []string {
	return []string{t.ID, t.Name, t.Notes, t.PublisherID}
}

// MagazineTable represents the 'catalog.magazine' table
type MagazineTable struct {
	Table     string
	ID        string
	Name      string
	Language  string
	Aliases   string
	Notes     string
	CreatedAt string
	UpdatedAt string
}

// Magazine is the schema definition for catalog.magazine
var Magazine = MagazineTable{
	Table:     "catalog.magazine",
	ID:        "id",
	Name:      "name",
	Language:  "language",
	Aliases:   "aliases",
	Notes:     "notes",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t MagazineTable) Columns() []string {
	return []string{t.ID, t.Name, t.Language, t.Aliases, t.Notes, t.CreatedAt, t.UpdatedAt}
}

// MagazineIssueTable represents the 'catalog.magazineissue' table
type MagazineIssueTable struct {
	Table      string
	ID         string
	Issue      string
	MagazineID string
	CreatedAt  string
	UpdatedAt  string
}

// MagazineIssue is the schema definition for catalog.magazineissue
var MagazineIssue = MagazineIssueTable{
	Table:      "catalog.magazineissue",
	ID:         "id",
	Issue:      "issue",
	MagazineID: "magazineid",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t MagazineIssueTable) Columns() []string {
	return []string{t.ID, t.Issue, t.MagazineID, t.CreatedAt, t.UpdatedAt}
}

// FeatureTagTable represents the 'catalog.featuretag' table
type FeatureTagTable struct {
	Table       string
	ID          string
	Name        string
	Description string
}

// FeatureTag is the schema definition for catalog.featuretag
var FeatureTag = FeatureTagTable{
	Table:       "catalog.featuretag",
	ID:          "id",
	Name:        "name",
	Description: "description",
}

func (t FeatureTagTable) Columns() []string {
	return []string{t.ID, t.Name, t.Description}
}
