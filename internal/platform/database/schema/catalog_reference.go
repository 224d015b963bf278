// Package schema holds the physical table and column names of the catalog
// schema. Store code builds its SQL from these values instead of string literals.
package schema

// ReferenceTable represents the 'catalog.reference' table
type ReferenceTable struct {
	Table           string
	ID              string
	Name            string
	Language        string
	ReferenceTypeID string
	CreatedAt       string
	UpdatedAt       string
}

// Reference is the schema definition for catalog.reference
var Reference = ReferenceTable{
	Table:           "catalog.reference",
	ID:              "id",
	Name:            "name",
	Language:        "language",
	ReferenceTypeID: "referencetypeid",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t ReferenceTable) Columns() []string {
	return []string{t.ID, t.Name, t.Language, t.ReferenceTypeID, t.CreatedAt, t.UpdatedAt}
}

// BookTable represents the 'catalog.book' table
type BookTable struct {
	Table        string
	ReferenceID  string
	ISBN         string
	SeriesNumber string
	PublisherID  string
	SeriesID     string
}

// Book is the schema definition for catalog.book
var Book = BookTable{
	Table:        "catalog.book",
	ReferenceID:  "referenceid",
	ISBN:         "isbn",
	SeriesNumber: "seriesnumber",
	PublisherID:  "publisherid",
	SeriesID:     "seriesid",
}

func (t BookTable) Columns() []string {
	return []string{t.ReferenceID, t.ISBN, t.SeriesNumber, t.PublisherID, t.SeriesID}
}

// MagazineFeatureTable represents the 'catalog.magazinefeature' table
type MagazineFeatureTable struct {
	Table           string
	ReferenceID     string
	MagazineIssueID string
}

// MagazineFeature is the schema definition for catalog.magazinefeature
var MagazineFeature = MagazineFeatureTable{
	Table:           "catalog.magazinefeature",
	ReferenceID:     "referenceid",
	MagazineIssueID: "magazineissueid",
}

// MagazineFeatureTagTable represents the 'catalog.magazinefeaturetag' junction table
type MagazineFeatureTagTable struct {
	Table        string
	ReferenceID  string
	FeatureTagID string
	Position     string
}

// MagazineFeatureTag is the schema definition for catalog.magazinefeaturetag
var MagazineFeatureTag = MagazineFeatureTagTable{
	Table:        "catalog.magazinefeaturetag",
	ReferenceID:  "referenceid",
	FeatureTagID: "featuretagid",
	Position:     "position",
}

// PhotoCollectionTable represents the 'catalog.photocollection' table
type PhotoCollectionTable struct {
	Table       string
	ReferenceID string
	Location    string
	Media       string
}

// PhotoCollection is the schema definition for catalog.photocollection
var PhotoCollection = PhotoCollectionTable{
	Table:       "catalog.photocollection",
	ReferenceID: "referenceid",
	Location:    "location",
	Media:       "media",
}
