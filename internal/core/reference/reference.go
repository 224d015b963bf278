// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reference manages the bibliographic Reference aggregate of the catalog.

A Reference is one cited work. It is exactly one of three mutually exclusive
sub-types and links to shared Authors and Tags.

# Core Responsibility

  - Resolution: turns loosely specified associations (by id, by inline data, or
    absent) into concrete foreign keys, creating rows where asked.
  - Consistency: enforces the publisher/series and magazine/issue rules of each
    sub-type before anything is committed.
  - Persistence: writes the Reference row, its sub-type row and its join rows as
    one transaction.

The [Service] is the entry point; [Store] is the persistence boundary.
*/
package reference

import (
	"fmt"
	"time"
)

// # Reference Types

// Type identifies the sub-type attached to a Reference.
type Type int

const (
	TypeBook            Type = 1
	TypeMagazineFeature Type = 2
	TypePhotoCollection Type = 3
)

// Valid reports whether t is one of the known sub-types.
func (t Type) Valid() bool {
	switch t {
	case TypeBook, TypeMagazineFeature, TypePhotoCollection:
		return true
	}
	return false
}

func (t Type) String() string {
	switch t {
	case TypeBook:
		return "book"
	case TypeMagazineFeature:
		return "magazineFeature"
	case TypePhotoCollection:
		return "photoCollection"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// # Aggregate

// Reference is a catalog entry together with its sub-type body and, when
// loaded, its ordered author and tag sets.
type Reference struct {
	ID        int64
	Name      string
	Language  *string
	TypeID    Type
	CreatedAt time.Time
	UpdatedAt time.Time

	// Body is the attached sub-type row. Its Type always equals TypeID.
	Body Body

	// Authors and Tags are nil when not requested in [LoadOptions].
	Authors []Author
	Tags    []Tag
}

// Body is the closed sum of sub-type rows: [*Book], [*MagazineFeature], [*PhotoCollection].
type Body interface {
	Type() Type
	isBody()
}

// Book is the sub-type row of a book reference.
type Book struct {
	ReferenceID  int64
	ISBN         *string
	SeriesNumber *int
	PublisherID  *int64
	SeriesID     *int64

	// Loaded on demand.
	Publisher *Publisher
	Series    *Series
}

// MagazineFeature is the sub-type row of an article published in a magazine issue.
type MagazineFeature struct {
	ReferenceID     int64
	MagazineIssueID int64

	// Loaded on demand. MagazineIssue.Magazine is loaded separately.
	MagazineIssue *MagazineIssue
	FeatureTags   []FeatureTag
}

// PhotoCollection is the sub-type row of a photo collection.
type PhotoCollection struct {
	ReferenceID int64
	Location    string
	Media       string
}

func (*Book) Type() Type            { return TypeBook }
func (*MagazineFeature) Type() Type { return TypeMagazineFeature }
func (*PhotoCollection) Type() Type { return TypePhotoCollection }

func (*Book) isBody()            {}
func (*MagazineFeature) isBody() {}
func (*PhotoCollection) isBody() {}

// # Associated Entities

// Author is a person credited on one or more references.
type Author struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tag is a general-purpose subject label.
type Tag struct {
	ID          int64
	Name        string
	Type        *string
	Description *string
}

// Publisher issues books and owns series.
type Publisher struct {
	ID    int64
	Name  string
	Notes *string
}

// Series groups books; it belongs to at most one publisher.
type Series struct {
	ID          int64
	Name        string
	Notes       *string
	PublisherID *int64
}

// Magazine is a periodical that publishes issues.
type Magazine struct {
	ID        int64
	Name      string
	Language  *string
	Aliases   []string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MagazineIssue is one issue of a magazine.
type MagazineIssue struct {
	ID         int64
	Issue      string
	MagazineID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Magazine *Magazine
}

// FeatureTag labels magazine features. Its namespace is disjoint from [Tag].
type FeatureTag struct {
	ID          int64
	Name        string
	Description *string
}

// # Eager Loading

// LoadOptions selects which associations are loaded with a Reference.
// The sub-type row itself is always loaded.
type LoadOptions struct {
	Authors       bool
	Tags          bool
	Publisher     bool
	Series        bool
	MagazineIssue bool
	// Magazine implies MagazineIssue.
	Magazine    bool
	FeatureTags bool
}

// All returns options that load every association.
func All() LoadOptions {
	return LoadOptions{
		Authors:       true,
		Tags:          true,
		Publisher:     true,
		Series:        true,
		MagazineIssue: true,
		Magazine:      true,
		FeatureTags:   true,
	}
}

// Key is a stable textual form of the options, used to derive cache keys.
func (o LoadOptions) Key() string {
	flags := []bool{o.Authors, o.Tags, o.Publisher, o.Series, o.MagazineIssue || o.Magazine, o.Magazine, o.FeatureTags}
	key := make([]byte, len(flags))
	for i, flag := range flags {
		key[i] = '0'
		if flag {
			key[i] = '1'
		}
	}
	return string(key)
}

// # Field Identifiers

// Field names used in validation details.
const (
	FieldName            = "name"
	FieldLanguage        = "language"
	FieldReferenceTypeID = "referenceTypeId"
)
