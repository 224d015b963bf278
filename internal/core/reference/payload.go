// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"fmt"

	"github.com/taibuivan/refcatalog/internal/platform/validate"
)

// # Create / Update Payloads
//
// Association fields follow one convention: an `xxxId` field points at an
// existing row, a same-named object carries inline data for a new row, and an
// absent field leaves the association unresolved (create) or untouched (update).
// For lists, a nil slice means "absent" and an empty slice means "empty".

// CreateInput is the payload of [Service.CreateReference].
type CreateInput struct {
	Name            string        `json:"name"`
	Language        *string       `json:"language,omitempty"`
	ReferenceTypeID Type          `json:"referenceTypeId"`
	Authors         []AuthorInput `json:"authors,omitempty"`
	Tags            []TagInput    `json:"tags,omitempty"`

	Book            *BookInput            `json:"book,omitempty"`
	MagazineFeature *MagazineFeatureInput `json:"magazineFeature,omitempty"`
	PhotoCollection *PhotoCollectionInput `json:"photoCollection,omitempty"`
}

// UpdateInput is the partial payload of [Service.UpdateReferenceByID].
// Every nil field is left unchanged.
type UpdateInput struct {
	Name            *string       `json:"name,omitempty"`
	Language        *string       `json:"language,omitempty"`
	ReferenceTypeID *Type         `json:"referenceTypeId,omitempty"`
	Authors         []AuthorInput `json:"authors,omitempty"`
	Tags            []TagInput    `json:"tags,omitempty"`

	Book            *BookInput            `json:"book,omitempty"`
	MagazineFeature *MagazineFeatureInput `json:"magazineFeature,omitempty"`
	PhotoCollection *PhotoCollectionInput `json:"photoCollection,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (in UpdateInput) IsEmpty() bool {
	return in.Name == nil && in.Language == nil && in.ReferenceTypeID == nil &&
		in.Authors == nil && in.Tags == nil &&
		in.Book == nil && in.MagazineFeature == nil && in.PhotoCollection == nil
}

// AuthorInput identifies an existing author by ID or names a new one.
type AuthorInput struct {
	ID   *int64  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// TagInput identifies an existing tag by ID or describes a new one.
type TagInput struct {
	ID          *int64  `json:"id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

// FeatureTagInput identifies an existing feature tag by ID or describes a new one.
type FeatureTagInput struct {
	ID          *int64  `json:"id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// # Book

// BookInput carries the book fields and its publisher/series resolution hints.
type BookInput struct {
	ISBN         *string `json:"isbn,omitempty"`
	SeriesNumber *int    `json:"seriesNumber,omitempty"`

	PublisherID *int64          `json:"publisherId,omitempty"`
	Publisher   *PublisherInput `json:"publisher,omitempty"`
	SeriesID    *int64          `json:"seriesId,omitempty"`
	Series      *SeriesInput    `json:"series,omitempty"`
}

// PublisherInput is inline data for a new publisher.
type PublisherInput struct {
	Name  *string `json:"name,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// SeriesInput is inline data for a new series, optionally under an existing publisher.
type SeriesInput struct {
	Name        *string `json:"name,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	PublisherID *int64  `json:"publisherId,omitempty"`
}

// # Magazine Feature

// MagazineFeatureInput carries the magazine/issue resolution hints and the feature tags.
type MagazineFeatureInput struct {
	MagazineID      *int64              `json:"magazineId,omitempty"`
	Magazine        *MagazineInput      `json:"magazine,omitempty"`
	MagazineIssueID *int64              `json:"magazineIssueId,omitempty"`
	MagazineIssue   *MagazineIssueInput `json:"magazineIssue,omitempty"`
	FeatureTags     []FeatureTagInput   `json:"featureTags,omitempty"`
}

// MagazineInput is inline data for a new magazine.
type MagazineInput struct {
	Name     *string  `json:"name,omitempty"`
	Language *string  `json:"language,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// MagazineIssueInput is inline data for a new issue, optionally naming its magazine.
type MagazineIssueInput struct {
	Issue      *string `json:"issue,omitempty"`
	MagazineID *int64  `json:"magazineId,omitempty"`
}

// # Photo Collection

// PhotoCollectionInput carries the photo collection fields.
type PhotoCollectionInput struct {
	Location *string `json:"location,omitempty"`
	Media    *string `json:"media,omitempty"`
}

// # Identifier Checks

// checkIDs flags every supplied identifier that is not positive. Field names
// follow the JSON path of the offending value.
func checkIDs(validator *validate.Validator, authors []AuthorInput, tags []TagInput, payload subtypePayload) {
	for i, author := range authors {
		validator.PositiveID(fmt.Sprintf("authors[%d].id", i), author.ID)
	}
	for i, tag := range tags {
		validator.PositiveID(fmt.Sprintf("tags[%d].id", i), tag.ID)
	}

	if book := payload.book; book != nil {
		validator.PositiveID("book.publisherId", book.PublisherID).
			PositiveID("book.seriesId", book.SeriesID)
		if book.Series != nil {
			validator.PositiveID("book.series.publisherId", book.Series.PublisherID)
		}
	}

	if feature := payload.feature; feature != nil {
		validator.PositiveID("magazineFeature.magazineId", feature.MagazineID).
			PositiveID("magazineFeature.magazineIssueId", feature.MagazineIssueID)
		if feature.MagazineIssue != nil {
			validator.PositiveID("magazineFeature.magazineIssue.magazineId", feature.MagazineIssue.MagazineID)
		}
		for i, tag := range feature.FeatureTags {
			validator.PositiveID(fmt.Sprintf("magazineFeature.featureTags[%d].id", i), tag.ID)
		}
	}
}

// # Length Checks

// Column widths of the catalog schema.
const (
	maxISBNLength    = 32
	maxIssueLength   = 200
	maxTagTypeLength = 100
)

// checkLengths flags inline values wider than the columns they are stored in.
func checkLengths(validator *validate.Validator, authors []AuthorInput, tags []TagInput, payload subtypePayload) {
	for i, author := range authors {
		validator.OptionalMaxLen(fmt.Sprintf("authors[%d].name", i), author.Name, maxNameLength)
	}
	for i, tag := range tags {
		validator.OptionalMaxLen(fmt.Sprintf("tags[%d].name", i), tag.Name, maxNameLength).
			OptionalMaxLen(fmt.Sprintf("tags[%d].type", i), tag.Type, maxTagTypeLength)
	}

	if book := payload.book; book != nil {
		validator.OptionalMaxLen("book.isbn", book.ISBN, maxISBNLength)
		if book.Publisher != nil {
			validator.OptionalMaxLen("book.publisher.name", book.Publisher.Name, maxNameLength)
		}
		if book.Series != nil {
			validator.OptionalMaxLen("book.series.name", book.Series.Name, maxNameLength)
		}
	}

	if feature := payload.feature; feature != nil {
		if feature.Magazine != nil {
			validator.OptionalMaxLen("magazineFeature.magazine.name", feature.Magazine.Name, maxNameLength).
				OptionalMaxLen("magazineFeature.magazine.language", feature.Magazine.Language, maxLanguageLength)
		}
		if feature.MagazineIssue != nil {
			validator.OptionalMaxLen("magazineFeature.magazineIssue.issue", feature.MagazineIssue.Issue, maxIssueLength)
		}
		for i, tag := range feature.FeatureTags {
			validator.OptionalMaxLen(fmt.Sprintf("magazineFeature.featureTags[%d].name", i), tag.Name, maxNameLength)
		}
	}
}
