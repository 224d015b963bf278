// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"errors"
)

// ErrSeriesClaimed is returned by [Repository.SetSeriesPublisher] when the
// series already belongs to another publisher.
var ErrSeriesClaimed = errors.New("reference: series already belongs to another publisher")

// # Persistence Boundary

// Reader loads fully assembled aggregates.
type Reader interface {
	// GetReference returns apperr NOT_FOUND when no reference has the id.
	GetReference(ctx context.Context, id int64, opts LoadOptions) (*Reference, error)
	// ListReferences returns every reference ordered by id.
	ListReferences(ctx context.Context, opts LoadOptions) ([]*Reference, error)
}

// Repository is the transaction-bound view of the store handed to [Store.WithinTx].
//
// Find methods return apperr NOT_FOUND for a missing row. Create methods fill
// the generated ID into their argument and return apperr CONSTRAINT_VIOLATION
// on a duplicate name.
type Repository interface {
	Reader

	// # Shared entities

	FindAuthor(ctx context.Context, id int64) (*Author, error)
	CreateAuthor(ctx context.Context, author *Author) error
	FindTag(ctx context.Context, id int64) (*Tag, error)
	CreateTag(ctx context.Context, tag *Tag) error
	FindFeatureTag(ctx context.Context, id int64) (*FeatureTag, error)
	CreateFeatureTag(ctx context.Context, tag *FeatureTag) error

	FindPublisher(ctx context.Context, id int64) (*Publisher, error)
	CreatePublisher(ctx context.Context, publisher *Publisher) error
	// FindSeries locks the series row until the transaction ends.
	FindSeries(ctx context.Context, id int64) (*Series, error)
	CreateSeries(ctx context.Context, series *Series) error
	// SetSeriesPublisher attaches publisherID to a series that has none, or
	// already has it. Books filed under the series without a publisher take
	// the same publisher. It returns the ids of every reference whose book is
	// filed under the series, and [ErrSeriesClaimed] when another publisher
	// owns the series.
	SetSeriesPublisher(ctx context.Context, seriesID, publisherID int64) ([]int64, error)

	FindMagazine(ctx context.Context, id int64) (*Magazine, error)
	CreateMagazine(ctx context.Context, magazine *Magazine) error
	FindMagazineIssue(ctx context.Context, id int64) (*MagazineIssue, error)
	CreateMagazineIssue(ctx context.Context, issue *MagazineIssue) error

	// # Aggregate rows

	// InsertReference writes the top-level row and fills ref.ID.
	InsertReference(ctx context.Context, ref *Reference) error
	// UpdateReference rewrites name, language, type and updatedAt.
	UpdateReference(ctx context.Context, ref *Reference) error
	// DeleteReference removes the reference and everything it owns; returns the affected count.
	DeleteReference(ctx context.Context, id int64) (int64, error)

	// Put methods insert or overwrite the sub-type row keyed by ReferenceID.
	PutBook(ctx context.Context, book *Book) error
	PutMagazineFeature(ctx context.Context, feature *MagazineFeature) error
	PutPhotoCollection(ctx context.Context, photo *PhotoCollection) error
	// DeleteSubtype detaches the sub-type row of the given type, with its own join rows.
	DeleteSubtype(ctx context.Context, referenceID int64, kind Type) error

	// Set methods replace the whole ordered join set.
	SetAuthors(ctx context.Context, referenceID int64, authorIDs []int64) error
	SetTags(ctx context.Context, referenceID int64, tagIDs []int64) error
	SetFeatureTags(ctx context.Context, referenceID int64, featureTagIDs []int64) error
}

// Store is the persistence collaborator of the engine.
type Store interface {
	Reader

	// WithinTx runs fn as one atomic unit of work. The unit commits only when
	// fn returns nil; fn's error is returned unchanged.
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
}
