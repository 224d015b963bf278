// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/pkg/textnorm"
)

// Book resolution messages. Create and update keep their own wording.
const (
	msgBookRequired             = "Reference must have book data"
	msgSeriesPublisherMismatch  = "Series and publisher do not match"
	msgSeriesPublisherIDs       = "Series and publisher IDs do not match"
	msgMissingSeriesName        = "Missing new series name"
	msgMissingPublisherName     = "Missing new publisher name"
	msgSeriesIDWithNewPublisher = "Cannot specify `seriesId` with new `publisher` data"
	msgSeriesHasPublisher       = "Existing series is already associated with a publisher"
	msgNewSeriesPublisherID     = "new series data publisherId conflicts with publisherId"
	msgNewSeriesNewPublisher    = "new series data publisherId conflicts with new publisher data"
	msgPublisherBothForms       = "Cannot specify both `publisherId` and new `publisher` data"
	msgSeriesBothForms          = "Cannot specify both `seriesId` and new `series` data"
)

// form is how an association is given in a payload.
type form int

const (
	formAbsent form = iota
	formID
	formInline
)

// bookShape is one cell of the publisher × series decision table.
type bookShape struct {
	publisher form
	series    form
}

// classifyBook maps a payload onto the decision table. Giving both the id and
// the inline form of one association is rejected up front.
func classifyBook(in *BookInput) (bookShape, error) {
	var shape bookShape

	switch {
	case in.PublisherID != nil && in.Publisher != nil:
		return shape, apperr.InvalidCombination(msgPublisherBothForms)
	case in.PublisherID != nil:
		shape.publisher = formID
	case in.Publisher != nil:
		shape.publisher = formInline
	}

	switch {
	case in.SeriesID != nil && in.Series != nil:
		return shape, apperr.InvalidCombination(msgSeriesBothForms)
	case in.SeriesID != nil:
		shape.series = formID
	case in.Series != nil:
		shape.series = formInline
	}

	return shape, nil
}

// bookResolver resolves publisher/series combinations for book payloads.
type bookResolver struct {
	repo Repository
}

/*
create resolves a book payload for a new reference.

Returns:
  - *Book: the resolved row without ReferenceID
  - error: MISSING_REQUIRED_DATA, CONFLICTING_ASSOCIATION, INVALID_COMBINATION,
    NOT_FOUND or CONSTRAINT_VIOLATION
*/
func (resolver bookResolver) create(ctx context.Context, in *BookInput) (*Book, error) {
	if in == nil {
		return nil, apperr.MissingRequiredData(msgBookRequired)
	}

	shape, err := classifyBook(in)
	if err != nil {
		return nil, err
	}

	book := &Book{ISBN: in.ISBN, SeriesNumber: in.SeriesNumber}

	switch shape {

	// 1. Neither publisher nor series
	case bookShape{formAbsent, formAbsent}:
		return book, nil

	// 2. Existing publisher only
	case bookShape{formID, formAbsent}:
		if err := resolver.requirePublisher(ctx, *in.PublisherID); err != nil {
			return nil, err
		}
		book.PublisherID = in.PublisherID
		return book, nil

	// 3. Existing series only: the series' publisher is adopted, even if null
	case bookShape{formAbsent, formID}:
		series, err := resolver.findSeries(ctx, *in.SeriesID)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &series.ID, series.PublisherID
		return book, nil

	// 4. Existing publisher and existing series
	case bookShape{formID, formID}:
		if err := resolver.linkSeriesToPublisher(ctx, *in.SeriesID, *in.PublisherID, msgSeriesPublisherMismatch); err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = in.SeriesID, in.PublisherID
		return book, nil

	// 5. New series under an existing publisher
	case bookShape{formID, formInline}:
		seriesID, err := resolver.newSeriesUnder(ctx, in.Series, *in.PublisherID)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &seriesID, in.PublisherID
		return book, nil

	// 6. New publisher with an existing series
	case bookShape{formInline, formID}:
		return nil, apperr.InvalidCombination(msgSeriesIDWithNewPublisher)

	// 7. New publisher only
	case bookShape{formInline, formAbsent}:
		publisherID, err := resolver.newPublisher(ctx, in.Publisher)
		if err != nil {
			return nil, err
		}
		book.PublisherID = &publisherID
		return book, nil

	// 8. New series only: the series may name its own publisher
	case bookShape{formAbsent, formInline}:
		series, err := resolver.newSeries(ctx, in.Series, in.Series.PublisherID)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &series.ID, series.PublisherID
		return book, nil

	// 9. New publisher and new series, linked together
	case bookShape{formInline, formInline}:
		publisherID, seriesID, err := resolver.newPublisherAndSeries(ctx, in.Publisher, in.Series)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &seriesID, &publisherID
		return book, nil
	}

	return nil, apperr.Internal(fmt.Errorf("reference: unhandled book shape %+v", shape))
}

/*
update applies a book payload onto the current row of a book reference.

Description: Scalar fields change only when given. Publisher and series follow
the same decision table as create, except that the current row fills the gaps:
an existing series whose publisher differs from a newly chosen publisher is a
conflict, and a new series without publisher info inherits the book's publisher.

Returns:
  - *Book: the updated row
  - error: classified resolution error
*/
func (resolver bookResolver) update(ctx context.Context, current *Book, in *BookInput) (*Book, error) {
	shape, err := classifyBook(in)
	if err != nil {
		return nil, err
	}

	book := &Book{
		ReferenceID:  current.ReferenceID,
		ISBN:         current.ISBN,
		SeriesNumber: current.SeriesNumber,
		PublisherID:  current.PublisherID,
		SeriesID:     current.SeriesID,
	}
	if in.ISBN != nil {
		book.ISBN = in.ISBN
	}
	if in.SeriesNumber != nil {
		book.SeriesNumber = in.SeriesNumber
	}

	switch shape {

	// 1. No association info: keep what is stored
	case bookShape{formAbsent, formAbsent}:
		return book, nil

	// 2. Existing publisher: the current series must agree or take it
	case bookShape{formID, formAbsent}:
		if err := resolver.requirePublisher(ctx, *in.PublisherID); err != nil {
			return nil, err
		}
		if book.SeriesID != nil {
			if err := resolver.linkSeriesToPublisher(ctx, *book.SeriesID, *in.PublisherID, msgSeriesHasPublisher); err != nil {
				return nil, err
			}
		}
		book.PublisherID = in.PublisherID
		return book, nil

	// 3. Existing series: its publisher is adopted, even if null
	case bookShape{formAbsent, formID}:
		series, err := resolver.findSeries(ctx, *in.SeriesID)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &series.ID, series.PublisherID
		return book, nil

	// 4. Existing publisher and existing series
	case bookShape{formID, formID}:
		if err := resolver.linkSeriesToPublisher(ctx, *in.SeriesID, *in.PublisherID, msgSeriesPublisherIDs); err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = in.SeriesID, in.PublisherID
		return book, nil

	// 5. New series under an existing publisher
	case bookShape{formID, formInline}:
		seriesID, err := resolver.newSeriesUnder(ctx, in.Series, *in.PublisherID)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &seriesID, in.PublisherID
		return book, nil

	// 6. New publisher with an existing series
	case bookShape{formInline, formID}:
		return nil, apperr.InvalidCombination(msgSeriesIDWithNewPublisher)

	// 7. New publisher: a current series must not already belong to another publisher
	case bookShape{formInline, formAbsent}:
		var series *Series
		if book.SeriesID != nil {
			series, err = resolver.findSeries(ctx, *book.SeriesID)
			if err != nil {
				return nil, err
			}
			if series.PublisherID != nil {
				return nil, apperr.ConflictingAssociation(msgSeriesHasPublisher)
			}
		}

		publisherID, err := resolver.newPublisher(ctx, in.Publisher)
		if err != nil {
			return nil, err
		}
		if series != nil {
			if err := resolver.attachPublisher(ctx, series.ID, publisherID, msgSeriesHasPublisher); err != nil {
				return nil, err
			}
		}
		book.PublisherID = &publisherID
		return book, nil

	// 8. New series: inherits its own publisherId, else the book's current publisher
	case bookShape{formAbsent, formInline}:
		publisherID := in.Series.PublisherID
		if publisherID == nil {
			publisherID = book.PublisherID
		}
		series, err := resolver.newSeries(ctx, in.Series, publisherID)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &series.ID, series.PublisherID
		return book, nil

	// 9. New publisher and new series, linked together
	case bookShape{formInline, formInline}:
		publisherID, seriesID, err := resolver.newPublisherAndSeries(ctx, in.Publisher, in.Series)
		if err != nil {
			return nil, err
		}
		book.SeriesID, book.PublisherID = &seriesID, &publisherID
		return book, nil
	}

	return nil, apperr.Internal(fmt.Errorf("reference: unhandled book shape %+v", shape))
}

// # Resolution Steps

func (resolver bookResolver) requirePublisher(ctx context.Context, id int64) error {
	if _, err := resolver.repo.FindPublisher(ctx, id); err != nil {
		return notFoundAs(err, "Publisher", id)
	}
	return nil
}

func (resolver bookResolver) findSeries(ctx context.Context, id int64) (*Series, error) {
	series, err := resolver.repo.FindSeries(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Series", id)
	}
	return series, nil
}

// linkSeriesToPublisher checks that an existing series belongs to publisherID.
// A series without a publisher is attached to it; a different one fails with mismatch.
func (resolver bookResolver) linkSeriesToPublisher(ctx context.Context, seriesID, publisherID int64, mismatch string) error {
	if err := resolver.requirePublisher(ctx, publisherID); err != nil {
		return err
	}
	series, err := resolver.findSeries(ctx, seriesID)
	if err != nil {
		return err
	}

	switch {
	case series.PublisherID == nil:
		return resolver.attachPublisher(ctx, series.ID, publisherID, mismatch)
	case *series.PublisherID != publisherID:
		return apperr.ConflictingAssociation(mismatch)
	}
	return nil
}

// attachPublisher gives an unowned series its publisher. Books already filed
// under the series follow it, so none is left pointing at a series owned by a
// publisher it does not carry.
func (resolver bookResolver) attachPublisher(ctx context.Context, seriesID, publisherID int64, mismatch string) error {
	_, err := resolver.repo.SetSeriesPublisher(ctx, seriesID, publisherID)
	if errors.Is(err, ErrSeriesClaimed) {
		return apperr.ConflictingAssociation(mismatch)
	}
	return err
}

// newSeriesUnder creates a series owned by an existing publisher. An inline
// publisherId that names another publisher is a conflict.
func (resolver bookResolver) newSeriesUnder(ctx context.Context, in *SeriesInput, publisherID int64) (int64, error) {
	if textnorm.Blank(in.Name) {
		return 0, apperr.MissingRequiredData(msgMissingSeriesName)
	}
	if in.PublisherID != nil && *in.PublisherID != publisherID {
		return 0, apperr.ConflictingAssociation(msgNewSeriesPublisherID)
	}

	series, err := resolver.newSeries(ctx, in, &publisherID)
	if err != nil {
		return 0, err
	}
	return series.ID, nil
}

// newSeries creates a series, verifying the optional publisher first.
func (resolver bookResolver) newSeries(ctx context.Context, in *SeriesInput, publisherID *int64) (*Series, error) {
	if textnorm.Blank(in.Name) {
		return nil, apperr.MissingRequiredData(msgMissingSeriesName)
	}
	if publisherID != nil {
		if err := resolver.requirePublisher(ctx, *publisherID); err != nil {
			return nil, err
		}
	}

	series := &Series{Name: textnorm.Name(*in.Name), Notes: in.Notes, PublisherID: publisherID}
	if err := resolver.repo.CreateSeries(ctx, series); err != nil {
		return nil, err
	}
	return series, nil
}

// newPublisher creates a publisher from inline data.
func (resolver bookResolver) newPublisher(ctx context.Context, in *PublisherInput) (int64, error) {
	if textnorm.Blank(in.Name) {
		return 0, apperr.MissingRequiredData(msgMissingPublisherName)
	}

	publisher := &Publisher{Name: textnorm.Name(*in.Name), Notes: in.Notes}
	if err := resolver.repo.CreatePublisher(ctx, publisher); err != nil {
		return 0, err
	}
	return publisher.ID, nil
}

// newPublisherAndSeries creates a publisher and a series linked to it.
// Both names are checked before either row is written.
func (resolver bookResolver) newPublisherAndSeries(ctx context.Context, publisherIn *PublisherInput, seriesIn *SeriesInput) (int64, int64, error) {
	if textnorm.Blank(publisherIn.Name) {
		return 0, 0, apperr.MissingRequiredData(msgMissingPublisherName)
	}
	if textnorm.Blank(seriesIn.Name) {
		return 0, 0, apperr.MissingRequiredData(msgMissingSeriesName)
	}
	if seriesIn.PublisherID != nil {
		return 0, 0, apperr.ConflictingAssociation(msgNewSeriesNewPublisher)
	}

	publisherID, err := resolver.newPublisher(ctx, publisherIn)
	if err != nil {
		return 0, 0, err
	}
	series, err := resolver.newSeries(ctx, seriesIn, &publisherID)
	if err != nil {
		return 0, 0, err
	}
	return publisherID, series.ID, nil
}
