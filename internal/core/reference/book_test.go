// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refcatalog/internal/core/reference"
	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/pkg/pointer"
)

// bookCatalog is the shared fixture for book resolution tests:
// publisher A owns series A1, publisher B owns series B1, series Free has no publisher.
type bookCatalog struct {
	*fixture
	publisherA, publisherB      int64
	seriesA1, seriesB1, seriesF int64
}

func newBookCatalog(t *testing.T) *bookCatalog {
	f := newFixture(t)
	catalog := &bookCatalog{fixture: f}
	catalog.publisherA = f.publisher("Publisher A")
	catalog.publisherB = f.publisher("Publisher B")
	catalog.seriesA1 = f.series("Series A1", pointer.To(catalog.publisherA))
	catalog.seriesB1 = f.series("Series B1", pointer.To(catalog.publisherB))
	catalog.seriesF = f.series("Series Free", nil)
	return catalog
}

/*
TestCreateBook_DecisionTable walks every publisher × series combination on create.
*/
func TestCreateBook_DecisionTable(t *testing.T) {
	type expect struct {
		publisher     string // name of the resolved publisher, "" for none
		series        string // name of the resolved series, "" for none
		seriesOwnerIs string // publisher name stored on the series
	}

	tests := []struct {
		name    string
		input   func(c *bookCatalog) *reference.BookInput
		want    expect
		code    string
		message string
	}{
		{
			name:  "1_nothing",
			input: func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{ISBN: pointer.To("isbn")} },
			want:  expect{},
		},
		{
			name:  "2_publisher_id",
			input: func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{PublisherID: pointer.To(c.publisherB)} },
			want:  expect{publisher: "Publisher B"},
		},
		{
			name:    "2_publisher_id_unknown",
			input:   func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{PublisherID: pointer.To(int64(999))} },
			code:    apperr.CodeNotFound,
			message: "Publisher 999 not found",
		},
		{
			name:  "3_series_id_adopts_publisher",
			input: func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{SeriesID: pointer.To(c.seriesA1)} },
			want:  expect{publisher: "Publisher A", series: "Series A1", seriesOwnerIs: "Publisher A"},
		},
		{
			name:  "3_series_id_adopts_null_publisher",
			input: func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{SeriesID: pointer.To(c.seriesF)} },
			want:  expect{series: "Series Free"},
		},
		{
			name: "4_matching_ids",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherA), SeriesID: pointer.To(c.seriesA1)}
			},
			want: expect{publisher: "Publisher A", series: "Series A1", seriesOwnerIs: "Publisher A"},
		},
		{
			name: "4_mismatched_ids",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherA), SeriesID: pointer.To(c.seriesB1)}
			},
			code:    apperr.CodeConflictingAssociation,
			message: "Series and publisher do not match",
		},
		{
			name: "4_series_without_publisher_is_linked",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherB), SeriesID: pointer.To(c.seriesF)}
			},
			want: expect{publisher: "Publisher B", series: "Series Free", seriesOwnerIs: "Publisher B"},
		},
		{
			name: "5_new_series_under_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherA), Series: &reference.SeriesInput{Name: pointer.To("Series A2")}}
			},
			want: expect{publisher: "Publisher A", series: "Series A2", seriesOwnerIs: "Publisher A"},
		},
		{
			name: "5_new_series_missing_name",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherA), Series: &reference.SeriesInput{}}
			},
			code:    apperr.CodeMissingRequiredData,
			message: "Missing new series name",
		},
		{
			name: "5_new_series_names_other_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{
					PublisherID: pointer.To(c.publisherA),
					Series:      &reference.SeriesInput{Name: pointer.To("Series A2"), PublisherID: pointer.To(c.publisherB)},
				}
			},
			code:    apperr.CodeConflictingAssociation,
			message: "new series data publisherId conflicts with publisherId",
		},
		{
			name: "6_new_publisher_with_series_id",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")}, SeriesID: pointer.To(c.seriesF)}
			},
			code:    apperr.CodeInvalidCombination,
			message: "Cannot specify `seriesId` with new `publisher` data",
		},
		{
			name: "7_new_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C"), Notes: pointer.To("indie")}}
			},
			want: expect{publisher: "Publisher C"},
		},
		{
			name:    "7_new_publisher_missing_name",
			input:   func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{Publisher: &reference.PublisherInput{}} },
			code:    apperr.CodeMissingRequiredData,
			message: "Missing new publisher name",
		},
		{
			name: "7_new_publisher_duplicate_name",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Publisher A")}}
			},
			code: apperr.CodeConstraintViolation,
		},
		{
			name: "8_new_series_alone",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Series: &reference.SeriesInput{Name: pointer.To("Series X")}}
			},
			want: expect{series: "Series X"},
		},
		{
			name: "8_new_series_with_own_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Series: &reference.SeriesInput{Name: pointer.To("Series X"), PublisherID: pointer.To(c.publisherB)}}
			},
			want: expect{publisher: "Publisher B", series: "Series X", seriesOwnerIs: "Publisher B"},
		},
		{
			name: "9_new_publisher_and_series",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{
					Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")},
					Series:    &reference.SeriesInput{Name: pointer.To("Series C1")},
				}
			},
			want: expect{publisher: "Publisher C", series: "Series C1", seriesOwnerIs: "Publisher C"},
		},
		{
			name: "9_series_names_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{
					Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")},
					Series:    &reference.SeriesInput{Name: pointer.To("Series C1"), PublisherID: pointer.To(c.publisherA)},
				}
			},
			code:    apperr.CodeConflictingAssociation,
			message: "new series data publisherId conflicts with new publisher data",
		},
		{
			name: "both_publisher_forms",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherA), Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")}}
			},
			code:    apperr.CodeInvalidCombination,
			message: "Cannot specify both `publisherId` and new `publisher` data",
		},
		{
			name: "both_series_forms",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{SeriesID: pointer.To(c.seriesA1), Series: &reference.SeriesInput{Name: pointer.To("Series X")}}
			},
			code:    apperr.CodeInvalidCombination,
			message: "Cannot specify both `seriesId` and new `series` data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBookCatalog(t)

			ref, err := c.service.CreateReference(c.ctx, bookInput("Book", tt.input(c)))
			if tt.code != "" {
				assertAppError(t, err, tt.code, tt.message)
				return
			}
			require.NoError(t, err)

			body := book(t, ref)
			assertBookLinks(t, body, tt.want.publisher, tt.want.series, tt.want.seriesOwnerIs)
		})
	}
}

// assertBookLinks compares the loaded publisher and series of a book by name.
func assertBookLinks(t *testing.T, body *reference.Book, publisher, series, seriesOwner string) {
	t.Helper()

	if publisher == "" {
		assert.Nil(t, body.PublisherID)
		assert.Nil(t, body.Publisher)
	} else {
		require.NotNil(t, body.Publisher)
		assert.Equal(t, publisher, body.Publisher.Name)
		assert.Equal(t, body.Publisher.ID, pointer.Val(body.PublisherID))
	}

	if series == "" {
		assert.Nil(t, body.SeriesID)
		return
	}
	require.NotNil(t, body.Series)
	assert.Equal(t, series, body.Series.Name)

	if seriesOwner == "" {
		assert.Nil(t, body.Series.PublisherID)
	} else {
		require.NotNil(t, body.Publisher)
		assert.Equal(t, body.Publisher.ID, pointer.Val(body.Series.PublisherID))
	}
}

/*
TestBook_Scenarios pins the concrete examples of the decision table.
*/
func TestBook_Scenarios(t *testing.T) {
	t.Run("series_id_implies_publisher", func(t *testing.T) {
		f := newFixture(t)
		publisher := f.publisher("One")
		series := f.series("One Series", pointer.To(publisher))

		ref := f.create(bookInput("Book", &reference.BookInput{SeriesID: pointer.To(series)}))
		assert.Equal(t, publisher, pointer.Val(book(t, ref).PublisherID))
	})

	t.Run("publisher_and_foreign_series", func(t *testing.T) {
		f := newFixture(t)
		one := f.publisher("One")
		two := f.publisher("Two")
		series := f.series("Two Series", pointer.To(two))

		_, err := f.service.CreateReference(f.ctx, bookInput("Book", &reference.BookInput{
			PublisherID: pointer.To(one),
			SeriesID:    pointer.To(series),
		}))
		assertAppError(t, err, apperr.CodeConflictingAssociation, "Series and publisher do not match")
	})

	t.Run("new_publisher_for_owned_series", func(t *testing.T) {
		f := newFixture(t)
		owner := f.publisher("Owner")
		series := f.series("Owned", pointer.To(owner))
		ref := f.create(bookInput("Book", &reference.BookInput{SeriesID: pointer.To(series)}))

		_, err := f.service.UpdateReferenceByID(f.ctx, ref.ID, reference.UpdateInput{
			Book: &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Newcomer")}},
		})
		assertAppError(t, err, apperr.CodeConflictingAssociation, "Existing series is already associated with a publisher")
	})
}

/*
TestUpdateBook_DecisionTable covers the update path, where the stored row
fills the gaps left by the payload. Every reference starts in series A1 of
publisher A with ISBN "isbn-1".
*/
func TestUpdateBook_DecisionTable(t *testing.T) {
	type expect struct {
		publisher, series, seriesOwnerIs string
	}

	tests := []struct {
		name    string
		input   func(c *bookCatalog) *reference.BookInput
		want    expect
		code    string
		message string
	}{
		{
			name:  "1_scalars_only",
			input: func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{SeriesNumber: pointer.To(4)} },
			want:  expect{"Publisher A", "Series A1", "Publisher A"},
		},
		{
			name:  "2_same_publisher",
			input: func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{PublisherID: pointer.To(c.publisherA)} },
			want:  expect{"Publisher A", "Series A1", "Publisher A"},
		},
		{
			name:    "2_publisher_conflicts_with_current_series",
			input:   func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{PublisherID: pointer.To(c.publisherB)} },
			code:    apperr.CodeConflictingAssociation,
			message: "Existing series is already associated with a publisher",
		},
		{
			name:  "3_series_id",
			input: func(c *bookCatalog) *reference.BookInput { return &reference.BookInput{SeriesID: pointer.To(c.seriesB1)} },
			want:  expect{"Publisher B", "Series B1", "Publisher B"},
		},
		{
			name: "4_mismatched_ids",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherA), SeriesID: pointer.To(c.seriesB1)}
			},
			code:    apperr.CodeConflictingAssociation,
			message: "Series and publisher IDs do not match",
		},
		{
			name: "4_matching_ids",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherB), SeriesID: pointer.To(c.seriesB1)}
			},
			want: expect{"Publisher B", "Series B1", "Publisher B"},
		},
		{
			name: "5_new_series_under_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{PublisherID: pointer.To(c.publisherB), Series: &reference.SeriesInput{Name: pointer.To("Series B2")}}
			},
			want: expect{"Publisher B", "Series B2", "Publisher B"},
		},
		{
			name: "6_new_publisher_with_series_id",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")}, SeriesID: pointer.To(c.seriesA1)}
			},
			code:    apperr.CodeInvalidCombination,
			message: "Cannot specify `seriesId` with new `publisher` data",
		},
		{
			name: "7_new_publisher_for_owned_series",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")}}
			},
			code:    apperr.CodeConflictingAssociation,
			message: "Existing series is already associated with a publisher",
		},
		{
			name: "8_new_series_inherits_book_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Series: &reference.SeriesInput{Name: pointer.To("Series A2")}}
			},
			want: expect{"Publisher A", "Series A2", "Publisher A"},
		},
		{
			name: "8_new_series_with_own_publisher",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{Series: &reference.SeriesInput{Name: pointer.To("Series B2"), PublisherID: pointer.To(c.publisherB)}}
			},
			want: expect{"Publisher B", "Series B2", "Publisher B"},
		},
		{
			name: "9_new_publisher_and_series",
			input: func(c *bookCatalog) *reference.BookInput {
				return &reference.BookInput{
					Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")},
					Series:    &reference.SeriesInput{Name: pointer.To("Series C1")},
				}
			},
			want: expect{"Publisher C", "Series C1", "Publisher C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBookCatalog(t)
			created := c.create(bookInput("Book", &reference.BookInput{ISBN: pointer.To("isbn-1"), SeriesID: pointer.To(c.seriesA1)}))

			updated, err := c.service.UpdateReferenceByID(c.ctx, created.ID, reference.UpdateInput{Book: tt.input(c)})
			if tt.code != "" {
				assertAppError(t, err, tt.code, tt.message)

				current, err := c.service.GetReferenceByID(c.ctx, created.ID, reference.All())
				require.NoError(t, err)
				assert.Equal(t, reference.Serialize(created), reference.Serialize(current), "a rejected update must not change the book")
				return
			}
			require.NoError(t, err)

			body := book(t, updated)
			assert.Equal(t, "isbn-1", pointer.Val(body.ISBN), "isbn was not given and must be kept")
			assertBookLinks(t, body, tt.want.publisher, tt.want.series, tt.want.seriesOwnerIs)
		})
	}
}

/*
TestUpdateBook_FreeSeries covers updates of a book whose series has no publisher.
*/
func TestUpdateBook_FreeSeries(t *testing.T) {
	t.Run("new_publisher_adopts_series", func(t *testing.T) {
		c := newBookCatalog(t)
		created := c.create(bookInput("Book", &reference.BookInput{SeriesID: pointer.To(c.seriesF)}))

		updated, err := c.service.UpdateReferenceByID(c.ctx, created.ID, reference.UpdateInput{
			Book: &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")}},
		})
		require.NoError(t, err)
		assertBookLinks(t, book(t, updated), "Publisher C", "Series Free", "Publisher C")
	})

	t.Run("publisher_id_adopts_series", func(t *testing.T) {
		c := newBookCatalog(t)
		created := c.create(bookInput("Book", &reference.BookInput{SeriesID: pointer.To(c.seriesF)}))

		updated, err := c.service.UpdateReferenceByID(c.ctx, created.ID, reference.UpdateInput{
			Book: &reference.BookInput{PublisherID: pointer.To(c.publisherB)},
		})
		require.NoError(t, err)
		assertBookLinks(t, book(t, updated), "Publisher B", "Series Free", "Publisher B")
	})

	t.Run("no_book_key_keeps_row", func(t *testing.T) {
		c := newBookCatalog(t)
		created := c.create(bookInput("Book", &reference.BookInput{ISBN: pointer.To("isbn"), SeriesID: pointer.To(c.seriesF)}))

		updated, err := c.service.UpdateReferenceByID(c.ctx, created.ID, reference.UpdateInput{Name: pointer.To("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, reference.Serialize(created).Book, reference.Serialize(updated).Book)
	})
}

/*
TestPublisherSeriesConsistency checks every (publisher, series) pair where the
series has a stored publisher: disagreement fails, agreement succeeds and the
stored row carries both ids.
*/
func TestPublisherSeriesConsistency(t *testing.T) {
	c := newBookCatalog(t)
	publishers := []int64{c.publisherA, c.publisherB}
	owned := map[int64]int64{c.seriesA1: c.publisherA, c.seriesB1: c.publisherB}
	tag := c.tag("consistency")

	for seriesID, owner := range owned {
		for _, publisherID := range publishers {
			ref, err := c.service.CreateReference(c.ctx, reference.CreateInput{
				Name:            "Book",
				ReferenceTypeID: reference.TypeBook,
				Tags:            tagsByID(tag),
				Book:            &reference.BookInput{PublisherID: pointer.To(publisherID), SeriesID: pointer.To(seriesID)},
			})

			if publisherID != owner {
				assertAppError(t, err, apperr.CodeConflictingAssociation, "Series and publisher do not match")
				continue
			}
			require.NoError(t, err)
			body := book(t, ref)
			assert.Equal(t, publisherID, pointer.Val(body.PublisherID))
			assert.Equal(t, seriesID, pointer.Val(body.SeriesID))

			_, err = c.service.DeleteReferenceByID(c.ctx, ref.ID)
			require.NoError(t, err)
		}
	}
}

/*
TestSharedSeries_FollowsPublisher checks that books already filed under an
unowned series take the publisher the series is later attached to, whichever
write attaches it.
*/
func TestSharedSeries_FollowsPublisher(t *testing.T) {
	tests := []struct {
		name      string
		publisher string
		attach    func(c *bookCatalog) error
	}{
		{
			name:      "create_with_both_ids",
			publisher: "Publisher B",
			attach: func(c *bookCatalog) error {
				_, err := c.service.CreateReference(c.ctx, bookInput("Second", &reference.BookInput{
					PublisherID: pointer.To(c.publisherB),
					SeriesID:    pointer.To(c.seriesF),
				}))
				return err
			},
		},
		{
			name:      "update_with_publisher_id",
			publisher: "Publisher A",
			attach: func(c *bookCatalog) error {
				second := c.create(bookInput("Second", &reference.BookInput{SeriesID: pointer.To(c.seriesF)}))
				_, err := c.service.UpdateReferenceByID(c.ctx, second.ID, reference.UpdateInput{
					Book: &reference.BookInput{PublisherID: pointer.To(c.publisherA)},
				})
				return err
			},
		},
		{
			name:      "update_with_new_publisher",
			publisher: "Publisher C",
			attach: func(c *bookCatalog) error {
				second := c.create(bookInput("Second", &reference.BookInput{SeriesID: pointer.To(c.seriesF)}))
				_, err := c.service.UpdateReferenceByID(c.ctx, second.ID, reference.UpdateInput{
					Book: &reference.BookInput{Publisher: &reference.PublisherInput{Name: pointer.To("Publisher C")}},
				})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBookCatalog(t)
			first := c.create(bookInput("First", &reference.BookInput{SeriesID: pointer.To(c.seriesF)}))
			assertBookLinks(t, book(t, first), "", "Series Free", "")

			require.NoError(t, tt.attach(c))

			reloaded, err := c.service.GetReferenceByID(c.ctx, first.ID, reference.All())
			require.NoError(t, err)
			assertBookLinks(t, book(t, reloaded), tt.publisher, "Series Free", tt.publisher)
		})
	}

	t.Run("claimed_series_stays_put", func(t *testing.T) {
		c := newBookCatalog(t)
		first := c.create(bookInput("First", &reference.BookInput{
			PublisherID: pointer.To(c.publisherA),
			SeriesID:    pointer.To(c.seriesF),
		}))

		_, err := c.service.CreateReference(c.ctx, bookInput("Second", &reference.BookInput{
			PublisherID: pointer.To(c.publisherB),
			SeriesID:    pointer.To(c.seriesF),
		}))
		assertAppError(t, err, apperr.CodeConflictingAssociation, "Series and publisher do not match")

		reloaded, err := c.service.GetReferenceByID(c.ctx, first.ID, reference.All())
		require.NoError(t, err)
		assertBookLinks(t, book(t, reloaded), "Publisher A", "Series Free", "Publisher A")
	})
}
