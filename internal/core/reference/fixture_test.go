// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refcatalog/internal/core/reference"
	"github.com/taibuivan/refcatalog/internal/core/reference/memstore"
	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/pkg/pointer"
)

// fixture runs the engine against a fresh in-memory catalog with a manual clock.
type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *memstore.Store
	service *reference.Service
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memstore.New(),
		now:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.service = reference.NewService(f.store, reference.WithClock(func() time.Time { return f.now }))
	return f
}

// tick advances the clock so later writes get distinct timestamps.
func (f *fixture) tick() {
	f.now = f.now.Add(time.Minute)
}

func (f *fixture) seed(fn func(repo reference.Repository) error) {
	f.t.Helper()
	require.NoError(f.t, f.store.WithinTx(f.ctx, fn))
}

func (f *fixture) publisher(name string) int64 {
	publisher := &reference.Publisher{Name: name}
	f.seed(func(repo reference.Repository) error { return repo.CreatePublisher(f.ctx, publisher) })
	return publisher.ID
}

func (f *fixture) series(name string, publisherID *int64) int64 {
	series := &reference.Series{Name: name, PublisherID: publisherID}
	f.seed(func(repo reference.Repository) error { return repo.CreateSeries(f.ctx, series) })
	return series.ID
}

func (f *fixture) magazine(name string) int64 {
	magazine := &reference.Magazine{Name: name, Aliases: []string{}, CreatedAt: f.now, UpdatedAt: f.now}
	f.seed(func(repo reference.Repository) error { return repo.CreateMagazine(f.ctx, magazine) })
	return magazine.ID
}

func (f *fixture) issue(magazineID int64, issue string) int64 {
	row := &reference.MagazineIssue{Issue: issue, MagazineID: magazineID, CreatedAt: f.now, UpdatedAt: f.now}
	f.seed(func(repo reference.Repository) error { return repo.CreateMagazineIssue(f.ctx, row) })
	return row.ID
}

func (f *fixture) tag(name string) int64 {
	tag := &reference.Tag{Name: name}
	f.seed(func(repo reference.Repository) error { return repo.CreateTag(f.ctx, tag) })
	return tag.ID
}

func (f *fixture) author(name string) int64 {
	author := &reference.Author{Name: name, CreatedAt: f.now, UpdatedAt: f.now}
	f.seed(func(repo reference.Repository) error { return repo.CreateAuthor(f.ctx, author) })
	return author.ID
}

func (f *fixture) featureTag(name string) int64 {
	tag := &reference.FeatureTag{Name: name}
	f.seed(func(repo reference.Repository) error { return repo.CreateFeatureTag(f.ctx, tag) })
	return tag.ID
}

// create stores a reference and fails the test on error.
func (f *fixture) create(input reference.CreateInput) *reference.Reference {
	f.t.Helper()
	ref, err := f.service.CreateReference(f.ctx, input)
	require.NoError(f.t, err)
	require.NotNil(f.t, ref)
	return ref
}

// book returns the book body of ref, failing if it has another sub-type.
func book(t *testing.T, ref *reference.Reference) *reference.Book {
	t.Helper()
	body, ok := ref.Body.(*reference.Book)
	require.True(t, ok, "expected a book body, got %T", ref.Body)
	return body
}

func feature(t *testing.T, ref *reference.Reference) *reference.MagazineFeature {
	t.Helper()
	body, ok := ref.Body.(*reference.MagazineFeature)
	require.True(t, ok, "expected a magazine feature body, got %T", ref.Body)
	return body
}

func photo(t *testing.T, ref *reference.Reference) *reference.PhotoCollection {
	t.Helper()
	body, ok := ref.Body.(*reference.PhotoCollection)
	require.True(t, ok, "expected a photo collection body, got %T", ref.Body)
	return body
}

// assertAppError checks the classified code and, when given, the exact message.
func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	assert.Equal(t, code, ae.Code)
	if message != "" {
		assert.Equal(t, message, ae.Message)
	}
}

// # Payload Builders

func tagsByName(names ...string) []reference.TagInput {
	items := make([]reference.TagInput, len(names))
	for i, name := range names {
		items[i] = reference.TagInput{Name: pointer.To(name)}
	}
	return items
}

func tagsByID(ids ...int64) []reference.TagInput {
	items := make([]reference.TagInput, len(ids))
	for i, id := range ids {
		items[i] = reference.TagInput{ID: pointer.To(id)}
	}
	return items
}

func featureTagsByName(names ...string) []reference.FeatureTagInput {
	items := make([]reference.FeatureTagInput, len(names))
	for i, name := range names {
		items[i] = reference.FeatureTagInput{Name: pointer.To(name)}
	}
	return items
}

func bookInput(name string, in *reference.BookInput) reference.CreateInput {
	return reference.CreateInput{
		Name:            name,
		ReferenceTypeID: reference.TypeBook,
		Tags:            tagsByName("tag-" + name),
		Book:            in,
	}
}

func featureInput(name string, in *reference.MagazineFeatureInput) reference.CreateInput {
	return reference.CreateInput{
		Name:            name,
		ReferenceTypeID: reference.TypeMagazineFeature,
		Tags:            tagsByName("tag-" + name),
		MagazineFeature: in,
	}
}

func photoInput(name, location, media string) reference.CreateInput {
	return reference.CreateInput{
		Name:            name,
		ReferenceTypeID: reference.TypePhotoCollection,
		Tags:            tagsByName("tag-" + name),
		PhotoCollection: &reference.PhotoCollectionInput{Location: pointer.To(location), Media: pointer.To(media)},
	}
}
