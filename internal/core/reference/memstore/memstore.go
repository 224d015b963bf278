// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package memstore provides an in-memory transactional implementation of
// [reference.Store].
//
// Transactions work on a copy of the whole state taken at begin; the copy
// replaces the live state only when the unit of work succeeds. Transactions
// are serialized by a single lock. Uniqueness, foreign keys and cascades
// follow the catalog migrations so the engine sees the same errors as on
// PostgreSQL.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/refcatalog/internal/core/reference"
	"github.com/taibuivan/refcatalog/internal/platform/apperr"
)

// referenceRow is the top-level row without its sub-type and associations.
type referenceRow struct {
	ID        int64
	Name      string
	Language  *string
	TypeID    reference.Type
	CreatedAt time.Time
	UpdatedAt time.Time
}

type state struct {
	sequence int64

	authors     map[int64]reference.Author
	tags        map[int64]reference.Tag
	featureTags map[int64]reference.FeatureTag
	publishers  map[int64]reference.Publisher
	series      map[int64]reference.Series
	magazines   map[int64]reference.Magazine
	issues      map[int64]reference.MagazineIssue

	references map[int64]referenceRow
	books      map[int64]reference.Book
	features   map[int64]int64
	photos     map[int64]reference.PhotoCollection

	// join rows, ordered by position
	authorLinks     map[int64][]int64
	tagLinks        map[int64][]int64
	featureTagLinks map[int64][]int64
}

func newState() state {
	return state{
		authors:         map[int64]reference.Author{},
		tags:            map[int64]reference.Tag{},
		featureTags:     map[int64]reference.FeatureTag{},
		publishers:      map[int64]reference.Publisher{},
		series:          map[int64]reference.Series{},
		magazines:       map[int64]reference.Magazine{},
		issues:          map[int64]reference.MagazineIssue{},
		references:      map[int64]referenceRow{},
		books:           map[int64]reference.Book{},
		features:        map[int64]int64{},
		photos:          map[int64]reference.PhotoCollection{},
		authorLinks:     map[int64][]int64{},
		tagLinks:        map[int64][]int64{},
		featureTagLinks: map[int64][]int64{},
	}
}

// clone copies every table. Rows are values and join slices are replaced,
// never edited in place, so a shallow copy per map is enough.
func (s state) clone() state {
	return state{
		sequence:        s.sequence,
		authors:         maps.Clone(s.authors),
		tags:            maps.Clone(s.tags),
		featureTags:     maps.Clone(s.featureTags),
		publishers:      maps.Clone(s.publishers),
		series:          maps.Clone(s.series),
		magazines:       maps.Clone(s.magazines),
		issues:          maps.Clone(s.issues),
		references:      maps.Clone(s.references),
		books:           maps.Clone(s.books),
		features:        maps.Clone(s.features),
		photos:          maps.Clone(s.photos),
		authorLinks:     maps.Clone(s.authorLinks),
		tagLinks:        maps.Clone(s.tagLinks),
		featureTagLinks: maps.Clone(s.featureTagLinks),
	}
}

func (s *state) nextID() int64 {
	s.sequence++
	return s.sequence
}

// Store is the in-memory [reference.Store].
type Store struct {
	mu    sync.RWMutex
	state state
}

var _ reference.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// WithinTx implements [reference.Store].
func (store *Store) WithinTx(ctx context.Context, fn func(repo reference.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	tx := &repository{state: store.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}

	store.state = tx.state
	return nil
}

// GetReference implements [reference.Reader].
func (store *Store) GetReference(ctx context.Context, id int64, opts reference.LoadOptions) (*reference.Reference, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return (&repository{state: store.state}).GetReference(ctx, id, opts)
}

// ListReferences implements [reference.Reader].
func (store *Store) ListReferences(ctx context.Context, opts reference.LoadOptions) ([]*reference.Reference, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return (&repository{state: store.state}).ListReferences(ctx, opts)
}

// repository is a [reference.Repository] over one state snapshot.
type repository struct {
	state state
}

// # Constraint Helpers

func duplicate(constraint string) error {
	return apperr.ConstraintViolation(fmt.Sprintf("Duplicate value violates unique constraint %q", constraint), nil)
}

func missing(kind string, id int64) error {
	return apperr.NotFound(fmt.Sprintf("%s %d", kind, id))
}

// nameTaken reports whether any row of table already uses name.
func nameTaken[T any](table map[int64]T, name string, nameOf func(T) string) bool {
	for _, row := range table {
		if nameOf(row) == name {
			return true
		}
	}
	return false
}

// # Shared Entities

func (repo *repository) FindAuthor(_ context.Context, id int64) (*reference.Author, error) {
	author, ok := repo.state.authors[id]
	if !ok {
		return nil, missing("Author", id)
	}
	return &author, nil
}

func (repo *repository) CreateAuthor(_ context.Context, author *reference.Author) error {
	if nameTaken(repo.state.authors, author.Name, func(a reference.Author) string { return a.Name }) {
		return duplicate("author_name_key")
	}
	author.ID = repo.state.nextID()
	repo.state.authors[author.ID] = *author
	return nil
}

func (repo *repository) FindTag(_ context.Context, id int64) (*reference.Tag, error) {
	tag, ok := repo.state.tags[id]
	if !ok {
		return nil, missing("Tag", id)
	}
	return &tag, nil
}

func (repo *repository) CreateTag(_ context.Context, tag *reference.Tag) error {
	if nameTaken(repo.state.tags, tag.Name, func(t reference.Tag) string { return t.Name }) {
		return duplicate("tag_name_key")
	}
	tag.ID = repo.state.nextID()
	repo.state.tags[tag.ID] = *tag
	return nil
}

func (repo *repository) FindFeatureTag(_ context.Context, id int64) (*reference.FeatureTag, error) {
	tag, ok := repo.state.featureTags[id]
	if !ok {
		return nil, missing("FeatureTag", id)
	}
	return &tag, nil
}

func (repo *repository) CreateFeatureTag(_ context.Context, tag *reference.FeatureTag) error {
	if nameTaken(repo.state.featureTags, tag.Name, func(t reference.FeatureTag) string { return t.Name }) {
		return duplicate("featuretag_name_key")
	}
	tag.ID = repo.state.nextID()
	repo.state.featureTags[tag.ID] = *tag
	return nil
}

func (repo *repository) FindPublisher(_ context.Context, id int64) (*reference.Publisher, error) {
	publisher, ok := repo.state.publishers[id]
	if !ok {
		return nil, missing("Publisher", id)
	}
	return &publisher, nil
}

func (repo *repository) CreatePublisher(_ context.Context, publisher *reference.Publisher) error {
	if nameTaken(repo.state.publishers, publisher.Name, func(p reference.Publisher) string { return p.Name }) {
		return duplicate("publisher_name_key")
	}
	publisher.ID = repo.state.nextID()
	repo.state.publishers[publisher.ID] = *publisher
	return nil
}

func (repo *repository) FindSeries(_ context.Context, id int64) (*reference.Series, error) {
	series, ok := repo.state.series[id]
	if !ok {
		return nil, missing("Series", id)
	}
	return &series, nil
}

func (repo *repository) CreateSeries(_ context.Context, series *reference.Series) error {
	if nameTaken(repo.state.series, series.Name, func(s reference.Series) string { return s.Name }) {
		return duplicate("series_name_key")
	}
	if series.PublisherID != nil {
		if _, ok := repo.state.publishers[*series.PublisherID]; !ok {
			return missing("Publisher", *series.PublisherID)
		}
	}
	series.ID = repo.state.nextID()
	repo.state.series[series.ID] = *series
	return nil
}

func (repo *repository) SetSeriesPublisher(_ context.Context, seriesID, publisherID int64) ([]int64, error) {
	series, ok := repo.state.series[seriesID]
	if !ok {
		return nil, missing("Series", seriesID)
	}
	if _, ok := repo.state.publishers[publisherID]; !ok {
		return nil, missing("Publisher", publisherID)
	}
	if series.PublisherID != nil && *series.PublisherID != publisherID {
		return nil, reference.ErrSeriesClaimed
	}

	owner := publisherID
	series.PublisherID = &owner
	repo.state.series[seriesID] = series

	var referenceIDs []int64
	for id, book := range repo.state.books {
		if book.SeriesID == nil || *book.SeriesID != seriesID {
			continue
		}
		if book.PublisherID == nil {
			adopted := publisherID
			book.PublisherID = &adopted
			repo.state.books[id] = book
		}
		referenceIDs = append(referenceIDs, id)
	}
	slices.Sort(referenceIDs)
	return referenceIDs, nil
}

func (repo *repository) FindMagazine(_ context.Context, id int64) (*reference.Magazine, error) {
	magazine, ok := repo.state.magazines[id]
	if !ok {
		return nil, missing("Magazine", id)
	}
	magazine.Aliases = slices.Clone(magazine.Aliases)
	return &magazine, nil
}

func (repo *repository) CreateMagazine(_ context.Context, magazine *reference.Magazine) error {
	if nameTaken(repo.state.magazines, magazine.Name, func(m reference.Magazine) string { return m.Name }) {
		return duplicate("magazine_name_key")
	}
	magazine.ID = repo.state.nextID()
	row := *magazine
	row.Aliases = slices.Clone(magazine.Aliases)
	repo.state.magazines[magazine.ID] = row
	return nil
}

func (repo *repository) FindMagazineIssue(_ context.Context, id int64) (*reference.MagazineIssue, error) {
	issue, ok := repo.state.issues[id]
	if !ok {
		return nil, missing("MagazineIssue", id)
	}
	return &issue, nil
}

func (repo *repository) CreateMagazineIssue(_ context.Context, issue *reference.MagazineIssue) error {
	if _, ok := repo.state.magazines[issue.MagazineID]; !ok {
		return missing("Magazine", issue.MagazineID)
	}
	for _, existing := range repo.state.issues {
		if existing.MagazineID == issue.MagazineID && existing.Issue == issue.Issue {
			return duplicate("magazineissue_magazineid_issue_key")
		}
	}
	issue.ID = repo.state.nextID()
	row := *issue
	row.Magazine = nil
	repo.state.issues[issue.ID] = row
	return nil
}

// # Aggregate Rows

func (repo *repository) InsertReference(_ context.Context, ref *reference.Reference) error {
	ref.ID = repo.state.nextID()
	repo.state.references[ref.ID] = referenceRow{
		ID:        ref.ID,
		Name:      ref.Name,
		Language:  ref.Language,
		TypeID:    ref.TypeID,
		CreatedAt: ref.CreatedAt,
		UpdatedAt: ref.UpdatedAt,
	}
	return nil
}

func (repo *repository) UpdateReference(_ context.Context, ref *reference.Reference) error {
	row, ok := repo.state.references[ref.ID]
	if !ok {
		return missing("Reference", ref.ID)
	}
	row.Name, row.Language, row.TypeID, row.UpdatedAt = ref.Name, ref.Language, ref.TypeID, ref.UpdatedAt
	repo.state.references[ref.ID] = row
	return nil
}

func (repo *repository) DeleteReference(_ context.Context, id int64) (int64, error) {
	if _, ok := repo.state.references[id]; !ok {
		return 0, nil
	}

	delete(repo.state.references, id)
	delete(repo.state.books, id)
	delete(repo.state.features, id)
	delete(repo.state.photos, id)
	delete(repo.state.authorLinks, id)
	delete(repo.state.tagLinks, id)
	delete(repo.state.featureTagLinks, id)
	return 1, nil
}

func (repo *repository) PutBook(_ context.Context, book *reference.Book) error {
	if err := repo.requireReference(book.ReferenceID); err != nil {
		return err
	}
	if book.PublisherID != nil {
		if _, ok := repo.state.publishers[*book.PublisherID]; !ok {
			return missing("Publisher", *book.PublisherID)
		}
	}
	if book.SeriesID != nil {
		if _, ok := repo.state.series[*book.SeriesID]; !ok {
			return missing("Series", *book.SeriesID)
		}
	}

	row := *book
	row.Publisher, row.Series = nil, nil
	repo.state.books[book.ReferenceID] = row
	return nil
}

func (repo *repository) PutMagazineFeature(_ context.Context, feature *reference.MagazineFeature) error {
	if err := repo.requireReference(feature.ReferenceID); err != nil {
		return err
	}
	if _, ok := repo.state.issues[feature.MagazineIssueID]; !ok {
		return missing("MagazineIssue", feature.MagazineIssueID)
	}
	repo.state.features[feature.ReferenceID] = feature.MagazineIssueID
	return nil
}

func (repo *repository) PutPhotoCollection(_ context.Context, photo *reference.PhotoCollection) error {
	if err := repo.requireReference(photo.ReferenceID); err != nil {
		return err
	}
	repo.state.photos[photo.ReferenceID] = *photo
	return nil
}

func (repo *repository) DeleteSubtype(_ context.Context, referenceID int64, kind reference.Type) error {
	switch kind {
	case reference.TypeBook:
		delete(repo.state.books, referenceID)
	case reference.TypeMagazineFeature:
		delete(repo.state.features, referenceID)
		delete(repo.state.featureTagLinks, referenceID)
	case reference.TypePhotoCollection:
		delete(repo.state.photos, referenceID)
	default:
		return apperr.Internal(fmt.Errorf("memstore: unknown type %d", kind))
	}
	return nil
}

func (repo *repository) SetAuthors(_ context.Context, referenceID int64, authorIDs []int64) error {
	return setLinks(repo, repo.state.authorLinks, repo.state.authors, "Author", referenceID, authorIDs)
}

func (repo *repository) SetTags(_ context.Context, referenceID int64, tagIDs []int64) error {
	return setLinks(repo, repo.state.tagLinks, repo.state.tags, "Tag", referenceID, tagIDs)
}

func (repo *repository) SetFeatureTags(_ context.Context, referenceID int64, featureTagIDs []int64) error {
	if _, ok := repo.state.features[referenceID]; !ok && len(featureTagIDs) > 0 {
		return missing("MagazineFeature", referenceID)
	}
	return setLinks(repo, repo.state.featureTagLinks, repo.state.featureTags, "FeatureTag", referenceID, featureTagIDs)
}

// setLinks replaces one reference's ordered join rows after checking every target exists.
func setLinks[T any](repo *repository, links map[int64][]int64, targets map[int64]T, kind string, referenceID int64, ids []int64) error {
	if err := repo.requireReference(referenceID); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := targets[id]; !ok {
			return missing(kind, id)
		}
	}

	if len(ids) == 0 {
		delete(links, referenceID)
		return nil
	}
	links[referenceID] = slices.Clone(ids)
	return nil
}

func (repo *repository) requireReference(id int64) error {
	if _, ok := repo.state.references[id]; !ok {
		return missing("Reference", id)
	}
	return nil
}

// # Eager Loading

func (repo *repository) GetReference(_ context.Context, id int64, opts reference.LoadOptions) (*reference.Reference, error) {
	row, ok := repo.state.references[id]
	if !ok {
		return nil, missing("Reference", id)
	}
	return repo.assemble(row, opts), nil
}

func (repo *repository) ListReferences(_ context.Context, opts reference.LoadOptions) ([]*reference.Reference, error) {
	ids := make([]int64, 0, len(repo.state.references))
	for id := range repo.state.references {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	refs := make([]*reference.Reference, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, repo.assemble(repo.state.references[id], opts))
	}
	return refs, nil
}

// assemble builds a detached aggregate from the stored rows.
func (repo *repository) assemble(row referenceRow, opts reference.LoadOptions) *reference.Reference {
	ref := &reference.Reference{
		ID:        row.ID,
		Name:      row.Name,
		Language:  row.Language,
		TypeID:    row.TypeID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if book, ok := repo.state.books[row.ID]; ok {
		if opts.Publisher && book.PublisherID != nil {
			if publisher, ok := repo.state.publishers[*book.PublisherID]; ok {
				book.Publisher = &publisher
			}
		}
		if opts.Series && book.SeriesID != nil {
			if series, ok := repo.state.series[*book.SeriesID]; ok {
				book.Series = &series
			}
		}
		ref.Body = &book
	}

	if issueID, ok := repo.state.features[row.ID]; ok {
		feature := &reference.MagazineFeature{ReferenceID: row.ID, MagazineIssueID: issueID}
		if opts.MagazineIssue || opts.Magazine {
			if issue, ok := repo.state.issues[issueID]; ok {
				if opts.Magazine {
					if magazine, ok := repo.state.magazines[issue.MagazineID]; ok {
						magazine.Aliases = slices.Clone(magazine.Aliases)
						issue.Magazine = &magazine
					}
				}
				feature.MagazineIssue = &issue
			}
		}
		if opts.FeatureTags {
			feature.FeatureTags = lookup(repo.state.featureTagLinks[row.ID], repo.state.featureTags)
		}
		ref.Body = feature
	}

	if photo, ok := repo.state.photos[row.ID]; ok {
		ref.Body = &photo
	}

	if opts.Authors {
		ref.Authors = lookup(repo.state.authorLinks[row.ID], repo.state.authors)
	}
	if opts.Tags {
		ref.Tags = lookup(repo.state.tagLinks[row.ID], repo.state.tags)
	}

	return ref
}

// lookup resolves ordered ids to rows; the result is never nil.
func lookup[T any](ids []int64, table map[int64]T) []T {
	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		if row, ok := table[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}
