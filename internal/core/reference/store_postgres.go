// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/internal/platform/database/schema"
	"github.com/taibuivan/refcatalog/internal/platform/dberr"
	"github.com/taibuivan/refcatalog/internal/platform/postgres"
)

// psql builds statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresStore implements [Store] on a pgxpool. Reads outside a transaction go
// straight to the pool; [PostgresStore.WithinTx] hands out a transaction-bound repository.
type PostgresStore struct {
	pool *pgxpool.Pool
	postgresRepository
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore returns a fully wired postgres implementation.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, postgresRepository: postgresRepository{db: pool}}
}

// WithinTx implements [Store].
func (store *PostgresStore) WithinTx(context context.Context, fn func(repo Repository) error) error {
	return postgres.WithTx(context, store.pool, func(transaction pgx.Tx) error {
		return fn(&postgresRepository{db: transaction})
	})
}

// postgresRepository implements [Repository] over any pgx querier.
type postgresRepository struct {
	db postgres.Querier
}

// # Query Helpers

// scanOne runs a single-row query and scans it into dest.
func (repository *postgresRepository) scanOne(context context.Context, builder squirrel.Sqlizer, action string, dest ...any) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return apperr.Internal(fmt.Errorf("%s: build query: %w", action, err))
	}
	return dberr.Wrap(repository.db.QueryRow(context, query, args...).Scan(dest...), action)
}

// exec runs a statement and returns the number of affected rows.
func (repository *postgresRepository) exec(context context.Context, builder squirrel.Sqlizer, action string) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("%s: build query: %w", action, err))
	}
	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		return 0, dberr.Wrap(err, action)
	}
	return tag.RowsAffected(), nil
}

// collect runs a multi-row query and maps every row through scan.
func collect[T any](context context.Context, db postgres.Querier, builder squirrel.Sqlizer, action string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: build query: %w", action, err))
	}

	rows, err := db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		items = append(items, item)
	}
	return items, dberr.Wrap(rows.Err(), action)
}

// # Shared Entities

func (repository *postgresRepository) FindAuthor(context context.Context, id int64) (*Author, error) {
	author := &Author{}
	err := repository.scanOne(context,
		psql.Select(schema.Author.Columns()...).From(schema.Author.Table).Where(squirrel.Eq{schema.Author.ID: id}),
		"find_author", &author.ID, &author.Name, &author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (repository *postgresRepository) CreateAuthor(context context.Context, author *Author) error {
	return repository.scanOne(context,
		psql.Insert(schema.Author.Table).
			Columns(schema.Author.Name, schema.Author.CreatedAt, schema.Author.UpdatedAt).
			Values(author.Name, author.CreatedAt, author.UpdatedAt).
			Suffix("RETURNING " + schema.Author.ID),
		"create_author", &author.ID)
}

func (repository *postgresRepository) FindTag(context context.Context, id int64) (*Tag, error) {
	tag := &Tag{}
	err := repository.scanOne(context,
		psql.Select(schema.Tag.Columns()...).From(schema.Tag.Table).Where(squirrel.Eq{schema.Tag.ID: id}),
		"find_tag", &tag.ID, &tag.Name, &tag.Type, &tag.Description)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (repository *postgresRepository) CreateTag(context context.Context, tag *Tag) error {
	return repository.scanOne(context,
		psql.Insert(schema.Tag.Table).
			Columns(schema.Tag.Name, schema.Tag.Type, schema.Tag.Description).
			Values(tag.Name, tag.Type, tag.Description).
			Suffix("RETURNING " + schema.Tag.ID),
		"create_tag", &tag.ID)
}

func (repository *postgresRepository) FindFeatureTag(context context.Context, id int64) (*FeatureTag, error) {
	tag := &FeatureTag{}
	err := repository.scanOne(context,
		psql.Select(schema.FeatureTag.Columns()...).From(schema.FeatureTag.Table).Where(squirrel.Eq{schema.FeatureTag.ID: id}),
		"find_feature_tag", &tag.ID, &tag.Name, &tag.Description)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (repository *postgresRepository) CreateFeatureTag(context context.Context, tag *FeatureTag) error {
	return repository.scanOne(context,
		psql.Insert(schema.FeatureTag.Table).
			Columns(schema.FeatureTag.Name, schema.FeatureTag.Description).
			Values(tag.Name, tag.Description).
			Suffix("RETURNING " + schema.FeatureTag.ID),
		"create_feature_tag", &tag.ID)
}

func (repository *postgresRepository) FindPublisher(context context.Context, id int64) (*Publisher, error) {
	publisher := &Publisher{}
	err := repository.scanOne(context,
		psql.Select(schema.Publisher.Columns()...).From(schema.Publisher.Table).Where(squirrel.Eq{schema.Publisher.ID: id}),
		"find_publisher", &publisher.ID, &publisher.Name, &publisher.Notes)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func (repository *postgresRepository) CreatePublisher(context context.Context, publisher *Publisher) error {
	return repository.scanOne(context,
		psql.Insert(schema.Publisher.Table).
			Columns(schema.Publisher.Name, schema.Publisher.Notes).
			Values(publisher.Name, publisher.Notes).
			Suffix("RETURNING " + schema.Publisher.ID),
		"create_publisher", &publisher.ID)
}

func (repository *postgresRepository) FindSeries(context context.Context, id int64) (*Series, error) {
	series := &Series{}
	err := repository.scanOne(context,
		psql.Select(schema.Series.Columns()...).From(schema.Series.Table).Where(squirrel.Eq{schema.Series.ID: id}).
			Suffix("FOR UPDATE"),
		"find_series", &series.ID, &series.Name, &series.Notes, &series.PublisherID)
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (repository *postgresRepository) CreateSeries(context context.Context, series *Series) error {
	return repository.scanOne(context,
		psql.Insert(schema.Series.Table).
			Columns(schema.Series.Name, schema.Series.Notes, schema.Series.PublisherID).
			Values(series.Name, series.Notes, series.PublisherID).
			Suffix("RETURNING " + schema.Series.ID),
		"create_series", &series.ID)
}

/*
SetSeriesPublisher attaches a publisher to an unowned series.

Description: The UPDATE only matches a series that is unowned or already owned
by publisherID, so two transactions racing to claim the same series cannot both
succeed: the loser re-reads the committed row and matches nothing. Books filed
under the series without a publisher are then given the same one.
*/
func (repository *postgresRepository) SetSeriesPublisher(context context.Context, seriesID, publisherID int64) ([]int64, error) {
	affected, err := repository.exec(context,
		psql.Update(schema.Series.Table).
			Set(schema.Series.PublisherID, publisherID).
			Where(squirrel.Eq{schema.Series.ID: seriesID}).
			Where(squirrel.Or{
				squirrel.Eq{schema.Series.PublisherID: nil},
				squirrel.Eq{schema.Series.PublisherID: publisherID},
			}),
		"set_series_publisher")
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := repository.FindSeries(context, seriesID); err != nil {
			return nil, err
		}
		return nil, ErrSeriesClaimed
	}

	_, err = repository.exec(context,
		psql.Update(schema.Book.Table).
			Set(schema.Book.PublisherID, publisherID).
			Where(squirrel.Eq{schema.Book.SeriesID: seriesID}).
			Where(squirrel.Eq{schema.Book.PublisherID: nil}),
		"adopt_series_publisher")
	if err != nil {
		return nil, err
	}

	return collect(context, repository.db,
		psql.Select(schema.Book.ReferenceID).From(schema.Book.Table).
			Where(squirrel.Eq{schema.Book.SeriesID: seriesID}).
			OrderBy(schema.Book.ReferenceID),
		"list_series_books", func(rows pgx.Rows) (int64, error) {
			var id int64
			err := rows.Scan(&id)
			return id, err
		})
}

func (repository *postgresRepository) FindMagazine(context context.Context, id int64) (*Magazine, error) {
	magazine := &Magazine{}
	err := repository.scanOne(context,
		psql.Select(schema.Magazine.Columns()...).From(schema.Magazine.Table).Where(squirrel.Eq{schema.Magazine.ID: id}),
		"find_magazine", &magazine.ID, &magazine.Name, &magazine.Language, &magazine.Aliases,
		&magazine.Notes, &magazine.CreatedAt, &magazine.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return magazine, nil
}

func (repository *postgresRepository) CreateMagazine(context context.Context, magazine *Magazine) error {
	return repository.scanOne(context,
		psql.Insert(schema.Magazine.Table).
			Columns(schema.Magazine.Name, schema.Magazine.Language, schema.Magazine.Aliases,
				schema.Magazine.Notes, schema.Magazine.CreatedAt, schema.Magazine.UpdatedAt).
			Values(magazine.Name, magazine.Language, magazine.Aliases,
				magazine.Notes, magazine.CreatedAt, magazine.UpdatedAt).
			Suffix("RETURNING " + schema.Magazine.ID),
		"create_magazine", &magazine.ID)
}

func (repository *postgresRepository) FindMagazineIssue(context context.Context, id int64) (*MagazineIssue, error) {
	issue := &MagazineIssue{}
	err := repository.scanOne(context,
		psql.Select(schema.MagazineIssue.Columns()...).From(schema.MagazineIssue.Table).Where(squirrel.Eq{schema.MagazineIssue.ID: id}),
		"find_magazine_issue", &issue.ID, &issue.Issue, &issue.MagazineID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (repository *postgresRepository) CreateMagazineIssue(context context.Context, issue *MagazineIssue) error {
	return repository.scanOne(context,
		psql.Insert(schema.MagazineIssue.Table).
			Columns(schema.MagazineIssue.Issue, schema.MagazineIssue.MagazineID,
				schema.MagazineIssue.CreatedAt, schema.MagazineIssue.UpdatedAt).
			Values(issue.Issue, issue.MagazineID, issue.CreatedAt, issue.UpdatedAt).
			Suffix("RETURNING " + schema.MagazineIssue.ID),
		"create_magazine_issue", &issue.ID)
}

// # Aggregate Rows

func (repository *postgresRepository) InsertReference(context context.Context, ref *Reference) error {
	return repository.scanOne(context,
		psql.Insert(schema.Reference.Table).
			Columns(schema.Reference.Name, schema.Reference.Language, schema.Reference.ReferenceTypeID,
				schema.Reference.CreatedAt, schema.Reference.UpdatedAt).
			Values(ref.Name, ref.Language, int(ref.TypeID), ref.CreatedAt, ref.UpdatedAt).
			Suffix("RETURNING " + schema.Reference.ID),
		"insert_reference", &ref.ID)
}

func (repository *postgresRepository) UpdateReference(context context.Context, ref *Reference) error {
	affected, err := repository.exec(context,
		psql.Update(schema.Reference.Table).
			Set(schema.Reference.Name, ref.Name).
			Set(schema.Reference.Language, ref.Language).
			Set(schema.Reference.ReferenceTypeID, int(ref.TypeID)).
			Set(schema.Reference.UpdatedAt, ref.UpdatedAt).
			Where(squirrel.Eq{schema.Reference.ID: ref.ID}),
		"update_reference")
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound(fmt.Sprintf("Reference %d", ref.ID))
	}
	return nil
}

/*
DeleteReference removes a reference row.

Description: Sub-type rows and join rows reference catalog.reference with
ON DELETE CASCADE, so one statement removes the whole aggregate.

Returns:
  - int64: number of deleted references (0 or 1)
  - error: execution failures
*/
func (repository *postgresRepository) DeleteReference(context context.Context, id int64) (int64, error) {
	return repository.exec(context,
		psql.Delete(schema.Reference.Table).Where(squirrel.Eq{schema.Reference.ID: id}),
		"delete_reference")
}

func (repository *postgresRepository) PutBook(context context.Context, book *Book) error {
	_, err := repository.exec(context,
		psql.Insert(schema.Book.Table).
			Columns(schema.Book.Columns()...).
			Values(book.ReferenceID, book.ISBN, book.SeriesNumber, book.PublisherID, book.SeriesID).
			Suffix(upsertSuffix(schema.Book.ReferenceID, schema.Book.ISBN, schema.Book.SeriesNumber,
				schema.Book.PublisherID, schema.Book.SeriesID)),
		"put_book")
	return err
}

func (repository *postgresRepository) PutMagazineFeature(context context.Context, feature *MagazineFeature) error {
	_, err := repository.exec(context,
		psql.Insert(schema.MagazineFeature.Table).
			Columns(schema.MagazineFeature.ReferenceID, schema.MagazineFeature.MagazineIssueID).
			Values(feature.ReferenceID, feature.MagazineIssueID).
			Suffix(upsertSuffix(schema.MagazineFeature.ReferenceID, schema.MagazineFeature.MagazineIssueID)),
		"put_magazine_feature")
	return err
}

func (repository *postgresRepository) PutPhotoCollection(context context.Context, photo *PhotoCollection) error {
	_, err := repository.exec(context,
		psql.Insert(schema.PhotoCollection.Table).
			Columns(schema.PhotoCollection.ReferenceID, schema.PhotoCollection.Location, schema.PhotoCollection.Media).
			Values(photo.ReferenceID, photo.Location, photo.Media).
			Suffix(upsertSuffix(schema.PhotoCollection.ReferenceID, schema.PhotoCollection.Location, schema.PhotoCollection.Media)),
		"put_photo_collection")
	return err
}

// upsertSuffix renders "ON CONFLICT (key) DO UPDATE SET col = EXCLUDED.col, ...".
func upsertSuffix(key string, columns ...string) string {
	suffix := "ON CONFLICT (" + key + ") DO UPDATE SET "
	for i, column := range columns {
		if i > 0 {
			suffix += ", "
		}
		suffix += column + " = EXCLUDED." + column
	}
	return suffix
}

func (repository *postgresRepository) DeleteSubtype(context context.Context, referenceID int64, kind Type) error {
	var builder squirrel.DeleteBuilder

	switch kind {
	case TypeBook:
		builder = psql.Delete(schema.Book.Table).Where(squirrel.Eq{schema.Book.ReferenceID: referenceID})
	case TypeMagazineFeature:
		// feature tag links cascade from the feature row
		builder = psql.Delete(schema.MagazineFeature.Table).Where(squirrel.Eq{schema.MagazineFeature.ReferenceID: referenceID})
	case TypePhotoCollection:
		builder = psql.Delete(schema.PhotoCollection.Table).Where(squirrel.Eq{schema.PhotoCollection.ReferenceID: referenceID})
	default:
		return apperr.Internal(fmt.Errorf("delete_subtype: unknown type %d", kind))
	}

	_, err := repository.exec(context, builder, "delete_subtype")
	return err
}

func (repository *postgresRepository) SetAuthors(context context.Context, referenceID int64, authorIDs []int64) error {
	t := schema.AuthorReference
	return repository.updateJunction(context, t.Table, t.ReferenceID, t.AuthorID, t.Position, referenceID, authorIDs)
}

func (repository *postgresRepository) SetTags(context context.Context, referenceID int64, tagIDs []int64) error {
	t := schema.TagReference
	return repository.updateJunction(context, t.Table, t.ReferenceID, t.TagID, t.Position, referenceID, tagIDs)
}

func (repository *postgresRepository) SetFeatureTags(context context.Context, referenceID int64, featureTagIDs []int64) error {
	t := schema.MagazineFeatureTag
	return repository.updateJunction(context, t.Table, t.ReferenceID, t.FeatureTagID, t.Position, referenceID, featureTagIDs)
}

/*
updateJunction replaces the ordered join rows of one reference.

Description: Clears the previous rows, then queues one INSERT per value in a
pgx.Batch, recording each value's position so reads return the input order.
*/
func (repository *postgresRepository) updateJunction(context context.Context, table, idCol, valCol, positionCol string, id int64, vals []int64) error {

	// Record Deletion Phase
	if _, err := repository.db.Exec(context, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, idCol), id); err != nil {
		return dberr.Wrap(err, "clear_"+table)
	}

	if len(vals) == 0 {
		return nil
	}

	// Batch Execution Setup
	insQuery := fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)", table, idCol, valCol, positionCol)
	batch := &pgx.Batch{}
	for position, value := range vals {
		batch.Queue(insQuery, id, value, position)
	}

	// Batch Dispatch
	response := repository.db.SendBatch(context, batch)
	if err := response.Close(); err != nil {
		return dberr.Wrap(err, "fill_"+table)
	}

	return nil
}

// # Eager Loading

func (repository *postgresRepository) GetReference(context context.Context, id int64, opts LoadOptions) (*Reference, error) {
	refs, err := repository.selectReferences(context, squirrel.Eq{schema.Reference.ID: id})
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("Reference %d", id))
	}

	if err := repository.hydrate(context, refs, opts); err != nil {
		return nil, err
	}
	return refs[0], nil
}

func (repository *postgresRepository) ListReferences(context context.Context, opts LoadOptions) ([]*Reference, error) {
	refs, err := repository.selectReferences(context, nil)
	if err != nil {
		return nil, err
	}
	if err := repository.hydrate(context, refs, opts); err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []*Reference{}
	}
	return refs, nil
}

func (repository *postgresRepository) selectReferences(context context.Context, where squirrel.Sqlizer) ([]*Reference, error) {
	builder := psql.Select(schema.Reference.Columns()...).From(schema.Reference.Table).OrderBy(schema.Reference.ID)
	if where != nil {
		builder = builder.Where(where)
	}

	return collect(context, repository.db, builder, "select_references", func(rows pgx.Rows) (*Reference, error) {
		ref := &Reference{}
		var typeID int
		err := rows.Scan(&ref.ID, &ref.Name, &ref.Language, &typeID, &ref.CreatedAt, &ref.UpdatedAt)
		ref.TypeID = Type(typeID)
		return ref, err
	})
}

/*
hydrate attaches sub-type rows and the requested associations to refs.

Description: Issues one query per association kind for the whole batch
(WHERE ... IN), never one per reference, then stitches the results in memory.
*/
func (repository *postgresRepository) hydrate(context context.Context, refs []*Reference, opts LoadOptions) error {
	if len(refs) == 0 {
		return nil
	}

	ids := make([]int64, len(refs))
	byID := make(map[int64]*Reference, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
		byID[ref.ID] = ref
	}

	if err := repository.loadBodies(context, ids, byID); err != nil {
		return err
	}
	if err := repository.loadBookAssociations(context, refs, opts); err != nil {
		return err
	}
	if err := repository.loadFeatureAssociations(context, refs, ids, opts); err != nil {
		return err
	}

	if opts.Authors {
		if err := repository.loadAuthors(context, ids, byID); err != nil {
			return err
		}
	}
	if opts.Tags {
		if err := repository.loadTags(context, ids, byID); err != nil {
			return err
		}
	}
	return nil
}

func (repository *postgresRepository) loadBodies(context context.Context, ids []int64, byID map[int64]*Reference) error {
	books, err := collect(context, repository.db,
		psql.Select(schema.Book.Columns()...).From(schema.Book.Table).Where(squirrel.Eq{schema.Book.ReferenceID: ids}),
		"load_books", func(rows pgx.Rows) (*Book, error) {
			book := &Book{}
			err := rows.Scan(&book.ReferenceID, &book.ISBN, &book.SeriesNumber, &book.PublisherID, &book.SeriesID)
			return book, err
		})
	if err != nil {
		return err
	}

	features, err := collect(context, repository.db,
		psql.Select(schema.MagazineFeature.ReferenceID, schema.MagazineFeature.MagazineIssueID).
			From(schema.MagazineFeature.Table).Where(squirrel.Eq{schema.MagazineFeature.ReferenceID: ids}),
		"load_magazine_features", func(rows pgx.Rows) (*MagazineFeature, error) {
			feature := &MagazineFeature{}
			err := rows.Scan(&feature.ReferenceID, &feature.MagazineIssueID)
			return feature, err
		})
	if err != nil {
		return err
	}

	photos, err := collect(context, repository.db,
		psql.Select(schema.PhotoCollection.ReferenceID, schema.PhotoCollection.Location, schema.PhotoCollection.Media).
			From(schema.PhotoCollection.Table).Where(squirrel.Eq{schema.PhotoCollection.ReferenceID: ids}),
		"load_photo_collections", func(rows pgx.Rows) (*PhotoCollection, error) {
			photo := &PhotoCollection{}
			err := rows.Scan(&photo.ReferenceID, &photo.Location, &photo.Media)
			return photo, err
		})
	if err != nil {
		return err
	}

	for _, book := range books {
		byID[book.ReferenceID].Body = book
	}
	for _, feature := range features {
		byID[feature.ReferenceID].Body = feature
	}
	for _, photo := range photos {
		byID[photo.ReferenceID].Body = photo
	}
	return nil
}

func (repository *postgresRepository) loadBookAssociations(context context.Context, refs []*Reference, opts LoadOptions) error {
	if !opts.Publisher && !opts.Series {
		return nil
	}

	var publisherIDs, seriesIDs []int64
	for _, ref := range refs {
		if book, ok := ref.Body.(*Book); ok {
			if book.PublisherID != nil {
				publisherIDs = append(publisherIDs, *book.PublisherID)
			}
			if book.SeriesID != nil {
				seriesIDs = append(seriesIDs, *book.SeriesID)
			}
		}
	}

	publishers := map[int64]*Publisher{}
	if opts.Publisher && len(publisherIDs) > 0 {
		rows, err := collect(context, repository.db,
			psql.Select(schema.Publisher.Columns()...).From(schema.Publisher.Table).Where(squirrel.Eq{schema.Publisher.ID: publisherIDs}),
			"load_publishers", func(rows pgx.Rows) (*Publisher, error) {
				publisher := &Publisher{}
				err := rows.Scan(&publisher.ID, &publisher.Name, &publisher.Notes)
				return publisher, err
			})
		if err != nil {
			return err
		}
		for _, publisher := range rows {
			publishers[publisher.ID] = publisher
		}
	}

	series := map[int64]*Series{}
	if opts.Series && len(seriesIDs) > 0 {
		rows, err := collect(context, repository.db,
			psql.Select(schema.Series.Columns()...).From(schema.Series.Table).Where(squirrel.Eq{schema.Series.ID: seriesIDs}),
			"load_series", func(rows pgx.Rows) (*Series, error) {
				item := &Series{}
				err := rows.Scan(&item.ID, &item.Name, &item.Notes, &item.PublisherID)
				return item, err
			})
		if err != nil {
			return err
		}
		for _, item := range rows {
			series[item.ID] = item
		}
	}

	for _, ref := range refs {
		book, ok := ref.Body.(*Book)
		if !ok {
			continue
		}
		if book.PublisherID != nil {
			book.Publisher = publishers[*book.PublisherID]
		}
		if book.SeriesID != nil {
			book.Series = series[*book.SeriesID]
		}
	}
	return nil
}

func (repository *postgresRepository) loadFeatureAssociations(context context.Context, refs []*Reference, ids []int64, opts LoadOptions) error {
	loadIssues := opts.MagazineIssue || opts.Magazine
	if !loadIssues && !opts.FeatureTags {
		return nil
	}

	features := map[int64]*MagazineFeature{}
	var issueIDs []int64
	for _, ref := range refs {
		if feature, ok := ref.Body.(*MagazineFeature); ok {
			features[ref.ID] = feature
			issueIDs = append(issueIDs, feature.MagazineIssueID)
		}
	}
	if len(features) == 0 {
		return nil
	}

	if loadIssues {
		issues, err := collect(context, repository.db,
			psql.Select(schema.MagazineIssue.Columns()...).From(schema.MagazineIssue.Table).Where(squirrel.Eq{schema.MagazineIssue.ID: issueIDs}),
			"load_magazine_issues", func(rows pgx.Rows) (*MagazineIssue, error) {
				issue := &MagazineIssue{}
				err := rows.Scan(&issue.ID, &issue.Issue, &issue.MagazineID, &issue.CreatedAt, &issue.UpdatedAt)
				return issue, err
			})
		if err != nil {
			return err
		}

		issuesByID := make(map[int64]*MagazineIssue, len(issues))
		var magazineIDs []int64
		for _, issue := range issues {
			issuesByID[issue.ID] = issue
			magazineIDs = append(magazineIDs, issue.MagazineID)
		}

		if opts.Magazine && len(magazineIDs) > 0 {
			magazines, err := collect(context, repository.db,
				psql.Select(schema.Magazine.Columns()...).From(schema.Magazine.Table).Where(squirrel.Eq{schema.Magazine.ID: magazineIDs}),
				"load_magazines", func(rows pgx.Rows) (*Magazine, error) {
					magazine := &Magazine{}
					err := rows.Scan(&magazine.ID, &magazine.Name, &magazine.Language, &magazine.Aliases,
						&magazine.Notes, &magazine.CreatedAt, &magazine.UpdatedAt)
					return magazine, err
				})
			if err != nil {
				return err
			}
			magazinesByID := make(map[int64]*Magazine, len(magazines))
			for _, magazine := range magazines {
				magazinesByID[magazine.ID] = magazine
			}
			for _, issue := range issues {
				issue.Magazine = magazinesByID[issue.MagazineID]
			}
		}

		// Each feature gets its own copy so two features never share one issue pointer.
		for _, feature := range features {
			if issue, ok := issuesByID[feature.MagazineIssueID]; ok {
				copied := *issue
				feature.MagazineIssue = &copied
			}
		}
	}

	if opts.FeatureTags {
		link, tag := schema.MagazineFeatureTag, schema.FeatureTag
		type row struct {
			referenceID int64
			tag         FeatureTag
		}
		rows, err := collect(context, repository.db,
			psql.Select("l."+link.ReferenceID, "t."+tag.ID, "t."+tag.Name, "t."+tag.Description).
				From(link.Table+" l").
				Join(fmt.Sprintf("%s t ON t.%s = l.%s", tag.Table, tag.ID, link.FeatureTagID)).
				Where(squirrel.Eq{"l." + link.ReferenceID: ids}).
				OrderBy("l."+link.ReferenceID, "l."+link.Position),
			"load_feature_tags", func(rows pgx.Rows) (row, error) {
				var item row
				err := rows.Scan(&item.referenceID, &item.tag.ID, &item.tag.Name, &item.tag.Description)
				return item, err
			})
		if err != nil {
			return err
		}

		for _, feature := range features {
			feature.FeatureTags = []FeatureTag{}
		}
		for _, item := range rows {
			if feature, ok := features[item.referenceID]; ok {
				feature.FeatureTags = append(feature.FeatureTags, item.tag)
			}
		}
	}

	return nil
}

func (repository *postgresRepository) loadAuthors(context context.Context, ids []int64, byID map[int64]*Reference) error {
	link, author := schema.AuthorReference, schema.Author
	type row struct {
		referenceID int64
		author      Author
	}

	rows, err := collect(context, repository.db,
		psql.Select("l."+link.ReferenceID, "a."+author.ID, "a."+author.Name, "a."+author.CreatedAt, "a."+author.UpdatedAt).
			From(link.Table+" l").
			Join(fmt.Sprintf("%s a ON a.%s = l.%s", author.Table, author.ID, link.AuthorID)).
			Where(squirrel.Eq{"l." + link.ReferenceID: ids}).
			OrderBy("l."+link.ReferenceID, "l."+link.Position),
		"load_authors", func(rows pgx.Rows) (row, error) {
			var item row
			err := rows.Scan(&item.referenceID, &item.author.ID, &item.author.Name, &item.author.CreatedAt, &item.author.UpdatedAt)
			return item, err
		})
	if err != nil {
		return err
	}

	for _, ref := range byID {
		ref.Authors = []Author{}
	}
	for _, item := range rows {
		byID[item.referenceID].Authors = append(byID[item.referenceID].Authors, item.author)
	}
	return nil
}

func (repository *postgresRepository) loadTags(context context.Context, ids []int64, byID map[int64]*Reference) error {
	link, tag := schema.TagReference, schema.Tag
	type row struct {
		referenceID int64
		tag         Tag
	}

	rows, err := collect(context, repository.db,
		psql.Select("l."+link.ReferenceID, "t."+tag.ID, "t."+tag.Name, "t."+tag.Type, "t."+tag.Description).
			From(link.Table+" l").
			Join(fmt.Sprintf("%s t ON t.%s = l.%s", tag.Table, tag.ID, link.TagID)).
			Where(squirrel.Eq{"l." + link.ReferenceID: ids}).
			OrderBy("l."+link.ReferenceID, "l."+link.Position),
		"load_tags", func(rows pgx.Rows) (row, error) {
			var item row
			err := rows.Scan(&item.referenceID, &item.tag.ID, &item.tag.Name, &item.tag.Type, &item.tag.Description)
			return item, err
		})
	if err != nil {
		return err
	}

	for _, ref := range byID {
		ref.Tags = []Tag{}
	}
	for _, item := range rows {
		byID[item.referenceID].Tags = append(byID[item.referenceID].Tags, item.tag)
	}
	return nil
}
