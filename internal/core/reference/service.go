// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/internal/platform/ctxutil"
	"github.com/taibuivan/refcatalog/internal/platform/validate"
)

const (
	maxNameLength     = 500
	maxLanguageLength = 64
)

// # Service Layer

// Service is the Reference aggregate engine.
//
// It selects the sub-type resolver by referenceTypeId, resolves author and tag
// lists, and performs every multi-row write inside one [Store.WithinTx] call.
type Service struct {
	store Store
	cache Cache
	now   func() time.Time
}

// Option configures a [Service].
type Option func(*Service)

// WithCache enables the serialized-view read cache.
func WithCache(cache Cache) Option {
	return func(service *Service) {
		if cache != nil {
			service.cache = cache
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.now = now
	}
}

// NewService constructs the engine over a store.
func NewService(store Store, options ...Option) *Service {
	service := &Service{
		store: store,
		cache: NoopCache{},
		now: func() time.Time {
			// Postgres keeps microseconds; truncating keeps reads equal to what was written.
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Create

/*
CreateReference resolves and persists a new Reference aggregate.

Description: The payload is validated, tags must be non-empty, the sub-type
payload matching referenceTypeId is resolved (creating publishers, series,
magazines, issues, authors and tags as requested), and every row is written in
one transaction.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *Reference: the stored aggregate with every association loaded
  - error: VALIDATION_ERROR or one of the resolution errors
*/
func (service *Service) CreateReference(ctx context.Context, input CreateInput) (*Reference, error) {
	logger := ctxutil.GetLogger(ctx)

	payload := subtypePayload{book: input.Book, feature: input.MagazineFeature, photo: input.PhotoCollection}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, maxNameLength).
		OptionalMaxLen(FieldLanguage, input.Language, maxLanguageLength).
		Custom(FieldReferenceTypeID, !input.ReferenceTypeID.Valid(), referenceTypeMessage)
	checkIDs(validator, input.Authors, input.Tags, payload)
	checkLengths(validator, input.Authors, input.Tags, payload)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if len(input.Tags) == 0 {
		return nil, apperr.EmptyCollection(msgTagsRequired)
	}

	if err := payload.guard(input.ReferenceTypeID); err != nil {
		return nil, err
	}

	now := service.now()
	var id int64

	shared := &sharedWrites{}
	err := service.store.WithinTx(ctx, func(tx Repository) error {
		repo := shared.bind(tx)
		associations := associationResolver{repo: repo, now: now}

		tagIDs, err := associations.tags(ctx, input.Tags)
		if err != nil {
			return err
		}
		authorIDs, err := associations.authors(ctx, input.Authors)
		if err != nil {
			return err
		}

		body, err := createBody(ctx, repo, associations, input.ReferenceTypeID, payload)
		if err != nil {
			return err
		}

		ref := &Reference{
			Name:      strings.TrimSpace(input.Name),
			Language:  normalizeLanguage(input.Language),
			TypeID:    input.ReferenceTypeID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.InsertReference(ctx, ref); err != nil {
			return err
		}
		if err := attachBody(ctx, repo, ref.ID, body); err != nil {
			return err
		}
		if err := repo.SetAuthors(ctx, ref.ID, authorIDs); err != nil {
			return err
		}
		if err := repo.SetTags(ctx, ref.ID, tagIDs); err != nil {
			return err
		}

		id = ref.ID
		return nil
	})
	if err != nil {
		logger.DebugContext(ctx, "reference_create_rejected", slog.Any("error", err))
		return nil, err
	}

	service.invalidate(ctx, shared.touched...)

	logger.InfoContext(ctx, "reference_created",
		slog.Int64("reference_id", id),
		slog.String("type", input.ReferenceTypeID.String()),
	)

	return service.store.GetReference(ctx, id, All())
}

// # Update

/*
UpdateReferenceByID applies a partial payload to an existing Reference.

Description: Name and language change independently. Given author or tag lists
replace the stored sets. A changed referenceTypeId detaches the old sub-type row
and resolves the new sub-type as on create; otherwise the sub-type payload, if
any, goes to the matching resolver's update path. An empty payload is a no-op
and leaves updatedAt untouched.

Returns:
  - *Reference: the stored aggregate with every association loaded, or nil if no reference has the id
  - error: VALIDATION_ERROR or one of the resolution errors
*/
func (service *Service) UpdateReferenceByID(ctx context.Context, id int64, input UpdateInput) (*Reference, error) {
	logger := ctxutil.GetLogger(ctx)

	if input.IsEmpty() {
		ref, err := service.store.GetReference(ctx, id, All())
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, nil
		}
		return ref, err
	}

	payload := subtypePayload{book: input.Book, feature: input.MagazineFeature, photo: input.PhotoCollection}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, maxNameLength)
	}
	validator.OptionalMaxLen(FieldLanguage, input.Language, maxLanguageLength)
	if input.ReferenceTypeID != nil {
		validator.Custom(FieldReferenceTypeID, !input.ReferenceTypeID.Valid(), referenceTypeMessage)
	}
	checkIDs(validator, input.Authors, input.Tags, payload)
	checkLengths(validator, input.Authors, input.Tags, payload)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := service.now()

	var (
		found    = true
		migrated bool
		from, to Type
	)

	shared := &sharedWrites{}
	err := service.store.WithinTx(ctx, func(tx Repository) error {
		repo := shared.bind(tx)
		current, err := repo.GetReference(ctx, id, LoadOptions{})
		if apperr.HasCode(err, apperr.CodeNotFound) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}

		from, to = current.TypeID, current.TypeID
		if input.ReferenceTypeID != nil {
			to = *input.ReferenceTypeID
		}
		if err := payload.guard(to); err != nil {
			return err
		}

		associations := associationResolver{repo: repo, now: now}

		if input.Tags != nil {
			tagIDs, err := associations.tags(ctx, input.Tags)
			if err != nil {
				return err
			}
			if err := repo.SetTags(ctx, id, tagIDs); err != nil {
				return err
			}
		}
		if input.Authors != nil {
			authorIDs, err := associations.authors(ctx, input.Authors)
			if err != nil {
				return err
			}
			if err := repo.SetAuthors(ctx, id, authorIDs); err != nil {
				return err
			}
		}

		if to != from {
			// Resolve first so a rejected payload leaves the old sub-type in place.
			body, err := createBody(ctx, repo, associations, to, payload)
			if err != nil {
				return err
			}
			if err := repo.DeleteSubtype(ctx, id, from); err != nil {
				return err
			}
			if err := attachBody(ctx, repo, id, body); err != nil {
				return err
			}
			migrated = true
		} else if err := updateBody(ctx, repo, associations, current.Body, payload); err != nil {
			return err
		}

		if input.Name != nil {
			current.Name = strings.TrimSpace(*input.Name)
		}
		if input.Language != nil {
			current.Language = normalizeLanguage(input.Language)
		}
		current.TypeID = to
		current.UpdatedAt = now

		return repo.UpdateReference(ctx, current)
	})
	if err != nil {
		logger.DebugContext(ctx, "reference_update_rejected", slog.Int64("reference_id", id), slog.Any("error", err))
		return nil, err
	}
	if !found {
		return nil, nil
	}

	service.invalidate(ctx, append(shared.touched, id)...)

	if migrated {
		logger.InfoContext(ctx, "reference_subtype_migrated",
			slog.Int64("reference_id", id),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}
	logger.InfoContext(ctx, "reference_updated", slog.Int64("reference_id", id))

	return service.store.GetReference(ctx, id, All())
}

// # Delete

/*
DeleteReferenceByID removes a Reference and everything it owns.

Returns:
  - int64: 1 if the reference existed, 0 otherwise
  - error: storage failures only
*/
func (service *Service) DeleteReferenceByID(ctx context.Context, id int64) (int64, error) {
	var count int64

	err := service.store.WithinTx(ctx, func(repo Repository) error {
		deleted, err := repo.DeleteReference(ctx, id)
		count = deleted
		return err
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		service.invalidate(ctx, id)
		ctxutil.GetLogger(ctx).InfoContext(ctx, "reference_deleted", slog.Int64("reference_id", id))
	}

	return count, nil
}

// # Reads

// GetAllReferences returns every reference with the requested associations.
func (service *Service) GetAllReferences(ctx context.Context, opts LoadOptions) ([]*Reference, error) {
	return service.store.ListReferences(ctx, opts)
}

// GetReferenceByID returns one reference with the requested associations.
func (service *Service) GetReferenceByID(ctx context.Context, id int64, opts LoadOptions) (*Reference, error) {
	ref, err := service.store.GetReference(ctx, id, opts)
	if err != nil {
		return nil, notFoundAs(err, "Reference", id)
	}
	return ref, nil
}

// GetReferenceView returns the serialized form of one reference, served from the cache when possible.
func (service *Service) GetReferenceView(ctx context.Context, id int64, opts LoadOptions) (*View, error) {
	if view, ok := service.cache.Get(ctx, id, opts); ok {
		return view, nil
	}

	ref, err := service.GetReferenceByID(ctx, id, opts)
	if err != nil {
		return nil, err
	}

	view := Serialize(ref)
	service.cache.Set(ctx, id, opts, view)
	return view, nil
}

// # Cache Coherence

// sharedWrites wraps a transaction's repository and records the references
// whose views embed a shared row changed by the transaction.
type sharedWrites struct {
	Repository
	touched []int64
}

// bind points the recorder at a fresh transaction.
func (writes *sharedWrites) bind(tx Repository) Repository {
	writes.Repository, writes.touched = tx, nil
	return writes
}

func (writes *sharedWrites) SetSeriesPublisher(ctx context.Context, seriesID, publisherID int64) ([]int64, error) {
	referenceIDs, err := writes.Repository.SetSeriesPublisher(ctx, seriesID, publisherID)
	writes.touched = append(writes.touched, referenceIDs...)
	return referenceIDs, err
}

// invalidate drops the cached views of every listed reference once.
func (service *Service) invalidate(ctx context.Context, ids ...int64) {
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		service.cache.Invalidate(ctx, id)
	}
}

// # Sub-type Dispatch

var referenceTypeMessage = fmt.Sprintf("Must be %d (%s), %d (%s) or %d (%s)",
	TypeBook, TypeBook, TypeMagazineFeature, TypeMagazineFeature, TypePhotoCollection, TypePhotoCollection)

// subtypePayload groups the three optional sub-type payloads of a request.
type subtypePayload struct {
	book    *BookInput
	feature *MagazineFeatureInput
	photo   *PhotoCollectionInput
}

// guard rejects sub-type data that does not belong to kind.
func (payload subtypePayload) guard(kind Type) error {
	given := []struct {
		kind    Type
		present bool
	}{
		{TypeBook, payload.book != nil},
		{TypeMagazineFeature, payload.feature != nil},
		{TypePhotoCollection, payload.photo != nil},
	}

	for _, candidate := range given {
		if candidate.present && candidate.kind != kind {
			return apperr.InvalidCombination(fmt.Sprintf("`%s` data is not allowed for referenceTypeId %d", candidate.kind, kind))
		}
	}
	return nil
}

// pendingBody is a resolved sub-type row waiting for its ReferenceID.
type pendingBody struct {
	body          Body
	featureTagIDs []int64
}

// createBody runs the create path of the resolver selected by kind.
func createBody(ctx context.Context, repo Repository, associations associationResolver, kind Type, payload subtypePayload) (pendingBody, error) {
	switch kind {
	case TypeBook:
		book, err := bookResolver{repo: repo}.create(ctx, payload.book)
		if err != nil {
			return pendingBody{}, err
		}
		return pendingBody{body: book}, nil

	case TypeMagazineFeature:
		resolved, err := magazineResolver{repo: repo, associations: associations}.create(ctx, payload.feature)
		if err != nil {
			return pendingBody{}, err
		}
		return pendingBody{body: resolved.Feature, featureTagIDs: resolved.FeatureTagIDs}, nil

	case TypePhotoCollection:
		photo, err := createPhotoCollection(payload.photo)
		if err != nil {
			return pendingBody{}, err
		}
		return pendingBody{body: photo}, nil
	}

	return pendingBody{}, apperr.Internal(fmt.Errorf("reference: unknown type %d", kind))
}

// attachBody writes a freshly resolved sub-type row under referenceID.
func attachBody(ctx context.Context, repo Repository, referenceID int64, pending pendingBody) error {
	switch body := pending.body.(type) {
	case *Book:
		body.ReferenceID = referenceID
		return repo.PutBook(ctx, body)

	case *MagazineFeature:
		body.ReferenceID = referenceID
		if err := repo.PutMagazineFeature(ctx, body); err != nil {
			return err
		}
		return repo.SetFeatureTags(ctx, referenceID, pending.featureTagIDs)

	case *PhotoCollection:
		body.ReferenceID = referenceID
		return repo.PutPhotoCollection(ctx, body)
	}

	return apperr.Internal(fmt.Errorf("reference: unknown body %T", pending.body))
}

// updateBody delegates the payload for the current sub-type to its update path.
// Without a payload for that sub-type the stored row is left as is.
func updateBody(ctx context.Context, repo Repository, associations associationResolver, current Body, payload subtypePayload) error {
	switch body := current.(type) {
	case *Book:
		if payload.book == nil {
			return nil
		}
		book, err := bookResolver{repo: repo}.update(ctx, body, payload.book)
		if err != nil {
			return err
		}
		return repo.PutBook(ctx, book)

	case *MagazineFeature:
		if payload.feature == nil {
			return nil
		}
		resolved, err := magazineResolver{repo: repo, associations: associations}.update(ctx, body, payload.feature)
		if err != nil {
			return err
		}
		if err := repo.PutMagazineFeature(ctx, resolved.Feature); err != nil {
			return err
		}
		if resolved.FeatureTagIDs == nil {
			return nil
		}
		return repo.SetFeatureTags(ctx, body.ReferenceID, resolved.FeatureTagIDs)

	case *PhotoCollection:
		if payload.photo == nil {
			return nil
		}
		photo, err := updatePhotoCollection(body, payload.photo)
		if err != nil {
			return err
		}
		return repo.PutPhotoCollection(ctx, photo)

	case nil:
		return apperr.Internal(fmt.Errorf("reference: sub-type row missing"))
	}

	return apperr.Internal(fmt.Errorf("reference: unknown body %T", current))
}

// normalizeLanguage trims a language tag; an empty tag clears the field.
func normalizeLanguage(language *string) *string {
	if language == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*language)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
