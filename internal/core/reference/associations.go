// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/pkg/textnorm"
)

// Association error messages.
const (
	msgTagsRequired = "Reference must have at least one tag"
)

// errBlankItem marks a list item that carries neither an id nor a usable name.
var errBlankItem = errors.New("blank association item")

// associationResolver turns "by id or by name" lists into ordered foreign keys,
// creating rows for name-only items inside the caller's transaction.
type associationResolver struct {
	repo Repository
	now  time.Time
}

// authors resolves an author list. An empty list resolves to no authors.
func (resolver associationResolver) authors(ctx context.Context, items []AuthorInput) ([]int64, error) {
	return resolveList(ctx, "authors", items, func(ctx context.Context, item AuthorInput) (int64, error) {
		if item.ID != nil {
			author, err := resolver.repo.FindAuthor(ctx, *item.ID)
			if err != nil {
				return 0, notFoundAs(err, "Author", *item.ID)
			}
			return author.ID, nil
		}
		if textnorm.Blank(item.Name) {
			return 0, errBlankItem
		}

		author := &Author{Name: textnorm.Name(*item.Name), CreatedAt: resolver.now, UpdatedAt: resolver.now}
		if err := resolver.repo.CreateAuthor(ctx, author); err != nil {
			return 0, err
		}
		return author.ID, nil
	})
}

// tags resolves a tag list. The list must not be empty.
func (resolver associationResolver) tags(ctx context.Context, items []TagInput) ([]int64, error) {
	if len(items) == 0 {
		return nil, apperr.EmptyCollection(msgTagsRequired)
	}

	return resolveList(ctx, "tags", items, func(ctx context.Context, item TagInput) (int64, error) {
		if item.ID != nil {
			tag, err := resolver.repo.FindTag(ctx, *item.ID)
			if err != nil {
				return 0, notFoundAs(err, "Tag", *item.ID)
			}
			return tag.ID, nil
		}
		if textnorm.Blank(item.Name) {
			return 0, errBlankItem
		}

		tag := &Tag{Name: textnorm.Name(*item.Name), Type: item.Type, Description: item.Description}
		if err := resolver.repo.CreateTag(ctx, tag); err != nil {
			return 0, err
		}
		return tag.ID, nil
	})
}

// featureTags resolves a feature tag list; emptiness is checked by the caller
// because create and update word the failure differently.
func (resolver associationResolver) featureTags(ctx context.Context, items []FeatureTagInput) ([]int64, error) {
	return resolveList(ctx, "featureTags", items, func(ctx context.Context, item FeatureTagInput) (int64, error) {
		if item.ID != nil {
			tag, err := resolver.repo.FindFeatureTag(ctx, *item.ID)
			if err != nil {
				return 0, notFoundAs(err, "FeatureTag", *item.ID)
			}
			return tag.ID, nil
		}
		if textnorm.Blank(item.Name) {
			return 0, errBlankItem
		}

		tag := &FeatureTag{Name: textnorm.Name(*item.Name), Description: item.Description}
		if err := resolver.repo.CreateFeatureTag(ctx, tag); err != nil {
			return 0, err
		}
		return tag.ID, nil
	})
}

// resolveList resolves items in order and drops repeated ids, keeping the first occurrence.
func resolveList[T any](ctx context.Context, field string, items []T, resolve func(context.Context, T) (int64, error)) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))

	for position, item := range items {
		id, err := resolve(ctx, item)
		if errors.Is(err, errBlankItem) {
			return nil, apperr.MissingRequiredData(fmt.Sprintf("%s[%d] requires an id or a name", field, position))
		}
		if err != nil {
			return nil, err
		}

		if _, duplicate := seen[id]; duplicate {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}

// notFoundAs names the missing row in a NOT_FOUND error, e.g. "Tag 5 not found".
func notFoundAs(err error, kind string, id int64) error {
	if apperr.HasCode(err, apperr.CodeNotFound) {
		notFound := apperr.NotFound(fmt.Sprintf("%s %d", kind, id))
		notFound.Cause = err
		return notFound
	}
	return err
}
