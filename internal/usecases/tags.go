// Package usecases implements one function per user intent (C7, spec.md
// §2), composing the entity model, repository contracts, tag
// authorization, the revision engine, and the duplicate detector. Nothing
// here imports net/http or a SQL driver; a use case takes repositories as
// interfaces and returns entities or tagged errors (spec.md §7).
package usecases

import (
	"context"

	"civicmap/internal/entities"
	"civicmap/internal/repo"
)

// PrepareTags normalizes raw tag input and folds in category ids, per
// spec.md §4.6: category ids are merged into the tag set before
// normalization, then persisted alongside the place's tags (the category
// repo remains the source of truth for which ids are categories).
func PrepareTags(ctx context.Context, categoryRepo repo.CategoryRepo, rawTags, categoryIDs []string) ([]string, error) {
	if len(categoryIDs) > 0 {
		if _, err := categoryRepo.GetCategories(ctx, categoryIDs); err != nil {
			return nil, err
		}
	}
	merged := entities.MergeCategoryIDsIntoTags(categoryIDs, rawTags)
	return entities.NormalizeTags(merged), nil
}

// ListTags returns the shared tag namespace (spec.md §5 "Shared
// resources").
func ListTags(ctx context.Context, tagRepo repo.TagRepo) ([]entities.Tag, error) {
	return tagRepo.AllTags(ctx)
}

// EnsureTagsExist registers every tag in the shared namespace, tolerating
// races via the repo's INSERT OR IGNORE semantics (spec.md §5, §7
// "UniqueViolation ... treated as success").
func EnsureTagsExist(ctx context.Context, tagRepo repo.TagRepo, tags []string) error {
	for _, t := range tags {
		if err := tagRepo.CreateTagIfNotExists(ctx, entities.Tag{ID: t}); err != nil {
			return err
		}
	}
	return nil
}

// ListCategories returns the fixed category set.
func ListCategories(ctx context.Context, categoryRepo repo.CategoryRepo) ([]entities.Category, error) {
	return categoryRepo.AllCategories(ctx)
}
