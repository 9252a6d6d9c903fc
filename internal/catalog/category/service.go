// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/taibuivan/shopdesk/internal/platform/validate"
	"github.com/taibuivan/shopdesk/pkg/pagination"
	"github.com/taibuivan/shopdesk/pkg/pointer"
	"github.com/taibuivan/shopdesk/pkg/slug"
)

// # Service Layer

// Service enforces the category rules on top of a [Repository].
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new category [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Retrieval

// ListRoots returns one page of root categories with children, and the root total.
func (service *Service) ListRoots(context context.Context, params pagination.Params) ([]*Category, int, error) {
	return service.repo.ListRoots(context, params.Limit, params.Offset())
}

// ListParents returns every category that may be assigned as a parent.
func (service *Service) ListParents(context context.Context) ([]*Category, error) {
	return service.repo.ListParents(context)
}

// GetCategory retrieves a single category.
func (service *Service) GetCategory(context context.Context, id int64) (*Category, error) {
	return service.repo.FindByID(context, id)
}

// # Mutation

/*
CreateCategory validates a draft and persists it.

Description: An empty slug is derived from the name. A zero sort appends the
category to the end of its scope.

Returns:
  - *Category: The stored category
  - error: VALIDATION_ERROR for bad input or a parent that cannot hold children
*/
func (service *Service) CreateCategory(context context.Context, draft Draft) (*Category, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Slug = strings.TrimSpace(draft.Slug)
	if draft.Slug == "" {
		draft.Slug = slug.From(draft.Name)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, draft.Name).MaxLen(FieldName, draft.Name, MaxNameLength)
	validator.Slug(FieldSlug, draft.Slug)
	validator.Range(FieldSort, draft.Sort, 0, math.MaxInt32)
	checkImage(validator, draft.Image)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if draft.ParentID != nil {
		if err := service.checkParent(context, *draft.ParentID, 0); err != nil {
			return nil, err
		}
	}

	if draft.Sort == 0 {
		next, err := service.repo.NextSort(context, draft.ParentID)
		if err != nil {
			return nil, err
		}
		draft.Sort = next
	}

	category := &Category{
		ParentID: draft.ParentID,
		Name:     draft.Name,
		Slug:     draft.Slug,
		Sort:     draft.Sort,
		Image:    draft.Image,
	}
	if err := service.repo.Create(context, category); err != nil {
		return nil, err
	}

	service.logger.Info("category_created",
		slog.Int64("category_id", category.ID),
		slog.Int("sort", category.Sort),
	)

	return category, nil
}

/*
UpdateCategory applies a partial update.

Description: The slug is regenerated from the name only when the name changes
and no non-empty slug is supplied. A position-only patch touches nothing else.

Returns:
  - *Category: The updated category
  - error: ErrNotFound, or VALIDATION_ERROR for bad input or depth violations
*/
func (service *Service) UpdateCategory(context context.Context, id int64, patch Patch) (*Category, error) {
	category, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}

	suppliedSlug := strings.TrimSpace(pointer.Val(patch.Slug))

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)

		if name != category.Name && suppliedSlug == "" {
			category.Slug = slug.From(name)
			validator.Slug(FieldSlug, category.Slug)
		}
		category.Name = name
	}

	validator.OptionalSlug(FieldSlug, suppliedSlug)
	if suppliedSlug != "" {
		category.Slug = suppliedSlug
	}

	if pointer.Changed(patch.Sort, category.Sort) {
		validator.Range(FieldSort, *patch.Sort, 0, math.MaxInt32)
		category.Sort = *patch.Sort
	}

	checkImage(validator, patch.Image)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if patch.ParentID.Set && !sameParent(category.ParentID, patch.ParentID.Value) {
		if patch.ParentID.Value != nil {
			if err := service.checkParent(context, *patch.ParentID.Value, id); err != nil {
				return nil, err
			}

			children, err := service.repo.CountChildren(context, id)
			if err != nil {
				return nil, err
			}
			if children > 0 {
				return nil, validate.RequiredError(FieldParentID, "A category with children cannot be nested")
			}
		}
		category.ParentID = patch.ParentID.Value
	}

	if patch.Image != nil {
		category.Image = patch.Image
	}

	if err := service.repo.Update(context, category); err != nil {
		return nil, err
	}

	service.logger.Info("category_updated",
		slog.Int64("category_id", category.ID),
		slog.Int("sort", category.Sort),
	)

	return category, nil
}

// DeleteCategory removes a category and, through the cascade, its children.
func (service *Service) DeleteCategory(context context.Context, id int64) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("category_deleted", slog.Int64("category_id", id))
	return nil
}

// # Rules

// checkParent verifies that parentID names an existing root other than self.
func (service *Service) checkParent(context context.Context, parentID, self int64) error {
	if parentID == self {
		return validate.RequiredError(FieldParentID, "A category cannot be its own parent")
	}

	parent, err := service.repo.FindByID(context, parentID)
	if errors.Is(err, ErrNotFound) {
		return validate.RequiredError(FieldParentID, "Parent category does not exist")
	}
	if err != nil {
		return err
	}

	if !parent.IsRoot() {
		return validate.RequiredError(FieldParentID, "Only root categories can hold children")
	}
	return nil
}

func sameParent(current, next *int64) bool {
	if current == nil || next == nil {
		return current == nil && next == nil
	}
	return *current == *next
}

func checkImage(validator *validate.Validator, image *Image) {
	if image != nil {
		validator.OneOf(FieldImage, image.Type, ImageTypes...)
	}
}
