// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/shopdesk/internal/platform/ctxutil"
	"github.com/taibuivan/shopdesk/internal/platform/validate"
	"github.com/taibuivan/shopdesk/pkg/pointer"
	"github.com/taibuivan/shopdesk/pkg/slug"
)

// maxNameLength mirrors the catalog's limit so obvious mistakes fail fast.
const maxNameLength = 200

// # Service Layer

// Service is the admin-side category workflow: tree access, reorders, and CRUD.
type Service struct {
	repo     Repository
	registry *TreeRegistry
	cache    ParentCache
	logger   *slog.Logger
}

// NewService constructs a new admin category [Service].
func NewService(repo Repository, registry *TreeRegistry, cache ParentCache, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		cache:    cache,
		logger:   logger,
	}
}

// # Tree

// Tree returns the operator's tree for a page, fetching it on first access.
func (service *Service) Tree(context context.Context, operatorID string, key PageKey) (Snapshot, error) {
	tree := service.registry.Get(operatorID, key)
	if err := tree.Load(context); err != nil {
		return Snapshot{}, err
	}
	return tree.Snapshot(), nil
}

// RefreshTree re-fetches the operator's tree for a page.
func (service *Service) RefreshTree(context context.Context, operatorID string, key PageKey) (Snapshot, error) {
	tree := service.registry.Get(operatorID, key)
	if err := tree.Refresh(context); err != nil {
		return Snapshot{}, err
	}
	return tree.Snapshot(), nil
}

/*
Reorder applies a drag gesture to the operator's tree.

Returns:
  - *TreeViewModel: The tree, for snapshotting after the optimistic apply
  - *Pending: Settles when persistence completes
  - error: Load failures, VALIDATION_ERROR, or a gate error from [TreeViewModel.DragEnd]
*/
func (service *Service) Reorder(context context.Context, operatorID string, key PageKey, instruction MoveInstruction) (*TreeViewModel, *Pending, error) {
	validator := &validate.Validator{}
	validator.NonNegative(FieldSource, instruction.Source)
	if instruction.Destination != nil {
		validator.NonNegative(FieldDestination, *instruction.Destination)
	}
	validator.Custom(FieldScope, instruction.Scope.ParentID < 0, "Must be a category ID or null")
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	tree := service.registry.Get(operatorID, key)
	if err := tree.Load(context); err != nil {
		return nil, nil, err
	}

	pending, err := tree.DragEnd(context, instruction)
	if err != nil {
		return nil, nil, err
	}
	return tree, pending, nil
}

// # Parent Selection

// ListParents returns the assignable parents, served from the cache when possible.
func (service *Service) ListParents(context context.Context) ([]Node, error) {
	if parents, ok := service.cache.Get(context); ok {
		return parents, nil
	}

	parents, err := service.repo.FetchAssignableParents(context)
	if err != nil {
		return nil, err
	}
	service.cache.Set(context, parents)
	return parents, nil
}

// # Mutation

// CreateCategory creates a category. An empty slug is derived from the name.
func (service *Service) CreateCategory(context context.Context, operatorID string, draft Draft) (Node, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Slug = strings.TrimSpace(draft.Slug)
	if draft.Slug == "" {
		draft.Slug = slug.From(draft.Name)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, draft.Name).MaxLen(FieldName, draft.Name, maxNameLength)
	validator.Slug(FieldSlug, draft.Slug)
	if err := validator.Err(); err != nil {
		return Node{}, err
	}

	node, err := service.repo.CreateNode(context, draft)
	if err != nil {
		return Node{}, err
	}

	service.afterMutation(context, operatorID, "category_created", node.ID)
	return node, nil
}

// UpdateCategory applies a partial update. The catalog regenerates the slug on rename.
func (service *Service) UpdateCategory(context context.Context, operatorID string, id int64, patch Patch) (Node, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldName, patch.IsEmpty(), "At least one field must be supplied")
	if patch.Name != nil {
		validator.Required(FieldName, *patch.Name).MaxLen(FieldName, *patch.Name, maxNameLength)
	}
	validator.OptionalSlug(FieldSlug, pointer.Val(patch.Slug))
	if err := validator.Err(); err != nil {
		return Node{}, err
	}

	node, err := service.repo.UpdateNode(context, id, patch)
	if err != nil {
		return Node{}, err
	}

	service.afterMutation(context, operatorID, "category_updated", id)
	return node, nil
}

// DeleteCategory removes a category and its children.
func (service *Service) DeleteCategory(context context.Context, operatorID string, id int64) error {
	if err := service.repo.DeleteNode(context, id); err != nil {
		return err
	}

	service.afterMutation(context, operatorID, "category_deleted", id)
	return nil
}

// afterMutation drops the parent cache and re-fetches the operator's trees.
// Other operators' trees are marked stale and reload on their next use. A
// refresh that cannot run now marks that tree stale too, so the next load retries.
func (service *Service) afterMutation(context context.Context, operatorID, event string, id int64) {
	service.cache.Invalidate(context)

	service.logger.InfoContext(context, event, slog.Int64("category_id", id), slog.String("operator_id", operatorID))

	logger := ctxutil.GetLogger(context)
	for _, tree := range service.registry.ForOperator(operatorID) {
		if err := tree.Refresh(context); err != nil {
			tree.MarkStale()
			logger.WarnContext(context, "category_tree_refresh_skipped",
				slog.Int("page", tree.Key().Page),
				slog.Any("error", err),
			)
		}
	}

	if marked := service.registry.MarkStaleExcept(operatorID); marked > 0 {
		logger.DebugContext(context, "category_trees_marked_stale", slog.Int("count", marked))
	}
}
