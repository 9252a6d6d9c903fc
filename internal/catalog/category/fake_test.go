// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/shopdesk/internal/platform/apperr"
)

// memoryRepository is an in-memory [Repository] for service and handler tests.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*Category
}

func newMemoryRepository(seed ...*Category) *memoryRepository {
	repo := &memoryRepository{rows: make(map[int64]*Category)}
	for _, category := range seed {
		copied := *category
		repo.rows[category.ID] = &copied
		if category.ID > repo.nextID {
			repo.nextID = category.ID
		}
	}
	return repo
}

func (repo *memoryRepository) sorted(match func(*Category) bool) []*Category {
	var result []*Category
	for _, row := range repo.rows {
		if match(row) {
			copied := *row
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Sort != result[j].Sort {
			return result[i].Sort < result[j].Sort
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (repo *memoryRepository) ListRoots(_ context.Context, limit, offset int) ([]*Category, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	roots := repo.sorted(func(c *Category) bool { return c.ParentID == nil })
	total := len(roots)
	if offset > len(roots) {
		offset = len(roots)
	}
	end := min(offset+limit, len(roots))
	page := roots[offset:end]

	for _, root := range page {
		rootID := root.ID
		root.Children = repo.sorted(func(c *Category) bool { return c.ParentID != nil && *c.ParentID == rootID })
	}
	return page, total, nil
}

func (repo *memoryRepository) ListParents(_ context.Context) ([]*Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.sorted(func(c *Category) bool { return c.ParentID == nil }), nil
}

func (repo *memoryRepository) FindByID(_ context.Context, id int64) (*Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	row, ok := repo.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (repo *memoryRepository) CountChildren(_ context.Context, id int64) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.sorted(func(c *Category) bool { return c.ParentID != nil && *c.ParentID == id })), nil
}

func (repo *memoryRepository) NextSort(_ context.Context, parentID *int64) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	next := 1
	for _, row := range repo.rows {
		if sameParent(row.ParentID, parentID) && row.Sort >= next {
			next = row.Sort + 1
		}
	}
	return next, nil
}

func (repo *memoryRepository) Create(_ context.Context, category *Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, row := range repo.rows {
		if row.Slug == category.Slug {
			return apperr.Conflict("A record with the same unique value already exists")
		}
	}

	repo.nextID++
	category.ID = repo.nextID
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt

	copied := *category
	repo.rows[category.ID] = &copied
	return nil
}

func (repo *memoryRepository) Update(_ context.Context, category *Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.rows[category.ID]; !ok {
		return ErrNotFound
	}
	category.UpdatedAt = time.Now()
	copied := *category
	copied.Children = nil
	repo.rows[category.ID] = &copied
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id int64) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.rows[id]; !ok {
		return ErrNotFound
	}
	delete(repo.rows, id)
	for childID, row := range repo.rows {
		if row.ParentID != nil && *row.ParentID == id {
			delete(repo.rows, childID)
		}
	}
	return nil
}

func int64Ptr(v int64) *int64 { return &v }
