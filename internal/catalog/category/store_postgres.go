// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shopdesk/internal/platform/database/schema"
	"github.com/taibuivan/shopdesk/internal/platform/dberr"
	"github.com/taibuivan/shopdesk/pkg/slice"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed category store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	table         = schema.CatalogCategory
	selectColumns = strings.Join(table.Columns(), ", ")
)

// scanCategory scans a row selected with selectColumns.
func scanCategory(row pgx.Row) (*Category, error) {
	category := &Category{}
	err := row.Scan(
		&category.ID, &category.ParentID, &category.Name, &category.Slug,
		&category.Sort, &category.Image, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// # Category Retrieval

/*
ListRoots returns a page of root categories with children attached.

Description: Runs three statements: the page of roots, the root count, and
every child of the page's roots in one ANY($1) query.
*/
func (repository *PostgresRepository) ListRoots(context context.Context, limit, offset int) ([]*Category, int, error) {
	rootsQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NULL ORDER BY %s ASC, %s ASC LIMIT $1 OFFSET $2`,
		selectColumns, table.Table, table.ParentID, table.Sort, table.ID)

	rows, err := repository.db.Query(context, rootsQuery, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_root_categories")
	}
	defer rows.Close()

	roots := make([]*Category, 0, limit)
	for rows.Next() {
		root, err := scanCategory(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_root_category")
		}
		root.Children = make([]*Category, 0)
		roots = append(roots, root)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_root_categories")
	}
	rows.Close()

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s IS NULL`, table.Table, table.ParentID)
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_root_categories")
	}

	if len(roots) == 0 {
		return roots, total, nil
	}

	byID := slice.KeyBy(roots, func(root *Category) int64 { return root.ID })
	rootIDs := slice.Map(roots, func(root *Category) int64 { return root.ID })

	childrenQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s ASC, %s ASC, %s ASC`,
		selectColumns, table.Table, table.ParentID, table.ParentID, table.Sort, table.ID)

	childRows, err := repository.db.Query(context, childrenQuery, rootIDs)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_child_categories")
	}
	defer childRows.Close()

	for childRows.Next() {
		child, err := scanCategory(childRows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_child_category")
		}
		if parent, ok := byID[*child.ParentID]; ok {
			parent.Children = append(parent.Children, child)
		}
	}
	if err := childRows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_child_categories")
	}

	return roots, total, nil
}

// ListParents returns every root category ordered by sort.
func (repository *PostgresRepository) ListParents(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NULL ORDER BY %s ASC, %s ASC`,
		selectColumns, table.Table, table.ParentID, table.Sort, table.ID)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_parent_categories")
	}
	defer rows.Close()

	parents := make([]*Category, 0)
	for rows.Next() {
		parent, err := scanCategory(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_parent_category")
		}
		parents = append(parents, parent)
	}

	return parents, dberr.Wrap(rows.Err(), "iterate_parent_categories")
}

// FindByID retrieves a single category by its primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, table.Table, table.ID)

	category, err := scanCategory(repository.db.QueryRow(context, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_category_by_id")
	}
	return category, nil
}

// CountChildren returns how many categories have id as their parent.
func (repository *PostgresRepository) CountChildren(context context.Context, id int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, table.Table, table.ParentID)

	var count int
	err := repository.db.QueryRow(context, query, id).Scan(&count)
	return count, dberr.Wrap(err, "count_child_categories")
}

// NextSort returns max(sort)+1 within the scope, or 1 when the scope is empty.
func (repository *PostgresRepository) NextSort(context context.Context, parentID *int64) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s IS NOT DISTINCT FROM $1::bigint`,
		table.Sort, table.Table, table.ParentID)

	var next int
	err := repository.db.QueryRow(context, query, parentID).Scan(&next)
	return next, dberr.Wrap(err, "next_category_sort")
}

// # Category Mutation

// Create inserts a new category record.
func (repository *PostgresRepository) Create(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		table.Table, table.ParentID, table.Name, table.Slug, table.Sort, table.Image, table.CreatedAt, table.UpdatedAt,
		table.ID, table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		category.ParentID, category.Name, category.Slug, category.Sort, category.Image,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)

	return dberr.Wrap(err, "create_category")
}

// Update writes the mutable columns of a category.
func (repository *PostgresRepository) Update(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		table.Table,
		table.ParentID, table.Name, table.Slug, table.Sort, table.Image, table.UpdatedAt,
		table.ID,
		table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		category.ID, category.ParentID, category.Name, category.Slug, category.Sort, category.Image,
	).Scan(&category.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return dberr.Wrap(err, "update_category")
}

// Delete removes a category; its children cascade.
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_category")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
