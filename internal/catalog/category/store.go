// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// # Category Data Access

// Repository defines the data access contract for categories.
type Repository interface {

	/*
		ListRoots returns one page of root categories with their children attached.

		Parameters:
		  - context: context.Context
		  - limit: int (Root categories per page)
		  - offset: int

		Returns:
		  - []*Category: Roots ordered by sort, each with Children ordered by sort
		  - int: Total number of root categories
		  - error: Database retrieval failures
	*/
	ListRoots(context context.Context, limit, offset int) ([]*Category, int, error)

	/*
		ListParents returns every root category, without children.

		Returns:
		  - []*Category: Roots ordered by sort
		  - error: Database retrieval failures
	*/
	ListParents(context context.Context) ([]*Category, error)

	/*
		FindByID retrieves a category by its primary key.

		Returns:
		  - *Category: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id int64) (*Category, error)

	/*
		CountChildren returns the number of categories whose parent is id.
	*/
	CountChildren(context context.Context, id int64) (int, error)

	/*
		NextSort returns the position after the last sibling of the given scope.

		Parameters:
		  - context: context.Context
		  - parentID: *int64 (nil for the root scope)

		Returns:
		  - int: 1 for an empty scope, max(sort)+1 otherwise
		  - error: Database retrieval failures
	*/
	NextSort(context context.Context, parentID *int64) (int, error)

	/*
		Create inserts a category and fills its ID and timestamps.
	*/
	Create(context context.Context, category *Category) error

	/*
		Update writes every mutable column of category and refreshes UpdatedAt.

		Returns:
		  - error: ErrNotFound if the row vanished
	*/
	Update(context context.Context, category *Category) error

	/*
		Delete removes a category. Children are removed by ON DELETE CASCADE.

		Returns:
		  - error: ErrNotFound if missing
	*/
	Delete(context context.Context, id int64) error
}
