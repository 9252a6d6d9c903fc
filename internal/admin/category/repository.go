// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"net/url"
	"strconv"

	"github.com/taibuivan/shopdesk/internal/platform/apiclient"
)

// # Category Data Access

// Repository fetches and persists categories. Every error is an
// [*apperr.AppError] carrying the status and code of the failure; there is
// no retry.
type Repository interface {

	/*
		FetchRootPage returns one page of roots with their children nested.

		Parameters:
		  - context: context.Context
		  - page: int (1-indexed)
		  - limit: int (Roots per page)
	*/
	FetchRootPage(context context.Context, page, limit int) (Page, error)

	/*
		FetchAssignableParents returns every root, for parent-selection controls.
	*/
	FetchAssignableParents(context context.Context) ([]Node, error)

	/*
		UpdateNode applies a partial update and returns the stored node.
		Reorder sends a [PositionPatch].
	*/
	UpdateNode(context context.Context, id int64, patch Patch) (Node, error)

	/*
		CreateNode creates a category and returns the stored node.
	*/
	CreateNode(context context.Context, draft Draft) (Node, error)

	/*
		DeleteNode removes a category; the catalog removes its children.
	*/
	DeleteNode(context context.Context, id int64) error
}

// # Catalog API Implementation

const categoryPath = "/category"

// APIRepository implements [Repository] against the catalog REST API.
type APIRepository struct {
	client *apiclient.Client
}

// NewAPIRepository constructs a catalog API backed category store.
func NewAPIRepository(client *apiclient.Client) *APIRepository {
	return &APIRepository{client: client}
}

// FetchRootPage calls GET /category?page&limit.
func (repository *APIRepository) FetchRootPage(context context.Context, page, limit int) (Page, error) {
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}

	var roots []Node
	meta, err := repository.client.GetPage(context, categoryPath, query, &roots)
	if err != nil {
		return Page{}, err
	}
	if roots == nil {
		roots = []Node{}
	}

	return Page{Roots: roots, Meta: meta}, nil
}

// FetchAssignableParents calls GET /category/parents.
func (repository *APIRepository) FetchAssignableParents(context context.Context) ([]Node, error) {
	var parents []Node
	if err := repository.client.Get(context, categoryPath+"/parents", nil, &parents); err != nil {
		return nil, err
	}
	return parents, nil
}

// UpdateNode calls PATCH /category/{id}.
func (repository *APIRepository) UpdateNode(context context.Context, id int64, patch Patch) (Node, error) {
	var node Node
	if err := repository.client.Patch(context, nodePath(id), patch, &node); err != nil {
		return Node{}, err
	}
	return node, nil
}

// CreateNode calls POST /category.
func (repository *APIRepository) CreateNode(context context.Context, draft Draft) (Node, error) {
	var node Node
	if err := repository.client.Post(context, categoryPath, draft, &node); err != nil {
		return Node{}, err
	}
	return node, nil
}

// DeleteNode calls DELETE /category/{id}.
func (repository *APIRepository) DeleteNode(context context.Context, id int64) error {
	return repository.client.Delete(context, nodePath(id))
}

func nodePath(id int64) string {
	return categoryPath + "/" + strconv.FormatInt(id, 10)
}
