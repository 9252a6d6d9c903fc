// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopdesk/internal/platform/middleware"
	requestutil "github.com/taibuivan/shopdesk/internal/platform/request"
	"github.com/taibuivan/shopdesk/internal/platform/respond"
	"github.com/taibuivan/shopdesk/internal/platform/sec"
	"github.com/taibuivan/shopdesk/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the category resource.
type Handler struct {
	service *Service
}

// NewHandler constructs a new category [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for /category.
//
// # Routing Strategy
//
//   - Public: listing, parents, and detail views.
//   - Editor: create and partial update (including reorder writes).
//   - Admin: delete.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listRoots)
	router.Get("/parents", handler.listParents)
	router.Get("/{id}", handler.getCategory)

	router.Group(func(editor chi.Router) {
		editor.Use(middleware.RequireRole(sec.RoleEditor))
		editor.Post("/", handler.createCategory)
		editor.Patch("/{id}", handler.updateCategory)
		editor.Put("/{id}", handler.updateCategory)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Delete("/{id}", handler.deleteCategory)
	})

	return router
}

// # Retrieval

/*
GET /category.

Description: Returns one page of root categories, each with its children.

Request:
  - page: int
  - limit: int (Root categories per page)

Response:
  - 200: []Category: Paginated roots with nested children
*/
func (handler *Handler) listRoots(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	roots, total, err := handler.service.ListRoots(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, roots, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /category/parents.

Description: Returns every root category, for parent-selection controls.

Response:
  - 200: []Category
*/
func (handler *Handler) listParents(writer http.ResponseWriter, request *http.Request) {
	parents, err := handler.service.ListParents(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, parents)
}

/*
GET /category/{id}.

Response:
  - 200: Category
  - 404: ErrNotFound
*/
func (handler *Handler) getCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.GetCategory(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, category)
}

// # Mutation

/*
POST /category.

Request:
  - body: Draft

Response:
  - 201: Category
  - 400: Validation failed
  - 401/403: Missing or insufficient role
*/
func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var draft Draft
	if err := requestutil.DecodeJSON(request, &draft); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.CreateCategory(request.Context(), draft)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, category)
}

/*
PATCH /category/{id}.

Description: Partial update. Reorder clients send only {"sort": n}.

Response:
  - 200: Category
  - 400: Validation failed
  - 404: ErrNotFound
*/
func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.UpdateCategory(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, category)
}

/*
DELETE /category/{id}.

Response:
  - 204: Deleted, children included
  - 404: ErrNotFound
*/
func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCategory(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
