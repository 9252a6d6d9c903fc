// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopdesk/internal/platform/middleware"
	"github.com/taibuivan/shopdesk/internal/platform/notify"
	requestutil "github.com/taibuivan/shopdesk/internal/platform/request"
	"github.com/taibuivan/shopdesk/internal/platform/respond"
	"github.com/taibuivan/shopdesk/internal/platform/sec"
	"github.com/taibuivan/shopdesk/internal/platform/validate"
	"github.com/taibuivan/shopdesk/pkg/convert"
	"github.com/taibuivan/shopdesk/pkg/pagination"
)

const (
	FieldOutcome = "outcome"
	FieldTree    = "tree"

	// outcomePending is reported when the reply precedes settlement.
	outcomePending = "pending"
)

// # Handler Implementation

// Handler implements the JSON surface the admin SPA drives the tree through.
type Handler struct {
	service *Service
	hub     *notify.Hub
}

// NewHandler constructs a new admin category [Handler].
func NewHandler(service *Service, hub *notify.Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// Routes returns a [chi.Router] mounted at /api/v1/admin.
//
// Every route requires the editor role; deleting requires admin.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleEditor))

	router.Get("/notifications", handler.drainNotifications)

	router.Route("/categories", func(categories chi.Router) {
		categories.Get("/tree", handler.getTree)
		categories.Post("/tree/reorder", handler.reorder)
		categories.Post("/tree/refresh", handler.refreshTree)
		categories.Get("/parents", handler.listParents)

		categories.Post("/", handler.createCategory)
		categories.Patch("/{id}", handler.updateCategory)
		categories.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{id}", handler.deleteCategory)
	})

	return router
}

func pageKey(request *http.Request) PageKey {
	params := pagination.FromRequest(request)
	return PageKey{Page: params.Page, Limit: params.Limit}
}

// # Tree Endpoints

/*
GET /api/v1/admin/categories/tree.

Request:
  - page: int
  - limit: int (Roots per page)

Response:
  - 200: Snapshot
  - 502: UPSTREAM_UNAVAILABLE: The catalog could not be reached
*/
func (handler *Handler) getTree(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.service.Tree(request.Context(), claims.UserID, pageKey(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

// reorderRequest is a drag-end gesture. A null scope is the root list and a
// positive scope names a root's children; 0 is rejected. A null destination
// is a drop outside any list.
type reorderRequest struct {
	Scope       *int64 `json:"scope"`
	Source      *int   `json:"source"`
	Destination *int   `json:"destination"`
}

/*
POST /api/v1/admin/categories/tree/reorder.

Description: Applies the gesture to the tree and persists it in the
background. With wait=true the reply is held until the batch settles.

Request:
  - page, limit: int (The tree the gesture was made on)
  - wait: bool
  - body: reorderRequest

Response:
  - 200: {outcome, tree}: Settled (wait=true, or a no-op)
  - 202: {outcome: "pending", tree}: Optimistic tree, still persisting
  - 409: REORDER_IN_FLIGHT | TREE_LOADING | TREE_STALE
*/
func (handler *Handler) reorder(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Source == nil {
		respond.Error(writer, request, validate.RequiredError(FieldSource, "This field is required"))
		return
	}

	instruction := MoveInstruction{Source: *input.Source, Destination: input.Destination}
	if input.Scope != nil {
		if *input.Scope <= 0 {
			respond.Error(writer, request, validate.RequiredError(FieldScope, "Must be a category ID or null"))
			return
		}
		instruction.Scope = ChildScope(*input.Scope)
	}

	tree, pending, err := handler.service.Reorder(request.Context(), claims.UserID, pageKey(request), instruction)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if convert.ToBool(request.URL.Query().Get("wait")) {
		settlement, err := pending.Wait(request.Context())
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, map[string]any{FieldOutcome: settlement.Outcome, FieldTree: tree.Snapshot()})
		return
	}

	select {
	case <-pending.Done():
		settlement, _ := pending.Wait(request.Context())
		respond.OK(writer, map[string]any{FieldOutcome: settlement.Outcome, FieldTree: tree.Snapshot()})
	default:
		respond.Accepted(writer, map[string]any{FieldOutcome: outcomePending, FieldTree: tree.Snapshot()})
	}
}

/*
POST /api/v1/admin/categories/tree/refresh.

Description: Replaces the tree with a fresh fetch and clears the stale flag.

Response:
  - 200: Snapshot
  - 409: REORDER_IN_FLIGHT | TREE_LOADING
*/
func (handler *Handler) refreshTree(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.service.RefreshTree(request.Context(), claims.UserID, pageKey(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

/*
GET /api/v1/admin/categories/parents.

Response:
  - 200: []Node: Every root category
*/
func (handler *Handler) listParents(writer http.ResponseWriter, request *http.Request) {
	parents, err := handler.service.ListParents(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, parents)
}

// # CRUD Endpoints

/*
POST /api/v1/admin/categories.

Request:
  - body: Draft

Response:
  - 201: Node
  - 400: Validation failed (locally or by the catalog)
*/
func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var draft Draft
	if err := requestutil.DecodeJSON(request, &draft); err != nil {
		respond.Error(writer, request, err)
		return
	}

	node, err := handler.service.CreateCategory(request.Context(), claims.UserID, draft)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, node)
}

// patchRequest keeps parent_id raw so an explicit null can clear the parent.
type patchRequest struct {
	Name     *string         `json:"name"`
	Slug     *string         `json:"slug"`
	Position *int            `json:"sort"`
	ParentID json.RawMessage `json:"parent_id"`
	Image    *Image          `json:"image"`
}

func (input patchRequest) toPatch() (Patch, error) {
	patch := Patch{Name: input.Name, Slug: input.Slug, Position: input.Position, Image: input.Image}

	switch {
	case input.ParentID == nil:
	case string(input.ParentID) == "null":
		patch.ClearParent = true
	default:
		var parentID int64
		if err := json.Unmarshal(input.ParentID, &parentID); err != nil {
			return Patch{}, validate.RequiredError("parent_id", "Must be a category ID or null")
		}
		patch.ParentID = &parentID
	}

	return patch, nil
}

/*
PATCH /api/v1/admin/categories/{id}.

Request:
  - body: patchRequest (Only supplied members are forwarded)

Response:
  - 200: Node
  - 404: Category not found
*/
func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input patchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch, err := input.toPatch()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	node, err := handler.service.UpdateCategory(request.Context(), claims.UserID, id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, node)
}

/*
DELETE /api/v1/admin/categories/{id}.

Response:
  - 204: Deleted
  - 403: Admin role required
*/
func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCategory(request.Context(), claims.UserID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Notifications

/*
GET /api/v1/admin/notifications.

Description: Returns and clears the operator's pending notifications.

Response:
  - 200: []notify.Notification: Oldest first
*/
func (handler *Handler) drainNotifications(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.hub.For(claims.UserID).Drain())
}
