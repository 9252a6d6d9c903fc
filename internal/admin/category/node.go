// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category is the admin server's category tree workflow.

It keeps an in-memory two-level tree per operator, turns drag-and-drop
gestures into sibling reorders, and persists them against the catalog API,
which only accepts one category update per request.

# Flow

	drag end → TreeViewModel.DragEnd → Move → optimistic apply
	         → Coordinator.Persist → N × Repository.UpdateNode
	         → confirmed, or reconciled from a fresh root page

# Core Responsibility

  - [Move]: pure sibling renumbering.
  - [Coordinator]: concurrent fan-out of position writes and recovery.
  - [TreeViewModel]: tree state, the single in-flight reorder gate, reconciliation.
  - [Service] and [Handler]: category CRUD and the JSON surface the SPA calls.
*/
package category

import (
	"encoding/json"
	"fmt"

	"github.com/taibuivan/shopdesk/pkg/pagination"
)

// # Core Entities

// Image describes an attached asset. It is opaque to the tree workflow.
type Image struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Node is a category as the admin tree sees it.
//
// Position orders a node among its siblings; it travels as "sort" on the wire.
type Node struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parent_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Position int    `json:"sort"`
	Image    *Image `json:"image"`

	// Children is populated on root nodes of a root page only.
	Children []Node `json:"children,omitempty"`
}

// Scope identifies a sibling list: the roots, or the children of one root.
//
// The zero value is the root scope.
type Scope struct {
	ParentID int64
}

// RootScope is the scope of nodes without a parent.
var RootScope = Scope{}

// ChildScope returns the scope of the children of parentID.
func ChildScope(parentID int64) Scope {
	return Scope{ParentID: parentID}
}

// IsRoot reports whether s is the root scope.
func (s Scope) IsRoot() bool {
	return s.ParentID == 0
}

func (s Scope) String() string {
	if s.IsRoot() {
		return "root"
	}
	return fmt.Sprintf("children:%d", s.ParentID)
}

// ScopeOf returns the sibling scope a node belongs to.
func ScopeOf(node Node) Scope {
	if node.ParentID == nil {
		return RootScope
	}
	return ChildScope(*node.ParentID)
}

// # Pages

// PageKey identifies one fetched page of root categories.
type PageKey struct {
	Page  int
	Limit int
}

// Offset is the number of roots on the pages before this one.
func (key PageKey) Offset() int {
	if key.Limit <= 0 {
		return 0
	}
	return max(key.Page-1, 0) * key.Limit
}

// Page is one page of roots, each carrying its children.
type Page struct {
	Roots []Node
	Meta  pagination.Meta
}

// # Write Models

// Draft is the payload for creating a category.
type Draft struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *int64 `json:"parent_id"`
	Position int    `json:"sort"`
	Image    *Image `json:"image,omitempty"`
}

// Patch is a partial update. Only set fields are sent.
//
// ClearParent moves a node to the root scope and wins over ParentID.
type Patch struct {
	Name        *string
	Slug        *string
	Position    *int
	ParentID    *int64
	ClearParent bool
	Image       *Image
}

// PositionPatch is the update a reorder sends for one node.
func PositionPatch(position int) Patch {
	return Patch{Position: &position}
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Slug == nil && p.Position == nil &&
		p.ParentID == nil && !p.ClearParent && p.Image == nil
}

// MarshalJSON emits only the members that are set, so a position patch is
// exactly {"sort": n}.
func (p Patch) MarshalJSON() ([]byte, error) {
	members := make(map[string]any, 5)

	if p.Name != nil {
		members["name"] = *p.Name
	}
	if p.Slug != nil {
		members["slug"] = *p.Slug
	}
	if p.Position != nil {
		members["sort"] = *p.Position
	}
	switch {
	case p.ClearParent:
		members["parent_id"] = nil
	case p.ParentID != nil:
		members["parent_id"] = *p.ParentID
	}
	if p.Image != nil {
		members["image"] = p.Image
	}

	return json.Marshal(members)
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldScope       = "scope"
	FieldSource      = "source"
	FieldDestination = "destination"
)
