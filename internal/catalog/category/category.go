// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category implements the catalog's category REST resource on PostgreSQL.

Categories form a two-level tree: root categories (no parent) and child
categories whose parent is a root. The sort column orders siblings, meaning
nodes sharing the same parent (or no parent).

# Core Responsibility

  - Storage: [Repository] and its pgx implementation.
  - Rules: the depth-2 constraint, slug derivation, and next-position assignment.
  - Transport: the chi [Handler] mounted at /category.

The catalog has no multi-row reorder endpoint. Clients reorder by patching
one category's sort value at a time.
*/
package category

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/taibuivan/shopdesk/internal/platform/apperr"
)

// # Core Entities

// Image describes an attached asset. The catalog stores it verbatim.
type Image struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// ImageTypes are the MIME types the storefront can render.
var ImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"}

// Category is a node of the two-level category tree.
type Category struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parent_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Sort      int       `json:"sort"`
	Image     *Image    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Children is populated on root categories of a root listing only.
	Children []*Category `json:"children,omitempty"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// # Write Models

// Draft is the payload for creating a category.
//
// A zero Sort places the category after its last sibling.
type Draft struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *int64 `json:"parent_id"`
	Sort     int    `json:"sort"`
	Image    *Image `json:"image"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string    `json:"name"`
	Slug     *string    `json:"slug"`
	Sort     *int       `json:"sort"`
	ParentID NullableID `json:"parent_id"`
	Image    *Image     `json:"image"`
}

// NullableID distinguishes an absent JSON member from an explicit null.
//
// {"parent_id": null} moves a category to the root; omitting the member
// leaves the parent untouched.
type NullableID struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON implements [json.Unmarshaler]. It only runs when the member is present.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldSlug     = "slug"
	FieldSort     = "sort"
	FieldParentID = "parent_id"
	FieldImage    = "image.type"
)

// MaxNameLength bounds category names in characters.
const MaxNameLength = 200

// # Errors

// ErrNotFound is returned when a category does not exist.
var ErrNotFound = apperr.NotFound("Category")
