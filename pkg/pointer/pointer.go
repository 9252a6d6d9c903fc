// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer holds helpers for the optional fields of partial updates.

A PATCH body models "not supplied" as a nil pointer, so {"sort": 3} needs a
pointer to a literal and the handler needs a nil-safe read.
*/
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, or returns the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Changed reports whether p was supplied with a value other than current.
func Changed[T comparable](p *T, current T) bool {
	return p != nil && *p != current
}
