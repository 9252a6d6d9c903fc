// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with generic
transformation helpers used when mapping catalog payloads to tree nodes.
*/
package slice

// Map maps a slice of type T to a slice of type U using the provided transformation function.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Filter returns the elements for which predicate is true. The input is never modified.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}

// KeyBy indexes a slice by the key returned from keyOf. Later elements win on duplicate keys.
func KeyBy[T any, K comparable](input []T, keyOf func(T) K) map[K]T {
	result := make(map[K]T, len(input))
	for _, v := range input {
		result[keyOf(v)] = v
	}
	return result
}
