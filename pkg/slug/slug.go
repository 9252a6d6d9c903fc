// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Category slugs are derived from the display name when an operator leaves the
// slug field blank (e.g., "Giày Nữ" becomes "giay-nu").
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// separators matches every run of characters that cannot appear in a slug.
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// letters without a canonical decomposition that still have an obvious ASCII form.
var replacer = strings.NewReplacer(
	"đ", "d", "Đ", "d",
	"ß", "ss",
	"ø", "o", "Ø", "o",
	"ł", "l", "Ł", "l",
	"&", " and ",
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
//  1. Replaces letters that NFD cannot decompose (đ, ß, ø, ł).
//  2. Normalizes to NFD and removes combining marks (é → e).
//  3. Lowercases, then collapses every non-alphanumeric run into one hyphen.
//  4. Trims leading and trailing hyphens.
//
// An input with no usable characters yields the empty string.
func From(s string) string {
	result := replacer.Replace(s)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ = transform.String(t, result)

	result = strings.ToLower(result)
	result = separators.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
