// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-supplied display names before they are
// stored, so that visually identical names collide on the unique constraints.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC (composes "e" + combining acute into "é").
// 2. Replaces control characters and exotic spaces with a plain space.
// 3. Collapses runs of whitespace and trims both ends.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name returns the canonical form of a display name. A blank input yields "".
func Name(s string) string {
	t := transform.Chain(norm.NFC, transform.RemoveFunc(isFormat))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = norm.NFC.String(s)
	}

	result = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, result)

	return strings.Join(strings.Fields(result), " ")
}

// Blank reports whether s is nil or normalizes to an empty string.
func Blank(s *string) bool {
	return s == nil || Name(*s) == ""
}

// isFormat reports whether r is an invisible formatting rune (zero-width space, BOM).
func isFormat(r rune) bool {
	return unicode.Is(unicode.Cf, r)
}
