// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm normalizes user-supplied text before it is stored or cut.
//
// # Usage
//
// Excerpts are cut by character, not by byte, after NFC composition so that
// an accented letter typed as two code points counts as one character and is
// never split in half.
package textnorm

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in NFC form. Stored content goes through it so that
// an excerpt cut by [Truncate] is a prefix of the stored text.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Truncate returns the first n characters of s after NFC normalization.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	composed := Normalize(s)

	count := 0
	for index := range composed {
		if count == n {
			return composed[:index]
		}
		count++
	}
	return composed
}

// IsBlank reports whether s has no visible characters.
func IsBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// TitleFromFilename turns "the_quiet-hour.txt" into "The Quiet Hour".
func TitleFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})

	return cases.Title(language.English).String(strings.Join(words, " "))
}
