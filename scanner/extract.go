// Package scanner finds embedded translation calls in source files.
//
// It recognizes the call forms t('key','value') and $t("key","value"),
// each optionally followed by a parameter object literal that is captured
// verbatim. Extraction is pattern matching over raw text, not parsing:
// malformed calls simply fail to match and are skipped.
package scanner

import (
	"regexp"
	"sort"
	"strings"
)

// Translation call patterns. Go's regexp has no backreferences, so the
// single-quoted and double-quoted forms are separate patterns whose matches
// are merged by offset. The key and value must use the same quote pair and
// may not contain either quote character or a newline unescaped; a trailing
// {...} argument is captured as-is. Nested braces inside the parameter
// object truncate the capture at the first closing brace, a known
// limitation of regex-based extraction.
var callPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:\$t|t)\(\s*'((?:\\.|[^'"\n])*)'\s*,\s*'((?:\\.|[^'"\n])*)'\s*(?:,\s*(\{[^}]*\}))?\s*\)`),
	regexp.MustCompile(`(?:\$t|t)\(\s*"((?:\\.|[^'"\n])*)"\s*,\s*"((?:\\.|[^'"\n])*)"\s*(?:,\s*(\{[^}]*\}))?\s*\)`),
}

// Match is a single translation call found in a text.
type Match struct {
	// Key is the translation key, quotes stripped, escapes kept verbatim.
	Key string
	// Value is the English text, quotes stripped, escapes kept verbatim.
	// May be empty: t('key','') is a legal call.
	Value string
	// RawParams is the literal text of the optional parameter object
	// (including braces), or "" when the call has no third argument.
	RawParams string
	// Line is the 1-based line number of the match start.
	Line int
}

// Extract returns all translation calls in text, ordered by position.
func Extract(text string) []Match {
	type located struct {
		start, end int
		m          Match
	}

	var found []located
	for _, re := range callPatterns {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			m := Match{
				Key:   text[idx[2]:idx[3]],
				Value: text[idx[4]:idx[5]],
			}
			if idx[6] >= 0 {
				m.RawParams = text[idx[6]:idx[7]]
			}
			found = append(found, located{start: idx[0], end: idx[1], m: m})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })

	matches := make([]Match, 0, len(found))
	line, lineOffset := 1, 0
	prevEnd := -1
	for _, f := range found {
		if f.start < prevEnd {
			continue // overlapping match from the other quote style
		}
		// Offsets arrive in ascending order, so line counting resumes
		// from the previous match instead of rescanning the text.
		line += strings.Count(text[lineOffset:f.start], "\n")
		lineOffset = f.start
		prevEnd = f.end
		f.m.Line = line
		matches = append(matches, f.m)
	}
	return matches
}
