// Package report renders scan and analysis results as human-readable text.
// Rendering is pure: writing the text anywhere is the caller's business.
package report

import (
	"fmt"
	"strings"

	"github.com/rosetta-i18n/rosetta/analyze"
	"github.com/rosetta-i18n/rosetta/scanner"
)

// Render produces the full text report: summary counts followed by the
// itemized anomaly and error listings.
func Render(res *scanner.Result, ix *analyze.Index, rep *analyze.Report) string {
	var b strings.Builder

	b.WriteString("===== Report =====\n")
	fmt.Fprintf(&b, "Total files scanned: %d\n", res.FilesScanned)
	fmt.Fprintf(&b, "Total instances found: %d\n", len(res.Instances))
	fmt.Fprintf(&b, "Key conflicts (same key, different values): %d\n", len(rep.ConflictKeys))
	fmt.Fprintf(&b, "Exact value redundancy (same static text): %d\n", len(rep.ExactValues))
	fmt.Fprintf(&b, "Pattern redundancy (same dynamic pattern): %d\n", len(rep.Patterns))
	fmt.Fprintf(&b, "Errors: %d\n", len(res.Errors))

	if len(rep.ConflictKeys) > 0 {
		b.WriteString("\n-- Key Conflicts (same key, different values) --\n")
		for _, key := range rep.ConflictKeys {
			fmt.Fprintf(&b, "'%s': %s\n", key, quoteList(rep.Conflicts[key]))
		}
	}

	if len(rep.ExactValues) > 0 {
		b.WriteString("\n-- Exact Value Redundancy (different keys, same static text) --\n")
		for _, val := range rep.ExactValues {
			fmt.Fprintf(&b, "'%s': %s\n", val, quoteList(rep.ExactRedundancy[val]))
		}
	}

	if len(rep.Patterns) > 0 {
		b.WriteString("\n-- Pattern Redundancy (different keys, same dynamic pattern) --\n")
		for _, pattern := range rep.Patterns {
			group := rep.PatternRedundancy[pattern]
			fmt.Fprintf(&b, "Pattern '%s':\n", pattern)
			fmt.Fprintf(&b, "  Keys: %s\n", quoteList(group.Keys))
			fmt.Fprintf(&b, "  Original values: %s\n", quoteList(group.Values))
		}
	}

	if len(res.Errors) > 0 {
		b.WriteString("\n-- Errors --\n")
		for _, fe := range res.Errors {
			fmt.Fprintf(&b, "%s: %s\n", fe.File, fe.Message)
		}
	}

	return b.String()
}

// RenderPreview produces the prefix-grouped dictionary listing.
func RenderPreview(groups []analyze.PrefixGroup) string {
	total := 0
	for _, g := range groups {
		total += g.Len()
	}

	var b strings.Builder
	b.WriteString("===== PREVIEW: All Translation Dictionaries =====\n")
	fmt.Fprintf(&b, "Total unique translations found: %d\n", total)
	fmt.Fprintf(&b, "Number of prefix groups: %d\n", len(groups))

	for _, g := range groups {
		fmt.Fprintf(&b, "\n--- %s (%d translations) ---\n", strings.ToUpper(g.Prefix), g.Len())
		for _, key := range g.Keys {
			fmt.Fprintf(&b, "'%s': '%s'\n", key, g.Values[key])
		}
	}

	b.WriteString("\n===== END PREVIEW =====\n")
	return b.String()
}

// quoteList formats strings as ['a', 'b', 'c'].
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
