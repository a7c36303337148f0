// Package analyze aggregates scanned translation instances into a keyed
// index and classifies anomalies: key conflicts, exact value redundancy,
// and pattern redundancy after placeholder normalization.
package analyze

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rosetta-i18n/rosetta/scanner"
)

// Wildcard replaces every {placeholder} when values are normalized for
// pattern comparison, so "Hello {name}" and "Hello {user}" compare equal.
const Wildcard = "{*}"

var placeholderRe = regexp.MustCompile(`\{[^}]+\}`)

// NormalizePattern returns value with each {placeholder} replaced by the
// wildcard marker.
func NormalizePattern(value string) string {
	return placeholderRe.ReplaceAllString(value, Wildcard)
}

// Placeholders returns the distinct {placeholder} tokens in value, in
// order of first appearance.
func Placeholders(value string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range placeholderRe.FindAllString(value, -1) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Index
// ---------------------------------------------------------------------------

// Index maps each key to its instances in discovery order. Key iteration
// order is first-seen order, so repeated scans of the same tree report
// identically.
type Index struct {
	keys  []string
	byKey map[string][]scanner.Instance
}

// Keys returns all keys in first-seen order.
func (ix *Index) Keys() []string { return ix.keys }

// Instances returns the instances recorded for key, in discovery order.
func (ix *Index) Instances(key string) []scanner.Instance { return ix.byKey[key] }

// Len returns the number of distinct keys.
func (ix *Index) Len() int { return len(ix.keys) }

// ---------------------------------------------------------------------------
// Anomaly report
// ---------------------------------------------------------------------------

// PatternGroup is one pattern-redundancy bucket: the keys that share a
// normalized pattern and the original values that produced it.
type PatternGroup struct {
	Keys   []string
	Values []string
}

// Report holds the three anomaly classes. The order slices preserve
// first-seen order for deterministic output.
type Report struct {
	// Conflicts: key -> distinct values, keys with >=2 distinct values.
	Conflicts    map[string][]string
	ConflictKeys []string

	// ExactRedundancy: verbatim value -> distinct keys, values shared by
	// >=2 distinct keys.
	ExactRedundancy map[string][]string
	ExactValues     []string

	// PatternRedundancy: normalized pattern -> keys and original values,
	// patterns shared by >=2 distinct keys and not already fully covered
	// by an exact-redundancy entry.
	PatternRedundancy map[string]PatternGroup
	Patterns          []string
}

// orderedSet accumulates distinct strings preserving insertion order.
type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	if !s.seen[v] {
		s.seen[v] = true
		s.items = append(s.items, v)
	}
}

// Analyze groups instances by key and derives the anomaly report.
func Analyze(instances []scanner.Instance) (*Index, *Report) {
	ix := &Index{byKey: make(map[string][]scanner.Instance)}

	keyValues := make(map[string]*orderedSet)   // key -> distinct values
	valueKeys := make(map[string]*orderedSet)   // value -> distinct keys
	patternKeys := make(map[string]*orderedSet) // pattern -> distinct keys
	patternVals := make(map[string]*orderedSet) // pattern -> distinct values
	var valueOrder, patternOrder []string

	for _, inst := range instances {
		if _, ok := ix.byKey[inst.Key]; !ok {
			ix.keys = append(ix.keys, inst.Key)
		}
		ix.byKey[inst.Key] = append(ix.byKey[inst.Key], inst)

		if keyValues[inst.Key] == nil {
			keyValues[inst.Key] = newOrderedSet()
		}
		keyValues[inst.Key].add(inst.Value)

		if valueKeys[inst.Value] == nil {
			valueKeys[inst.Value] = newOrderedSet()
			valueOrder = append(valueOrder, inst.Value)
		}
		valueKeys[inst.Value].add(inst.Key)

		pattern := NormalizePattern(inst.Value)
		if patternKeys[pattern] == nil {
			patternKeys[pattern] = newOrderedSet()
			patternVals[pattern] = newOrderedSet()
			patternOrder = append(patternOrder, pattern)
		}
		patternKeys[pattern].add(inst.Key)
		patternVals[pattern].add(inst.Value)
	}

	rep := &Report{
		Conflicts:         make(map[string][]string),
		ExactRedundancy:   make(map[string][]string),
		PatternRedundancy: make(map[string]PatternGroup),
	}

	for _, key := range ix.keys {
		if vals := keyValues[key]; len(vals.items) >= 2 {
			rep.Conflicts[key] = vals.items
			rep.ConflictKeys = append(rep.ConflictKeys, key)
		}
	}

	for _, val := range valueOrder {
		if keys := valueKeys[val]; len(keys.items) >= 2 {
			rep.ExactRedundancy[val] = keys.items
			rep.ExactValues = append(rep.ExactValues, val)
		}
	}

	for _, pattern := range patternOrder {
		keys := patternKeys[pattern]
		if len(keys.items) < 2 {
			continue
		}
		if coveredByExact(pattern, keys, patternVals[pattern], rep.ExactRedundancy) {
			continue
		}
		rep.PatternRedundancy[pattern] = PatternGroup{
			Keys:   keys.items,
			Values: patternVals[pattern].items,
		}
		rep.Patterns = append(rep.Patterns, pattern)
	}

	return ix, rep
}

// coveredByExact reports whether a pattern bucket adds nothing over the
// exact-redundancy report: some literal value normalizing to the pattern is
// itself an exact redundancy whose key set contains every key in the
// bucket. Literal duplicates take precedence over placeholder variants.
func coveredByExact(pattern string, keys, values *orderedSet, exact map[string][]string) bool {
	for _, val := range values.items {
		exactKeys, ok := exact[val]
		if !ok {
			continue
		}
		covered := make(map[string]bool, len(exactKeys))
		for _, k := range exactKeys {
			covered[k] = true
		}
		all := true
		for _, k := range keys.items {
			if !covered[k] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Prefix grouping (feeds preview and spreadsheet export)
// ---------------------------------------------------------------------------

// PrefixGroup is the unique key-value table for one key prefix.
type PrefixGroup struct {
	// Prefix is the key part before the first '.', or the whole key when
	// there is no dot.
	Prefix string
	// Keys is sorted for stable preview/export output.
	Keys   []string
	Values map[string]string
}

// Len returns the number of unique keys in the group.
func (g PrefixGroup) Len() int { return len(g.Keys) }

// GroupByPrefix buckets instances by key prefix. The first value seen for
// a key wins; groups are returned sorted by prefix with keys sorted inside
// each group.
func GroupByPrefix(instances []scanner.Instance) []PrefixGroup {
	byPrefix := make(map[string]*PrefixGroup)
	var prefixes []string

	for _, inst := range instances {
		prefix := inst.Key
		if i := strings.Index(inst.Key, "."); i >= 0 {
			prefix = inst.Key[:i]
		}

		g := byPrefix[prefix]
		if g == nil {
			g = &PrefixGroup{Prefix: prefix, Values: make(map[string]string)}
			byPrefix[prefix] = g
			prefixes = append(prefixes, prefix)
		}
		if _, ok := g.Values[inst.Key]; !ok {
			g.Values[inst.Key] = inst.Value
			g.Keys = append(g.Keys, inst.Key)
		}
	}

	sort.Strings(prefixes)
	groups := make([]PrefixGroup, 0, len(prefixes))
	for _, prefix := range prefixes {
		g := byPrefix[prefix]
		sort.Strings(g.Keys)
		groups = append(groups, *g)
	}
	return groups
}
