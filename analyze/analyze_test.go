package analyze

import (
	"reflect"
	"testing"

	"github.com/rosetta-i18n/rosetta/scanner"
)

func inst(key, value string) scanner.Instance {
	return scanner.Instance{Key: key, Value: value, File: "test.vue", Line: 1}
}

func TestNormalizePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  string
	}{
		{"Hello {name}", "Hello {*}"},
		{"Hello {user}", "Hello {*}"},
		{"Battery level: {value}%", "Battery level: {*}%"},
		{"{a} and {b}", "{*} and {*}"},
		{"no placeholders", "no placeholders"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := NormalizePattern(tc.value); got != tc.want {
			t.Errorf("NormalizePattern(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	got := Placeholders("Hi {name}, you have {count} items and {name} again")
	want := []string{"{name}", "{count}"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Placeholders() = %#v, want %#v", got, want)
	}

	if got := Placeholders("plain"); got != nil {
		t.Fatalf("Placeholders(plain) = %#v, want nil", got)
	}
}

func TestAnalyzeIndexOrder(t *testing.T) {
	t.Parallel()

	ix, _ := Analyze([]scanner.Instance{
		inst("b.key", "B"),
		inst("a.key", "A"),
		inst("b.key", "B again"),
	})

	if got := ix.Keys(); !reflect.DeepEqual(got, []string{"b.key", "a.key"}) {
		t.Fatalf("Keys() = %#v, want first-seen order", got)
	}
	if ix.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ix.Len())
	}
	if got := ix.Instances("b.key"); len(got) != 2 || got[0].Value != "B" || got[1].Value != "B again" {
		t.Fatalf("Instances(b.key) = %#v", got)
	}
}

func TestAnalyzeConflicts(t *testing.T) {
	t.Parallel()

	_, rep := Analyze([]scanner.Instance{
		inst("dup.same", "Same"),
		inst("dup.same", "Same"), // exact duplicate, not a conflict
		inst("dup.diff", "One"),
		inst("dup.diff", "Two"),
		inst("dup.diff", "One"), // repeats don't add values
	})

	if !reflect.DeepEqual(rep.ConflictKeys, []string{"dup.diff"}) {
		t.Fatalf("ConflictKeys = %#v", rep.ConflictKeys)
	}
	if got := rep.Conflicts["dup.diff"]; !reflect.DeepEqual(got, []string{"One", "Two"}) {
		t.Fatalf("Conflicts[dup.diff] = %#v", got)
	}
}

func TestAnalyzeExactRedundancy(t *testing.T) {
	t.Parallel()

	_, rep := Analyze([]scanner.Instance{
		inst("a.save", "Save"),
		inst("b.save", "Save"),
		inst("c.other", "Other"),
		inst("c.other", "Other"), // same key twice is not redundancy
	})

	if !reflect.DeepEqual(rep.ExactValues, []string{"Save"}) {
		t.Fatalf("ExactValues = %#v", rep.ExactValues)
	}
	if got := rep.ExactRedundancy["Save"]; !reflect.DeepEqual(got, []string{"a.save", "b.save"}) {
		t.Fatalf("ExactRedundancy[Save] = %#v", got)
	}
}

// The canonical mixed scenario: one key with a placeholder variant and a
// literal, another key with a placeholder variant of the same skeleton.
func TestAnalyzeMixedScenario(t *testing.T) {
	t.Parallel()

	_, rep := Analyze([]scanner.Instance{
		inst("a.b", "Hi {x}"),
		inst("c.d", "Hi {y}"),
		inst("a.b", "Hi"),
	})

	if !reflect.DeepEqual(rep.ConflictKeys, []string{"a.b"}) {
		t.Fatalf("ConflictKeys = %#v", rep.ConflictKeys)
	}
	if got := rep.Conflicts["a.b"]; !reflect.DeepEqual(got, []string{"Hi {x}", "Hi"}) {
		t.Fatalf("Conflicts[a.b] = %#v", got)
	}

	if len(rep.ExactValues) != 0 {
		t.Fatalf("ExactValues = %#v, want none", rep.ExactValues)
	}

	if !reflect.DeepEqual(rep.Patterns, []string{"Hi {*}"}) {
		t.Fatalf("Patterns = %#v", rep.Patterns)
	}
	group := rep.PatternRedundancy["Hi {*}"]
	if !reflect.DeepEqual(group.Keys, []string{"a.b", "c.d"}) {
		t.Fatalf("pattern keys = %#v", group.Keys)
	}
	if !reflect.DeepEqual(group.Values, []string{"Hi {x}", "Hi {y}"}) {
		t.Fatalf("pattern values = %#v", group.Values)
	}
}

func TestAnalyzePatternSuppressedByExact(t *testing.T) {
	t.Parallel()

	// Both keys share the identical literal value: exact redundancy
	// covers the pair, so the pattern bucket adds nothing.
	_, rep := Analyze([]scanner.Instance{
		inst("a.hello", "Hello {name}"),
		inst("b.hello", "Hello {name}"),
	})

	if !reflect.DeepEqual(rep.ExactValues, []string{"Hello {name}"}) {
		t.Fatalf("ExactValues = %#v", rep.ExactValues)
	}
	if len(rep.Patterns) != 0 {
		t.Fatalf("Patterns = %#v, want suppressed", rep.Patterns)
	}
}

func TestAnalyzePatternSurvivesWithExtraKey(t *testing.T) {
	t.Parallel()

	// a and b are literal duplicates, but c differs only in the
	// placeholder name: the pattern bucket still surfaces the new pair.
	_, rep := Analyze([]scanner.Instance{
		inst("a.hello", "Hello {name}"),
		inst("b.hello", "Hello {name}"),
		inst("c.hello", "Hello {user}"),
	})

	if !reflect.DeepEqual(rep.Patterns, []string{"Hello {*}"}) {
		t.Fatalf("Patterns = %#v", rep.Patterns)
	}
	group := rep.PatternRedundancy["Hello {*}"]
	if !reflect.DeepEqual(group.Keys, []string{"a.hello", "b.hello", "c.hello"}) {
		t.Fatalf("pattern keys = %#v", group.Keys)
	}
}

func TestGroupByPrefix(t *testing.T) {
	t.Parallel()

	groups := GroupByPrefix([]scanner.Instance{
		inst("user.name", "Name"),
		inst("common.save", "Save"),
		inst("common.cancel", "Cancel"),
		inst("common.save", "Overwritten"), // first value wins
		inst("nodot", "No dot"),
	})

	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	// Sorted by prefix: common, nodot, user.
	if groups[0].Prefix != "common" || groups[1].Prefix != "nodot" || groups[2].Prefix != "user" {
		t.Fatalf("prefix order = %s, %s, %s", groups[0].Prefix, groups[1].Prefix, groups[2].Prefix)
	}

	common := groups[0]
	if !reflect.DeepEqual(common.Keys, []string{"common.cancel", "common.save"}) {
		t.Fatalf("common keys = %#v, want sorted", common.Keys)
	}
	if common.Values["common.save"] != "Save" {
		t.Fatalf("common.save = %q, want first value to win", common.Values["common.save"])
	}

	if groups[1].Values["nodot"] != "No dot" {
		t.Fatalf("nodot group = %#v", groups[1])
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	t.Parallel()

	ix, rep := Analyze(nil)
	if ix.Len() != 0 {
		t.Fatalf("Len() = %d", ix.Len())
	}
	if len(rep.ConflictKeys)+len(rep.ExactValues)+len(rep.Patterns) != 0 {
		t.Fatalf("empty input produced anomalies: %#v", rep)
	}
}
