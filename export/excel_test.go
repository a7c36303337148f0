package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rosetta-i18n/rosetta/analyze"
	"github.com/rosetta-i18n/rosetta/config"
	"github.com/rosetta-i18n/rosetta/scanner"
)

func testLangs() []config.Language {
	return []config.Language{
		{Code: "DK", Name: "Danish"},
		{Code: "es", Name: "Spanish"},
	}
}

// cell reads one cell from a saved workbook.
func cell(t *testing.T, path, ref string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("reading %s!%s: %v", path, ref, err)
	}
	return v
}

func TestWriteWorkbooks(t *testing.T) {
	t.Parallel()

	groups := analyze.GroupByPrefix([]scanner.Instance{
		{Key: "common.save", Value: "Save"},
		{Key: "common.cancel", Value: "Cancel"},
		{Key: "user.name", Value: "Name"},
	})
	translations := Translations{
		"common.save": {"DK": "Gem", "es": "Guardar"},
	}

	dir := t.TempDir()
	created, err := WriteWorkbooks(groups, translations, Options{
		OutputDir: dir,
		Languages: testLangs(),
	})
	if err != nil {
		t.Fatalf("WriteWorkbooks() error: %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("created %d workbooks, want 2", len(created))
	}
	if created[0].Name != "common_translations.xlsx" || created[0].Rows != 2 {
		t.Fatalf("created[0] = %#v", created[0])
	}
	if created[1].Name != "user_translations.xlsx" || created[1].Rows != 1 {
		t.Fatalf("created[1] = %#v", created[1])
	}

	common := filepath.Join(dir, "common_translations.xlsx")

	// Header row.
	for ref, want := range map[string]string{
		"A1": "key", "B1": "en", "C1": "DK", "D1": "es",
	} {
		if got := cell(t, common, ref); got != want {
			t.Errorf("%s = %q, want %q", ref, got, want)
		}
	}

	// Keys are sorted, so cancel precedes save.
	if got := cell(t, common, "A2"); got != "common.cancel" {
		t.Errorf("A2 = %q", got)
	}
	if got := cell(t, common, "B2"); got != "Cancel" {
		t.Errorf("B2 = %q", got)
	}
	if got := cell(t, common, "A3"); got != "common.save" {
		t.Errorf("A3 = %q", got)
	}
	if got := cell(t, common, "C3"); got != "Gem" {
		t.Errorf("C3 = %q", got)
	}
	if got := cell(t, common, "D3"); got != "Guardar" {
		t.Errorf("D3 = %q", got)
	}
	// No translation supplied for cancel: cells stay empty.
	if got := cell(t, common, "C2"); got != "" {
		t.Errorf("C2 = %q, want empty", got)
	}

	user := filepath.Join(dir, "user_translations.xlsx")
	if got := cell(t, user, "A2"); got != "user.name" {
		t.Errorf("user A2 = %q", got)
	}
}

func TestWriteWorkbooksNilTranslations(t *testing.T) {
	t.Parallel()

	groups := analyze.GroupByPrefix([]scanner.Instance{
		{Key: "app.title", Value: "My App"},
	})

	dir := t.TempDir()
	created, err := WriteWorkbooks(groups, nil, Options{
		OutputDir: dir,
		Languages: testLangs(),
	})
	if err != nil {
		t.Fatalf("WriteWorkbooks() error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created = %#v", created)
	}

	path := filepath.Join(dir, "app_translations.xlsx")
	if got := cell(t, path, "B2"); got != "My App" {
		t.Errorf("B2 = %q", got)
	}
	if got := cell(t, path, "C2"); got != "" {
		t.Errorf("C2 = %q, want empty", got)
	}
}

func TestWriteWorkbooksCreatesOutputDir(t *testing.T) {
	t.Parallel()

	groups := analyze.GroupByPrefix([]scanner.Instance{
		{Key: "a.b", Value: "x"},
	})

	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := WriteWorkbooks(groups, nil, Options{OutputDir: dir, Languages: testLangs()}); err != nil {
		t.Fatalf("WriteWorkbooks() error: %v", err)
	}
	if got := cell(t, filepath.Join(dir, "a_translations.xlsx"), "A1"); got != "key" {
		t.Errorf("A1 = %q", got)
	}
}

func TestWriteWorkbooksNoGroups(t *testing.T) {
	t.Parallel()

	created, err := WriteWorkbooks(nil, nil, Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("WriteWorkbooks() error: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("created = %#v", created)
	}
}
