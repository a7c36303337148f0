// Package export writes translation tables as xlsx workbooks, one per key
// prefix, with columns key, en, and one column per target language.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/rosetta-i18n/rosetta/analyze"
	"github.com/rosetta-i18n/rosetta/config"
)

// Translations maps key -> language code -> translated text. A nil map
// exports empty language columns.
type Translations map[string]map[string]string

// Options configures a workbook export run.
type Options struct {
	// OutputDir receives the workbooks; created if missing.
	OutputDir string
	// Languages define the columns after key and en, in order.
	Languages []config.Language
	// OnLog emits progress messages.
	OnLog func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

// Created describes one written workbook.
type Created struct {
	// Name is the workbook file name (not the full path).
	Name string
	// Rows is the number of translation rows written.
	Rows int
}

// sheet is the worksheet written into each workbook.
const sheet = "Sheet1"

// WriteWorkbooks writes one <prefix>_translations.xlsx per prefix group.
// A failed workbook is reported and skipped; the remaining groups are
// still written, and the collected failures come back as a joined error.
func WriteWorkbooks(groups []analyze.PrefixGroup, translations Translations, opts Options) ([]Created, error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var created []Created
	var errs []error

	for _, g := range groups {
		name := g.Prefix + "_translations.xlsx"
		path := filepath.Join(opts.OutputDir, name)

		if err := writeWorkbook(path, g, translations, opts.Languages); err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", name, err))
			continue
		}

		created = append(created, Created{Name: name, Rows: g.Len()})
		opts.log("created %s (%d translations)", name, g.Len())
	}

	return created, errors.Join(errs...)
}

// writeWorkbook writes a single prefix group to path.
func writeWorkbook(path string, g analyze.PrefixGroup, translations Translations, langs []config.Language) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []any{"key", "en"}
	for _, lang := range langs {
		header = append(header, lang.Code)
	}
	if err := writeRow(f, 1, header); err != nil {
		return err
	}

	for i, key := range g.Keys {
		row := []any{key, g.Values[key]}
		for _, lang := range langs {
			row = append(row, translations[key][lang.Code])
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
