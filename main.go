// rosetta — translation scanning and management CLI.
//
// Scans Vue/JS/TS source trees for t('key','value') / $t("key","value")
// calls, reports key conflicts and redundant values, exports per-prefix
// Excel workbooks, and optionally fills target languages through an
// OpenAI-compatible API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rosetta-i18n/rosetta/analyze"
	"github.com/rosetta-i18n/rosetta/config"
	"github.com/rosetta-i18n/rosetta/export"
	"github.com/rosetta-i18n/rosetta/i18n"
	"github.com/rosetta-i18n/rosetta/report"
	"github.com/rosetta-i18n/rosetta/scanner"
	"github.com/rosetta-i18n/rosetta/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var configPath string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rosetta",
		Short: "Scan source trees for translation calls and analyze conflicts",
		Long: `rosetta — translation scanning and management CLI.

Scans .vue/.js/.ts files for translation calls like t('key','value') and
$t("key","value", {params}), builds a key→value table, and reports key
conflicts, exact value redundancy, and pattern redundancy (values that
differ only in {placeholder} names).

Commands:
  scan        Scan a folder or file and print the analysis report
  preview     Show all translation dictionaries grouped by key prefix
  export      Scan and write per-prefix Excel workbooks (optional AI translation)
  langs       List configured target languages
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to .rosetta.yaml (default: ./"+config.FileName+")")

	root.AddCommand(
		newScanCmd(),
		newPreviewCmd(),
		newExportCmd(),
		newLangsCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// loadConfig loads the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(".")
}

// applyExtensions overrides the configured extension set from a flag value.
func applyExtensions(cfg *config.Config, exts []string) {
	if len(exts) > 0 {
		cfg.Extensions = exts
	}
}

// runScan executes the scan pipeline for a root path.
func runScan(root string, cfg *config.Config, showLog bool) (*scanner.Result, error) {
	w := scanner.NewWalker(cfg.Extensions, cfg.SkipDirs)
	if showLog {
		w.OnFile = func(path string, found int) {
			logInfo("%s → "+i18n.N("%d instance found", "%d instances found", found), path, found)
		}
	}
	return w.Scan(root)
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rosetta version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// scan
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	var extensions []string
	var showLog bool
	var showErrors bool

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a folder or file and print the analysis report",
		Long: `Scan a folder (recursively) or a single file for translation calls and
print the analysis report: totals, key conflicts, exact and pattern
redundancy, and per-file errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyExtensions(cfg, extensions)

			logInfo(i18n.T("Scanning folder: %s"), args[0])
			res, err := runScan(args[0], cfg, showLog)
			if err != nil {
				return err
			}

			ix, rep := analyze.Analyze(res.Instances)
			fmt.Print(report.Render(res, ix, rep))

			if showErrors {
				for _, fe := range res.Errors {
					logWarning("%s: %s", fe.File, fe.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "File extensions to scan (default from config: .vue,.js,.ts)")
	cmd.Flags().BoolVar(&showLog, "log", false, "Show detailed per-file scanning logs")
	cmd.Flags().BoolVar(&showErrors, "errors", false, "Repeat per-file errors on stderr after the report")

	return cmd
}

// ---------------------------------------------------------------------------
// preview
// ---------------------------------------------------------------------------

func newPreviewCmd() *cobra.Command {
	var extensions []string

	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Show all translation dictionaries grouped by key prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyExtensions(cfg, extensions)

			res, err := runScan(args[0], cfg, false)
			if err != nil {
				return err
			}

			groups := analyze.GroupByPrefix(res.Instances)
			fmt.Print(report.RenderPreview(groups))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "File extensions to scan")

	return cmd
}

// ---------------------------------------------------------------------------
// langs
// ---------------------------------------------------------------------------

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List configured target languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(i18n.T("Configured target languages:"))
			for _, lang := range cfg.Languages {
				fmt.Printf("  %-6s %s\n", lang.Code, lang.Name)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// export
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var (
		extensions  []string
		showLog     bool
		outputDir   string
		doTranslate bool
		langsFlag   string
		model       string
		baseURL     string
		assumeYes   bool
	)

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Scan and write per-prefix Excel workbooks",
		Long: `Scan a folder or file, print the analysis report, and write one Excel
workbook per key prefix (columns: key, en, one per target language).

With --translate, the language columns are filled through an
OpenAI-compatible chat API; the OPENAI_API_KEY environment variable (or a
.env file) must be set. Without it, the language columns stay empty for
manual translation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyExtensions(cfg, extensions)
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if model != "" {
				cfg.Translator.Model = model
			}
			if baseURL != "" {
				cfg.Translator.BaseURL = strings.TrimRight(baseURL, "/")
			}

			langs := cfg.Languages
			if langsFlag != "" {
				langs = intersectLanguages(cfg.Languages, strings.Split(langsFlag, ","))
			}

			prov := translate.ProviderFromConfig(cfg.Translator)
			if doTranslate {
				if err := translate.CheckAPIKey(prov); err != nil {
					return err
				}
			}

			logInfo(i18n.T("Scanning folder: %s"), args[0])
			res, err := runScan(args[0], cfg, showLog)
			if err != nil {
				return err
			}

			ix, rep := analyze.Analyze(res.Instances)
			fmt.Print(report.Render(res, ix, rep))

			if doTranslate && hasIssues(res, rep) && !assumeYes {
				logWarning("Found issues in translations (see report above). These may affect translation quality.")
				if !confirm("Continue anyway? (y/n): ") {
					fmt.Println(i18n.T("Process stopped by user."))
					return nil
				}
				logInfo(i18n.T("Proceeding with AI translation..."))
			}

			groups := analyze.GroupByPrefix(res.Instances)
			if len(groups) == 0 {
				logWarning("No translations found, nothing to export")
				return nil
			}

			var translations export.Translations
			if doTranslate {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()

				translations, err = translateGroups(ctx, groups, langs, cfg)
				if err != nil {
					// Partial results are still exported below.
					logError("AI translation incomplete: %v", err)
				}
			}

			created, err := export.WriteWorkbooks(groups, translations, export.Options{
				OutputDir: cfg.OutputDir,
				Languages: langs,
				OnLog:     logInfo,
			})
			if err != nil {
				return err
			}

			total := 0
			for _, c := range created {
				total += c.Rows
			}
			logSuccess(i18n.T("Excel files created in %s"), cfg.OutputDir)
			logInfo("%d workbooks, %d unique translations", len(created), total)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "File extensions to scan")
	cmd.Flags().BoolVar(&showLog, "log", false, "Show detailed per-file scanning logs")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for Excel files (default: output/output-DD-MM-YYYY_HH-MM)")
	cmd.Flags().BoolVar(&doTranslate, "translate", false, "Fill target languages via an OpenAI-compatible API (requires OPENAI_API_KEY)")
	cmd.Flags().StringVar(&langsFlag, "langs", "", "Target languages to export (comma-separated codes, default: all configured)")
	cmd.Flags().StringVar(&model, "model", "", "Chat model override")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL override")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Proceed despite detected issues without prompting")

	return cmd
}

// translateGroups runs the AI translator over every prefix group and
// merges the results into one key-indexed table.
func translateGroups(ctx context.Context, groups []analyze.PrefixGroup, langs []config.Language, cfg *config.Config) (export.Translations, error) {
	translations := make(export.Translations)

	opts := translate.Options{
		Provider:    translate.ProviderFromConfig(cfg.Translator),
		Temperature: cfg.Translator.Temperature,
		MaxTokens:   cfg.Translator.MaxTokens,
		BatchSize:   cfg.Translator.BatchSize,
		BatchDelay:  cfg.Translator.BatchDelay.Std(),
		OnLog:       logWarning,
		OnProgress: func(lang string, done, total int) {
			logInfo("  %s: %d/%d", lang, done, total)
		},
	}

	for _, g := range groups {
		logInfo("Translating prefix '%s' (%d entries) to %d languages...", g.Prefix, g.Len(), len(langs))

		entries := make([]translate.Entry, 0, g.Len())
		for _, key := range g.Keys {
			entries = append(entries, translate.Entry{Key: key, Text: g.Values[key]})
		}

		rows, err := translate.TranslateTable(ctx, entries, langs, opts)
		for _, row := range rows {
			translations[row.Key] = row.Translations
		}
		if err != nil {
			return translations, err
		}
	}

	return translations, nil
}

// hasIssues reports whether the scan surfaced anything that could degrade
// AI translation quality.
func hasIssues(res *scanner.Result, rep *analyze.Report) bool {
	return len(res.Errors) > 0 ||
		len(rep.ConflictKeys) > 0 ||
		len(rep.ExactValues) > 0 ||
		len(rep.Patterns) > 0
}

// confirm asks a yes/no question on stdin; empty input counts as yes.
func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Fprintln(os.Stderr, "Please enter 'y' for yes or 'n' for no.")
	}
}

// intersectLanguages filters configured languages by a list of codes,
// preserving configuration order and ignoring unknown codes.
func intersectLanguages(configured []config.Language, codes []string) []config.Language {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c != "" {
			want[strings.ToLower(c)] = true
		}
	}

	var out []config.Language
	for _, lang := range configured {
		if want[strings.ToLower(lang.Code)] {
			out = append(out, lang)
		}
	}
	return out
}
