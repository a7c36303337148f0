// Package i18n localizes rosetta's own user-facing strings.
//
// It wraps gotext around locales embedded in the binary. Call Init once at
// startup; T and N then translate, falling back to the original string
// when no catalog matches (standard gettext passthrough).
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled translation catalogs,
// locales/{lang}/LC_MESSAGES/rosetta.po.
//
//go:embed all:locales
var locales embed.FS

const domain = "rosetta"

var catalog *gotext.Locale

// Init loads the catalog for lang, auto-detecting from LANGUAGE, LC_ALL,
// LC_MESSAGES, LANG (in GNU gettext priority order) when lang is empty.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	catalog = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	catalog.AddDomain(domain)
	catalog.SetDomain(domain)
}

// T translates a message, returning it unchanged when untranslated.
func T(msgid string) string {
	if catalog == nil {
		return msgid
	}
	return catalog.Get(msgid)
}

// N translates with plural forms; n selects the form.
func N(singular, plural string, n int) string {
	if catalog == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return catalog.GetN(singular, plural, n)
}

// detectLanguage resolves the user's locale from the environment.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE is a colon-separated preference list
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// strip encoding suffix: "da_DK.UTF-8" -> "da_DK"
		val, _, _ = strings.Cut(val, ".")
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
