// Package config — explicit configuration for the scanner, exporter, and
// AI translator.
//
// Configuration is assembled from built-in defaults, an optional
// .rosetta.yaml file, and the environment (.env files are honored via
// godotenv). The resulting Config is passed to the components at
// construction time; nothing reads ambient state afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file name.
const FileName = ".rosetta.yaml"

// Duration wraps time.Duration so YAML accepts "1s", "500ms" and friends.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// APIKeyEnv is the environment variable carrying the translator API key.
const APIKeyEnv = "OPENAI_API_KEY"

// Language is a target translation language.
type Language struct {
	// Code is the spreadsheet column header (e.g. "da", "pt").
	Code string `yaml:"code"`
	// Name is the language name given to the AI translator.
	Name string `yaml:"name"`
}

// Translator configures the AI translation collaborator.
type Translator struct {
	// BaseURL is an OpenAI-compatible API base (default api.openai.com/v1).
	BaseURL string `yaml:"base_url,omitempty"`
	// Model is the chat model identifier.
	Model string `yaml:"model,omitempty"`
	// APIKey comes from the environment, never from the YAML file.
	APIKey string `yaml:"-"`
	// Temperature for chat completions.
	Temperature float64 `yaml:"temperature,omitempty"`
	// MaxTokens caps the completion size per request.
	MaxTokens int `yaml:"max_tokens,omitempty"`
	// BatchSize is how many texts are translated per API call.
	BatchSize int `yaml:"batch_size,omitempty"`
	// BatchDelay is the pause between consecutive API calls.
	BatchDelay Duration `yaml:"batch_delay,omitempty"`
	// Timeout is the per-request timeout.
	Timeout Duration `yaml:"timeout,omitempty"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy,omitempty"`
}

// Config carries all tunables for a scan/export run.
type Config struct {
	// Extensions is the file extension allowlist.
	Extensions []string `yaml:"extensions,omitempty"`
	// SkipDirs are directory names never descended into. Set to an empty
	// list (skip_dirs: []) to recurse everywhere.
	SkipDirs []string `yaml:"skip_dirs"`
	// Languages are the target languages for export and translation.
	Languages []Language `yaml:"languages,omitempty"`
	// OutputDir receives the exported workbooks.
	OutputDir string `yaml:"output_dir,omitempty"`
	// Translator holds the AI collaborator settings.
	Translator Translator `yaml:"translator,omitempty"`
}

// Default returns the built-in configuration: the extension set and target
// languages of the original tool, and OpenAI defaults for translation.
func Default() *Config {
	return &Config{
		Extensions: []string{".vue", ".js", ".ts"},
		SkipDirs:   []string{".git", "node_modules", "dist", "build", "coverage"},
		Languages: []Language{
			{Code: "DK", Name: "Danish"},
			{Code: "SW", Name: "Swedish"},
			{Code: "es", Name: "Spanish"},
			{Code: "pt", Name: "Portuguese"},
		},
		OutputDir: DefaultOutputDir(time.Now()),
		Translator: Translator{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-3.5-turbo",
			Temperature: 0.3,
			MaxTokens:   200,
			BatchSize:   10,
			BatchDelay:  Duration(time.Second),
			Timeout:     Duration(60 * time.Second),
		},
	}
}

// DefaultOutputDir returns the timestamped default export directory,
// output/output-DD-MM-YYYY_HH-MM.
func DefaultOutputDir(now time.Time) string {
	return filepath.Join("output", "output-"+now.Format("02-01-2006_15-04"))
}

// Load builds the effective configuration: defaults, then .rosetta.yaml
// from dir (if present), then the environment. A .env file in dir is
// loaded first when it exists.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := applyFile(cfg, filepath.Join(dir, FileName)); err != nil {
		return nil, err
	}

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	cfg.Translator.APIKey = os.Getenv(APIKeyEnv)

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load with an explicit config file path instead of a
// directory search.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := applyFile(cfg, path); err != nil {
		return nil, err
	}

	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	cfg.Translator.APIKey = os.Getenv(APIKeyEnv)

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays the YAML file at path onto cfg. A missing file is
// silently ignored.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// normalize cleans user-supplied values: extensions get a leading dot and
// lowercase, languages lose surrounding whitespace.
func (c *Config) normalize() {
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	for i := range c.Languages {
		c.Languages[i].Code = strings.TrimSpace(c.Languages[i].Code)
		c.Languages[i].Name = strings.TrimSpace(c.Languages[i].Name)
	}
	c.Translator.BaseURL = strings.TrimRight(strings.TrimSpace(c.Translator.BaseURL), "/")
}

func (c *Config) validate() error {
	if len(c.Extensions) == 0 {
		return fmt.Errorf("configuration error: no file extensions to scan")
	}
	for _, ext := range c.Extensions {
		if ext == "" || ext == "." {
			return fmt.Errorf("configuration error: invalid extension %q", ext)
		}
	}
	for _, lang := range c.Languages {
		if lang.Code == "" {
			return fmt.Errorf("configuration error: language with empty code")
		}
	}
	return nil
}

// LanguageCodes returns the configured target language codes in order.
func (c *Config) LanguageCodes() []string {
	codes := make([]string, len(c.Languages))
	for i, l := range c.Languages {
		codes[i] = l.Code
	}
	return codes
}

// LanguageName resolves a code to its configured name, falling back to the
// code itself for unknown languages.
func (c *Config) LanguageName(code string) string {
	for _, l := range c.Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
