// Package translate fills translation tables through an OpenAI-compatible
// chat completions API.
//
// The protocol is batch-oriented: texts are sent as a numbered list with a
// system prompt demanding a JSON array back, one translated string per
// input, placeholders untouched. The service is treated as an opaque
// remote collaborator: per-batch failures are logged and leave cells
// empty, they never abort the run.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rosetta-i18n/rosetta/analyze"
	"github.com/rosetta-i18n/rosetta/config"
)

// Provider is the API endpoint configuration.
type Provider struct {
	// BaseURL is the API base, e.g. https://api.openai.com/v1.
	BaseURL string
	// APIKey authenticates the requests (Bearer).
	APIKey string
	// Model is the chat model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// ProviderFromConfig builds a Provider from the translator section of the
// configuration.
func ProviderFromConfig(t config.Translator) Provider {
	return Provider{
		BaseURL: t.BaseURL,
		APIKey:  t.APIKey,
		Model:   t.Model,
		Proxy:   t.Proxy,
		Timeout: t.Timeout.Std(),
	}
}

// CheckAPIKey verifies the provider is usable before any scanning starts.
// A missing key is a configuration error, not a translation failure.
func CheckAPIKey(p Provider) error {
	if strings.TrimSpace(p.APIKey) == "" {
		return fmt.Errorf("no API key configured: set the %s environment variable", config.APIKeyEnv)
	}
	return nil
}

// Entry is one (key, English text) pair to translate.
type Entry struct {
	Key  string
	Text string
}

// Row is the translated result for one key: the English source plus one
// cell per target language. Cells for failed batches stay empty.
type Row struct {
	Key          string
	English      string
	Translations map[string]string // language code -> text
}

// Options controls the batch translation behavior.
type Options struct {
	Provider Provider
	// Temperature for chat completions.
	Temperature float64
	// MaxTokens caps the completion size per request (0 = unset).
	MaxTokens int
	// BatchSize is how many entries go into one API call (0 = all).
	BatchSize int
	// BatchDelay is the pause between consecutive API calls.
	BatchDelay time.Duration
	// MaxRetries is the retry budget per request on 429/5xx. Default 3.
	MaxRetries int
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnProgress is called after each batch with per-language progress.
	OnProgress func(lang string, done, total int)
	// Verbose enables request-level logging through OnLog.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) effectiveTimeout() time.Duration {
	if o.Provider.Timeout > 0 {
		return o.Provider.Timeout
	}
	return 60 * time.Second
}

// systemPrompt instructs the model. {{targetLang}} is substituted per
// language before sending.
const systemPrompt = `You are a professional translator specializing in software and product localization. You are translating UI strings for a web application.

CONTEXT AWARENESS:
- The audience is application users
- Tone: professional yet approachable, clear and concise
- Use IT/software terminology that is standard in {{targetLang}}

CRITICAL RULES:
- NEVER translate anything inside curly brackets {}. Placeholders like {name}, {count}, {value} must remain EXACTLY as they are.
- Only translate the text outside the curly brackets.

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in {{targetLang}}, not word-for-word
- Prefer common, widely used terms in {{targetLang}} instead of literal translations
- If the input is a single word, output a single word
- Keep brand names and proper nouns unchanged

TECHNICAL REQUIREMENTS:
- Return ONLY a JSON array of translated strings, one for each input entry, in the same order.
- Preserve leading/trailing whitespace and punctuation patterns.
- Return ONLY the JSON array, no explanations or markdown code blocks.`

// TranslateTable translates every entry into every target language.
// Returned rows parallel the input entries. The context cancels the run;
// any other failure is reported through opts.OnLog and leaves cells empty.
func TranslateTable(ctx context.Context, entries []Entry, langs []config.Language, opts Options) ([]Row, error) {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			Key:          e.Key,
			English:      e.Text,
			Translations: make(map[string]string, len(langs)),
		}
	}
	if len(entries) == 0 || len(langs) == 0 {
		return rows, nil
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 || batchSize > len(entries) {
		batchSize = len(entries)
	}

	for _, lang := range langs {
		prompt := strings.ReplaceAll(systemPrompt, "{{targetLang}}", lang.Name)
		done := 0

		for start := 0; start < len(entries); start += batchSize {
			end := start + batchSize
			if end > len(entries) {
				end = len(entries)
			}
			batch := entries[start:end]

			if done > 0 && opts.BatchDelay > 0 {
				select {
				case <-ctx.Done():
					return rows, ctx.Err()
				case <-time.After(opts.BatchDelay):
				}
			}

			translations, err := translateBatch(ctx, batch, prompt, opts)
			if err != nil {
				if ctx.Err() != nil {
					return rows, ctx.Err()
				}
				opts.log("translation batch failed for %s (%d entries): %v", lang.Code, len(batch), err)
			} else {
				for i, text := range translations {
					src := batch[i].Text
					if !placeholdersPreserved(src, text) {
						opts.log("placeholders altered in %s translation of %q, keeping original", lang.Code, batch[i].Key)
						continue
					}
					rows[start+i].Translations[lang.Code] = text
				}
			}

			done += len(batch)
			if opts.OnProgress != nil {
				opts.OnProgress(lang.Code, done, len(entries))
			}
		}
	}

	return rows, nil
}

// translateBatch sends one numbered batch and parses the JSON array reply.
func translateBatch(ctx context.Context, batch []Entry, prompt string, opts Options) ([]string, error) {
	var userMsg strings.Builder
	userMsg.WriteString("Translate these entries:\n\n")
	for i, e := range batch {
		userMsg.WriteString(fmt.Sprintf("%d. %s\n", i+1, escapeForPrompt(e.Text)))
	}
	userMsg.WriteString(fmt.Sprintf("\nReturn a JSON array with exactly %d translated strings.", len(batch)))

	text, err := callProvider(ctx, opts, prompt, userMsg.String())
	if err != nil {
		return nil, err
	}

	return parseTranslations(text, len(batch))
}

// placeholdersPreserved reports whether every {placeholder} of src appears
// verbatim in dst.
func placeholdersPreserved(src, dst string) bool {
	for _, p := range analyze.Placeholders(src) {
		if !strings.Contains(dst, p) {
			return false
		}
	}
	return true
}

// escapeForPrompt keeps multi-line source texts on one numbered list line.
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// ---------------------------------------------------------------------------
// HTTP client
// ---------------------------------------------------------------------------

// callProvider POSTs a chat completion and returns the response text,
// retrying on 429 (honoring Retry-After), transport errors, and 5xx with
// exponential backoff.
func callProvider(ctx context.Context, opts Options, systemPrompt, userPrompt string) (string, error) {
	prov := opts.Provider
	body, err := buildChatRequest(prov.Model, systemPrompt, userPrompt, opts.Temperature, opts.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	endpoint := strings.TrimRight(prov.BaseURL, "/") + "/chat/completions"
	client := makeHTTPClient(prov.Proxy, opts.effectiveTimeout())
	maxRetries := opts.effectiveMaxRetries()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if prov.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+prov.APIKey)
		}

		if opts.Verbose {
			opts.log("attempt %d: POST %s (model %s)", attempt+1, endpoint, prov.Model)
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if err := sleepCtx(ctx, backoff(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryAfter(resp, backoff(attempt))
			if opts.Verbose {
				opts.log("429 rate limited, waiting %v (attempt %d/%d)", delay, attempt+1, maxRetries)
			}
			if attempt < maxRetries {
				if err := sleepCtx(ctx, delay); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("rate limited after %d retries: %s", maxRetries, truncate(string(respBody), 300))
		}

		if resp.StatusCode != http.StatusOK {
			if attempt < maxRetries && resp.StatusCode >= 500 {
				if err := sleepCtx(ctx, backoff(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		return extractResponseText(respBody)
	}

	return "", fmt.Errorf("exhausted all %d retries", maxRetries)
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

func buildChatRequest(model, systemPrompt, userPrompt string, temperature float64, maxTokens int) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      false,
	}
	return json.Marshal(req)
}

// extractResponseText pulls the assistant text out of a chat completions
// response, surfacing API error objects as errors.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseTranslations parses the model reply into exactly expected strings.
// Models occasionally wrap the array in markdown fences or prose; both are
// stripped before unmarshaling.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation response as JSON array: %w\nResponse: %s", err, truncate(content, 300))
	}

	if len(translations) != expected {
		return nil, fmt.Errorf("got %d translations, expected %d", len(translations), expected)
	}

	return translations, nil
}

// retryAfter reads the Retry-After header (seconds), falling back to the
// given default.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs*1000) * time.Millisecond
		}
	}
	return fallback
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
