// Package extract turns fetched page HTML into a structured PageRecord.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/llm"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/scrape"
)

// DefaultMaxChars caps the page text sent to the model.
const DefaultMaxChars = 30000

// Extractor turns page HTML into a PageRecord. Failures wrap
// model.ErrExtraction. Implementations do not retry.
type Extractor interface {
	Extract(ctx context.Context, html string) (*model.PageRecord, error)
}

// Func adapts a function to Extractor.
type Func func(ctx context.Context, html string) (*model.PageRecord, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, html string) (*model.PageRecord, error) {
	return f(ctx, html)
}

// LLMExtractor extracts PageRecords with a language model.
type LLMExtractor struct {
	client   llm.Client
	maxChars int
}

// Option configures an LLMExtractor.
type Option func(*LLMExtractor)

// WithMaxChars overrides DefaultMaxChars.
func WithMaxChars(n int) Option {
	return func(e *LLMExtractor) {
		if n > 0 {
			e.maxChars = n
		}
	}
}

// NewLLMExtractor creates an extractor backed by client.
func NewLLMExtractor(client llm.Client, opts ...Option) *LLMExtractor {
	e := &LLMExtractor{client: client, maxChars: DefaultMaxChars}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract cleans html to text, asks the model for the five-section JSON,
// validates its shape, and fills defaults for anything the model omitted.
func (e *LLMExtractor) Extract(ctx context.Context, html string) (*model.PageRecord, error) {
	text, err := scrape.HTMLToText(html)
	if err != nil {
		return nil, eris.Wrap(extractionErr(err), "extract: clean html")
	}
	if text == "" {
		return nil, eris.Wrap(model.ErrExtraction, "extract: page has no text content")
	}
	if len(text) > e.maxChars {
		text = truncateUTF8(text, e.maxChars)
	}

	resp, err := e.client.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(text),
		Temperature: llm.Temperature(0),
		Phase:       "extract",
	})
	if err != nil {
		return nil, eris.Wrap(extractionErr(err), "extract: complete")
	}

	doc := llm.CleanJSON(resp.Text)
	if err := ValidateShape(doc); err != nil {
		zap.L().Debug("extract: rejected model response",
			zap.Int("response_len", len(resp.Text)),
			zap.Error(err),
		)
		return nil, err
	}

	var record model.PageRecord
	if err := json.Unmarshal([]byte(doc), &record); err != nil {
		return nil, eris.Wrap(extractionErr(err), "extract: decode record")
	}
	record.ApplyDefaults()
	return &record, nil
}

func extractionErr(err error) error {
	return fmt.Errorf("%w: %w", model.ErrExtraction, err)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
