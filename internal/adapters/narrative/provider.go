// Package narrative adapts optional external text-generation services that
// can enrich a match explanation. Every provider is best-effort: callers
// fall back to the deterministic explainer whenever a provider is
// unavailable or fails, so nothing here may ever be load-bearing.
package narrative

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

const defaultHTTPTimeout = 10 * time.Second

// Request carries the structured scoring facts a provider turns into
// prose. It is deliberately flat: providers receive conclusions, never the
// raw records.
type Request struct {
	InvoiceID     string
	TransactionID string
	Currency      string
	Composite     float64
	Label         string
	AmountReason  string
	DateReason    string
	TextReason    string
}

// Generator produces a natural-language explanation for a scored pair.
type Generator interface {
	// Available reports whether the capability is currently usable.
	Available(ctx context.Context) bool

	// Generate produces the narrative. Implementations make a single
	// attempt; retrying is not their business.
	Generate(ctx context.Context, req Request) (string, error)
}

// settings are shared across the HTTP-backed providers.
type settings struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option applies a configuration option to a provider.
type Option func(*settings)

// WithAPIKey sets the provider API key. An empty key leaves the provider
// permanently unavailable.
func WithAPIKey(key string) Option {
	return func(s *settings) {
		s.apiKey = key
	}
}

// WithModel overrides the provider's default model name.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		if url != "" {
			s.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// New selects a provider implementation by name. An empty name means the
// mock provider.
func New(provider string, opts ...Option) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return newOpenAI(opts...), nil
	case ProviderAnthropic:
		return newAnthropic(opts...), nil
	case ProviderMock, "":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// prompt renders the structured request into the instruction sent to a
// text-generation model.
func prompt(req Request) string {
	var b strings.Builder
	b.WriteString("Write one short paragraph for an accountant explaining why invoice ")
	b.WriteString(req.InvoiceID)
	b.WriteString(" and bank transaction ")
	b.WriteString(req.TransactionID)
	fmt.Fprintf(&b, " received a match confidence of %.0f/100 (%s).\n", req.Composite, req.Label)
	b.WriteString("Base the explanation strictly on these findings:\n")
	fmt.Fprintf(&b, "- amount: %s\n", req.AmountReason)
	fmt.Fprintf(&b, "- date: %s\n", req.DateReason)
	fmt.Fprintf(&b, "- text: %s\n", req.TextReason)
	fmt.Fprintf(&b, "- currency: %s\n", req.Currency)
	b.WriteString("Do not invent additional evidence.")
	return b.String()
}

func newSettings(model, baseURL string, opts ...Option) settings {
	s := settings{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
