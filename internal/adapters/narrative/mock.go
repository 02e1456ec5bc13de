package narrative

import (
	"context"
	"fmt"
)

// Mock is a deterministic in-process provider used in development and
// tests. By default it is available and produces a fixed-format summary;
// options flip it into the failure modes the coordinator must survive.
type Mock struct {
	unavailable bool
	err         error
	text        string
}

// MockOption applies a configuration option to the Mock provider.
type MockOption func(*Mock)

// WithMockUnavailable makes the provider report itself unusable.
func WithMockUnavailable() MockOption {
	return func(m *Mock) {
		m.unavailable = true
	}
}

// WithMockError makes every Generate call fail with err.
func WithMockError(err error) MockOption {
	return func(m *Mock) {
		if err != nil {
			m.err = err
		}
	}
}

// WithMockText overrides the generated text.
func WithMockText(text string) MockOption {
	return func(m *Mock) {
		if text != "" {
			m.text = text
		}
	}
}

// NewMock creates a Mock provider.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Available reports the configured availability.
func (m *Mock) Available(_ context.Context) bool {
	return !m.unavailable
}

// Generate returns a deterministic narrative built from the request.
func (m *Mock) Generate(_ context.Context, req Request) (string, error) {
	if m.unavailable {
		return "", ErrUnavailable
	}
	if m.err != nil {
		return "", m.err
	}
	if m.text != "" {
		return m.text, nil
	}
	return fmt.Sprintf(
		"Invoice %s and transaction %s look like a %s-confidence match (%.0f/100): %s; %s; %s.",
		req.InvoiceID, req.TransactionID, req.Label, req.Composite,
		req.AmountReason, req.DateReason, req.TextReason,
	), nil
}
