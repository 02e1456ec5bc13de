// Package normalize canonicalizes raw invoice and transaction fields before
// scoring: amounts become exact decimals, text is lowercased and trimmed,
// and absent optional fields stay distinguishable from empty ones.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moniratna/reconcile/internal/domain/model"
)

const currencyCodeLen = 3

// Text is an optional canonical text field. Present is false when the
// caller supplied no value at all, which scorers treat differently from a
// supplied-but-empty value.
type Text struct {
	Value   string
	Present bool
}

// TextOf canonicalizes an optional raw string: lowercase, surrounding
// whitespace stripped. A nil pointer yields an absent Text.
func TextOf(raw *string) Text {
	if raw == nil {
		return Text{}
	}
	return Text{Value: strings.ToLower(strings.TrimSpace(*raw)), Present: true}
}

// FirstToken returns the first whitespace-delimited token of the value, or
// the empty string when there is none.
func (t Text) FirstToken() string {
	fields := strings.Fields(t.Value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Invoice is the canonical form of a model.Invoice used by the scorers.
type Invoice struct {
	ID            string
	Amount        decimal.Decimal
	Currency      string
	IssueDate     *time.Time
	Description   Text
	InvoiceNumber Text
	VendorName    Text
}

// Transaction is the canonical form of a model.Transaction.
type Transaction struct {
	ID          string
	Amount      decimal.Decimal
	Currency    string
	PostedAt    time.Time
	Description Text
}

// InvoiceFrom validates and canonicalizes a raw invoice record.
func InvoiceFrom(raw model.Invoice) (Invoice, error) {
	amount, err := parseAmount(raw.Amount)
	if err != nil {
		return Invoice{}, fmt.Errorf("invoice %s: %w", raw.ID, err)
	}
	currency, err := parseCurrency(raw.Currency)
	if err != nil {
		return Invoice{}, fmt.Errorf("invoice %s: %w", raw.ID, err)
	}
	return Invoice{
		ID:            raw.ID,
		Amount:        amount,
		Currency:      currency,
		IssueDate:     raw.IssueDate,
		Description:   TextOf(raw.Description),
		InvoiceNumber: TextOf(raw.InvoiceNumber),
		VendorName:    TextOf(raw.VendorName),
	}, nil
}

// TransactionFrom validates and canonicalizes a raw transaction record.
// The posting timestamp is required.
func TransactionFrom(raw model.Transaction) (Transaction, error) {
	amount, err := parseAmount(raw.Amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", raw.ID, err)
	}
	currency, err := parseCurrency(raw.Currency)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", raw.ID, err)
	}
	if raw.PostedAt.IsZero() {
		return Transaction{}, fmt.Errorf("transaction %s: %w", raw.ID, ErrMissingTimestamp)
	}
	return Transaction{
		ID:          raw.ID,
		Amount:      amount,
		Currency:    currency,
		PostedAt:    raw.PostedAt,
		Description: TextOf(raw.Description),
	}, nil
}

// parseAmount parses an exact fixed-point decimal. Binary floating point is
// never involved, so cent-level drift cannot occur.
func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrBadAmount, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %q", ErrBadAmount, raw)
	}
	return d, nil
}

// parseCurrency upper-cases and validates a 3-letter currency code.
func parseCurrency(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != currencyCodeLen {
		return "", fmt.Errorf("%w: %q", ErrBadCurrency, raw)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrBadCurrency, raw)
		}
	}
	return code, nil
}
