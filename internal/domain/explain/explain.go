// Package explain renders a scoring breakdown into a human-readable
// narrative without any external call. The wording reuses the reasons
// produced by the scorers, so the explanation always agrees with the
// score it describes.
package explain

import (
	"fmt"
	"strings"

	"github.com/moniratna/reconcile/internal/domain/model"
	"github.com/moniratna/reconcile/internal/domain/normalize"
	"github.com/moniratna/reconcile/internal/domain/scoring"
)

const statementSeparator = " | "

// Narrative produces the deterministic explanation for a scored pair: one
// factual statement per dimension, plus currency and the overall
// confidence.
func Narrative(inv normalize.Invoice, txn normalize.Transaction, res scoring.Result) string {
	parts := []string{
		"Amount: " + res.Amount.Reason,
		"Date: " + res.Date.Reason,
		"Text: " + res.Text.Reason,
		"Currency: both " + inv.Currency,
		confidence(res.Composite),
	}
	return strings.Join(parts, statementSeparator)
}

// CurrencyMismatch produces the explanation for a pair whose currencies
// differ. No dimension is scored in that case; the composite is zero.
func CurrencyMismatch(inv normalize.Invoice, txn normalize.Transaction) string {
	parts := []string{
		fmt.Sprintf("Currency: different currencies (%s vs %s), the pair cannot match", inv.Currency, txn.Currency),
		confidence(0),
	}
	return strings.Join(parts, statementSeparator)
}

func confidence(composite float64) string {
	return fmt.Sprintf("Confidence: %.0f/100 (%s)", composite, model.ConfidenceLabel(composite))
}
