// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// Invoice is a billable amount awaiting payment, as supplied by the caller.
// Amount is the raw decimal string so no precision is lost on the way in;
// optional fields use pointers so "not provided" stays distinguishable from
// an empty value.
type Invoice struct {
	ID            string     `json:"id"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	IssueDate     *time.Time `json:"invoice_date,omitempty"`
	Description   *string    `json:"description,omitempty"`
	InvoiceNumber *string    `json:"invoice_number,omitempty"`
	VendorName    *string    `json:"vendor_name,omitempty"`
}

// Transaction is a posted bank-ledger movement of funds.
// PostedAt is always required, unlike the invoice issue date.
type Transaction struct {
	ID          string    `json:"id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	PostedAt    time.Time `json:"posted_at"`
	Description *string   `json:"description,omitempty"`
}

// Breakdown carries the three dimension sub-scores and the composite.
// Composite is always clamp(round(amount+date+text), 0, 100).
type Breakdown struct {
	AmountScore float64 `json:"amount_score"`
	DateScore   float64 `json:"date_score"`
	TextScore   float64 `json:"text_score"`
	Composite   float64 `json:"score"`
}

// Candidate pairs one invoice with one transaction. It is an immutable
// value: a pure function of the two records and the active configuration.
type Candidate struct {
	InvoiceID     string    `json:"invoice_id"`
	TransactionID string    `json:"transaction_id"`
	Breakdown     Breakdown `json:"breakdown"`
	Explanation   string    `json:"explanation"`
}

// Confidence label thresholds on the composite score.
const (
	veryHighThreshold = 90
	highThreshold     = 70
	mediumThreshold   = 40
	lowThreshold      = 20
)

// ConfidenceLabel buckets a composite score into a human-readable label.
func ConfidenceLabel(composite float64) string {
	switch {
	case composite >= veryHighThreshold:
		return "Very High"
	case composite >= highThreshold:
		return "High"
	case composite >= mediumThreshold:
		return "Medium"
	case composite >= lowThreshold:
		return "Low"
	default:
		return "Very Low"
	}
}
