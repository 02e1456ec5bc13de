// Package scoring computes the three dimension sub-scores (amount, date,
// text) for an invoice/transaction pair and combines them into a composite
// confidence score on a 0-100 scale.
//
// Every function here is pure: the same pair and the same configuration
// always produce the same result, so pairs may be scored concurrently.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moniratna/reconcile/internal/domain/normalize"
)

// Default scoring configuration constants.
const (
	defaultAmountWeight     = 40.0
	defaultDateWeight       = 30.0
	defaultTextWeight       = 30.0
	defaultWindowDays       = 3
	defaultTolerancePercent = 2.0

	// percentDiffPenalty costs 2 weight-points per percent of amount
	// difference, so the amount score hits zero once the difference
	// exceeds weight/2 percent (20% at the default 40-point weight).
	percentDiffPenalty = 2.0

	// inWindowDayPenalty costs 5 points per day of drift inside the
	// proximity window.
	inWindowDayPenalty = 5.0

	// Text tier sizes as fractions of the text weight. At the default
	// 30-point weight these are 20, 15 and 10 points.
	invoiceNumberTierFraction = 2.0 / 3.0
	vendorNameTierFraction    = 1.0 / 2.0
	partialTokenTierFraction  = 1.0 / 3.0

	maxComposite = 100.0
	hoursPerDay  = 24
)

// TextTier identifies which textual evidence tier fired, in priority
// order: an exact invoice-number reference beats a vendor mention, which
// beats a shared leading token.
type TextTier int

// Text evidence tiers.
const (
	TierNone TextTier = iota
	TierPartialToken
	TierVendorName
	TierInvoiceNumber
)

// Component is one dimension sub-score with its factual reason. The reason
// wording keys off the same branch that produced the points, so score and
// explanation cannot drift apart.
type Component struct {
	Points float64
	Reason string
}

// Result is the full breakdown for one pair.
type Result struct {
	Amount    Component
	Date      Component
	Text      Component
	TextTier  TextTier
	Composite float64
}

// Scorer holds the configured weights and tolerances.
type Scorer struct {
	amountWeight     float64
	dateWeight       float64
	textWeight       float64
	windowDays       int
	tolerancePercent float64
}

// New creates a Scorer with default weights, adjusted by options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		amountWeight:     defaultAmountWeight,
		dateWeight:       defaultDateWeight,
		textWeight:       defaultTextWeight,
		windowDays:       defaultWindowDays,
		tolerancePercent: defaultTolerancePercent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AmountWeight reports the configured maximum amount sub-score.
func (s *Scorer) AmountWeight() float64 { return s.amountWeight }

// DateWeight reports the configured maximum date sub-score.
func (s *Scorer) DateWeight() float64 { return s.dateWeight }

// TextWeight reports the configured maximum text sub-score.
func (s *Scorer) TextWeight() float64 { return s.textWeight }

// Score evaluates one normalized pair and returns the full breakdown.
// Currency compatibility is not checked here; callers apply it as a hard
// pre-filter (batch) or a forced-zero outcome (single-pair explain).
func (s *Scorer) Score(inv normalize.Invoice, txn normalize.Transaction) Result {
	amount := s.amount(inv.Amount, txn.Amount)
	date := s.date(inv.IssueDate, txn.PostedAt)
	text, tier := s.text(inv, txn)

	composite := math.Round(amount.Points + date.Points + text.Points)
	if composite < 0 {
		composite = 0
	}
	if composite > maxComposite {
		composite = maxComposite
	}

	return Result{
		Amount:    amount,
		Date:      date,
		Text:      text,
		TextTier:  tier,
		Composite: composite,
	}
}

// amount scores monetary proximity. Exact decimal equality earns the full
// weight; otherwise each percent of difference relative to the invoice
// amount costs percentDiffPenalty points. A zero invoice amount would make
// the percent-difference formula divide by zero, so it is special-cased:
// zero against zero is an exact match, zero against anything else scores
// nothing.
func (s *Scorer) amount(inv, txn decimal.Decimal) Component {
	if inv.Equal(txn) {
		return Component{Points: s.amountWeight, Reason: "exact amount match"}
	}
	if inv.IsZero() {
		return Component{Points: 0, Reason: "invoice amount is zero with a non-zero transaction amount"}
	}

	percentDiff, _ := inv.Sub(txn).Abs().Div(inv).Mul(decimal.NewFromInt(100)).Float64()
	points := math.Max(0, s.amountWeight-percentDiff*percentDiffPenalty)

	reason := fmt.Sprintf("amounts differ by %.1f%%", percentDiff)
	if percentDiff <= s.tolerancePercent {
		reason = fmt.Sprintf("amounts differ by %.1f%% (within %.1f%% tolerance)", percentDiff, s.tolerancePercent)
	}
	return Component{Points: points, Reason: reason}
}

// date scores calendar-day proximity. Inside the proximity window each day
// of drift costs inWindowDayPenalty points; outside it the decay is a
// gentler one point per day. The discontinuity at the window boundary is a
// long-standing property of the scoring behavior and is kept as is.
// An absent invoice date earns half the weight: timing cannot be assessed,
// so it is treated as neutral.
func (s *Scorer) date(issue *time.Time, posted time.Time) Component {
	if issue == nil {
		return Component{
			Points: s.dateWeight / 2,
			Reason: "invoice date not available, timing treated as neutral",
		}
	}

	days := DaysApart(*issue, posted)
	var points float64
	if days <= s.windowDays {
		points = s.dateWeight - float64(days)*inWindowDayPenalty
	} else {
		points = math.Max(0, s.dateWeight-float64(days))
	}

	if days == 0 {
		return Component{Points: points, Reason: "posted on the invoice date"}
	}
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return Component{
		Points: points,
		Reason: fmt.Sprintf("posted %d %s from the invoice date", days, unit),
	}
}

// text scores textual evidence through mutually exclusive tiers, highest
// first. Only the winning tier contributes points.
func (s *Scorer) text(inv normalize.Invoice, txn normalize.Transaction) (Component, TextTier) {
	desc := txn.Description
	if !desc.Present || desc.Value == "" {
		return Component{Points: 0, Reason: "insufficient text data for comparison"}, TierNone
	}

	if inv.InvoiceNumber.Present && inv.InvoiceNumber.Value != "" &&
		strings.Contains(desc.Value, inv.InvoiceNumber.Value) {
		return Component{
			Points: s.textWeight * invoiceNumberTierFraction,
			Reason: fmt.Sprintf("invoice number %q found in the transaction description", inv.InvoiceNumber.Value),
		}, TierInvoiceNumber
	}

	if inv.VendorName.Present && inv.VendorName.Value != "" &&
		strings.Contains(desc.Value, inv.VendorName.Value) {
		return Component{
			Points: s.textWeight * vendorNameTierFraction,
			Reason: fmt.Sprintf("vendor name %q found in the transaction description", inv.VendorName.Value),
		}, TierVendorName
	}

	if token := inv.Description.FirstToken(); token != "" && strings.Contains(desc.Value, token) {
		return Component{
			Points: s.textWeight * partialTokenTierFraction,
			Reason: fmt.Sprintf("shared word %q between the descriptions", token),
		}, TierPartialToken
	}

	return Component{Points: 0, Reason: "no textual overlap between the descriptions"}, TierNone
}

// DaysApart returns the whole-day distance between two instants: the
// absolute difference truncated to calendar days.
func DaysApart(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (hoursPerDay * time.Hour))
}
