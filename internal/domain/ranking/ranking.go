// Package ranking evaluates the invoice x transaction cross-product,
// scores every currency-compatible pair, and selects the best candidates.
//
// Scoring a pair is pure, so the cross-product is fanned out across a
// bounded pool of goroutines; the deterministic sort happens only after
// all pairs are scored.
package ranking

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/moniratna/reconcile/internal/domain/explain"
	"github.com/moniratna/reconcile/internal/domain/model"
	"github.com/moniratna/reconcile/internal/domain/normalize"
	"github.com/moniratna/reconcile/internal/domain/scoring"
	"github.com/moniratna/reconcile/pkg/metrics"
)

// Default ranking configuration constants.
const (
	// DefaultTopN is used when the caller asks for zero or fewer
	// candidates.
	DefaultTopN = 5

	// defaultMaxTopN caps the candidate count to keep responses bounded.
	defaultMaxTopN = 20
)

// Result is the outcome of one ranking batch.
type Result struct {
	// Candidates are the selected pairs, best first.
	Candidates []model.Candidate

	// TotalProcessed is the full cross-product size (invoices x
	// transactions), matching what callers are charged for.
	TotalProcessed int

	// Skipped counts pairs that could not be scored because one of the
	// records was malformed. Such pairs are never silently dropped.
	Skipped int
}

// Ranker computes ranked match candidates for record batches.
type Ranker struct {
	scorer  *scoring.Scorer
	workers int
	maxTopN int
}

// New creates a Ranker around the given scorer. A nil scorer gets the
// default configuration.
func New(scorer *scoring.Scorer, opts ...Option) *Ranker {
	if scorer == nil {
		scorer = scoring.New()
	}
	r := &Ranker{
		scorer:  scorer,
		workers: runtime.NumCPU(),
		maxTopN: defaultMaxTopN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// pair is one cross-product entry queued for scoring.
type pair struct {
	invIdx int
	inv    normalize.Invoice
	txn    normalize.Transaction
	order  int
}

// scored is a pair after evaluation, carrying the tie-break keys.
type scored struct {
	candidate  model.Candidate
	composite  float64
	amountDiff decimal.Decimal
	dayDiff    int
	invIdx     int
}

// Rank scores every currency-compatible pair and returns up to topN
// candidates, best first. Zero invoices or zero transactions yield an
// empty result, not an error; malformed records only skip their own
// pairs.
func (r *Ranker) Rank(ctx context.Context, invoices []model.Invoice, transactions []model.Transaction, topN int) (Result, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if topN > r.maxTopN {
		topN = r.maxTopN
	}

	res := Result{
		Candidates:     []model.Candidate{},
		TotalProcessed: len(invoices) * len(transactions),
	}

	goodInvoices := make([]normalize.Invoice, 0, len(invoices))
	for _, raw := range invoices {
		inv, err := normalize.InvoiceFrom(raw)
		if err != nil {
			res.Skipped += len(transactions)
			continue
		}
		goodInvoices = append(goodInvoices, inv)
	}
	goodTransactions := make([]normalize.Transaction, 0, len(transactions))
	for _, raw := range transactions {
		txn, err := normalize.TransactionFrom(raw)
		if err != nil {
			res.Skipped += len(goodInvoices)
			continue
		}
		goodTransactions = append(goodTransactions, txn)
	}
	metrics.RecordPairsSkipped(res.Skipped)

	if len(goodInvoices) == 0 || len(goodTransactions) == 0 {
		return res, nil
	}

	// Currency compatibility is a hard pre-filter in batch mode:
	// mismatched pairs never become candidates.
	pairs := make([]pair, 0, len(goodInvoices)*len(goodTransactions))
	for i, inv := range goodInvoices {
		for _, txn := range goodTransactions {
			if inv.Currency != txn.Currency {
				continue
			}
			pairs = append(pairs, pair{invIdx: i, inv: inv, txn: txn, order: len(pairs)})
		}
	}

	evaluated, err := r.scoreAll(ctx, pairs)
	if err != nil {
		return Result{}, err
	}
	metrics.RecordPairsScored(len(evaluated))

	res.Candidates = r.selectTop(evaluated, len(goodInvoices), topN)
	return res, nil
}

// scoreAll fans the pairs out across the worker pool. Results land at
// their discovery index, so evaluation order never affects the outcome.
func (r *Ranker) scoreAll(ctx context.Context, pairs []pair) ([]scored, error) {
	results := make([]scored, len(pairs))

	jobs := make(chan pair)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results[p.order] = r.scoreOne(p)
			}
		}()
	}

	var cancelled error
feed:
	for _, p := range pairs {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case jobs <- p:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}
	return results, nil
}

func (r *Ranker) scoreOne(p pair) scored {
	sr := r.scorer.Score(p.inv, p.txn)

	dayDiff := math.MaxInt
	if p.inv.IssueDate != nil {
		dayDiff = scoring.DaysApart(*p.inv.IssueDate, p.txn.PostedAt)
	}

	return scored{
		candidate: model.Candidate{
			InvoiceID:     p.inv.ID,
			TransactionID: p.txn.ID,
			Breakdown: model.Breakdown{
				AmountScore: sr.Amount.Points,
				DateScore:   sr.Date.Points,
				TextScore:   sr.Text.Points,
				Composite:   sr.Composite,
			},
			Explanation: explain.Narrative(p.inv, p.txn, sr),
		},
		composite:  sr.Composite,
		amountDiff: p.inv.Amount.Sub(p.txn.Amount).Abs(),
		dayDiff:    dayDiff,
		invIdx:     p.invIdx,
	}
}

// selectTop keeps the best topN candidates per invoice, then the best topN
// overall. Ties break on smaller amount difference, then smaller day
// difference, then discovery order (the sort is stable).
func (r *Ranker) selectTop(evaluated []scored, invoiceCount, topN int) []model.Candidate {
	perInvoice := make([][]scored, invoiceCount)
	for _, s := range evaluated {
		perInvoice[s.invIdx] = append(perInvoice[s.invIdx], s)
	}

	kept := make([]scored, 0, invoiceCount*topN)
	for _, group := range perInvoice {
		sortScored(group)
		if len(group) > topN {
			group = group[:topN]
		}
		kept = append(kept, group...)
	}

	sortScored(kept)
	if len(kept) > topN {
		kept = kept[:topN]
	}

	out := make([]model.Candidate, len(kept))
	for i, s := range kept {
		out[i] = s.candidate
	}
	return out
}

func sortScored(s []scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].composite != s[j].composite {
			return s[i].composite > s[j].composite
		}
		if cmp := s[i].amountDiff.Cmp(s[j].amountDiff); cmp != 0 {
			return cmp < 0
		}
		return s[i].dayDiff < s[j].dayDiff
	})
}
