// Package service exposes the two engine operations consumed by
// collaborators: batch ranking (ScoreAndRank) and single-pair explanation
// (ExplainPair). The service is stateless: every call is independent and
// safe to run in parallel with any other.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/moniratna/reconcile/internal/adapters/narrative"
	"github.com/moniratna/reconcile/internal/domain/explain"
	"github.com/moniratna/reconcile/internal/domain/model"
	"github.com/moniratna/reconcile/internal/domain/normalize"
	"github.com/moniratna/reconcile/internal/domain/ranking"
	"github.com/moniratna/reconcile/internal/domain/scoring"
	"github.com/moniratna/reconcile/pkg/logger"
	"github.com/moniratna/reconcile/pkg/metrics"
)

// Explanation sources reported to callers.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

const defaultNarrativeTimeout = 5 * time.Second

// RankResult is the outcome of one batch ranking call.
type RankResult struct {
	Candidates       []model.Candidate `json:"candidates"`
	TotalProcessed   int               `json:"total_processed"`
	Skipped          int               `json:"skipped"`
	ProcessingTimeMs float64           `json:"processing_time_ms"`
}

// Explanation is the outcome of one single-pair explain call.
type Explanation struct {
	Text      string          `json:"explanation"`
	Score     float64         `json:"score"`
	Breakdown model.Breakdown `json:"breakdown"`
	Source    string          `json:"source"`
}

// Service wires the scorer, ranker and the optional narrative capability.
type Service struct {
	scorer           *scoring.Scorer
	ranker           *ranking.Ranker
	generator        narrative.Generator
	narrativeTimeout time.Duration
	workerCount      int
	maxTopN          int
	logger           logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScorer replaces the default scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(svc *Service) {
		if s != nil {
			svc.scorer = s
		}
	}
}

// WithGenerator sets the optional narrative generation capability. Leaving
// it unset means every explanation comes from the deterministic path.
func WithGenerator(g narrative.Generator) Option {
	return func(svc *Service) {
		svc.generator = g
	}
}

// WithNarrativeTimeout bounds a single narrative attempt.
func WithNarrativeTimeout(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.narrativeTimeout = d
		}
	}
}

// WithWorkerCount sets the number of parallel pair-scoring goroutines.
func WithWorkerCount(count int) Option {
	return func(svc *Service) {
		if count > 0 {
			svc.workerCount = count
		}
	}
}

// WithMaxTopN caps the candidates a single ranking request may ask for.
func WithMaxTopN(limit int) Option {
	return func(svc *Service) {
		if limit > 0 {
			svc.maxTopN = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// New constructs a Service. The zero configuration scores with default
// weights and explains deterministically.
func New(opts ...Option) *Service {
	svc := &Service{
		scorer:           scoring.New(),
		narrativeTimeout: defaultNarrativeTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = logger.Get().Named("engine")
	}

	rankOpts := []ranking.Option{}
	if svc.workerCount > 0 {
		rankOpts = append(rankOpts, ranking.WithWorkerCount(svc.workerCount))
	}
	if svc.maxTopN > 0 {
		rankOpts = append(rankOpts, ranking.WithMaxTopN(svc.maxTopN))
	}
	svc.ranker = ranking.New(svc.scorer, rankOpts...)

	return svc
}

// ScoreAndRank scores the invoice x transaction cross-product and returns
// the best topN candidates. One malformed record never fails the batch;
// its pairs are skipped and counted.
func (s *Service) ScoreAndRank(ctx context.Context, invoices []model.Invoice, transactions []model.Transaction, topN int) (RankResult, error) {
	start := time.Now()
	metrics.RecordRankRequest()

	res, err := s.ranker.Rank(ctx, invoices, transactions, topN)
	if err != nil {
		return RankResult{}, err
	}

	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.RecordRankDuration(elapsedMs)
	metrics.RecordCandidatesReturned(len(res.Candidates))

	s.logger.Info(ctx, "ranking batch complete",
		logger.Int("invoices", len(invoices)),
		logger.Int("transactions", len(transactions)),
		logger.Int("candidates", len(res.Candidates)),
		logger.Int("skipped", res.Skipped),
		logger.Float64("elapsedMs", elapsedMs),
	)

	return RankResult{
		Candidates:       res.Candidates,
		TotalProcessed:   res.TotalProcessed,
		Skipped:          res.Skipped,
		ProcessingTimeMs: elapsedMs,
	}, nil
}

// ExplainPair scores one pair and explains the score. The explanation
// comes from the external narrative capability when one is configured and
// healthy, and from the deterministic explainer otherwise; forceFallback
// skips the external attempt entirely. The call fails only when one of
// the two records cannot be parsed.
func (s *Service) ExplainPair(ctx context.Context, invoice model.Invoice, transaction model.Transaction, forceFallback bool) (Explanation, error) {
	metrics.RecordExplainRequest()

	inv, err := normalize.InvoiceFrom(invoice)
	if err != nil {
		return Explanation{}, err
	}
	txn, err := normalize.TransactionFrom(transaction)
	if err != nil {
		return Explanation{}, err
	}

	// Single-pair mode scores a currency mismatch as zero instead of
	// excluding it, so the caller sees why the pair cannot match.
	if inv.Currency != txn.Currency {
		metrics.RecordNarrativeFallback()
		return Explanation{
			Text:   explain.CurrencyMismatch(inv, txn),
			Score:  0,
			Source: SourceFallback,
		}, nil
	}

	res := s.scorer.Score(inv, txn)
	breakdown := model.Breakdown{
		AmountScore: res.Amount.Points,
		DateScore:   res.Date.Points,
		TextScore:   res.Text.Points,
		Composite:   res.Composite,
	}

	// The deterministic narrative is computed once and reused as the
	// fallback, so the two paths cannot drift apart.
	fallbackText := explain.Narrative(inv, txn, res)

	text, source := s.narrate(ctx, narrative.Request{
		InvoiceID:     inv.ID,
		TransactionID: txn.ID,
		Currency:      inv.Currency,
		Composite:     res.Composite,
		Label:         model.ConfidenceLabel(res.Composite),
		AmountReason:  res.Amount.Reason,
		DateReason:    res.Date.Reason,
		TextReason:    res.Text.Reason,
	}, fallbackText, forceFallback)

	return Explanation{
		Text:      text,
		Score:     res.Composite,
		Breakdown: breakdown,
		Source:    source,
	}, nil
}

// narrate is the fallback coordinator: a single external attempt, bounded
// by the configured timeout, with any failure falling through to the
// deterministic text. External errors are never surfaced to the caller.
func (s *Service) narrate(ctx context.Context, req narrative.Request, fallbackText string, forceFallback bool) (string, string) {
	if forceFallback || s.generator == nil || !s.generator.Available(ctx) {
		metrics.RecordNarrativeFallback()
		return fallbackText, SourceFallback
	}

	metrics.RecordNarrativeAttempt()
	attemptCtx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
	defer cancel()

	text, err := s.generator.Generate(attemptCtx, req)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			s.logger.Warn(ctx, "narrative generation failed, using deterministic fallback",
				logger.String("invoiceID", req.InvoiceID),
				logger.String("transactionID", req.TransactionID),
				logger.Error(err),
			)
		}
		metrics.RecordNarrativeError()
		metrics.RecordNarrativeFallback()
		return fallbackText, SourceFallback
	}

	return text, SourceAI
}
