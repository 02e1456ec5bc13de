package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moniratna/reconcile/internal/adapters/narrative"
	app "github.com/moniratna/reconcile/internal/app"
	"github.com/moniratna/reconcile/internal/config"
	"github.com/moniratna/reconcile/internal/domain/model"
	"github.com/moniratna/reconcile/internal/domain/ranking"
	"github.com/moniratna/reconcile/internal/domain/scoring"
	"github.com/moniratna/reconcile/pkg/logger"
)

func main() {
	var (
		invoicesPath     = flag.String("invoices", "invoices.json", "Path to the invoices JSON file")
		transactionsPath = flag.String("transactions", "transactions.json", "Path to the transactions JSON file")
		topN             = flag.Int("top", ranking.DefaultTopN, "Number of top candidates to return")
		explainMode      = flag.Bool("explain", false, "Explain a single pair instead of ranking")
		invoiceID        = flag.String("invoice-id", "", "Invoice id for -explain (default: first invoice)")
		transactionID    = flag.String("transaction-id", "", "Transaction id for -explain (default: first transaction)")
		forceFallback    = flag.Bool("force-fallback", false, "Skip the external narrative capability for -explain")
		showConfig       = flag.Bool("show-config", false, "Print the active configuration and exit")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if *showConfig {
		emitJSON(cfg.Snapshot())
		return
	}

	gen, err := narrative.New(cfg.NarrativeProvider,
		narrative.WithAPIKey(cfg.NarrativeAPIKey),
		narrative.WithModel(cfg.NarrativeModel),
	)
	if err != nil {
		os.Stderr.WriteString("failed to create narrative provider: " + err.Error() + "\n")
		os.Exit(1)
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithScorer(scoring.New(
			scoring.WithAmountWeight(cfg.AmountExactWeight),
			scoring.WithDateWeight(cfg.DateProximityWeight),
			scoring.WithTextWeight(cfg.TextSimilarityWeight),
			scoring.WithProximityWindowDays(cfg.DateProximityDays),
			scoring.WithTolerancePercent(cfg.AmountTolerancePercent),
		)),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithMaxTopN(cfg.MaxTopN),
		app.WithGenerator(gen),
		app.WithNarrativeTimeout(time.Duration(cfg.NarrativeTimeoutMS)*time.Millisecond),
	)

	var invoices []model.Invoice
	if err := readJSON(*invoicesPath, &invoices); err != nil {
		os.Stderr.WriteString("failed to read invoices: " + err.Error() + "\n")
		os.Exit(1)
	}
	var transactions []model.Transaction
	if err := readJSON(*transactionsPath, &transactions); err != nil {
		os.Stderr.WriteString("failed to read transactions: " + err.Error() + "\n")
		os.Exit(1)
	}

	if *explainMode {
		inv, ok := findInvoice(invoices, *invoiceID)
		if !ok {
			os.Stderr.WriteString("invoice not found: " + *invoiceID + "\n")
			os.Exit(1)
		}
		txn, ok := findTransaction(transactions, *transactionID)
		if !ok {
			os.Stderr.WriteString("transaction not found: " + *transactionID + "\n")
			os.Exit(1)
		}
		result, err := svc.ExplainPair(ctx, inv, txn, *forceFallback)
		if err != nil {
			os.Stderr.WriteString("explain failed: " + err.Error() + "\n")
			os.Exit(1)
		}
		emitJSON(result)
		return
	}

	result, err := svc.ScoreAndRank(ctx, invoices, transactions, *topN)
	if err != nil {
		os.Stderr.WriteString("ranking failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	emitJSON(result)
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "failed to encode output:", err)
	}
}

func findInvoice(invoices []model.Invoice, id string) (model.Invoice, bool) {
	if len(invoices) == 0 {
		return model.Invoice{}, false
	}
	if id == "" {
		return invoices[0], true
	}
	for _, inv := range invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return model.Invoice{}, false
}

func findTransaction(transactions []model.Transaction, id string) (model.Transaction, bool) {
	if len(transactions) == 0 {
		return model.Transaction{}, false
	}
	if id == "" {
		return transactions[0], true
	}
	for _, txn := range transactions {
		if txn.ID == id {
			return txn, true
		}
	}
	return model.Transaction{}, false
}
