// Command sample-data generates invoice and transaction JSON datasets with
// a controllable overlap, so ranking output is demonstrable without real
// bank exports.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/moniratna/reconcile/internal/domain/model"
)

// Default generation constants.
const (
	defaultInvoiceCount     = 20
	defaultTransactionCount = 30
	defaultMatchRate        = 0.6
	defaultSeed             = 42

	maxAmountCents    = 500_000
	maxIssueAgeDays   = 60
	maxSettleLagDays  = 4
	outFilePermission = 0o644
)

var vendors = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella Supplies",
	"Stark Industries", "Wayne Logistics", "Tyrell Office",
}

var currencies = []string{"USD", "USD", "USD", "EUR", "GBP"}

func main() {
	var (
		invoiceCount     = flag.Int("invoices", defaultInvoiceCount, "Number of invoices to generate")
		transactionCount = flag.Int("transactions", defaultTransactionCount, "Number of transactions to generate")
		matchRate        = flag.Float64("match-rate", defaultMatchRate, "Fraction of transactions that settle a generated invoice")
		seed             = flag.Int64("seed", defaultSeed, "Random seed for reproducible datasets")
		invoicesOut      = flag.String("out-invoices", "invoices.json", "Output path for invoices")
		transactionsOut  = flag.String("out-transactions", "transactions.json", "Output path for transactions")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	now := time.Now().UTC().Truncate(24 * time.Hour)

	invoices := make([]model.Invoice, *invoiceCount)
	for i := range invoices {
		vendor := vendors[rng.Intn(len(vendors))]
		number := fmt.Sprintf("INV-%04d", 1000+i)
		issue := now.AddDate(0, 0, -rng.Intn(maxIssueAgeDays))
		desc := fmt.Sprintf("%s monthly services", vendor)
		invoices[i] = model.Invoice{
			ID:            uuid.New().String(),
			Amount:        randomAmount(rng),
			Currency:      currencies[rng.Intn(len(currencies))],
			IssueDate:     &issue,
			Description:   &desc,
			InvoiceNumber: &number,
			VendorName:    &vendor,
		}
	}

	transactions := make([]model.Transaction, *transactionCount)
	for i := range transactions {
		if rng.Float64() < *matchRate && len(invoices) > 0 {
			inv := invoices[rng.Intn(len(invoices))]
			desc := fmt.Sprintf("PAYMENT %s %s", *inv.InvoiceNumber, *inv.VendorName)
			transactions[i] = model.Transaction{
				ID:          uuid.New().String(),
				Amount:      inv.Amount,
				Currency:    inv.Currency,
				PostedAt:    inv.IssueDate.AddDate(0, 0, rng.Intn(maxSettleLagDays)).Add(time.Duration(rng.Intn(24)) * time.Hour),
				Description: &desc,
			}
			continue
		}
		desc := fmt.Sprintf("CARD PURCHASE %06d", rng.Intn(1_000_000))
		transactions[i] = model.Transaction{
			ID:          uuid.New().String(),
			Amount:      randomAmount(rng),
			Currency:    currencies[rng.Intn(len(currencies))],
			PostedAt:    now.AddDate(0, 0, -rng.Intn(maxIssueAgeDays)).Add(time.Duration(rng.Intn(24)) * time.Hour),
			Description: &desc,
		}
	}

	if err := writeJSON(*invoicesOut, invoices); err != nil {
		os.Stderr.WriteString("failed to write invoices: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := writeJSON(*transactionsOut, transactions); err != nil {
		os.Stderr.WriteString("failed to write transactions: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("wrote %d invoices to %s and %d transactions to %s\n",
		len(invoices), *invoicesOut, len(transactions), *transactionsOut)
}

// randomAmount produces a two-decimal amount as a string, the wire form
// the engine parses into an exact decimal.
func randomAmount(rng *rand.Rand) string {
	cents := rng.Intn(maxAmountCents) + 100
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, outFilePermission)
}
