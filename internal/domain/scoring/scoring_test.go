package scoring_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/moniratna/reconcile/internal/domain/normalize"
	"github.com/moniratna/reconcile/internal/domain/scoring"
)

func ptr(s string) *string { return &s }

func invoice(amount string, issue *time.Time, desc, number, vendor *string) normalize.Invoice {
	return normalize.Invoice{
		ID:            "inv-1",
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		IssueDate:     issue,
		Description:   normalize.TextOf(desc),
		InvoiceNumber: normalize.TextOf(number),
		VendorName:    normalize.TextOf(vendor),
	}
}

func transaction(amount string, posted time.Time, desc *string) normalize.Transaction {
	return normalize.Transaction{
		ID:          "txn-1",
		Amount:      decimal.RequireFromString(amount),
		Currency:    "USD",
		PostedAt:    posted,
		Description: normalize.TextOf(desc),
	}
}

func TestAmountScoring(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		s := scoring.New()
		day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

		Convey("When the amounts are exactly equal", func() {
			res := s.Score(invoice("1000.00", &day, nil, nil, nil), transaction("1000.00", day, nil))

			Convey("Then the amount sub-score is the full weight with the exact-match reason", func() {
				So(res.Amount.Points, ShouldEqual, 40)
				So(res.Amount.Reason, ShouldEqual, "exact amount match")
			})
		})

		Convey("When the amounts differ by 5 percent", func() {
			res := s.Score(invoice("100", &day, nil, nil, nil), transaction("105", day, nil))

			Convey("Then each percent of difference costs two points", func() {
				So(res.Amount.Points, ShouldEqual, 30)
				So(res.Amount.Reason, ShouldContainSubstring, "differ by 5.0%")
			})
		})

		Convey("When the amounts differ by 1 percent", func() {
			res := s.Score(invoice("1000.00", &day, nil, nil, nil), transaction("1010.00", day, nil))

			Convey("Then the score is high and the reason mentions the tolerance", func() {
				So(res.Amount.Points, ShouldEqual, 38)
				So(res.Amount.Reason, ShouldContainSubstring, "within 2.0% tolerance")
			})
		})

		Convey("When the difference exceeds half the weight in percent", func() {
			res := s.Score(invoice("100", &day, nil, nil, nil), transaction("150", day, nil))

			Convey("Then the amount sub-score bottoms out at zero", func() {
				So(res.Amount.Points, ShouldEqual, 0)
			})
		})

		Convey("When both amounts are zero", func() {
			res := s.Score(invoice("0", &day, nil, nil, nil), transaction("0", day, nil))

			Convey("Then it counts as an exact match, not a division by zero", func() {
				So(res.Amount.Points, ShouldEqual, 40)
				So(res.Amount.Reason, ShouldEqual, "exact amount match")
			})
		})

		Convey("When the invoice amount is zero and the transaction is not", func() {
			res := s.Score(invoice("0", &day, nil, nil, nil), transaction("5.00", day, nil))

			Convey("Then the amount sub-score is zero", func() {
				So(res.Amount.Points, ShouldEqual, 0)
			})
		})
	})
}

func TestDateScoring(t *testing.T) {
	Convey("Given a scorer with the default 3-day window", t, func() {
		s := scoring.New()
		issue := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

		Convey("When the transaction posts on the invoice date", func() {
			res := s.Score(invoice("10", &issue, nil, nil, nil), transaction("10", issue.Add(10*time.Hour), nil))

			Convey("Then the date sub-score is the full weight", func() {
				So(res.Date.Points, ShouldEqual, 30)
				So(res.Date.Reason, ShouldEqual, "posted on the invoice date")
			})
		})

		Convey("When the transaction posts one day later", func() {
			res := s.Score(invoice("10", &issue, nil, nil, nil), transaction("10", issue.AddDate(0, 0, 1), nil))

			Convey("Then each day inside the window costs five points", func() {
				So(res.Date.Points, ShouldEqual, 25)
				So(res.Date.Reason, ShouldContainSubstring, "1 day")
			})
		})

		Convey("When the gap sits exactly on the window boundary", func() {
			res := s.Score(invoice("10", &issue, nil, nil, nil), transaction("10", issue.AddDate(0, 0, 3), nil))

			Convey("Then the in-window formula still applies", func() {
				So(res.Date.Points, ShouldEqual, 15)
			})
		})

		Convey("When the gap is one day past the window boundary", func() {
			res := s.Score(invoice("10", &issue, nil, nil, nil), transaction("10", issue.AddDate(0, 0, 4), nil))

			Convey("Then the gentler outside-window decay applies", func() {
				// 30 - 4 = 26: the jump across the boundary is a known
				// property of the scoring behavior.
				So(res.Date.Points, ShouldEqual, 26)
			})
		})

		Convey("When the gap is far outside the window", func() {
			res := s.Score(invoice("10", &issue, nil, nil, nil), transaction("10", issue.AddDate(0, 0, 36), nil))

			Convey("Then the date sub-score bottoms out at zero", func() {
				So(res.Date.Points, ShouldEqual, 0)
			})
		})

		Convey("When the invoice has no issue date", func() {
			res := s.Score(invoice("10", nil, nil, nil, nil), transaction("10", issue, nil))

			Convey("Then timing gets neutral half credit", func() {
				So(res.Date.Points, ShouldEqual, 15)
				So(res.Date.Reason, ShouldContainSubstring, "not available")
			})
		})
	})
}

func TestTextScoring(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		s := scoring.New()
		day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

		Convey("When the invoice number appears in the transaction description", func() {
			inv := invoice("10", &day, ptr("Office supplies"), ptr("INV-001"), ptr("Acme Corp"))
			res := s.Score(inv, transaction("10", day, ptr("Payment for INV-001 to Acme Corp")))

			Convey("Then the invoice-number tier fires alone, beating the vendor tier", func() {
				So(res.Text.Points, ShouldEqual, 20)
				So(res.TextTier, ShouldEqual, scoring.TierInvoiceNumber)
				So(res.Text.Reason, ShouldContainSubstring, "invoice number")
			})
		})

		Convey("When only the vendor name appears in the description", func() {
			inv := invoice("10", &day, ptr("Monthly service"), ptr("INV-002"), ptr("Acme Corp"))
			res := s.Score(inv, transaction("10", day, ptr("Payment to Acme Corp")))

			Convey("Then the vendor tier awards 15 points", func() {
				So(res.Text.Points, ShouldEqual, 15)
				So(res.TextTier, ShouldEqual, scoring.TierVendorName)
				So(res.Text.Reason, ShouldContainSubstring, "vendor name")
			})
		})

		Convey("When only the leading description token overlaps", func() {
			inv := invoice("10", &day, ptr("Office supplies"), nil, nil)
			res := s.Score(inv, transaction("10", day, ptr("payment for office equipment")))

			Convey("Then the partial tier awards 10 points", func() {
				So(res.Text.Points, ShouldEqual, 10)
				So(res.TextTier, ShouldEqual, scoring.TierPartialToken)
			})
		})

		Convey("When nothing overlaps", func() {
			inv := invoice("10", &day, ptr("Office supplies"), ptr("INV-003"), nil)
			res := s.Score(inv, transaction("10", day, ptr("unrelated payment")))

			Convey("Then the text sub-score is zero", func() {
				So(res.Text.Points, ShouldEqual, 0)
				So(res.TextTier, ShouldEqual, scoring.TierNone)
			})
		})

		Convey("When the transaction has no description at all", func() {
			inv := invoice("10", &day, ptr("Office supplies"), ptr("INV-003"), nil)
			res := s.Score(inv, transaction("10", day, nil))

			Convey("Then absence of data is named, not scored", func() {
				So(res.Text.Points, ShouldEqual, 0)
				So(res.Text.Reason, ShouldContainSubstring, "insufficient text data")
			})
		})
	})
}

func TestCompositeScore(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		s := scoring.New()
		issue := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

		Convey("When every dimension matches perfectly", func() {
			inv := invoice("1000.00", &issue, ptr("Office supplies"), ptr("INV-001"), nil)
			txn := transaction("1000.00", issue.Add(10*time.Hour), ptr("Payment office supplies ref INV-001"))
			res := s.Score(inv, txn)

			Convey("Then the composite is in range and reflects 40+30+20", func() {
				So(res.Composite, ShouldEqual, 90)
				So(res.Composite, ShouldBeLessThanOrEqualTo, 100)
			})
		})

		Convey("When nothing matches", func() {
			inv := invoice("1000.00", &issue, ptr("Office supplies"), ptr("INV-001"), nil)
			txn := transaction("5000.00", issue.AddDate(0, 0, 36), ptr("unrelated payment"))
			res := s.Score(inv, txn)

			Convey("Then the composite bottoms out at zero, never below", func() {
				So(res.Composite, ShouldEqual, 0)
			})
		})

		Convey("When weights are tuned above 100 in total", func() {
			big := scoring.New(
				scoring.WithAmountWeight(80),
				scoring.WithDateWeight(40),
				scoring.WithTextWeight(30),
			)
			inv := invoice("1000.00", &issue, nil, ptr("INV-001"), nil)
			txn := transaction("1000.00", issue, ptr("ref INV-001"))
			res := big.Score(inv, txn)

			Convey("Then the composite is clamped to 100", func() {
				So(res.Composite, ShouldEqual, 100)
			})
		})
	})
}

func TestDaysApart(t *testing.T) {
	Convey("Given two instants", t, func() {
		a := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

		Convey("Then the whole-day distance truncates sub-day differences", func() {
			So(scoring.DaysApart(a, a.Add(23*time.Hour)), ShouldEqual, 0)
			So(scoring.DaysApart(a, a.Add(25*time.Hour)), ShouldEqual, 1)
		})

		Convey("And the distance is symmetric", func() {
			So(scoring.DaysApart(a.AddDate(0, 0, 7), a), ShouldEqual, 7)
		})
	})
}
