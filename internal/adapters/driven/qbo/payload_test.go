package qbo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// retainerInvoice populates every field the payload can carry: a described
// line with explicit quantity and rate, and a bare line with only an amount.
func retainerInvoice() *domain.Invoice {
	return &domain.Invoice{
		DocNumber:    "1042",
		CustomerName: "Globex Corp",
		TxnDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		CustomerMemo: "Thank you for your business.",
		Terms:        "Net 30",
		Lines: []domain.InvoiceLine{
			{
				ItemName:    "Consulting",
				Description: "March retainer",
				Quantity:    decPtr("4"),
				Rate:        decPtr("150"),
				Amount:      decimal.RequireFromString("600"),
			},
			{
				ItemName: "Support Plan",
				Amount:   decimal.RequireFromString("99.5"),
			},
		},
	}
}

func resolveLines(inv *domain.Invoice, itemIDs ...string) []resolvedLine {
	lines := make([]resolvedLine, 0, len(inv.Lines))
	for i, l := range inv.Lines {
		lines = append(lines, resolvedLine{line: l, item: domain.RemoteHandle{ID: itemIDs[i]}})
	}
	return lines
}

func marshalPayload(t *testing.T, payload *invoicePayload) []byte {
	t.Helper()
	data, err := json.MarshalIndent(payload, "", "  ")
	require.NoError(t, err)
	return append(data, '\n')
}

func TestBuildInvoicePayload_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("full invoice", func(t *testing.T) {
		inv := retainerInvoice()
		term := domain.RemoteHandle{ID: "3"}

		payload := buildInvoicePayload(inv, domain.RemoteHandle{ID: "59"},
			resolveLines(inv, "12", "13"), &term, domain.PayloadOptions{})

		g.Assert(t, "invoice_full", marshalPayload(t, payload))
	})

	t.Run("only required fields", func(t *testing.T) {
		inv := retainerInvoice()
		term := domain.RemoteHandle{ID: "3"}

		payload := buildInvoicePayload(inv, domain.RemoteHandle{ID: "59"},
			resolveLines(inv, "12", "13"), &term, domain.PayloadOptions{OnlyRequired: true})

		g.Assert(t, "invoice_only_required", marshalPayload(t, payload))
	})

	t.Run("backfilled quantity and rate", func(t *testing.T) {
		inv := &domain.Invoice{
			DocNumber:    "2001",
			CustomerName: "Initech",
			TxnDate:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
			Lines: []domain.InvoiceLine{
				// Both blank: qty 1 at the full amount.
				{ItemName: "Setup Fee", Amount: decimal.RequireFromString("250")},
				// Quantity blank: solved from the rate.
				{ItemName: "Hourly Support", Rate: decPtr("40"), Amount: decimal.RequireFromString("100")},
				// Rate blank: solved from the quantity.
				{ItemName: "Licence", Quantity: decPtr("3"), Amount: decimal.RequireFromString("75")},
			},
		}

		payload := buildInvoicePayload(inv, domain.RemoteHandle{ID: "88"},
			resolveLines(inv, "21", "22", "23"), nil, domain.PayloadOptions{AutoFillQtyRate: true})

		g.Assert(t, "invoice_autofill", marshalPayload(t, payload))
	})
}

func TestBuildInvoicePayload_AbsentQtyRateStaysAbsent(t *testing.T) {
	inv := retainerInvoice()

	payload := buildInvoicePayload(inv, domain.RemoteHandle{ID: "59"},
		resolveLines(inv, "12", "13"), nil, domain.PayloadOptions{})

	// The second line has no quantity or rate; without backfill they must
	// not appear on the wire at all, not as zeroes.
	require.Len(t, payload.Line, 2)
	assert.Nil(t, payload.Line[1].SalesItemLineDetail.Qty)
	assert.Nil(t, payload.Line[1].SalesItemLineDetail.UnitPrice)
}

func TestBuildInvoicePayload_OnlyRequiredDropsResolvedTerm(t *testing.T) {
	inv := retainerInvoice()
	term := domain.RemoteHandle{ID: "3"}

	payload := buildInvoicePayload(inv, domain.RemoteHandle{ID: "59"},
		resolveLines(inv, "12", "13"), &term, domain.PayloadOptions{OnlyRequired: true})

	assert.Nil(t, payload.SalesTermRef)
	assert.Nil(t, payload.CustomerMemo)
	assert.Empty(t, payload.DueDate)
	assert.Empty(t, payload.Line[0].Description)
}

func TestBuildInvoicePayload_ZeroTxnDateOmitted(t *testing.T) {
	inv := retainerInvoice()
	inv.TxnDate = time.Time{}

	payload := buildInvoicePayload(inv, domain.RemoteHandle{ID: "59"},
		resolveLines(inv, "12", "13"), nil, domain.PayloadOptions{})

	assert.Empty(t, payload.TxnDate)
}
