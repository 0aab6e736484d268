package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is one invoice to create remotely, assembled from the input rows
// sharing a document number. Immutable for the duration of a batch run.
type Invoice struct {
	// DocNumber is the business-visible invoice number, the natural key
	// used for idempotency checks against the remote side.
	DocNumber string
	// CustomerName is resolved remotely by display name. Customers are
	// never created by this system.
	CustomerName string
	// TxnDate is the invoice date.
	TxnDate time.Time
	// DueDate is optional detail, dropped in only-required mode.
	DueDate time.Time
	// CustomerMemo is the optional customer-facing note.
	CustomerMemo string
	// Terms names a sales term, resolved remotely when present.
	Terms string
	// Lines are the sales lines, in input order.
	Lines []InvoiceLine
}

// InvoiceLine is a single sales line. Quantity and Rate are pointers because
// a blank input cell means absent: the remote service treats a missing field
// and a zero differently, so absence must survive to the wire payload.
type InvoiceLine struct {
	ItemName    string
	Description string
	Quantity    *decimal.Decimal
	Rate        *decimal.Decimal
	Amount      decimal.Decimal
}

// EffectiveQtyRate returns the quantity and rate to put on the wire.
// Without backfill the stored values pass through untouched, nil staying nil.
// With backfill, blank values are derived from Amount: both blank means
// qty 1 at the full amount; a single blank is solved from the other side,
// rounded to 4 decimal places.
func (l InvoiceLine) EffectiveQtyRate(backfill bool) (qty, rate *decimal.Decimal) {
	qty, rate = l.Quantity, l.Rate
	if !backfill {
		return qty, rate
	}

	one := decimal.NewFromInt(1)
	switch {
	case qty == nil && rate == nil:
		amount := l.Amount
		qty, rate = &one, &amount
	case qty == nil:
		if rate.IsZero() {
			qty = &one
		} else {
			q := l.Amount.DivRound(*rate, 4)
			qty = &q
		}
	case rate == nil:
		if qty.IsZero() {
			zero := decimal.Zero
			rate = &zero
		} else {
			r := l.Amount.DivRound(*qty, 4)
			rate = &r
		}
	}
	return qty, rate
}

// PayloadOptions controls how an invoice renders into the wire payload.
type PayloadOptions struct {
	// OnlyRequired sends only the fields the remote service mandates,
	// dropping due date, memo, terms and line descriptions.
	OnlyRequired bool
	// AutoFillQtyRate back-fills blank Quantity/Rate from Amount.
	AutoFillQtyRate bool
	// DebugJSON logs the exact payload before the create call.
	DebugJSON bool
}
