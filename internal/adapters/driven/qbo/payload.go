package qbo

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// dateLayout is the ISO date format QBO expects on the wire.
const dateLayout = "2006-01-02"

// refPayload is an entity reference ({"value": "<remote id>"}).
type refPayload struct {
	Value string `json:"value"`
}

// memoPayload wraps a CustomerMemo string.
type memoPayload struct {
	Value string `json:"value"`
}

type salesItemDetailPayload struct {
	ItemRef   refPayload   `json:"ItemRef"`
	Qty       *json.Number `json:"Qty,omitempty"`
	UnitPrice *json.Number `json:"UnitPrice,omitempty"`
}

type linePayload struct {
	Amount              json.Number            `json:"Amount"`
	DetailType          string                 `json:"DetailType"`
	Description         string                 `json:"Description,omitempty"`
	SalesItemLineDetail salesItemDetailPayload `json:"SalesItemLineDetail"`
}

// invoicePayload is the QBO invoice create body.
type invoicePayload struct {
	DocNumber    string        `json:"DocNumber"`
	TxnDate      string        `json:"TxnDate,omitempty"`
	CustomerRef  refPayload    `json:"CustomerRef"`
	Line         []linePayload `json:"Line"`
	DueDate      string        `json:"DueDate,omitempty"`
	CustomerMemo *memoPayload  `json:"CustomerMemo,omitempty"`
	SalesTermRef *refPayload   `json:"SalesTermRef,omitempty"`
}

// resolvedLine pairs an input line with the remote item it references.
type resolvedLine struct {
	line domain.InvoiceLine
	item domain.RemoteHandle
}

// buildInvoicePayload assembles the create body from an invoice and its
// resolved references. Absent Qty/Rate stay absent on the wire; OnlyRequired
// drops every optional field.
func buildInvoicePayload(
	inv *domain.Invoice,
	customer domain.RemoteHandle,
	lines []resolvedLine,
	term *domain.RemoteHandle,
	opts domain.PayloadOptions,
) *invoicePayload {
	payload := &invoicePayload{
		DocNumber:   inv.DocNumber,
		CustomerRef: refPayload{Value: customer.ID},
		Line:        make([]linePayload, 0, len(lines)),
	}
	if !inv.TxnDate.IsZero() {
		payload.TxnDate = inv.TxnDate.Format(dateLayout)
	}

	for _, rl := range lines {
		wire := linePayload{
			Amount:     decimalNumber(rl.line.Amount),
			DetailType: "SalesItemLineDetail",
			SalesItemLineDetail: salesItemDetailPayload{
				ItemRef: refPayload{Value: rl.item.ID},
			},
		}
		qty, rate := rl.line.EffectiveQtyRate(opts.AutoFillQtyRate)
		if qty != nil {
			wire.SalesItemLineDetail.Qty = decimalNumberPtr(qty)
		}
		if rate != nil {
			wire.SalesItemLineDetail.UnitPrice = decimalNumberPtr(rate)
		}
		if !opts.OnlyRequired && rl.line.Description != "" {
			wire.Description = rl.line.Description
		}
		payload.Line = append(payload.Line, wire)
	}

	if opts.OnlyRequired {
		return payload
	}

	if !inv.DueDate.IsZero() {
		payload.DueDate = inv.DueDate.Format(dateLayout)
	}
	if inv.CustomerMemo != "" {
		payload.CustomerMemo = &memoPayload{Value: inv.CustomerMemo}
	}
	if term != nil {
		payload.SalesTermRef = &refPayload{Value: term.ID}
	}
	return payload
}

// decimalNumber renders a decimal as a JSON number, not a quoted string.
func decimalNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func decimalNumberPtr(d *decimal.Decimal) *json.Number {
	n := json.Number(d.String())
	return &n
}
