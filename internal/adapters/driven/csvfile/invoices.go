package csvfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// inputDateLayout accepts both padded and unpadded month/day, the way
// spreadsheets format US dates.
const inputDateLayout = "1/2/2006"

// Invoice input column names, matching the spreadsheet template.
const (
	colInvoiceNo   = "InvoiceNo"
	colCustomer    = "Customer"
	colInvoiceDate = "InvoiceDate"
	colDueDate     = "DueDate"
	colMemo        = "CustomerMemo"
	colTerms       = "Terms"
	colItem        = "Item(Product/Service)"
	colItemDesc    = "ItemDescription"
	colItemQty     = "ItemQuantity"
	colItemRate    = "ItemRate"
	colItemAmount  = "ItemAmount"
)

// ReadInvoices parses the input file into invoices. Rows group by InvoiceNo
// in first-seen order; the first row of a group supplies the header fields
// and every row contributes a line item. Rows the parser cannot use are
// logged and dropped rather than failing the whole file.
func (r *Reader) ReadInvoices(_ context.Context, path string) ([]domain.Invoice, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: input file %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	rows, err := newRowReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := rows.requireColumns(colInvoiceNo, colCustomer, colInvoiceDate, colDueDate); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var (
		order   []string
		grouped = make(map[string]*domain.Invoice)
	)
	for {
		row, ok, err := rows.next()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if !ok {
			break
		}

		docNumber := row.get(colInvoiceNo)
		if docNumber == "" {
			logger.Warn("Row %d: missing InvoiceNo, skipping", row.line)
			continue
		}

		inv, seen := grouped[docNumber]
		if !seen {
			inv = &domain.Invoice{
				DocNumber:    docNumber,
				CustomerName: row.get(colCustomer),
				TxnDate:      parseInputDate(row, colInvoiceDate),
				DueDate:      parseInputDate(row, colDueDate),
				CustomerMemo: row.get(colMemo),
				Terms:        row.get(colTerms),
			}
			grouped[docNumber] = inv
			order = append(order, docNumber)
		}

		if line, ok := parseLine(row); ok {
			inv.Lines = append(inv.Lines, line)
		}
	}

	invoices := make([]domain.Invoice, 0, len(order))
	for _, docNumber := range order {
		invoices = append(invoices, *grouped[docNumber])
	}
	return invoices, nil
}

// parseInputDate reads a MM/DD/YYYY cell; blank or unparseable leaves the
// date unset so it is omitted from the wire payload.
func parseInputDate(row row, column string) time.Time {
	raw := row.get(column)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(inputDateLayout, raw)
	if err != nil {
		logger.Warn("Row %d: cannot parse %s %q, leaving it unset", row.line, column, raw)
		return time.Time{}
	}
	return t
}

// parseLine builds the row's line item. A blank item name or a broken
// amount drops the line; the invoice itself stays, so an invoice whose
// lines all drop still gets reported when the batch runs.
func parseLine(row row) (domain.InvoiceLine, bool) {
	itemName := row.get(colItem)
	if itemName == "" {
		logger.Warn("Row %d: blank item name, dropping line", row.line)
		return domain.InvoiceLine{}, false
	}

	amount := decimal.Zero
	if raw := row.get(colItemAmount); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			logger.Warn("Row %d: cannot parse ItemAmount %q, dropping line", row.line, raw)
			return domain.InvoiceLine{}, false
		}
		amount = parsed
	}

	return domain.InvoiceLine{
		ItemName:    itemName,
		Description: row.get(colItemDesc),
		Quantity:    parseOptionalDecimal(row.get(colItemQty)),
		Rate:        parseOptionalDecimal(row.get(colItemRate)),
		Amount:      amount,
	}, true
}

// parseOptionalDecimal maps a blank or unparseable cell to absent, never
// to zero. Absence must survive to the wire payload.
func parseOptionalDecimal(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}
