package qbo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// Ensure Session and Factory implement the interfaces.
var (
	_ driven.RemoteSession  = (*Session)(nil)
	_ driven.SessionFactory = (*Factory)(nil)
)

// Factory builds sessions bound to one QBO environment. Sessions from the
// same factory share a rate limiter, because a refreshed credential still
// draws on the same per-realm quota.
type Factory struct {
	baseURL string
	timeout time.Duration
	limiter *RateLimiter
}

// NewFactory creates a session factory for an environment.
func NewFactory(environment domain.Environment, timeout time.Duration) *Factory {
	return NewFactoryWithBaseURL(BaseURLFor(environment), timeout)
}

// NewFactoryWithBaseURL creates a session factory pointed at a specific
// endpoint instead of a published environment.
func NewFactoryWithBaseURL(baseURL string, timeout time.Duration) *Factory {
	return &Factory{
		baseURL: baseURL,
		timeout: timeout,
		limiter: NewRateLimiter(),
	}
}

// NewSession returns a session speaking for the given credential.
func (f *Factory) NewSession(cred domain.Credential) driven.RemoteSession {
	return &Session{
		client: NewClient(cred, f.baseURL, f.timeout, f.limiter),
	}
}

// Session performs invoice operations against QBO under one credential.
type Session struct {
	client *Client
}

// FindInvoice looks up an invoice by document number.
func (s *Session) FindInvoice(ctx context.Context, docNumber string) (domain.RemoteHandle, error) {
	return s.queryOne(ctx, "Invoice", "DocNumber", docNumber)
}

// FindCustomer looks up a customer by display name.
func (s *Session) FindCustomer(ctx context.Context, displayName string) (domain.RemoteHandle, error) {
	return s.queryOne(ctx, "Customer", "DisplayName", displayName)
}

// FindItem looks up a product or service item by name.
func (s *Session) FindItem(ctx context.Context, name string) (domain.RemoteHandle, error) {
	return s.queryOne(ctx, "Item", "Name", name)
}

// FindTerm looks up a payment term by name.
func (s *Session) FindTerm(ctx context.Context, name string) (domain.RemoteHandle, error) {
	return s.queryOne(ctx, "Term", "Name", name)
}

// CreateInvoice resolves the invoice's references, builds the wire payload
// and posts it. The customer must exist; lines whose item cannot be resolved
// are dropped with a warning; a missing term is omitted, never fatal.
func (s *Session) CreateInvoice(ctx context.Context, inv *domain.Invoice, opts domain.PayloadOptions) (domain.RemoteHandle, error) {
	// 1. Customer is mandatory and never auto-created
	customer, err := s.FindCustomer(ctx, inv.CustomerName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RemoteHandle{}, fmt.Errorf("customer %q does not exist remotely: %w", inv.CustomerName, err)
		}
		return domain.RemoteHandle{}, fmt.Errorf("resolve customer %q: %w", inv.CustomerName, err)
	}

	// 2. Resolve line items, dropping lines whose item is unknown
	lines := make([]resolvedLine, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		item, err := s.FindItem(ctx, line.ItemName)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Item %q not found, dropping line on invoice %s", line.ItemName, inv.DocNumber)
			continue
		}
		if err != nil {
			return domain.RemoteHandle{}, fmt.Errorf("resolve item %q: %w", line.ItemName, err)
		}
		lines = append(lines, resolvedLine{line: line, item: item})
	}
	if len(lines) == 0 {
		return domain.RemoteHandle{}, fmt.Errorf("%w: no valid line items", domain.ErrValidationFailed)
	}

	// 3. Terms are optional; a missing term is omitted
	var term *domain.RemoteHandle
	if inv.Terms != "" && !opts.OnlyRequired {
		handle, err := s.FindTerm(ctx, inv.Terms)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			logger.Warn("Term %q not found, omitting from invoice %s", inv.Terms, inv.DocNumber)
		case err != nil:
			return domain.RemoteHandle{}, fmt.Errorf("resolve term %q: %w", inv.Terms, err)
		default:
			term = &handle
		}
	}

	// 4. Build and send
	payload := buildInvoicePayload(inv, customer, lines, term, opts)
	if opts.DebugJSON {
		if raw, err := json.MarshalIndent(payload, "", "  "); err == nil {
			logger.Payload("Invoice "+inv.DocNumber+" payload", raw)
		}
	}

	body, err := s.client.post(ctx, "/invoice", payload)
	if err != nil {
		return domain.RemoteHandle{}, err
	}

	var env createEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.RemoteHandle{}, fmt.Errorf("decode create response: %w", err)
	}
	if env.Invoice.ID == "" {
		return domain.RemoteHandle{}, fmt.Errorf("create response carries no invoice id")
	}
	return domain.RemoteHandle{ID: env.Invoice.ID}, nil
}

// FetchInvoicePDF retrieves the rendered document for an invoice handle.
func (s *Session) FetchInvoicePDF(ctx context.Context, handle domain.RemoteHandle) ([]byte, error) {
	if handle.IsZero() {
		return nil, fmt.Errorf("%w: empty invoice handle", domain.ErrInvalidInput)
	}
	return s.client.get(ctx, "/invoice/"+url.PathEscape(handle.ID)+"/pdf", nil, "application/pdf")
}

// queryEnvelope is the query endpoint response shape. The entity key inside
// QueryResponse varies with the queried type.
type queryEnvelope struct {
	QueryResponse map[string]json.RawMessage `json:"QueryResponse"`
}

// entityRef is the slice of identifying fields pulled from query rows.
type entityRef struct {
	ID string `json:"Id"`
}

// createEnvelope is the invoice create response shape.
type createEnvelope struct {
	Invoice entityRef `json:"Invoice"`
}

// queryOne finds a single entity by exact field match. An empty result set
// maps to domain.ErrNotFound.
func (s *Session) queryOne(ctx context.Context, entity, field, value string) (domain.RemoteHandle, error) {
	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s = '%s'", entity, field, escapeQueryValue(value))
	q := url.Values{}
	q.Set("query", stmt)

	body, err := s.client.get(ctx, "/query", q, "")
	if err != nil {
		return domain.RemoteHandle{}, err
	}

	var env queryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.RemoteHandle{}, fmt.Errorf("decode query response: %w", err)
	}

	raw, ok := env.QueryResponse[entity]
	if !ok {
		return domain.RemoteHandle{}, fmt.Errorf("%w: %s %q", domain.ErrNotFound, strings.ToLower(entity), value)
	}

	var rows []entityRef
	if err := json.Unmarshal(raw, &rows); err != nil {
		return domain.RemoteHandle{}, fmt.Errorf("decode %s rows: %w", strings.ToLower(entity), err)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return domain.RemoteHandle{}, fmt.Errorf("%w: %s %q", domain.ErrNotFound, strings.ToLower(entity), value)
	}
	return domain.RemoteHandle{ID: rows[0].ID}, nil
}

// escapeQueryValue doubles single quotes for the QBO query language.
func escapeQueryValue(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
