package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.InvoiceImporter = (*ImportService)(nil)

// ImportService creates locally defined invoices on the remote service.
type ImportService struct {
	credStore driven.CredentialStore
	reader    driven.InvoiceReader
	resolver  *RecordResolver
	runner    *BatchRunner
	history   *HistoryService
}

// NewImportService creates a new import service.
func NewImportService(
	credStore driven.CredentialStore,
	reader driven.InvoiceReader,
	resolver *RecordResolver,
	runner *BatchRunner,
	history *HistoryService,
) *ImportService {
	return &ImportService{
		credStore: credStore,
		reader:    reader,
		resolver:  resolver,
		runner:    runner,
		history:   history,
	}
}

// Import runs one invoice creation batch.
func (s *ImportService) Import(ctx context.Context, req driving.ImportRequest) (*domain.BatchOutcome, error) {
	// 1. Load the credential; without it the run cannot start
	cred, err := s.credStore.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no credential at %s: authorise the application and save the token file there first", s.credStore.Path())
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	// 2. Read and group the input set
	invoices, err := s.reader.ReadInvoices(ctx, req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read invoices: %w", err)
	}
	if len(invoices) == 0 {
		logger.Warn("No importable invoices in %s", req.InputPath)
		return &domain.BatchOutcome{}, nil
	}

	logger.Info("Importing %d invoices from %s", len(invoices), req.InputPath)

	// 3. One batch record per invoice, in input order
	records := make([]BatchRecord, 0, len(invoices))
	for i := range invoices {
		inv := invoices[i]
		records = append(records, BatchRecord{
			Key: inv.DocNumber,
			Do:  s.importOne(inv, req.Options),
		})
	}

	// 4. Drive the batch
	started := time.Now()
	outcome, runErr := s.runner.Run(ctx, *cred, records)

	// 5. Record the run, best effort
	s.history.Record(ctx, domain.RunKindImport, started, time.Now(), outcome)

	return outcome, runErr
}

// importOne is the per-record work: existence check first, create only when
// the document number is still free remotely. Re-running after a refresh
// repeats the check, so a create that landed before the expiry was detected
// is seen and skipped rather than duplicated.
func (s *ImportService) importOne(inv domain.Invoice, opts domain.PayloadOptions) func(context.Context, driven.RemoteSession) (domain.RecordResult, error) {
	return func(ctx context.Context, session driven.RemoteSession) (domain.RecordResult, error) {
		exists, err := s.resolver.Exists(ctx, session, inv.DocNumber)
		if err != nil {
			return domain.RecordResult{}, fmt.Errorf("check invoice %s: %w", inv.DocNumber, err)
		}
		if exists {
			logger.Info("Invoice %s already exists, skipping", inv.DocNumber)
			return domain.RecordResult{
				Key:    inv.DocNumber,
				Status: domain.StatusSkipped,
				Detail: "already exists remotely",
			}, nil
		}

		handle, err := session.CreateInvoice(ctx, &inv, opts)
		if err != nil {
			return domain.RecordResult{}, fmt.Errorf("create invoice %s: %w", inv.DocNumber, err)
		}

		logger.Info("Invoice %s created (remote id %s)", inv.DocNumber, handle.ID)
		return domain.RecordResult{
			Key:    inv.DocNumber,
			Status: domain.StatusSucceeded,
		}, nil
	}
}
