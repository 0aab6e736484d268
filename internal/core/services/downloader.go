package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// Ensure DownloadService implements the interface.
var _ driving.DocumentDownloader = (*DownloadService)(nil)

// DownloadService fetches rendered invoice documents to local files.
type DownloadService struct {
	credStore driven.CredentialStore
	manifest  driven.ManifestReader
	resolver  *RecordResolver
	runner    *BatchRunner
	history   *HistoryService
}

// NewDownloadService creates a new download service.
func NewDownloadService(
	credStore driven.CredentialStore,
	manifest driven.ManifestReader,
	resolver *RecordResolver,
	runner *BatchRunner,
	history *HistoryService,
) *DownloadService {
	return &DownloadService{
		credStore: credStore,
		manifest:  manifest,
		resolver:  resolver,
		runner:    runner,
		history:   history,
	}
}

// Download runs one document download batch.
func (s *DownloadService) Download(ctx context.Context, req driving.DownloadRequest) (*domain.BatchOutcome, error) {
	// 1. Load the credential; without it the run cannot start
	cred, err := s.credStore.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no credential at %s: authorise the application and save the token file there first", s.credStore.Path())
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	// 2. Read the manifest
	items, err := s.manifest.ReadManifest(ctx, req.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if len(items) == 0 {
		logger.Warn("No downloadable entries in %s", req.ManifestPath)
		return &domain.BatchOutcome{}, nil
	}

	// 3. Prepare the destination directory
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	logger.Info("Downloading %d invoices from %s to %s", len(items), req.ManifestPath, req.OutputDir)

	// 4. One batch record per manifest entry; the allocator is shared so
	// names reserved earlier in the run stay reserved
	alloc := NewPathAllocator()
	records := make([]BatchRecord, 0, len(items))
	for _, item := range items {
		records = append(records, BatchRecord{
			Key: item.DocNumber,
			Do:  s.downloadOne(item, req.OutputDir, alloc),
		})
	}

	// 5. Drive the batch
	started := time.Now()
	outcome, runErr := s.runner.Run(ctx, *cred, records)

	// 6. Record the run, best effort
	s.history.Record(ctx, domain.RunKindDownload, started, time.Now(), outcome)

	return outcome, runErr
}

// downloadOne is the per-record work: resolve the document number, fetch the
// rendered document, then write it under a collision-free name.
func (s *DownloadService) downloadOne(item domain.DownloadItem, outputDir string, alloc *PathAllocator) func(context.Context, driven.RemoteSession) (domain.RecordResult, error) {
	return func(ctx context.Context, session driven.RemoteSession) (domain.RecordResult, error) {
		handle, err := s.resolver.Resolve(ctx, session, item.DocNumber)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("No invoice found with document number %s", item.DocNumber)
			return domain.RecordResult{
				Key:    item.DocNumber,
				Status: domain.StatusFailed,
				Detail: "no invoice with this document number",
			}, nil
		}
		if err != nil {
			return domain.RecordResult{}, fmt.Errorf("resolve invoice %s: %w", item.DocNumber, err)
		}

		data, err := session.FetchInvoicePDF(ctx, handle)
		if err != nil {
			return domain.RecordResult{}, fmt.Errorf("fetch document for invoice %s: %w", item.DocNumber, err)
		}

		// Allocation reserves the name; the write must not clobber
		path := alloc.Allocate(filepath.Join(outputDir, item.FileName))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return domain.RecordResult{}, fmt.Errorf("write %s: %w", path, err)
		}

		logger.Info("Saved invoice %s to %s", item.DocNumber, path)
		return domain.RecordResult{
			Key:    item.DocNumber,
			Status: domain.StatusSucceeded,
			Output: path,
		}, nil
	}
}
