package csvfile

import (
	"context"
	"fmt"
	"os"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// colFileName is the manifest column naming the local file to write.
const colFileName = "FileName"

// ReadManifest parses the download manifest. Rows missing the invoice
// number or the file name are skipped with a warning.
func (r *Reader) ReadManifest(_ context.Context, path string) ([]domain.DownloadItem, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: manifest file %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("open manifest file: %w", err)
	}
	defer f.Close()

	rows, err := newRowReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var items []domain.DownloadItem
	for {
		row, ok, err := rows.next()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if !ok {
			break
		}

		docNumber := row.get(colInvoiceNo)
		fileName := row.get(colFileName)
		if docNumber == "" || fileName == "" {
			logger.Warn("Row %d: missing InvoiceNo or FileName, skipping", row.line)
			continue
		}
		items = append(items, domain.DownloadItem{DocNumber: docNumber, FileName: fileName})
	}
	return items, nil
}
