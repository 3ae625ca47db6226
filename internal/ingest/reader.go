// Package ingest reads statement files and alert emails into canonical
// transactions. Each format reader produces a raw table which the structurer
// and normalizer turn into records; alert bodies bypass the table pipeline.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/normalize"
	"github.com/dhanvantari/ledgersift/internal/table"
)

// Options configures a reader for one source.
type Options struct {
	// BankCode tags parsed records with their institution (HDFC, ICICI, ...).
	BankCode string
	// Password unlocks encrypted PDF statements.
	Password string
	// AlertOnly makes the email reader skip attachments and parse only the
	// message body.
	AlertOnly bool
}

// Reader dispatches a payload to the right format reader by filename hint.
type Reader struct {
	opts Options
}

// NewReader creates a reader with the given options.
func NewReader(opts Options) *Reader {
	return &Reader{opts: opts}
}

// spreadsheetExts are extensions handled by the spreadsheet reader.
var spreadsheetExts = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
	".xls":  true,
}

// Read parses a payload into deduplicated canonical transactions.
func (r *Reader) Read(ctx context.Context, data []byte, filename string) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case spreadsheetExts[ext]:
		raw, err := readSpreadsheet(data, ext)
		if err != nil {
			return nil, fmt.Errorf("reading spreadsheet %s: %w", filename, err)
		}
		return r.tableToTransactions(raw)
	case ext == ".pdf":
		return r.readPDF(data)
	case ext == ".ofx" || ext == ".qfx":
		return r.readOFX(ctx, data)
	case ext == ".eml":
		return r.readEmail(ctx, data)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, ext)
	}
}

// tableToTransactions runs a raw table through structuring, normalization and
// deduplication.
func (r *Reader) tableToTransactions(raw *table.RawTable) ([]model.Transaction, error) {
	structured, err := table.Structure(*raw)
	if err != nil {
		return nil, err
	}

	normalizer := normalize.NewNormalizer(r.opts.BankCode)
	txs, err := normalizer.Normalize(structured)
	if err != nil {
		return nil, err
	}
	return Dedupe(txs), nil
}
