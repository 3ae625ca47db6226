package table

import (
	"strings"

	"github.com/dhanvantari/ledgersift/internal/common"
)

// Header scan budget. Statements with long marketing preambles bury the
// header, so the scan is tiered: every row early on, then progressively
// sparser, with a hard cap.
const (
	denseScanRows = 20
	midScanRows   = 50
	sparseStride  = 10
	maxScanRows   = 500
)

// Structure locates the header row of a raw table and reshapes it into a
// structured table with canonical columns. At least a date column and one of
// amount/withdrawal/deposit must resolve or structuring fails.
func Structure(raw RawTable) (*StructuredTable, error) {
	headerIdx := -1
	scanned := 0
	for _, idx := range scanOrder(len(raw.Rows)) {
		scanned++
		if isHeaderRow(raw.Rows[idx]) {
			headerIdx = idx
			break
		}
	}

	if headerIdx < 0 {
		return nil, &common.HeaderNotFoundError{
			ColumnSample: columnSample(raw.Rows),
			RowsScanned:  scanned,
		}
	}

	header := raw.Rows[headerIdx]
	columns := ResolveColumns(header)

	rows := make([][]string, 0, len(raw.Rows)-headerIdx-1)
	for _, row := range raw.Rows[headerIdx+1:] {
		if raw.Source == SourcePDF {
			rows = append(rows, expandWrappedRow(row)...)
		} else {
			rows = append(rows, collapseNewlines(row))
		}
	}

	return &StructuredTable{
		Source:      raw.Source,
		HeaderIndex: headerIdx,
		Header:      header,
		Columns:     columns,
		Rows:        rows,
	}, nil
}

// scanOrder yields row indices in the tiered scan order: the first 20 rows,
// then rows 20-49, then every 10th row up to the cap.
func scanOrder(total int) []int {
	var order []int
	for i := 0; i < total && i < denseScanRows; i++ {
		order = append(order, i)
	}
	for i := denseScanRows; i < total && i < midScanRows; i++ {
		order = append(order, i)
	}
	for i := midScanRows; i < total && i < maxScanRows; i += sparseStride {
		order = append(order, i)
	}
	return order
}

// isHeaderRow reports whether a row's normalized tokens intersect the date
// alias set and at least one amount-like alias set.
func isHeaderRow(row []string) bool {
	var hasDate, hasAmount bool
	for _, cell := range row {
		normalized := NormalizeHeaderCell(cell)
		if normalized == "" {
			continue
		}
		if _, ok := aliasSets[FieldDate][normalized]; ok {
			hasDate = true
		}
		if _, ok := aliasSets[FieldAmount][normalized]; ok {
			hasAmount = true
		}
		if _, ok := aliasSets[FieldWithdrawalAmount][normalized]; ok {
			hasAmount = true
		}
		if _, ok := aliasSets[FieldDepositAmount][normalized]; ok {
			hasAmount = true
		}
	}
	return hasDate && hasAmount
}

// expandWrappedRow splits a row whose cells carry embedded line breaks (PDF
// text wrapping) into multiple rows, newline-splitting every cell in lockstep
// and padding shorter splits with empty strings.
func expandWrappedRow(row []string) [][]string {
	wrapped := false
	for _, cell := range row {
		if strings.Contains(cell, "\n") {
			wrapped = true
			break
		}
	}
	if !wrapped {
		return [][]string{row}
	}

	parts := make([][]string, len(row))
	height := 0
	for i, cell := range row {
		parts[i] = strings.Split(cell, "\n")
		if len(parts[i]) > height {
			height = len(parts[i])
		}
	}

	out := make([][]string, height)
	for line := 0; line < height; line++ {
		expanded := make([]string, len(row))
		for col := range row {
			if line < len(parts[col]) {
				expanded[col] = strings.TrimSpace(parts[col][line])
			}
		}
		out[line] = expanded
	}
	return out
}

// collapseNewlines flattens embedded line breaks to spaces for tables that
// did not come from PDF extraction.
func collapseNewlines(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if strings.Contains(cell, "\n") {
			out[i] = strings.Join(strings.Fields(cell), " ")
		} else {
			out[i] = cell
		}
	}
	return out
}

// columnSample collects up to eight leading cells from the earliest non-empty
// rows for the HeaderNotFound diagnostic.
func columnSample(rows [][]string) []string {
	var sample []string
	for _, row := range rows {
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if len(cell) > 40 {
				cell = cell[:40]
			}
			sample = append(sample, cell)
			if len(sample) >= 8 {
				return sample
			}
		}
	}
	return sample
}
