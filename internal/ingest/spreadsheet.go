package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/dhanvantari/ledgersift/internal/table"
)

// readSpreadsheet decodes delimited or binary spreadsheet bytes into a raw
// table. Binary decode failures fall back to plain-text splitting so a
// mislabeled export still parses.
func readSpreadsheet(data []byte, ext string) (*table.RawTable, error) {
	switch ext {
	case ".xlsx":
		rows, err := readXLSX(data)
		if err != nil {
			return readPlainText(data)
		}
		return &table.RawTable{Source: table.SourceSpreadsheet, Rows: rows}, nil
	case ".xls":
		rows, err := readXLS(data)
		if err != nil {
			return readPlainText(data)
		}
		return &table.RawTable{Source: table.SourceSpreadsheet, Rows: rows}, nil
	case ".csv":
		return readDelimited(data, ',')
	case ".tsv":
		return readDelimited(data, '\t')
	default:
		return readPlainText(data)
	}
}

func readXLSX(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = xl.Close() }()

	sheetName := xl.GetSheetName(0)
	rows, err := xl.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook sheet %s is empty", sheetName)
	}
	return padRows(rows), nil
}

func readXLS(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("xls workbook has no sheets: %w", err)
	}

	var rows [][]string
	for _, xlsRow := range sheet.GetRows() {
		var cells []string
		for _, col := range xlsRow.GetCols() {
			cells = append(cells, col.GetString())
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xls sheet is empty")
	}
	return padRows(rows), nil
}

func readDelimited(data []byte, comma rune) (*table.RawTable, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return readPlainText(data)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("delimited file is empty")
	}
	return &table.RawTable{Source: table.SourceSpreadsheet, Rows: padRows(rows)}, nil
}

// multiSpaceRe splits fixed-width plain-text exports on runs of 2+ spaces.
var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// readPlainText treats the payload as tab- or multi-space-delimited text,
// padding short rows to the widest row seen.
func readPlainText(data []byte) (*table.RawTable, error) {
	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		var cells []string
		if strings.Contains(line, "\t") {
			cells = strings.Split(line, "\t")
		} else {
			cells = multiSpaceRe.Split(strings.TrimSpace(line), -1)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in plain-text payload")
	}
	return &table.RawTable{Source: table.SourceSpreadsheet, Rows: padRows(rows)}, nil
}

// padRows right-pads every row with empty cells to the widest row.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows
}
