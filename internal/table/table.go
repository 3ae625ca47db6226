// Package table turns raw rows extracted from spreadsheets and PDFs into
// structured tables with resolved, canonically-named columns.
package table

// Source tags where a raw table came from. PDF-origin tables get different
// newline handling because PDF text wrapping embeds line breaks inside cells.
type Source string

const (
	// SourceSpreadsheet marks tables decoded from delimited or binary sheets.
	SourceSpreadsheet Source = "spreadsheet"
	// SourcePDF marks tables recovered from PDF geometry extraction.
	SourcePDF Source = "pdf"
)

// RawTable is an ordered sequence of rows of untyped cell values with no
// column semantics yet. It is produced once per source file and consumed
// immediately by the structurer.
type RawTable struct {
	Source Source
	Rows   [][]string
}

// StructuredTable is a raw table with a resolved header row and a mapping
// from canonical field name to column position.
type StructuredTable struct {
	Columns     map[Field]int
	Header      []string
	Rows        [][]string // Data rows only, header excluded
	Source      Source
	HeaderIndex int
}
