package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/table"
)

// Cell clustering thresholds in PDF points. Text fragments closer than the
// tight gap belong to one cell; the loose preset merges across small gaps for
// statements with cramped column spacing.
const (
	tightCellGap = 8.0
	looseCellGap = 18.0
	rowYQuantum  = 4.0
)

// readPDF extracts transactions from a PDF statement. Geometry presets are
// tried in order and the first one that yields a structurable table wins;
// when all fail, the raw text lines go to the line-based statement parser.
func (r *Reader) readPDF(data []byte) ([]model.Transaction, error) {
	doc, err := openPDF(data, r.opts.Password)
	if err != nil {
		return nil, err
	}

	lines := extractLines(doc)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no extractable text", common.ErrUnsupportedFormat)
	}

	var firstErr error
	for _, preset := range []func([]textLine) [][]string{
		splitCellsTight,
		splitCellsLoose,
		splitCellsBySpacing,
	} {
		rows := preset(lines)
		if len(rows) == 0 {
			continue
		}
		txs, perr := r.tableToTransactions(&table.RawTable{Source: table.SourcePDF, Rows: rows})
		if perr == nil {
			return txs, nil
		}
		if firstErr == nil {
			firstErr = perr
		}
	}

	// Geometric extraction failed everywhere. Institutions with known
	// multi-line statement layouts get one more chance.
	if raw, ok := parseStatementLines(renderLines(lines), r.opts.BankCode); ok {
		return r.tableToTransactions(raw)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, common.ErrNoValidTransactions
}

// openPDF opens a document, handling encryption. A protected file without a
// password fails with ErrPasswordRequired; a wrong password fails with
// ErrIncorrectPassword.
func openPDF(data []byte, password string) (*pdf.Reader, error) {
	reader := bytes.NewReader(data)

	doc, err := pdf.NewReader(reader, int64(len(data)))
	if err == nil {
		return doc, nil
	}
	if !isEncryptionError(err) {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	if password == "" {
		return nil, common.ErrPasswordRequired
	}

	attempted := false
	doc, err = pdf.NewReaderEncrypted(reader, int64(len(data)), func() string {
		if attempted {
			return ""
		}
		attempted = true
		return password
	})
	if err != nil {
		if isEncryptionError(err) {
			return nil, common.ErrIncorrectPassword
		}
		return nil, fmt.Errorf("failed to open encrypted pdf: %w", err)
	}
	return doc, nil
}

func isEncryptionError(err error) bool {
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}

// textLine is one visual line: text fragments sharing a Y position, ordered
// left to right.
type textLine struct {
	fragments []pdf.Text
}

// extractLines groups every page's text fragments into visual lines by
// quantized Y position, top to bottom.
func extractLines(doc *pdf.Reader) []textLine {
	var lines []textLine

	for pageNum := 1; pageNum <= doc.NumPage(); pageNum++ {
		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		byY := make(map[int][]pdf.Text)
		var ys []int
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(t.Y / rowYQuantum)
			if _, seen := byY[y]; !seen {
				ys = append(ys, y)
			}
			byY[y] = append(byY[y], t)
		}

		// PDF Y grows upward; higher Y is nearer the page top.
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))
		for _, y := range ys {
			fragments := byY[y]
			sort.Slice(fragments, func(i, j int) bool { return fragments[i].X < fragments[j].X })
			lines = append(lines, textLine{fragments: fragments})
		}
	}
	return lines
}

// splitCellsTight clusters fragments into cells on small X gaps.
func splitCellsTight(lines []textLine) [][]string {
	return splitCells(lines, tightCellGap)
}

// splitCellsLoose merges fragments across wider gaps, for statements whose
// columns sit close together.
func splitCellsLoose(lines []textLine) [][]string {
	return splitCells(lines, looseCellGap)
}

func splitCells(lines []textLine, gap float64) [][]string {
	var rows [][]string
	for _, line := range lines {
		var cells []string
		var current strings.Builder
		var lastEnd float64

		for i, frag := range line.fragments {
			if i > 0 && frag.X-lastEnd > gap {
				cells = append(cells, strings.TrimSpace(current.String()))
				current.Reset()
			}
			current.WriteString(frag.S)
			lastEnd = frag.X + frag.W
		}
		if current.Len() > 0 {
			cells = append(cells, strings.TrimSpace(current.String()))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// splitCellsBySpacing renders each line to text and splits on runs of two or
// more spaces, a pure text-position heuristic for when geometry clustering
// produces nothing usable.
func splitCellsBySpacing(lines []textLine) [][]string {
	var rows [][]string
	for _, line := range renderLines(lines) {
		cells := multiSpaceRe.Split(strings.TrimSpace(line), -1)
		if len(cells) > 0 && cells[0] != "" {
			rows = append(rows, cells)
		}
	}
	return rows
}

// renderLines flattens visual lines to plain strings, preserving column gaps
// as double spaces.
func renderLines(lines []textLine) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		var lastEnd float64
		for i, frag := range line.fragments {
			if i > 0 {
				if frag.X-lastEnd > tightCellGap {
					b.WriteString("  ")
				} else if frag.X > lastEnd {
					b.WriteString(" ")
				}
			}
			b.WriteString(frag.S)
			lastEnd = frag.X + frag.W
		}
		out = append(out, b.String())
	}
	return out
}
