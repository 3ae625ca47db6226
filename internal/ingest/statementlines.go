package ingest

import (
	"regexp"
	"strings"

	"github.com/dhanvantari/ledgersift/internal/table"
)

// Institutions whose PDF statements defeat geometric extraction but follow a
// known line layout: date line, narration lines, amount line tagged Cr/Dr,
// balance line tagged Cr/Dr.
var institutionMarkers = map[string][]string{
	"SBI":    {"STATE BANK OF INDIA", "SBIN0"},
	"PNB":    {"PUNJAB NATIONAL BANK", "PUNB0"},
	"CANARA": {"CANARA BANK", "CNRB0"},
}

var (
	stmtDateLineRe   = regexp.MustCompile(`^\s*(\d{1,2}[-/ ](?:\d{1,2}|[A-Za-z]{3})[-/ ]\d{2,4})\s*$`)
	stmtAmountLineRe = regexp.MustCompile(`^\s*([0-9,]+\.\d{2})\s*\(?(Cr|Dr|CR|DR)\.?\)?\s*$`)
)

// parseStatementLines recovers transactions from raw text lines for marked
// institutions. Returns false when the text carries no known institution
// marker or yields no records.
func parseStatementLines(lines []string, bankCode string) (*table.RawTable, bool) {
	if !hasInstitutionMarker(lines, bankCode) {
		return nil, false
	}

	rows := [][]string{{"Date", "Description", "Withdrawal", "Deposit", "Balance"}}

	type pending struct {
		date      string
		narration []string
		amount    string
		direction string
	}
	var cur *pending

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := stmtDateLineRe.FindStringSubmatch(line); m != nil {
			cur = &pending{date: m[1]}
			continue
		}
		if cur == nil {
			continue
		}

		if m := stmtAmountLineRe.FindStringSubmatch(line); m != nil {
			if cur.amount == "" {
				cur.amount = m[1]
				cur.direction = strings.ToUpper(strings.TrimRight(m[2], "."))
				continue
			}
			// Second tagged amount is the running balance; the record is done.
			rows = append(rows, completedRow(cur.date, cur.narration, cur.amount, cur.direction, m[1]))
			cur = nil
			continue
		}

		if cur.amount == "" {
			cur.narration = append(cur.narration, line)
		}
	}

	if len(rows) < 2 {
		return nil, false
	}
	return &table.RawTable{Source: table.SourcePDF, Rows: rows}, true
}

func completedRow(date string, narration []string, amount, direction, balance string) []string {
	withdrawal, deposit := "", ""
	if strings.EqualFold(direction, "DR") {
		withdrawal = amount
	} else {
		deposit = amount
	}
	return []string{date, strings.Join(narration, " "), withdrawal, deposit, balance}
}

func hasInstitutionMarker(lines []string, bankCode string) bool {
	text := strings.ToUpper(strings.Join(lines, "\n"))

	if markers, ok := institutionMarkers[strings.ToUpper(bankCode)]; ok {
		for _, marker := range markers {
			if strings.Contains(text, marker) {
				return true
			}
		}
		return false
	}

	for _, markers := range institutionMarkers {
		for _, marker := range markers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}
