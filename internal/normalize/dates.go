package normalize

import (
	"fmt"
	"strings"
	"time"
)

// statementDateLayouts are tried in order. Indian bank exports are day-first;
// ISO is accepted last so an unambiguous export still parses.
var statementDateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
	"02-01-06",
	"02 Jan 2006",
	"02-Jan-2006",
	"02-Jan-06",
	"2 Jan 2006",
	"02 January 2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
}

// ParseStatementDate parses a statement cell as a day-first date.
func ParseStatementDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}

	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", cell)
}
