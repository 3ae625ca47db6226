package alert

import (
	"regexp"
	"strings"
	"time"
)

// alertDateRe pulls a date-looking token out of free alert text.
var alertDateRe = regexp.MustCompile(`(?i)\b(\d{1,2}[-/ ](?:\d{1,2}|[A-Za-z]{3,9})[-/ ]\d{2,4})\b`)

// alertDateLayouts cover the textual and numeric day-month-year forms banks
// put in alert bodies.
var alertDateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"02-01-06",
	"02/01/06",
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"02 January 2006",
	"2-Jan-2006",
	"2 Jan 2006",
}

// parseAlertDate finds and parses a date in alert text, defaulting to the
// current local date when nothing parses. The second return reports whether a
// real date was recovered.
func parseAlertDate(text string, now time.Time) (time.Time, bool) {
	m := alertDateRe.FindStringSubmatch(text)
	if m == nil {
		return now, false
	}

	token := strings.TrimSpace(m[1])
	for _, layout := range alertDateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t, true
		}
	}
	return now, false
}
