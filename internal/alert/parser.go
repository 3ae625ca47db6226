// Package alert parses plain-text bank alert emails into canonical
// transactions. Each specialized parser extracts what it can via regex and
// reports a confidence score; the highest-confidence result wins.
package alert

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
)

// MinConfidence is the acceptance floor: a best parse scoring below this is
// treated as "no recognizable alert".
const MinConfidence = 0.5

// Confidence scoring: every parser needs an amount and a direction cue to
// produce a result at all, then earns credit per optional field recovered.
const (
	baseConfidence     = 0.40
	perFieldConfidence = 0.15
	maxConfidence      = 0.99
)

// Result is one parser's take on an alert body.
type Result struct {
	Transaction model.Transaction
	Parser      string
	Confidence  float64
}

// bodyParser is a specialized parser for one alert family.
type bodyParser interface {
	Name() string
	Parse(body string, now time.Time) (*Result, bool)
}

// parsers holds the full ordered set, built once.
var parsers = []bodyParser{
	&creditCardParser{},
	&mutualFundParser{},
	&transferAlertParser{},
}

// ParseBody runs every alert parser over the body and returns the
// highest-confidence transaction. Fails with ErrNoRecognizableAlert when no
// parser clears the confidence floor.
func ParseBody(body, bankCode string, now time.Time) (*model.Transaction, float64, error) {
	var best *Result

	for _, p := range parsers {
		result, ok := p.Parse(body, now)
		if !ok {
			continue
		}
		slog.Debug("Alert parser produced candidate",
			"parser", p.Name(),
			"confidence", result.Confidence)
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}

	if best == nil || best.Confidence < MinConfidence {
		return nil, 0, fmt.Errorf("%w", common.ErrNoRecognizableAlert)
	}

	tx := best.Transaction
	tx.BankCode = bankCode
	if tx.Currency == "" {
		tx.Currency = "INR"
	}
	tx.Hash = tx.GenerateHash()
	return &tx, best.Confidence, nil
}

// score turns a recovered-optional-field count into a confidence value.
func score(optionalFields int) float64 {
	c := baseConfidence + float64(optionalFields)*perFieldConfidence
	if c > maxConfidence {
		c = maxConfidence
	}
	return c
}
