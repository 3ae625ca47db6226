package ingest

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/normalize"
)

// Some banks emit SGML-style OFX with mixed-case severities and unclosed
// tags; fix those before handing the payload to the parser.
var (
	ofxSeverityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	ofxOpenTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = ofxSeverityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = ofxOpenTagRe.ReplaceAllString(content, "$1>")
	return content
}

// readOFX parses an OFX/QFX download into canonical transactions.
func (r *Reader) readOFX(ctx context.Context, data []byte) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(bytes.TrimSpace(data)))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ofx payload: %w", err)
	}

	var txs []model.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			accountID := string(stmt.BankAcctFrom.AcctID)
			for _, ofxTx := range stmt.BankTranList.Transactions {
				txs = append(txs, r.convertOFXTransaction(ofxTx, accountID))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			accountID := string(stmt.CCAcctFrom.AcctID)
			for _, ofxTx := range stmt.BankTranList.Transactions {
				txs = append(txs, r.convertOFXTransaction(ofxTx, accountID))
			}
		}
	}

	return Dedupe(txs), nil
}

// convertOFXTransaction maps one OFX record to the canonical form. OFX signs
// amounts, so the sign carries direction and the stored amount is absolute.
func (r *Reader) convertOFXTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	direction := model.DirectionCredit
	if amount < 0 {
		amount = -amount
		direction = model.DirectionDebit
	}

	description := string(ofxTx.Name)
	if ofxTx.Memo != "" {
		description = strings.TrimSpace(description + " " + string(ofxTx.Memo))
	}

	merchant := ""
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		merchant = normalize.CleanMerchantName(string(ofxTx.Payee.Name))
	} else if m := normalize.ExtractMerchant(description); m != "" {
		merchant = normalize.CleanMerchantName(m)
	}

	tx := model.Transaction{
		Date:         ofxTx.DtPosted.Time,
		Description:  description,
		MerchantName: merchant,
		Amount:       amount,
		Direction:    direction,
		Currency:     normalize.DefaultCurrency,
		BankCode:     r.opts.BankCode,
		AccountRef:   accountID,
		ExternalID:   string(ofxTx.FiTID),
		Channel:      normalize.ClassifyChannel(description, direction),
	}
	tx.Hash = tx.GenerateHash()
	return tx
}
