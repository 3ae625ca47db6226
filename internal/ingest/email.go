package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/dhanvantari/ledgersift/internal/alert"
	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/model"
)

// readEmail parses a MIME message. Attachments are tried first: every part
// with a supported extension is dispatched to its format reader, and if any
// attachment yields records the body is never examined. In alert-only mode,
// or when no attachment parses, the plain-text body goes to the alert parser.
func (r *Reader) readEmail(ctx context.Context, data []byte) ([]model.Transaction, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mime message: %w", err)
	}

	var attachErrs []error
	if !r.opts.AlertOnly {
		var txs []model.Transaction
		txs, attachErrs = r.readAttachments(ctx, env)
		if len(txs) > 0 {
			return Dedupe(txs), nil
		}
		if len(attachErrs) > 0 {
			common.LogDebug("no attachment parsed, falling back to body", common.Fields{
				"attachment_errors": len(attachErrs),
			})
		}
	}

	body := strings.TrimSpace(env.Text)
	if body == "" {
		return nil, joinAttachmentErrors(common.ErrNoRecognizableAlert, attachErrs)
	}

	tx, _, err := alert.ParseBody(body, r.opts.BankCode, time.Now())
	if err != nil {
		return nil, joinAttachmentErrors(err, attachErrs)
	}
	return []model.Transaction{*tx}, nil
}

// joinAttachmentErrors surfaces collected attachment failures alongside the
// body error once both paths have failed; until then they stay diagnostic.
func joinAttachmentErrors(bodyErr error, attachErrs []error) error {
	if len(attachErrs) == 0 {
		return bodyErr
	}
	return errors.Join(append([]error{bodyErr}, attachErrs...)...)
}

// readAttachments walks all attachment parts and collects whatever parses.
// Per-attachment failures are collected, not fatal; one good attachment in a
// multi-attachment email is enough.
func (r *Reader) readAttachments(ctx context.Context, env *enmime.Envelope) ([]model.Transaction, []error) {
	var txs []model.Transaction
	var errs []error

	for _, part := range append(env.Attachments, env.Inlines...) {
		if part.FileName == "" {
			continue
		}
		ext := strings.ToLower(filepath.Ext(part.FileName))
		if !supportedAttachmentExt(ext) {
			continue
		}

		parsed, err := r.Read(ctx, part.Content, part.FileName)
		if err != nil {
			errs = append(errs, fmt.Errorf("attachment %s: %w", part.FileName, err))
			continue
		}
		txs = append(txs, parsed...)
	}
	return txs, errs
}

func supportedAttachmentExt(ext string) bool {
	return spreadsheetExts[ext] || ext == ".pdf" || ext == ".ofx" || ext == ".qfx"
}
