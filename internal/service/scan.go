package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/events"
	"github.com/mmynk/receiptsplit/internal/gemini"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/pkg/logging"
	"github.com/mmynk/receiptsplit/pkg/receiptv1"
)

// ScanReceipt reads a receipt photo. On an empty receipt the result is applied
// directly; otherwise it is parked until the user decides with ResolveMerge.
// OCR failures are answered with a system message and status "failed".
func (s *SessionService) ScanReceipt(ctx context.Context, req *connect.Request[receiptv1.ScanReceiptRequest]) (*connect.Response[receiptv1.ScanReceiptResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	img, err := gemini.DecodeImage(req.Msg.ImageBase64)
	if err != nil {
		return nil, toConnectError(err)
	}

	if !s.inflight.acquire(scanKey(id)) {
		return nil, toConnectError(ErrScanInFlight)
	}
	defer s.inflight.release(scanKey(id))

	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if session.Pending != nil {
		return nil, toConnectError(ErrMergePending)
	}
	s.appendMessages(ctx, id, s.message(models.RoleModel, msgAnalyzing))

	raw, err := s.recognize(ctx, img)
	if err != nil {
		slog.WarnContext(ctx, "Receipt scan failed",
			logging.FieldComponent, logging.ComponentGemini,
			logging.FieldSessionID, id,
			logging.FieldError, err,
		)
		msg := s.message(models.RoleSystem, externalFailureMessage(err, msgScanFailed))
		s.appendMessages(ctx, id, msg)
		return connect.NewResponse(&receiptv1.ScanReceiptResponse{
			Status:  receiptv1.ScanFailed,
			Message: toWireMessage(msg),
			Receipt: toWireReceipt(session.Receipt),
		}), nil
	}

	scanID := calculator.NewScanID()
	incoming := calculator.Normalize(raw, calculator.NormalizeOptions{
		ScanID:   scanID,
		Currency: session.Currency,
		ImageRef: img.Fingerprint,
	})

	status := receiptv1.ScanApplied
	var msg models.ChatMessage
	updated, err := s.update(ctx, id, func(session *models.Session) error {
		if session.Pending != nil {
			return ErrMergePending
		}
		total := formatAmount(incoming.Currency, incoming.Total)
		if session.Receipt.HasItems() {
			pending := incoming.Clone()
			session.Pending = &pending
			status = receiptv1.ScanMergePending
			msg = s.message(models.RoleModel, msgMergePrompt(len(incoming.Items), total))
		} else {
			session.Receipt = incoming.Clone()
			status = receiptv1.ScanApplied
			msg = s.message(models.RoleModel, msgReceiptReady(len(incoming.Items), total))
		}
		session.Messages = append(session.Messages, msg)
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Storing scanned receipt failed", logging.FieldSessionID, id, logging.FieldError, err)
		return nil, toConnectError(err)
	}

	slog.InfoContext(ctx, "Receipt scanned",
		logging.FieldComponent, logging.ComponentSession,
		logging.FieldSessionID, id,
		logging.FieldScanID, scanID,
		logging.FieldItems, len(incoming.Items),
		"status", status,
	)
	s.publish(ctx, events.ReceiptIngested, id, map[string]any{
		"scan_id": scanID,
		"items":   len(incoming.Items),
		"total":   incoming.Total,
		"status":  string(status),
	})

	resp := &receiptv1.ScanReceiptResponse{
		Status:  status,
		Message: toWireMessage(msg),
		Receipt: toWireReceipt(updated.Receipt),
	}
	if updated.Pending != nil {
		resp.PendingMerge = toWireReceipt(*updated.Pending)
	}
	return connect.NewResponse(resp), nil
}

// recognize returns the OCR result for img, from the scan cache when the same
// image was read before.
func (s *SessionService) recognize(ctx context.Context, img gemini.Image) (models.RawReceipt, error) {
	if s.scanCache != nil {
		raw, ok := s.scanCache.Get(img.Fingerprint)
		s.metrics.ScanCacheLookup(ok)
		if ok {
			slog.DebugContext(ctx, "Scan cache hit", logging.FieldCacheHit, true)
			return raw, nil
		}
	}

	start := time.Now()
	raw, err := s.scanner.ScanReceipt(ctx, img)
	s.observeExternal(gemini.OpScan, start, err)
	if err != nil {
		return models.RawReceipt{}, err
	}
	if s.scanCache != nil {
		s.scanCache.Set(img.Fingerprint, raw)
	}
	return raw, nil
}

// ResolveMerge answers the merge prompt of a parked scan.
func (s *SessionService) ResolveMerge(ctx context.Context, req *connect.Request[receiptv1.ResolveMergeRequest]) (*connect.Response[receiptv1.ResolveMergeResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	choice := calculator.MergeChoice(strings.ToLower(strings.TrimSpace(req.Msg.Choice)))

	var (
		msg     models.ChatMessage
		changed bool
		added   int
	)
	updated, err := s.update(ctx, id, func(session *models.Session) error {
		if session.Pending == nil {
			return ErrNoPendingMerge
		}
		pending := *session.Pending
		result, ok, err := calculator.Resolve(choice, session.Receipt, pending)
		if err != nil {
			return err
		}
		session.Receipt = result
		session.Pending = nil
		changed = ok
		added = len(pending.Items)

		total := formatAmount(result.Currency, result.Total)
		switch choice {
		case calculator.MergeAppend:
			msg = s.message(models.RoleModel, msgMerged(added, total))
		case calculator.MergeReplace:
			msg = s.message(models.RoleModel, msgReplaced(len(result.Items), total))
		default:
			msg = s.message(models.RoleModel, msgMergeCanceled)
		}
		session.Messages = append(session.Messages, msg)
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.InfoContext(ctx, "Merge resolved",
		logging.FieldComponent, logging.ComponentSession,
		logging.FieldSessionID, id,
		"choice", string(choice),
	)
	if changed {
		name := events.ReceiptMerged
		if choice == calculator.MergeReplace {
			name = events.ReceiptReplaced
		}
		s.publish(ctx, name, id, map[string]any{
			"items": added,
			"total": updated.Receipt.Total,
		})
	}

	return connect.NewResponse(&receiptv1.ResolveMergeResponse{
		Receipt: toWireReceipt(updated.Receipt),
		Message: toWireMessage(msg),
	}), nil
}
