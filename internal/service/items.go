package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/events"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/pkg/logging"
	"github.com/mmynk/receiptsplit/pkg/receiptv1"
)

// itemChange is one edit of the item list, run inside a store update.
type itemChange func(data models.ReceiptData) (models.ReceiptData, models.ReceiptItem, error)

// AddItem appends a manually entered item.
func (s *SessionService) AddItem(ctx context.Context, req *connect.Request[receiptv1.AddItemRequest]) (*connect.Response[receiptv1.ItemResponse], error) {
	in := calculator.ItemInput{Name: req.Msg.Name, Price: req.Msg.Price, Quantity: req.Msg.Quantity}
	return s.changeItems(ctx, "add", func(data models.ReceiptData) (models.ReceiptData, models.ReceiptItem, error) {
		return calculator.AddItem(data, in, calculator.ManualItemID)
	})
}

// EditItem changes the name, price and quantity of an item.
func (s *SessionService) EditItem(ctx context.Context, req *connect.Request[receiptv1.EditItemRequest]) (*connect.Response[receiptv1.ItemResponse], error) {
	in := calculator.ItemInput{Name: req.Msg.Name, Price: req.Msg.Price, Quantity: req.Msg.Quantity}
	return s.changeItems(ctx, "edit", func(data models.ReceiptData) (models.ReceiptData, models.ReceiptItem, error) {
		return calculator.EditItem(data, req.Msg.ItemID, in)
	})
}

// DeleteItem removes an item. The response carries the deleted item.
func (s *SessionService) DeleteItem(ctx context.Context, req *connect.Request[receiptv1.DeleteItemRequest]) (*connect.Response[receiptv1.ItemResponse], error) {
	return s.changeItems(ctx, "delete", func(data models.ReceiptData) (models.ReceiptData, models.ReceiptItem, error) {
		idx := data.FindItem(req.Msg.ItemID)
		if idx < 0 {
			return data, models.ReceiptItem{}, calculator.ErrItemNotFound
		}
		removed := data.Items[idx].Clone()
		out, err := calculator.DeleteItem(data, req.Msg.ItemID)
		return out, removed, err
	})
}

// changeItems runs change against the session receipt. Invalid input leaves
// the receipt alone and is reported with Applied false rather than an error.
func (s *SessionService) changeItems(ctx context.Context, op string, change itemChange) (*connect.Response[receiptv1.ItemResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	var item models.ReceiptItem
	updated, err := s.update(ctx, id, func(session *models.Session) error {
		out, changed, err := change(session.Receipt)
		if err != nil {
			return err
		}
		session.Receipt = out
		item = changed
		return nil
	})
	if errors.Is(err, calculator.ErrInvalidItem) || errors.Is(err, calculator.ErrNonFinite) {
		session, loadErr := s.loadSession(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		return connect.NewResponse(&receiptv1.ItemResponse{
			Applied: false,
			Reason:  err.Error(),
			Receipt: toWireReceipt(session.Receipt),
		}), nil
	}
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.InfoContext(ctx, "Item changed",
		logging.FieldComponent, logging.ComponentSession,
		logging.FieldOperation, op,
		logging.FieldSessionID, id,
		logging.FieldItemID, item.ID,
	)
	s.publish(ctx, events.ItemChanged, id, map[string]any{
		"operation": op,
		"item_id":   item.ID,
		"subtotal":  updated.Receipt.Subtotal,
	})

	wire := toWireItem(item)
	return connect.NewResponse(&receiptv1.ItemResponse{
		Applied: true,
		Item:    &wire,
		Receipt: toWireReceipt(updated.Receipt),
	}), nil
}

// SetTip applies a tip policy to the session receipt.
func (s *SessionService) SetTip(ctx context.Context, req *connect.Request[receiptv1.SetTipRequest]) (*connect.Response[receiptv1.SetTipResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	policy := calculator.TipPolicy{
		Mode:  calculator.TipMode(strings.ToLower(strings.TrimSpace(req.Msg.Mode))),
		Value: req.Msg.Value,
	}

	updated, err := s.update(ctx, id, func(session *models.Session) error {
		out, err := calculator.ApplyTip(session.Receipt, policy)
		if err != nil {
			return err
		}
		session.Receipt = out
		return nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	s.publish(ctx, events.TipChanged, id, map[string]any{
		"mode": string(policy.Mode),
		"tip":  updated.Receipt.Tip,
	})
	return connect.NewResponse(&receiptv1.SetTipResponse{
		Receipt: toWireReceipt(updated.Receipt),
	}), nil
}
