package service

import (
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/pkg/receiptv1"
)

// Wire slices are never nil so clients always see [] rather than null.

func toWireReceipt(data models.ReceiptData) *receiptv1.Receipt {
	items := make([]receiptv1.Item, len(data.Items))
	for i, item := range data.Items {
		items[i] = toWireItem(item)
	}
	return &receiptv1.Receipt{
		Items:    items,
		Subtotal: data.Subtotal,
		Tax:      data.Tax,
		Tip:      data.Tip,
		Total:    data.Total,
		Currency: data.Currency,
		ImageRef: data.ImageRef,
	}
}

func toWireItem(item models.ReceiptItem) receiptv1.Item {
	return receiptv1.Item{
		ID:         item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   item.Quantity,
		AssignedTo: append([]string{}, item.AssignedTo...),
		ScanID:     item.ScanID,
	}
}

func fromWireReceipt(r *receiptv1.Receipt) models.ReceiptData {
	data := models.ReceiptData{
		Items:    make([]models.ReceiptItem, len(r.Items)),
		Subtotal: r.Subtotal,
		Tax:      r.Tax,
		Tip:      r.Tip,
		Total:    r.Total,
		Currency: r.Currency,
		ImageRef: r.ImageRef,
	}
	for i, item := range r.Items {
		data.Items[i] = models.ReceiptItem{
			ID:         item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			AssignedTo: append([]string{}, item.AssignedTo...),
			ScanID:     item.ScanID,
		}
	}
	return data
}

func toWireMessage(msg models.ChatMessage) *receiptv1.ChatMessage {
	return &receiptv1.ChatMessage{
		ID:        msg.ID,
		Role:      msg.Role,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}
}

func toWireMessages(msgs []models.ChatMessage) []receiptv1.ChatMessage {
	out := make([]receiptv1.ChatMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = *toWireMessage(msg)
	}
	return out
}

func toWireSummaries(summaries []models.PersonSummary) []receiptv1.PersonSummary {
	out := make([]receiptv1.PersonSummary, len(summaries))
	for i, s := range summaries {
		items := make([]receiptv1.PersonItem, len(s.Items))
		for j, item := range s.Items {
			items[j] = receiptv1.PersonItem{
				Name:     item.Name,
				Cost:     item.Cost,
				Quantity: item.Quantity,
			}
		}
		out[i] = receiptv1.PersonSummary{
			Name:     s.Name,
			Items:    items,
			Subtotal: s.Subtotal,
			TaxShare: s.TaxShare,
			TipShare: s.TipShare,
			Total:    s.Total,
		}
	}
	return out
}

func toWireDebts(debts []models.Debt) []receiptv1.Debt {
	out := make([]receiptv1.Debt, len(debts))
	for i, d := range debts {
		out[i] = receiptv1.Debt{From: d.From, To: d.To, Amount: d.Amount}
	}
	return out
}
