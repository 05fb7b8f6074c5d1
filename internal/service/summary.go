package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/pkg/receiptv1"
)

// GetSummary allocates the session receipt between the people on it.
func (s *SessionService) GetSummary(ctx context.Context, req *connect.Request[receiptv1.GetSummaryRequest]) (*connect.Response[receiptv1.SummaryResponse], error) {
	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(summarize(session.Receipt, req.Msg.Payer)), nil
}

// CalculateSummary allocates a receipt supplied by the caller. It needs no
// session and stores nothing.
func (s *SessionService) CalculateSummary(_ context.Context, req *connect.Request[receiptv1.CalculateSummaryRequest]) (*connect.Response[receiptv1.SummaryResponse], error) {
	if req.Msg.Receipt == nil {
		return nil, toConnectError(ErrMissingReceipt)
	}
	return connect.NewResponse(summarize(fromWireReceipt(req.Msg.Receipt), req.Msg.Payer)), nil
}

func summarize(data models.ReceiptData, payer string) *receiptv1.SummaryResponse {
	summaries := calculator.Allocate(data)
	return &receiptv1.SummaryResponse{
		People:      toWireSummaries(summaries),
		Debts:       toWireDebts(calculator.Settle(summaries, strings.TrimSpace(payer))),
		AllAssigned: calculator.AllAssigned(summaries),
	}
}
