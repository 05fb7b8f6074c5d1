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

// SendCommand interprets a free-text instruction such as "Ann and Bo shared
// the pizza" and applies the resulting assignment updates. Items the
// interpreter does not mention keep their assignees.
func (s *SessionService) SendCommand(ctx context.Context, req *connect.Request[receiptv1.SendCommandRequest]) (*connect.Response[receiptv1.SendCommandResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Msg.Text)
	if text == "" {
		return nil, toConnectError(ErrEmptyCommand)
	}

	if !s.inflight.acquire(commandKey(id)) {
		return nil, toConnectError(ErrCommandInFlight)
	}
	defer s.inflight.release(commandKey(id))

	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if !session.Receipt.HasItems() {
		return nil, toConnectError(ErrNoItems)
	}
	s.appendMessages(ctx, id, s.message(models.RoleUser, text))

	start := time.Now()
	result, err := s.interpreter.InterpretCommand(ctx, calculator.CommandItems(session.Receipt), text)
	s.observeExternal(gemini.OpCommand, start, err)
	if err != nil {
		slog.WarnContext(ctx, "Command interpretation failed",
			logging.FieldComponent, logging.ComponentGemini,
			logging.FieldSessionID, id,
			logging.FieldError, err,
		)
		msg := s.message(models.RoleSystem, externalFailureMessage(err, msgCommandFailed))
		s.appendMessages(ctx, id, msg)
		return connect.NewResponse(&receiptv1.SendCommandResponse{
			Applied: false,
			Message: toWireMessage(msg),
			People:  []string{},
			Receipt: toWireReceipt(session.Receipt),
		}), nil
	}

	reply := strings.TrimSpace(result.Message)
	if reply == "" {
		reply = msgCommandDone
	}
	msg := s.message(models.RoleModel, reply)

	updated, err := s.update(ctx, id, func(session *models.Session) error {
		session.Receipt = calculator.ApplyUpdates(session.Receipt, result.Updates)
		session.Messages = append(session.Messages, msg)
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Storing assignments failed", logging.FieldSessionID, id, logging.FieldError, err)
		return nil, toConnectError(err)
	}

	slog.InfoContext(ctx, "Assignments updated",
		logging.FieldComponent, logging.ComponentSession,
		logging.FieldSessionID, id,
		logging.FieldItems, len(result.Updates),
	)
	s.publish(ctx, events.AssignmentsUpdated, id, map[string]any{
		"updates": len(result.Updates),
		"people":  result.People,
	})

	people := result.People
	if people == nil {
		people = []string{}
	}
	return connect.NewResponse(&receiptv1.SendCommandResponse{
		Applied: true,
		Message: toWireMessage(msg),
		People:  people,
		Receipt: toWireReceipt(updated.Receipt),
	}), nil
}
