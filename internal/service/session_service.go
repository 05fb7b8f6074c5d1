package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/receiptsplit/internal/auth"
	"github.com/mmynk/receiptsplit/internal/cache"
	"github.com/mmynk/receiptsplit/internal/events"
	"github.com/mmynk/receiptsplit/internal/gemini"
	"github.com/mmynk/receiptsplit/internal/metrics"
	"github.com/mmynk/receiptsplit/internal/middleware"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
	"github.com/mmynk/receiptsplit/pkg/logging"
	"github.com/mmynk/receiptsplit/pkg/receiptv1"
	"github.com/mmynk/receiptsplit/pkg/receiptv1/receiptv1connect"
)

// Scanner reads a receipt image.
type Scanner interface {
	ScanReceipt(ctx context.Context, img gemini.Image) (models.RawReceipt, error)
}

// Interpreter turns a free-text command into assignment updates.
type Interpreter interface {
	InterpretCommand(ctx context.Context, items []models.CommandItem, command string) (models.CommandResult, error)
}

// Deps are the collaborators of a SessionService. Store, Tokens, Scanner and
// Interpreter are required; the rest have working defaults.
type Deps struct {
	Store       storage.Store
	Tokens      *auth.SessionTokens
	Scanner     Scanner
	Interpreter Interpreter

	// ScanCache remembers OCR results by image fingerprint.
	ScanCache *cache.LRUCache[models.RawReceipt]
	Events    events.Publisher
	Metrics   *metrics.Metrics

	// DefaultCurrency is used when neither the session nor the receipt names one.
	DefaultCurrency string
	Now             func() time.Time
}

// SessionService implements the Connect SessionService.
type SessionService struct {
	store       storage.Store
	tokens      *auth.SessionTokens
	scanner     Scanner
	interpreter Interpreter
	scanCache   *cache.LRUCache[models.RawReceipt]
	events      events.Publisher
	metrics     *metrics.Metrics
	currency    string
	now         func() time.Time
	inflight    *inflight
}

var _ receiptv1connect.SessionServiceHandler = (*SessionService)(nil)

func NewSessionService(d Deps) *SessionService {
	s := &SessionService{
		store:       d.Store,
		tokens:      d.Tokens,
		scanner:     d.Scanner,
		interpreter: d.Interpreter,
		scanCache:   d.ScanCache,
		events:      d.Events,
		metrics:     d.Metrics,
		currency:    strings.TrimSpace(d.DefaultCurrency),
		now:         d.Now,
		inflight:    newInflight(),
	}
	if s.events == nil {
		s.events = events.Noop{}
	}
	if s.currency == "" {
		s.currency = models.DefaultCurrency
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateSession starts an empty session and returns the token that unlocks it.
func (s *SessionService) CreateSession(ctx context.Context, req *connect.Request[receiptv1.CreateSessionRequest]) (*connect.Response[receiptv1.CreateSessionResponse], error) {
	currency := strings.TrimSpace(req.Msg.Currency)
	if currency == "" {
		currency = s.currency
	}

	now := s.now()
	session := &models.Session{
		ID: uuid.NewString(),
		Receipt: models.ReceiptData{
			Items:    []models.ReceiptItem{},
			Currency: currency,
		},
		Currency:  currency,
		Messages:  []models.ChatMessage{s.message(models.RoleModel, msgWelcome)},
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	if err := s.store.Create(ctx, session); err != nil {
		slog.ErrorContext(ctx, "CreateSession failed", logging.FieldError, err)
		return nil, toConnectError(err)
	}
	token, err := s.tokens.Generate(session.ID)
	if err != nil {
		slog.ErrorContext(ctx, "CreateSession token failed", logging.FieldSessionID, session.ID, logging.FieldError, err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.SessionCreated()

	slog.InfoContext(ctx, "Session created",
		logging.FieldComponent, logging.ComponentSession,
		logging.FieldSessionID, session.ID,
		"currency", currency,
	)

	return connect.NewResponse(&receiptv1.CreateSessionResponse{
		SessionID: session.ID,
		Token:     token,
		Receipt:   toWireReceipt(session.Receipt),
		Messages:  toWireMessages(session.Messages),
	}), nil
}

// GetSession returns the receipt, any pending merge and the transcript, with
// a reissued token whose lifetime starts now.
func (s *SessionService) GetSession(ctx context.Context, _ *connect.Request[receiptv1.GetSessionRequest]) (*connect.Response[receiptv1.GetSessionResponse], error) {
	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Generate(session.ID)
	if err != nil {
		slog.ErrorContext(ctx, "GetSession token failed", logging.FieldSessionID, session.ID, logging.FieldError, err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &receiptv1.GetSessionResponse{
		Receipt:  toWireReceipt(session.Receipt),
		Messages: toWireMessages(session.Messages),
		Token:    token,
	}
	if session.Pending != nil {
		resp.PendingMerge = toWireReceipt(*session.Pending)
	}
	return connect.NewResponse(resp), nil
}

// sessionID returns the session bound to the request token.
func sessionID(ctx context.Context) (string, error) {
	id := middleware.GetSessionID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

func (s *SessionService) loadSession(ctx context.Context) (*models.Session, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.ErrorContext(ctx, "Loading session failed", logging.FieldSessionID, id, logging.FieldError, err)
		}
		return nil, toConnectError(err)
	}
	return session, nil
}

// update applies fn to the session and stamps UpdatedAt.
func (s *SessionService) update(ctx context.Context, id string, fn storage.UpdateFunc) (*models.Session, error) {
	return s.store.Update(ctx, id, func(session *models.Session) error {
		if err := fn(session); err != nil {
			return err
		}
		session.UpdatedAt = s.now().Unix()
		return nil
	})
}

// appendMessages records transcript entries outside of any other change.
// Failures are logged; the transcript is not worth failing a call for.
func (s *SessionService) appendMessages(ctx context.Context, id string, msgs ...models.ChatMessage) {
	_, err := s.update(ctx, id, func(session *models.Session) error {
		session.Messages = append(session.Messages, msgs...)
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "Appending messages failed", logging.FieldSessionID, id, logging.FieldError, err)
	}
}

func (s *SessionService) message(role, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: s.now().UnixMilli(),
	}
}

func (s *SessionService) publish(ctx context.Context, name, sessionID string, attrs map[string]any) {
	err := s.events.Publish(ctx, events.New(name, sessionID, attrs))
	s.metrics.EventPublished(name, err)
	if err != nil {
		slog.WarnContext(ctx, "Publishing event failed",
			logging.FieldComponent, logging.ComponentEvents,
			logging.FieldEvent, name,
			logging.FieldSessionID, sessionID,
			logging.FieldError, err,
		)
	}
}

// observeExternal records the outcome of an OCR or command call.
func (s *SessionService) observeExternal(op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case gemini.IsRateLimited(err):
		outcome = metrics.OutcomeRateLimited
	case err != nil:
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveExternal(op, outcome, time.Since(start))
}

// externalFailureMessage converts an OCR or command failure into the text
// shown to the user.
func externalFailureMessage(err error, fallback string) string {
	if gemini.IsRateLimited(err) {
		return msgRateLimited
	}
	return fallback
}

func formatAmount(currency string, amount float64) string {
	return fmt.Sprintf("%s%s", currency, money(amount))
}
