package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/gemini"
	"github.com/mmynk/receiptsplit/internal/storage"
)

var (
	ErrScanInFlight    = errors.New("a receipt scan is already running for this session")
	ErrCommandInFlight = errors.New("a command is already being processed for this session")
	ErrMergePending    = errors.New("a scanned receipt is waiting for a merge decision")
	ErrNoPendingMerge  = errors.New("no scanned receipt is waiting for a merge decision")
	ErrNoItems         = errors.New("the receipt has no items yet")
	ErrEmptyCommand    = errors.New("command text is required")
	ErrMissingReceipt  = errors.New("receipt is required")
)

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, calculator.ErrItemNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ErrScanInFlight), errors.Is(err, ErrCommandInFlight),
		errors.Is(err, ErrMergePending), errors.Is(err, ErrNoPendingMerge),
		errors.Is(err, ErrNoItems):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, calculator.ErrInvalidTip), errors.Is(err, calculator.ErrUnknownMergeChoice),
		errors.Is(err, calculator.ErrInvalidItem), errors.Is(err, calculator.ErrNonFinite),
		errors.Is(err, gemini.ErrInvalidImage), errors.Is(err, ErrEmptyCommand),
		errors.Is(err, ErrMissingReceipt):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
