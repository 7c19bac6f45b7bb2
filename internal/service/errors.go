package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/kate-app/backend/internal/auth"
	"github.com/kate-app/backend/internal/calculator"
	"github.com/kate-app/backend/internal/middleware"
	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/notify"
	"github.com/kate-app/backend/internal/payment"
	"github.com/kate-app/backend/internal/storage"
)

var (
	errNotOrganizer = errors.New("only the event organizer may do this")
	errRequired     = errors.New("required field missing")
)

// toConnectError maps domain and storage errors to Connect codes.
// Errors already carrying a code pass through unchanged.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, payment.ErrTransferNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, calculator.ErrUnknownParticipant):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, calculator.ErrInvalidAmount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, notify.ErrDeliveryFailed):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func required(field, value string) error {
	if value == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s", errRequired, field))
	}
	return nil
}

// requireOrganizer checks that the caller is authenticated as the event's organizer.
func requireOrganizer(ctx context.Context, event *models.Event) error {
	tgUserID := middleware.GetTgUserID(ctx)
	if tgUserID == 0 {
		return connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if tgUserID != event.OrganizerTgUserID {
		return connect.NewError(connect.CodePermissionDenied, errNotOrganizer)
	}
	return nil
}
