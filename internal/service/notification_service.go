package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/kate-app/backend/internal/metrics"
	"github.com/kate-app/backend/internal/notify"
	"github.com/kate-app/backend/internal/storage"
	api "github.com/kate-app/backend/pkg/api"
)

var (
	errNoTelegramAccount = errors.New("participant has no linked telegram account")
	errNothingToSend     = errors.New("participant owes nothing, no reminder to send")
)

// NotificationService implements the Connect NotificationService
type NotificationService struct {
	store      storage.Store
	settlement *SettlementService
	sender     notify.Sender
}

// NewNotificationService creates a NotificationService. Reminders are taken
// from the settlement view, so settlement must be configured with a renderer.
func NewNotificationService(store storage.Store, settlement *SettlementService, sender notify.Sender) *NotificationService {
	return &NotificationService{store: store, settlement: settlement, sender: sender}
}

// SendToParticipant sends a bot message to one participant of an event.
// Without an explicit message the participant's current reminder is sent.
// Only the event organizer may call it.
func (s *NotificationService) SendToParticipant(ctx context.Context, req *connect.Request[api.SendToParticipantRequest]) (*connect.Response[api.SendToParticipantResponse], error) {
	msg := req.Msg
	slog.Info("SendToParticipant request received",
		"event_id", msg.EventID,
		"participant_id", msg.ParticipantID,
	)

	if err := required("event_id", msg.EventID); err != nil {
		return nil, err
	}
	if err := required("participant_id", msg.ParticipantID); err != nil {
		return nil, err
	}

	event, err := s.store.GetEvent(ctx, msg.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := requireOrganizer(ctx, event); err != nil {
		return nil, err
	}

	participant, err := s.store.GetParticipant(ctx, msg.ParticipantID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if participant.EventID != event.ID {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}
	if participant.TgUserID == 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoTelegramAccount)
	}

	text := strings.TrimSpace(msg.Message)
	if text == "" {
		text, err = s.reminder(ctx, event.ID, participant.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.sender.Send(ctx, participant.TgUserID, text); err != nil {
		metrics.ObserveNotification(false)
		slog.Error("SendToParticipant failed",
			"event_id", event.ID,
			"participant_id", participant.ID,
			"error", err,
		)
		return nil, toConnectError(err)
	}
	metrics.ObserveNotification(true)

	slog.Info("Notification sent", "event_id", event.ID, "participant_id", participant.ID)

	return connect.NewResponse(&api.SendToParticipantResponse{Message: text}), nil
}

func (s *NotificationService) reminder(ctx context.Context, eventID, participantID string) (string, error) {
	result, err := s.settlement.settle(ctx, eventID)
	if err != nil {
		return "", toConnectError(err)
	}
	for _, row := range result.rows {
		if row.ParticipantID == participantID && row.NotificationMessage != "" {
			return row.NotificationMessage, nil
		}
	}
	return "", connect.NewError(connect.CodeFailedPrecondition, errNothingToSend)
}
