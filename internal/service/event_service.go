package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"connectrpc.com/connect"

	"github.com/kate-app/backend/internal/calculator"
	"github.com/kate-app/backend/internal/middleware"
	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/storage"
	api "github.com/kate-app/backend/pkg/api"
)

var (
	errPaymentDetailsTooLong = fmt.Errorf("payment details must be at most %d characters", models.MaxPaymentDetailsLength)
	errParticipantInUse      = errors.New("participant is referenced by procurements")
	errAlreadyJoined         = errors.New("telegram user already joined the event")
	errNoResponsible         = errors.New("a completed priced procurement needs a responsible participant")
	errInviteUnavailable     = errors.New("bot username is not configured")
)

// EventService implements the Connect EventService
type EventService struct {
	store       storage.Store
	botUsername string
}

// NewEventService creates a new EventService with the given storage backend.
// botUsername names the bot whose Mini-App invite links point to; without it
// GetInviteLink is unavailable.
func NewEventService(store storage.Store, botUsername string) *EventService {
	return &EventService{store: store, botUsername: strings.TrimPrefix(botUsername, "@")}
}

// CreateEvent creates a new event. The organizer defaults to the caller.
func (s *EventService) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	slog.Info("CreateEvent request received", "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if err := required("name", name); err != nil {
		return nil, err
	}
	if !models.ValidPaymentDetails(req.Msg.PaymentDetails) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errPaymentDetailsTooLong)
	}

	organizer := req.Msg.OrganizerTgUserID
	if organizer == 0 {
		organizer = middleware.GetTgUserID(ctx)
	}
	if organizer == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: organizer_tg_user_id", errRequired))
	}

	event := &models.Event{
		Name:              name,
		OrganizerTgUserID: organizer,
		PaymentDetails:    req.Msg.PaymentDetails,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		slog.Error("CreateEvent failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Event created", "event_id", event.ID, "organizer", organizer)

	return connect.NewResponse(&api.CreateEventResponse{Event: toAPIEvent(event)}), nil
}

// GetEvent retrieves an event by ID.
func (s *EventService) GetEvent(ctx context.Context, req *connect.Request[api.GetEventRequest]) (*connect.Response[api.GetEventResponse], error) {
	slog.Info("GetEvent request received", "event_id", req.Msg.EventID)

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("GetEvent failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetEventResponse{Event: toAPIEvent(event)}), nil
}

// UpdatePaymentDetails changes where debtors send money. Organizer only.
func (s *EventService) UpdatePaymentDetails(ctx context.Context, req *connect.Request[api.UpdatePaymentDetailsRequest]) (*connect.Response[api.UpdatePaymentDetailsResponse], error) {
	slog.Info("UpdatePaymentDetails request received", "event_id", req.Msg.EventID)

	if !models.ValidPaymentDetails(req.Msg.PaymentDetails) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errPaymentDetailsTooLong)
	}

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := requireOrganizer(ctx, event); err != nil {
		return nil, err
	}

	event.PaymentDetails = req.Msg.PaymentDetails
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		slog.Error("UpdatePaymentDetails failed", "event_id", event.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment details updated", "event_id", event.ID)

	return connect.NewResponse(&api.UpdatePaymentDetailsResponse{Event: toAPIEvent(event)}), nil
}

// AddParticipant adds a participant to an event.
func (s *EventService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	slog.Info("AddParticipant request received",
		"event_id", req.Msg.EventID,
		"tg_user_id", req.Msg.TgUserID,
	)

	name := strings.TrimSpace(req.Msg.Name)
	if err := required("name", name); err != nil {
		return nil, err
	}

	if _, err := s.store.GetEvent(ctx, req.Msg.EventID); err != nil {
		return nil, toConnectError(err)
	}

	if req.Msg.TgUserID != 0 {
		existing, err := s.store.ListParticipants(ctx, req.Msg.EventID)
		if err != nil {
			return nil, toConnectError(err)
		}
		for _, p := range existing {
			if p.TgUserID == req.Msg.TgUserID {
				return nil, connect.NewError(connect.CodeAlreadyExists, errAlreadyJoined)
			}
		}
	}

	participant := &models.Participant{
		EventID:  req.Msg.EventID,
		Name:     name,
		TgUserID: req.Msg.TgUserID,
	}
	if err := s.store.CreateParticipant(ctx, participant); err != nil {
		slog.Error("AddParticipant failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Participant added", "event_id", participant.EventID, "participant_id", participant.ID)

	return connect.NewResponse(&api.AddParticipantResponse{Participant: toAPIParticipant(participant)}), nil
}

// ListParticipants returns an event's participants in join order.
func (s *EventService) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	slog.Info("ListParticipants request received", "event_id", req.Msg.EventID)

	if _, err := s.store.GetEvent(ctx, req.Msg.EventID); err != nil {
		return nil, toConnectError(err)
	}

	participants, err := s.store.ListParticipants(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("ListParticipants failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Participant, len(participants))
	for i := range participants {
		out[i] = toAPIParticipant(&participants[i])
	}

	slog.Info("ListParticipants successful", "event_id", req.Msg.EventID, "count", len(out))

	return connect.NewResponse(&api.ListParticipantsResponse{Participants: out}), nil
}

// RemoveParticipant deletes a participant nobody's procurements refer to.
// Organizer only.
func (s *EventService) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	slog.Info("RemoveParticipant request received", "participant_id", req.Msg.ParticipantID)

	participant, err := s.store.GetParticipant(ctx, req.Msg.ParticipantID)
	if err != nil {
		return nil, toConnectError(err)
	}
	event, err := s.store.GetEvent(ctx, participant.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := requireOrganizer(ctx, event); err != nil {
		return nil, err
	}

	refs, err := s.store.CountParticipantReferences(ctx, participant.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if refs > 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("%w: %d procurement(s)", errParticipantInUse, refs))
	}

	if err := s.store.DeleteParticipant(ctx, participant.ID); err != nil {
		slog.Error("RemoveParticipant failed", "participant_id", participant.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Participant removed", "event_id", event.ID, "participant_id", participant.ID)

	return connect.NewResponse(&api.RemoveParticipantResponse{}), nil
}

// buildProcurement validates wire fields against the event's participants
// and copies them into proc.
func (s *EventService) buildProcurement(ctx context.Context, proc *models.Procurement, fields api.ProcurementFields) error {
	name := strings.TrimSpace(fields.Name)
	if err := required("name", name); err != nil {
		return err
	}
	if fields.Price != nil {
		if err := fields.Price.Validate(); err != nil {
			return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("price: %w", calculator.ErrInvalidAmount))
		}
	}
	completion, err := models.ParseCompletionStatus(fields.CompletionStatus)
	if err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	fundraising, err := models.ParseFundraisingStatus(fields.FundraisingStatus)
	if err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	participants, err := s.store.ListParticipants(ctx, proc.EventID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(participants))
	for _, p := range participants {
		known[p.ID] = true
	}
	if fields.ResponsibleID != "" && !known[fields.ResponsibleID] {
		return fmt.Errorf("responsible %s: %w", fields.ResponsibleID, calculator.ErrUnknownParticipant)
	}
	for _, id := range fields.ContributorIDs {
		if !known[id] {
			return fmt.Errorf("contributor %s: %w", id, calculator.ErrUnknownParticipant)
		}
	}

	proc.Name = name
	proc.Comment = fields.Comment
	proc.Price = fields.Price
	proc.ResponsibleID = fields.ResponsibleID
	proc.ContributorIDs = fields.ContributorIDs
	proc.CompletionStatus = completion
	proc.FundraisingStatus = fundraising

	if proc.Settled() && proc.ResponsibleID == "" {
		return connect.NewError(connect.CodeInvalidArgument, errNoResponsible)
	}
	return nil
}

// AddProcurement records a new purchase or task.
func (s *EventService) AddProcurement(ctx context.Context, req *connect.Request[api.AddProcurementRequest]) (*connect.Response[api.AddProcurementResponse], error) {
	slog.Info("AddProcurement request received",
		"event_id", req.Msg.EventID,
		"name", req.Msg.Name,
		"contributors_count", len(req.Msg.ContributorIDs),
	)

	if _, err := s.store.GetEvent(ctx, req.Msg.EventID); err != nil {
		return nil, toConnectError(err)
	}

	proc := &models.Procurement{EventID: req.Msg.EventID}
	if err := s.buildProcurement(ctx, proc, req.Msg.ProcurementFields); err != nil {
		slog.Warn("AddProcurement rejected", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateProcurement(ctx, proc); err != nil {
		slog.Error("AddProcurement failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Procurement added", "event_id", proc.EventID, "procurement_id", proc.ID)

	return connect.NewResponse(&api.AddProcurementResponse{Procurement: toAPIProcurement(proc)}), nil
}

// UpdateProcurement replaces the editable fields of a procurement.
func (s *EventService) UpdateProcurement(ctx context.Context, req *connect.Request[api.UpdateProcurementRequest]) (*connect.Response[api.UpdateProcurementResponse], error) {
	slog.Info("UpdateProcurement request received", "procurement_id", req.Msg.ProcurementID)

	proc, err := s.store.GetProcurement(ctx, req.Msg.ProcurementID)
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.buildProcurement(ctx, proc, req.Msg.ProcurementFields); err != nil {
		slog.Warn("UpdateProcurement rejected", "procurement_id", proc.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateProcurement(ctx, proc); err != nil {
		slog.Error("UpdateProcurement failed", "procurement_id", proc.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Procurement updated", "procurement_id", proc.ID, "status", proc.CompletionStatus)

	return connect.NewResponse(&api.UpdateProcurementResponse{Procurement: toAPIProcurement(proc)}), nil
}

// GetProcurement retrieves a procurement by ID.
func (s *EventService) GetProcurement(ctx context.Context, req *connect.Request[api.GetProcurementRequest]) (*connect.Response[api.GetProcurementResponse], error) {
	slog.Info("GetProcurement request received", "procurement_id", req.Msg.ProcurementID)

	proc, err := s.store.GetProcurement(ctx, req.Msg.ProcurementID)
	if err != nil {
		slog.Error("GetProcurement failed", "procurement_id", req.Msg.ProcurementID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetProcurementResponse{Procurement: toAPIProcurement(proc)}), nil
}

// ListProcurements returns an event's procurements in creation order.
func (s *EventService) ListProcurements(ctx context.Context, req *connect.Request[api.ListProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error) {
	slog.Info("ListProcurements request received", "event_id", req.Msg.EventID)

	if _, err := s.store.GetEvent(ctx, req.Msg.EventID); err != nil {
		return nil, toConnectError(err)
	}

	procs, err := s.store.ListProcurements(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("ListProcurements failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListProcurements successful", "event_id", req.Msg.EventID, "count", len(procs))

	return connect.NewResponse(&api.ListProcurementsResponse{Procurements: toAPIProcurements(procs)}), nil
}

// ListContributedProcurements returns the procurements a participant shares
// the cost of, including those shared by everyone.
func (s *EventService) ListContributedProcurements(ctx context.Context, req *connect.Request[api.ListContributedProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error) {
	slog.Info("ListContributedProcurements request received", "participant_id", req.Msg.ParticipantID)

	participant, err := s.store.GetParticipant(ctx, req.Msg.ParticipantID)
	if err != nil {
		return nil, toConnectError(err)
	}

	all, err := s.store.ListProcurements(ctx, participant.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}
	var mine []models.Procurement
	for _, p := range all {
		if p.SharedBy(participant.ID) {
			mine = append(mine, p)
		}
	}

	slog.Info("ListContributedProcurements successful", "participant_id", participant.ID, "count", len(mine))

	return connect.NewResponse(&api.ListProcurementsResponse{Procurements: toAPIProcurements(mine)}), nil
}

// ListResponsibleProcurements returns the procurements a participant has to buy.
func (s *EventService) ListResponsibleProcurements(ctx context.Context, req *connect.Request[api.ListResponsibleProcurementsRequest]) (*connect.Response[api.ListProcurementsResponse], error) {
	slog.Info("ListResponsibleProcurements request received", "participant_id", req.Msg.ParticipantID)

	if _, err := s.store.GetParticipant(ctx, req.Msg.ParticipantID); err != nil {
		return nil, toConnectError(err)
	}

	procs, err := s.store.ListProcurementsByResponsible(ctx, req.Msg.ParticipantID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("ListResponsibleProcurements successful", "participant_id", req.Msg.ParticipantID, "count", len(procs))

	return connect.NewResponse(&api.ListProcurementsResponse{Procurements: toAPIProcurements(procs)}), nil
}

// GetInviteLink returns the Mini-App deep link that opens the event,
// https://t.me/<bot>?startapp=<event_id>.
func (s *EventService) GetInviteLink(ctx context.Context, req *connect.Request[api.GetInviteLinkRequest]) (*connect.Response[api.GetInviteLinkResponse], error) {
	slog.Info("GetInviteLink request received", "event_id", req.Msg.EventID)

	if err := required("event_id", req.Msg.EventID); err != nil {
		return nil, err
	}
	if s.botUsername == "" {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errInviteUnavailable)
	}

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}

	link := url.URL{
		Scheme:   "https",
		Host:     "t.me",
		Path:     "/" + s.botUsername,
		RawQuery: url.Values{"startapp": {event.ID}}.Encode(),
	}
	return connect.NewResponse(&api.GetInviteLinkResponse{Link: link.String()}), nil
}
