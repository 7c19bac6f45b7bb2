package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/kate-app/backend/pkg/api"
)

func TestCreateEvent(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	t.Run("organizer from token", func(t *testing.T) {
		resp, err := env.events.CreateEvent(ctx, as(t, env, organizerTgID, &api.CreateEventRequest{Name: "  Offsite  "}))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Msg.Event.ID)
		assert.Equal(t, "Offsite", resp.Msg.Event.Name)
		assert.Equal(t, organizerTgID, resp.Msg.Event.OrganizerTgUserID)

		got, err := env.events.GetEvent(ctx, connect.NewRequest(&api.GetEventRequest{EventID: resp.Msg.Event.ID}))
		require.NoError(t, err)
		assert.Equal(t, resp.Msg.Event, got.Msg.Event)
	})

	t.Run("explicit organizer", func(t *testing.T) {
		resp, err := env.events.CreateEvent(ctx, as(t, env, 77, &api.CreateEventRequest{Name: "Bot event", OrganizerTgUserID: 55}))
		require.NoError(t, err)
		assert.Equal(t, int64(55), resp.Msg.Event.OrganizerTgUserID)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := env.events.CreateEvent(ctx, as(t, env, organizerTgID, &api.CreateEventRequest{Name: " "}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

		_, err = env.events.CreateEvent(ctx, as(t, env, organizerTgID, &api.CreateEventRequest{
			Name:           "Long details",
			PaymentDetails: strings.Repeat("x", 81),
		}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestGetEvent_NotFound(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.events.GetEvent(context.Background(), connect.NewRequest(&api.GetEventRequest{EventID: "non-existent"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestUpdatePaymentDetails(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	eventID, _ := createEvent(t, env)

	resp, err := env.events.UpdatePaymentDetails(ctx, as(t, env, organizerTgID, &api.UpdatePaymentDetailsRequest{
		EventID:        eventID,
		PaymentDetails: "Card 2200 0000 0000 0000",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Card 2200 0000 0000 0000", resp.Msg.Event.PaymentDetails)

	// 80 Cyrillic runes is fine even though it is 160 bytes.
	_, err = env.events.UpdatePaymentDetails(ctx, as(t, env, organizerTgID, &api.UpdatePaymentDetailsRequest{
		EventID:        eventID,
		PaymentDetails: strings.Repeat("ж", 80),
	}))
	assert.NoError(t, err)

	_, err = env.events.UpdatePaymentDetails(ctx, as(t, env, 7, &api.UpdatePaymentDetailsRequest{EventID: eventID}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = env.events.UpdatePaymentDetails(ctx, as(t, env, organizerTgID, &api.UpdatePaymentDetailsRequest{
		EventID:        eventID,
		PaymentDetails: strings.Repeat("ж", 81),
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestParticipants(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	eventID, _ := createEvent(t, env)

	masha, err := env.events.AddParticipant(ctx, as(t, env, organizerTgID, &api.AddParticipantRequest{
		EventID: eventID, Name: "Masha", TgUserID: 42,
	}))
	require.NoError(t, err)
	_, err = env.events.AddParticipant(ctx, as(t, env, organizerTgID, &api.AddParticipantRequest{
		EventID: eventID, Name: "Ivan",
	}))
	require.NoError(t, err)

	_, err = env.events.AddParticipant(ctx, as(t, env, organizerTgID, &api.AddParticipantRequest{
		EventID: eventID, Name: "Masha again", TgUserID: 42,
	}))
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))

	_, err = env.events.AddParticipant(ctx, as(t, env, organizerTgID, &api.AddParticipantRequest{
		EventID: "missing", Name: "Nobody",
	}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	list, err := env.events.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{EventID: eventID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Participants, 2)
	assert.Contains(t, list.Msg.Participants, masha.Msg.Participant)
}

func TestRemoveParticipant(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	eventID, ids := createEvent(t, env, "A", "B", "C")
	addDone(t, env, eventID, "Tent", 1000, ids[0], ids[0], ids[1])

	_, err := env.events.RemoveParticipant(ctx, as(t, env, 7, &api.RemoveParticipantRequest{ParticipantID: ids[2]}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = env.events.RemoveParticipant(ctx, as(t, env, organizerTgID, &api.RemoveParticipantRequest{ParticipantID: ids[1]}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = env.events.RemoveParticipant(ctx, as(t, env, organizerTgID, &api.RemoveParticipantRequest{ParticipantID: ids[2]}))
	require.NoError(t, err)

	_, err = env.events.RemoveParticipant(ctx, as(t, env, organizerTgID, &api.RemoveParticipantRequest{ParticipantID: ids[2]}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	list, err := env.events.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{EventID: eventID}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Participants, 2)
}

func TestAddProcurement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	eventID, ids := createEvent(t, env, "A", "B")

	t.Run("planned without price", func(t *testing.T) {
		resp, err := env.events.AddProcurement(ctx, as(t, env, organizerTgID, &api.AddProcurementRequest{
			EventID:           eventID,
			ProcurementFields: api.ProcurementFields{Name: "Ice", Comment: "two bags", FundraisingStatus: "PLANNING"},
		}))
		require.NoError(t, err)
		p := resp.Msg.Procurement
		assert.Nil(t, p.Price)
		assert.Equal(t, "IN_PROGRESS", p.CompletionStatus)
		assert.Equal(t, "PLANNING", p.FundraisingStatus)
		assert.Empty(t, p.ContributorIDs)

		got, err := env.events.GetProcurement(ctx, connect.NewRequest(&api.GetProcurementRequest{ProcurementID: p.ID}))
		require.NoError(t, err)
		assert.Equal(t, p, got.Msg.Procurement)
	})

	tests := []struct {
		name   string
		fields api.ProcurementFields
		code   connect.Code
	}{
		{"missing name", api.ProcurementFields{}, connect.CodeInvalidArgument},
		{"negative price", api.ProcurementFields{Name: "Refund", Price: price(-1)}, connect.CodeInvalidArgument},
		{"bad status", api.ProcurementFields{Name: "X", CompletionStatus: "MAYBE"}, connect.CodeInvalidArgument},
		{"bad fundraising", api.ProcurementFields{Name: "X", FundraisingStatus: "SOON"}, connect.CodeInvalidArgument},
		{"unknown responsible", api.ProcurementFields{Name: "X", ResponsibleID: "ghost"}, connect.CodeFailedPrecondition},
		{"unknown contributor", api.ProcurementFields{Name: "X", ContributorIDs: []string{ids[0], "ghost"}}, connect.CodeFailedPrecondition},
		{"done priced without responsible", api.ProcurementFields{Name: "X", Price: price(100), CompletionStatus: "DONE"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.events.AddProcurement(ctx, as(t, env, organizerTgID, &api.AddProcurementRequest{
				EventID:           eventID,
				ProcurementFields: tt.fields,
			}))
			assert.Equal(t, tt.code, connect.CodeOf(err))
		})
	}

	t.Run("unknown event", func(t *testing.T) {
		_, err := env.events.AddProcurement(ctx, as(t, env, organizerTgID, &api.AddProcurementRequest{
			EventID:           "missing",
			ProcurementFields: api.ProcurementFields{Name: "X"},
		}))
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})

	t.Run("participant from another event", func(t *testing.T) {
		_, otherIDs := createEvent(t, env, "Stranger")
		_, err := env.events.AddProcurement(ctx, as(t, env, organizerTgID, &api.AddProcurementRequest{
			EventID:           eventID,
			ProcurementFields: api.ProcurementFields{Name: "X", ResponsibleID: otherIDs[0]},
		}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	})
}

func TestUpdateProcurement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	eventID, ids := createEvent(t, env, "A", "B")
	procID := addDone(t, env, eventID, "Tent", 1000, ids[0], ids...)

	resp, err := env.events.UpdateProcurement(ctx, as(t, env, organizerTgID, &api.UpdateProcurementRequest{
		ProcurementID: procID,
		ProcurementFields: api.ProcurementFields{
			Name:              "Big tent",
			Price:             price(2500),
			ResponsibleID:     ids[1],
			ContributorIDs:    []string{ids[0]},
			CompletionStatus:  "DONE",
			FundraisingStatus: "DONE",
		},
	}))
	require.NoError(t, err)
	p := resp.Msg.Procurement
	assert.Equal(t, "Big tent", p.Name)
	assert.Equal(t, int64(2500), p.Price.Minor())
	assert.Equal(t, []string{ids[0]}, p.ContributorIDs)
	assert.Equal(t, eventID, p.EventID)

	transfers := planned(getSettlement(t, env, eventID).Transfers)
	assert.Equal(t, []plannedTransfer{{ids[0], ids[1], 2500, false}}, transfers)

	_, err = env.events.UpdateProcurement(ctx, as(t, env, organizerTgID, &api.UpdateProcurementRequest{
		ProcurementID:     "missing",
		ProcurementFields: api.ProcurementFields{Name: "X"},
	}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = env.events.UpdateProcurement(ctx, as(t, env, organizerTgID, &api.UpdateProcurementRequest{
		ProcurementID:     procID,
		ProcurementFields: api.ProcurementFields{Name: "Tent", Price: price(-10)},
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestListProcurementViews(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	eventID, ids := createEvent(t, env, "A", "B", "C")
	a, b, c := ids[0], ids[1], ids[2]

	shared := addDone(t, env, eventID, "Charcoal", 900, a)
	forAB := addDone(t, env, eventID, "Beer", 600, b, a, b)
	forC := addDone(t, env, eventID, "Juice", 300, a, c)

	all, err := env.events.ListProcurements(ctx, connect.NewRequest(&api.ListProcurementsRequest{EventID: eventID}))
	require.NoError(t, err)
	assert.Len(t, all.Msg.Procurements, 3)

	procIDs := func(resp *connect.Response[api.ListProcurementsResponse]) []string {
		var out []string
		for _, p := range resp.Msg.Procurements {
			out = append(out, p.ID)
		}
		return out
	}

	contributed, err := env.events.ListContributedProcurements(ctx, connect.NewRequest(&api.ListContributedProcurementsRequest{ParticipantID: c}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{shared, forC}, procIDs(contributed))

	contributed, err = env.events.ListContributedProcurements(ctx, connect.NewRequest(&api.ListContributedProcurementsRequest{ParticipantID: b}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{shared, forAB}, procIDs(contributed))

	tasks, err := env.events.ListResponsibleProcurements(ctx, connect.NewRequest(&api.ListResponsibleProcurementsRequest{ParticipantID: a}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{shared, forC}, procIDs(tasks))

	tasks, err = env.events.ListResponsibleProcurements(ctx, connect.NewRequest(&api.ListResponsibleProcurementsRequest{ParticipantID: c}))
	require.NoError(t, err)
	assert.Empty(t, tasks.Msg.Procurements)

	_, err = env.events.ListResponsibleProcurements(ctx, connect.NewRequest(&api.ListResponsibleProcurementsRequest{ParticipantID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestGetInviteLink(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	eventID, _ := createEvent(t, env)

	resp, err := env.events.GetInviteLink(ctx, connect.NewRequest(&api.GetInviteLinkRequest{EventID: eventID}))
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/kate_test_bot?startapp="+eventID, resp.Msg.Link)

	_, err = env.events.GetInviteLink(ctx, connect.NewRequest(&api.GetInviteLinkRequest{EventID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = env.events.GetInviteLink(ctx, connect.NewRequest(&api.GetInviteLinkRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	t.Run("at-prefixed username", func(t *testing.T) {
		svc := NewEventService(env.store, "@kate_test_bot")
		resp, err := svc.GetInviteLink(ctx, connect.NewRequest(&api.GetInviteLinkRequest{EventID: eventID}))
		require.NoError(t, err)
		assert.Equal(t, "https://t.me/kate_test_bot?startapp="+eventID, resp.Msg.Link)
	})

	t.Run("bot not configured", func(t *testing.T) {
		svc := NewEventService(env.store, "")
		_, err := svc.GetInviteLink(ctx, connect.NewRequest(&api.GetInviteLinkRequest{EventID: eventID}))
		assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	})
}
