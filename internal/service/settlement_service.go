package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/kate-app/backend/internal/calculator"
	"github.com/kate-app/backend/internal/metrics"
	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/notify"
	"github.com/kate-app/backend/internal/payment"
	"github.com/kate-app/backend/internal/storage"
	api "github.com/kate-app/backend/pkg/api"
)

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	store    storage.Store
	tracker  *payment.Tracker
	renderer *notify.Renderer
}

// NewSettlementService creates a new SettlementService.
// renderer may be nil, in which case rows carry no reminder text.
func NewSettlementService(store storage.Store, tracker *payment.Tracker, renderer *notify.Renderer) *SettlementService {
	return &SettlementService{store: store, tracker: tracker, renderer: renderer}
}

// settlement is one computed view of an event.
type settlement struct {
	event     *models.Event
	rows      []calculator.SummaryRow
	transfers []models.Transfer
	excluded  []calculator.Rejected
}

// settle recomputes an event from a fresh storage snapshot and reconciles
// paid marks against the new plan. Loading and planning run under the
// tracker's event lock, so a slow read cannot publish a plan older than
// one a concurrent SetTransferPaid already marked.
func (s *SettlementService) settle(ctx context.Context, eventID string) (*settlement, error) {
	start := time.Now()

	var (
		snap     *storage.EventSnapshot
		balances map[string]calculator.Balance
		excluded []calculator.Rejected
		outcome  = metrics.OutcomeError
	)
	transfers, err := s.tracker.Settle(ctx, eventID, func(ctx context.Context) ([]models.Transfer, error) {
		var err error
		snap, err = s.store.LoadEventSnapshot(ctx, eventID)
		if err != nil {
			return nil, err
		}

		var procurements []models.Procurement
		procurements, excluded = calculator.FilterValid(snap.Procurements)
		for _, r := range excluded {
			slog.Warn("Procurement excluded from settlement",
				"event_id", eventID,
				"procurement_id", r.ProcurementID,
				"error", r.Err,
			)
		}

		balances, err = calculator.ComputeBalances(procurements, snap.Participants)
		if err != nil {
			if errors.Is(err, calculator.ErrUnknownParticipant) {
				outcome = metrics.OutcomeUnknownParticipant
			}
			return nil, err
		}

		planned, err := calculator.PlanTransfers(balances)
		if err != nil {
			outcome = metrics.OutcomeUnbalanced
			slog.Error("Settlement plan failed", "event_id", eventID, "error", err)
			return nil, err
		}
		return planned, nil
	})
	if err != nil {
		metrics.ObserveSettlement(outcome, time.Since(start), 0, len(excluded))
		return nil, err
	}

	var message calculator.MessageFunc
	if s.renderer != nil {
		message = s.renderer.For(snap.Event)
	}
	rows := calculator.AssembleSummary(snap.Participants, balances, transfers, message)

	metrics.ObserveSettlement(metrics.OutcomeOK, time.Since(start), len(transfers), len(excluded))

	return &settlement{
		event:     snap.Event,
		rows:      rows,
		transfers: transfers,
		excluded:  excluded,
	}, nil
}

// GetEventSettlement returns per-participant balances and the transfer plan.
func (s *SettlementService) GetEventSettlement(ctx context.Context, req *connect.Request[api.GetEventSettlementRequest]) (*connect.Response[api.GetEventSettlementResponse], error) {
	eventID := req.Msg.EventID
	slog.Info("GetEventSettlement request received", "event_id", eventID)

	if err := required("event_id", eventID); err != nil {
		return nil, err
	}

	result, err := s.settle(ctx, eventID)
	if err != nil {
		slog.Error("GetEventSettlement failed", "event_id", eventID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.GetEventSettlementResponse{
		Rows:      make([]api.SummaryRow, len(result.rows)),
		Transfers: make([]api.Transfer, len(result.transfers)),
	}
	for i, r := range result.rows {
		resp.Rows[i] = toAPISummaryRow(r)
	}
	for i, t := range result.transfers {
		resp.Transfers[i] = toAPITransfer(t)
	}
	for _, r := range result.excluded {
		resp.Excluded = append(resp.Excluded, api.ExcludedProcurement{
			ProcurementID: r.ProcurementID,
			Name:          r.Name,
			Reason:        r.Err.Error(),
		})
	}

	slog.Info("GetEventSettlement successful",
		"event_id", eventID,
		"participants", len(resp.Rows),
		"transfers", len(resp.Transfers),
		"excluded", len(resp.Excluded),
	)

	return connect.NewResponse(resp), nil
}

// SetTransferPaid marks or unmarks a planned transfer as paid.
// Only the event organizer may call it. Repeating a call is harmless.
func (s *SettlementService) SetTransferPaid(ctx context.Context, req *connect.Request[api.SetTransferPaidRequest]) (*connect.Response[api.SetTransferPaidResponse], error) {
	msg := req.Msg
	slog.Info("SetTransferPaid request received",
		"event_id", msg.EventID,
		"debtor_id", msg.DebtorID,
		"creditor_id", msg.CreditorID,
		"paid", msg.Paid,
	)

	if err := required("event_id", msg.EventID); err != nil {
		return nil, err
	}
	if err := required("debtor_id", msg.DebtorID); err != nil {
		return nil, err
	}
	if err := required("creditor_id", msg.CreditorID); err != nil {
		return nil, err
	}

	event, err := s.store.GetEvent(ctx, msg.EventID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := requireOrganizer(ctx, event); err != nil {
		return nil, err
	}

	// The mark must apply to the plan as it stands now, not to whatever
	// was last served.
	if _, err := s.settle(ctx, msg.EventID); err != nil {
		slog.Error("SetTransferPaid failed - could not settle", "event_id", msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	transfer, err := s.tracker.MarkPaid(ctx, msg.EventID, msg.DebtorID, msg.CreditorID, msg.Paid)
	if err != nil {
		slog.Error("SetTransferPaid failed", "event_id", msg.EventID, "error", err)
		return nil, toConnectError(err)
	}
	metrics.ObservePaymentMark(msg.Paid)

	slog.Info("Transfer payment state updated",
		"event_id", msg.EventID,
		"transfer_id", transfer.ID,
		"paid", transfer.Paid,
	)

	return connect.NewResponse(&api.SetTransferPaidResponse{Transfer: toAPITransfer(transfer)}), nil
}
