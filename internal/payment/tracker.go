// Package payment tracks which planned transfers the organizer has marked as
// paid, and carries those marks across settlement recomputations.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kate-app/backend/internal/models"
)

// ErrTransferNotFound means the debtor/creditor pair is not in the current plan.
var ErrTransferNotFound = errors.New("transfer not found in current settlement")

// Policy decides when a paid mark survives a recomputation.
type Policy string

const (
	// PolicyPair keeps the mark while the debtor/creditor pair is still
	// planned, even if the amount changed.
	PolicyPair Policy = "pair"

	// PolicyPairAmount keeps the mark only if the amount is unchanged.
	PolicyPairAmount Policy = "pair_amount"
)

// ParsePolicy validates a configured policy name. Empty selects PolicyPair.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyPair:
		return PolicyPair, nil
	case PolicyPairAmount:
		return PolicyPairAmount, nil
	}
	return "", fmt.Errorf("unknown paid policy %q", s)
}

// StateStore persists payment states per event.
type StateStore interface {
	// ListPaymentStates returns all states stored for the event.
	ListPaymentStates(ctx context.Context, eventID string) ([]models.PaymentState, error)

	// ReplacePaymentStates atomically replaces the event's states.
	ReplacePaymentStates(ctx context.Context, eventID string, states []models.PaymentState) error

	// UpsertPaymentState writes a single state keyed by event, debtor and creditor.
	UpsertPaymentState(ctx context.Context, state *models.PaymentState) error
}

type pairKey struct {
	debtor, creditor string
}

// Tracker applies and records paid marks. Writes for one event are
// serialized; different events proceed in parallel.
type Tracker struct {
	store  StateStore
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	eventLock map[string]*sync.Mutex

	snapMu    sync.RWMutex
	snapshots map[string][]models.Transfer
}

// NewTracker creates a Tracker backed by store.
func NewTracker(store StateStore, policy Policy) *Tracker {
	return &Tracker{
		store:     store,
		policy:    policy,
		now:       time.Now,
		eventLock: make(map[string]*sync.Mutex),
		snapshots: make(map[string][]models.Transfer),
	}
}

// Policy returns the configured reconciliation policy.
func (t *Tracker) Policy() Policy {
	return t.policy
}

func (t *Tracker) lock(eventID string) func() {
	t.mu.Lock()
	l, ok := t.eventLock[eventID]
	if !ok {
		l = &sync.Mutex{}
		t.eventLock[eventID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// PlanFunc produces the current transfer plan of an event.
type PlanFunc func(ctx context.Context) ([]models.Transfer, error)

// Settle runs plan and reconciles its result while holding the event's
// lock, so the plan it reconciles is never older than one already
// published. A failing plan leaves payment state untouched.
func (t *Tracker) Settle(ctx context.Context, eventID string, plan PlanFunc) ([]models.Transfer, error) {
	unlock := t.lock(eventID)
	defer unlock()

	planned, err := plan(ctx)
	if err != nil {
		return nil, err
	}
	return t.reconcile(ctx, eventID, planned)
}

// Reconcile applies stored paid marks to a freshly planned set of transfers
// and persists the result. Marks for pairs that are no longer planned are
// discarded, so a pair that reappears later starts unpaid.
func (t *Tracker) Reconcile(ctx context.Context, eventID string, planned []models.Transfer) ([]models.Transfer, error) {
	unlock := t.lock(eventID)
	defer unlock()
	return t.reconcile(ctx, eventID, planned)
}

func (t *Tracker) reconcile(ctx context.Context, eventID string, planned []models.Transfer) ([]models.Transfer, error) {
	stored, err := t.store.ListPaymentStates(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment states: %w", err)
	}
	previous := make(map[pairKey]models.PaymentState, len(stored))
	for _, s := range stored {
		previous[pairKey{s.DebtorID, s.CreditorID}] = s
	}

	now := t.now().Unix()
	result := make([]models.Transfer, len(planned))
	var keep []models.PaymentState
	for i, tr := range planned {
		tr.Paid = false
		if prev, ok := previous[pairKey{tr.DebtorID, tr.CreditorID}]; ok && prev.Paid {
			tr.Paid = t.policy == PolicyPair || prev.Amount == tr.Amount
		}
		result[i] = tr

		if tr.Paid {
			keep = append(keep, models.PaymentState{
				EventID:    eventID,
				DebtorID:   tr.DebtorID,
				CreditorID: tr.CreditorID,
				Amount:     tr.Amount,
				Paid:       true,
				UpdatedAt:  now,
			})
		}
	}

	if err := t.store.ReplacePaymentStates(ctx, eventID, keep); err != nil {
		return nil, fmt.Errorf("failed to save payment states: %w", err)
	}

	dropped := 0
	for _, s := range stored {
		if s.Paid {
			dropped++
		}
	}
	dropped -= len(keep)
	if dropped > 0 {
		slog.Info("Paid marks discarded after recomputation", "event_id", eventID, "count", dropped)
	}

	t.setSnapshot(eventID, result)
	return cloneTransfers(result), nil
}

// MarkPaid sets or clears the paid mark of a planned transfer and returns
// the transfer as updated. The pair must be part of the last reconciled
// plan. Repeating a call is harmless.
func (t *Tracker) MarkPaid(ctx context.Context, eventID, debtorID, creditorID string, paid bool) (models.Transfer, error) {
	unlock := t.lock(eventID)
	defer unlock()

	t.snapMu.Lock()
	defer t.snapMu.Unlock()

	current := t.snapshots[eventID]
	idx := -1
	for i, tr := range current {
		if tr.DebtorID == debtorID && tr.CreditorID == creditorID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Transfer{}, fmt.Errorf("%w: %s -> %s", ErrTransferNotFound, debtorID, creditorID)
	}

	state := &models.PaymentState{
		EventID:    eventID,
		DebtorID:   debtorID,
		CreditorID: creditorID,
		Amount:     current[idx].Amount,
		Paid:       paid,
		UpdatedAt:  t.now().Unix(),
	}
	if err := t.store.UpsertPaymentState(ctx, state); err != nil {
		return models.Transfer{}, fmt.Errorf("failed to save payment state: %w", err)
	}

	updated := cloneTransfers(current)
	updated[idx].Paid = paid
	t.snapshots[eventID] = updated
	return updated[idx], nil
}

// Snapshot returns the last reconciled transfers of an event.
func (t *Tracker) Snapshot(eventID string) ([]models.Transfer, bool) {
	t.snapMu.RLock()
	defer t.snapMu.RUnlock()
	s, ok := t.snapshots[eventID]
	if !ok {
		return nil, false
	}
	return cloneTransfers(s), true
}

func (t *Tracker) setSnapshot(eventID string, transfers []models.Transfer) {
	t.snapMu.Lock()
	t.snapshots[eventID] = cloneTransfers(transfers)
	t.snapMu.Unlock()
}

func cloneTransfers(in []models.Transfer) []models.Transfer {
	out := make([]models.Transfer, len(in))
	copy(out, in)
	return out
}
