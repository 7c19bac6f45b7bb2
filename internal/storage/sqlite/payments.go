package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/money"
)

// ListPaymentStates retrieves all payment states for an event.
func (s *SQLiteStore) ListPaymentStates(ctx context.Context, eventID string) ([]models.PaymentState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, debtor_id, creditor_id, amount_minor, paid, updated_at
		 FROM payment_states WHERE event_id = ? ORDER BY debtor_id, creditor_id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment states: %w", err)
	}
	defer rows.Close()

	var states []models.PaymentState
	for rows.Next() {
		var (
			st     models.PaymentState
			amount int64
		)
		if err := rows.Scan(&st.EventID, &st.DebtorID, &st.CreditorID, &amount, &st.Paid, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment state: %w", err)
		}
		st.Amount = money.FromMinor(amount)
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment states: %w", err)
	}
	return states, nil
}

// ReplacePaymentStates swaps the event's payment states in one transaction.
func (s *SQLiteStore) ReplacePaymentStates(ctx context.Context, eventID string, states []models.PaymentState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM payment_states WHERE event_id = ?", eventID); err != nil {
		return fmt.Errorf("failed to clear payment states: %w", err)
	}
	for i := range states {
		st := &states[i]
		if st.EventID != eventID {
			return fmt.Errorf("payment state for event %s passed to event %s", st.EventID, eventID)
		}
		if err := upsertPaymentState(ctx, tx, st); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertPaymentState writes one payment state.
func (s *SQLiteStore) UpsertPaymentState(ctx context.Context, state *models.PaymentState) error {
	return upsertPaymentState(ctx, s.db, state)
}

func upsertPaymentState(ctx context.Context, e execer, st *models.PaymentState) error {
	if st.UpdatedAt == 0 {
		st.UpdatedAt = time.Now().Unix()
	}
	_, err := e.ExecContext(ctx,
		`INSERT INTO payment_states (event_id, debtor_id, creditor_id, amount_minor, paid, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (event_id, debtor_id, creditor_id)
		 DO UPDATE SET amount_minor = excluded.amount_minor, paid = excluded.paid, updated_at = excluded.updated_at`,
		st.EventID, st.DebtorID, st.CreditorID, st.Amount.Minor(), st.Paid, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payment state: %w", err)
	}
	return nil
}
