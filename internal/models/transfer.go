package models

import "github.com/kate-app/backend/internal/money"

// Transfer is a planned payment that settles debt between two participants.
// Transfers are recomputed on every settlement request.
type Transfer struct {
	// ID is derived from the debtor/creditor pair, so the same pair keeps
	// the same ID across recomputations.
	ID string

	// DebtorID is the participant who pays.
	DebtorID string

	// CreditorID is the participant who receives the money.
	CreditorID string

	// Amount is always positive.
	Amount money.Amount

	// Paid is set once the organizer marks the transfer as done.
	Paid bool
}

// PaymentState is the persisted paid mark for a debtor/creditor pair.
type PaymentState struct {
	EventID    string
	DebtorID   string
	CreditorID string

	// Amount is the planned amount at the time the state was written.
	Amount money.Amount

	Paid bool

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
