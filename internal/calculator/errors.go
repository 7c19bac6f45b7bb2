// Package calculator derives balances, settlement transfers and summary rows
// from an event's procurements and participants. Everything here is a pure
// function of its inputs.
package calculator

import (
	"errors"

	"github.com/kate-app/backend/internal/money"
)

var (
	// ErrUnknownParticipant means a procurement references a participant
	// that is not part of the event.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrUnbalancedLedger means net balances do not sum to zero, which
	// points at a defect in balance computation.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")

	// ErrInvalidAmount means a price is negative or malformed.
	ErrInvalidAmount = money.ErrInvalid
)
