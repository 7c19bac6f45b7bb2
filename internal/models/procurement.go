package models

import (
	"fmt"

	"github.com/kate-app/backend/internal/money"
)

// CompletionStatus tracks whether a procurement has been bought.
type CompletionStatus string

const (
	CompletionInProgress CompletionStatus = "IN_PROGRESS"
	CompletionDone       CompletionStatus = "DONE"
)

// FundraisingStatus tracks money collection for a procurement.
// It is informational and does not affect balances.
type FundraisingStatus string

const (
	FundraisingNone     FundraisingStatus = "NONE"
	FundraisingPlanning FundraisingStatus = "PLANNING"
	FundraisingDone     FundraisingStatus = "DONE"
)

// ParseCompletionStatus validates a wire value. Empty means IN_PROGRESS.
func ParseCompletionStatus(s string) (CompletionStatus, error) {
	switch CompletionStatus(s) {
	case "", CompletionInProgress:
		return CompletionInProgress, nil
	case CompletionDone:
		return CompletionDone, nil
	}
	return "", fmt.Errorf("unknown completion status %q", s)
}

// ParseFundraisingStatus validates a wire value. Empty means NONE.
func ParseFundraisingStatus(s string) (FundraisingStatus, error) {
	switch FundraisingStatus(s) {
	case "", FundraisingNone:
		return FundraisingNone, nil
	case FundraisingPlanning:
		return FundraisingPlanning, nil
	case FundraisingDone:
		return FundraisingDone, nil
	}
	return "", fmt.Errorf("unknown fundraising status %q", s)
}

// Procurement represents a group purchase or task.
type Procurement struct {
	// ID is the unique identifier for the procurement (UUID format).
	ID string

	// EventID is the event this procurement belongs to.
	EventID string

	// Name is what is being bought (e.g., "Charcoal").
	Name string

	// Comment is an optional free-text note.
	Comment string

	// Price is the amount paid. Nil means the price is not known yet.
	Price *money.Amount

	// ResponsibleID is the participant who buys the item and pays for it.
	// May be empty while nobody has taken the task.
	ResponsibleID string

	// ContributorIDs are the participants sharing the cost.
	// Empty means the cost is shared by every participant of the event.
	ContributorIDs []string

	CompletionStatus  CompletionStatus
	FundraisingStatus FundraisingStatus

	// CreatedAt is the Unix timestamp when the procurement was created.
	CreatedAt int64
}

// Settled reports whether the procurement moves money: it is done and priced.
func (p *Procurement) Settled() bool {
	return p.Price != nil && p.CompletionStatus == CompletionDone
}

// SharedBy reports whether participantID shares the cost of p.
func (p *Procurement) SharedBy(participantID string) bool {
	if len(p.ContributorIDs) == 0 {
		return true
	}
	for _, id := range p.ContributorIDs {
		if id == participantID {
			return true
		}
	}
	return false
}
