// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/payment"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// EventSnapshot is a consistent read of everything needed to settle an event.
type EventSnapshot struct {
	Event        *models.Event
	Participants []models.Participant
	Procurements []models.Procurement
}

// Store defines the interface for event storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateEvent persists a new event. ID and CreatedAt are filled in when empty.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent retrieves an event by ID. Returns ErrNotFound if missing.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	// UpdateEvent updates name and payment details of an event.
	UpdateEvent(ctx context.Context, event *models.Event) error

	// CreateParticipant adds a participant to an event.
	CreateParticipant(ctx context.Context, participant *models.Participant) error

	// GetParticipant retrieves a participant by ID.
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)

	// ListParticipants returns an event's participants in join order.
	ListParticipants(ctx context.Context, eventID string) ([]models.Participant, error)

	// DeleteParticipant removes a participant.
	DeleteParticipant(ctx context.Context, participantID string) error

	// CountParticipantReferences counts procurements naming the participant
	// as responsible or contributor.
	CountParticipantReferences(ctx context.Context, participantID string) (int, error)

	// CreateProcurement persists a new procurement with its contributors.
	CreateProcurement(ctx context.Context, procurement *models.Procurement) error

	// GetProcurement retrieves a procurement by ID.
	GetProcurement(ctx context.Context, procurementID string) (*models.Procurement, error)

	// UpdateProcurement replaces a procurement's fields and contributors.
	UpdateProcurement(ctx context.Context, procurement *models.Procurement) error

	// ListProcurements returns an event's procurements in creation order.
	ListProcurements(ctx context.Context, eventID string) ([]models.Procurement, error)

	// ListProcurementsByResponsible returns procurements the participant is responsible for.
	ListProcurementsByResponsible(ctx context.Context, participantID string) ([]models.Procurement, error)

	// LoadEventSnapshot reads event, participants and procurements in one transaction.
	LoadEventSnapshot(ctx context.Context, eventID string) (*EventSnapshot, error)

	payment.StateStore

	// Close releases any resources held by the store.
	Close() error
}
