package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/storage"
)

// CreateParticipant inserts a new participant.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, participant *models.Participant) error {
	if participant.ID == "" {
		participant.ID = uuid.New().String()
	}
	if participant.CreatedAt == 0 {
		participant.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO participants (id, event_id, name, tg_user_id, created_at) VALUES (?, ?, ?, ?, ?)",
		participant.ID, participant.EventID, participant.Name, participant.TgUserID, participant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, event_id, name, tg_user_id, created_at FROM participants WHERE id = ?",
		participantID,
	).Scan(&p.ID, &p.EventID, &p.Name, &p.TgUserID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns all participants of an event in join order.
func (s *SQLiteStore) ListParticipants(ctx context.Context, eventID string) ([]models.Participant, error) {
	return listParticipants(ctx, s.db, eventID)
}

func listParticipants(ctx context.Context, q queryer, eventID string) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, event_id, name, tg_user_id, created_at FROM participants WHERE event_id = ? ORDER BY created_at, id",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.TgUserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// DeleteParticipant removes a participant by ID.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, participantID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", participantID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return requireAffected(result, "participant", participantID)
}

// CountParticipantReferences counts procurements that mention the participant.
func (s *SQLiteStore) CountParticipantReferences(ctx context.Context, participantID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM procurements p
		 WHERE p.responsible_id = ?
		    OR EXISTS (SELECT 1 FROM procurement_contributors c
		               WHERE c.procurement_id = p.id AND c.participant_id = ?)`,
		participantID, participantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participant references: %w", err)
	}
	return count, nil
}
