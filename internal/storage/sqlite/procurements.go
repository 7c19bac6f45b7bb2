package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/money"
	"github.com/kate-app/backend/internal/storage"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateProcurement persists a new procurement and its contributors.
func (s *SQLiteStore) CreateProcurement(ctx context.Context, proc *models.Procurement) error {
	if proc.ID == "" {
		proc.ID = uuid.New().String()
	}
	if proc.CreatedAt == 0 {
		proc.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO procurements (id, event_id, name, comment, price_minor, responsible_id,
		     completion_status, fundraising_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		proc.ID, proc.EventID, proc.Name, proc.Comment, priceValue(proc.Price), proc.ResponsibleID,
		string(proc.CompletionStatus), string(proc.FundraisingStatus), proc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert procurement: %w", err)
	}

	if err := insertContributors(ctx, tx, proc.ID, proc.ContributorIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateProcurement replaces a procurement's fields and contributor list.
func (s *SQLiteStore) UpdateProcurement(ctx context.Context, proc *models.Procurement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE procurements SET name = ?, comment = ?, price_minor = ?, responsible_id = ?,
		     completion_status = ?, fundraising_status = ?
		 WHERE id = ?`,
		proc.Name, proc.Comment, priceValue(proc.Price), proc.ResponsibleID,
		string(proc.CompletionStatus), string(proc.FundraisingStatus), proc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update procurement: %w", err)
	}
	if err := requireAffected(result, "procurement", proc.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM procurement_contributors WHERE procurement_id = ?", proc.ID); err != nil {
		return fmt.Errorf("failed to clear contributors: %w", err)
	}
	if err := insertContributors(ctx, tx, proc.ID, proc.ContributorIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetProcurement retrieves a procurement by ID with its contributors.
func (s *SQLiteStore) GetProcurement(ctx context.Context, procurementID string) (*models.Procurement, error) {
	procs, err := listProcurements(ctx, s.db, "p.id = ?", procurementID)
	if err != nil {
		return nil, err
	}
	if len(procs) == 0 {
		return nil, fmt.Errorf("procurement %s: %w", procurementID, storage.ErrNotFound)
	}
	return &procs[0], nil
}

// ListProcurements returns all procurements of an event in creation order.
func (s *SQLiteStore) ListProcurements(ctx context.Context, eventID string) ([]models.Procurement, error) {
	return listProcurements(ctx, s.db, "p.event_id = ?", eventID)
}

// ListProcurementsByResponsible returns procurements assigned to a participant.
func (s *SQLiteStore) ListProcurementsByResponsible(ctx context.Context, participantID string) ([]models.Procurement, error) {
	return listProcurements(ctx, s.db, "p.responsible_id = ?", participantID)
}

// listProcurements loads procurements matching where, then their
// contributors in a second query over the same filter.
func listProcurements(ctx context.Context, q queryer, where string, args ...any) ([]models.Procurement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT p.id, p.event_id, p.name, p.comment, p.price_minor, p.responsible_id,
		        p.completion_status, p.fundraising_status, p.created_at
		 FROM procurements p WHERE `+where+` ORDER BY p.created_at, p.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list procurements: %w", err)
	}
	defer rows.Close()

	var procs []models.Procurement
	index := make(map[string]int)
	for rows.Next() {
		var (
			p          models.Procurement
			price      sql.NullInt64
			completion string
			fundraise  string
		)
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.Comment, &price, &p.ResponsibleID,
			&completion, &fundraise, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan procurement: %w", err)
		}
		if price.Valid {
			amount := money.FromMinor(price.Int64)
			p.Price = &amount
		}
		p.CompletionStatus = models.CompletionStatus(completion)
		p.FundraisingStatus = models.FundraisingStatus(fundraise)
		index[p.ID] = len(procs)
		procs = append(procs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate procurements: %w", err)
	}
	if len(procs) == 0 {
		return procs, nil
	}

	contribRows, err := q.QueryContext(ctx,
		`SELECT c.procurement_id, c.participant_id
		 FROM procurement_contributors c JOIN procurements p ON p.id = c.procurement_id
		 WHERE `+where+` ORDER BY c.participant_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributors: %w", err)
	}
	defer contribRows.Close()

	for contribRows.Next() {
		var procID, participantID string
		if err := contribRows.Scan(&procID, &participantID); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		if i, ok := index[procID]; ok {
			procs[i].ContributorIDs = append(procs[i].ContributorIDs, participantID)
		}
	}
	if err := contribRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributors: %w", err)
	}
	return procs, nil
}

func insertContributors(ctx context.Context, e execer, procurementID string, contributors []string) error {
	for _, id := range contributors {
		_, err := e.ExecContext(ctx,
			"INSERT OR IGNORE INTO procurement_contributors (procurement_id, participant_id) VALUES (?, ?)",
			procurementID, id,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contributor: %w", err)
		}
	}
	return nil
}

func priceValue(p *money.Amount) any {
	if p == nil {
		return nil
	}
	return p.Minor()
}
