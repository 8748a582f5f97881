package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/payout-service/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides data access for payout requests.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const payoutColumns = "id, amount, currency, recipient_details, status, comment, created_at, updated_at"

// CreatePayout inserts a new payout request and fills in its timestamps.
func (r *Repository) CreatePayout(ctx context.Context, p *models.PayoutRequest) error {
	query := `
		INSERT INTO payouts (id, amount, currency, recipient_details, status, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.ID, p.Amount, p.Currency, p.RecipientDetails, p.Status, p.Comment).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payout: %w", err)
	}
	return nil
}

// GetPayout returns a payout by id, or models.ErrPayoutNotFound.
func (r *Repository) GetPayout(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`
	p, err := scanPayout(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return p, nil
}

// ListPayouts returns all payout requests, newest first.
func (r *Repository) ListPayouts(ctx context.Context) ([]models.PayoutRequest, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	payouts := []models.PayoutRequest{}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payouts: %w", err)
	}
	return payouts, nil
}

// UpdateStatus sets only the status, refreshing updated_at.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE payouts SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payout status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPayoutNotFound
	}
	return nil
}

// AppendComment sets the status and appends a trace line to the comment in a
// single statement, refreshing updated_at. The line is appended verbatim, so
// callers include their own separator.
func (r *Repository) AppendComment(ctx context.Context, id uuid.UUID, status, line string) error {
	query := `
		UPDATE payouts
		SET status = $2, comment = COALESCE(comment, '') || $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, status, line)
	if err != nil {
		return fmt.Errorf("failed to append payout comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPayoutNotFound
	}
	return nil
}

// UpdatePayout applies a partial update of status and/or comment. Nil fields
// keep their current value; updated_at is refreshed unconditionally.
func (r *Repository) UpdatePayout(ctx context.Context, id uuid.UUID, status, comment *string) (*models.PayoutRequest, error) {
	query := `
		UPDATE payouts
		SET status = COALESCE($2, status),
		    comment = COALESCE($3, comment),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + payoutColumns
	p, err := scanPayout(r.db.QueryRow(ctx, query, id, status, comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to update payout: %w", err)
	}
	return p, nil
}

// DeletePayout removes a payout request.
func (r *Repository) DeletePayout(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPayoutNotFound
	}
	return nil
}

// ListStalePending returns ids of pending payouts not touched since cutoff.
// Used by the sweeper to re-dispatch payouts whose dispatch was lost.
func (r *Repository) ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM payouts
		WHERE status = 'pending' AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2
	`
	return r.collectIDs(ctx, query, cutoff, limit)
}

// FailStuckProcessing marks payouts stuck in processing past cutoff as failed,
// appending the given trace line, and returns the affected ids.
func (r *Repository) FailStuckProcessing(ctx context.Context, cutoff time.Time, line string, limit int32) ([]uuid.UUID, error) {
	query := `
		UPDATE payouts
		SET status = 'failed', comment = COALESCE(comment, '') || $2, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM payouts
			WHERE status = 'processing' AND updated_at < $1
			ORDER BY updated_at
			LIMIT $3
		)
		RETURNING id
	`
	return r.collectIDs(ctx, query, cutoff, line, limit)
}

func (r *Repository) collectIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payout ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan payout id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payout ids: %w", err)
	}
	return ids, nil
}

func scanPayout(row pgx.Row) (*models.PayoutRequest, error) {
	p := &models.PayoutRequest{}
	err := row.Scan(&p.ID, &p.Amount, &p.Currency, &p.RecipientDetails, &p.Status, &p.Comment, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
