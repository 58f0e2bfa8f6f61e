package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/thefortthatholds/storefront/models"
)

// pqUniqueViolation is the Postgres error code for unique constraint failures.
const pqUniqueViolation = "23505"

// EntitlementRepository is the Postgres-backed EntitlementStore. The
// entitlements table carries unique constraints on gateway_session_id and
// download_token; together with conditional updates they provide the atomic
// insert-if-absent and check-and-mark steps the purchase flow depends on.
type EntitlementRepository struct {
	db *sql.DB
}

func NewEntitlementRepository(db *sql.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

func (r *EntitlementRepository) CreateEntitlement(ctx context.Context, ent *models.Entitlement) (bool, error) {
	if _, err := uuid.Parse(ent.ID); err != nil {
		return false, fmt.Errorf("invalid entitlement ID format: %w", err)
	}
	if ent.GatewaySessionID == "" {
		return false, fmt.Errorf("entitlement is missing a gateway session ID")
	}
	if ent.DownloadToken == "" {
		return false, fmt.Errorf("entitlement is missing a download token")
	}

	query := `
		INSERT INTO entitlements (
			id, item_id, customer_email, amount_paid, download_token,
			gateway_session_id, created_at, consumed, consumed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (gateway_session_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		ent.ID, ent.ItemID, ent.CustomerEmail, ent.AmountPaid, ent.DownloadToken,
		ent.GatewaySessionID, ent.CreatedAt, ent.Consumed, ent.ConsumedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			// The session conflict is absorbed by ON CONFLICT, so a unique
			// violation here can only be the download_token constraint.
			return false, fmt.Errorf("token %q: %w", ent.DownloadToken, ErrTokenCollision)
		}
		return false, fmt.Errorf("failed to insert entitlement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *EntitlementRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Entitlement, error) {
	query := `
		SELECT id, item_id, customer_email, amount_paid, download_token,
		       gateway_session_id, created_at, consumed, consumed_at
		FROM entitlements
		WHERE gateway_session_id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, sessionID))
}

func (r *EntitlementRepository) GetByToken(ctx context.Context, itemID, token string) (*models.Entitlement, error) {
	query := `
		SELECT id, item_id, customer_email, amount_paid, download_token,
		       gateway_session_id, created_at, consumed, consumed_at
		FROM entitlements
		WHERE item_id = $1 AND download_token = $2
	`
	ent, err := r.scanOne(r.db.QueryRowContext(ctx, query, itemID, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrInvalidToken
		}
		return nil, err
	}
	return ent, nil
}

func (r *EntitlementRepository) ConsumeEntitlement(ctx context.Context, itemID, token string, at time.Time) (bool, error) {
	query := `
		UPDATE entitlements
		SET consumed = TRUE, consumed_at = $3
		WHERE item_id = $1 AND download_token = $2 AND consumed = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, itemID, token, at)
	if err != nil {
		return false, fmt.Errorf("failed to consume entitlement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read consume result: %w", err)
	}
	if rowsAffected == 1 {
		return true, nil
	}

	// No row transitioned: either the token was already consumed or it never
	// existed. Distinguish so the caller can report the right error.
	if _, err := r.GetByToken(ctx, itemID, token); err != nil {
		return false, err
	}
	return false, nil
}

func (r *EntitlementRepository) ListEntitlements(ctx context.Context) ([]models.Entitlement, error) {
	query := `
		SELECT id, item_id, customer_email, amount_paid, download_token,
		       gateway_session_id, created_at, consumed, consumed_at
		FROM entitlements
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query entitlements: %w", err)
	}
	defer rows.Close()

	var entitlements []models.Entitlement
	for rows.Next() {
		var ent models.Entitlement
		if err := rows.Scan(
			&ent.ID, &ent.ItemID, &ent.CustomerEmail, &ent.AmountPaid, &ent.DownloadToken,
			&ent.GatewaySessionID, &ent.CreatedAt, &ent.Consumed, &ent.ConsumedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entitlement row: %w", err)
		}
		entitlements = append(entitlements, ent)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entitlement rows: %w", err)
	}
	return entitlements, nil
}

func (r *EntitlementRepository) scanOne(row *sql.Row) (*models.Entitlement, error) {
	var ent models.Entitlement
	err := row.Scan(
		&ent.ID, &ent.ItemID, &ent.CustomerEmail, &ent.AmountPaid, &ent.DownloadToken,
		&ent.GatewaySessionID, &ent.CreatedAt, &ent.Consumed, &ent.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entitlement not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return &ent, nil
}
