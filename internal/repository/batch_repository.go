package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"agritrace-backend/internal/models"
)

type BatchRepository struct {
	db *sqlx.DB
}

func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

const batchColumns = `
	id, farmer_id, crop_type, quality_grade, quantity_kg, harvest_time,
	ST_AsEWKB(harvest_location::geometry) AS harvest_location,
	harvest_address, notes, status, created_at, updated_at`

func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	batch.Status = models.BatchCreated
	batch.CreatedAt = time.Now()
	batch.UpdatedAt = time.Now()

	query := `
		INSERT INTO batch (
			id, farmer_id, crop_type, quality_grade, quantity_kg,
			harvest_time, harvest_location, harvest_address, notes,
			status, created_at, updated_at
		) VALUES (
			:id, :farmer_id, :crop_type, :quality_grade, :quantity_kg,
			:harvest_time, ST_GeogFromText(:harvest_location), :harvest_address, :notes,
			:status, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, batch)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	var batch models.Batch
	query := `SELECT ` + batchColumns + ` FROM batch WHERE id = $1`

	err := r.db.GetContext(ctx, &batch, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("batch %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return &batch, nil
}

// UpdateStatus is a compare-and-set transition: the row only moves if
// it is still in the expected source status, so concurrent callers
// cannot push a batch backward or double-apply a step.
func (r *BatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BatchStatus) error {
	query := `UPDATE batch SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("batch %s no longer in status %s: %w", id, from, models.ErrConflict)
	}
	return nil
}

// ListVisible returns the batches the caller may read, mirroring the
// per-role row predicates: participants see their own batches at any
// status, transporters additionally browse unclaimed created batches,
// vendors additionally browse in_transit/delivered batches.
func (r *BatchRepository) ListVisible(ctx context.Context, userID uuid.UUID, role models.UserRole) ([]models.Batch, error) {
	var query string
	switch role {
	case models.RoleFarmer:
		query = `SELECT ` + batchColumns + ` FROM batch WHERE farmer_id = $1 ORDER BY created_at DESC`
	case models.RoleTransporter:
		query = `
			SELECT ` + batchColumns + ` FROM batch
			WHERE status = 'created'
			   OR id IN (SELECT batch_id FROM transport_log WHERE transporter_id = $1)
			ORDER BY created_at DESC`
	case models.RoleVendor:
		query = `
			SELECT ` + batchColumns + ` FROM batch
			WHERE status IN ('in_transit', 'delivered')
			   OR id IN (SELECT batch_id FROM vendor_receipt WHERE vendor_id = $1)
			ORDER BY created_at DESC`
	default:
		return nil, fmt.Errorf("unknown role %s: %w", role, models.ErrForbidden)
	}

	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}
