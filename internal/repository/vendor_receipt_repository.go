package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"agritrace-backend/internal/models"
)

type VendorReceiptRepository struct {
	db *sqlx.DB
}

func NewVendorReceiptRepository(db *sqlx.DB) *VendorReceiptRepository {
	return &VendorReceiptRepository{db: db}
}

const vendorReceiptColumns = `
	id, batch_id, vendor_id, received_at, quality_grade,
	spoilage_percent, weight_loss_percent, created_at, updated_at`

func (r *VendorReceiptRepository) Create(ctx context.Context, receipt *models.VendorReceipt) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	receipt.CreatedAt = time.Now()
	receipt.UpdatedAt = time.Now()

	query := `
		INSERT INTO vendor_receipt (
			id, batch_id, vendor_id, received_at, quality_grade,
			spoilage_percent, weight_loss_percent, created_at, updated_at
		) VALUES (
			:id, :batch_id, :vendor_id, :received_at, :quality_grade,
			:spoilage_percent, :weight_loss_percent, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, receipt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("batch %s already has a vendor receipt: %w", receipt.BatchID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create vendor receipt: %w", err)
	}
	return nil
}

func (r *VendorReceiptRepository) GetByBatchID(ctx context.Context, batchID uuid.UUID) (*models.VendorReceipt, error) {
	var receipt models.VendorReceipt
	query := `SELECT ` + vendorReceiptColumns + ` FROM vendor_receipt WHERE batch_id = $1`

	err := r.db.GetContext(ctx, &receipt, query, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vendor receipt for batch %s: %w", batchID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vendor receipt: %w", err)
	}
	return &receipt, nil
}

func (r *VendorReceiptRepository) ListByBatchIDs(ctx context.Context, batchIDs []uuid.UUID) ([]models.VendorReceipt, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+vendorReceiptColumns+` FROM vendor_receipt WHERE batch_id IN (?)`, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build vendor receipt query: %w", err)
	}
	query = r.db.Rebind(query)

	var receipts []models.VendorReceipt
	if err := r.db.SelectContext(ctx, &receipts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list vendor receipts: %w", err)
	}
	return receipts, nil
}

func (r *VendorReceiptRepository) Confirm(ctx context.Context, batchID uuid.UUID, receivedAt time.Time, qualityGrade string, spoilagePercent, weightLossPercent float64) error {
	query := `
		UPDATE vendor_receipt
		SET received_at = $1, quality_grade = $2, spoilage_percent = $3,
		    weight_loss_percent = $4, updated_at = NOW()
		WHERE batch_id = $5`

	result, err := r.db.ExecContext(ctx, query, receivedAt, qualityGrade, spoilagePercent, weightLossPercent, batchID)
	if err != nil {
		return fmt.Errorf("failed to confirm vendor receipt: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("vendor receipt for batch %s: %w", batchID, models.ErrNotFound)
	}
	return nil
}
