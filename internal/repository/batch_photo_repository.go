package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"agritrace-backend/internal/models"
)

type BatchPhotoRepository struct {
	db *sqlx.DB
}

func NewBatchPhotoRepository(db *sqlx.DB) *BatchPhotoRepository {
	return &BatchPhotoRepository{db: db}
}

func (r *BatchPhotoRepository) Create(ctx context.Context, photo *models.BatchPhoto) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	photo.CreatedAt = time.Now()

	query := `
		INSERT INTO batch_photo (id, batch_id, uploader_id, stage, photo_url, taken_at, created_at)
		VALUES (:id, :batch_id, :uploader_id, :stage, :photo_url, :taken_at, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, photo)
	if err != nil {
		return fmt.Errorf("failed to create batch photo: %w", err)
	}
	return nil
}

func (r *BatchPhotoRepository) ListByBatchID(ctx context.Context, batchID uuid.UUID) ([]models.BatchPhoto, error) {
	query := `
		SELECT id, batch_id, uploader_id, stage, photo_url, taken_at, created_at
		FROM batch_photo WHERE batch_id = $1 ORDER BY created_at`

	var photos []models.BatchPhoto
	if err := r.db.SelectContext(ctx, &photos, query, batchID); err != nil {
		return nil, fmt.Errorf("failed to list batch photos: %w", err)
	}
	return photos, nil
}

func (r *BatchPhotoRepository) ListByBatchIDs(ctx context.Context, batchIDs []uuid.UUID) ([]models.BatchPhoto, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, batch_id, uploader_id, stage, photo_url, taken_at, created_at
		FROM batch_photo WHERE batch_id IN (?) ORDER BY created_at`, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build batch photo query: %w", err)
	}
	query = r.db.Rebind(query)

	var photos []models.BatchPhoto
	if err := r.db.SelectContext(ctx, &photos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list batch photos: %w", err)
	}
	return photos, nil
}
