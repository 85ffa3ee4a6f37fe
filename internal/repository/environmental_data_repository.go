package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"agritrace-backend/internal/models"
)

type EnvironmentalDataRepository struct {
	db *sqlx.DB
}

func NewEnvironmentalDataRepository(db *sqlx.DB) *EnvironmentalDataRepository {
	return &EnvironmentalDataRepository{db: db}
}

const environmentalDataColumns = `
	id, batch_id, stage, ST_AsEWKB(location::geometry) AS location,
	temperature_c, humidity_percent, aqi, uv_index,
	precipitation_mm, wind_speed_kmh, data_quality, recorded_at`

// Create appends one snapshot. Rows are never updated; one row per
// (batch, stage) is enforced by the unique constraint.
func (r *EnvironmentalDataRepository) Create(ctx context.Context, reading *models.EnvironmentalData) error {
	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now()
	}

	query := `
		INSERT INTO environmental_data (
			id, batch_id, stage, location, temperature_c, humidity_percent,
			aqi, uv_index, precipitation_mm, wind_speed_kmh, data_quality, recorded_at
		) VALUES (
			:id, :batch_id, :stage, ST_GeogFromText(:location), :temperature_c, :humidity_percent,
			:aqi, :uv_index, :precipitation_mm, :wind_speed_kmh, :data_quality, :recorded_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, reading)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("batch %s already has a %s reading: %w", reading.BatchID, reading.Stage, models.ErrConflict)
		}
		return fmt.Errorf("failed to create environmental reading: %w", err)
	}
	return nil
}

// ListByBatchID returns the readings in journey order (harvest first).
func (r *EnvironmentalDataRepository) ListByBatchID(ctx context.Context, batchID uuid.UUID) ([]models.EnvironmentalData, error) {
	query := `
		SELECT ` + environmentalDataColumns + `
		FROM environmental_data
		WHERE batch_id = $1
		ORDER BY array_position(ARRAY['harvest','pickup','transit','delivery','receipt']::journey_stage[], stage)`

	var readings []models.EnvironmentalData
	if err := r.db.SelectContext(ctx, &readings, query, batchID); err != nil {
		return nil, fmt.Errorf("failed to list environmental readings: %w", err)
	}
	return readings, nil
}

func (r *EnvironmentalDataRepository) ListByBatchIDs(ctx context.Context, batchIDs []uuid.UUID) ([]models.EnvironmentalData, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+environmentalDataColumns+` FROM environmental_data WHERE batch_id IN (?) ORDER BY recorded_at`, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build environmental query: %w", err)
	}
	query = r.db.Rebind(query)

	var readings []models.EnvironmentalData
	if err := r.db.SelectContext(ctx, &readings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list environmental readings: %w", err)
	}
	return readings, nil
}
