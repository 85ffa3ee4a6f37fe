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

type TransportLogRepository struct {
	db *sqlx.DB
}

func NewTransportLogRepository(db *sqlx.DB) *TransportLogRepository {
	return &TransportLogRepository{db: db}
}

const transportLogColumns = `
	id, batch_id, transporter_id, transport_type,
	pickup_time, ST_AsEWKB(pickup_location::geometry) AS pickup_location,
	drop_time, ST_AsEWKB(drop_location::geometry) AS drop_location,
	created_at, updated_at`

// Create inserts the claim row. The UNIQUE constraint on batch_id is
// the arbiter when two transporters race for the same batch: the
// loser gets ErrConflict.
func (r *TransportLogRepository) Create(ctx context.Context, logEntry *models.TransportLog) error {
	if logEntry.ID == uuid.Nil {
		logEntry.ID = uuid.New()
	}
	logEntry.CreatedAt = time.Now()
	logEntry.UpdatedAt = time.Now()

	query := `
		INSERT INTO transport_log (
			id, batch_id, transporter_id, transport_type,
			pickup_time, pickup_location, drop_time, drop_location,
			created_at, updated_at
		) VALUES (
			:id, :batch_id, :transporter_id, :transport_type,
			:pickup_time, ST_GeogFromText(:pickup_location), :drop_time, ST_GeogFromText(:drop_location),
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, logEntry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("batch %s already has a transport log: %w", logEntry.BatchID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create transport log: %w", err)
	}
	return nil
}

func (r *TransportLogRepository) GetByBatchID(ctx context.Context, batchID uuid.UUID) (*models.TransportLog, error) {
	var logEntry models.TransportLog
	query := `SELECT ` + transportLogColumns + ` FROM transport_log WHERE batch_id = $1`

	err := r.db.GetContext(ctx, &logEntry, query, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transport log for batch %s: %w", batchID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transport log: %w", err)
	}
	return &logEntry, nil
}

func (r *TransportLogRepository) ListByBatchIDs(ctx context.Context, batchIDs []uuid.UUID) ([]models.TransportLog, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+transportLogColumns+` FROM transport_log WHERE batch_id IN (?)`, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build transport log query: %w", err)
	}
	query = r.db.Rebind(query)

	var logs []models.TransportLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transport logs: %w", err)
	}
	return logs, nil
}

func (r *TransportLogRepository) RecordPickup(ctx context.Context, batchID uuid.UUID, pickupTime time.Time, location *models.GeoJSONPoint) error {
	query := `
		UPDATE transport_log
		SET pickup_time = $1, pickup_location = ST_GeogFromText($2), updated_at = NOW()
		WHERE batch_id = $3`

	locValue, err := location.Value()
	if err != nil {
		return fmt.Errorf("invalid pickup location: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, pickupTime, locValue, batchID)
	if err != nil {
		return fmt.Errorf("failed to record pickup: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("transport log for batch %s: %w", batchID, models.ErrNotFound)
	}
	return nil
}

func (r *TransportLogRepository) RecordDelivery(ctx context.Context, batchID uuid.UUID, dropTime time.Time, location *models.GeoJSONPoint) error {
	query := `
		UPDATE transport_log
		SET drop_time = $1, drop_location = ST_GeogFromText($2), updated_at = NOW()
		WHERE batch_id = $3`

	locValue, err := location.Value()
	if err != nil {
		return fmt.Errorf("invalid drop location: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, dropTime, locValue, batchID)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("transport log for batch %s: %w", batchID, models.ErrNotFound)
	}
	return nil
}
