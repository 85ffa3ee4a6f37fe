package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace-backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestTransportLogCreateDuplicateClaimIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransportLogRepository(db)

	// Second transporter racing for the same batch hits the unique
	// index on batch_id.
	mock.ExpectExec("INSERT INTO transport_log").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "transport_log_batch_id_key"})

	err := repo.Create(context.Background(), &models.TransportLog{
		BatchID:       uuid.New(),
		TransporterID: uuid.New(),
	})

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransportLogCreateOtherErrorIsNotConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransportLogRepository(db)

	mock.ExpectExec("INSERT INTO transport_log").
		WillReturnError(fmt.Errorf("connection reset"))

	err := repo.Create(context.Background(), &models.TransportLog{
		BatchID:       uuid.New(),
		TransporterID: uuid.New(),
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
