package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace-backend/internal/models"
)

const upsertPattern = `(?s)INSERT INTO ai_analysis.*ON CONFLICT \(batch_id\) DO UPDATE`

func TestAIAnalysisUpsertIsIdempotentPerBatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAIAnalysisRepository(db)

	batchID := uuid.New()

	// Re-running analysis sends the same conflict-update statement, so
	// the second write overwrites rather than duplicating the row.
	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(0, 1))

	first := &models.AIAnalysis{BatchID: batchID, DegradationPoint: "transit", Confidence: 0.7}
	require.NoError(t, repo.Upsert(context.Background(), first))

	second := &models.AIAnalysis{BatchID: batchID, DegradationPoint: "delivery", Confidence: 0.9}
	require.NoError(t, repo.Upsert(context.Background(), second))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAIAnalysisUpsertAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAIAnalysisRepository(db)

	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(0, 1))

	analysis := &models.AIAnalysis{BatchID: uuid.New(), DegradationPoint: "pickup"}
	require.NoError(t, repo.Upsert(context.Background(), analysis))

	assert.NotEqual(t, uuid.Nil, analysis.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
