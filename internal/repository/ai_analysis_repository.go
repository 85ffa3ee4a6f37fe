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

type AIAnalysisRepository struct {
	db *sqlx.DB
}

func NewAIAnalysisRepository(db *sqlx.DB) *AIAnalysisRepository {
	return &AIAnalysisRepository{db: db}
}

// Upsert writes the analysis keyed by batch_id: re-running analysis
// for a batch overwrites the previous row instead of duplicating it.
func (r *AIAnalysisRepository) Upsert(ctx context.Context, analysis *models.AIAnalysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	analysis.CreatedAt = time.Now()
	analysis.UpdatedAt = time.Now()

	query := `
		INSERT INTO ai_analysis (
			id, batch_id, degradation_point, environmental_impact, confidence,
			farmer_suggestion, transporter_suggestion, vendor_suggestion, summary,
			created_at, updated_at
		) VALUES (
			:id, :batch_id, :degradation_point, :environmental_impact, :confidence,
			:farmer_suggestion, :transporter_suggestion, :vendor_suggestion, :summary,
			:created_at, :updated_at
		)
		ON CONFLICT (batch_id) DO UPDATE SET
			degradation_point = EXCLUDED.degradation_point,
			environmental_impact = EXCLUDED.environmental_impact,
			confidence = EXCLUDED.confidence,
			farmer_suggestion = EXCLUDED.farmer_suggestion,
			transporter_suggestion = EXCLUDED.transporter_suggestion,
			vendor_suggestion = EXCLUDED.vendor_suggestion,
			summary = EXCLUDED.summary,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, analysis)
	if err != nil {
		return fmt.Errorf("failed to upsert ai analysis: %w", err)
	}
	return nil
}

func (r *AIAnalysisRepository) GetByBatchID(ctx context.Context, batchID uuid.UUID) (*models.AIAnalysis, error) {
	var analysis models.AIAnalysis
	query := `
		SELECT id, batch_id, degradation_point, environmental_impact, confidence,
		       farmer_suggestion, transporter_suggestion, vendor_suggestion, summary,
		       created_at, updated_at
		FROM ai_analysis WHERE batch_id = $1`

	err := r.db.GetContext(ctx, &analysis, query, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ai analysis for batch %s: %w", batchID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ai analysis: %w", err)
	}
	return &analysis, nil
}

func (r *AIAnalysisRepository) ListByBatchIDs(ctx context.Context, batchIDs []uuid.UUID) ([]models.AIAnalysis, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, batch_id, degradation_point, environmental_impact, confidence,
		       farmer_suggestion, transporter_suggestion, vendor_suggestion, summary,
		       created_at, updated_at
		FROM ai_analysis WHERE batch_id IN (?)`, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build ai analysis query: %w", err)
	}
	query = r.db.Rebind(query)

	var analyses []models.AIAnalysis
	if err := r.db.SelectContext(ctx, &analyses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ai analyses: %w", err)
	}
	return analyses, nil
}
