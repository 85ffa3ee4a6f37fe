package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agritrace-backend/internal/ai/gemini"
	"agritrace-backend/internal/authz"
	"agritrace-backend/internal/models"
	"agritrace-backend/internal/repository"
)

// AnalysisService renders the batch journey into the degradation
// prompt, calls Gemini with key failover, and upserts the parsed
// verdict. Re-running analysis overwrites the previous row.
type AnalysisService struct {
	batchRepo     *repository.BatchRepository
	transportRepo *repository.TransportLogRepository
	receiptRepo   *repository.VendorReceiptRepository
	envRepo       *repository.EnvironmentalDataRepository
	analysisRepo  *repository.AIAnalysisRepository
	selector      *gemini.GeminiClientSelector
}

func NewAnalysisService(
	batchRepo *repository.BatchRepository,
	transportRepo *repository.TransportLogRepository,
	receiptRepo *repository.VendorReceiptRepository,
	envRepo *repository.EnvironmentalDataRepository,
	analysisRepo *repository.AIAnalysisRepository,
	selector *gemini.GeminiClientSelector,
) *AnalysisService {
	return &AnalysisService{
		batchRepo:     batchRepo,
		transportRepo: transportRepo,
		receiptRepo:   receiptRepo,
		envRepo:       envRepo,
		analysisRepo:  analysisRepo,
		selector:      selector,
	}
}

// AnalyzeBatch runs the degradation analysis for a received batch and
// advances it to analyzed. Quota (429) and billing (402) failures from
// the provider pass through as UpstreamError so the client sees the
// real status.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, caller authz.Caller, batchID uuid.UUID) (*models.AIAnalysis, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	bctx := authz.BatchContext{FarmerID: batch.FarmerID, Status: batch.Status}
	transportLog, err := s.transportRepo.GetByBatchID(ctx, batchID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if transportLog != nil {
		bctx.TransporterID = &transportLog.TransporterID
	}
	receipt, err := s.receiptRepo.GetByBatchID(ctx, batchID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if receipt != nil {
		bctx.VendorID = &receipt.VendorID
	}

	if !authz.Evaluate(authz.TableAIAnalysis, authz.OpInsert, caller, bctx) {
		return nil, fmt.Errorf("caller is not a participant of batch %s: %w", batchID, models.ErrForbidden)
	}
	if batch.Status != models.BatchReceived && batch.Status != models.BatchAnalyzed {
		return nil, fmt.Errorf("batch must be received before analysis, is %s: %w", batch.Status, models.ErrInvalidTransition)
	}

	readings, err := s.envRepo.ListByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	journeyJSON, err := buildJourneyData(batch, transportLog, receipt, readings)
	if err != nil {
		return nil, fmt.Errorf("failed to render journey data: %w", err)
	}

	prompt := fmt.Sprintf(gemini.DegradationAnalysisPromptTemplate, journeyJSON)

	raw, err := gemini.SendAIWithRetry(ctx, prompt, s.selector)
	if err != nil {
		if status := gemini.UpstreamStatus(err); status == 429 || status == 402 {
			return nil, &models.UpstreamError{StatusCode: status, Message: err.Error()}
		}
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	analysis := parseAnalysisPayload(batchID, raw)

	if err := s.analysisRepo.Upsert(ctx, analysis); err != nil {
		return nil, err
	}

	if batch.Status == models.BatchReceived {
		if err := s.batchRepo.UpdateStatus(ctx, batchID, models.BatchReceived, models.BatchAnalyzed); err != nil {
			return nil, err
		}
	}

	slog.Info("Batch analysis completed",
		"batch_id", batchID,
		"degradation_point", analysis.DegradationPoint,
		"confidence", analysis.Confidence)

	return analysis, nil
}

// GetAnalysis returns the stored verdict for a batch participant.
func (s *AnalysisService) GetAnalysis(ctx context.Context, caller authz.Caller, batchID uuid.UUID) (*models.AIAnalysis, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	bctx := authz.BatchContext{FarmerID: batch.FarmerID, Status: batch.Status}
	if transportLog, err := s.transportRepo.GetByBatchID(ctx, batchID); err == nil {
		bctx.TransporterID = &transportLog.TransporterID
	}
	if receipt, err := s.receiptRepo.GetByBatchID(ctx, batchID); err == nil {
		bctx.VendorID = &receipt.VendorID
	}

	if !authz.Evaluate(authz.TableAIAnalysis, authz.OpSelect, caller, bctx) {
		return nil, fmt.Errorf("caller is not a participant of batch %s: %w", batchID, models.ErrForbidden)
	}

	return s.analysisRepo.GetByBatchID(ctx, batchID)
}

// buildJourneyData serializes the full batch journey into the JSON
// block embedded in the prompt.
func buildJourneyData(batch *models.Batch, transportLog *models.TransportLog, receipt *models.VendorReceipt, readings []models.EnvironmentalData) (string, error) {
	journey := map[string]any{
		"batch": map[string]any{
			"crop_type":     batch.CropType,
			"quantity_kg":   batch.QuantityKg,
			"harvest_time":  batch.HarvestTime.Format(time.RFC3339),
			"quality_grade": batch.QualityGrade,
			"notes":         batch.Notes,
		},
	}

	if transportLog != nil {
		journey["transport"] = map[string]any{
			"transport_type": transportLog.TransportType,
			"pickup_time":    transportLog.PickupTime,
			"drop_time":      transportLog.DropTime,
		}
	}

	if receipt != nil {
		journey["receipt"] = map[string]any{
			"received_at":         receipt.ReceivedAt,
			"quality_grade":       receipt.QualityGrade,
			"spoilage_percent":    receipt.SpoilagePercent,
			"weight_loss_percent": receipt.WeightLossPercent,
		}
	}

	stages := make([]map[string]any, 0, len(readings))
	for _, r := range readings {
		stages = append(stages, map[string]any{
			"stage":            r.Stage,
			"temperature_c":    r.TemperatureC,
			"humidity_percent": r.HumidityPercent,
			"aqi":              r.AQI,
			"uv_index":         r.UVIndex,
			"precipitation_mm": r.PrecipitationMm,
			"wind_speed_kmh":   r.WindSpeedKmh,
			"data_quality":     r.DataQuality,
			"recorded_at":      r.RecordedAt.Format(time.RFC3339),
		})
	}
	journey["environmental_readings"] = stages

	data, err := json.MarshalIndent(journey, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseAnalysisPayload extracts the fixed-shape fields from the model
// output. Missing or malformed fields degrade to a zero-confidence
// placeholder instead of failing the whole analysis.
func parseAnalysisPayload(batchID uuid.UUID, raw map[string]any) *models.AIAnalysis {
	analysis := &models.AIAnalysis{
		ID:                    uuid.New(),
		BatchID:               batchID,
		EnvironmentalImpact:   stringField(raw, "environmental_impact", "No environmental impact assessment returned."),
		Confidence:            floatField(raw, "confidence"),
		Summary:               stringField(raw, "summary", "The analysis response was incomplete; treat this result as inconclusive."),
		FarmerSuggestion:      "No suggestion returned.",
		TransporterSuggestion: "No suggestion returned.",
		VendorSuggestion:      "No suggestion returned.",
	}

	// A verdict without a usable stage carries no confidence, whatever
	// number the model reported.
	degradationPoint, ok := raw["degradation_point"].(string)
	if !ok || !models.JourneyStage(degradationPoint).Valid() {
		degradationPoint = string(models.StageTransit)
		analysis.Confidence = 0
	}
	analysis.DegradationPoint = degradationPoint

	if suggestions, ok := raw["suggestions"].(map[string]any); ok {
		analysis.FarmerSuggestion = stringField(suggestions, "farmer", analysis.FarmerSuggestion)
		analysis.TransporterSuggestion = stringField(suggestions, "transporter", analysis.TransporterSuggestion)
		analysis.VendorSuggestion = stringField(suggestions, "vendor", analysis.VendorSuggestion)
	}

	return analysis
}

func stringField(raw map[string]any, key, fallback string) string {
	if v, ok := raw[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func floatField(raw map[string]any, key string) float64 {
	v, ok := raw[key].(float64)
	if !ok || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
