package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace-backend/internal/models"
)

func TestParseAnalysisPayloadComplete(t *testing.T) {
	batchID := uuid.New()
	raw := map[string]any{
		"degradation_point":    "transit",
		"environmental_impact": "High humidity during transit accelerated spoilage.",
		"confidence":           0.82,
		"suggestions": map[string]any{
			"farmer":      "Harvest earlier in the morning.",
			"transporter": "Use refrigerated transport.",
			"vendor":      "Inspect within two hours of delivery.",
		},
		"summary": "Most degradation occurred in transit.",
	}

	analysis := parseAnalysisPayload(batchID, raw)

	assert.Equal(t, batchID, analysis.BatchID)
	assert.Equal(t, "transit", analysis.DegradationPoint)
	assert.Equal(t, 0.82, analysis.Confidence)
	assert.Equal(t, "Harvest earlier in the morning.", analysis.FarmerSuggestion)
	assert.Equal(t, "Use refrigerated transport.", analysis.TransporterSuggestion)
	assert.Equal(t, "Inspect within two hours of delivery.", analysis.VendorSuggestion)
	assert.Equal(t, "Most degradation occurred in transit.", analysis.Summary)
}

func TestParseAnalysisPayloadMissingFields(t *testing.T) {
	analysis := parseAnalysisPayload(uuid.New(), map[string]any{})

	assert.True(t, models.JourneyStage(analysis.DegradationPoint).Valid())
	assert.Equal(t, 0.0, analysis.Confidence)
	assert.NotEmpty(t, analysis.Summary)
	assert.NotEmpty(t, analysis.FarmerSuggestion)
	assert.NotEmpty(t, analysis.TransporterSuggestion)
	assert.NotEmpty(t, analysis.VendorSuggestion)
}

func TestParseAnalysisPayloadMissingStageZeroesConfidence(t *testing.T) {
	analysis := parseAnalysisPayload(uuid.New(), map[string]any{
		"confidence": 0.9,
		"summary":    "looks fine",
	})

	// The stage was fabricated, so the reported confidence must not
	// survive alongside it.
	assert.True(t, models.JourneyStage(analysis.DegradationPoint).Valid())
	assert.Equal(t, 0.0, analysis.Confidence)
}

func TestParseAnalysisPayloadInvalidStage(t *testing.T) {
	analysis := parseAnalysisPayload(uuid.New(), map[string]any{
		"degradation_point": "warehouse",
		"confidence":        0.9,
	})

	// Stage falls back and the confidence is zeroed with it.
	assert.True(t, models.JourneyStage(analysis.DegradationPoint).Valid())
	assert.Equal(t, 0.0, analysis.Confidence)
}

func TestParseAnalysisPayloadClampsConfidence(t *testing.T) {
	analysis := parseAnalysisPayload(uuid.New(), map[string]any{
		"degradation_point": "pickup",
		"confidence":        3.7,
	})
	assert.Equal(t, 1.0, analysis.Confidence)

	analysis = parseAnalysisPayload(uuid.New(), map[string]any{
		"degradation_point": "pickup",
		"confidence":        -0.5,
	})
	assert.Equal(t, 0.0, analysis.Confidence)
}

func TestBuildJourneyData(t *testing.T) {
	now := time.Now()
	batch := &models.Batch{
		CropType:    "mango",
		QuantityKg:  120,
		HarvestTime: now,
	}
	pickupTime := now.Add(2 * time.Hour)
	transportLog := &models.TransportLog{PickupTime: &pickupTime}
	spoilage := 12.5
	receipt := &models.VendorReceipt{SpoilagePercent: &spoilage}
	readings := []models.EnvironmentalData{
		{Stage: models.StageHarvest, TemperatureC: 31, AQI: 2, DataQuality: models.DataQualityMeasured, RecordedAt: now},
		{Stage: models.StageReceipt, TemperatureC: 26, AQI: 50, DataQuality: models.DataQualityFallback, RecordedAt: now},
	}

	rendered, err := buildJourneyData(batch, transportLog, receipt, readings)
	require.NoError(t, err)

	var journey map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &journey))

	batchData := journey["batch"].(map[string]any)
	assert.Equal(t, "mango", batchData["crop_type"])

	stages := journey["environmental_readings"].([]any)
	require.Len(t, stages, 2)
	first := stages[0].(map[string]any)
	assert.Equal(t, "harvest", first["stage"])
	assert.Equal(t, "measured", first["data_quality"])

	assert.Contains(t, journey, "transport")
	assert.Contains(t, journey, "receipt")
}

func TestBuildJourneyDataWithoutTransportOrReceipt(t *testing.T) {
	batch := &models.Batch{CropType: "rice", HarvestTime: time.Now()}

	rendered, err := buildJourneyData(batch, nil, nil, nil)
	require.NoError(t, err)

	var journey map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &journey))

	assert.NotContains(t, journey, "transport")
	assert.NotContains(t, journey, "receipt")
	assert.Empty(t, journey["environmental_readings"])
}
