package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace-backend/internal/models"
)

func TestAssembleBatchViews(t *testing.T) {
	batchA := models.Batch{ID: uuid.New(), CropType: "mango", Status: models.BatchReceived}
	batchB := models.Batch{ID: uuid.New(), CropType: "rice", Status: models.BatchCreated}

	transportLogs := []models.TransportLog{
		{ID: uuid.New(), BatchID: batchA.ID, TransporterID: uuid.New()},
	}
	receipts := []models.VendorReceipt{
		{ID: uuid.New(), BatchID: batchA.ID, VendorID: uuid.New()},
	}
	readings := []models.EnvironmentalData{
		{ID: uuid.New(), BatchID: batchA.ID, Stage: models.StageHarvest},
		{ID: uuid.New(), BatchID: batchA.ID, Stage: models.StagePickup},
	}
	analyses := []models.AIAnalysis{
		{ID: uuid.New(), BatchID: batchA.ID, DegradationPoint: "transit"},
	}
	photos := []models.BatchPhoto{
		{ID: uuid.New(), BatchID: batchA.ID, Stage: models.StageHarvest},
	}

	views := AssembleBatchViews(
		[]models.Batch{batchA, batchB},
		transportLogs, receipts, readings, analyses, photos,
	)
	require.Len(t, views, 2)

	full := views[0]
	assert.Equal(t, batchA.ID, full.Batch.ID)
	require.NotNil(t, full.TransportLog)
	assert.Equal(t, batchA.ID, full.TransportLog.BatchID)
	require.NotNil(t, full.VendorReceipt)
	require.NotNil(t, full.AIAnalysis)
	assert.Len(t, full.EnvironmentalData, 2)
	assert.Len(t, full.Photos, 1)

	bare := views[1]
	assert.Equal(t, batchB.ID, bare.Batch.ID)
	assert.Nil(t, bare.TransportLog)
	assert.Nil(t, bare.VendorReceipt)
	assert.Nil(t, bare.AIAnalysis)
	assert.NotNil(t, bare.EnvironmentalData)
	assert.Empty(t, bare.EnvironmentalData)
}

func TestAssembleBatchViewsEmpty(t *testing.T) {
	views := AssembleBatchViews(nil, nil, nil, nil, nil, nil)
	assert.Empty(t, views)
}
