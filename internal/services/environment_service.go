package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"agritrace-backend/internal/models"
	"agritrace-backend/internal/repository"
)

// EnvironmentService captures one environmental snapshot per journey
// stage. Weather failures degrade to fallback constants instead of
// failing the request; the AQI call is best-effort on top of that.
type EnvironmentService struct {
	weatherService IWeatherService
	envRepo        *repository.EnvironmentalDataRepository
}

func NewEnvironmentService(weatherService IWeatherService, envRepo *repository.EnvironmentalDataRepository) *EnvironmentService {
	return &EnvironmentService{
		weatherService: weatherService,
		envRepo:        envRepo,
	}
}

// BuildSnapshot assembles the reading for a coordinate without
// persisting it. The returned row always has every field populated.
func (s *EnvironmentService) BuildSnapshot(batchID uuid.UUID, stage models.JourneyStage, lat, lon float64) *models.EnvironmentalData {
	reading := &models.EnvironmentalData{
		BatchID:     batchID,
		Stage:       stage,
		Location:    models.NewGeoJSONPoint(lat, lon),
		DataQuality: models.DataQualityMeasured,
	}

	weather, err := s.weatherService.FetchCurrent(lat, lon)
	if err != nil {
		slog.Warn("Weather fetch failed, using fallback values",
			"batch_id", batchID, "stage", stage, "error", err)
		reading.TemperatureC = FallbackTemperatureC
		reading.HumidityPercent = FallbackHumidityPercent
		reading.AQI = FallbackAQI
		reading.UVIndex = FallbackUVIndex
		reading.PrecipitationMm = FallbackPrecipitationMm
		reading.WindSpeedKmh = FallbackWindSpeedKmh
		reading.DataQuality = models.DataQualityFallback
		return reading
	}

	reading.TemperatureC = weather.TemperatureC
	reading.HumidityPercent = weather.HumidityPercent
	reading.UVIndex = weather.UVIndex
	reading.PrecipitationMm = weather.PrecipitationMm
	reading.WindSpeedKmh = weather.WindSpeedKmh

	// AQI enrichment is secondary: its failure never degrades the row
	// below measured quality.
	aqi, err := s.weatherService.FetchAirQuality(lat, lon)
	if err != nil {
		slog.Warn("Air quality fetch failed, using fallback AQI",
			"batch_id", batchID, "stage", stage, "error", err)
		reading.AQI = FallbackAQI
	} else {
		reading.AQI = aqi
	}

	return reading
}

// Capture builds and persists the snapshot for a stage.
func (s *EnvironmentService) Capture(ctx context.Context, batchID uuid.UUID, stage models.JourneyStage, lat, lon float64) (*models.EnvironmentalData, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q: %w", stage, models.ErrInvalidInput)
	}

	reading := s.BuildSnapshot(batchID, stage, lat, lon)

	if err := s.envRepo.Create(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// CaptureBestEffort is the fire-and-forget variant used inside
// lifecycle transitions: any failure is logged and reported as a typed
// partial result, never as an error to the caller.
func (s *EnvironmentService) CaptureBestEffort(ctx context.Context, batchID uuid.UUID, stage models.JourneyStage, location *models.GeoJSONPoint) models.SnapshotResult {
	if location == nil {
		return models.SnapshotResult{Attempted: false}
	}

	reading := s.BuildSnapshot(batchID, stage, location.Lat(), location.Lon())

	if err := s.envRepo.Create(ctx, reading); err != nil {
		slog.Warn("Best-effort environmental capture failed",
			"batch_id", batchID, "stage", stage, "error", err)
		msg := err.Error()
		return models.SnapshotResult{Attempted: true, Stored: false, Error: &msg}
	}

	return models.SnapshotResult{
		Attempted: true,
		Stored:    true,
		Fallback:  reading.DataQuality == models.DataQualityFallback,
	}
}
