package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"agritrace-backend/internal/models"
)

type stubWeatherService struct {
	snapshot   *WeatherSnapshot
	weatherErr error
	aqi        int
	aqiErr     error
}

func (s *stubWeatherService) FetchCurrent(lat, lon float64) (*WeatherSnapshot, error) {
	return s.snapshot, s.weatherErr
}

func (s *stubWeatherService) FetchAirQuality(lat, lon float64) (int, error) {
	return s.aqi, s.aqiErr
}

func TestBuildSnapshotMeasured(t *testing.T) {
	svc := NewEnvironmentService(&stubWeatherService{
		snapshot: &WeatherSnapshot{
			TemperatureC:    29.5,
			HumidityPercent: 80,
			UVIndex:         7,
			PrecipitationMm: 0.2,
			WindSpeedKmh:    12,
		},
		aqi: 2,
	}, nil)

	reading := svc.BuildSnapshot(uuid.New(), models.StageHarvest, 10.78, 106.70)

	assert.Equal(t, models.DataQualityMeasured, reading.DataQuality)
	assert.Equal(t, 29.5, reading.TemperatureC)
	assert.Equal(t, 2, reading.AQI)
	assert.Equal(t, models.StageHarvest, reading.Stage)
	assert.Equal(t, 10.78, reading.Location.Lat())
	assert.Equal(t, 106.70, reading.Location.Lon())
}

func TestBuildSnapshotWeatherFailureUsesFallbacks(t *testing.T) {
	svc := NewEnvironmentService(&stubWeatherService{
		weatherErr: fmt.Errorf("provider down"),
	}, nil)

	reading := svc.BuildSnapshot(uuid.New(), models.StageTransit, 10.78, 106.70)

	assert.Equal(t, models.DataQualityFallback, reading.DataQuality)
	assert.Equal(t, FallbackTemperatureC, reading.TemperatureC)
	assert.Equal(t, FallbackHumidityPercent, reading.HumidityPercent)
	assert.Equal(t, FallbackAQI, reading.AQI)
	assert.Equal(t, FallbackUVIndex, reading.UVIndex)
	assert.Equal(t, FallbackPrecipitationMm, reading.PrecipitationMm)
	assert.Equal(t, FallbackWindSpeedKmh, reading.WindSpeedKmh)
}

func TestBuildSnapshotAQIFailureKeepsMeasuredQuality(t *testing.T) {
	svc := NewEnvironmentService(&stubWeatherService{
		snapshot: &WeatherSnapshot{TemperatureC: 22, HumidityPercent: 55},
		aqiErr:   fmt.Errorf("aqi endpoint down"),
	}, nil)

	reading := svc.BuildSnapshot(uuid.New(), models.StagePickup, 10.78, 106.70)

	// Only the AQI degrades; the row stays measured.
	assert.Equal(t, models.DataQualityMeasured, reading.DataQuality)
	assert.Equal(t, FallbackAQI, reading.AQI)
	assert.Equal(t, 22.0, reading.TemperatureC)
}

func TestCaptureRejectsUnknownStage(t *testing.T) {
	svc := NewEnvironmentService(&stubWeatherService{}, nil)

	_, err := svc.Capture(context.Background(), uuid.New(), "warehouse", 10.78, 106.70)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCaptureBestEffortWithoutLocation(t *testing.T) {
	svc := NewEnvironmentService(&stubWeatherService{}, nil)

	result := svc.CaptureBestEffort(context.Background(), uuid.New(), models.StageHarvest, nil)

	assert.False(t, result.Attempted)
	assert.False(t, result.Stored)
	assert.Nil(t, result.Error)
}
