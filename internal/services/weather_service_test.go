package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agritrace-backend/internal/config"
)

func newTestWeatherService(weatherURL, airURL string) *WeatherService {
	svc := NewWeatherService(config.WeatherConfig{APIKey: "test-key"})
	svc.weatherBaseURL = weatherURL
	svc.airBaseURL = airURL
	return svc
}

func TestFetchCurrentParsesAndConvertsUnits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`{"current":{"temp":31.2,"humidity":74,"uvi":8.1,"wind_speed":5.0,"rain":{"1h":1.5}}}`))
	}))
	defer server.Close()

	svc := newTestWeatherService(server.URL, server.URL)

	snapshot, err := svc.FetchCurrent(10.78, 106.70)
	require.NoError(t, err)

	assert.Equal(t, 31.2, snapshot.TemperatureC)
	assert.Equal(t, 74.0, snapshot.HumidityPercent)
	assert.Equal(t, 8.1, snapshot.UVIndex)
	assert.Equal(t, 1.5, snapshot.PrecipitationMm)
	assert.InDelta(t, 18.0, snapshot.WindSpeedKmh, 0.001) // 5 m/s -> 18 km/h
}

func TestFetchCurrentNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := newTestWeatherService(server.URL, server.URL)

	_, err := svc.FetchCurrent(10.78, 106.70)
	assert.Error(t, err)
}

func TestFetchCurrentWithoutAPIKey(t *testing.T) {
	svc := NewWeatherService(config.WeatherConfig{})

	_, err := svc.FetchCurrent(10.78, 106.70)
	assert.Error(t, err)
}

func TestFetchAirQuality(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[{"main":{"aqi":3}}]}`))
	}))
	defer server.Close()

	svc := newTestWeatherService(server.URL, server.URL)

	aqi, err := svc.FetchAirQuality(10.78, 106.70)
	require.NoError(t, err)
	assert.Equal(t, 3, aqi)
}

func TestFetchAirQualityEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[]}`))
	}))
	defer server.Close()

	svc := newTestWeatherService(server.URL, server.URL)

	_, err := svc.FetchAirQuality(10.78, 106.70)
	assert.Error(t, err)
}
