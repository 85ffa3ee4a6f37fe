package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"agritrace-backend/internal/config"
)

// Fallback values stored when the weather provider is unavailable.
// They are deliberately plausible mid-range readings; rows built from
// them carry data_quality=fallback so the masking is visible.
const (
	FallbackTemperatureC    = 25.0
	FallbackHumidityPercent = 60.0
	FallbackAQI             = 50
	FallbackUVIndex         = 5.0
	FallbackPrecipitationMm = 0.0
	FallbackWindSpeedKmh    = 10.0
)

type WeatherSnapshot struct {
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPercent float64 `json:"humidity_percent"`
	UVIndex         float64 `json:"uv_index"`
	PrecipitationMm float64 `json:"precipitation_mm"`
	WindSpeedKmh    float64 `json:"wind_speed_kmh"`
}

type WeatherService struct {
	cfg            config.WeatherConfig
	httpClient     *http.Client
	weatherBaseURL string
	airBaseURL     string
}

type IWeatherService interface {
	FetchCurrent(lat, lon float64) (*WeatherSnapshot, error)
	FetchAirQuality(lat, lon float64) (int, error)
}

func NewWeatherService(cfg config.WeatherConfig) *WeatherService {
	return &WeatherService{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		weatherBaseURL: "https://api.openweathermap.org/data/3.0/onecall",
		airBaseURL:     "https://api.openweathermap.org/data/2.5/air_pollution",
	}
}

type oneCallResponse struct {
	Current struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		UVI      float64 `json:"uvi"`
		Wind     float64 `json:"wind_speed"`
		Rain     struct {
			OneHour float64 `json:"1h"`
		} `json:"rain"`
	} `json:"current"`
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

// FetchCurrent reads the current conditions at a coordinate. Units are
// metric; wind comes back in m/s and is converted to km/h.
func (w *WeatherService) FetchCurrent(lat, lon float64) (*WeatherSnapshot, error) {
	if w.cfg.APIKey == "" {
		log.Println("Weather API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	url := fmt.Sprintf("%s?lat=%f&lon=%f&units=metric&exclude=minutely,hourly,daily,alerts&appid=%s",
		w.weatherBaseURL, lat, lon, w.cfg.APIKey)

	body, err := w.get(url)
	if err != nil {
		return nil, err
	}

	var payload oneCallResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Println("Error unmarshaling weather JSON:", err)
		return nil, fmt.Errorf("failed to parse JSON")
	}

	return &WeatherSnapshot{
		TemperatureC:    payload.Current.Temp,
		HumidityPercent: payload.Current.Humidity,
		UVIndex:         payload.Current.UVI,
		PrecipitationMm: payload.Current.Rain.OneHour,
		WindSpeedKmh:    payload.Current.Wind * 3.6,
	}, nil
}

// FetchAirQuality returns the provider's AQI bucket for a coordinate.
func (w *WeatherService) FetchAirQuality(lat, lon float64) (int, error) {
	if w.cfg.APIKey == "" {
		return 0, fmt.Errorf("API key not configured")
	}

	url := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s", w.airBaseURL, lat, lon, w.cfg.APIKey)

	body, err := w.get(url)
	if err != nil {
		return 0, err
	}

	var payload airPollutionResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Println("Error unmarshaling air quality JSON:", err)
		return 0, fmt.Errorf("failed to parse JSON")
	}
	if len(payload.List) == 0 {
		return 0, fmt.Errorf("empty air quality response")
	}

	return payload.List[0].Main.AQI, nil
}

func (w *WeatherService) get(url string) ([]byte, error) {
	resp, err := w.httpClient.Get(url)
	if err != nil {
		log.Printf("Error fetching weather data: %v", err)
		return nil, fmt.Errorf("failed to call API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading response body: %v", err)
		return nil, fmt.Errorf("failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("API 3rd party returned non-200 status: %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("API 3rd party error")
	}

	return body, nil
}
