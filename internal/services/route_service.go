package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"agritrace-backend/internal/config"
	"agritrace-backend/internal/models"
)

// RouteService calls the OpenRouteService directions API and converts
// the result into display units (km, minutes). Nothing is persisted.
type RouteService struct {
	cfg        config.RoutingConfig
	httpClient *http.Client
	baseURL    string
}

func NewRouteService(cfg config.RoutingConfig) *RouteService {
	return &RouteService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.openrouteservice.org/v2/directions/driving-car",
	}
}

type orsDirectionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // metres
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
		Geometry string `json:"geometry"` // encoded polyline
	} `json:"routes"`
}

// Calculate returns the route between two coordinates. Identical (or
// near-identical) origin and destination short-circuit to a degenerate
// zero-distance result without calling the provider.
func (s *RouteService) Calculate(req models.RouteRequest) (*models.RouteResponse, error) {
	if sameCoordinate(req.OriginLat, req.OriginLon, req.DestinationLat, req.DestinationLon) {
		return &models.RouteResponse{Geometry: "", DistanceKm: 0, DurationMin: 0}, nil
	}

	if s.cfg.APIKey == "" {
		log.Println("Routing API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	payload := map[string]any{
		"coordinates": [][]float64{
			{req.OriginLon, req.OriginLat},
			{req.DestinationLon, req.DestinationLat},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal route request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build route request: %w", err)
	}
	httpReq.Header.Set("Authorization", s.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("Error calling routing API: %v", err)
		return nil, fmt.Errorf("failed to call API")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Routing API returned non-200 status: %d, body: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("API 3rd party error")
	}

	var directions orsDirectionsResponse
	if err := json.Unmarshal(respBody, &directions); err != nil {
		return nil, fmt.Errorf("failed to parse JSON")
	}

	if len(directions.Routes) == 0 {
		return nil, fmt.Errorf("no route found: %w", models.ErrNotFound)
	}

	route := directions.Routes[0]
	return &models.RouteResponse{
		Geometry:    route.Geometry,
		DistanceKm:  route.Summary.Distance / 1000.0,
		DurationMin: route.Summary.Duration / 60.0,
	}, nil
}

func sameCoordinate(lat1, lon1, lat2, lon2 float64) bool {
	const epsilon = 1e-9
	return math.Abs(lat1-lat2) < epsilon && math.Abs(lon1-lon2) < epsilon
}
