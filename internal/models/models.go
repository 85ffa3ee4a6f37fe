package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Profile struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Batch struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	FarmerID        uuid.UUID     `json:"farmer_id" db:"farmer_id"`
	CropType        string        `json:"crop_type" db:"crop_type"`
	QualityGrade    *string       `json:"quality_grade,omitempty" db:"quality_grade"`
	QuantityKg      float64       `json:"quantity_kg" db:"quantity_kg"`
	HarvestTime     time.Time     `json:"harvest_time" db:"harvest_time"`
	HarvestLocation *GeoJSONPoint `json:"harvest_location,omitempty" db:"harvest_location"`
	HarvestAddress  *string       `json:"harvest_address,omitempty" db:"harvest_address"`
	Notes           *string       `json:"notes,omitempty" db:"notes"`
	Status          BatchStatus   `json:"status" db:"status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

type TransportLog struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	BatchID        uuid.UUID     `json:"batch_id" db:"batch_id"`
	TransporterID  uuid.UUID     `json:"transporter_id" db:"transporter_id"`
	TransportType  *string       `json:"transport_type,omitempty" db:"transport_type"`
	PickupTime     *time.Time    `json:"pickup_time,omitempty" db:"pickup_time"`
	PickupLocation *GeoJSONPoint `json:"pickup_location,omitempty" db:"pickup_location"`
	DropTime       *time.Time    `json:"drop_time,omitempty" db:"drop_time"`
	DropLocation   *GeoJSONPoint `json:"drop_location,omitempty" db:"drop_location"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

type VendorReceipt struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	BatchID           uuid.UUID  `json:"batch_id" db:"batch_id"`
	VendorID          uuid.UUID  `json:"vendor_id" db:"vendor_id"`
	ReceivedAt        *time.Time `json:"received_at,omitempty" db:"received_at"`
	QualityGrade      *string    `json:"quality_grade,omitempty" db:"quality_grade"`
	SpoilagePercent   *float64   `json:"spoilage_percent,omitempty" db:"spoilage_percent"`
	WeightLossPercent *float64   `json:"weight_loss_percent,omitempty" db:"weight_loss_percent"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

type EnvironmentalData struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	BatchID         uuid.UUID     `json:"batch_id" db:"batch_id"`
	Stage           JourneyStage  `json:"stage" db:"stage"`
	Location        *GeoJSONPoint `json:"location,omitempty" db:"location"`
	TemperatureC    float64       `json:"temperature_c" db:"temperature_c"`
	HumidityPercent float64       `json:"humidity_percent" db:"humidity_percent"`
	AQI             int           `json:"aqi" db:"aqi"`
	UVIndex         float64       `json:"uv_index" db:"uv_index"`
	PrecipitationMm float64       `json:"precipitation_mm" db:"precipitation_mm"`
	WindSpeedKmh    float64       `json:"wind_speed_kmh" db:"wind_speed_kmh"`
	DataQuality     DataQuality   `json:"data_quality" db:"data_quality"`
	RecordedAt      time.Time     `json:"recorded_at" db:"recorded_at"`
}

type AIAnalysis struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	BatchID               uuid.UUID `json:"batch_id" db:"batch_id"`
	DegradationPoint      string    `json:"degradation_point" db:"degradation_point"`
	EnvironmentalImpact   string    `json:"environmental_impact" db:"environmental_impact"`
	Confidence            float64   `json:"confidence" db:"confidence"`
	FarmerSuggestion      string    `json:"farmer_suggestion" db:"farmer_suggestion"`
	TransporterSuggestion string    `json:"transporter_suggestion" db:"transporter_suggestion"`
	VendorSuggestion      string    `json:"vendor_suggestion" db:"vendor_suggestion"`
	Summary               string    `json:"summary" db:"summary"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

type BatchPhoto struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	BatchID    uuid.UUID    `json:"batch_id" db:"batch_id"`
	UploaderID uuid.UUID    `json:"uploader_id" db:"uploader_id"`
	Stage      JourneyStage `json:"stage" db:"stage"`
	PhotoURL   string       `json:"photo_url" db:"photo_url"`
	TakenAt    *time.Time   `json:"taken_at,omitempty" db:"taken_at"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

// BatchView is the denormalized per-batch aggregation returned to
// clients: the batch plus every linked record joined by batch_id.
type BatchView struct {
	Batch             Batch               `json:"batch"`
	TransportLog      *TransportLog       `json:"transport_log,omitempty"`
	VendorReceipt     *VendorReceipt      `json:"vendor_receipt,omitempty"`
	EnvironmentalData []EnvironmentalData `json:"environmental_data"`
	AIAnalysis        *AIAnalysis         `json:"ai_analysis,omitempty"`
	Photos            []BatchPhoto        `json:"photos,omitempty"`
}

type Claims struct {
	jwt.RegisteredClaims
	Id     string
	UserID string
	Email  string
	Role   UserRole
}
