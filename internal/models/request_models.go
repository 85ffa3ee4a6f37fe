package models

import "time"

type RegisterRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	FullName string   `json:"full_name" binding:"required"`
	Phone    *string  `json:"phone"`
	Role     UserRole `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

type CreateBatchRequest struct {
	CropType     string        `json:"crop_type" binding:"required"`
	QualityGrade *string       `json:"quality_grade"`
	QuantityKg   float64       `json:"quantity_kg" binding:"required,gt=0"`
	HarvestTime  time.Time     `json:"harvest_time" binding:"required"`
	Location     *GeoJSONPoint `json:"location"`
	Address      *string       `json:"address"`
	Notes        *string       `json:"notes"`
}

// CreateBatchResponse carries the typed partial-success result of the
// best-effort harvest snapshot alongside the created batch.
type CreateBatchResponse struct {
	Batch           Batch          `json:"batch"`
	HarvestSnapshot SnapshotResult `json:"harvest_snapshot"`
}

// SnapshotResult reports the outcome of a best-effort environmental
// capture without failing the primary operation.
type SnapshotResult struct {
	Attempted bool    `json:"attempted"`
	Stored    bool    `json:"stored"`
	Fallback  bool    `json:"fallback"`
	Error     *string `json:"error,omitempty"`
}

type ClaimTransportRequest struct {
	TransportType *string `json:"transport_type"`
}

type PickupRequest struct {
	Location   *GeoJSONPoint `json:"location" binding:"required"`
	PickupTime *time.Time    `json:"pickup_time"`
}

type DeliverRequest struct {
	Location *GeoJSONPoint `json:"location" binding:"required"`
	DropTime *time.Time    `json:"drop_time"`
}

type ConfirmReceiptRequest struct {
	QualityGrade      string        `json:"quality_grade" binding:"required"`
	SpoilagePercent   float64       `json:"spoilage_percent" binding:"gte=0,lte=100"`
	WeightLossPercent float64       `json:"weight_loss_percent" binding:"gte=0,lte=100"`
	Location          *GeoJSONPoint `json:"location"`
}

// Lat/Lon are pointers so 0.0 (equator, prime meridian) binds as a
// present value instead of a missing one.
type EnvironmentalFetchRequest struct {
	BatchID string       `json:"batch_id" binding:"required,uuid"`
	Stage   JourneyStage `json:"stage" binding:"required"`
	Lat     *float64     `json:"lat" binding:"required,gte=-90,lte=90"`
	Lon     *float64     `json:"lon" binding:"required,gte=-180,lte=180"`
}

type RouteRequest struct {
	OriginLat      float64 `json:"origin_lat"`
	OriginLon      float64 `json:"origin_lon"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLon float64 `json:"destination_lon"`
}

type RouteResponse struct {
	Geometry    string  `json:"geometry"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

type AttachPhotoRequest struct {
	Stage   JourneyStage `form:"stage" binding:"required"`
	TakenAt *time.Time   `form:"taken_at"`
}
