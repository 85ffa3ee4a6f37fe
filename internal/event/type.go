package event

import (
	"time"

	"github.com/google/uuid"

	"agritrace-backend/internal/models"
)

const BatchStatusQueue = "batch_status_events"

// BatchStatusEvent is published on every successful lifecycle
// transition for downstream notification consumers.
type BatchStatusEvent struct {
	BatchID    uuid.UUID          `json:"batch_id"`
	FromStatus models.BatchStatus `json:"from_status"`
	ToStatus   models.BatchStatus `json:"to_status"`
	ActorID    uuid.UUID          `json:"actor_id"`
	ActorRole  models.UserRole    `json:"actor_role"`
	OccurredAt time.Time          `json:"occurred_at"`
}
