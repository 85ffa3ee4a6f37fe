package models

type UserRole string

const (
	RoleFarmer      UserRole = "farmer"
	RoleTransporter UserRole = "transporter"
	RoleVendor      UserRole = "vendor"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleFarmer, RoleTransporter, RoleVendor:
		return true
	}
	return false
}

type BatchStatus string

const (
	BatchCreated             BatchStatus = "created"
	BatchAssignedTransporter BatchStatus = "assigned_transporter"
	BatchPickedUp            BatchStatus = "picked_up"
	BatchInTransit           BatchStatus = "in_transit"
	BatchDelivered           BatchStatus = "delivered"
	BatchReceived            BatchStatus = "received"
	BatchAnalyzed            BatchStatus = "analyzed"
)

// statusOrder defines the total order of the batch lifecycle. A batch
// only ever moves to a strictly higher rank.
var statusOrder = map[BatchStatus]int{
	BatchCreated:             0,
	BatchAssignedTransporter: 1,
	BatchPickedUp:            2,
	BatchInTransit:           3,
	BatchDelivered:           4,
	BatchReceived:            5,
	BatchAnalyzed:            6,
}

func (s BatchStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

func (s BatchStatus) Rank() int {
	rank, ok := statusOrder[s]
	if !ok {
		return -1
	}
	return rank
}

// CanTransitionTo reports whether moving from s to target is a legal
// forward step. in_transit is optional: delivered is reachable from
// both picked_up and in_transit.
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[target]
	if !ok {
		return false
	}
	if to == from+1 {
		return true
	}
	return s == BatchPickedUp && target == BatchDelivered
}

type JourneyStage string

const (
	StageHarvest  JourneyStage = "harvest"
	StagePickup   JourneyStage = "pickup"
	StageTransit  JourneyStage = "transit"
	StageDelivery JourneyStage = "delivery"
	StageReceipt  JourneyStage = "receipt"
)

// stageOrder is the display/prompt ordering of environmental snapshots.
var stageOrder = map[JourneyStage]int{
	StageHarvest:  0,
	StagePickup:   1,
	StageTransit:  2,
	StageDelivery: 3,
	StageReceipt:  4,
}

func (s JourneyStage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

func (s JourneyStage) Rank() int {
	rank, ok := stageOrder[s]
	if !ok {
		return -1
	}
	return rank
}

type DataQuality string

const (
	DataQualityMeasured DataQuality = "measured"
	DataQualityFallback DataQuality = "fallback"
)
