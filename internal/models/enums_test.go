package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchStatusOrder(t *testing.T) {
	ordered := []BatchStatus{
		BatchCreated,
		BatchAssignedTransporter,
		BatchPickedUp,
		BatchInTransit,
		BatchDelivered,
		BatchReceived,
		BatchAnalyzed,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s must rank above %s", ordered[i], ordered[i-1])
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    BatchStatus
		to      BatchStatus
		allowed bool
	}{
		{BatchCreated, BatchAssignedTransporter, true},
		{BatchAssignedTransporter, BatchPickedUp, true},
		{BatchPickedUp, BatchInTransit, true},
		{BatchInTransit, BatchDelivered, true},
		{BatchDelivered, BatchReceived, true},
		{BatchReceived, BatchAnalyzed, true},

		// in_transit is skippable
		{BatchPickedUp, BatchDelivered, true},

		// no skipping elsewhere, no going back
		{BatchCreated, BatchPickedUp, false},
		{BatchAssignedTransporter, BatchInTransit, false},
		{BatchDelivered, BatchAnalyzed, false},
		{BatchDelivered, BatchPickedUp, false},
		{BatchAnalyzed, BatchCreated, false},
		{BatchInTransit, BatchInTransit, false},

		// unknown statuses never transition
		{"bogus", BatchCreated, false},
		{BatchCreated, "bogus", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestJourneyStageRank(t *testing.T) {
	assert.Less(t, StageHarvest.Rank(), StagePickup.Rank())
	assert.Less(t, StagePickup.Rank(), StageTransit.Rank())
	assert.Less(t, StageTransit.Rank(), StageDelivery.Rank())
	assert.Less(t, StageDelivery.Rank(), StageReceipt.Rank())
	assert.Equal(t, -1, JourneyStage("warehouse").Rank())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, RoleFarmer.Valid())
	assert.True(t, RoleTransporter.Valid())
	assert.True(t, RoleVendor.Valid())
	assert.False(t, UserRole("admin").Valid())

	assert.True(t, StageHarvest.Valid())
	assert.False(t, JourneyStage("").Valid())

	assert.True(t, BatchCreated.Valid())
	assert.False(t, BatchStatus("shipped").Valid())
}
