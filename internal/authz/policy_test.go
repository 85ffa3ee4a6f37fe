package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"agritrace-backend/internal/models"
)

func farmer() Caller      { return Caller{UserID: uuid.New(), Role: models.RoleFarmer} }
func transporter() Caller { return Caller{UserID: uuid.New(), Role: models.RoleTransporter} }
func vendor() Caller      { return Caller{UserID: uuid.New(), Role: models.RoleVendor} }

func TestBatchInsert_OnlyOwningFarmer(t *testing.T) {
	f := farmer()

	ownCtx := BatchContext{FarmerID: f.UserID, Status: models.BatchCreated}
	assert.True(t, Evaluate(TableBatch, OpInsert, f, ownCtx))

	otherCtx := BatchContext{FarmerID: uuid.New(), Status: models.BatchCreated}
	assert.False(t, Evaluate(TableBatch, OpInsert, f, otherCtx),
		"farmer must not insert a batch owned by someone else")

	tr := transporter()
	assert.False(t, Evaluate(TableBatch, OpInsert, tr, BatchContext{FarmerID: tr.UserID}),
		"non-farmer roles must not insert batches")
	v := vendor()
	assert.False(t, Evaluate(TableBatch, OpInsert, v, BatchContext{FarmerID: v.UserID}))
}

func TestBatchSelect_ClaimWindows(t *testing.T) {
	tr := transporter()
	v := vendor()
	ctx := BatchContext{FarmerID: uuid.New()}

	visibleToTransporter := map[models.BatchStatus]bool{
		models.BatchCreated:             true,
		models.BatchAssignedTransporter: false,
		models.BatchPickedUp:            false,
		models.BatchInTransit:           false,
		models.BatchDelivered:           false,
		models.BatchReceived:            false,
		models.BatchAnalyzed:            false,
	}
	visibleToVendor := map[models.BatchStatus]bool{
		models.BatchCreated:             false,
		models.BatchAssignedTransporter: false,
		models.BatchPickedUp:            false,
		models.BatchInTransit:           true,
		models.BatchDelivered:           true,
		models.BatchReceived:            false,
		models.BatchAnalyzed:            false,
	}

	for status, want := range visibleToTransporter {
		ctx.Status = status
		assert.Equal(t, want, Evaluate(TableBatch, OpSelect, tr, ctx),
			"transporter visibility for status %s", status)
	}
	for status, want := range visibleToVendor {
		ctx.Status = status
		assert.Equal(t, want, Evaluate(TableBatch, OpSelect, v, ctx),
			"vendor visibility for status %s", status)
	}
}

func TestBatchSelect_ParticipantsAlwaysSee(t *testing.T) {
	f := farmer()
	tr := transporter()
	v := vendor()

	ctx := BatchContext{
		FarmerID:      f.UserID,
		TransporterID: &tr.UserID,
		VendorID:      &v.UserID,
		Status:        models.BatchAnalyzed,
	}

	assert.True(t, Evaluate(TableBatch, OpSelect, f, ctx))
	assert.True(t, Evaluate(TableBatch, OpSelect, tr, ctx))
	assert.True(t, Evaluate(TableBatch, OpSelect, v, ctx))

	stranger := vendor()
	assert.False(t, Evaluate(TableBatch, OpSelect, stranger, ctx))
}

func TestTransportLogInsert_UnclaimedCreatedOnly(t *testing.T) {
	tr := transporter()

	open := BatchContext{FarmerID: uuid.New(), Status: models.BatchCreated}
	assert.True(t, Evaluate(TableTransportLog, OpInsert, tr, open))

	other := uuid.New()
	claimed := BatchContext{FarmerID: uuid.New(), TransporterID: &other, Status: models.BatchAssignedTransporter}
	assert.False(t, Evaluate(TableTransportLog, OpInsert, tr, claimed),
		"claimed batch must not accept a second transport log")

	delivered := BatchContext{FarmerID: uuid.New(), Status: models.BatchDelivered}
	assert.False(t, Evaluate(TableTransportLog, OpInsert, tr, delivered))

	assert.False(t, Evaluate(TableTransportLog, OpInsert, farmer(), open))
	assert.False(t, Evaluate(TableTransportLog, OpInsert, vendor(), open))
}

func TestTransportLogUpdate_AssignedTransporterOnly(t *testing.T) {
	tr := transporter()
	ctx := BatchContext{FarmerID: uuid.New(), TransporterID: &tr.UserID, Status: models.BatchAssignedTransporter}

	assert.True(t, Evaluate(TableTransportLog, OpUpdate, tr, ctx))

	otherTr := transporter()
	assert.False(t, Evaluate(TableTransportLog, OpUpdate, otherTr, ctx))
}

func TestVendorReceiptInsert_DeliveredUnclaimedOnly(t *testing.T) {
	v := vendor()

	delivered := BatchContext{FarmerID: uuid.New(), Status: models.BatchDelivered}
	assert.True(t, Evaluate(TableVendorReceipt, OpInsert, v, delivered))

	inTransit := BatchContext{FarmerID: uuid.New(), Status: models.BatchInTransit}
	assert.False(t, Evaluate(TableVendorReceipt, OpInsert, v, inTransit),
		"vendors browse in_transit batches but claim only delivered ones")

	other := uuid.New()
	claimed := BatchContext{FarmerID: uuid.New(), VendorID: &other, Status: models.BatchDelivered}
	assert.False(t, Evaluate(TableVendorReceipt, OpInsert, v, claimed))

	assert.False(t, Evaluate(TableVendorReceipt, OpInsert, transporter(), delivered))
}

func TestEnvironmentalData_AppendOnly(t *testing.T) {
	f := farmer()
	ctx := BatchContext{FarmerID: f.UserID, Status: models.BatchCreated}

	assert.True(t, Evaluate(TableEnvironmentalData, OpInsert, f, ctx))
	assert.True(t, Evaluate(TableEnvironmentalData, OpSelect, f, ctx))
	assert.False(t, Evaluate(TableEnvironmentalData, OpUpdate, f, ctx),
		"environmental readings are never updated")

	stranger := transporter()
	assert.False(t, Evaluate(TableEnvironmentalData, OpInsert, stranger, ctx))
}

func TestAIAnalysis_ParticipantOnly(t *testing.T) {
	v := vendor()
	ctx := BatchContext{FarmerID: uuid.New(), VendorID: &v.UserID, Status: models.BatchReceived}

	assert.True(t, Evaluate(TableAIAnalysis, OpInsert, v, ctx))
	assert.True(t, Evaluate(TableAIAnalysis, OpUpdate, v, ctx))

	stranger := vendor()
	assert.False(t, Evaluate(TableAIAnalysis, OpInsert, stranger, ctx))
	assert.False(t, Evaluate(TableAIAnalysis, OpSelect, stranger, ctx))
}

func TestUnknownTableDenied(t *testing.T) {
	assert.False(t, Evaluate(Table("profile"), OpSelect, farmer(), BatchContext{}))
}
