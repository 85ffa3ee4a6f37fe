// Package authz reimplements the row-level access rules that the
// original deployment delegated to the database, as an explicit
// policy-evaluation function per (table, operation) pair. Services
// evaluate a policy before touching storage; the predicates never
// query the database themselves.
package authz

import (
	"github.com/google/uuid"

	"agritrace-backend/internal/models"
)

type Table string

const (
	TableBatch             Table = "batch"
	TableTransportLog      Table = "transport_log"
	TableVendorReceipt     Table = "vendor_receipt"
	TableEnvironmentalData Table = "environmental_data"
	TableAIAnalysis        Table = "ai_analysis"
	TableBatchPhoto        Table = "batch_photo"
)

type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
)

// Caller is the resolved identity evaluating a policy.
type Caller struct {
	UserID uuid.UUID
	Role   models.UserRole
}

// BatchContext carries the row-level facts a predicate needs about the
// batch a record belongs to. TransporterID/VendorID are nil until a
// transport log / vendor receipt exists.
type BatchContext struct {
	FarmerID      uuid.UUID
	TransporterID *uuid.UUID
	VendorID      *uuid.UUID
	Status        models.BatchStatus
}

// IsParticipant reports whether the caller is the farmer, the assigned
// transporter, or the assigned vendor of the batch.
func (b BatchContext) IsParticipant(c Caller) bool {
	if b.FarmerID == c.UserID {
		return true
	}
	if b.TransporterID != nil && *b.TransporterID == c.UserID {
		return true
	}
	if b.VendorID != nil && *b.VendorID == c.UserID {
		return true
	}
	return false
}

// Evaluate applies the per-table, per-operation predicate for the
// caller against the given batch context.
func Evaluate(table Table, op Operation, c Caller, b BatchContext) bool {
	switch table {
	case TableBatch:
		return evaluateBatch(op, c, b)
	case TableTransportLog:
		return evaluateTransportLog(op, c, b)
	case TableVendorReceipt:
		return evaluateVendorReceipt(op, c, b)
	case TableEnvironmentalData:
		return evaluateEnvironmentalData(op, c, b)
	case TableAIAnalysis:
		return evaluateAIAnalysis(op, c, b)
	case TableBatchPhoto:
		return evaluateBatchPhoto(op, c, b)
	}
	return false
}

func evaluateBatch(op Operation, c Caller, b BatchContext) bool {
	switch op {
	case OpSelect:
		// Participants always see their batch. Non-participants see it
		// only in the window where their role may claim it:
		// transporters browse created batches, vendors browse batches
		// in transit or delivered.
		if b.IsParticipant(c) {
			return true
		}
		switch c.Role {
		case models.RoleTransporter:
			return b.Status == models.BatchCreated
		case models.RoleVendor:
			return b.Status == models.BatchInTransit || b.Status == models.BatchDelivered
		}
		return false
	case OpInsert:
		return c.Role == models.RoleFarmer && b.FarmerID == c.UserID
	case OpUpdate:
		// Status advances are driven by the assigned transporter or
		// vendor; the farmer owns no forward transition after creation.
		if c.Role == models.RoleTransporter {
			if b.TransporterID != nil {
				return *b.TransporterID == c.UserID
			}
			return b.Status == models.BatchCreated
		}
		if c.Role == models.RoleVendor {
			if b.VendorID != nil {
				return *b.VendorID == c.UserID
			}
			return b.Status == models.BatchInTransit || b.Status == models.BatchDelivered
		}
		return false
	}
	return false
}

func evaluateTransportLog(op Operation, c Caller, b BatchContext) bool {
	switch op {
	case OpSelect:
		return b.IsParticipant(c)
	case OpInsert:
		// Any transporter may claim an unclaimed, newly created batch.
		return c.Role == models.RoleTransporter &&
			b.TransporterID == nil &&
			b.Status == models.BatchCreated
	case OpUpdate:
		return c.Role == models.RoleTransporter &&
			b.TransporterID != nil && *b.TransporterID == c.UserID
	}
	return false
}

func evaluateVendorReceipt(op Operation, c Caller, b BatchContext) bool {
	switch op {
	case OpSelect:
		return b.IsParticipant(c)
	case OpInsert:
		return c.Role == models.RoleVendor &&
			b.VendorID == nil &&
			b.Status == models.BatchDelivered
	case OpUpdate:
		return c.Role == models.RoleVendor &&
			b.VendorID != nil && *b.VendorID == c.UserID
	}
	return false
}

func evaluateEnvironmentalData(op Operation, c Caller, b BatchContext) bool {
	switch op {
	case OpSelect:
		return b.IsParticipant(c)
	case OpInsert:
		// Appended by whichever participant drives the current stage.
		return b.IsParticipant(c)
	case OpUpdate:
		// Readings are append-only.
		return false
	}
	return false
}

func evaluateAIAnalysis(op Operation, c Caller, b BatchContext) bool {
	switch op {
	case OpSelect:
		return b.IsParticipant(c)
	case OpInsert, OpUpdate:
		// The analysis upsert is triggered by the vendor confirming
		// receipt, or re-run by any participant.
		return b.IsParticipant(c)
	}
	return false
}

func evaluateBatchPhoto(op Operation, c Caller, b BatchContext) bool {
	switch op {
	case OpSelect, OpInsert:
		return b.IsParticipant(c)
	case OpUpdate:
		return false
	}
	return false
}
