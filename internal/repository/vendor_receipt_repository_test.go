package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"agritrace-backend/internal/models"
)

func TestVendorReceiptCreateDuplicateClaimIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVendorReceiptRepository(db)

	mock.ExpectExec("INSERT INTO vendor_receipt").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "vendor_receipt_batch_id_key"})

	err := repo.Create(context.Background(), &models.VendorReceipt{
		BatchID:  uuid.New(),
		VendorID: uuid.New(),
	})

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
