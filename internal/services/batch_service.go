package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agritrace-backend/internal/authz"
	"agritrace-backend/internal/database/minio"
	"agritrace-backend/internal/event"
	"agritrace-backend/internal/models"
	"agritrace-backend/internal/repository"
)

// BatchService drives the batch lifecycle state machine. Every
// operation evaluates the row policy for the caller before touching
// storage, advances status with compare-and-set updates, and publishes
// a best-effort status event on success.
type BatchService struct {
	batchRepo       *repository.BatchRepository
	transportRepo   *repository.TransportLogRepository
	receiptRepo     *repository.VendorReceiptRepository
	envRepo         *repository.EnvironmentalDataRepository
	analysisRepo    *repository.AIAnalysisRepository
	photoRepo       *repository.BatchPhotoRepository
	envService      *EnvironmentService
	analysisService *AnalysisService
	publisher       *event.StatusPublisher
	minioClient     *minio.MinioClient
	minioBaseURL    string
}

func NewBatchService(
	batchRepo *repository.BatchRepository,
	transportRepo *repository.TransportLogRepository,
	receiptRepo *repository.VendorReceiptRepository,
	envRepo *repository.EnvironmentalDataRepository,
	analysisRepo *repository.AIAnalysisRepository,
	photoRepo *repository.BatchPhotoRepository,
	envService *EnvironmentService,
	analysisService *AnalysisService,
	publisher *event.StatusPublisher,
	minioClient *minio.MinioClient,
	minioBaseURL string,
) *BatchService {
	return &BatchService{
		batchRepo:       batchRepo,
		transportRepo:   transportRepo,
		receiptRepo:     receiptRepo,
		envRepo:         envRepo,
		analysisRepo:    analysisRepo,
		photoRepo:       photoRepo,
		envService:      envService,
		analysisService: analysisService,
		publisher:       publisher,
		minioClient:     minioClient,
		minioBaseURL:    minioBaseURL,
	}
}

// loadBatchContext loads the batch and its linked claim rows, and
// assembles the row-level facts the policy predicates evaluate.
func (s *BatchService) loadBatchContext(ctx context.Context, batchID uuid.UUID) (*models.Batch, *models.TransportLog, *models.VendorReceipt, authz.BatchContext, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, nil, nil, authz.BatchContext{}, err
	}

	bctx := authz.BatchContext{
		FarmerID: batch.FarmerID,
		Status:   batch.Status,
	}

	transportLog, err := s.transportRepo.GetByBatchID(ctx, batchID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, nil, nil, authz.BatchContext{}, err
	}
	if transportLog != nil {
		bctx.TransporterID = &transportLog.TransporterID
	}

	receipt, err := s.receiptRepo.GetByBatchID(ctx, batchID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, nil, nil, authz.BatchContext{}, err
	}
	if receipt != nil {
		bctx.VendorID = &receipt.VendorID
	}

	return batch, transportLog, receipt, bctx, nil
}

func (s *BatchService) publishTransition(batchID uuid.UUID, from, to models.BatchStatus, caller authz.Caller) {
	evt := event.BatchStatusEvent{
		BatchID:    batchID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    caller.UserID,
		ActorRole:  caller.Role,
		OccurredAt: time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishStatusChange(ctx, evt); err != nil {
		slog.Warn("Failed to publish status event", "batch_id", batchID, "to_status", to, "error", err)
	}
}

// CreateBatch inserts a new batch for the calling farmer. When a GPS
// location is supplied, a harvest-stage environmental snapshot is
// captured best-effort: its failure never fails batch creation.
func (s *BatchService) CreateBatch(ctx context.Context, caller authz.Caller, req models.CreateBatchRequest) (*models.CreateBatchResponse, error) {
	bctx := authz.BatchContext{FarmerID: caller.UserID, Status: models.BatchCreated}
	if !authz.Evaluate(authz.TableBatch, authz.OpInsert, caller, bctx) {
		return nil, fmt.Errorf("only farmers may create batches: %w", models.ErrForbidden)
	}

	batch := &models.Batch{
		ID:              uuid.New(),
		FarmerID:        caller.UserID,
		CropType:        req.CropType,
		QualityGrade:    req.QualityGrade,
		QuantityKg:      req.QuantityKg,
		HarvestTime:     req.HarvestTime,
		HarvestLocation: req.Location,
		HarvestAddress:  req.Address,
		Notes:           req.Notes,
	}

	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	snapshot := s.envService.CaptureBestEffort(ctx, batch.ID, models.StageHarvest, req.Location)

	slog.Info("Batch created",
		"batch_id", batch.ID,
		"farmer_id", caller.UserID,
		"harvest_snapshot_stored", snapshot.Stored)

	return &models.CreateBatchResponse{Batch: *batch, HarvestSnapshot: snapshot}, nil
}

// ClaimTransport lets any transporter claim an unclaimed created
// batch. The transport_log unique constraint settles races.
func (s *BatchService) ClaimTransport(ctx context.Context, caller authz.Caller, batchID uuid.UUID, req models.ClaimTransportRequest) (*models.TransportLog, error) {
	batch, _, _, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if !authz.Evaluate(authz.TableTransportLog, authz.OpInsert, caller, bctx) {
		return nil, fmt.Errorf("batch %s is not claimable by caller: %w", batchID, models.ErrForbidden)
	}

	transportLog := &models.TransportLog{
		ID:            uuid.New(),
		BatchID:       batchID,
		TransporterID: caller.UserID,
		TransportType: req.TransportType,
	}

	if err := s.transportRepo.Create(ctx, transportLog); err != nil {
		return nil, err
	}

	if err := s.batchRepo.UpdateStatus(ctx, batchID, batch.Status, models.BatchAssignedTransporter); err != nil {
		return nil, err
	}

	s.publishTransition(batchID, batch.Status, models.BatchAssignedTransporter, caller)
	return transportLog, nil
}

// RecordPickup marks the batch picked up by its assigned transporter
// and captures a best-effort pickup snapshot.
func (s *BatchService) RecordPickup(ctx context.Context, caller authz.Caller, batchID uuid.UUID, req models.PickupRequest) (models.SnapshotResult, error) {
	batch, _, _, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return models.SnapshotResult{}, err
	}

	if !authz.Evaluate(authz.TableTransportLog, authz.OpUpdate, caller, bctx) {
		return models.SnapshotResult{}, fmt.Errorf("caller is not the assigned transporter: %w", models.ErrForbidden)
	}
	if !batch.Status.CanTransitionTo(models.BatchPickedUp) {
		return models.SnapshotResult{}, fmt.Errorf("cannot pick up batch in status %s: %w", batch.Status, models.ErrInvalidTransition)
	}

	pickupTime := time.Now()
	if req.PickupTime != nil {
		pickupTime = *req.PickupTime
	}

	if err := s.transportRepo.RecordPickup(ctx, batchID, pickupTime, req.Location); err != nil {
		return models.SnapshotResult{}, err
	}
	if err := s.batchRepo.UpdateStatus(ctx, batchID, batch.Status, models.BatchPickedUp); err != nil {
		return models.SnapshotResult{}, err
	}

	snapshot := s.envService.CaptureBestEffort(ctx, batchID, models.StagePickup, req.Location)
	s.publishTransition(batchID, batch.Status, models.BatchPickedUp, caller)
	return snapshot, nil
}

// StartTransit moves a picked-up batch into in_transit. The state is
// optional in the journey: delivery is reachable without it.
func (s *BatchService) StartTransit(ctx context.Context, caller authz.Caller, batchID uuid.UUID, location *models.GeoJSONPoint) (models.SnapshotResult, error) {
	batch, _, _, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return models.SnapshotResult{}, err
	}

	if !authz.Evaluate(authz.TableTransportLog, authz.OpUpdate, caller, bctx) {
		return models.SnapshotResult{}, fmt.Errorf("caller is not the assigned transporter: %w", models.ErrForbidden)
	}
	if !batch.Status.CanTransitionTo(models.BatchInTransit) {
		return models.SnapshotResult{}, fmt.Errorf("cannot start transit from status %s: %w", batch.Status, models.ErrInvalidTransition)
	}

	if err := s.batchRepo.UpdateStatus(ctx, batchID, batch.Status, models.BatchInTransit); err != nil {
		return models.SnapshotResult{}, err
	}

	snapshot := s.envService.CaptureBestEffort(ctx, batchID, models.StageTransit, location)
	s.publishTransition(batchID, batch.Status, models.BatchInTransit, caller)
	return snapshot, nil
}

// RecordDelivery marks the batch delivered, from either picked_up or
// in_transit.
func (s *BatchService) RecordDelivery(ctx context.Context, caller authz.Caller, batchID uuid.UUID, req models.DeliverRequest) (models.SnapshotResult, error) {
	batch, _, _, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return models.SnapshotResult{}, err
	}

	if !authz.Evaluate(authz.TableTransportLog, authz.OpUpdate, caller, bctx) {
		return models.SnapshotResult{}, fmt.Errorf("caller is not the assigned transporter: %w", models.ErrForbidden)
	}
	if !batch.Status.CanTransitionTo(models.BatchDelivered) {
		return models.SnapshotResult{}, fmt.Errorf("cannot deliver batch in status %s: %w", batch.Status, models.ErrInvalidTransition)
	}

	dropTime := time.Now()
	if req.DropTime != nil {
		dropTime = *req.DropTime
	}

	if err := s.transportRepo.RecordDelivery(ctx, batchID, dropTime, req.Location); err != nil {
		return models.SnapshotResult{}, err
	}
	if err := s.batchRepo.UpdateStatus(ctx, batchID, batch.Status, models.BatchDelivered); err != nil {
		return models.SnapshotResult{}, err
	}

	snapshot := s.envService.CaptureBestEffort(ctx, batchID, models.StageDelivery, req.Location)
	s.publishTransition(batchID, batch.Status, models.BatchDelivered, caller)
	return snapshot, nil
}

// ClaimReceipt lets any vendor claim a delivered batch. Claiming does
// not advance the status; confirmation does.
func (s *BatchService) ClaimReceipt(ctx context.Context, caller authz.Caller, batchID uuid.UUID) (*models.VendorReceipt, error) {
	_, _, _, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if !authz.Evaluate(authz.TableVendorReceipt, authz.OpInsert, caller, bctx) {
		return nil, fmt.Errorf("batch %s is not claimable by caller: %w", batchID, models.ErrForbidden)
	}

	receipt := &models.VendorReceipt{
		ID:       uuid.New(),
		BatchID:  batchID,
		VendorID: caller.UserID,
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// ConfirmReceipt records the vendor's quality assessment, advances the
// batch to received, and triggers the AI analysis automatically. The
// analysis itself is best-effort here: its failure leaves the batch in
// received and is retriable through the analysis endpoint.
func (s *BatchService) ConfirmReceipt(ctx context.Context, caller authz.Caller, batchID uuid.UUID, req models.ConfirmReceiptRequest) (*models.VendorReceipt, error) {
	batch, _, receipt, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if receipt == nil {
		return nil, fmt.Errorf("vendor receipt for batch %s: %w", batchID, models.ErrNotFound)
	}
	if !authz.Evaluate(authz.TableVendorReceipt, authz.OpUpdate, caller, bctx) {
		return nil, fmt.Errorf("caller is not the assigned vendor: %w", models.ErrForbidden)
	}
	if !batch.Status.CanTransitionTo(models.BatchReceived) {
		return nil, fmt.Errorf("cannot confirm receipt in status %s: %w", batch.Status, models.ErrInvalidTransition)
	}

	receivedAt := time.Now()
	if err := s.receiptRepo.Confirm(ctx, batchID, receivedAt, req.QualityGrade, req.SpoilagePercent, req.WeightLossPercent); err != nil {
		return nil, err
	}
	if err := s.batchRepo.UpdateStatus(ctx, batchID, batch.Status, models.BatchReceived); err != nil {
		return nil, err
	}

	s.envService.CaptureBestEffort(ctx, batchID, models.StageReceipt, req.Location)
	s.publishTransition(batchID, batch.Status, models.BatchReceived, caller)

	if _, err := s.analysisService.AnalyzeBatch(ctx, caller, batchID); err != nil {
		slog.Warn("Automatic analysis after receipt confirmation failed",
			"batch_id", batchID, "error", err)
	}

	return s.receiptRepo.GetByBatchID(ctx, batchID)
}

// GetBatchView returns the denormalized per-batch aggregation for a
// caller allowed to see the batch.
func (s *BatchService) GetBatchView(ctx context.Context, caller authz.Caller, batchID uuid.UUID) (*models.BatchView, error) {
	batch, transportLog, receipt, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if !authz.Evaluate(authz.TableBatch, authz.OpSelect, caller, bctx) {
		return nil, fmt.Errorf("batch %s is not visible to caller: %w", batchID, models.ErrForbidden)
	}

	readings, err := s.envRepo.ListByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	view := &models.BatchView{
		Batch:             *batch,
		TransportLog:      transportLog,
		VendorReceipt:     receipt,
		EnvironmentalData: readings,
	}

	analysis, err := s.analysisRepo.GetByBatchID(ctx, batchID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	view.AIAnalysis = analysis

	photos, err := s.photoRepo.ListByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	view.Photos = photos

	return view, nil
}

// ListBatchViews fetches every batch visible to the caller plus all
// linked records in one fan-out, joined by batch_id.
func (s *BatchService) ListBatchViews(ctx context.Context, caller authz.Caller) ([]models.BatchView, error) {
	batches, err := s.batchRepo.ListVisible(ctx, caller.UserID, caller.Role)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return []models.BatchView{}, nil
	}

	batchIDs := make([]uuid.UUID, 0, len(batches))
	for _, b := range batches {
		batchIDs = append(batchIDs, b.ID)
	}

	transportLogs, err := s.transportRepo.ListByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	receipts, err := s.receiptRepo.ListByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	readings, err := s.envRepo.ListByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	analyses, err := s.analysisRepo.ListByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	photos, err := s.photoRepo.ListByBatchIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}

	return AssembleBatchViews(batches, transportLogs, receipts, readings, analyses, photos), nil
}

// AssembleBatchViews joins the five linked record sets by batch_id
// into one denormalized view per batch, preserving batch order.
func AssembleBatchViews(
	batches []models.Batch,
	transportLogs []models.TransportLog,
	receipts []models.VendorReceipt,
	readings []models.EnvironmentalData,
	analyses []models.AIAnalysis,
	photos []models.BatchPhoto,
) []models.BatchView {
	logByBatch := make(map[uuid.UUID]*models.TransportLog, len(transportLogs))
	for i := range transportLogs {
		logByBatch[transportLogs[i].BatchID] = &transportLogs[i]
	}
	receiptByBatch := make(map[uuid.UUID]*models.VendorReceipt, len(receipts))
	for i := range receipts {
		receiptByBatch[receipts[i].BatchID] = &receipts[i]
	}
	analysisByBatch := make(map[uuid.UUID]*models.AIAnalysis, len(analyses))
	for i := range analyses {
		analysisByBatch[analyses[i].BatchID] = &analyses[i]
	}
	readingsByBatch := make(map[uuid.UUID][]models.EnvironmentalData)
	for _, r := range readings {
		readingsByBatch[r.BatchID] = append(readingsByBatch[r.BatchID], r)
	}
	photosByBatch := make(map[uuid.UUID][]models.BatchPhoto)
	for _, p := range photos {
		photosByBatch[p.BatchID] = append(photosByBatch[p.BatchID], p)
	}

	views := make([]models.BatchView, 0, len(batches))
	for _, b := range batches {
		stageReadings := readingsByBatch[b.ID]
		if stageReadings == nil {
			stageReadings = []models.EnvironmentalData{}
		}
		views = append(views, models.BatchView{
			Batch:             b,
			TransportLog:      logByBatch[b.ID],
			VendorReceipt:     receiptByBatch[b.ID],
			EnvironmentalData: stageReadings,
			AIAnalysis:        analysisByBatch[b.ID],
			Photos:            photosByBatch[b.ID],
		})
	}
	return views
}

// CaptureEnvironment records an on-demand environmental reading for a
// batch participant. Unlike the best-effort captures inside lifecycle
// transitions, this one reports storage errors to the caller.
func (s *BatchService) CaptureEnvironment(ctx context.Context, caller authz.Caller, req models.EnvironmentalFetchRequest) (*models.EnvironmentalData, error) {
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return nil, fmt.Errorf("invalid batch id %q: %w", req.BatchID, models.ErrInvalidInput)
	}

	_, _, _, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if !authz.Evaluate(authz.TableEnvironmentalData, authz.OpInsert, caller, bctx) {
		return nil, fmt.Errorf("caller is not a participant of batch %s: %w", batchID, models.ErrForbidden)
	}

	return s.envService.Capture(ctx, batchID, req.Stage, *req.Lat, *req.Lon)
}

// AttachPhoto stores a stage photo in object storage and records its
// metadata.
func (s *BatchService) AttachPhoto(ctx context.Context, caller authz.Caller, batchID uuid.UUID, req models.AttachPhotoRequest, filename, contentType string, reader io.Reader, size int64) (*models.BatchPhoto, error) {
	_, _, _, bctx, err := s.loadBatchContext(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if !authz.Evaluate(authz.TableBatchPhoto, authz.OpInsert, caller, bctx) {
		return nil, fmt.Errorf("caller is not a participant of batch %s: %w", batchID, models.ErrForbidden)
	}
	if !req.Stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q: %w", req.Stage, models.ErrInvalidInput)
	}
	if s.minioClient == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	objectName := fmt.Sprintf("%s/%s-%s", batchID, req.Stage, filename)
	objectPath, err := s.minioClient.UploadBatchPhoto(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	photo := &models.BatchPhoto{
		ID:         uuid.New(),
		BatchID:    batchID,
		UploaderID: caller.UserID,
		Stage:      req.Stage,
		PhotoURL:   s.minioBaseURL + objectPath,
		TakenAt:    req.TakenAt,
	}

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}
