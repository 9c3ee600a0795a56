package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/workflow"

	"github.com/google/uuid"
)

// --- DTOs ---

type FileDocumentRequest struct {
	TrackingID  string `json:"tracking_id" binding:"required"`
	FileName    string `json:"file_name" binding:"required"`
	FileURL     string `json:"file_url"`
	Description string `json:"description"`
}

type DocumentResponse struct {
	ID          string `json:"id"`
	TrackingID  string `json:"tracking_id"`
	FileName    string `json:"file_name"`
	FileURL     string `json:"file_url"`
	Description string `json:"description"`
	UploadedBy  string `json:"uploaded_by,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type DocumentService interface {
	// File stores the document reference and drives the justification: the
	// tracking moves to J and so does its voucher, in one transaction.
	File(ctx context.Context, actor workflow.Actor, req FileDocumentRequest) (DocumentResponse, error)
	List(ctx context.Context, page, limit int) ([]DocumentResponse, int64, error)
	ListByTracking(ctx context.Context, trackingID string) ([]DocumentResponse, error)
}

type documentService struct {
	documentRepo repository.DocumentRepository
	trackingRepo repository.TrackingRepository
	voucherRepo  repository.VoucherRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
}

func NewDocumentService(
	documentRepo repository.DocumentRepository,
	trackingRepo repository.TrackingRepository,
	voucherRepo repository.VoucherRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		trackingRepo: trackingRepo,
		voucherRepo:  voucherRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

func (s *documentService) File(ctx context.Context, actor workflow.Actor, req FileDocumentRequest) (DocumentResponse, error) {
	trackingID, err := uuid.Parse(req.TrackingID)
	if err != nil {
		return DocumentResponse{}, workflow.NewValidationError("tracking_id", "invalid tracking id: %v", err)
	}

	var doc model.Document
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		tracking, findErr := s.trackingRepo.FindByID(txCtx, trackingID)
		if findErr != nil {
			return fmt.Errorf("tracking not found: %w", findErr)
		}

		trackingStatus, parseErr := workflow.ParseTrackingStatus(tracking.Status)
		if parseErr != nil {
			return fmt.Errorf("stored tracking status is invalid: %w", parseErr)
		}
		nextTracking, trErr := workflow.JustifyTracking(trackingStatus)
		if trErr != nil {
			return trErr
		}

		doc = model.Document{
			TrackingID:   tracking.ID,
			FileName:     req.FileName,
			FileURL:      req.FileURL,
			Description:  req.Description,
			UploadedByID: &actor.ID,
		}
		if createErr := s.documentRepo.Create(txCtx, &doc); createErr != nil {
			return fmt.Errorf("failed to store document: %w", createErr)
		}

		now := time.Now()
		tracking.Status = string(nextTracking)
		tracking.JustificationDate = &now
		ok, updErr := s.trackingRepo.UpdateVersioned(txCtx, tracking, tracking.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update tracking: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{Entity: "tracking", ID: tracking.ID.String(),
				ExpectedVersion: tracking.Version - 1, ActualVersion: tracking.Version}
		}

		voucher, vErr := s.voucherRepo.FindByID(txCtx, tracking.VoucherID)
		if vErr != nil {
			return fmt.Errorf("voucher not found: %w", vErr)
		}
		voucherStatus, parseErr := workflow.ParseVoucherStatus(voucher.Status)
		if parseErr != nil {
			return fmt.Errorf("stored voucher status is invalid: %w", parseErr)
		}
		nextVoucher, trErr := workflow.JustifyVoucher(voucherStatus)
		if trErr != nil {
			return trErr
		}
		voucher.Status = string(nextVoucher)
		if ok, uErr := s.voucherRepo.UpdateVersioned(txCtx, voucher, voucher.Version); uErr != nil {
			return fmt.Errorf("failed to update voucher: %w", uErr)
		} else if !ok {
			return &workflow.ConflictError{Entity: "voucher", ID: voucher.ID.String(),
				ExpectedVersion: voucher.Version - 1, ActualVersion: voucher.Version}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"file_name":   req.FileName,
			"tracking_id": tracking.ID.String(),
		})
		entry := &model.AuditLog{
			UserID:   &actor.ID,
			Action:   model.ActionFileDocument,
			EntityID: doc.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Create(txCtx, entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	result := toDocumentResponse(doc)
	s.notifier.BroadcastEvent(model.ActionFileDocument, result)
	return result, nil
}

func (s *documentService) List(ctx context.Context, page, limit int) ([]DocumentResponse, int64, error) {
	docs, total, err := s.documentRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch documents: %w", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		result = append(result, toDocumentResponse(d))
	}
	return result, total, nil
}

func (s *documentService) ListByTracking(ctx context.Context, trackingID string) ([]DocumentResponse, error) {
	id, err := uuid.Parse(trackingID)
	if err != nil {
		return nil, workflow.NewValidationError("tracking_id", "invalid tracking id: %v", err)
	}

	docs, err := s.documentRepo.ListByTracking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		result = append(result, toDocumentResponse(d))
	}
	return result, nil
}

func toDocumentResponse(d model.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          d.ID.String(),
		TrackingID:  d.TrackingID.String(),
		FileName:    d.FileName,
		FileURL:     d.FileURL,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if d.UploadedBy != nil {
		resp.UploadedBy = d.UploadedBy.Username
	}
	return resp
}
