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

type TrackingActionRequest struct {
	Version int64 `json:"version" binding:"required"`
}

type TrackingResponse struct {
	ID                string  `json:"id"`
	VoucherID         string  `json:"voucher_id"`
	Correlative       string  `json:"correlative,omitempty"`
	ApplicantName     string  `json:"applicant_name,omitempty"`
	Status            string  `json:"status"`
	Version           int64   `json:"version"`
	DeliveryDate      *string `json:"delivery_date"`
	DeadlineDate      string  `json:"deadline_date"`
	JustificationDate *string `json:"justification_date"`
	NotificationSent  bool    `json:"notification_sent"`

	// Derived deadline fields, recomputed on every read.
	DaysUntilDeadline int    `json:"days_until_deadline"`
	Overdue           bool   `json:"overdue"`
	Approaching       bool   `json:"approaching_deadline"`
	DeadlineLabel     string `json:"deadline_label"`
}

// --- Interface ---

type TrackingService interface {
	List(ctx context.Context, status string, page, limit int) ([]TrackingResponse, int64, error)
	Deliver(ctx context.Context, actor workflow.Actor, id string, req TrackingActionRequest) (TrackingResponse, error)
	Restore(ctx context.Context, actor workflow.Actor, id string, req TrackingActionRequest) (TrackingResponse, error)
	// ExpireOverdue is run by the deadline sweeper: every delivered tracking
	// past its deadline goes overdue, together with its voucher, and a
	// notification is broadcast once.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

type trackingService struct {
	trackingRepo repository.TrackingRepository
	voucherRepo  repository.VoucherRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
}

func NewTrackingService(
	trackingRepo repository.TrackingRepository,
	voucherRepo repository.VoucherRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) TrackingService {
	return &trackingService{
		trackingRepo: trackingRepo,
		voucherRepo:  voucherRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

func (s *trackingService) List(ctx context.Context, status string, page, limit int) ([]TrackingResponse, int64, error) {
	if status != "" {
		parsed, err := workflow.ParseTrackingStatus(status)
		if err != nil {
			return nil, 0, workflow.NewValidationError("status", "%v", err)
		}
		status = string(parsed)
	}

	trackings, total, err := s.trackingRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch trackings: %w", err)
	}

	now := time.Now()
	result := make([]TrackingResponse, 0, len(trackings))
	for _, t := range trackings {
		result = append(result, toTrackingResponse(t, now))
	}
	return result, total, nil
}

// Deliver records the physical hand-over of the advance and starts the
// justification window.
func (s *trackingService) Deliver(ctx context.Context, actor workflow.Actor, id string, req TrackingActionRequest) (TrackingResponse, error) {
	return s.transition(ctx, actor, id, req, model.ActionDeliverTracking,
		func(tracking *model.Tracking, status workflow.TrackingStatus) error {
			next, err := workflow.DeliverTracking(status)
			if err != nil {
				return err
			}
			now := time.Now()
			tracking.Status = string(next)
			tracking.DeliveryDate = &now
			return nil
		})
}

// Restore re-opens the justification window of an overdue tracking so a late
// document can still be filed.
func (s *trackingService) Restore(ctx context.Context, actor workflow.Actor, id string, req TrackingActionRequest) (TrackingResponse, error) {
	return s.transition(ctx, actor, id, req, model.ActionRestoreTracking,
		func(tracking *model.Tracking, status workflow.TrackingStatus) error {
			next, err := workflow.RestoreTracking(status)
			if err != nil {
				return err
			}
			tracking.Status = string(next)
			tracking.NotificationSent = false
			return nil
		})
}

func (s *trackingService) transition(
	ctx context.Context,
	actor workflow.Actor,
	id string,
	req TrackingActionRequest,
	action string,
	apply func(*model.Tracking, workflow.TrackingStatus) error,
) (TrackingResponse, error) {
	trackingID, err := uuid.Parse(id)
	if err != nil {
		return TrackingResponse{}, workflow.NewValidationError("id", "invalid tracking id: %v", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		tracking, findErr := s.trackingRepo.FindByID(txCtx, trackingID)
		if findErr != nil {
			return fmt.Errorf("tracking not found: %w", findErr)
		}

		status, parseErr := workflow.ParseTrackingStatus(tracking.Status)
		if parseErr != nil {
			return fmt.Errorf("stored tracking status is invalid: %w", parseErr)
		}

		if applyErr := apply(tracking, status); applyErr != nil {
			return applyErr
		}

		ok, updErr := s.trackingRepo.UpdateVersioned(txCtx, tracking, req.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update tracking: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{Entity: "tracking", ID: tracking.ID.String(),
				ExpectedVersion: req.Version, ActualVersion: tracking.Version}
		}

		details, _ := json.Marshal(map[string]interface{}{"status": tracking.Status})
		entry := &model.AuditLog{
			UserID:   &actor.ID,
			Action:   action,
			EntityID: tracking.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Create(txCtx, entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return TrackingResponse{}, err
	}

	reloaded, err := s.trackingRepo.FindByID(ctx, trackingID)
	if err != nil {
		return TrackingResponse{}, fmt.Errorf("failed to reload tracking: %w", err)
	}
	result := toTrackingResponse(*reloaded, time.Now())
	s.notifier.BroadcastEvent(action, result)
	return result, nil
}

func (s *trackingService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	// Day-granularity cutoff: a tracking whose deadline is today is not
	// overdue yet, only deadlines strictly before today expire.
	expirable, err := s.trackingRepo.ListExpirable(ctx, workflow.ExpiryCutoff(now))
	if err != nil {
		return 0, fmt.Errorf("failed to list expirable trackings: %w", err)
	}

	expired := 0
	for _, t := range expirable {
		tracking := t
		updated := false
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			status, parseErr := workflow.ParseTrackingStatus(tracking.Status)
			if parseErr != nil {
				return parseErr
			}
			next, trErr := workflow.ExpireTracking(status)
			if trErr != nil {
				return trErr
			}

			tracking.Status = string(next)
			tracking.NotificationSent = true
			ok, updErr := s.trackingRepo.UpdateVersioned(txCtx, &tracking, tracking.Version)
			if updErr != nil {
				return updErr
			}
			if !ok {
				// Someone else moved it meanwhile; skip, next sweep re-evaluates.
				return nil
			}
			updated = true

			voucher, vErr := s.voucherRepo.FindByID(txCtx, tracking.VoucherID)
			if vErr != nil {
				return vErr
			}
			voucherStatus, parseErr := workflow.ParseVoucherStatus(voucher.Status)
			if parseErr != nil {
				return parseErr
			}
			if nextVoucher, expErr := workflow.ExpireVoucher(voucherStatus); expErr == nil {
				voucher.Status = string(nextVoucher)
				if _, uErr := s.voucherRepo.UpdateVersioned(txCtx, voucher, voucher.Version); uErr != nil {
					return uErr
				}
			}

			entry := &model.AuditLog{
				Action:   model.ActionExpireTracking,
				EntityID: tracking.ID.String(),
				Details:  `{"reason":"deadline passed"}`,
			}
			return s.auditRepo.Create(txCtx, entry)
		})
		if err != nil {
			return expired, fmt.Errorf("failed to expire tracking %s: %w", tracking.ID, err)
		}
		if !updated {
			continue
		}

		expired++
		s.notifier.BroadcastEvent(model.ActionExpireTracking, toTrackingResponse(tracking, now))
	}

	return expired, nil
}

func toTrackingResponse(t model.Tracking, now time.Time) TrackingResponse {
	days := workflow.DaysUntilDeadline(t.DeadlineDate, now)
	resp := TrackingResponse{
		ID:                t.ID.String(),
		VoucherID:         t.VoucherID.String(),
		Status:            t.Status,
		Version:           t.Version,
		DeadlineDate:      t.DeadlineDate.Format(dateLayout),
		NotificationSent:  t.NotificationSent,
		DaysUntilDeadline: days,
		Overdue:           workflow.IsOverdue(t.DeadlineDate, now),
		Approaching:       workflow.IsApproaching(t.DeadlineDate, now),
		DeadlineLabel:     workflow.DeadlineLabel(t.DeadlineDate, now),
	}

	if t.DeliveryDate != nil {
		s := t.DeliveryDate.Format(dateLayout)
		resp.DeliveryDate = &s
	}
	if t.JustificationDate != nil {
		s := t.JustificationDate.Format(dateLayout)
		resp.JustificationDate = &s
	}
	if t.Voucher != nil {
		resp.Correlative = t.Voucher.Correlative
		if t.Voucher.Applicant != nil {
			resp.ApplicantName = t.Voucher.Applicant.Username
		}
	}

	return resp
}
