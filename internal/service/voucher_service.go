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
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateVoucherRequest struct {
	Amount            string `json:"amount" binding:"required"` // Decimal string
	ActivityToPerform string `json:"activity_to_perform" binding:"required"`
	CostCenterID      string `json:"cost_center_id" binding:"required"`
	ApplicantID       int64  `json:"applicant_id" binding:"required"`
	AreaSignatureID   string `json:"area_signature_id" binding:"required"`
	RequestDate       string `json:"request_date" binding:"required"`  // YYYY-MM-DD
	DeliveryDate      string `json:"delivery_date" binding:"required"` // YYYY-MM-DD
}

type UpdateVoucherRequest struct {
	ID                string `json:"id" binding:"required"`
	Version           int64  `json:"version" binding:"required"`
	Amount            string `json:"amount" binding:"required"`
	ActivityToPerform string `json:"activity_to_perform" binding:"required"`
	CostCenterID      string `json:"cost_center_id" binding:"required"`
	AreaSignatureID   string `json:"area_signature_id" binding:"required"`
	RequestDate       string `json:"request_date" binding:"required"`
	DeliveryDate      string `json:"delivery_date" binding:"required"`
}

type VoucherDecisionRequest struct {
	Version int64 `json:"version" binding:"required"`
}

type VoucherResponse struct {
	ID                string  `json:"id"`
	Correlative       string  `json:"correlative"`
	Amount            string  `json:"amount"`
	Status            string  `json:"status"`
	Version           int64   `json:"version"`
	ActivityToPerform string  `json:"activity_to_perform"`
	CostCenterID      string  `json:"cost_center_id"`
	CostCenterName    string  `json:"cost_center_name,omitempty"`
	ApplicantID       int64   `json:"applicant_id"`
	ApplicantName     string  `json:"applicant_name,omitempty"`
	AreaSignatureID   string  `json:"area_signature_id"`
	AreaName          string  `json:"area_name,omitempty"`
	RequestDate       string  `json:"request_date"`
	DeliveryDate      string  `json:"delivery_date"`
	JustificationDate string  `json:"justification_date"`
	TrackingID        *string `json:"tracking_id"`
	TrackingStatus    string  `json:"tracking_status,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// --- Interface ---

type VoucherService interface {
	Create(ctx context.Context, actor workflow.Actor, req CreateVoucherRequest) (VoucherResponse, error)
	Update(ctx context.Context, actor workflow.Actor, req UpdateVoucherRequest) (VoucherResponse, error)
	List(ctx context.Context, status string, applicantID int64, page, limit int) ([]VoucherResponse, int64, error)
	Approve(ctx context.Context, actor workflow.Actor, id string, req VoucherDecisionRequest) (VoucherResponse, error)
	Reject(ctx context.Context, actor workflow.Actor, id string, req VoucherDecisionRequest) (VoucherResponse, error)
	CompleteProcess(ctx context.Context, actor workflow.Actor, id string, req VoucherDecisionRequest) (VoucherResponse, error)
}

type voucherService struct {
	voucherRepo  repository.VoucherRepository
	trackingRepo repository.TrackingRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
}

func NewVoucherService(
	voucherRepo repository.VoucherRepository,
	trackingRepo repository.TrackingRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) VoucherService {
	return &voucherService{
		voucherRepo:  voucherRepo,
		trackingRepo: trackingRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

const dateLayout = "2006-01-02"

func parseVoucherInput(amountStr, activity, costCenterID string, applicantID int64, areaID, requestDate, deliveryDate string) (workflow.VoucherInput, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return workflow.VoucherInput{}, workflow.NewValidationError("amount", "invalid amount: %v", err)
	}

	reqDate, err := time.Parse(dateLayout, requestDate)
	if err != nil {
		return workflow.VoucherInput{}, workflow.NewValidationError("request_date", "invalid date, expected YYYY-MM-DD")
	}

	delDate, err := time.Parse(dateLayout, deliveryDate)
	if err != nil {
		return workflow.VoucherInput{}, workflow.NewValidationError("delivery_date", "invalid date, expected YYYY-MM-DD")
	}

	return workflow.VoucherInput{
		Amount:            amount,
		ActivityToPerform: activity,
		CostCenterID:      costCenterID,
		ApplicantID:       applicantID,
		AreaSignatureID:   areaID,
		RequestDate:       reqDate,
		DeliveryDate:      delDate,
	}, nil
}

func (s *voucherService) Create(ctx context.Context, actor workflow.Actor, req CreateVoucherRequest) (VoucherResponse, error) {
	in, err := parseVoucherInput(req.Amount, req.ActivityToPerform, req.CostCenterID,
		req.ApplicantID, req.AreaSignatureID, req.RequestDate, req.DeliveryDate)
	if err != nil {
		return VoucherResponse{}, err
	}
	if err := workflow.ValidateVoucherInput(in, time.Now()); err != nil {
		return VoucherResponse{}, err
	}

	costCenterID, err := uuid.Parse(req.CostCenterID)
	if err != nil {
		return VoucherResponse{}, workflow.NewValidationError("cost_center_id", "invalid id: %v", err)
	}
	areaID, err := uuid.Parse(req.AreaSignatureID)
	if err != nil {
		return VoucherResponse{}, workflow.NewValidationError("area_signature_id", "invalid id: %v", err)
	}

	var voucher model.Voucher
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		correlative, corrErr := s.voucherRepo.NextCorrelative(txCtx)
		if corrErr != nil {
			return fmt.Errorf("failed to generate correlative: %w", corrErr)
		}

		voucher = model.Voucher{
			Correlative:       correlative,
			Amount:            in.Amount,
			Status:            string(workflow.VoucherPending),
			ActivityToPerform: in.ActivityToPerform,
			CostCenterID:      costCenterID,
			ApplicantID:       req.ApplicantID,
			AreaSignatureID:   areaID,
			RequestDate:       in.RequestDate,
			DeliveryDate:      in.DeliveryDate,
			JustificationDate: workflow.JustificationDate(in.DeliveryDate),
		}
		if createErr := s.voucherRepo.Create(txCtx, &voucher); createErr != nil {
			return fmt.Errorf("failed to create voucher: %w", createErr)
		}

		tracking := model.Tracking{
			VoucherID:    voucher.ID,
			Status:       string(workflow.TrackingPendingDelivery),
			DeadlineDate: voucher.JustificationDate,
		}
		if trErr := s.trackingRepo.Create(txCtx, &tracking); trErr != nil {
			return fmt.Errorf("failed to create tracking: %w", trErr)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionCreateVoucher, &voucher, map[string]interface{}{
			"correlative": correlative,
			"amount":      in.Amount.StringFixed(2),
		})
	})
	if err != nil {
		return VoucherResponse{}, err
	}

	return s.reload(ctx, voucher.ID)
}

func (s *voucherService) Update(ctx context.Context, actor workflow.Actor, req UpdateVoucherRequest) (VoucherResponse, error) {
	voucherID, err := uuid.Parse(req.ID)
	if err != nil {
		return VoucherResponse{}, workflow.NewValidationError("id", "invalid voucher id: %v", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		voucher, findErr := s.voucherRepo.FindByID(txCtx, voucherID)
		if findErr != nil {
			return fmt.Errorf("voucher not found: %w", findErr)
		}

		// Only pending vouchers are editable; decided ones are immutable.
		if voucher.Status != string(workflow.VoucherPending) {
			return &workflow.TransitionError{Entity: "voucher", From: voucher.Status, Event: "update"}
		}

		in, parseErr := parseVoucherInput(req.Amount, req.ActivityToPerform, req.CostCenterID,
			voucher.ApplicantID, req.AreaSignatureID, req.RequestDate, req.DeliveryDate)
		if parseErr != nil {
			return parseErr
		}
		if valErr := workflow.ValidateVoucherInput(in, time.Now()); valErr != nil {
			return valErr
		}

		costCenterID, idErr := uuid.Parse(req.CostCenterID)
		if idErr != nil {
			return workflow.NewValidationError("cost_center_id", "invalid id: %v", idErr)
		}
		areaID, idErr := uuid.Parse(req.AreaSignatureID)
		if idErr != nil {
			return workflow.NewValidationError("area_signature_id", "invalid id: %v", idErr)
		}

		deliveryChanged := !voucher.DeliveryDate.Equal(in.DeliveryDate)

		voucher.Amount = in.Amount
		voucher.ActivityToPerform = in.ActivityToPerform
		voucher.CostCenterID = costCenterID
		voucher.AreaSignatureID = areaID
		voucher.RequestDate = in.RequestDate
		voucher.DeliveryDate = in.DeliveryDate
		voucher.JustificationDate = workflow.JustificationDate(in.DeliveryDate)

		ok, updErr := s.voucherRepo.UpdateVersioned(txCtx, voucher, req.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update voucher: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{Entity: "voucher", ID: voucher.ID.String(),
				ExpectedVersion: req.Version, ActualVersion: voucher.Version}
		}

		// Keep the tracking deadline aligned with the derived justification date.
		if deliveryChanged {
			tracking, trErr := s.trackingRepo.FindByVoucherID(txCtx, voucher.ID)
			if trErr != nil {
				return fmt.Errorf("tracking not found: %w", trErr)
			}
			tracking.DeadlineDate = voucher.JustificationDate
			if ok, trUpdErr := s.trackingRepo.UpdateVersioned(txCtx, tracking, tracking.Version); trUpdErr != nil {
				return fmt.Errorf("failed to update tracking deadline: %w", trUpdErr)
			} else if !ok {
				return &workflow.ConflictError{Entity: "tracking", ID: tracking.ID.String(),
					ExpectedVersion: tracking.Version - 1, ActualVersion: tracking.Version}
			}
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionUpdateVoucher, voucher, map[string]interface{}{
			"amount":        in.Amount.StringFixed(2),
			"delivery_date": req.DeliveryDate,
		})
	})
	if err != nil {
		return VoucherResponse{}, err
	}

	return s.reload(ctx, voucherID)
}

func (s *voucherService) List(ctx context.Context, status string, applicantID int64, page, limit int) ([]VoucherResponse, int64, error) {
	if status != "" {
		parsed, err := workflow.ParseVoucherStatus(status)
		if err != nil {
			return nil, 0, workflow.NewValidationError("status", "%v", err)
		}
		status = string(parsed)
	}

	vouchers, total, err := s.voucherRepo.List(ctx, status, applicantID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vouchers: %w", err)
	}

	result := make([]VoucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		result = append(result, toVoucherResponse(v))
	}
	return result, total, nil
}

func (s *voucherService) Approve(ctx context.Context, actor workflow.Actor, id string, req VoucherDecisionRequest) (VoucherResponse, error) {
	return s.decide(ctx, actor, id, req, model.ActionApproveVoucher, workflow.ApproveVoucher)
}

func (s *voucherService) Reject(ctx context.Context, actor workflow.Actor, id string, req VoucherDecisionRequest) (VoucherResponse, error) {
	return s.decide(ctx, actor, id, req, model.ActionRejectVoucher, workflow.RejectVoucher)
}

func (s *voucherService) decide(
	ctx context.Context,
	actor workflow.Actor,
	id string,
	req VoucherDecisionRequest,
	action string,
	transition func(workflow.VoucherStatus, workflow.Actor) (workflow.VoucherStatus, error),
) (VoucherResponse, error) {
	voucherID, err := uuid.Parse(id)
	if err != nil {
		return VoucherResponse{}, workflow.NewValidationError("id", "invalid voucher id: %v", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		voucher, findErr := s.voucherRepo.FindByID(txCtx, voucherID)
		if findErr != nil {
			return fmt.Errorf("voucher not found: %w", findErr)
		}

		status, parseErr := workflow.ParseVoucherStatus(voucher.Status)
		if parseErr != nil {
			return fmt.Errorf("stored status is invalid: %w", parseErr)
		}

		next, trErr := transition(status, actor)
		if trErr != nil {
			return trErr
		}

		now := time.Now()
		voucher.Status = string(next)
		voucher.DecidedByID = &actor.ID
		voucher.DecidedAt = &now

		ok, updErr := s.voucherRepo.UpdateVersioned(txCtx, voucher, req.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update voucher: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{Entity: "voucher", ID: voucher.ID.String(),
				ExpectedVersion: req.Version, ActualVersion: voucher.Version}
		}

		return s.writeAudit(txCtx, &actor.ID, action, voucher, map[string]interface{}{
			"status": voucher.Status,
		})
	})
	if err != nil {
		return VoucherResponse{}, err
	}

	result, err := s.reload(ctx, voucherID)
	if err != nil {
		return VoucherResponse{}, err
	}
	s.notifier.BroadcastEvent(action, result)
	return result, nil
}

// CompleteProcess closes a justified voucher and its tracking in one
// transaction. There is no undo transition.
func (s *voucherService) CompleteProcess(ctx context.Context, actor workflow.Actor, id string, req VoucherDecisionRequest) (VoucherResponse, error) {
	voucherID, err := uuid.Parse(id)
	if err != nil {
		return VoucherResponse{}, workflow.NewValidationError("id", "invalid voucher id: %v", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		voucher, findErr := s.voucherRepo.FindByID(txCtx, voucherID)
		if findErr != nil {
			return fmt.Errorf("voucher not found: %w", findErr)
		}
		tracking, trFindErr := s.trackingRepo.FindByVoucherID(txCtx, voucher.ID)
		if trFindErr != nil {
			return fmt.Errorf("tracking not found: %w", trFindErr)
		}

		voucherStatus, parseErr := workflow.ParseVoucherStatus(voucher.Status)
		if parseErr != nil {
			return fmt.Errorf("stored status is invalid: %w", parseErr)
		}
		trackingStatus, parseErr := workflow.ParseTrackingStatus(tracking.Status)
		if parseErr != nil {
			return fmt.Errorf("stored tracking status is invalid: %w", parseErr)
		}

		nextVoucher, trErr := workflow.CompleteVoucher(voucherStatus, trackingStatus)
		if trErr != nil {
			return trErr
		}
		nextTracking, trErr := workflow.CompleteTracking(trackingStatus)
		if trErr != nil {
			return trErr
		}

		now := time.Now()
		voucher.Status = string(nextVoucher)
		voucher.DecidedAt = &now
		ok, updErr := s.voucherRepo.UpdateVersioned(txCtx, voucher, req.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update voucher: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{Entity: "voucher", ID: voucher.ID.String(),
				ExpectedVersion: req.Version, ActualVersion: voucher.Version}
		}

		tracking.Status = string(nextTracking)
		if ok, trUpdErr := s.trackingRepo.UpdateVersioned(txCtx, tracking, tracking.Version); trUpdErr != nil {
			return fmt.Errorf("failed to update tracking: %w", trUpdErr)
		} else if !ok {
			return &workflow.ConflictError{Entity: "tracking", ID: tracking.ID.String(),
				ExpectedVersion: tracking.Version - 1, ActualVersion: tracking.Version}
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionCompleteVoucher, voucher, nil)
	})
	if err != nil {
		return VoucherResponse{}, err
	}

	result, err := s.reload(ctx, voucherID)
	if err != nil {
		return VoucherResponse{}, err
	}
	s.notifier.BroadcastEvent(model.ActionCompleteVoucher, result)
	return result, nil
}

func (s *voucherService) reload(ctx context.Context, id uuid.UUID) (VoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return VoucherResponse{}, fmt.Errorf("failed to reload voucher: %w", err)
	}
	return toVoucherResponse(*voucher), nil
}

func (s *voucherService) writeAudit(ctx context.Context, userID *int64, action string, voucher *model.Voucher, extra map[string]interface{}) error {
	details, _ := json.Marshal(extra)
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   voucher.ID.String(),
		EntityName: voucher.Correlative,
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toVoucherResponse(v model.Voucher) VoucherResponse {
	resp := VoucherResponse{
		ID:                v.ID.String(),
		Correlative:       v.Correlative,
		Amount:            v.Amount.StringFixed(2),
		Status:            v.Status,
		Version:           v.Version,
		ActivityToPerform: v.ActivityToPerform,
		CostCenterID:      v.CostCenterID.String(),
		ApplicantID:       v.ApplicantID,
		AreaSignatureID:   v.AreaSignatureID.String(),
		RequestDate:       v.RequestDate.Format(dateLayout),
		DeliveryDate:      v.DeliveryDate.Format(dateLayout),
		JustificationDate: v.JustificationDate.Format(dateLayout),
		CreatedAt:         v.CreatedAt.Format(time.RFC3339),
	}

	if v.CostCenter != nil {
		resp.CostCenterName = v.CostCenter.Name
	}
	if v.Applicant != nil {
		resp.ApplicantName = v.Applicant.Username
	}
	if v.AreaSignature != nil {
		resp.AreaName = v.AreaSignature.Name
	}
	if v.Tracking != nil {
		id := v.Tracking.ID.String()
		resp.TrackingID = &id
		resp.TrackingStatus = v.Tracking.Status
	}

	return resp
}
