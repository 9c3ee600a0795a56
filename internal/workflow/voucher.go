package workflow

import (
	"strings"
	"time"

	"github.com/im-adarsh/go-statemachine/statemachine"
	"github.com/shopspring/decimal"
)

// Voucher amount bounds in currency units.
var (
	VoucherMinAmount = decimal.RequireFromString("0.01")
	VoucherMaxAmount = decimal.RequireFromString("200.00")
)

// Activity description length bounds.
const (
	ActivityMinLen = 10
	ActivityMaxLen = 500
)

// VoucherInput is the validated payload for creating or updating a voucher.
type VoucherInput struct {
	Amount            decimal.Decimal
	ActivityToPerform string
	CostCenterID      string
	ApplicantID       int64
	AreaSignatureID   string
	RequestDate       time.Time
	DeliveryDate      time.Time
}

// ValidateVoucherInput runs every voucher creation/update precondition against
// today's date. Dates are compared at day granularity.
func ValidateVoucherInput(in VoucherInput, today time.Time) error {
	if in.Amount.LessThan(VoucherMinAmount) || in.Amount.GreaterThan(VoucherMaxAmount) {
		return NewValidationError("amount", "el monto debe estar entre %s y %s",
			VoucherMinAmount.StringFixed(2), VoucherMaxAmount.StringFixed(2))
	}

	activity := strings.TrimSpace(in.ActivityToPerform)
	if len(activity) < ActivityMinLen || len(activity) > ActivityMaxLen {
		return NewValidationError("activity_to_perform", "la actividad debe tener entre %d y %d caracteres",
			ActivityMinLen, ActivityMaxLen)
	}

	if in.CostCenterID == "" {
		return NewValidationError("cost_center_id", "el centro de costo es obligatorio")
	}
	if in.ApplicantID <= 0 {
		return NewValidationError("applicant_id", "el solicitante es obligatorio")
	}
	if in.AreaSignatureID == "" {
		return NewValidationError("area_signature_id", "la firma de área es obligatoria")
	}

	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	todayDay := day(today)
	requestDay := day(in.RequestDate)
	deliveryDay := day(in.DeliveryDate)

	if requestDay.Before(todayDay) {
		return NewValidationError("request_date", "la fecha de solicitud no puede ser anterior a hoy")
	}
	if deliveryDay.Before(todayDay) || deliveryDay.Before(requestDay) {
		return NewValidationError("delivery_date", "la fecha de entrega no puede ser anterior a hoy ni a la fecha de solicitud")
	}

	return nil
}

// ApproveVoucher transitions a pending voucher to approved.
func ApproveVoucher(status VoucherStatus, actor Actor) (VoucherStatus, error) {
	if !actor.CanGestionar() {
		return status, &CapabilityError{ActorID: actor.ID, Capability: "gestionar"}
	}
	next, err := fire(voucherMachine, "voucher", statemachine.State(status), EventApprove)
	if err != nil {
		return status, err
	}
	return VoucherStatus(next), nil
}

// RejectVoucher transitions a pending voucher to rejected. Terminal: there is
// no reverse transition, the caller gates it behind explicit confirmation.
func RejectVoucher(status VoucherStatus, actor Actor) (VoucherStatus, error) {
	if !actor.CanGestionar() {
		return status, &CapabilityError{ActorID: actor.ID, Capability: "gestionar"}
	}
	next, err := fire(voucherMachine, "voucher", statemachine.State(status), EventReject)
	if err != nil {
		return status, err
	}
	return VoucherStatus(next), nil
}

// JustifyVoucher moves a delivered voucher to justified once a document is
// filed against its tracking.
func JustifyVoucher(status VoucherStatus) (VoucherStatus, error) {
	next, err := fire(voucherMachine, "voucher", statemachine.State(status), EventJustify)
	if err != nil {
		return status, err
	}
	return VoucherStatus(next), nil
}

// ExpireVoucher marks an approved-but-unjustified voucher overdue.
func ExpireVoucher(status VoucherStatus) (VoucherStatus, error) {
	next, err := fire(voucherMachine, "voucher", statemachine.State(status), EventExpire)
	if err != nil {
		return status, err
	}
	return VoucherStatus(next), nil
}

// CompleteVoucher closes a justified voucher. Irreversible; only allowed while
// both the voucher and its tracking are justified.
func CompleteVoucher(status VoucherStatus, tracking TrackingStatus) (VoucherStatus, error) {
	if tracking != TrackingJustified {
		return status, &TransitionError{Entity: "tracking", From: string(tracking), Event: string(EventComplete)}
	}
	next, err := fire(voucherMachine, "voucher", statemachine.State(status), EventComplete)
	if err != nil {
		return status, err
	}
	return VoucherStatus(next), nil
}

// DeliverTracking records the physical delivery of the advance.
func DeliverTracking(status TrackingStatus) (TrackingStatus, error) {
	next, err := fire(trackingMachine, "tracking", statemachine.State(status), EventDeliver)
	if err != nil {
		return status, err
	}
	return TrackingStatus(next), nil
}

// JustifyTracking closes the justification window after a document is filed.
func JustifyTracking(status TrackingStatus) (TrackingStatus, error) {
	next, err := fire(trackingMachine, "tracking", statemachine.State(status), EventJustify)
	if err != nil {
		return status, err
	}
	return TrackingStatus(next), nil
}

// ExpireTracking marks a delivered tracking overdue once its deadline passes.
func ExpireTracking(status TrackingStatus) (TrackingStatus, error) {
	next, err := fire(trackingMachine, "tracking", statemachine.State(status), EventExpire)
	if err != nil {
		return status, err
	}
	return TrackingStatus(next), nil
}

// RestoreTracking re-opens the justification window of an overdue tracking.
func RestoreTracking(status TrackingStatus) (TrackingStatus, error) {
	next, err := fire(trackingMachine, "tracking", statemachine.State(status), EventRestore)
	if err != nil {
		return status, err
	}
	return TrackingStatus(next), nil
}

// CompleteTracking closes a justified tracking together with its voucher.
func CompleteTracking(status TrackingStatus) (TrackingStatus, error) {
	next, err := fire(trackingMachine, "tracking", statemachine.State(status), EventComplete)
	if err != nil {
		return status, err
	}
	return TrackingStatus(next), nil
}
