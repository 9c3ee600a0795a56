package workflow

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validVoucherInput(today time.Time) VoucherInput {
	return VoucherInput{
		Amount:            decimal.RequireFromString("150.00"),
		ActivityToPerform: "Compra de materiales de oficina para el área",
		CostCenterID:      "cc-01",
		ApplicantID:       10,
		AreaSignatureID:   "area-01",
		RequestDate:       today,
		DeliveryDate:      today.AddDate(0, 0, 3),
	}
}

func TestValidateVoucherInput(t *testing.T) {
	today := date(2024, time.January, 8)
	require.NoError(t, ValidateVoucherInput(validVoucherInput(today), today))
}

func TestValidateVoucherAmountBounds(t *testing.T) {
	today := date(2024, time.January, 8)
	tests := []struct {
		amount string
		ok     bool
	}{
		{"0.00", false},
		{"0.009", false},
		{"0.01", true},
		{"100.50", true},
		{"200.00", true},
		{"200.01", false},
		{"-5.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			in := validVoucherInput(today)
			in.Amount = decimal.RequireFromString(tt.amount)
			err := ValidateVoucherInput(in, today)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, "amount", vErr.Field)
		})
	}
}

func TestValidateVoucherActivityLength(t *testing.T) {
	today := date(2024, time.January, 8)

	in := validVoucherInput(today)
	in.ActivityToPerform = "muy corta"
	err := ValidateVoucherInput(in, today)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "activity_to_perform", vErr.Field)

	in.ActivityToPerform = strings.Repeat("a", ActivityMaxLen+1)
	require.Error(t, ValidateVoucherInput(in, today))

	in.ActivityToPerform = "1234567890"
	require.NoError(t, ValidateVoucherInput(in, today))
}

func TestValidateVoucherDates(t *testing.T) {
	today := date(2024, time.January, 8)

	in := validVoucherInput(today)
	in.RequestDate = today.AddDate(0, 0, -1)
	err := ValidateVoucherInput(in, today)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "request_date", vErr.Field)

	in = validVoucherInput(today)
	in.DeliveryDate = today.AddDate(0, 0, -1)
	err = ValidateVoucherInput(in, today)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "delivery_date", vErr.Field)

	// Delivery before request date
	in = validVoucherInput(today)
	in.RequestDate = today.AddDate(0, 0, 5)
	in.DeliveryDate = today.AddDate(0, 0, 2)
	err = ValidateVoucherInput(in, today)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "delivery_date", vErr.Field)

	// Same-day request and delivery is allowed
	in = validVoucherInput(today)
	in.RequestDate = today
	in.DeliveryDate = today
	require.NoError(t, ValidateVoucherInput(in, today))
}

func TestValidateVoucherRequiredSelections(t *testing.T) {
	today := date(2024, time.January, 8)

	in := validVoucherInput(today)
	in.CostCenterID = ""
	require.Error(t, ValidateVoucherInput(in, today))

	in = validVoucherInput(today)
	in.ApplicantID = 0
	require.Error(t, ValidateVoucherInput(in, today))

	in = validVoucherInput(today)
	in.AreaSignatureID = ""
	require.Error(t, ValidateVoucherInput(in, today))
}

func TestVoucherApproveReject(t *testing.T) {
	next, err := ApproveVoucher(VoucherPending, jefe)
	require.NoError(t, err)
	require.Equal(t, VoucherApproved, next)

	next, err = RejectVoucher(VoucherPending, admin)
	require.NoError(t, err)
	require.Equal(t, VoucherRejected, next)

	// Capability required
	_, err = ApproveVoucher(VoucherPending, empleado)
	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)

	// Only from pending
	var trErr *TransitionError
	_, err = ApproveVoucher(VoucherApproved, jefe)
	require.ErrorAs(t, err, &trErr)
	_, err = RejectVoucher(VoucherRejected, jefe)
	require.ErrorAs(t, err, &trErr)
}

func TestCompleteVoucherRequiresJustifiedTracking(t *testing.T) {
	next, err := CompleteVoucher(VoucherJustified, TrackingJustified)
	require.NoError(t, err)
	require.Equal(t, VoucherCompleted, next)

	var trErr *TransitionError
	for _, tracking := range []TrackingStatus{TrackingPendingDelivery, TrackingDelivered, TrackingOverdue, TrackingCompleted} {
		got, err := CompleteVoucher(VoucherJustified, tracking)
		require.ErrorAs(t, err, &trErr, "tracking %s", tracking)
		require.Equal(t, VoucherJustified, got)
	}

	// Voucher itself must be justified too
	_, err = CompleteVoucher(VoucherApproved, TrackingJustified)
	require.ErrorAs(t, err, &trErr)
}

func TestTrackingLifecycle(t *testing.T) {
	status, err := DeliverTracking(TrackingPendingDelivery)
	require.NoError(t, err)
	require.Equal(t, TrackingDelivered, status)

	status, err = ExpireTracking(status)
	require.NoError(t, err)
	require.Equal(t, TrackingOverdue, status)

	status, err = RestoreTracking(status)
	require.NoError(t, err)
	require.Equal(t, TrackingDelivered, status)

	status, err = JustifyTracking(status)
	require.NoError(t, err)
	require.Equal(t, TrackingJustified, status)

	status, err = CompleteTracking(status)
	require.NoError(t, err)
	require.Equal(t, TrackingCompleted, status)
}

func TestTrackingInvalidTransitions(t *testing.T) {
	var trErr *TransitionError

	_, err := RestoreTracking(TrackingDelivered)
	require.ErrorAs(t, err, &trErr)

	_, err = JustifyTracking(TrackingPendingDelivery)
	require.ErrorAs(t, err, &trErr)

	_, err = ExpireTracking(TrackingPendingDelivery)
	require.ErrorAs(t, err, &trErr)

	_, err = CompleteTracking(TrackingOverdue)
	require.ErrorAs(t, err, &trErr)
}

func TestVoucherJustificationPath(t *testing.T) {
	status, err := JustifyVoucher(VoucherApproved)
	require.NoError(t, err)
	require.Equal(t, VoucherJustified, status)

	// An overdue voucher can still be justified late
	status, err = ExpireVoucher(VoucherApproved)
	require.NoError(t, err)
	require.Equal(t, VoucherOverdue, status)
	status, err = JustifyVoucher(status)
	require.NoError(t, err)
	require.Equal(t, VoucherJustified, status)

	var trErr *TransitionError
	_, err = JustifyVoucher(VoucherPending)
	require.ErrorAs(t, err, &trErr)
}
