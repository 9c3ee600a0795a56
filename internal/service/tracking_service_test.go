package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) BroadcastEvent(event string, payload interface{}) {
	n.events = append(n.events, event)
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

type fakeTrackingRepo struct {
	trackings   map[uuid.UUID]*model.Tracking
	lastCutoff  time.Time
	loseVersion bool
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{trackings: map[uuid.UUID]*model.Tracking{}}
}

func (r *fakeTrackingRepo) Create(ctx context.Context, tracking *model.Tracking) error {
	cp := *tracking
	r.trackings[tracking.ID] = &cp
	return nil
}

func (r *fakeTrackingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tracking, error) {
	t, ok := r.trackings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTrackingRepo) FindByVoucherID(ctx context.Context, voucherID uuid.UUID) (*model.Tracking, error) {
	for _, t := range r.trackings {
		if t.VoucherID == voucherID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTrackingRepo) List(ctx context.Context, status string, page, limit int) ([]model.Tracking, int64, error) {
	return nil, 0, nil
}

func (r *fakeTrackingRepo) ListExpirable(ctx context.Context, cutoff time.Time) ([]model.Tracking, error) {
	r.lastCutoff = cutoff
	var out []model.Tracking
	for _, t := range r.trackings {
		if t.Status == string(workflow.TrackingDelivered) && t.DeadlineDate.Before(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTrackingRepo) UpdateVersioned(ctx context.Context, tracking *model.Tracking, expectedVersion int64) (bool, error) {
	if r.loseVersion {
		return false, nil
	}
	stored, ok := r.trackings[tracking.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	tracking.Version = expectedVersion + 1
	cp := *tracking
	r.trackings[tracking.ID] = &cp
	return true, nil
}

type fakeVoucherRepo struct {
	vouchers map[uuid.UUID]*model.Voucher
}

func newFakeVoucherRepo() *fakeVoucherRepo {
	return &fakeVoucherRepo{vouchers: map[uuid.UUID]*model.Voucher{}}
}

func (r *fakeVoucherRepo) Create(ctx context.Context, voucher *model.Voucher) error {
	cp := *voucher
	r.vouchers[voucher.ID] = &cp
	return nil
}

func (r *fakeVoucherRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	v, ok := r.vouchers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVoucherRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeVoucherRepo) List(ctx context.Context, status string, applicantID int64, page, limit int) ([]model.Voucher, int64, error) {
	return nil, 0, nil
}

func (r *fakeVoucherRepo) UpdateVersioned(ctx context.Context, voucher *model.Voucher, expectedVersion int64) (bool, error) {
	stored, ok := r.vouchers[voucher.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	voucher.Version = expectedVersion + 1
	cp := *voucher
	r.vouchers[voucher.ID] = &cp
	return true, nil
}

func (r *fakeVoucherRepo) NextCorrelative(ctx context.Context) (string, error) {
	return "VAL-20240110-00001", nil
}

// --- Tests ---

func sweeperFixture(t *testing.T, deadline time.Time) (TrackingService, *fakeTrackingRepo, *fakeVoucherRepo, *fakeAuditRepo, *fakeNotifier) {
	t.Helper()

	trackingRepo := newFakeTrackingRepo()
	voucherRepo := newFakeVoucherRepo()
	auditRepo := &fakeAuditRepo{}
	notifier := &fakeNotifier{}

	voucher := &model.Voucher{
		ID:          uuid.New(),
		Correlative: "VAL-20240108-00001",
		Status:      string(workflow.VoucherApproved),
		Version:     1,
	}
	require.NoError(t, voucherRepo.Create(context.Background(), voucher))

	tracking := &model.Tracking{
		ID:           uuid.New(),
		VoucherID:    voucher.ID,
		Status:       string(workflow.TrackingDelivered),
		Version:      1,
		DeadlineDate: deadline,
	}
	require.NoError(t, trackingRepo.Create(context.Background(), tracking))

	svc := NewTrackingService(trackingRepo, voucherRepo, auditRepo, fakeTxManager{}, notifier)
	return svc, trackingRepo, voucherRepo, auditRepo, notifier
}

func TestExpireOverdueSparesDeadlineDay(t *testing.T) {
	// The deadline lives in a date column at midnight. At 09:00 of the
	// deadline day the row still reads "Vence hoy", so the sweep must not
	// expire it yet.
	deadline := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	svc, trackingRepo, _, _, notifier := sweeperFixture(t, deadline)

	expired, err := svc.ExpireOverdue(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 0, expired)
	require.Equal(t, workflow.ExpiryCutoff(now), trackingRepo.lastCutoff)
	require.Empty(t, notifier.events)

	for _, tr := range trackingRepo.trackings {
		require.Equal(t, string(workflow.TrackingDelivered), tr.Status)
	}

	// The day after, the same row expires.
	expired, err = svc.ExpireOverdue(context.Background(), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, 1, expired)
}

func TestExpireOverdueExpiresTrackingAndVoucher(t *testing.T) {
	deadline := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	svc, trackingRepo, voucherRepo, auditRepo, notifier := sweeperFixture(t, deadline)

	expired, err := svc.ExpireOverdue(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, expired)

	for _, tr := range trackingRepo.trackings {
		require.Equal(t, string(workflow.TrackingOverdue), tr.Status)
		require.True(t, tr.NotificationSent)
	}
	for _, v := range voucherRepo.vouchers {
		require.Equal(t, string(workflow.VoucherOverdue), v.Status)
	}

	require.Equal(t, []string{model.ActionExpireTracking}, notifier.events)
	require.Len(t, auditRepo.entries, 1)
	require.Nil(t, auditRepo.entries[0].UserID)
}

func TestExpireOverdueSkipsVersionRace(t *testing.T) {
	deadline := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	svc, trackingRepo, voucherRepo, auditRepo, notifier := sweeperFixture(t, deadline)
	trackingRepo.loseVersion = true

	// A lost version race is not this sweep's row anymore: no count, no
	// notification, no audit entry. The next sweep re-evaluates it.
	expired, err := svc.ExpireOverdue(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 0, expired)
	require.Empty(t, notifier.events)
	require.Empty(t, auditRepo.entries)

	for _, v := range voucherRepo.vouchers {
		require.Equal(t, string(workflow.VoucherApproved), v.Status)
	}
}
