package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrackingRepository interface {
	Create(ctx context.Context, tracking *model.Tracking) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tracking, error)
	FindByVoucherID(ctx context.Context, voucherID uuid.UUID) (*model.Tracking, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Tracking, int64, error)
	// ListExpirable returns delivered trackings whose deadline falls strictly
	// before cutoff. The sweeper passes a day-truncated cutoff, so a deadline
	// of today never matches.
	ListExpirable(ctx context.Context, cutoff time.Time) ([]model.Tracking, error)
	UpdateVersioned(ctx context.Context, tracking *model.Tracking, expectedVersion int64) (bool, error)
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) Create(ctx context.Context, tracking *model.Tracking) error {
	return GetDB(ctx, r.db).Create(tracking).Error
}

func (r *trackingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tracking, error) {
	var tracking model.Tracking
	if err := GetDB(ctx, r.db).Preload("Voucher").First(&tracking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (r *trackingRepository) FindByVoucherID(ctx context.Context, voucherID uuid.UUID) (*model.Tracking, error) {
	var tracking model.Tracking
	if err := GetDB(ctx, r.db).First(&tracking, "voucher_id = ?", voucherID).Error; err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (r *trackingRepository) List(ctx context.Context, status string, page, limit int) ([]model.Tracking, int64, error) {
	var trackings []model.Tracking
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Tracking{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Voucher").Preload("Voucher.Applicant")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("deadline_date ASC").Offset(offset).Limit(limit).Find(&trackings).Error; err != nil {
		return nil, 0, err
	}

	return trackings, total, nil
}

func (r *trackingRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]model.Tracking, error) {
	var trackings []model.Tracking
	err := GetDB(ctx, r.db).
		Where("status = ? AND deadline_date < ?", "D", cutoff).
		Find(&trackings).Error
	return trackings, err
}

func (r *trackingRepository) UpdateVersioned(ctx context.Context, tracking *model.Tracking, expectedVersion int64) (bool, error) {
	tracking.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).
		Model(&model.Tracking{}).
		Where("id = ? AND version = ?", tracking.ID, expectedVersion).
		Select("Status", "Version", "DeliveryDate", "DeadlineDate", "JustificationDate", "NotificationSent").
		Updates(tracking)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
