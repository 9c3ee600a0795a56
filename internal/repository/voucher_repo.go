package repository

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoucherRepository interface {
	Create(ctx context.Context, voucher *model.Voucher) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Voucher, error)
	List(ctx context.Context, status string, applicantID int64, page, limit int) ([]model.Voucher, int64, error)
	UpdateVersioned(ctx context.Context, voucher *model.Voucher, expectedVersion int64) (bool, error)
	NextCorrelative(ctx context.Context) (string, error)
}

type voucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *model.Voucher) error {
	return GetDB(ctx, r.db).Create(voucher).Error
}

func (r *voucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	var voucher model.Voucher
	if err := GetDB(ctx, r.db).First(&voucher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	var voucher model.Voucher
	if err := GetDB(ctx, r.db).
		Preload("CostCenter").
		Preload("Applicant").
		Preload("AreaSignature").
		Preload("Tracking").
		First(&voucher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) List(ctx context.Context, status string, applicantID int64, page, limit int) ([]model.Voucher, int64, error) {
	var vouchers []model.Voucher
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Voucher{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if applicantID > 0 {
		query = query.Where("applicant_id = ?", applicantID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("CostCenter").Preload("Applicant").Preload("AreaSignature").Preload("Tracking")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if applicantID > 0 {
		fetchQuery = fetchQuery.Where("applicant_id = ?", applicantID)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}

	return vouchers, total, nil
}

func (r *voucherRepository) UpdateVersioned(ctx context.Context, voucher *model.Voucher, expectedVersion int64) (bool, error) {
	voucher.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).
		Model(&model.Voucher{}).
		Where("id = ? AND version = ?", voucher.ID, expectedVersion).
		Select("Amount", "Status", "Version", "ActivityToPerform", "CostCenterID", "AreaSignatureID",
			"RequestDate", "DeliveryDate", "JustificationDate", "DecidedByID", "DecidedAt").
		Updates(voucher)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// NextCorrelative generates the next VAL-YYYYMMDD-NNNNN number, serialized
// with an advisory lock so concurrent creations never collide.
func (r *voucherRepository) NextCorrelative(ctx context.Context) (string, error) {
	db := GetDB(ctx, r.db)
	today := time.Now().Format("20060102")
	prefix := "VAL-" + today + "-"

	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return "", fmt.Errorf("failed to acquire correlative lock: %w", err)
	}

	var count int64
	if err := db.Model(&model.Voucher{}).
		Where("correlative LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
