package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Voucher is a provisional cash advance request. Status holds a
// workflow.VoucherStatus letter; JustificationDate is always derived from
// DeliveryDate and rewritten whenever the delivery date changes.
type Voucher struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Correlative string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"correlative"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status      string          `gorm:"type:varchar(1);not null;default:'P';index" json:"status"`
	Version     int64           `gorm:"not null;default:1" json:"version"`

	ActivityToPerform string `gorm:"type:varchar(500);not null" json:"activity_to_perform"`

	CostCenterID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"cost_center_id"`
	CostCenter      *CostCenter `gorm:"foreignKey:CostCenterID" json:"cost_center,omitempty"`
	ApplicantID     int64       `gorm:"not null;index" json:"applicant_id"`
	Applicant       *User       `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	AreaSignatureID uuid.UUID   `gorm:"type:uuid;not null;index" json:"area_signature_id"`
	AreaSignature   *Area       `gorm:"foreignKey:AreaSignatureID" json:"area_signature,omitempty"`

	RequestDate       time.Time `gorm:"type:date;not null" json:"request_date"`
	DeliveryDate      time.Time `gorm:"type:date;not null" json:"delivery_date"`
	JustificationDate time.Time `gorm:"type:date;not null" json:"justification_date"` // delivery_date + grace days

	DecidedByID *int64     `json:"decided_by_id"`
	DecidedBy   *User      `gorm:"foreignKey:DecidedByID" json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at"`

	Tracking *Tracking `gorm:"foreignKey:VoucherID" json:"tracking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
