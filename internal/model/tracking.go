package model

import (
	"time"

	"github.com/google/uuid"
)

// Tracking is the delivery/justification sub-record of a voucher. One per
// voucher. Status holds a workflow.TrackingStatus letter; DeadlineDate mirrors
// the voucher's justification date.
type Tracking struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VoucherID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"voucher_id"`
	Voucher   *Voucher  `gorm:"foreignKey:VoucherID" json:"voucher,omitempty"`
	Status    string    `gorm:"type:varchar(1);not null;default:'P';index" json:"status"`
	Version   int64     `gorm:"not null;default:1" json:"version"`

	DeliveryDate      *time.Time `gorm:"type:date" json:"delivery_date"`      // Actual hand-over date
	DeadlineDate      time.Time  `gorm:"type:date;not null" json:"deadline_date"`
	JustificationDate *time.Time `gorm:"type:date" json:"justification_date"` // Actual filing date

	NotificationSent bool `gorm:"default:false" json:"notification_sent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is the supporting file metadata filed against a tracking to
// justify a delivered voucher. Binary content lives elsewhere; this core keeps
// the reference only.
type Document struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrackingID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tracking_id"`
	Tracking     *Tracking `gorm:"foreignKey:TrackingID" json:"tracking,omitempty"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileURL      string    `gorm:"type:text" json:"file_url"`
	Description  string    `gorm:"type:text" json:"description"`
	UploadedByID *int64    `gorm:"index" json:"uploaded_by_id"`
	UploadedBy   *User     `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
