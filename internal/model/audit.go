package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Authorization workflow actions
	ActionAprobarAutorizacion   = "APROBAR_AUTORIZACION"
	ActionRechazarAutorizacion  = "RECHAZAR_AUTORIZACION"
	ActionObservarAutorizacion  = "OBSERVAR_AUTORIZACION"
	ActionRegistrarAutorizacion = "REGISTRAR_AUTORIZACION"
	ActionReabrirAutorizacion   = "REABRIR_AUTORIZACION"

	// Voucher workflow actions
	ActionCreateVoucher   = "CREATE_VOUCHER"
	ActionUpdateVoucher   = "UPDATE_VOUCHER"
	ActionApproveVoucher  = "APPROVE_VOUCHER"
	ActionRejectVoucher   = "REJECT_VOUCHER"
	ActionCompleteVoucher = "COMPLETE_VOUCHER"

	// Tracking / justification actions
	ActionDeliverTracking = "DELIVER_TRACKING"
	ActionRestoreTracking = "RESTORE_TRACKING"
	ActionExpireTracking  = "EXPIRE_TRACKING"
	ActionFileDocument    = "FILE_DOCUMENT"
)

// AuditLog tracks Who, What, and When for every workflow transition
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *int64    `gorm:"index" json:"user_id"` // Nullable for system-triggered transitions (deadline sweeper)
	User       *User     `gorm:"foreignKey:UserID" json:"user"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/correlative)
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
