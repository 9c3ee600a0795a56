package model

import "time"

// Built-in role IDs. IDs 1 and 2 carry implicit workflow capabilities.
const (
	RoleIDAdmin    = 1
	RoleIDJefe     = 2
	RoleIDEmpleado = 3
)

// Role represents a user role with associated permissions. Numeric primary
// keys are part of the contract (rol_id is exchanged in tokens and payloads).
type Role struct {
	ID          int          `gorm:"primaryKey" json:"rol_id"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	IsSystem    bool         `gorm:"default:false" json:"is_system"` // Prevent deletion of built-in roles
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission represents a single permission code that can be assigned to roles
type Permission struct {
	ID    int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code  string `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"` // e.g. "aprobar_solicitud"
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Group string `gorm:"type:varchar(50);not null;index" json:"group"` // "autorizaciones", "asistencia"...
}
