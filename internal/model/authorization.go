package model

import (
	"time"

	"github.com/google/uuid"
)

// Authorization tracks the approval lifecycle of one boleta. Estado holds a
// workflow.AuthorizationState string; Version guards against concurrent
// transitions (stale writes are rejected).
type Authorization struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BoletaID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"boleta_id"`
	AreaID   uuid.UUID `gorm:"type:uuid;not null;index" json:"area_id"`
	Area     *Area     `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Estado   string    `gorm:"type:varchar(30);not null;default:'Pendiente Jefe';index" json:"estado"`
	Version  int64     `gorm:"not null;default:1" json:"version"`

	JefeID  *int64 `gorm:"index" json:"jefe_id"`
	Jefe    *User  `gorm:"foreignKey:JefeID" json:"jefe,omitempty"`
	AdminID *int64 `gorm:"index" json:"admin_id"`
	Admin   *User  `gorm:"foreignKey:AdminID" json:"admin,omitempty"`

	ComentarioJefe  string `gorm:"type:text" json:"comentario_jefe"`
	ComentarioAdmin string `gorm:"type:text" json:"comentario_admin"`

	Observaciones []Observacion `gorm:"foreignKey:AuthorizationID;constraint:OnDelete:CASCADE" json:"observaciones"`

	FechaAutorizacionJefe *time.Time `json:"fecha_autorizacion_jefe"`
	FechaRegistroAdmin    *time.Time `json:"fecha_registro_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Observacion is one categorized remark recorded when a boleta is rejected or
// observed.
type Observacion struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AuthorizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"authorization_id"`
	Tipo            string    `gorm:"type:varchar(50);not null" json:"tipo_observacion"`
	Descripcion     string    `gorm:"type:text;not null" json:"descripcion_observacion"`
	CreatedAt       time.Time `json:"created_at"`
}
