package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/workflow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- DTOs ---

type RoleResponse struct {
	RolID       int      `json:"rol_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permisos    []string `json:"permisos"`
}

type AreaResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	JefeID *int64 `json:"jefe_id"`
}

type CostCenterResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// DictService serves the read-only dictionaries (roles, areas, cost
// centers) and seeds the built-in entries on startup.
type DictService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	ListAreas(ctx context.Context) ([]AreaResponse, error)
	ListCostCenters(ctx context.Context) ([]CostCenterResponse, error)
	SeedDefaults(ctx context.Context) error
}

type dictService struct {
	db *gorm.DB
}

func NewDictService(db *gorm.DB) DictService {
	return &dictService{db: db}
}

// --- Implementation ---

func (s *dictService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	var roles []model.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("id ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		permisos := make([]string, 0, len(r.Permissions))
		for _, p := range r.Permissions {
			permisos = append(permisos, p.Code)
		}
		res = append(res, RoleResponse{
			RolID:       r.ID,
			Name:        r.Name,
			Description: r.Description,
			Permisos:    permisos,
		})
	}
	return res, nil
}

func (s *dictService) ListAreas(ctx context.Context) ([]AreaResponse, error) {
	var areas []model.Area
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&areas).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch areas: %w", err)
	}

	res := make([]AreaResponse, 0, len(areas))
	for _, a := range areas {
		res = append(res, AreaResponse{
			ID:     a.ID.String(),
			Code:   a.Code,
			Name:   a.Name,
			JefeID: a.JefeID,
		})
	}
	return res, nil
}

func (s *dictService) ListCostCenters(ctx context.Context) ([]CostCenterResponse, error) {
	var centers []model.CostCenter
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("code ASC").Find(&centers).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cost centers: %w", err)
	}

	res := make([]CostCenterResponse, 0, len(centers))
	for _, c := range centers {
		res = append(res, CostCenterResponse{
			ID:     c.ID.String(),
			Code:   c.Code,
			Name:   c.Name,
			Active: c.Active,
		})
	}
	return res, nil
}

// SeedDefaults inserts the built-in roles and permission codes. Idempotent:
// existing rows are left untouched.
func (s *dictService) SeedDefaults(ctx context.Context) error {
	permissions := []model.Permission{
		{Code: workflow.PermAprobarSolicitud, Name: "Aprobar solicitudes propias del área", Group: "autorizaciones"},
		{Code: workflow.PermAprobarArea, Name: "Aprobar solicitudes de cualquier área asignada", Group: "autorizaciones"},
		{Code: workflow.PermAprobarTodas, Name: "Aprobar todas las solicitudes", Group: "autorizaciones"},
		{Code: workflow.PermRegistrarAsistencia, Name: "Registrar en el sistema de asistencia", Group: "asistencia"},
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&permissions).Error; err != nil {
			return fmt.Errorf("failed to seed permissions: %w", err)
		}

		roles := []model.Role{
			{ID: model.RoleIDAdmin, Name: "admin", Description: "Administrador del sistema", IsSystem: true},
			{ID: model.RoleIDJefe, Name: "jefe", Description: "Jefe de área", IsSystem: true},
			{ID: model.RoleIDEmpleado, Name: "empleado", Description: "Empleado sin capacidades de gestión", IsSystem: true},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
			return fmt.Errorf("failed to seed roles: %w", err)
		}

		return nil
	})
}
