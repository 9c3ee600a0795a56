package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthorizationRepository interface {
	Create(ctx context.Context, auth *model.Authorization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Authorization, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Authorization, error)
	List(ctx context.Context, estado string, page, limit int) ([]model.Authorization, int64, error)
	ListPendientesJefe(ctx context.Context, jefeID int64) ([]model.Authorization, error)
	// UpdateVersioned persists the mutated fields only if the stored version
	// still matches expectedVersion, bumping the version atomically. Returns
	// false when the row was changed concurrently.
	UpdateVersioned(ctx context.Context, auth *model.Authorization, expectedVersion int64) (bool, error)
	AddObservaciones(ctx context.Context, obs []model.Observacion) error
}

type authorizationRepository struct {
	db *gorm.DB
}

func NewAuthorizationRepository(db *gorm.DB) AuthorizationRepository {
	return &authorizationRepository{db: db}
}

func (r *authorizationRepository) Create(ctx context.Context, auth *model.Authorization) error {
	return GetDB(ctx, r.db).Create(auth).Error
}

func (r *authorizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Authorization, error) {
	var auth model.Authorization
	if err := GetDB(ctx, r.db).First(&auth, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &auth, nil
}

func (r *authorizationRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Authorization, error) {
	var auth model.Authorization
	if err := GetDB(ctx, r.db).
		Preload("Jefe").
		Preload("Admin").
		Preload("Observaciones").
		First(&auth, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &auth, nil
}

func (r *authorizationRepository) List(ctx context.Context, estado string, page, limit int) ([]model.Authorization, int64, error) {
	var auths []model.Authorization
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Authorization{})
	if estado != "" {
		query = query.Where("estado = ?", estado)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Jefe").Preload("Admin").Preload("Observaciones")
	if estado != "" {
		fetchQuery = fetchQuery.Where("estado = ?", estado)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&auths).Error; err != nil {
		return nil, 0, err
	}

	return auths, total, nil
}

func (r *authorizationRepository) ListPendientesJefe(ctx context.Context, jefeID int64) ([]model.Authorization, error) {
	// Boletas awaiting the jefe decision in the areas the user supervises.
	var auths []model.Authorization
	err := GetDB(ctx, r.db).
		Preload("Observaciones").
		Where("estado = ?", "Pendiente Jefe").
		Where("area_id IN (SELECT id FROM areas WHERE jefe_id = ?)", jefeID).
		Order("created_at ASC").
		Find(&auths).Error
	return auths, err
}

func (r *authorizationRepository) UpdateVersioned(ctx context.Context, auth *model.Authorization, expectedVersion int64) (bool, error) {
	auth.Version = expectedVersion + 1
	res := GetDB(ctx, r.db).
		Model(&model.Authorization{}).
		Where("id = ? AND version = ?", auth.ID, expectedVersion).
		Select("Estado", "Version", "JefeID", "AdminID", "ComentarioJefe", "ComentarioAdmin",
			"FechaAutorizacionJefe", "FechaRegistroAdmin").
		Updates(auth)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *authorizationRepository) AddObservaciones(ctx context.Context, obs []model.Observacion) error {
	if len(obs) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&obs).Error
}
