package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/workflow"

	"github.com/google/uuid"
)

// Notifier pushes workflow events to connected clients. Satisfied by the
// websocket hub; nil-safe via the noop implementation in main.
type Notifier interface {
	BroadcastEvent(event string, payload interface{})
}

// --- DTOs ---

type ObservacionDTO struct {
	Tipo        string `json:"tipo_observacion" binding:"required"`
	Descripcion string `json:"descripcion_observacion"`
}

type DecisionJefeRequest struct {
	IDSolicitud   string           `json:"id_solicitud" binding:"required"`
	Version       int64            `json:"version" binding:"required"`
	Comentario    string           `json:"comentario_general"`
	Observaciones []ObservacionDTO `json:"observaciones"`
}

type RegistrarRequest struct {
	AdminID    int64  `json:"admin_id" binding:"required"`
	Version    int64  `json:"version" binding:"required"`
	Comentario string `json:"comentario_admin"`
}

type ReabrirRequest struct {
	Version int64 `json:"version" binding:"required"`
}

type AuthorizationResponse struct {
	ID                    string           `json:"id"`
	BoletaID              string           `json:"boleta_id"`
	AreaID                string           `json:"area_id"`
	Estado                string           `json:"estado"`
	Pendiente             bool             `json:"pendiente"`
	Version               int64            `json:"version"`
	JefeID                *int64           `json:"jefe_id"`
	JefeName              string           `json:"jefe_name,omitempty"`
	AdminID               *int64           `json:"admin_id"`
	AdminName             string           `json:"admin_name,omitempty"`
	ComentarioJefe        string           `json:"comentario_jefe"`
	ComentarioAdmin       string           `json:"comentario_admin"`
	Observaciones         []ObservacionDTO `json:"observaciones"`
	FechaAutorizacionJefe *string          `json:"fecha_autorizacion_jefe"`
	FechaRegistroAdmin    *string          `json:"fecha_registro_admin"`
	CreatedAt             string           `json:"created_at"`
}

// --- Interface ---

type AuthorizationService interface {
	List(ctx context.Context, estado string, page, limit int) ([]AuthorizationResponse, int64, error)
	ListPendientesJefe(ctx context.Context, jefeID int64) ([]AuthorizationResponse, error)
	Aprobar(ctx context.Context, actor workflow.Actor, req DecisionJefeRequest) (AuthorizationResponse, error)
	Rechazar(ctx context.Context, actor workflow.Actor, req DecisionJefeRequest) (AuthorizationResponse, error)
	Observar(ctx context.Context, actor workflow.Actor, req DecisionJefeRequest) (AuthorizationResponse, error)
	Registrar(ctx context.Context, actor workflow.Actor, id string, req RegistrarRequest) (AuthorizationResponse, error)
	Reabrir(ctx context.Context, actor workflow.Actor, id string, req ReabrirRequest) (AuthorizationResponse, error)
}

type authorizationService struct {
	authRepo  repository.AuthorizationRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
}

func NewAuthorizationService(
	authRepo repository.AuthorizationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) AuthorizationService {
	return &authorizationService{
		authRepo:  authRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

// --- Implementation ---

func (s *authorizationService) List(ctx context.Context, estado string, page, limit int) ([]AuthorizationResponse, int64, error) {
	if estado != "" {
		parsed, err := workflow.ParseAuthorizationState(estado)
		if err != nil {
			return nil, 0, workflow.NewValidationError("estado", "%v", err)
		}
		estado = string(parsed)
	}

	auths, total, err := s.authRepo.List(ctx, estado, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch authorizations: %w", err)
	}

	result := make([]AuthorizationResponse, 0, len(auths))
	for _, a := range auths {
		result = append(result, toAuthorizationResponse(a))
	}
	return result, total, nil
}

func (s *authorizationService) ListPendientesJefe(ctx context.Context, jefeID int64) ([]AuthorizationResponse, error) {
	auths, err := s.authRepo.ListPendientesJefe(ctx, jefeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending authorizations: %w", err)
	}

	result := make([]AuthorizationResponse, 0, len(auths))
	for _, a := range auths {
		result = append(result, toAuthorizationResponse(a))
	}
	return result, nil
}

func (s *authorizationService) Aprobar(ctx context.Context, actor workflow.Actor, req DecisionJefeRequest) (AuthorizationResponse, error) {
	return s.decideJefe(ctx, actor, req, model.ActionAprobarAutorizacion,
		func(state workflow.AuthorizationState) (workflow.AuthorizationState, error) {
			return workflow.Aprobar(state, workflow.AprobarInput{Actor: actor, Comentario: req.Comentario})
		})
}

func (s *authorizationService) Rechazar(ctx context.Context, actor workflow.Actor, req DecisionJefeRequest) (AuthorizationResponse, error) {
	return s.decideJefe(ctx, actor, req, model.ActionRechazarAutorizacion,
		func(state workflow.AuthorizationState) (workflow.AuthorizationState, error) {
			return workflow.Rechazar(state, workflow.RechazarInput{
				Actor:         actor,
				Comentario:    req.Comentario,
				Observaciones: toWorkflowObservaciones(req.Observaciones),
			})
		})
}

func (s *authorizationService) Observar(ctx context.Context, actor workflow.Actor, req DecisionJefeRequest) (AuthorizationResponse, error) {
	return s.decideJefe(ctx, actor, req, model.ActionObservarAutorizacion,
		func(state workflow.AuthorizationState) (workflow.AuthorizationState, error) {
			return workflow.Observar(state, workflow.ObservarInput{
				Actor:         actor,
				Observaciones: toWorkflowObservaciones(req.Observaciones),
			})
		})
}

// decideJefe runs one jefe decision: validate locally via the workflow rules,
// then persist the transition, its observaciones and the audit entry in a
// single transaction guarded by the request's last-seen version.
func (s *authorizationService) decideJefe(
	ctx context.Context,
	actor workflow.Actor,
	req DecisionJefeRequest,
	action string,
	transition func(workflow.AuthorizationState) (workflow.AuthorizationState, error),
) (AuthorizationResponse, error) {
	authID, err := uuid.Parse(req.IDSolicitud)
	if err != nil {
		return AuthorizationResponse{}, workflow.NewValidationError("id_solicitud", "invalid authorization id: %v", err)
	}

	var result AuthorizationResponse
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		auth, findErr := s.authRepo.FindByID(txCtx, authID)
		if findErr != nil {
			return fmt.Errorf("authorization not found: %w", findErr)
		}

		state, parseErr := workflow.ParseAuthorizationState(auth.Estado)
		if parseErr != nil {
			return fmt.Errorf("stored estado is invalid: %w", parseErr)
		}

		next, trErr := transition(state)
		if trErr != nil {
			return trErr
		}

		now := time.Now()
		auth.Estado = string(next)
		auth.JefeID = &actor.ID
		auth.ComentarioJefe = req.Comentario
		auth.FechaAutorizacionJefe = &now

		ok, updErr := s.authRepo.UpdateVersioned(txCtx, auth, req.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update authorization: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{
				Entity:          "authorization",
				ID:              auth.ID.String(),
				ExpectedVersion: req.Version,
				ActualVersion:   auth.Version,
			}
		}

		if len(req.Observaciones) > 0 {
			obs := make([]model.Observacion, 0, len(req.Observaciones))
			for _, o := range req.Observaciones {
				obs = append(obs, model.Observacion{
					AuthorizationID: auth.ID,
					Tipo:            o.Tipo,
					Descripcion:     o.Descripcion,
				})
			}
			if obsErr := s.authRepo.AddObservaciones(txCtx, obs); obsErr != nil {
				return fmt.Errorf("failed to store observaciones: %w", obsErr)
			}
		}

		if auditErr := s.writeAudit(txCtx, &actor.ID, action, auth, map[string]interface{}{
			"estado":     auth.Estado,
			"comentario": req.Comentario,
		}); auditErr != nil {
			return auditErr
		}

		return nil
	})
	if err != nil {
		return AuthorizationResponse{}, err
	}

	reloaded, err := s.authRepo.FindByIDWithRelations(ctx, authID)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("failed to reload authorization: %w", err)
	}
	result = toAuthorizationResponse(*reloaded)

	s.notifier.BroadcastEvent(action, result)
	return result, nil
}

func (s *authorizationService) Registrar(ctx context.Context, actor workflow.Actor, id string, req RegistrarRequest) (AuthorizationResponse, error) {
	authID, err := uuid.Parse(id)
	if err != nil {
		return AuthorizationResponse{}, workflow.NewValidationError("id", "invalid authorization id: %v", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		auth, findErr := s.authRepo.FindByID(txCtx, authID)
		if findErr != nil {
			return fmt.Errorf("authorization not found: %w", findErr)
		}

		state, parseErr := workflow.ParseAuthorizationState(auth.Estado)
		if parseErr != nil {
			return fmt.Errorf("stored estado is invalid: %w", parseErr)
		}

		next, trErr := workflow.Registrar(state, workflow.RegistrarInput{
			Actor:      actor,
			AdminID:    req.AdminID,
			Comentario: req.Comentario,
		})
		if trErr != nil {
			return trErr
		}

		now := time.Now()
		auth.Estado = string(next)
		auth.AdminID = &req.AdminID
		auth.ComentarioAdmin = workflow.RegistroComentario(req.Comentario)
		auth.FechaRegistroAdmin = &now

		ok, updErr := s.authRepo.UpdateVersioned(txCtx, auth, req.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update authorization: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{
				Entity:          "authorization",
				ID:              auth.ID.String(),
				ExpectedVersion: req.Version,
				ActualVersion:   auth.Version,
			}
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionRegistrarAutorizacion, auth, map[string]interface{}{
			"admin_id":   req.AdminID,
			"comentario": auth.ComentarioAdmin,
		})
	})
	if err != nil {
		return AuthorizationResponse{}, err
	}

	reloaded, err := s.authRepo.FindByIDWithRelations(ctx, authID)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("failed to reload authorization: %w", err)
	}
	result := toAuthorizationResponse(*reloaded)

	s.notifier.BroadcastEvent(model.ActionRegistrarAutorizacion, result)
	return result, nil
}

func (s *authorizationService) Reabrir(ctx context.Context, actor workflow.Actor, id string, req ReabrirRequest) (AuthorizationResponse, error) {
	authID, err := uuid.Parse(id)
	if err != nil {
		return AuthorizationResponse{}, workflow.NewValidationError("id", "invalid authorization id: %v", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		auth, findErr := s.authRepo.FindByID(txCtx, authID)
		if findErr != nil {
			return fmt.Errorf("authorization not found: %w", findErr)
		}

		state, parseErr := workflow.ParseAuthorizationState(auth.Estado)
		if parseErr != nil {
			return fmt.Errorf("stored estado is invalid: %w", parseErr)
		}

		next, trErr := workflow.Reabrir(state, actor)
		if trErr != nil {
			return trErr
		}

		// Back in the jefe queue: the previous decision no longer applies.
		auth.Estado = string(next)
		auth.JefeID = nil
		auth.ComentarioJefe = ""
		auth.FechaAutorizacionJefe = nil

		ok, updErr := s.authRepo.UpdateVersioned(txCtx, auth, req.Version)
		if updErr != nil {
			return fmt.Errorf("failed to update authorization: %w", updErr)
		}
		if !ok {
			return &workflow.ConflictError{
				Entity:          "authorization",
				ID:              auth.ID.String(),
				ExpectedVersion: req.Version,
				ActualVersion:   auth.Version,
			}
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionReabrirAutorizacion, auth, nil)
	})
	if err != nil {
		return AuthorizationResponse{}, err
	}

	reloaded, err := s.authRepo.FindByIDWithRelations(ctx, authID)
	if err != nil {
		return AuthorizationResponse{}, fmt.Errorf("failed to reload authorization: %w", err)
	}
	result := toAuthorizationResponse(*reloaded)

	s.notifier.BroadcastEvent(model.ActionReabrirAutorizacion, result)
	return result, nil
}

func (s *authorizationService) writeAudit(ctx context.Context, userID *int64, action string, auth *model.Authorization, extra map[string]interface{}) error {
	details, _ := json.Marshal(extra)
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   auth.ID.String(),
		EntityName: "autorizacion",
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// --- Helpers ---

func toWorkflowObservaciones(dtos []ObservacionDTO) []workflow.Observacion {
	obs := make([]workflow.Observacion, 0, len(dtos))
	for _, o := range dtos {
		obs = append(obs, workflow.Observacion{Tipo: o.Tipo, Descripcion: o.Descripcion})
	}
	return obs
}

func toAuthorizationResponse(a model.Authorization) AuthorizationResponse {
	state, err := workflow.ParseAuthorizationState(a.Estado)
	pendiente := err == nil && state.IsPending()

	resp := AuthorizationResponse{
		ID:              a.ID.String(),
		BoletaID:        a.BoletaID.String(),
		AreaID:          a.AreaID.String(),
		Estado:          a.Estado,
		Pendiente:       pendiente,
		Version:         a.Version,
		JefeID:          a.JefeID,
		AdminID:         a.AdminID,
		ComentarioJefe:  a.ComentarioJefe,
		ComentarioAdmin: a.ComentarioAdmin,
		Observaciones:   make([]ObservacionDTO, 0, len(a.Observaciones)),
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}

	for _, o := range a.Observaciones {
		resp.Observaciones = append(resp.Observaciones, ObservacionDTO{
			Tipo:        o.Tipo,
			Descripcion: o.Descripcion,
		})
	}

	if a.Jefe != nil {
		resp.JefeName = a.Jefe.Username
	}
	if a.Admin != nil {
		resp.AdminName = a.Admin.Username
	}
	if a.FechaAutorizacionJefe != nil {
		s := a.FechaAutorizacionJefe.Format(time.RFC3339)
		resp.FechaAutorizacionJefe = &s
	}
	if a.FechaRegistroAdmin != nil {
		s := a.FechaRegistroAdmin.Format(time.RFC3339)
		resp.FechaRegistroAdmin = &s
	}

	return resp
}
