package workflow

import (
	"strings"

	"github.com/im-adarsh/go-statemachine/statemachine"
)

// ComentarioRegistroDefault is stored when the registrar provides no comment.
const ComentarioRegistroDefault = "Registrado en sistema de asistencia"

// Observacion is one categorized remark attached to a rechazo or observación.
type Observacion struct {
	Tipo        string
	Descripcion string
}

// AprobarInput carries the data for a jefe approval.
type AprobarInput struct {
	Actor      Actor
	Comentario string // optional
}

// RechazarInput carries the data for a jefe rejection.
type RechazarInput struct {
	Actor         Actor
	Comentario    string
	Observaciones []Observacion
}

// ObservarInput carries the data to flag a boleta as observed.
type ObservarInput struct {
	Actor         Actor
	Observaciones []Observacion
}

// RegistrarInput carries the data to register an approved boleta.
type RegistrarInput struct {
	Actor      Actor
	AdminID    int64
	Comentario string // defaults to ComentarioRegistroDefault
}

func validateObservaciones(obs []Observacion) error {
	if len(obs) == 0 {
		return NewValidationError("observaciones", "se requiere al menos una observación")
	}
	for _, o := range obs {
		if !ValidTipoObservacion(o.Tipo) {
			return NewValidationError("observaciones", "tipo de observación inválido: %q", o.Tipo)
		}
		if strings.TrimSpace(o.Descripcion) == "" {
			return NewValidationError("observaciones", "la descripción de la observación no puede estar vacía")
		}
	}
	return nil
}

// Aprobar validates the approval preconditions and returns the next state.
// All checks run locally; nothing is persisted here.
func Aprobar(state AuthorizationState, in AprobarInput) (AuthorizationState, error) {
	if !in.Actor.CanGestionar() {
		return state, &CapabilityError{ActorID: in.Actor.ID, Capability: "gestionar"}
	}
	next, err := fire(authorizationMachine, "authorization", statemachine.State(state), EventAprobar)
	if err != nil {
		return state, err
	}
	return AuthorizationState(next), nil
}

// Rechazar validates the rejection preconditions and returns the next state.
// Requires a non-empty comentario and at least one valid observación.
func Rechazar(state AuthorizationState, in RechazarInput) (AuthorizationState, error) {
	if !in.Actor.CanGestionar() {
		return state, &CapabilityError{ActorID: in.Actor.ID, Capability: "gestionar"}
	}
	if strings.TrimSpace(in.Comentario) == "" {
		return state, NewValidationError("comentario", "el comentario es obligatorio para rechazar")
	}
	if err := validateObservaciones(in.Observaciones); err != nil {
		return state, err
	}
	next, err := fire(authorizationMachine, "authorization", statemachine.State(state), EventRechazar)
	if err != nil {
		return state, err
	}
	return AuthorizationState(next), nil
}

// Observar validates the observation preconditions and returns the next state.
// No comentario is required, only observaciones.
func Observar(state AuthorizationState, in ObservarInput) (AuthorizationState, error) {
	if !in.Actor.CanGestionar() {
		return state, &CapabilityError{ActorID: in.Actor.ID, Capability: "gestionar"}
	}
	if err := validateObservaciones(in.Observaciones); err != nil {
		return state, err
	}
	next, err := fire(authorizationMachine, "authorization", statemachine.State(state), EventObservar)
	if err != nil {
		return state, err
	}
	return AuthorizationState(next), nil
}

// Registrar validates the registration preconditions and returns the next
// state. Only allowed from Pendiente Registro, regardless of capability.
func Registrar(state AuthorizationState, in RegistrarInput) (AuthorizationState, error) {
	if !in.Actor.CanRegistrar() {
		return state, &CapabilityError{ActorID: in.Actor.ID, Capability: "registrar"}
	}
	if in.AdminID <= 0 {
		return state, NewValidationError("admin_id", "se requiere un identificador de administrador válido")
	}
	next, err := fire(authorizationMachine, "authorization", statemachine.State(state), EventRegistrar)
	if err != nil {
		return state, err
	}
	return AuthorizationState(next), nil
}

// RegistroComentario returns the comment to store for a registration.
func RegistroComentario(comentario string) string {
	if strings.TrimSpace(comentario) == "" {
		return ComentarioRegistroDefault
	}
	return comentario
}

// Reabrir returns a corrected Observada boleta to the jefe queue. Any
// authenticated actor may trigger it; the boleta re-enters review on the same
// record.
func Reabrir(state AuthorizationState, actor Actor) (AuthorizationState, error) {
	next, err := fire(authorizationMachine, "authorization", statemachine.State(state), EventReabrir)
	if err != nil {
		return state, err
	}
	return AuthorizationState(next), nil
}
