package workflow

import (
	"fmt"
	"strings"
)

// AuthorizationState is the closed set of states a boleta authorization can be in.
// Unknown backend strings are rejected at the boundary via ParseAuthorizationState
// instead of being tolerated with substring checks.
type AuthorizationState string

const (
	EstadoPendienteJefe     AuthorizationState = "Pendiente Jefe"
	EstadoPendienteRegistro AuthorizationState = "Pendiente Registro"
	EstadoRegistrado        AuthorizationState = "Registrado"
	EstadoRechazado         AuthorizationState = "Rechazado"
	EstadoObservada         AuthorizationState = "Observada"
)

// ParseAuthorizationState maps a stored estado string to its state, case-insensitively.
func ParseAuthorizationState(s string) (AuthorizationState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pendiente jefe":
		return EstadoPendienteJefe, nil
	case "pendiente registro":
		return EstadoPendienteRegistro, nil
	case "registrado":
		return EstadoRegistrado, nil
	case "rechazado":
		return EstadoRechazado, nil
	case "observada":
		return EstadoObservada, nil
	default:
		return "", fmt.Errorf("unknown authorization estado: %q", s)
	}
}

// IsPending reports whether the authorization still awaits some actor's action.
// Total over the closed enum: only Registrado and Rechazado are settled.
func (s AuthorizationState) IsPending() bool {
	switch s {
	case EstadoPendienteJefe, EstadoPendienteRegistro, EstadoObservada:
		return true
	default:
		return false
	}
}

// IsPendienteJefe reports whether the jefe decision (aprobar/rechazar/observar)
// is still available.
func (s AuthorizationState) IsPendienteJefe() bool {
	return s == EstadoPendienteJefe
}

// IsTerminal reports whether no further transition is defined from the state.
func (s AuthorizationState) IsTerminal() bool {
	return s == EstadoRegistrado || s == EstadoRechazado
}

// VoucherStatus is the single-letter lifecycle status of a provisional voucher.
type VoucherStatus string

const (
	VoucherPending   VoucherStatus = "P"
	VoucherApproved  VoucherStatus = "A"
	VoucherRejected  VoucherStatus = "R"
	VoucherJustified VoucherStatus = "J"
	VoucherOverdue   VoucherStatus = "O"
	VoucherCompleted VoucherStatus = "C"
)

func ParseVoucherStatus(s string) (VoucherStatus, error) {
	switch VoucherStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case VoucherPending, VoucherApproved, VoucherRejected, VoucherJustified, VoucherOverdue, VoucherCompleted:
		return VoucherStatus(strings.ToUpper(strings.TrimSpace(s))), nil
	default:
		return "", fmt.Errorf("unknown voucher status: %q", s)
	}
}

// TrackingStatus is the delivery/justification sub-phase status of a voucher tracking.
type TrackingStatus string

const (
	TrackingPendingDelivery TrackingStatus = "P"
	TrackingDelivered       TrackingStatus = "D"
	TrackingJustified       TrackingStatus = "J"
	TrackingOverdue         TrackingStatus = "O"
	TrackingCompleted       TrackingStatus = "C"
)

func ParseTrackingStatus(s string) (TrackingStatus, error) {
	switch TrackingStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case TrackingPendingDelivery, TrackingDelivered, TrackingJustified, TrackingOverdue, TrackingCompleted:
		return TrackingStatus(strings.ToUpper(strings.TrimSpace(s))), nil
	default:
		return "", fmt.Errorf("unknown tracking status: %q", s)
	}
}

// TipoObservacion is the fixed enumeration of observation categories a jefe can
// attach when rejecting or observing a boleta.
const (
	TipoDocumentoIncompleto       = "DOCUMENTO_INCOMPLETO"
	TipoDocumentoIlegible         = "DOCUMENTO_ILEGIBLE"
	TipoFechaInvalida             = "FECHA_INVALIDA"
	TipoHorarioConflicto          = "HORARIO_CONFLICTO"
	TipoJustificacionInsuficiente = "JUSTIFICACION_INSUFICIENTE"
	TipoOtro                      = "OTRO"
)

var tiposObservacion = map[string]bool{
	TipoDocumentoIncompleto:       true,
	TipoDocumentoIlegible:         true,
	TipoFechaInvalida:             true,
	TipoHorarioConflicto:          true,
	TipoJustificacionInsuficiente: true,
	TipoOtro:                      true,
}

// ValidTipoObservacion reports whether tipo belongs to the fixed enumeration.
func ValidTipoObservacion(tipo string) bool {
	return tiposObservacion[tipo]
}
