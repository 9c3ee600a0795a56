package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	jefe     = Actor{ID: 2, RolID: RolJefe}
	admin    = Actor{ID: 1, RolID: RolAdmin}
	empleado = Actor{ID: 3, RolID: 3, Permisos: []string{}}
)

func validObservaciones() []Observacion {
	return []Observacion{{Tipo: TipoDocumentoIncompleto, Descripcion: "Falta el anexo firmado"}}
}

func TestAprobar(t *testing.T) {
	next, err := Aprobar(EstadoPendienteJefe, AprobarInput{Actor: jefe})
	require.NoError(t, err)
	require.Equal(t, EstadoPendienteRegistro, next)

	// Comentario is optional
	next, err = Aprobar(EstadoPendienteJefe, AprobarInput{Actor: admin, Comentario: "Conforme"})
	require.NoError(t, err)
	require.Equal(t, EstadoPendienteRegistro, next)
}

func TestAprobarRequiresCapability(t *testing.T) {
	_, err := Aprobar(EstadoPendienteJefe, AprobarInput{Actor: empleado})
	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, int64(3), capErr.ActorID)
}

func TestAprobarOnlyFromPendienteJefe(t *testing.T) {
	for _, state := range []AuthorizationState{EstadoPendienteRegistro, EstadoRegistrado, EstadoRechazado, EstadoObservada} {
		got, err := Aprobar(state, AprobarInput{Actor: jefe})
		var trErr *TransitionError
		require.ErrorAs(t, err, &trErr, "state %s", state)
		require.Equal(t, state, got, "state must be untouched on failure")
	}
}

func TestRechazar(t *testing.T) {
	next, err := Rechazar(EstadoPendienteJefe, RechazarInput{
		Actor:         jefe,
		Comentario:    "Documentación incompleta",
		Observaciones: validObservaciones(),
	})
	require.NoError(t, err)
	require.Equal(t, EstadoRechazado, next)
}

func TestRechazarValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    RechazarInput
		field string
	}{
		{
			name:  "empty comentario",
			in:    RechazarInput{Actor: jefe, Comentario: "", Observaciones: validObservaciones()},
			field: "comentario",
		},
		{
			name:  "whitespace comentario",
			in:    RechazarInput{Actor: jefe, Comentario: "   ", Observaciones: validObservaciones()},
			field: "comentario",
		},
		{
			name:  "no observaciones",
			in:    RechazarInput{Actor: jefe, Comentario: "Rechazada", Observaciones: nil},
			field: "observaciones",
		},
		{
			name: "unknown tipo",
			in: RechazarInput{Actor: jefe, Comentario: "Rechazada",
				Observaciones: []Observacion{{Tipo: "INVENTADO", Descripcion: "x"}}},
			field: "observaciones",
		},
		{
			name: "empty descripcion",
			in: RechazarInput{Actor: jefe, Comentario: "Rechazada",
				Observaciones: []Observacion{{Tipo: TipoOtro, Descripcion: "  "}}},
			field: "observaciones",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rechazar(EstadoPendienteJefe, tt.in)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tt.field, vErr.Field)
			require.Equal(t, EstadoPendienteJefe, got)
		})
	}
}

func TestObservar(t *testing.T) {
	next, err := Observar(EstadoPendienteJefe, ObservarInput{Actor: jefe, Observaciones: validObservaciones()})
	require.NoError(t, err)
	require.Equal(t, EstadoObservada, next)

	// No comentario required, but observaciones are
	_, err = Observar(EstadoPendienteJefe, ObservarInput{Actor: jefe})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "observaciones", vErr.Field)
}

func TestRegistrar(t *testing.T) {
	next, err := Registrar(EstadoPendienteRegistro, RegistrarInput{Actor: admin, AdminID: 1})
	require.NoError(t, err)
	require.Equal(t, EstadoRegistrado, next)
}

func TestRegistrarPreconditions(t *testing.T) {
	// Capability required
	_, err := Registrar(EstadoPendienteRegistro, RegistrarInput{Actor: jefe, AdminID: 2})
	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)

	// admin_id must be a valid identifier
	_, err = Registrar(EstadoPendienteRegistro, RegistrarInput{Actor: admin, AdminID: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "admin_id", vErr.Field)

	// Wrong state is rejected regardless of capability
	for _, state := range []AuthorizationState{EstadoPendienteJefe, EstadoRegistrado, EstadoRechazado, EstadoObservada} {
		_, err = Registrar(state, RegistrarInput{Actor: admin, AdminID: 1})
		var trErr *TransitionError
		require.ErrorAs(t, err, &trErr, "state %s", state)
	}
}

func TestRegistroComentario(t *testing.T) {
	require.Equal(t, ComentarioRegistroDefault, RegistroComentario(""))
	require.Equal(t, ComentarioRegistroDefault, RegistroComentario("   "))
	require.Equal(t, "Registrado manualmente", RegistroComentario("Registrado manualmente"))
}

func TestReabrir(t *testing.T) {
	next, err := Reabrir(EstadoObservada, empleado)
	require.NoError(t, err)
	require.Equal(t, EstadoPendienteJefe, next)

	for _, state := range []AuthorizationState{EstadoPendienteJefe, EstadoPendienteRegistro, EstadoRegistrado, EstadoRechazado} {
		_, err = Reabrir(state, empleado)
		var trErr *TransitionError
		require.ErrorAs(t, err, &trErr, "state %s", state)
	}
}

func TestFullAuthorizationLifecycle(t *testing.T) {
	state := EstadoPendienteJefe

	state, err := Observar(state, ObservarInput{Actor: jefe, Observaciones: validObservaciones()})
	require.NoError(t, err)
	require.Equal(t, EstadoObservada, state)

	state, err = Reabrir(state, empleado)
	require.NoError(t, err)
	require.Equal(t, EstadoPendienteJefe, state)

	state, err = Aprobar(state, AprobarInput{Actor: jefe})
	require.NoError(t, err)
	require.Equal(t, EstadoPendienteRegistro, state)

	state, err = Registrar(state, RegistrarInput{Actor: admin, AdminID: 1})
	require.NoError(t, err)
	require.Equal(t, EstadoRegistrado, state)
	require.True(t, state.IsTerminal())
}
