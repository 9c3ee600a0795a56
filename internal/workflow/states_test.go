package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAuthorizationState(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthorizationState
		wantErr bool
	}{
		{"Pendiente Jefe", EstadoPendienteJefe, false},
		{"pendiente jefe", EstadoPendienteJefe, false},
		{"  PENDIENTE REGISTRO ", EstadoPendienteRegistro, false},
		{"Registrado", EstadoRegistrado, false},
		{"rechazado", EstadoRechazado, false},
		{"Observada", EstadoObservada, false},
		{"En Proceso", "", true},
		{"", "", true},
		{"Pendiente", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthorizationState(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorizationStateIsPending(t *testing.T) {
	require.True(t, EstadoPendienteJefe.IsPending())
	require.True(t, EstadoPendienteRegistro.IsPending())
	require.True(t, EstadoObservada.IsPending())
	require.False(t, EstadoRegistrado.IsPending())
	require.False(t, EstadoRechazado.IsPending())
}

func TestAuthorizationStateGating(t *testing.T) {
	require.True(t, EstadoPendienteJefe.IsPendienteJefe())
	require.False(t, EstadoPendienteRegistro.IsPendienteJefe())

	require.True(t, EstadoRegistrado.IsTerminal())
	require.True(t, EstadoRechazado.IsTerminal())
	require.False(t, EstadoObservada.IsTerminal())
}

func TestParseVoucherStatus(t *testing.T) {
	for _, s := range []string{"P", "A", "R", "J", "O", "C"} {
		got, err := ParseVoucherStatus(s)
		require.NoError(t, err)
		require.Equal(t, VoucherStatus(s), got)
	}

	got, err := ParseVoucherStatus("a")
	require.NoError(t, err)
	require.Equal(t, VoucherApproved, got)

	_, err = ParseVoucherStatus("X")
	require.Error(t, err)
	_, err = ParseVoucherStatus("")
	require.Error(t, err)
}

func TestParseTrackingStatus(t *testing.T) {
	for _, s := range []string{"P", "D", "J", "O", "C"} {
		got, err := ParseTrackingStatus(s)
		require.NoError(t, err)
		require.Equal(t, TrackingStatus(s), got)
	}

	_, err := ParseTrackingStatus("A")
	require.Error(t, err)
}

func TestValidTipoObservacion(t *testing.T) {
	for _, tipo := range []string{
		TipoDocumentoIncompleto, TipoDocumentoIlegible, TipoFechaInvalida,
		TipoHorarioConflicto, TipoJustificacionInsuficiente, TipoOtro,
	} {
		require.True(t, ValidTipoObservacion(tipo), tipo)
	}
	require.False(t, ValidTipoObservacion("CUALQUIERA"))
	require.False(t, ValidTipoObservacion(""))
	require.False(t, ValidTipoObservacion("otro"), "enumeration is case sensitive")
}
