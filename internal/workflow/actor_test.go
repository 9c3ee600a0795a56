package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanGestionar(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"admin role", Actor{ID: 1, RolID: RolAdmin}, true},
		{"jefe role", Actor{ID: 2, RolID: RolJefe}, true},
		{"plain role without permissions", Actor{ID: 3, RolID: 3, Permisos: []string{}}, false},
		{"plain role with aprobar_solicitud", Actor{ID: 4, RolID: 3, Permisos: []string{PermAprobarSolicitud}}, true},
		{"plain role with aprobar_area", Actor{ID: 5, RolID: 5, Permisos: []string{PermAprobarArea}}, true},
		{"plain role with aprobar_todas", Actor{ID: 6, RolID: 7, Permisos: []string{"otra_cosa", PermAprobarTodas}}, true},
		{"unrelated permissions only", Actor{ID: 7, RolID: 3, Permisos: []string{PermRegistrarAsistencia}}, false},
		{"zero value actor fails closed", Actor{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.actor.CanGestionar())
		})
	}
}

func TestCanRegistrar(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"admin role", Actor{ID: 1, RolID: RolAdmin}, true},
		{"jefe role does not register", Actor{ID: 2, RolID: RolJefe}, false},
		{"registrar_asistencia permission", Actor{ID: 3, RolID: 3, Permisos: []string{PermRegistrarAsistencia}}, true},
		{"approval permissions do not register", Actor{ID: 4, RolID: 3, Permisos: []string{PermAprobarTodas}}, false},
		{"zero value actor fails closed", Actor{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.actor.CanRegistrar())
		})
	}
}
