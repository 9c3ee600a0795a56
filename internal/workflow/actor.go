package workflow

// Role IDs with built-in workflow capabilities.
const (
	RolAdmin = 1
	RolJefe  = 2
)

// Permission codes recognized by the capability predicates.
const (
	PermAprobarSolicitud    = "aprobar_solicitud"
	PermAprobarArea         = "aprobar_area"
	PermAprobarTodas        = "aprobar_todas"
	PermRegistrarAsistencia = "registrar_asistencia"
)

// Actor is the explicit identity every workflow operation receives. It is built
// once from the authenticated session (JWT claims) and passed down as a value;
// workflow code never reads role data from ambient state.
type Actor struct {
	ID       int64
	RolID    int
	Permisos []string
}

// HasPermiso reports whether the actor's permission set contains code.
func (a Actor) HasPermiso(code string) bool {
	for _, p := range a.Permisos {
		if p == code {
			return true
		}
	}
	return false
}

// CanGestionar reports whether the actor may decide a boleta pending jefe action
// (aprobar/rechazar/observar). Admin and jefe roles qualify, as does any actor
// holding an approval permission. Absent role data yields no capability.
func (a Actor) CanGestionar() bool {
	if a.RolID == RolAdmin || a.RolID == RolJefe {
		return true
	}
	return a.HasPermiso(PermAprobarSolicitud) || a.HasPermiso(PermAprobarArea) || a.HasPermiso(PermAprobarTodas)
}

// CanRegistrar reports whether the actor may register an approved boleta in the
// attendance system.
func (a Actor) CanRegistrar() bool {
	if a.RolID == RolAdmin {
		return true
	}
	return a.HasPermiso(PermRegistrarAsistencia)
}
