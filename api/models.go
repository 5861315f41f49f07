package api

// Role is the closed set of user roles the backend issues in tipoUsuario.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleProfesor   Role = "PROFESOR"
	RoleEstudiante Role = "ESTUDIANTE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfesor, RoleEstudiante:
		return true
	}
	return false
}

// Estado is the closed set of attendance statuses accepted by the backend.
type Estado string

const (
	EstadoPresente    Estado = "PRESENTE"
	EstadoAusente     Estado = "AUSENTE"
	EstadoTardanza    Estado = "TARDANZA"
	EstadoJustificado Estado = "JUSTIFICADO"
)

var Estados = []Estado{EstadoPresente, EstadoAusente, EstadoTardanza, EstadoJustificado}

func (e Estado) Valid() bool {
	switch e {
	case EstadoPresente, EstadoAusente, EstadoTardanza, EstadoJustificado:
		return true
	}
	return false
}

// Next cycles to the following status, wrapping around. The take-attendance
// keyboard advances a student one step per tap.
func (e Estado) Next() Estado {
	for i, candidate := range Estados {
		if candidate == e {
			return Estados[(i+1)%len(Estados)]
		}
	}
	return EstadoPresente
}

type Credentials struct {
	NombreUsuario string `json:"nombreUsuario"`
	Contrasena    string `json:"contrasena"`
}

type LoginResponse struct {
	ID            int64  `json:"id"`
	NombreUsuario string `json:"nombreUsuario"`
	Email         string `json:"email"`
	TipoUsuario   Role   `json:"tipoUsuario"`
	Token         string `json:"token"`
}

type Usuario struct {
	ID              int64  `json:"id"`
	NombreUsuario   string `json:"nombreUsuario"`
	Email           string `json:"email"`
	TipoUsuario     Role   `json:"tipoUsuario"`
	Activo          bool   `json:"activo"`
	TelefonoMovil   string `json:"telefonoMovil,omitempty"`
	Direccion       string `json:"direccion,omitempty"`
	FechaNacimiento string `json:"fechaNacimiento,omitempty"`
	Especialidad    string `json:"especialidad,omitempty"`
}

type NuevoUsuario struct {
	NombreUsuario   string `json:"nombreUsuario"`
	Contrasena      string `json:"contrasena"`
	Email           string `json:"email"`
	TipoUsuario     Role   `json:"tipoUsuario"`
	TelefonoMovil   string `json:"telefonoMovil,omitempty"`
	Direccion       string `json:"direccion,omitempty"`
	FechaNacimiento string `json:"fechaNacimiento,omitempty"`
	Especialidad    string `json:"especialidad,omitempty"`
}

type Grupo struct {
	ID                   int64     `json:"id"`
	Codigo               string    `json:"codigo"`
	Materia              string    `json:"materia"`
	NombreGrupo          string    `json:"nombreGrupo"`
	Facultad             string    `json:"facultad,omitempty"`
	Semestre             string    `json:"semestre,omitempty"`
	Periodo              string    `json:"periodo,omitempty"`
	Creditos             int       `json:"creditos,omitempty"`
	Aula                 string    `json:"aula,omitempty"`
	Horario              string    `json:"horario,omitempty"`
	CupoMaximo           int       `json:"cupoMaximo"`
	EstudiantesInscritos int       `json:"estudiantesInscritos"`
	Activo               bool      `json:"activo"`
	Profesores           []Usuario `json:"profesores,omitempty"`
}

type NuevoGrupo struct {
	Codigo      string `json:"codigo"`
	Materia     string `json:"materia"`
	NombreGrupo string `json:"nombreGrupo"`
	CupoMaximo  int    `json:"cupoMaximo"`
	Facultad    string `json:"facultad,omitempty"`
	Aula        string `json:"aula,omitempty"`
	Horario     string `json:"horario,omitempty"`
}

// RosterEntry is one student row of the lista-de-asistencia response. It is
// mutated in place while the teacher edits the roster.
type RosterEntry struct {
	EstudianteID     int64  `json:"estudianteId"`
	EstudianteNombre string `json:"estudianteNombre"`
	EstudianteEmail  string `json:"estudianteEmail"`
	Estado           Estado `json:"estado"`
	Observaciones    string `json:"observaciones"`
}

type RegistroAsistencia struct {
	EstudianteID  int64  `json:"estudianteId"`
	Estado        Estado `json:"estado"`
	Observaciones string `json:"observaciones"`
}

type TomarAsistenciaRequest struct {
	GrupoID     int64                `json:"grupoId"`
	Fecha       string               `json:"fecha"`
	Asistencias []RegistroAsistencia `json:"asistencias"`
}

type VerificacionAsistencia struct {
	YaRegistrada bool `json:"yaRegistrada"`
}

type HistorialRegistro struct {
	ID               int64  `json:"id"`
	Fecha            string `json:"fecha"`
	EstudianteNombre string `json:"estudianteNombre"`
	EstudianteEmail  string `json:"estudianteEmail"`
	Estado           Estado `json:"estado"`
	Observaciones    string `json:"observaciones"`
}

// HistorialFiltro holds the optional query filters of GET /asistencias/historial.
// Zero values mean "no filter".
type HistorialFiltro struct {
	GrupoID     int64
	FechaInicio string
	FechaFin    string
	Estado      Estado
}

type EstadisticasGrupo struct {
	Presente    int `json:"presente"`
	Ausente     int `json:"ausente"`
	Tardanza    int `json:"tardanza"`
	Justificado int `json:"justificado"`
	TotalClases int `json:"totalClases"`
}

type EstadisticasAdmin struct {
	TotalUsuarios    int `json:"totalUsuarios"`
	TotalProfesores  int `json:"totalProfesores"`
	TotalEstudiantes int `json:"totalEstudiantes"`
	TotalGrupos      int `json:"totalGrupos"`
	GruposActivos    int `json:"gruposActivos"`
}

type EstadisticasProfesor struct {
	TotalGrupos       int `json:"totalGrupos"`
	TotalEstudiantes  int `json:"totalEstudiantes"`
	ClasesRegistradas int `json:"clasesRegistradas"`
}

type AsistenciasHoy struct {
	Registradas int `json:"registradas"`
	Pendientes  int `json:"pendientes"`
}
