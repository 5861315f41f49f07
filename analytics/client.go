// Package analytics calls the Python analytics microservice. It is a
// separate backend with its own base URL and failure domain: requests carry
// no bearer token and an outage here never touches the primary-API session.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnalisisGeneral aggregates attendance across all groups.
type AnalisisGeneral struct {
	EstadoGeneral        map[string]int     `json:"estado_general"`
	TendenciaDiaria      *TendenciaDiaria   `json:"tendencia_diaria"`
	AsistenciaPorMateria map[string]float64 `json:"asistencia_por_materia"`
}

type TendenciaDiaria struct {
	Fechas      []string `json:"fechas"`
	Presente    []int    `json:"presente"`
	Ausente     []int    `json:"ausente"`
	Tardanza    []int    `json:"tardanza"`
	Justificado []int    `json:"justificado"`
}

type AnalisisGrupo struct {
	GrupoID              int64              `json:"grupo_id"`
	PorcentajeAsistencia float64            `json:"porcentaje_asistencia"`
	EstadoGeneral        map[string]int     `json:"estado_general"`
	PorEstudiante        map[string]float64 `json:"por_estudiante"`
}

type AnalisisEstudiante struct {
	EstudianteID         int64   `json:"estudiante_id"`
	PorcentajeAsistencia float64 `json:"porcentaje_asistencia"`
	TotalClases          int     `json:"total_clases"`
	Ausencias            int     `json:"ausencias"`
	Tardanzas            int     `json:"tardanzas"`
}

type ReporteProfesor struct {
	ProfesorID int64           `json:"profesor_id"`
	Grupos     []AnalisisGrupo `json:"grupos"`
}

// EstudianteEnRiesgo is one row of the dropout prediction.
type EstudianteEnRiesgo struct {
	EstudianteID         int64   `json:"estudiante_id"`
	Nombre               string  `json:"nombre"`
	PorcentajeAsistencia float64 `json:"porcentaje_asistencia"`
	Ausencias            int     `json:"ausencias"`
	TotalClases          int     `json:"total_clases"`
	NivelRiesgo          string  `json:"nivel_riesgo"`
}

type PrediccionDesercion struct {
	EstudiantesEnRiesgo []EstudianteEnRiesgo `json:"estudiantes_en_riesgo"`
}

// Client calls the analytics service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second // aggregate queries can take a while
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("analytics service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("analytics service error %s: %s", resp.Status, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) AnalisisGeneral(ctx context.Context) (*AnalisisGeneral, error) {
	var out AnalisisGeneral
	if err := c.get(ctx, "/api/analytics/asistencia/general", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AnalisisGrupo(ctx context.Context, grupoID int64) (*AnalisisGrupo, error) {
	var out AnalisisGrupo
	if err := c.get(ctx, fmt.Sprintf("/api/analytics/asistencia/grupo/%d", grupoID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AnalisisEstudiante(ctx context.Context, estudianteID int64) (*AnalisisEstudiante, error) {
	var out AnalisisEstudiante
	if err := c.get(ctx, fmt.Sprintf("/api/analytics/asistencia/estudiante/%d", estudianteID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReporteProfesor(ctx context.Context, profesorID int64) (*ReporteProfesor, error) {
	var out ReporteProfesor
	if err := c.get(ctx, fmt.Sprintf("/api/analytics/reporte/profesor/%d", profesorID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PrediccionDesercion(ctx context.Context) (*PrediccionDesercion, error) {
	var out PrediccionDesercion
	if err := c.get(ctx, "/api/analytics/prediccion/desercion", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks if the analytics service is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("analytics service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics service unhealthy: %s", resp.Status)
	}
	return nil
}
