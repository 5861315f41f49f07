package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// TomarAsistencia submits one full roster for a group and date.
func (c *Client) TomarAsistencia(ctx context.Context, chatID int64, req TomarAsistenciaRequest) error {
	return c.post(ctx, chatID, "/asistencias/tomar", req, nil)
}

// ListaAsistencia fetches the roster with current statuses for a group+date.
func (c *Client) ListaAsistencia(ctx context.Context, chatID, grupoID int64, fecha string) ([]RosterEntry, error) {
	var lista []RosterEntry
	path := fmt.Sprintf("/asistencias/grupo/%d/fecha/%s", grupoID, fecha)
	if err := c.get(ctx, chatID, path, &lista); err != nil {
		return nil, err
	}
	return lista, nil
}

// VerificarAsistencia reports whether attendance was already recorded for
// the group+date.
func (c *Client) VerificarAsistencia(ctx context.Context, chatID, grupoID int64, fecha string) (bool, error) {
	var verificacion VerificacionAsistencia
	path := fmt.Sprintf("/asistencias/grupo/%d/fecha/%s/verificar", grupoID, fecha)
	if err := c.get(ctx, chatID, path, &verificacion); err != nil {
		return false, err
	}
	return verificacion.YaRegistrada, nil
}

func (c *Client) Historial(ctx context.Context, chatID, grupoID int64) ([]HistorialRegistro, error) {
	var historial []HistorialRegistro
	path := fmt.Sprintf("/asistencias/grupo/%d/historial", grupoID)
	if err := c.get(ctx, chatID, path, &historial); err != nil {
		return nil, err
	}
	return historial, nil
}

func (c *Client) HistorialFiltrado(ctx context.Context, chatID int64, filtro HistorialFiltro) ([]HistorialRegistro, error) {
	params := url.Values{}
	if filtro.GrupoID != 0 {
		params.Set("grupoId", strconv.FormatInt(filtro.GrupoID, 10))
	}
	if filtro.FechaInicio != "" {
		params.Set("fechaInicio", filtro.FechaInicio)
	}
	if filtro.FechaFin != "" {
		params.Set("fechaFin", filtro.FechaFin)
	}
	if filtro.Estado != "" {
		params.Set("estado", string(filtro.Estado))
	}

	path := "/asistencias/historial"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var historial []HistorialRegistro
	if err := c.get(ctx, chatID, path, &historial); err != nil {
		return nil, err
	}
	return historial, nil
}

func (c *Client) EstadisticasGrupo(ctx context.Context, chatID, grupoID int64) (EstadisticasGrupo, error) {
	var stats EstadisticasGrupo
	path := fmt.Sprintf("/asistencias/grupo/%d/estadisticas", grupoID)
	if err := c.get(ctx, chatID, path, &stats); err != nil {
		return EstadisticasGrupo{}, err
	}
	return stats, nil
}
