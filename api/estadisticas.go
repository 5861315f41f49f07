package api

import "context"

func (c *Client) EstadisticasAdmin(ctx context.Context, chatID int64) (EstadisticasAdmin, error) {
	var stats EstadisticasAdmin
	if err := c.get(ctx, chatID, "/estadisticas/admin", &stats); err != nil {
		return EstadisticasAdmin{}, err
	}
	return stats, nil
}

func (c *Client) EstadisticasProfesor(ctx context.Context, chatID int64) (EstadisticasProfesor, error) {
	var stats EstadisticasProfesor
	if err := c.get(ctx, chatID, "/estadisticas/profesor", &stats); err != nil {
		return EstadisticasProfesor{}, err
	}
	return stats, nil
}

func (c *Client) AsistenciasHoy(ctx context.Context, chatID int64) (AsistenciasHoy, error) {
	var hoy AsistenciasHoy
	if err := c.get(ctx, chatID, "/estadisticas/asistencias-hoy", &hoy); err != nil {
		return AsistenciasHoy{}, err
	}
	return hoy, nil
}
