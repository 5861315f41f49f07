package api

import (
	"context"
	"fmt"
)

func (c *Client) Grupos(ctx context.Context, chatID int64) ([]Grupo, error) {
	var grupos []Grupo
	if err := c.get(ctx, chatID, "/grupos", &grupos); err != nil {
		return nil, err
	}
	return grupos, nil
}

func (c *Client) GruposActivos(ctx context.Context, chatID int64) ([]Grupo, error) {
	var grupos []Grupo
	if err := c.get(ctx, chatID, "/grupos/activos", &grupos); err != nil {
		return nil, err
	}
	return grupos, nil
}

func (c *Client) Grupo(ctx context.Context, chatID, id int64) (Grupo, error) {
	var grupo Grupo
	if err := c.get(ctx, chatID, fmt.Sprintf("/grupos/%d", id), &grupo); err != nil {
		return Grupo{}, err
	}
	return grupo, nil
}

func (c *Client) GruposPorProfesor(ctx context.Context, chatID, profesorID int64) ([]Grupo, error) {
	var grupos []Grupo
	if err := c.get(ctx, chatID, fmt.Sprintf("/grupos/profesor/%d", profesorID), &grupos); err != nil {
		return nil, err
	}
	return grupos, nil
}

func (c *Client) CrearGrupo(ctx context.Context, chatID int64, nuevo NuevoGrupo) (Grupo, error) {
	var creado Grupo
	if err := c.post(ctx, chatID, "/grupos", nuevo, &creado); err != nil {
		return Grupo{}, err
	}
	return creado, nil
}

func (c *Client) ActualizarGrupo(ctx context.Context, chatID, id int64, grupo NuevoGrupo) (Grupo, error) {
	var actualizado Grupo
	if err := c.put(ctx, chatID, fmt.Sprintf("/grupos/%d", id), grupo, &actualizado); err != nil {
		return Grupo{}, err
	}
	return actualizado, nil
}

func (c *Client) CambiarEstadoGrupo(ctx context.Context, chatID, id int64) error {
	return c.patch(ctx, chatID, fmt.Sprintf("/grupos/%d/estado", id), nil, nil)
}

func (c *Client) AsignarProfesor(ctx context.Context, chatID, grupoID, profesorID int64) error {
	return c.post(ctx, chatID, fmt.Sprintf("/grupos/%d/profesores/%d", grupoID, profesorID), nil, nil)
}

// InscribirEstudiante enrolls a student. A full group comes back as a
// CapacityError and is surfaced inline at the screen that asked.
func (c *Client) InscribirEstudiante(ctx context.Context, chatID, grupoID, estudianteID int64) error {
	return c.post(ctx, chatID, fmt.Sprintf("/grupos/%d/estudiantes/%d", grupoID, estudianteID), nil, nil)
}

func (c *Client) DesinscribirEstudiante(ctx context.Context, chatID, grupoID, estudianteID int64) error {
	return c.delete(ctx, chatID, fmt.Sprintf("/grupos/%d/estudiantes/%d", grupoID, estudianteID))
}

func (c *Client) EstudiantesDelGrupo(ctx context.Context, chatID, grupoID int64) ([]Usuario, error) {
	var estudiantes []Usuario
	if err := c.get(ctx, chatID, fmt.Sprintf("/grupos/%d/estudiantes", grupoID), &estudiantes); err != nil {
		return nil, err
	}
	return estudiantes, nil
}

func (c *Client) EstudiantesDisponibles(ctx context.Context, chatID, grupoID int64) ([]Usuario, error) {
	var estudiantes []Usuario
	if err := c.get(ctx, chatID, fmt.Sprintf("/grupos/%d/estudiantes/disponibles", grupoID), &estudiantes); err != nil {
		return nil, err
	}
	return estudiantes, nil
}
