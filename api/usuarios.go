package api

import (
	"context"
	"fmt"
)

func (c *Client) Usuarios(ctx context.Context, chatID int64) ([]Usuario, error) {
	var usuarios []Usuario
	if err := c.get(ctx, chatID, "/usuarios", &usuarios); err != nil {
		return nil, err
	}
	return usuarios, nil
}

func (c *Client) Usuario(ctx context.Context, chatID, id int64) (Usuario, error) {
	var usuario Usuario
	if err := c.get(ctx, chatID, fmt.Sprintf("/usuarios/%d", id), &usuario); err != nil {
		return Usuario{}, err
	}
	return usuario, nil
}

func (c *Client) CrearUsuario(ctx context.Context, chatID int64, nuevo NuevoUsuario) (Usuario, error) {
	var creado Usuario
	if err := c.post(ctx, chatID, "/usuarios", nuevo, &creado); err != nil {
		return Usuario{}, err
	}
	return creado, nil
}

func (c *Client) ActualizarUsuario(ctx context.Context, chatID, id int64, usuario Usuario) (Usuario, error) {
	var actualizado Usuario
	if err := c.put(ctx, chatID, fmt.Sprintf("/usuarios/%d", id), usuario, &actualizado); err != nil {
		return Usuario{}, err
	}
	return actualizado, nil
}

// CambiarEstadoUsuario toggles the active flag server-side.
func (c *Client) CambiarEstadoUsuario(ctx context.Context, chatID, id int64) error {
	return c.patch(ctx, chatID, fmt.Sprintf("/usuarios/%d/estado", id), nil, nil)
}

func (c *Client) CambiarContrasena(ctx context.Context, chatID, id int64, nuevaContrasena string) error {
	body := map[string]string{"nuevaContrasena": nuevaContrasena}
	return c.patch(ctx, chatID, fmt.Sprintf("/usuarios/%d/contrasena", id), body, nil)
}

func (c *Client) EliminarUsuario(ctx context.Context, chatID, id int64) error {
	return c.delete(ctx, chatID, fmt.Sprintf("/usuarios/%d", id))
}
