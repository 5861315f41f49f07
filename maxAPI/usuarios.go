package maxAPI

import (
	"context"
	"fmt"
	"strings"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/api"
)

const (
	selectUsuarioMsg    = "Seleccione un usuario:"
	usuarioDetailFormat = "👤 **%s**\nEmail: %s\nTipo: %s\nEstado: %s"
	sinUsuariosMsg      = "No hay usuarios registrados."
	estadoCambiadoMsg   = "Estado actualizado."
	usuarioEliminadoMsg = "Usuario eliminado."
	pedirContrasenaMsg  = "Envíe la nueva contraseña para %s:"
	contrasenaOKMsg     = "🔑 Contraseña actualizada."

	btnCambiarEstado     = "🔄 Activar/Desactivar"
	btnCambiarContrasena = "🔑 Cambiar contraseña"
	btnEliminarUsuario   = "🗑 Eliminar"
)

func (b *Bot) handleUsuariosMenu(ctx context.Context, chatID int64, callbackID string) {
	usuarios, err := b.client.Usuarios(ctx, chatID)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	if len(usuarios) == 0 {
		b.answerCallbackWithNotification(ctx, callbackID, sinUsuariosMsg)
		return
	}

	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	for _, usuario := range usuarios {
		label := fmt.Sprintf("%s (%s)", usuario.NombreUsuario, usuario.TipoUsuario)
		if !usuario.Activo {
			label += " ⛔"
		}
		keyboard.AddRow().AddCallback(label, schemes.DEFAULT, fmt.Sprintf("usr_sel_%d", usuario.ID))
	}
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)

	b.answerWithKeyboard(ctx, callbackID, selectUsuarioMsg, keyboard)
}

func (b *Bot) handleUsuarioCallback(ctx context.Context, chatID int64, callbackID, payload string) {
	switch {
	case strings.HasPrefix(payload, "usr_sel_"):
		var id int64
		fmt.Sscanf(payload, "usr_sel_%d", &id)
		b.showUsuarioDetail(ctx, chatID, callbackID, id)

	case strings.HasPrefix(payload, "usr_estado_"):
		var id int64
		fmt.Sscanf(payload, "usr_estado_%d", &id)
		if err := b.client.CambiarEstadoUsuario(ctx, chatID, id); err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		b.answerCallbackWithNotification(ctx, callbackID, estadoCambiadoMsg)
		b.showUsuarioDetailMessage(ctx, chatID, id)

	case strings.HasPrefix(payload, "usr_pwd_"):
		var id int64
		fmt.Sscanf(payload, "usr_pwd_%d", &id)
		usuario, err := b.client.Usuario(ctx, chatID, id)
		if err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		b.setPending(chatID, pendingInput{kind: pendingContrasena, usuarioID: id})
		b.answerCallbackWithNotification(ctx, callbackID, "")
		b.sendMessage(ctx, chatID, fmt.Sprintf(pedirContrasenaMsg, usuario.NombreUsuario))

	case strings.HasPrefix(payload, "usr_del_"):
		var id int64
		fmt.Sscanf(payload, "usr_del_%d", &id)
		if err := b.client.EliminarUsuario(ctx, chatID, id); err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		b.answerCallbackWithNotification(ctx, callbackID, usuarioEliminadoMsg)
		b.handleUsuariosMenu(ctx, chatID, callbackID)

	default:
		b.logger.Warnf("Unknown usuario callback: %s", payload)
	}
}

func (b *Bot) showUsuarioDetail(ctx context.Context, chatID int64, callbackID string, id int64) {
	usuario, err := b.client.Usuario(ctx, chatID, id)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	b.answerWithKeyboard(ctx, callbackID, formatUsuario(usuario), b.usuarioKeyboard(id))
}

// showUsuarioDetailMessage re-renders the detail as a fresh message, for
// flows where the callback was already answered.
func (b *Bot) showUsuarioDetailMessage(ctx context.Context, chatID, id int64) {
	usuario, err := b.client.Usuario(ctx, chatID, id)
	if err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, api.UserMessage(err)))
		return
	}
	b.sendKeyboard(ctx, b.usuarioKeyboard(id), chatID, formatUsuario(usuario))
}

func (b *Bot) usuarioKeyboard(id int64) *maxbot.Keyboard {
	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	keyboard.AddRow().AddCallback(btnCambiarEstado, schemes.DEFAULT, fmt.Sprintf("usr_estado_%d", id))
	keyboard.AddRow().AddCallback(btnCambiarContrasena, schemes.DEFAULT, fmt.Sprintf("usr_pwd_%d", id))
	keyboard.AddRow().AddCallback(btnEliminarUsuario, schemes.NEGATIVE, fmt.Sprintf("usr_del_%d", id))
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)
	return keyboard
}

func formatUsuario(usuario api.Usuario) string {
	estado := "Activo ✅"
	if !usuario.Activo {
		estado = "Inactivo ⛔"
	}
	return fmt.Sprintf(usuarioDetailFormat, usuario.NombreUsuario, usuario.Email, usuario.TipoUsuario, estado)
}

func (b *Bot) handleContrasenaInput(ctx context.Context, chatID, usuarioID int64, text string) {
	b.clearPending(chatID)

	if len(strings.TrimSpace(text)) < 4 {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, "La contraseña debe tener al menos 4 caracteres."))
		return
	}

	if err := b.client.CambiarContrasena(ctx, chatID, usuarioID, strings.TrimSpace(text)); err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, api.UserMessage(err)))
		return
	}
	b.sendMessage(ctx, chatID, contrasenaOKMsg)
	b.showUsuarioDetailMessage(ctx, chatID, usuarioID)
}
