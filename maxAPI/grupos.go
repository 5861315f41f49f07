package maxAPI

import (
	"context"
	"errors"
	"fmt"
	"strings"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/api"
	"asistenciaBot/services"
)

const (
	selectGrupoMsg    = "Seleccione un grupo:"
	sinGruposAdminMsg = "No hay grupos registrados."
	grupoDetailFormat = "📚 **%s — %s**\nGrupo: %s\nCupo: %d/%d\nEstado: %s"
	pedirGrupoFormMsg = "Envíe los datos del grupo en una línea:\n`codigo; materia; nombre; cupo`"
	grupoCreadoFormat = "✅ Grupo %s creado."
	grupoEstadoMsg    = "Estado del grupo actualizado."
	profesorAsigMsg   = "Profesor asignado."
	inscritoMsg       = "Estudiante inscrito."
	desinscritoMsg    = "Estudiante desinscrito."
	sinProfesoresMsg  = "No hay profesores activos."
	sinDisponiblesMsg = "No hay estudiantes disponibles para inscribir."
	sinInscritosMsg   = "El grupo no tiene estudiantes inscritos."

	btnNuevoGrupo       = "➕ Nuevo grupo"
	btnGrupoEstado      = "🔄 Activar/Desactivar"
	btnAsignarProfesor  = "👨‍🏫 Asignar profesor"
	btnInscribir        = "➕ Inscribir estudiante"
	btnDesinscribir     = "➖ Desinscribir estudiante"
	btnVolverGrupos     = "← Volver a grupos"
	payloadVolverGrupos = "grupos"
)

func (b *Bot) handleGruposMenu(ctx context.Context, chatID int64, callbackID string) {
	grupos, err := b.client.Grupos(ctx, chatID)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}

	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	for _, grupo := range grupos {
		label := fmt.Sprintf("%s — %s (%d/%d)", grupo.Codigo, grupo.Materia, grupo.EstudiantesInscritos, grupo.CupoMaximo)
		if !grupo.Activo {
			label += " ⛔"
		}
		keyboard.AddRow().AddCallback(label, schemes.DEFAULT, fmt.Sprintf("grp_sel_%d", grupo.ID))
	}
	keyboard.AddRow().AddCallback(btnNuevoGrupo, schemes.POSITIVE, "grp_nuevo")
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)

	msg := selectGrupoMsg
	if len(grupos) == 0 {
		msg = sinGruposAdminMsg
	}
	b.answerWithKeyboard(ctx, callbackID, msg, keyboard)
}

func (b *Bot) handleGrupoCallback(ctx context.Context, chatID int64, callbackID, payload string) {
	switch {
	case payload == "grp_nuevo":
		b.setPending(chatID, pendingInput{kind: pendingNuevoGrupo})
		b.answerCallbackWithNotification(ctx, callbackID, "")
		b.sendMessage(ctx, chatID, pedirGrupoFormMsg)

	case strings.HasPrefix(payload, "grp_sel_"):
		var id int64
		fmt.Sscanf(payload, "grp_sel_%d", &id)
		b.showGrupoDetail(ctx, chatID, callbackID, id)

	case strings.HasPrefix(payload, "grp_estado_"):
		var id int64
		fmt.Sscanf(payload, "grp_estado_%d", &id)
		if err := b.client.CambiarEstadoGrupo(ctx, chatID, id); err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		b.answerCallbackWithNotification(ctx, callbackID, grupoEstadoMsg)
		b.showGrupoDetailMessage(ctx, chatID, id)

	case strings.HasPrefix(payload, "grp_prof_"):
		var grupoID int64
		fmt.Sscanf(payload, "grp_prof_%d", &grupoID)
		b.showProfesorPicker(ctx, chatID, callbackID, grupoID)

	case strings.HasPrefix(payload, "grp_profsel_"):
		var grupoID, profesorID int64
		fmt.Sscanf(payload, "grp_profsel_%d_%d", &grupoID, &profesorID)
		if err := b.client.AsignarProfesor(ctx, chatID, grupoID, profesorID); err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		b.answerCallbackWithNotification(ctx, callbackID, profesorAsigMsg)
		b.showGrupoDetailMessage(ctx, chatID, grupoID)

	case strings.HasPrefix(payload, "grp_insc_"):
		var grupoID int64
		fmt.Sscanf(payload, "grp_insc_%d", &grupoID)
		b.showInscribirPicker(ctx, chatID, callbackID, grupoID)

	case strings.HasPrefix(payload, "grp_inscsel_"):
		var grupoID, estudianteID int64
		fmt.Sscanf(payload, "grp_inscsel_%d_%d", &grupoID, &estudianteID)
		b.inscribirEstudiante(ctx, chatID, callbackID, grupoID, estudianteID)

	case strings.HasPrefix(payload, "grp_desinsc_"):
		var grupoID int64
		fmt.Sscanf(payload, "grp_desinsc_%d", &grupoID)
		b.showDesinscribirPicker(ctx, chatID, callbackID, grupoID)

	case strings.HasPrefix(payload, "grp_dessel_"):
		var grupoID, estudianteID int64
		fmt.Sscanf(payload, "grp_dessel_%d_%d", &grupoID, &estudianteID)
		if err := b.client.DesinscribirEstudiante(ctx, chatID, grupoID, estudianteID); err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		b.answerCallbackWithNotification(ctx, callbackID, desinscritoMsg)
		b.showGrupoDetailMessage(ctx, chatID, grupoID)

	default:
		b.logger.Warnf("Unknown grupo callback: %s", payload)
	}
}

// inscribirEstudiante surfaces a full-group rejection inline on the picker
// instead of treating it as a hard failure.
func (b *Bot) inscribirEstudiante(ctx context.Context, chatID int64, callbackID string, grupoID, estudianteID int64) {
	err := b.client.InscribirEstudiante(ctx, chatID, grupoID, estudianteID)
	if err != nil {
		var capErr *api.CapacityError
		if errors.As(err, &capErr) {
			b.answerCallbackWithNotification(ctx, callbackID, "⚠️ "+capErr.Error())
			return
		}
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	b.answerCallbackWithNotification(ctx, callbackID, inscritoMsg)
	b.showGrupoDetailMessage(ctx, chatID, grupoID)
}

func (b *Bot) showGrupoDetail(ctx context.Context, chatID int64, callbackID string, id int64) {
	grupo, err := b.client.Grupo(ctx, chatID, id)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	b.answerWithKeyboard(ctx, callbackID, formatGrupo(grupo), b.grupoKeyboard(id))
}

func (b *Bot) showGrupoDetailMessage(ctx context.Context, chatID, id int64) {
	grupo, err := b.client.Grupo(ctx, chatID, id)
	if err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, api.UserMessage(err)))
		return
	}
	b.sendKeyboard(ctx, b.grupoKeyboard(id), chatID, formatGrupo(grupo))
}

func (b *Bot) grupoKeyboard(id int64) *maxbot.Keyboard {
	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	keyboard.AddRow().AddCallback(btnGrupoEstado, schemes.DEFAULT, fmt.Sprintf("grp_estado_%d", id))
	keyboard.AddRow().AddCallback(btnAsignarProfesor, schemes.DEFAULT, fmt.Sprintf("grp_prof_%d", id))
	keyboard.AddRow().
		AddCallback(btnInscribir, schemes.DEFAULT, fmt.Sprintf("grp_insc_%d", id)).
		AddCallback(btnDesinscribir, schemes.DEFAULT, fmt.Sprintf("grp_desinsc_%d", id))
	keyboard.AddRow().AddCallback(btnVolverGrupos, schemes.DEFAULT, payloadVolverGrupos)
	return keyboard
}

func formatGrupo(grupo api.Grupo) string {
	estado := "Activo ✅"
	if !grupo.Activo {
		estado = "Inactivo ⛔"
	}
	return fmt.Sprintf(grupoDetailFormat,
		grupo.Codigo, grupo.Materia, grupo.NombreGrupo,
		grupo.EstudiantesInscritos, grupo.CupoMaximo, estado)
}

func (b *Bot) showProfesorPicker(ctx context.Context, chatID int64, callbackID string, grupoID int64) {
	usuarios, err := b.client.Usuarios(ctx, chatID)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}

	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	total := 0
	for _, usuario := range usuarios {
		if usuario.TipoUsuario != api.RoleProfesor || !usuario.Activo {
			continue
		}
		total++
		keyboard.AddRow().AddCallback(usuario.NombreUsuario, schemes.DEFAULT,
			fmt.Sprintf("grp_profsel_%d_%d", grupoID, usuario.ID))
	}
	if total == 0 {
		b.answerCallbackWithNotification(ctx, callbackID, sinProfesoresMsg)
		return
	}
	keyboard.AddRow().AddCallback(btnVolverGrupos, schemes.DEFAULT, payloadVolverGrupos)

	b.answerWithKeyboard(ctx, callbackID, "Seleccione el profesor:", keyboard)
}

func (b *Bot) showInscribirPicker(ctx context.Context, chatID int64, callbackID string, grupoID int64) {
	estudiantes, err := b.client.EstudiantesDisponibles(ctx, chatID, grupoID)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	if len(estudiantes) == 0 {
		b.answerCallbackWithNotification(ctx, callbackID, sinDisponiblesMsg)
		return
	}

	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	for _, estudiante := range estudiantes {
		keyboard.AddRow().AddCallback(estudiante.NombreUsuario, schemes.DEFAULT,
			fmt.Sprintf("grp_inscsel_%d_%d", grupoID, estudiante.ID))
	}
	keyboard.AddRow().AddCallback(btnVolverGrupos, schemes.DEFAULT, payloadVolverGrupos)

	b.answerWithKeyboard(ctx, callbackID, "Seleccione el estudiante a inscribir:", keyboard)
}

func (b *Bot) showDesinscribirPicker(ctx context.Context, chatID int64, callbackID string, grupoID int64) {
	estudiantes, err := b.client.EstudiantesDelGrupo(ctx, chatID, grupoID)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	if len(estudiantes) == 0 {
		b.answerCallbackWithNotification(ctx, callbackID, sinInscritosMsg)
		return
	}

	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	for _, estudiante := range estudiantes {
		keyboard.AddRow().AddCallback(estudiante.NombreUsuario, schemes.DEFAULT,
			fmt.Sprintf("grp_dessel_%d_%d", grupoID, estudiante.ID))
	}
	keyboard.AddRow().AddCallback(btnVolverGrupos, schemes.DEFAULT, payloadVolverGrupos)

	b.answerWithKeyboard(ctx, callbackID, "Seleccione el estudiante a desinscribir:", keyboard)
}

func (b *Bot) handleNuevoGrupoInput(ctx context.Context, chatID int64, text string) {
	b.clearPending(chatID)

	form, err := services.ParseGrupoForm(text)
	if err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, err.Error()))
		b.sendMessage(ctx, chatID, pedirGrupoFormMsg)
		b.setPending(chatID, pendingInput{kind: pendingNuevoGrupo})
		return
	}

	grupo, err := b.client.CrearGrupo(ctx, chatID, form)
	if err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, api.UserMessage(err)))
		return
	}
	b.sendMessage(ctx, chatID, fmt.Sprintf(grupoCreadoFormat, grupo.Codigo))
	b.showGrupoDetailMessage(ctx, chatID, grupo.ID)
}
