package maxAPI

import (
	"context"
	"fmt"
	"strings"
	"time"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/api"
	"asistenciaBot/attendance"
	"asistenciaBot/services"
)

const (
	selectGrupoAsistenciaMsg = "Seleccione un grupo para tomar asistencia:"
	selectFechaMsg           = "Seleccione la fecha:"
	pedirFechaMsg            = "Envíe la fecha en formato AAAA-MM-DD:"
	pedirObservacionMsg      = "Envíe la observación para %s:"
	cargandoListaMsg         = "⏳ Cargando lista de estudiantes..."
	sinGruposMsg             = "No tiene grupos asignados."
	yaRegistradaBanner       = "⚠️ La asistencia de esta fecha ya fue registrada."
	asistenciaGuardadaMsg    = "✅ Asistencia guardada."
	rosterHeaderFormat       = "📋 **Asistencia — grupo %d, %s**\nToque un estudiante para cambiar su estado."

	btnFechaHoy    = "📅 Hoy"
	btnFechaAyer   = "📅 Ayer"
	btnFechaManual = "📅 Otra fecha"
	btnGuardar     = "💾 Guardar asistencia"
	btnObservacion = "📝"

	fechaLayout = "2006-01-02"
)

var estadoEmojis = map[api.Estado]string{
	api.EstadoPresente:    "✅",
	api.EstadoAusente:     "❌",
	api.EstadoTardanza:    "⏰",
	api.EstadoJustificado: "📄",
}

// gruposParaAsistencia returns the groups the current user may record for:
// a teacher sees their own groups, an admin sees every active group.
func (b *Bot) gruposParaAsistencia(ctx context.Context, chatID int64) ([]api.Grupo, error) {
	sess, ok := b.store.Current(chatID)
	if ok && sess.TipoUsuario == api.RoleProfesor {
		return b.client.GruposPorProfesor(ctx, chatID, sess.UsuarioID)
	}
	return b.client.GruposActivos(ctx, chatID)
}

func (b *Bot) handleAsistenciaMenu(ctx context.Context, chatID int64, callbackID string) {
	grupos, err := b.gruposParaAsistencia(ctx, chatID)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	if len(grupos) == 0 {
		b.answerCallbackWithNotification(ctx, callbackID, sinGruposMsg)
		return
	}

	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	for _, grupo := range grupos {
		label := fmt.Sprintf("%s — %s", grupo.Codigo, grupo.Materia)
		keyboard.AddRow().AddCallback(label, schemes.DEFAULT, fmt.Sprintf("att_grp_%d", grupo.ID))
	}
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)

	b.answerWithKeyboard(ctx, callbackID, selectGrupoAsistenciaMsg, keyboard)
}

func (b *Bot) handleAsistenciaCallback(ctx context.Context, chatID int64, callbackID, payload string) {
	switch {
	case strings.HasPrefix(payload, "att_grp_"):
		var grupoID int64
		fmt.Sscanf(payload, "att_grp_%d", &grupoID)
		b.showFechaKeyboard(ctx, callbackID, grupoID)

	case strings.HasPrefix(payload, "att_hoy_"):
		var grupoID int64
		fmt.Sscanf(payload, "att_hoy_%d", &grupoID)
		b.answerCallbackWithNotification(ctx, callbackID, "")
		b.startRosterLoad(ctx, chatID, grupoID, time.Now().Format(fechaLayout))

	case strings.HasPrefix(payload, "att_ayer_"):
		var grupoID int64
		fmt.Sscanf(payload, "att_ayer_%d", &grupoID)
		b.answerCallbackWithNotification(ctx, callbackID, "")
		b.startRosterLoad(ctx, chatID, grupoID, time.Now().AddDate(0, 0, -1).Format(fechaLayout))

	case strings.HasPrefix(payload, "att_fecha_"):
		var grupoID int64
		fmt.Sscanf(payload, "att_fecha_%d", &grupoID)
		b.setPending(chatID, pendingInput{kind: pendingFecha, grupoID: grupoID})
		b.answerCallbackWithNotification(ctx, callbackID, "")
		b.sendMessage(ctx, chatID, pedirFechaMsg)

	case strings.HasPrefix(payload, "att_est_"):
		var estudianteID int64
		fmt.Sscanf(payload, "att_est_%d", &estudianteID)
		b.cycleEstudiante(ctx, chatID, callbackID, estudianteID)

	case strings.HasPrefix(payload, "att_obs_"):
		var estudianteID int64
		fmt.Sscanf(payload, "att_obs_%d", &estudianteID)
		b.askObservacion(ctx, chatID, callbackID, estudianteID)

	case payload == "att_guardar":
		b.submitAsistencia(ctx, chatID, callbackID)

	default:
		b.logger.Warnf("Unknown asistencia callback: %s", payload)
	}
}

func (b *Bot) showFechaKeyboard(ctx context.Context, callbackID string, grupoID int64) {
	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	keyboard.AddRow().
		AddCallback(btnFechaHoy, schemes.DEFAULT, fmt.Sprintf("att_hoy_%d", grupoID)).
		AddCallback(btnFechaAyer, schemes.DEFAULT, fmt.Sprintf("att_ayer_%d", grupoID))
	keyboard.AddRow().AddCallback(btnFechaManual, schemes.DEFAULT, fmt.Sprintf("att_fecha_%d", grupoID))
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)

	b.answerWithKeyboard(ctx, callbackID, selectFechaMsg, keyboard)
}

func (b *Bot) handleFechaInput(ctx context.Context, chatID, grupoID int64, text string) {
	b.clearPending(chatID)

	fecha, err := services.ParseFecha(strings.TrimSpace(text))
	if err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, err.Error()))
		b.sendMessage(ctx, chatID, pedirFechaMsg)
		b.setPending(chatID, pendingInput{kind: pendingFecha, grupoID: grupoID})
		return
	}
	b.startRosterLoad(ctx, chatID, grupoID, fecha)
}

// startRosterLoad kicks off the concurrent verify+roster fetch. The loaded
// callback runs on the workflow's goroutine, so rendering goes through a
// fresh message rather than a callback answer.
func (b *Bot) startRosterLoad(ctx context.Context, chatID, grupoID int64, fecha string) {
	b.sendMessage(ctx, chatID, cargandoListaMsg)

	wf := b.workflowFor(chatID)
	wf.Select(ctx, attendance.Selection{GrupoID: grupoID, Fecha: fecha}, func(view attendance.View) {
		b.renderRoster(ctx, chatID, view)
	})
}

func (b *Bot) renderRoster(ctx context.Context, chatID int64, view attendance.View) {
	if view.Phase == attendance.PhaseError {
		b.sendKeyboard(ctx, backToMenuKeyboard(b.MaxAPI), chatID, fmt.Sprintf(errorMessageFormat, view.ErrMsg))
		return
	}
	b.sendKeyboard(ctx, b.rosterKeyboard(view), chatID, rosterText(view))
}

func rosterText(view attendance.View) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, rosterHeaderFormat, view.Selection.GrupoID, view.Selection.Fecha)
	if view.YaRegistrada {
		sb.WriteString("\n\n" + yaRegistradaBanner)
	}
	if len(view.Roster) == 0 {
		sb.WriteString("\n\nEl grupo no tiene estudiantes inscritos.")
	}
	return sb.String()
}

func (b *Bot) rosterKeyboard(view attendance.View) *maxbot.Keyboard {
	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	for _, entry := range view.Roster {
		label := fmt.Sprintf("%s %s — %s", estadoEmojis[entry.Estado], entry.EstudianteNombre, entry.Estado)
		keyboard.AddRow().
			AddCallback(label, schemes.DEFAULT, fmt.Sprintf("att_est_%d", entry.EstudianteID)).
			AddCallback(btnObservacion, schemes.DEFAULT, fmt.Sprintf("att_obs_%d", entry.EstudianteID))
	}
	if len(view.Roster) > 0 && !view.YaRegistrada {
		keyboard.AddRow().AddCallback(btnGuardar, schemes.POSITIVE, "att_guardar")
	}
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)
	return keyboard
}

func (b *Bot) cycleEstudiante(ctx context.Context, chatID int64, callbackID string, estudianteID int64) {
	wf := b.workflowFor(chatID)
	if _, err := wf.CycleEstado(estudianteID); err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, err.Error())
		return
	}
	view := wf.Snapshot()
	b.answerWithKeyboard(ctx, callbackID, rosterText(view), b.rosterKeyboard(view))
}

func (b *Bot) askObservacion(ctx context.Context, chatID int64, callbackID string, estudianteID int64) {
	view := b.workflowFor(chatID).Snapshot()
	nombre := fmt.Sprintf("estudiante %d", estudianteID)
	for _, entry := range view.Roster {
		if entry.EstudianteID == estudianteID {
			nombre = entry.EstudianteNombre
			break
		}
	}
	b.setPending(chatID, pendingInput{kind: pendingObservacion, estudianteID: estudianteID})
	b.answerCallbackWithNotification(ctx, callbackID, "")
	b.sendMessage(ctx, chatID, fmt.Sprintf(pedirObservacionMsg, nombre))
}

func (b *Bot) handleObservacionInput(ctx context.Context, chatID int64, text string) {
	p := b.pending(chatID)
	b.clearPending(chatID)

	wf := b.workflowFor(chatID)
	if err := wf.SetObservaciones(p.estudianteID, strings.TrimSpace(text)); err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, err.Error()))
		return
	}
	view := wf.Snapshot()
	b.sendKeyboard(ctx, b.rosterKeyboard(view), chatID, rosterText(view))
}

func (b *Bot) submitAsistencia(ctx context.Context, chatID int64, callbackID string) {
	wf := b.workflowFor(chatID)
	if err := wf.Submit(ctx); err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}
	view := wf.Snapshot()
	b.answerWithKeyboard(ctx, callbackID, asistenciaGuardadaMsg+"\n\n"+rosterText(view), b.rosterKeyboard(view))
}
