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
	selectGrupoHistorialMsg = "Seleccione un grupo para ver el historial:"
	sinRegistrosMsg         = "No hay registros de asistencia para este grupo."
	historialHeaderFormat   = "🗂 **Historial — grupo %d**\n"

	// The chat renders at most this many records per page; older ones stay
	// reachable through the estado filters.
	historialMaxRegistros = 25
)

func (b *Bot) handleHistorialMenu(ctx context.Context, chatID int64, callbackID string) {
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
		keyboard.AddRow().AddCallback(label, schemes.DEFAULT, fmt.Sprintf("hist_grp_%d", grupo.ID))
	}
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)

	b.answerWithKeyboard(ctx, callbackID, selectGrupoHistorialMsg, keyboard)
}

func (b *Bot) handleHistorialCallback(ctx context.Context, chatID int64, callbackID, payload string) {
	switch {
	case strings.HasPrefix(payload, "hist_grp_"):
		var grupoID int64
		fmt.Sscanf(payload, "hist_grp_%d", &grupoID)
		b.showHistorial(ctx, chatID, callbackID, grupoID, "")

	case strings.HasPrefix(payload, "hist_flt_"):
		var grupoID int64
		var estado string
		fmt.Sscanf(payload, "hist_flt_%d_%s", &grupoID, &estado)
		b.showHistorial(ctx, chatID, callbackID, grupoID, api.Estado(estado))

	default:
		b.logger.Warnf("Unknown historial callback: %s", payload)
	}
}

func (b *Bot) showHistorial(ctx context.Context, chatID int64, callbackID string, grupoID int64, estado api.Estado) {
	var (
		registros []api.HistorialRegistro
		err       error
	)
	if estado == "" {
		registros, err = b.client.Historial(ctx, chatID, grupoID)
	} else {
		registros, err = b.client.HistorialFiltrado(ctx, chatID, api.HistorialFiltro{
			GrupoID: grupoID,
			Estado:  estado,
		})
	}
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}

	b.answerWithKeyboard(ctx, callbackID, formatHistorial(grupoID, registros), historialKeyboard(b.MaxAPI, grupoID))
}

func formatHistorial(grupoID int64, registros []api.HistorialRegistro) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, historialHeaderFormat, grupoID)
	if len(registros) == 0 {
		sb.WriteString("\n" + sinRegistrosMsg)
		return sb.String()
	}

	if len(registros) > historialMaxRegistros {
		registros = registros[:historialMaxRegistros]
	}
	for _, registro := range registros {
		fmt.Fprintf(&sb, "\n%s %s — %s (%s)",
			estadoEmojis[registro.Estado], registro.Fecha, registro.EstudianteNombre, registro.Estado)
		if registro.Observaciones != "" {
			fmt.Fprintf(&sb, "\n   _%s_", registro.Observaciones)
		}
	}
	return sb.String()
}

func historialKeyboard(maxAPI *maxbot.Api, grupoID int64) *maxbot.Keyboard {
	keyboard := maxAPI.Messages.NewKeyboardBuilder()
	row := keyboard.AddRow()
	for _, estado := range api.Estados {
		row.AddCallback(estadoEmojis[estado], schemes.DEFAULT, fmt.Sprintf("hist_flt_%d_%s", grupoID, estado))
	}
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)
	return keyboard
}
