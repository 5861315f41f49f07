package maxAPI

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/analytics"
	"asistenciaBot/api"
)

const (
	reportesMenuMsg       = "📊 Seleccione un reporte:"
	analyticsNoDisponible = "El servicio de análisis no está disponible en este momento."
	sinRiesgoMsg          = "No hay estudiantes en riesgo. 🎉"

	btnResumenHoy   = "📅 Asistencias de hoy"
	btnAnalisisGral = "📈 Análisis general"
	btnRiesgo       = "⚠️ Estudiantes en riesgo"
	btnMiReporte    = "📊 Mis grupos"
	btnReporteGrupo = "📚 Por grupo"
)

func (b *Bot) handleReportesMenu(ctx context.Context, chatID int64, callbackID string) {
	sess, ok := b.store.Current(chatID)
	if !ok {
		b.answerCallbackWithNotification(ctx, callbackID, sessionExpiredMsg)
		return
	}

	keyboard := b.MaxAPI.Messages.NewKeyboardBuilder()
	header := reportesMenuMsg

	if sess.TipoUsuario == api.RoleAdmin {
		stats, err := b.client.EstadisticasAdmin(ctx, chatID)
		if err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		header = fmt.Sprintf(
			"📊 **Resumen general**\nUsuarios: %d (profesores %d, estudiantes %d)\nGrupos: %d (%d activos)\n\n%s",
			stats.TotalUsuarios, stats.TotalProfesores, stats.TotalEstudiantes,
			stats.TotalGrupos, stats.GruposActivos, reportesMenuMsg)
		keyboard.AddRow().AddCallback(btnResumenHoy, schemes.DEFAULT, "rep_hoy")
		keyboard.AddRow().AddCallback(btnAnalisisGral, schemes.DEFAULT, "rep_general")
		keyboard.AddRow().AddCallback(btnRiesgo, schemes.DEFAULT, "rep_riesgo")
	} else {
		stats, err := b.client.EstadisticasProfesor(ctx, chatID)
		if err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		header = fmt.Sprintf(
			"📊 **Mi resumen**\nGrupos: %d\nEstudiantes: %d\nClases registradas: %d\n\n%s",
			stats.TotalGrupos, stats.TotalEstudiantes, stats.ClasesRegistradas, reportesMenuMsg)
		keyboard.AddRow().AddCallback(btnMiReporte, schemes.DEFAULT, "rep_prof")
	}
	keyboard.AddRow().AddCallback(btnReporteGrupo, schemes.DEFAULT, "rep_grupos")
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)

	b.answerWithKeyboard(ctx, callbackID, header, keyboard)
}

func (b *Bot) handleReporteCallback(ctx context.Context, chatID int64, callbackID, payload string) {
	switch {
	case payload == "rep_hoy":
		hoy, err := b.client.AsistenciasHoy(ctx, chatID)
		if err != nil {
			b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
			return
		}
		msg := fmt.Sprintf("📅 **Asistencias de hoy**\nRegistradas: %d\nPendientes: %d", hoy.Registradas, hoy.Pendientes)
		b.answerWithKeyboard(ctx, callbackID, msg, backToMenuKeyboard(b.MaxAPI))

	case payload == "rep_general":
		analisis, err := b.analytics.AnalisisGeneral(ctx)
		if err != nil {
			b.logger.Warnf("Analytics general failed: %v", err)
			b.answerCallbackWithNotification(ctx, callbackID, analyticsNoDisponible)
			return
		}
		b.answerWithKeyboard(ctx, callbackID, formatAnalisisGeneral(analisis), backToMenuKeyboard(b.MaxAPI))

	case payload == "rep_riesgo":
		prediccion, err := b.analytics.PrediccionDesercion(ctx)
		if err != nil {
			b.logger.Warnf("Analytics prediccion failed: %v", err)
			b.answerCallbackWithNotification(ctx, callbackID, analyticsNoDisponible)
			return
		}
		b.answerWithKeyboard(ctx, callbackID, formatRiesgo(prediccion.EstudiantesEnRiesgo), backToMenuKeyboard(b.MaxAPI))

	case payload == "rep_prof":
		sess, ok := b.store.Current(chatID)
		if !ok {
			b.answerCallbackWithNotification(ctx, callbackID, sessionExpiredMsg)
			return
		}
		reporte, err := b.analytics.ReporteProfesor(ctx, sess.UsuarioID)
		if err != nil {
			b.logger.Warnf("Analytics reporte profesor failed: %v", err)
			b.answerCallbackWithNotification(ctx, callbackID, analyticsNoDisponible)
			return
		}
		b.answerWithKeyboard(ctx, callbackID, formatReporteProfesor(reporte), backToMenuKeyboard(b.MaxAPI))

	case payload == "rep_grupos":
		b.showReporteGrupoPicker(ctx, chatID, callbackID)

	case strings.HasPrefix(payload, "rep_grp_"):
		var grupoID int64
		fmt.Sscanf(payload, "rep_grp_%d", &grupoID)
		b.showReporteGrupo(ctx, chatID, callbackID, grupoID)

	default:
		b.logger.Warnf("Unknown reporte callback: %s", payload)
	}
}

func (b *Bot) showReporteGrupoPicker(ctx context.Context, chatID int64, callbackID string) {
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
		keyboard.AddRow().AddCallback(label, schemes.DEFAULT, fmt.Sprintf("rep_grp_%d", grupo.ID))
	}
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)

	b.answerWithKeyboard(ctx, callbackID, "Seleccione el grupo:", keyboard)
}

// showReporteGrupo combines the primary API counters with the analytics
// percentages; when the analytics service is down the counters alone are
// still shown.
func (b *Bot) showReporteGrupo(ctx context.Context, chatID int64, callbackID string, grupoID int64) {
	stats, err := b.client.EstadisticasGrupo(ctx, chatID, grupoID)
	if err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 **Grupo %d**\nClases: %d\n✅ Presente: %d\n❌ Ausente: %d\n⏰ Tardanza: %d\n📄 Justificado: %d",
		grupoID, stats.TotalClases, stats.Presente, stats.Ausente, stats.Tardanza, stats.Justificado)

	if analisis, err := b.analytics.AnalisisGrupo(ctx, grupoID); err != nil {
		b.logger.Warnf("Analytics grupo %d failed: %v", grupoID, err)
	} else {
		fmt.Fprintf(&sb, "\n\n📈 Asistencia promedio: %.1f%%", analisis.PorcentajeAsistencia)
	}

	b.answerWithKeyboard(ctx, callbackID, sb.String(), backToMenuKeyboard(b.MaxAPI))
}

func formatAnalisisGeneral(analisis *analytics.AnalisisGeneral) string {
	var sb strings.Builder
	sb.WriteString("📈 **Análisis general**")

	estados := make([]string, 0, len(analisis.EstadoGeneral))
	for estado := range analisis.EstadoGeneral {
		estados = append(estados, estado)
	}
	sort.Strings(estados)
	for _, estado := range estados {
		fmt.Fprintf(&sb, "\n%s: %d", estado, analisis.EstadoGeneral[estado])
	}

	if len(analisis.AsistenciaPorMateria) > 0 {
		sb.WriteString("\n\n**Asistencia por materia**")
		materias := make([]string, 0, len(analisis.AsistenciaPorMateria))
		for materia := range analisis.AsistenciaPorMateria {
			materias = append(materias, materia)
		}
		sort.Strings(materias)
		for _, materia := range materias {
			fmt.Fprintf(&sb, "\n%s: %.1f%%", materia, analisis.AsistenciaPorMateria[materia])
		}
	}
	return sb.String()
}

func formatRiesgo(estudiantes []analytics.EstudianteEnRiesgo) string {
	if len(estudiantes) == 0 {
		return sinRiesgoMsg
	}
	var sb strings.Builder
	sb.WriteString("⚠️ **Estudiantes en riesgo**")
	for _, estudiante := range estudiantes {
		fmt.Fprintf(&sb, "\n%s — %.1f%% asistencia, %d ausencias (%s)",
			estudiante.Nombre, estudiante.PorcentajeAsistencia, estudiante.Ausencias, estudiante.NivelRiesgo)
	}
	return sb.String()
}

func formatReporteProfesor(reporte *analytics.ReporteProfesor) string {
	if len(reporte.Grupos) == 0 {
		return "Sin datos de asistencia todavía."
	}
	var sb strings.Builder
	sb.WriteString("📊 **Mis grupos**")
	for _, grupo := range reporte.Grupos {
		fmt.Fprintf(&sb, "\nGrupo %d: %.1f%% de asistencia", grupo.GrupoID, grupo.PorcentajeAsistencia)
	}
	return sb.String()
}

// handleMiAsistencia is the student's only screen: their own attendance
// summary from the analytics service.
func (b *Bot) handleMiAsistencia(ctx context.Context, chatID int64, callbackID string) {
	sess, ok := b.store.Current(chatID)
	if !ok {
		b.answerCallbackWithNotification(ctx, callbackID, sessionExpiredMsg)
		return
	}

	analisis, err := b.analytics.AnalisisEstudiante(ctx, sess.UsuarioID)
	if err != nil {
		b.logger.Warnf("Analytics estudiante %d failed: %v", sess.UsuarioID, err)
		b.answerCallbackWithNotification(ctx, callbackID, analyticsNoDisponible)
		return
	}

	msg := fmt.Sprintf(
		"🎓 **Mi asistencia**\nAsistencia: %.1f%%\nClases: %d\nAusencias: %d\nTardanzas: %d",
		analisis.PorcentajeAsistencia, analisis.TotalClases, analisis.Ausencias, analisis.Tardanzas)
	b.answerWithKeyboard(ctx, callbackID, msg, backToMenuKeyboard(b.MaxAPI))
}
