package maxAPI

import (
	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/api"
)

const (
	btnUsuarios     = "👥 Gestionar usuarios"
	btnGrupos       = "📚 Gestionar grupos"
	btnImportarCSV  = "📄 Importar usuarios (CSV)"
	btnTomarAsist   = "✅ Tomar asistencia"
	btnHistorial    = "🗂 Historial de asistencias"
	btnReportes     = "📊 Reportes"
	btnMiAsistencia = "📈 Mi asistencia"
	btnCerrarSesion = "🚪 Cerrar sesión"
	btnVolverAlMenu = "← Volver al menú"

	payloadUsuarios     = "usuarios"
	payloadGrupos       = "grupos"
	payloadImportarCSV  = "importarCSV"
	payloadAsistencia   = "asistencia"
	payloadHistorial    = "historial"
	payloadReportes     = "reportes"
	payloadMiAsistencia = "miAsistencia"
	payloadLogout       = "logout"
	payloadBackToMenu   = "backToMenu"
)

func GetAdminKeyboard(maxAPI *maxbot.Api) *maxbot.Keyboard {
	keyboard := maxAPI.Messages.NewKeyboardBuilder()
	keyboard.AddRow().AddCallback(btnUsuarios, schemes.DEFAULT, payloadUsuarios)
	keyboard.AddRow().AddCallback(btnGrupos, schemes.DEFAULT, payloadGrupos)
	keyboard.AddRow().AddCallback(btnTomarAsist, schemes.POSITIVE, payloadAsistencia)
	keyboard.AddRow().AddCallback(btnHistorial, schemes.DEFAULT, payloadHistorial)
	keyboard.AddRow().AddCallback(btnReportes, schemes.DEFAULT, payloadReportes)
	keyboard.AddRow().AddCallback(btnImportarCSV, schemes.NEGATIVE, payloadImportarCSV)
	keyboard.AddRow().AddCallback(btnCerrarSesion, schemes.NEGATIVE, payloadLogout)
	return keyboard
}

func GetProfesorKeyboard(maxAPI *maxbot.Api) *maxbot.Keyboard {
	keyboard := maxAPI.Messages.NewKeyboardBuilder()
	keyboard.AddRow().AddCallback(btnTomarAsist, schemes.POSITIVE, payloadAsistencia)
	keyboard.AddRow().AddCallback(btnHistorial, schemes.DEFAULT, payloadHistorial)
	keyboard.AddRow().AddCallback(btnReportes, schemes.DEFAULT, payloadReportes)
	keyboard.AddRow().AddCallback(btnCerrarSesion, schemes.NEGATIVE, payloadLogout)
	return keyboard
}

func GetEstudianteKeyboard(maxAPI *maxbot.Api) *maxbot.Keyboard {
	keyboard := maxAPI.Messages.NewKeyboardBuilder()
	keyboard.AddRow().AddCallback(btnMiAsistencia, schemes.POSITIVE, payloadMiAsistencia)
	keyboard.AddRow().AddCallback(btnCerrarSesion, schemes.NEGATIVE, payloadLogout)
	return keyboard
}

func (b *Bot) getMenuByRole(role api.Role) (*maxbot.Keyboard, string) {
	switch role {
	case api.RoleAdmin:
		return GetAdminKeyboard(b.MaxAPI), mainMenuAdminMsg
	case api.RoleProfesor:
		return GetProfesorKeyboard(b.MaxAPI), mainMenuProfesorMsg
	case api.RoleEstudiante:
		return GetEstudianteKeyboard(b.MaxAPI), mainMenuEstudianteMsg
	default:
		return nil, ""
	}
}

func backToMenuKeyboard(maxAPI *maxbot.Api) *maxbot.Keyboard {
	keyboard := maxAPI.Messages.NewKeyboardBuilder()
	keyboard.AddRow().AddCallback(btnVolverAlMenu, schemes.DEFAULT, payloadBackToMenu)
	return keyboard
}
