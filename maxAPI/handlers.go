package maxAPI

import (
	"context"
	"strings"

	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/api"
	"asistenciaBot/session"
)

const (
	mainMenuAdminMsg      = "Menú principal — Administrador:"
	mainMenuProfesorMsg   = "Menú principal — Profesor:"
	mainMenuEstudianteMsg = "Menú principal — Estudiante:"

	sessionExpiredMsg  = "⚠️ Su sesión expiró o fue rechazada por el servidor."
	unauthorizedMsg    = "⛔ No tiene permisos para acceder a esta sección."
	startingUpMsg      = "⏳ El sistema está iniciando, intente en unos segundos."
	unknownMessageMsg  = "❓ No entiendo ese mensaje. Use el menú."
	logoutMsg          = "👋 Sesión cerrada. Hasta pronto."
	errorMessageFormat = "❌ Error:\n\n%s"
)

func (b *Bot) handleBotStarted(ctx context.Context, u *schemes.BotStartedUpdate) {
	chatID := u.User.UserId
	b.showEntryPoint(ctx, chatID)
}

// showEntryPoint is the bot's render-vs-redirect: menu for a live session,
// login prompt otherwise.
func (b *Bot) showEntryPoint(ctx context.Context, chatID int64) {
	switch b.guard.Evaluate(chatID) {
	case session.DecisionLoading:
		b.sendMessage(ctx, chatID, startingUpMsg)
	case session.DecisionUnauthenticated:
		b.sendLoginPrompt(ctx, chatID)
	default:
		sess, _ := b.store.Current(chatID)
		keyboard, menuText := b.getMenuByRole(sess.TipoUsuario)
		if keyboard == nil {
			b.logger.Warnf("Unknown role for chat %d: %s", chatID, sess.TipoUsuario)
			b.sendLoginPrompt(ctx, chatID)
			return
		}
		b.sendKeyboard(ctx, keyboard, chatID, menuText)
	}
}

func (b *Bot) handleMessageCreated(ctx context.Context, u *schemes.MessageCreatedUpdate) {
	chatID := u.Message.Sender.UserId
	messageID := u.Message.Body.Mid

	if b.isMessageProcessed(messageID) {
		b.logger.Debugf("Message %s already processed, skipping", messageID)
		return
	}
	b.markMessageProcessed(messageID)
	defer b.cleanupProcessedMessage(messageID)

	attachments := u.Message.Body.Attachments
	text := strings.TrimSpace(u.Message.Body.Text)
	p := b.pending(chatID)

	if len(attachments) > 0 {
		if p.kind == pendingCSVUsuarios {
			b.handleCSVUpload(ctx, chatID, attachments)
		} else {
			b.sendMessage(ctx, chatID, unknownMessageMsg)
		}
		return
	}
	if text == "" {
		return
	}

	switch p.kind {
	case pendingCredenciales:
		b.handleLoginInput(ctx, chatID, text)
	case pendingFecha:
		b.handleFechaInput(ctx, chatID, p.grupoID, text)
	case pendingObservacion:
		b.handleObservacionInput(ctx, chatID, text)
	case pendingNuevoGrupo:
		b.handleNuevoGrupoInput(ctx, chatID, text)
	case pendingContrasena:
		b.handleContrasenaInput(ctx, chatID, p.usuarioID, text)
	default:
		b.sendMessage(ctx, chatID, unknownMessageMsg)
		b.showEntryPoint(ctx, chatID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, u *schemes.MessageCallbackUpdate) {
	chatID := u.Callback.User.UserId
	callbackID := u.Callback.CallbackID
	payload := u.Callback.Payload

	b.logger.Debugf("Callback received: payload=%s, chatID=%d", payload, chatID)

	// Any callback abandons a pending text input.
	b.clearPending(chatID)

	switch {
	case payload == payloadBackToMenu:
		b.handleBackToMenu(ctx, chatID, callbackID)
	case payload == payloadLogout:
		b.handleLogout(ctx, chatID, callbackID)

	case payload == payloadUsuarios:
		b.withRole(ctx, chatID, callbackID, []api.Role{api.RoleAdmin}, b.handleUsuariosMenu)
	case strings.HasPrefix(payload, "usr_"):
		b.withRolePayload(ctx, chatID, callbackID, payload, []api.Role{api.RoleAdmin}, b.handleUsuarioCallback)

	case payload == payloadGrupos:
		b.withRole(ctx, chatID, callbackID, []api.Role{api.RoleAdmin}, b.handleGruposMenu)
	case strings.HasPrefix(payload, "grp_"):
		b.withRolePayload(ctx, chatID, callbackID, payload, []api.Role{api.RoleAdmin}, b.handleGrupoCallback)

	case payload == payloadImportarCSV:
		b.withRole(ctx, chatID, callbackID, []api.Role{api.RoleAdmin}, b.handleImportarCSVStart)

	case payload == payloadAsistencia:
		b.withRole(ctx, chatID, callbackID, []api.Role{api.RoleAdmin, api.RoleProfesor}, b.handleAsistenciaMenu)
	case strings.HasPrefix(payload, "att_"):
		b.withRolePayload(ctx, chatID, callbackID, payload, []api.Role{api.RoleAdmin, api.RoleProfesor}, b.handleAsistenciaCallback)

	case payload == payloadHistorial:
		b.withRole(ctx, chatID, callbackID, []api.Role{api.RoleAdmin, api.RoleProfesor}, b.handleHistorialMenu)
	case strings.HasPrefix(payload, "hist_"):
		b.withRolePayload(ctx, chatID, callbackID, payload, []api.Role{api.RoleAdmin, api.RoleProfesor}, b.handleHistorialCallback)

	case payload == payloadReportes:
		b.withRole(ctx, chatID, callbackID, []api.Role{api.RoleAdmin, api.RoleProfesor}, b.handleReportesMenu)
	case strings.HasPrefix(payload, "rep_"):
		b.withRolePayload(ctx, chatID, callbackID, payload, []api.Role{api.RoleAdmin, api.RoleProfesor}, b.handleReporteCallback)

	case payload == payloadMiAsistencia:
		b.withRole(ctx, chatID, callbackID, []api.Role{api.RoleEstudiante}, b.handleMiAsistencia)

	default:
		b.logger.Warnf("Unknown callback: %s", payload)
	}
}

// withRole gates a screen by role, recomputing the decision from current
// session state on every callback.
func (b *Bot) withRole(ctx context.Context, chatID int64, callbackID string, allowed []api.Role, handler func(context.Context, int64, string)) {
	if !b.authorize(ctx, chatID, callbackID, allowed) {
		return
	}
	handler(ctx, chatID, callbackID)
}

func (b *Bot) withRolePayload(ctx context.Context, chatID int64, callbackID, payload string, allowed []api.Role, handler func(context.Context, int64, string, string)) {
	if !b.authorize(ctx, chatID, callbackID, allowed) {
		return
	}
	handler(ctx, chatID, callbackID, payload)
}

func (b *Bot) authorize(ctx context.Context, chatID int64, callbackID string, allowed []api.Role) bool {
	switch b.guard.Evaluate(chatID, allowed...) {
	case session.DecisionAuthorized:
		return true
	case session.DecisionLoading:
		b.answerCallbackWithNotification(ctx, callbackID, startingUpMsg)
	case session.DecisionUnauthenticated:
		b.sendLoginPrompt(ctx, chatID)
	case session.DecisionForbidden:
		b.logger.Warnf("Chat %d denied access (roles %v)", chatID, allowed)
		b.answerCallbackWithNotification(ctx, callbackID, unauthorizedMsg)
	}
	return false
}

func (b *Bot) handleBackToMenu(ctx context.Context, chatID int64, callbackID string) {
	sess, ok := b.store.Current(chatID)
	if !ok {
		b.sendLoginPrompt(ctx, chatID)
		return
	}

	b.workflowFor(chatID).Reset()

	keyboard, menuText := b.getMenuByRole(sess.TipoUsuario)
	if keyboard == nil {
		b.logger.Warnf("Unknown role for chat %d: %s", chatID, sess.TipoUsuario)
		return
	}
	b.answerWithKeyboard(ctx, callbackID, menuText, keyboard)
}
