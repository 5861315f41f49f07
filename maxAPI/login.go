package maxAPI

import (
	"context"
	"fmt"

	"asistenciaBot/api"
	"asistenciaBot/services"
)

const (
	loginPromptMsg = "🔐 Inicie sesión enviando un mensaje con:\n\nusuario contraseña"
	welcomeFormat  = "✅ Bienvenido, %s (%s)."
)

func (b *Bot) sendLoginPrompt(ctx context.Context, chatID int64) {
	b.setPending(chatID, pendingInput{kind: pendingCredenciales})
	b.sendMessage(ctx, chatID, loginPromptMsg)
}

func (b *Bot) handleLoginInput(ctx context.Context, chatID int64, text string) {
	creds, err := services.ParseCredenciales(text)
	if err != nil {
		// Client-side rejection; the credentials never left the chat.
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, err.Error()))
		b.sendMessage(ctx, chatID, loginPromptMsg)
		return
	}

	sess, err := b.store.Login(ctx, chatID, creds)
	if err != nil {
		b.logger.Warnf("Login failed for chat %d: %v", chatID, err)
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, api.UserMessage(err)))
		b.sendMessage(ctx, chatID, loginPromptMsg)
		return
	}

	b.clearPending(chatID)
	b.sendMessage(ctx, chatID, fmt.Sprintf(welcomeFormat, sess.NombreUsuario, sess.TipoUsuario))

	keyboard, menuText := b.getMenuByRole(sess.TipoUsuario)
	if keyboard != nil {
		b.sendKeyboard(ctx, keyboard, chatID, menuText)
	}
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64, callbackID string) {
	if err := b.store.Logout(ctx, chatID); err != nil {
		b.answerCallbackWithNotification(ctx, callbackID, api.UserMessage(err))
		return
	}

	b.workflowFor(chatID).Reset()
	b.clearPending(chatID)

	b.answerCallbackWithNotification(ctx, callbackID, logoutMsg)
	b.sendLoginPrompt(ctx, chatID)
}
