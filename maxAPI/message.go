package maxAPI

import (
	"context"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"
)

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := b.MaxAPI.Messages.Send(ctx, maxbot.NewMessage().
		SetUser(chatID).
		SetText(text))
	if err != nil && err.Error() != "" {
		b.logger.Errorf("Failed to send message: %v", err)
		return err
	}
	return nil
}

func (b *Bot) sendKeyboard(ctx context.Context, keyboard *maxbot.Keyboard, chatID int64, msg string) {
	_, err := b.MaxAPI.Messages.Send(ctx, maxbot.NewMessage().
		SetUser(chatID).
		AddKeyboard(keyboard).
		SetText(msg).SetFormat("markdown"))
	if err != nil && err.Error() != "" {
		b.logger.Errorf("Failed to send keyboard: %v", err)
	}
}

func (b *Bot) answerWithKeyboard(ctx context.Context, callbackID, text string, keyboard *maxbot.Keyboard) error {
	messageBody := &schemes.NewMessageBody{
		Text:        text,
		Attachments: []interface{}{schemes.NewInlineKeyboardAttachmentRequest(keyboard.Build())},
	}

	answer := &schemes.CallbackAnswer{Message: messageBody}
	_, err := b.MaxAPI.Messages.AnswerOnCallback(ctx, callbackID, answer)
	if err != nil && err.Error() != "" {
		b.logger.Errorf("Failed to answer callback: %v", err)
		return err
	}
	return nil
}

func (b *Bot) answerCallbackWithNotification(ctx context.Context, callbackID, notification string) error {
	answer := &schemes.CallbackAnswer{Notification: notification}
	_, err := b.MaxAPI.Messages.AnswerOnCallback(ctx, callbackID, answer)
	if err != nil && err.Error() != "" {
		b.logger.Errorf("Failed to answer callback: %v", err)
		return err
	}
	return nil
}

func (b *Bot) isMessageProcessed(messageID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processedMessages[messageID]
}

func (b *Bot) markMessageProcessed(messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processedMessages[messageID] = true
}

func (b *Bot) cleanupProcessedMessage(messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.processedMessages, messageID)
}
