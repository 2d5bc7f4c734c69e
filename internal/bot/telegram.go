package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramTransport sends replies through the Telegram Bot API and feeds
// incoming updates into a Handler.
type TelegramTransport struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewTelegramTransport(token string, logger *zap.Logger) (*TelegramTransport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Info("telegram: authorized", zap.String("username", api.Self.UserName))
	return &TelegramTransport{api: api, logger: logger}, nil
}

func (t *TelegramTransport) Reply(userID int64, text string, kb *Keyboard) error {
	msg := tgbotapi.NewMessage(userID, text)
	if kb != nil {
		rows := make([][]tgbotapi.KeyboardButton, len(kb.Rows))
		for i, row := range kb.Rows {
			buttons := make([]tgbotapi.KeyboardButton, len(row))
			for j, label := range row {
				buttons[j] = tgbotapi.NewKeyboardButton(label)
			}
			rows[i] = buttons
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.OneTimeKeyboard = kb.SingleUse
		markup.ResizeKeyboard = true
		msg.ReplyMarkup = markup
	}
	_, err := t.api.Send(msg)
	return err
}

// Listen consumes updates until the context is cancelled. Updates are
// processed sequentially, which keeps each user's dialogue strictly
// ordered.
func (t *TelegramTransport) Listen(ctx context.Context, handler *Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			handler.HandleText(ctx, update.Message.Chat.ID, update.Message.Text)
		}
	}
}
