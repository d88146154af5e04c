package services

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/repositories"
)

// TelegramService pushes freshly created notifications to a user's linked
// Telegram chat. Delivery is best effort: nothing here ever fails the caller.
type TelegramService struct {
	bot   *tgbotapi.BotAPI
	users repositories.UserRepository
}

// NewTelegramService connects the bot. Returns an error only when a token is
// supplied and the Telegram API rejects it; the caller decides whether to run
// without push delivery.
func NewTelegramService(botToken string, users repositories.UserRepository) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("[tg][start] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, users: users}, nil
}

// NotifyUser sends text to the user's linked chat, if delivery is enabled.
func (t *TelegramService) NotifyUser(ctx context.Context, userID int64, text string) {
	if t == nil || t.bot == nil {
		return
	}
	chatID, allow, err := t.users.GetTelegramSettings(ctx, userID)
	if err != nil {
		log.Printf("[tg][skip] get settings user=%d: %v", userID, err)
		return
	}
	if !allow || chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chat=%d: %v", chatID, err)
	}
}
