package models

import "time"

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // не отдаём наружу

	// Telegram-доставка уведомлений (опционально)
	TelegramChatID int64 `json:"-"`
	TelegramNotify bool  `json:"telegram_notify"`

	// refresh-хранение в БД
	RefreshToken     *string    `json:"-"` // храним opaque строку
	RefreshExpiresAt *time.Time `json:"-"` // срок действия

	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
