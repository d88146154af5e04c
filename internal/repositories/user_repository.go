package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"taskboard/internal/apperrors"
	"taskboard/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// refresh helpers
	UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)

	// Telegram helpers
	UpdateTelegramLink(ctx context.Context, userID, chatID int64, enable bool) error
	GetTelegramSettings(ctx context.Context, userID int64) (chatID int64, notify bool, err error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, name, email, password_hash, telegram_chat_id, telegram_notify,
       refresh_token, refresh_expires_at, created_at`

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.TelegramChatID, &u.TelegramNotify,
		&u.RefreshToken, &u.RefreshExpiresAt, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: find user: %v", apperrors.ErrUnavailable, err)
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (name, email, password_hash, telegram_chat_id, telegram_notify, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	err := r.DB.QueryRowContext(ctx, q,
		user.Name, user.Email, user.PasswordHash, user.TelegramChatID, user.TelegramNotify,
		user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: create user: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.DB.QueryRowContext(ctx, q, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.DB.QueryRowContext(ctx, q, email))
}

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1, refresh_expires_at = $2 WHERE id = $3`,
		token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("%w: update refresh: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return r.scanUser(r.DB.QueryRowContext(ctx, q, token))
}

func (r *userRepository) UpdateTelegramLink(ctx context.Context, userID, chatID int64, enable bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET telegram_chat_id = $1, telegram_notify = $2 WHERE id = $3`,
		chatID, enable, userID)
	if err != nil {
		return fmt.Errorf("%w: update telegram link: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}

func (r *userRepository) GetTelegramSettings(ctx context.Context, userID int64) (int64, bool, error) {
	var chatID int64
	var notify bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT telegram_chat_id, telegram_notify FROM users WHERE id = $1`, userID,
	).Scan(&chatID, &notify)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
		}
		return 0, false, fmt.Errorf("%w: telegram settings: %v", apperrors.ErrUnavailable, err)
	}
	return chatID, notify, nil
}
