package port

import (
	"context"

	"climbing-holds/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей бота
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние и настройки пользователя
	Save(ctx context.Context, user *entity.User) error

	// Delete забывает пользователя; следующий Get вернёт настройки по умолчанию
	Delete(ctx context.Context, userID int64) error
}
