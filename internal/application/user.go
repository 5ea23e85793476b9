package app

import (
	"context"
	"fmt"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

// UserService состояние диалога пользователей бота
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.SetState(state) })
}

// AwaitPhoto запоминает задачу для следующего фото. Цвет обязателен для TaskRoute.
func (s *UserService) AwaitPhoto(ctx context.Context, userID, chatID int64, task entity.Task, color string) (*entity.User, error) {
	var label entity.ColorLabel
	if task == entity.TaskRoute {
		l, err := entity.ParseLabel(color)
		if err != nil {
			return nil, err
		}
		label = l
	}
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.Await(task, label) })
}

// ToggleOverlay переключает режим рисования поверх снимка
func (s *UserService) ToggleOverlay(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) { u.Overlay = !u.Overlay })
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// Reset сбрасывает все настройки пользователя
func (s *UserService) Reset(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("reset user %d: %w", userID, err)
	}
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, apply func(*entity.User)) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	apply(user)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
