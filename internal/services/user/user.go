// Package services содержит бизнес-логику управления профилями читателей
// и административными признаками: библиотекарь и активность членства.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-management/internal/models"
)

// UserRepository определяет методы для работы с читателями в хранилище.
type UserRepository interface {
	// GetUser возвращает читателя по его UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// UpdateUserProfile обновляет профильные поля читателя.
	UpdateUserProfile(ctx context.Context, user models.User) (int64, error)
	// ToggleLibrarian переключает признак библиотекаря.
	ToggleLibrarian(ctx context.Context, userUID string) (bool, error)
	// ToggleActiveMember переключает активность членства.
	ToggleActiveMember(ctx context.Context, userUID string) (bool, error)
	// CountActiveLoans возвращает количество активных займов читателя.
	CountActiveLoans(ctx context.Context, userUID string) (int, error)
}

// UserService реализует бизнес-логику профилей и административных действий.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{
		repo: repo,
		log:  log,
	}
}

// Profile возвращает профиль читателя вместе с числом его активных займов.
func (s *UserService) Profile(ctx context.Context, userUID string) (*models.User, int, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, 0, err
	}
	activeLoans, err := s.repo.CountActiveLoans(ctx, userUID)
	if err != nil {
		return nil, 0, err
	}
	return user, activeLoans, nil
}

// UpdateProfile применяет непустые поля запроса к профилю читателя.
// Учетные данные и роли через профиль не меняются.
func (s *UserService) UpdateProfile(ctx context.Context, userUID string, req models.DummyProfile) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date of birth: %w", err)
		}
		user.DateOfBirth = &parsed
	}

	if _, err := s.repo.UpdateUserProfile(ctx, *user); err != nil {
		return nil, err
	}

	s.log.Info("profile updated", slog.String("user_uid", userUID))
	return user, nil
}

// ToggleLibrarian переключает признак библиотекаря и возвращает обновленный
// профиль. Новая роль попадает в токены при следующем входе или обновлении.
func (s *UserService) ToggleLibrarian(ctx context.Context, userUID string) (*models.User, error) {
	value, err := s.repo.ToggleLibrarian(ctx, userUID)
	if err != nil {
		return nil, err
	}

	s.log.Info("librarian flag toggled",
		slog.String("user_uid", userUID), slog.Bool("is_librarian", value))
	return s.repo.GetUser(ctx, userUID)
}

// ToggleActive переключает активность членства и возвращает обновленный
// профиль. Неактивный читатель не может брать книги.
func (s *UserService) ToggleActive(ctx context.Context, userUID string) (*models.User, error) {
	value, err := s.repo.ToggleActiveMember(ctx, userUID)
	if err != nil {
		return nil, err
	}

	s.log.Info("active member flag toggled",
		slog.String("user_uid", userUID), slog.Bool("is_active_member", value))
	return s.repo.GetUser(ctx, userUID)
}
