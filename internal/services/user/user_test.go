package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserProfile(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) ToggleLibrarian(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepoMock) ToggleActiveMember(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepoMock) CountActiveLoans(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testUser() *models.User {
	return &models.User{
		UID:            "reader-uid",
		Email:          "reader@example.com",
		Username:       "reader",
		FirstName:      "Ivan",
		LastName:       "Petrov",
		IsLibrarian:    false,
		IsActiveMember: true,
	}
}

func TestUserService_Profile(t *testing.T) {
	t.Run("профиль вместе с числом активных займов", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "reader-uid").Return(testUser(), nil).Once()
		repo.On("CountActiveLoans", mock.Anything, "reader-uid").Return(3, nil).Once()

		svc := NewUserService(repo, newNoopLogger())
		user, activeLoans, err := svc.Profile(context.Background(), "reader-uid")

		assert.NoError(t, err)
		assert.Equal(t, "reader", user.Username)
		assert.Equal(t, 3, activeLoans)
		repo.AssertExpectations(t)
	})

	t.Run("читатель не найден", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "unknown-uid").Return(nil, repository.ErrNotFound).Once()

		svc := NewUserService(repo, newNoopLogger())
		_, _, err := svc.Profile(context.Background(), "unknown-uid")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		repo.AssertExpectations(t)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("непустые поля применяются, остальные сохраняются", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "reader-uid").Return(testUser(), nil).Once()
		repo.On("UpdateUserProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.FirstName == "Petr" &&
				u.LastName == "Petrov" &&
				u.Email == "reader@example.com" &&
				u.PhoneNumber == "+79990001122"
		})).Return(int64(1), nil).Once()

		svc := NewUserService(repo, newNoopLogger())
		user, err := svc.UpdateProfile(context.Background(), "reader-uid", models.DummyProfile{
			FirstName:   "Petr",
			PhoneNumber: "+79990001122",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Petr", user.FirstName)
		repo.AssertExpectations(t)
	})

	t.Run("дата рождения парсится из строки", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "reader-uid").Return(testUser(), nil).Once()
		repo.On("UpdateUserProfile", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.DateOfBirth != nil &&
				u.DateOfBirth.Equal(time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC))
		})).Return(int64(1), nil).Once()

		svc := NewUserService(repo, newNoopLogger())
		_, err := svc.UpdateProfile(context.Background(), "reader-uid", models.DummyProfile{
			DateOfBirth: "1990-05-15",
		})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("читатель не найден", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "unknown-uid").Return(nil, repository.ErrNotFound).Once()

		svc := NewUserService(repo, newNoopLogger())
		_, err := svc.UpdateProfile(context.Background(), "unknown-uid", models.DummyProfile{FirstName: "Petr"})

		assert.ErrorIs(t, err, repository.ErrNotFound)
		repo.AssertExpectations(t)
	})
}

func TestUserService_ToggleLibrarian(t *testing.T) {
	t.Run("назначение библиотекаря возвращает обновленный профиль", func(t *testing.T) {
		promoted := testUser()
		promoted.IsLibrarian = true

		repo := new(UserRepoMock)
		repo.On("ToggleLibrarian", mock.Anything, "reader-uid").Return(true, nil).Once()
		repo.On("GetUser", mock.Anything, "reader-uid").Return(promoted, nil).Once()

		svc := NewUserService(repo, newNoopLogger())
		user, err := svc.ToggleLibrarian(context.Background(), "reader-uid")

		assert.NoError(t, err)
		assert.True(t, user.IsLibrarian)
		repo.AssertExpectations(t)
	})

	t.Run("читатель не найден", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("ToggleLibrarian", mock.Anything, "unknown-uid").
			Return(false, repository.ErrNotFound).Once()

		svc := NewUserService(repo, newNoopLogger())
		_, err := svc.ToggleLibrarian(context.Background(), "unknown-uid")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		repo.AssertExpectations(t)
	})
}

func TestUserService_ToggleActive(t *testing.T) {
	suspended := testUser()
	suspended.IsActiveMember = false

	repo := new(UserRepoMock)
	repo.On("ToggleActiveMember", mock.Anything, "reader-uid").Return(false, nil).Once()
	repo.On("GetUser", mock.Anything, "reader-uid").Return(suspended, nil).Once()

	svc := NewUserService(repo, newNoopLogger())
	user, err := svc.ToggleActive(context.Background(), "reader-uid")

	assert.NoError(t, err)
	assert.False(t, user.IsActiveMember)
	repo.AssertExpectations(t)
}
