package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-management/internal/models"
)

func TestToggleUserFlags(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	t.Run("назначение и снятие библиотекаря", func(t *testing.T) {
		userUID := factory.CreateUser(t, "reader1", "reader1@example.com", false, true)

		value, err := storage.ToggleLibrarian(ctx, userUID)
		require.NoError(t, err)
		assert.True(t, value)

		user, err := storage.GetUser(ctx, userUID)
		require.NoError(t, err)
		assert.True(t, user.IsLibrarian)

		value, err = storage.ToggleLibrarian(ctx, userUID)
		require.NoError(t, err)
		assert.False(t, value)
	})

	t.Run("приостановка членства", func(t *testing.T) {
		userUID := factory.CreateUser(t, "reader2", "reader2@example.com", false, true)

		value, err := storage.ToggleActiveMember(ctx, userUID)
		require.NoError(t, err)
		assert.False(t, value)

		// Неактивный читатель больше не может брать книги.
		bookID := factory.CreateBook(t, "Book One", "9780000000061", 1, 1, models.BookStatusAvailable)
		_, err = storage.BorrowTx(ctx, models.Loan{
			UserUID:     userUID,
			BookID:      bookID,
			DueDate:     time.Now().Add(14 * 24 * time.Hour),
			MaxRenewals: 2,
		}, 5)
		assert.ErrorIs(t, err, ErrMemberInactive)
	})

	t.Run("несуществующий читатель", func(t *testing.T) {
		_, err := storage.ToggleLibrarian(ctx, "a3bb189e-8bf9-3888-9912-ace4e6543999")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = storage.ToggleActiveMember(ctx, "a3bb189e-8bf9-3888-9912-ace4e6543999")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateUserProfile(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userUID := factory.CreateUser(t, "reader1", "reader1@example.com", false, true)

	birthDate := time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC)
	count, err := storage.UpdateUserProfile(ctx, models.User{
		UID:         userUID,
		Email:       "new@example.com",
		FirstName:   "Petr",
		LastName:    "Petrov",
		PhoneNumber: "+79990001122",
		DateOfBirth: &birthDate,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	user, err := storage.GetUser(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Petr", user.FirstName)
	assert.Equal(t, "Petrov", user.LastName)
	assert.Equal(t, "+79990001122", user.PhoneNumber)
	require.NotNil(t, user.DateOfBirth)
	assert.Equal(t, birthDate.Format("2006-01-02"), user.DateOfBirth.Format("2006-01-02"))

	count, err = storage.UpdateUserProfile(ctx, models.User{
		UID:   "a3bb189e-8bf9-3888-9912-ace4e6543999",
		Email: "ghost@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCountActiveLoans(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	now := time.Now()

	userUID := factory.CreateUser(t, "reader1", "reader1@example.com", false, true)
	bookID := factory.CreateBook(t, "Book One", "9780000000071", 5, 3, models.BookStatusAvailable)

	count, err := storage.CountActiveLoans(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	factory.CreateLoan(t, userUID, bookID, now.Add(24*time.Hour), models.LoanStatusBorrowed)
	factory.CreateLoan(t, userUID, bookID, now.Add(-24*time.Hour), models.LoanStatusReturned)

	count, err = storage.CountActiveLoans(ctx, userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
