package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type BookRepoMock struct{ mock.Mock }

func (m *BookRepoMock) CreateBook(ctx context.Context, book models.Book) (int64, error) {
	args := m.Called(ctx, book)
	return args.Get(0).(int64), args.Error(1)
}
func (m *BookRepoMock) ReadBook(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}
func (m *BookRepoMock) UpdateBook(ctx context.Context, book models.Book, id int64) (int64, error) {
	args := m.Called(ctx, book, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *BookRepoMock) RemoveBook(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *BookRepoMock) ListBooks(ctx context.Context, filter models.BookFilter, limit, offset int) ([]*models.Book, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Book), args.Error(1)
}
func (m *BookRepoMock) ListPopularBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Book), args.Error(1)
}
func (m *BookRepoMock) ListTopRatedBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Book), args.Error(1)
}
func (m *BookRepoMock) UpsertRating(ctx context.Context, rating models.BookRating) (int64, error) {
	args := m.Called(ctx, rating)
	return args.Get(0).(int64), args.Error(1)
}
func (m *BookRepoMock) ListRatingsByBook(ctx context.Context, bookID int64) ([]*models.BookRating, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookRating), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validDummyBook() models.DummyBook {
	return models.DummyBook{
		Title:           "The Go Programming Language",
		Author:          "Alan Donovan",
		ISBN:            "9780134190440",
		Publisher:       "Addison-Wesley",
		PublicationDate: "2015-10-26",
		Genre:           "technology",
		Pages:           380,
	}
}

func TestBookService_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        models.DummyBook
		setupMocks func(r *BookRepoMock)
		wantID     int64
		wantErr    bool
	}{
		{
			name: "success with defaults",
			req:  validDummyBook(),
			setupMocks: func(r *BookRepoMock) {
				r.On("CreateBook", mock.Anything, mock.MatchedBy(func(b models.Book) bool {
					// без явных значений: один доступный экземпляр, язык English
					return b.TotalCopies == 1 &&
						b.AvailableCopies == 1 &&
						b.Language == "English" &&
						b.Status == models.BookStatusAvailable &&
						b.AddedBy == "librarian-uid"
				})).Return(int64(42), nil).Once()
			},
			wantID:  42,
			wantErr: false,
		},
		{
			name: "invalid publication date",
			req: func() models.DummyBook {
				b := validDummyBook()
				b.PublicationDate = "not-a-date"
				return b
			}(),
			setupMocks: func(_ *BookRepoMock) {},
			wantErr:    true,
		},
		{
			name: "repository error",
			req:  validDummyBook(),
			setupMocks: func(r *BookRepoMock) {
				r.On("CreateBook", mock.Anything, mock.Anything).
					Return(int64(0), errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(BookRepoMock)
			cache := new(CacheMock)
			svc := NewBookService(repo, cache, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.Create(context.Background(), "librarian-uid", tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestBookService_Read(t *testing.T) {
	book := &models.Book{ID: 42, Title: "The Go Programming Language"}

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := new(BookRepoMock)
		cache := new(CacheMock)
		svc := NewBookService(repo, cache, newNoopLogger())

		cache.On("Get", "book:42", mock.Anything).Return(true, nil).Once()

		_, err := svc.Read(context.Background(), 42)
		assert.NoError(t, err)
		cache.AssertExpectations(t)
		repo.AssertNotCalled(t, "ReadBook")
	})

	t.Run("cache miss reads repository and fills cache", func(t *testing.T) {
		repo := new(BookRepoMock)
		cache := new(CacheMock)
		svc := NewBookService(repo, cache, newNoopLogger())

		cache.On("Get", "book:42", mock.Anything).Return(false, nil).Once()
		repo.On("ReadBook", mock.Anything, int64(42)).Return(book, nil).Once()
		cache.On("Set", "book:42", book, time.Hour).Return(nil).Once()

		got, err := svc.Read(context.Background(), 42)
		assert.NoError(t, err)
		assert.Equal(t, book.ID, got.ID)
		cache.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(BookRepoMock)
		cache := new(CacheMock)
		svc := NewBookService(repo, cache, newNoopLogger())

		cache.On("Get", "book:42", mock.Anything).Return(false, nil).Once()
		repo.On("ReadBook", mock.Anything, int64(42)).Return(nil, errors.New("db error")).Once()

		_, err := svc.Read(context.Background(), 42)
		assert.Error(t, err)
	})
}

func TestBookService_Update(t *testing.T) {
	t.Run("success invalidates cache", func(t *testing.T) {
		repo := new(BookRepoMock)
		cache := new(CacheMock)
		svc := NewBookService(repo, cache, newNoopLogger())

		repo.On("UpdateBook", mock.Anything, mock.Anything, int64(42)).Return(int64(1), nil).Once()
		cache.On("Invalidate", "book:42").Return(nil).Once()

		count, err := svc.Update(context.Background(), validDummyBook(), 42)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
}

func TestBookService_Remove(t *testing.T) {
	t.Run("success invalidates cache", func(t *testing.T) {
		repo := new(BookRepoMock)
		cache := new(CacheMock)
		svc := NewBookService(repo, cache, newNoopLogger())

		cache.On("Invalidate", "book:42").Return(nil).Once()
		repo.On("RemoveBook", mock.Anything, int64(42)).Return(int64(1), nil).Once()

		count, err := svc.Remove(context.Background(), 42)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
}

func TestBookService_Rate(t *testing.T) {
	t.Run("success invalidates book cache", func(t *testing.T) {
		repo := new(BookRepoMock)
		cache := new(CacheMock)
		svc := NewBookService(repo, cache, newNoopLogger())

		repo.On("UpsertRating", mock.Anything, mock.MatchedBy(func(r models.BookRating) bool {
			return r.BookID == 42 && r.UserUID == "reader-uid" && r.Rating == 5
		})).Return(int64(7), nil).Once()
		cache.On("Invalidate", "book:42").Return(nil).Once()

		id, err := svc.Rate(context.Background(), "reader-uid", 42,
			models.DummyRating{Rating: 5, Review: "excellent"})
		assert.NoError(t, err)
		assert.Equal(t, int64(7), id)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(BookRepoMock)
		cache := new(CacheMock)
		svc := NewBookService(repo, cache, newNoopLogger())

		repo.On("UpsertRating", mock.Anything, mock.Anything).
			Return(int64(0), errors.New("db error")).Once()

		_, err := svc.Rate(context.Background(), "reader-uid", 42, models.DummyRating{Rating: 5})
		assert.Error(t, err)
	})
}
