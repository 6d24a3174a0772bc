// Package services содержит бизнес-логику для управления каталогом книг и кешированием.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-management/internal/models"
)

// BookRepository определяет методы для работы с каталогом книг в хранилище.
type BookRepository interface {
	// CreateBook добавляет новую книгу и возвращает её ID.
	CreateBook(ctx context.Context, book models.Book) (int64, error)
	// ReadBook возвращает книгу по ID.
	ReadBook(ctx context.Context, id int64) (*models.Book, error)
	// UpdateBook обновляет данные книги по ID.
	UpdateBook(ctx context.Context, book models.Book, id int64) (int64, error)
	// RemoveBook удаляет книгу по ID и возвращает количество удалённых записей.
	RemoveBook(ctx context.Context, id int64) (int64, error)
	// ListBooks возвращает страницу каталога с учётом фильтров.
	ListBooks(ctx context.Context, filter models.BookFilter, limit, offset int) ([]*models.Book, error)
	// ListPopularBooks возвращает книги, которые брали чаще всего.
	ListPopularBooks(ctx context.Context, limit int) ([]*models.Book, error)
	// ListTopRatedBooks возвращает книги с наивысшим средним рейтингом.
	ListTopRatedBooks(ctx context.Context, limit int) ([]*models.Book, error)
	// UpsertRating сохраняет оценку книги читателем.
	UpsertRating(ctx context.Context, rating models.BookRating) (int64, error)
	// ListRatingsByBook возвращает все оценки книги.
	ListRatingsByBook(ctx context.Context, bookID int64) ([]*models.BookRating, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// BookService реализует бизнес-логику работы с каталогом, включая кеширование.
type BookService struct {
	repo  BookRepository
	cache Cache
	log   *slog.Logger
}

// NewBookService создает новый экземпляр BookService.
func NewBookService(repo BookRepository, cache Cache, log *slog.Logger) *BookService {
	return &BookService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create добавляет новую книгу в каталог и возвращает её ID.
// Все экземпляры новой книги считаются доступными.
func (s *BookService) Create(ctx context.Context, addedBy string, req models.DummyBook) (int64, error) {
	publicationDate, err := time.Parse("2006-01-02", req.PublicationDate)
	if err != nil {
		return 0, fmt.Errorf("invalid publication date: %w", err)
	}

	totalCopies := req.TotalCopies
	if totalCopies == 0 {
		totalCopies = 1
	}
	language := req.Language
	if language == "" {
		language = "English"
	}

	book := models.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		PublicationDate: publicationDate,
		Genre:           req.Genre,
		Pages:           req.Pages,
		Language:        language,
		Status:          models.BookStatusAvailable,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		Description:     req.Description,
		ShelfLocation:   req.ShelfLocation,
		AddedBy:         addedBy,
	}

	id, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return 0, err
	}

	s.log.Info("created new book", slog.Int64("id", id))
	return id, nil
}

// Read возвращает книгу по ID, используя кеш или репозиторий.
func (s *BookService) Read(ctx context.Context, id int64) (*models.Book, error) {
	var result *models.Book
	cacheKey := fmt.Sprintf("book:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey),
				slog.Any("err", err))
		}
	}
	return result, nil
}

// Update обновляет книгу и инвалидирует кеш.
func (s *BookService) Update(ctx context.Context, req models.DummyBook, id int64) (int64, error) {
	publicationDate, err := time.Parse("2006-01-02", req.PublicationDate)
	if err != nil {
		return 0, fmt.Errorf("invalid publication date: %w", err)
	}

	totalCopies := req.TotalCopies
	if totalCopies == 0 {
		totalCopies = 1
	}
	language := req.Language
	if language == "" {
		language = "English"
	}

	book := models.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		PublicationDate: publicationDate,
		Genre:           req.Genre,
		Pages:           req.Pages,
		Language:        language,
		TotalCopies:     totalCopies,
		Description:     req.Description,
		ShelfLocation:   req.ShelfLocation,
	}
	res, err := s.repo.UpdateBook(ctx, book, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated book in storage", slog.Int64("id", id))

	cacheKey := fmt.Sprintf("book:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return res, nil
}

// Remove удаляет книгу по ID и инвалидирует кеш.
func (s *BookService) Remove(ctx context.Context, id int64) (int64, error) {
	cacheKey := fmt.Sprintf("book:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.repo.RemoveBook(ctx, id)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// List возвращает страницу каталога с учётом фильтров поиска.
func (s *BookService) List(ctx context.Context, filter models.BookFilter, limit, offset int) ([]*models.Book, error) {
	return s.repo.ListBooks(ctx, filter, limit, offset)
}

// Popular возвращает книги, которые брали чаще всего.
func (s *BookService) Popular(ctx context.Context, limit int) ([]*models.Book, error) {
	return s.repo.ListPopularBooks(ctx, limit)
}

// TopRated возвращает книги с наивысшим средним рейтингом.
func (s *BookService) TopRated(ctx context.Context, limit int) ([]*models.Book, error) {
	return s.repo.ListTopRatedBooks(ctx, limit)
}

// Rate сохраняет оценку книги читателем: повторная оценка заменяет прежнюю.
// Кеш книги инвалидируется, так как её средний рейтинг изменился.
func (s *BookService) Rate(ctx context.Context, userUID string, bookID int64, req models.DummyRating) (int64, error) {
	rating := models.BookRating{
		BookID:  bookID,
		UserUID: userUID,
		Rating:  req.Rating,
		Review:  req.Review,
	}
	id, err := s.repo.UpsertRating(ctx, rating)
	if err != nil {
		return 0, err
	}
	s.log.Info("saved book rating", slog.Int64("book_id", bookID))

	cacheKey := fmt.Sprintf("book:%d", bookID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return id, nil
}

// Ratings возвращает все оценки книги, свежие первыми.
func (s *BookService) Ratings(ctx context.Context, bookID int64) ([]*models.BookRating, error) {
	return s.repo.ListRatingsByBook(ctx, bookID)
}
