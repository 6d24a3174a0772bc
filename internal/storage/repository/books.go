package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/library-management/internal/models"
)

const bookColumns = `id, title, author, isbn, publisher, publication_date, genre, pages,
	language, status, total_copies, available_copies, description, shelf_location,
	average_rating, total_ratings, times_borrowed, added_by, date_added, last_updated`

// CreateBook вставляет новую книгу и возвращает её ID.
func (s *Storage) CreateBook(ctx context.Context, book models.Book) (int64, error) {
	const op = "storage.CreateBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO books (title, author, isbn, publisher, publication_date, genre,
			      pages, language, status, total_copies, available_copies, description,
			      shelf_location, added_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		book.Title, book.Author, book.ISBN, book.Publisher, book.PublicationDate, book.Genre,
		book.Pages, book.Language, book.Status, book.TotalCopies, book.AvailableCopies,
		nullString(book.Description), nullString(book.ShelfLocation), nullString(book.AddedBy)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadBook возвращает данные книги по её ID.
func (s *Storage) ReadBook(ctx context.Context, id int64) (*models.Book, error) {
	const op = "storage.ReadBook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return book, nil
}

// UpdateBook обновляет данные книги по её ID и возвращает количество изменённых строк.
// При изменении total_copies число доступных экземпляров сдвигается на ту же разницу,
// статус пересчитывается из доступности.
func (s *Storage) UpdateBook(ctx context.Context, book models.Book, id int64) (int64, error) {
	const op = "storage.UpdateBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE books
			  SET title = $1, author = $2, isbn = $3, publisher = $4, publication_date = $5,
			      genre = $6, pages = $7, language = $8, shelf_location = $9, description = $10,
			      available_copies = GREATEST(available_copies + ($11 - total_copies), 0),
			      total_copies = $11,
			      status = CASE
			          WHEN GREATEST(available_copies + ($11 - total_copies), 0) = 0 AND status = 'available' THEN 'borrowed'
			          WHEN GREATEST(available_copies + ($11 - total_copies), 0) > 0 AND status = 'borrowed' THEN 'available'
			          ELSE status
			      END,
			      last_updated = now()
			  WHERE id = $12`
	result, err := s.DB.ExecContext(ctx, query,
		book.Title, book.Author, book.ISBN, book.Publisher, book.PublicationDate,
		book.Genre, book.Pages, book.Language, nullString(book.ShelfLocation),
		nullString(book.Description), book.TotalCopies, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// RemoveBook удаляет книгу по ID и возвращает количество удалённых строк.
// Книга с записями о займах защищена внешним ключом и удалена не будет.
func (s *Storage) RemoveBook(ctx context.Context, id int64) (int64, error) {
	const op = "storage.RemoveBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM books WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ListBooks возвращает страницу каталога с учётом фильтров поиска.
func (s *Storage) ListBooks(ctx context.Context, filter models.BookFilter, limit, offset int) ([]*models.Book, error) {
	const op = "storage.ListBooks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Title != "" {
		conds = append(conds, "title ILIKE "+arg("%"+filter.Title+"%"))
	}
	if filter.Author != "" {
		conds = append(conds, "author ILIKE "+arg("%"+filter.Author+"%"))
	}
	if filter.ISBN != "" {
		conds = append(conds, "isbn = "+arg(filter.ISBN))
	}
	if filter.Genre != "" {
		conds = append(conds, "genre = "+arg(filter.Genre))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Language != "" {
		conds = append(conds, "language ILIKE "+arg("%"+filter.Language+"%"))
	}
	if filter.Publisher != "" {
		conds = append(conds, "publisher ILIKE "+arg("%"+filter.Publisher+"%"))
	}
	if filter.PublicationYear != 0 {
		conds = append(conds, "EXTRACT(YEAR FROM publication_date) = "+arg(filter.PublicationYear))
	}
	if filter.MinRating != 0 {
		conds = append(conds, "average_rating >= "+arg(filter.MinRating))
	}
	if filter.MaxRating != 0 {
		conds = append(conds, "average_rating <= "+arg(filter.MaxRating))
	}
	if filter.MinPages != 0 {
		conds = append(conds, "pages >= "+arg(filter.MinPages))
	}
	if filter.MaxPages != 0 {
		conds = append(conds, "pages <= "+arg(filter.MaxPages))
	}
	if filter.Available {
		conds = append(conds, "status = 'available' AND available_copies > 0")
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR author ILIKE "+p+" OR description ILIKE "+p+")")
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY title, author LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, book)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPopularBooks возвращает книги, которые брали чаще всего.
func (s *Storage) ListPopularBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	const op = "storage.ListPopularBooks"
	query := `SELECT ` + bookColumns + ` FROM books
			  WHERE times_borrowed > 0
			  ORDER BY times_borrowed DESC
			  LIMIT $1`
	return s.listBooksQuery(ctx, op, query, limit)
}

// ListTopRatedBooks возвращает книги с наивысшим средним рейтингом.
func (s *Storage) ListTopRatedBooks(ctx context.Context, limit int) ([]*models.Book, error) {
	const op = "storage.ListTopRatedBooks"
	query := `SELECT ` + bookColumns + ` FROM books
			  WHERE total_ratings > 0
			  ORDER BY average_rating DESC
			  LIMIT $1`
	return s.listBooksQuery(ctx, op, query, limit)
}

func (s *Storage) listBooksQuery(ctx context.Context, op, query string, args ...any) ([]*models.Book, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, book)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	var b models.Book
	var description, shelfLocation, addedBy sql.NullString
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Publisher, &b.PublicationDate,
		&b.Genre, &b.Pages, &b.Language, &b.Status, &b.TotalCopies, &b.AvailableCopies,
		&description, &shelfLocation, &b.AverageRating, &b.TotalRatings, &b.TimesBorrowed,
		&addedBy, &b.DateAdded, &b.LastUpdated); err != nil {
		return nil, err
	}
	b.Description = description.String
	b.ShelfLocation = shelfLocation.String
	b.AddedBy = addedBy.String
	return &b, nil
}
