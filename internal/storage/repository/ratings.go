package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/library-management/internal/models"
)

// UpsertRating сохраняет оценку книги читателем: повторная оценка заменяет
// прежнюю. Средний рейтинг и число оценок книги пересчитываются в той же
// транзакции.
func (s *Storage) UpsertRating(ctx context.Context, rating models.BookRating) (int64, error) {
	const op = "storage.UpsertRating"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO book_ratings (book_id, user_uid, rating, review)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_uid, book_id)
			  DO UPDATE SET rating = EXCLUDED.rating, review = EXCLUDED.review, updated_at = now()
			  RETURNING id`
	var id int64
	err = tx.QueryRowContext(ctx, query,
		rating.BookID, rating.UserUID, rating.Rating, nullString(rating.Review)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books
		 SET average_rating = sub.avg_rating,
		     total_ratings = sub.cnt,
		     last_updated = now()
		 FROM (
		     SELECT COALESCE(ROUND(AVG(rating), 2), 0) AS avg_rating, COUNT(*) AS cnt
		     FROM book_ratings WHERE book_id = $1
		 ) sub
		 WHERE books.id = $1`, rating.BookID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListRatingsByBook возвращает все оценки книги, свежие первыми.
func (s *Storage) ListRatingsByBook(ctx context.Context, bookID int64) ([]*models.BookRating, error) {
	const op = "storage.ListRatingsByBook"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.book_id, r.user_uid, u.username, r.rating,
			      COALESCE(r.review, ''), r.created_at, r.updated_at
			  FROM book_ratings r
			  JOIN users u ON r.user_uid = u.uid
			  WHERE r.book_id = $1
			  ORDER BY r.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.BookRating
	for rows.Next() {
		var r models.BookRating
		if err := rows.Scan(&r.ID, &r.BookID, &r.UserUID, &r.Username, &r.Rating,
			&r.Review, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
