// Package repository реализует хранилище данных на основе PostgreSQL
// для управления каталогом книг, читателями, займами и оценками.
// Предоставляет методы создания, чтения, обновления и агрегирования записей,
// а также транзакционные операции жизненного цикла займа.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки бизнес-условий, которые проверяются внутри транзакций хранилища.
var (
	// ErrNotFound - запрошенная запись отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrBookUnavailable - у книги нет свободных экземпляров или она не в статусе available.
	ErrBookUnavailable = errors.New("book is not available for borrowing")
	// ErrAlreadyBorrowed - у читателя уже есть активный займ этой книги.
	ErrAlreadyBorrowed = errors.New("user already has this book borrowed")
	// ErrBorrowLimit - читатель достиг лимита активных займов.
	ErrBorrowLimit = errors.New("user has reached the active loans limit")
	// ErrMemberInactive - членство читателя приостановлено.
	ErrMemberInactive = errors.New("user is not an active member")
	// ErrLoanNotActive - займ уже возвращен или списан.
	ErrLoanNotActive = errors.New("loan is not active")
	// ErrRenewalLimit - исчерпан лимит продлений займа.
	ErrRenewalLimit = errors.New("loan renewal limit reached")
	// ErrLoanOverdue - просроченный займ нельзя продлить.
	ErrLoanOverdue = errors.New("overdue loan cannot be renewed")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с книгами, читателями, займами и оценками.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных, используется в health-проверках.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'loans'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table loans missing or query error: %w", err)
	}
	return nil
}
