package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/library-management/internal/models"
)

// RegisterUser сохраняет нового читателя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, first_name, last_name, phone_number,
			      password_hash, is_librarian, is_active_member)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.FirstName, user.LastName, nullString(user.PhoneNumber),
		user.PasswordHash, user.IsLibrarian, user.IsActiveMember).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает читателя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUser(ctx, op, `WHERE username = $1`, username)
}

// GetUserByEmail возвращает читателя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `WHERE email = $1`, email)
}

// GetUser возвращает читателя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	return s.getUser(ctx, op, `WHERE uid = $1`, userUID)
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, first_name, last_name, phone_number,
			      password_hash, is_librarian, is_active_member, membership_date, date_of_birth
			  FROM users ` + where
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var phoneNumber sql.NullString
	var dateOfBirth sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &phoneNumber,
		&u.PasswordHash, &u.IsLibrarian, &u.IsActiveMember, &u.MembershipDate, &dateOfBirth); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if phoneNumber.Valid {
		u.PhoneNumber = phoneNumber.String
	}
	if dateOfBirth.Valid {
		u.DateOfBirth = &dateOfBirth.Time
	}
	return u, nil
}

// UpdateUserProfile обновляет профильные поля читателя и возвращает
// количество затронутых строк. Учетные поля (username, пароль, роли)
// этим запросом не меняются.
func (s *Storage) UpdateUserProfile(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var dateOfBirth sql.NullTime
	if user.DateOfBirth != nil {
		dateOfBirth = sql.NullTime{Time: *user.DateOfBirth, Valid: true}
	}
	query := `UPDATE users
			  SET email = $1, first_name = $2, last_name = $3,
			      phone_number = $4, date_of_birth = $5
			  WHERE uid = $6`
	res, err := s.DB.ExecContext(ctx, query,
		user.Email, user.FirstName, user.LastName,
		nullString(user.PhoneNumber), dateOfBirth, user.UID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ToggleLibrarian переключает признак библиотекаря и возвращает новое значение.
func (s *Storage) ToggleLibrarian(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.ToggleLibrarian"
	return s.toggleUserFlag(ctx, op, "is_librarian", userUID)
}

// ToggleActiveMember переключает активность членства и возвращает новое значение.
func (s *Storage) ToggleActiveMember(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.ToggleActiveMember"
	return s.toggleUserFlag(ctx, op, "is_active_member", userUID)
}

func (s *Storage) toggleUserFlag(ctx context.Context, op, column, userUID string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET ` + column + ` = NOT ` + column +
		` WHERE uid = $1 RETURNING ` + column
	var value bool
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// CountActiveLoans возвращает количество активных займов читателя.
func (s *Storage) CountActiveLoans(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountActiveLoans"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM loans WHERE user_uid = $1 AND status = 'borrowed'`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
