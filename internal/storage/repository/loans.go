package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/library-management/internal/models"
)

const loanColumns = `id, user_uid, book_id, loan_date, due_date, return_date, status,
	renewal_count, max_renewals, fine_amount, fine_paid, notes, issued_by, returned_to`

// BorrowTx выдает книгу читателю в одной транзакции: строка книги блокируется
// через SELECT ... FOR UPDATE, чтобы одновременные запросы на последний
// экземпляр не выдали его дважды. Проверяет доступность книги, активность
// членства, лимит активных займов и отсутствие дубликата.
func (s *Storage) BorrowTx(ctx context.Context, loan models.Loan, maxActiveLoans int) (*models.Loan, error) {
	const op = "storage.BorrowTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var status string
	var availableCopies int
	err = tx.QueryRowContext(ctx,
		`SELECT status, available_copies FROM books WHERE id = $1 FOR UPDATE`,
		loan.BookID).Scan(&status, &availableCopies)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if status != models.BookStatusAvailable || availableCopies == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrBookUnavailable)
	}

	var isActiveMember bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_active_member FROM users WHERE uid = $1`, loan.UserUID).Scan(&isActiveMember)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !isActiveMember {
		return nil, fmt.Errorf("%s: %w", op, ErrMemberInactive)
	}

	var activeLoans int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans WHERE user_uid = $1 AND status = 'borrowed'`,
		loan.UserUID).Scan(&activeLoans)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if activeLoans >= maxActiveLoans {
		return nil, fmt.Errorf("%s: %w", op, ErrBorrowLimit)
	}

	var duplicate bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM loans WHERE user_uid = $1 AND book_id = $2 AND status = 'borrowed')`,
		loan.UserUID, loan.BookID).Scan(&duplicate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if duplicate {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyBorrowed)
	}

	query := `INSERT INTO loans (user_uid, book_id, due_date, status, max_renewals, notes, issued_by)
			  VALUES ($1, $2, $3, 'borrowed', $4, $5, $6)
			  RETURNING id, loan_date`
	var issuedBy sql.NullString
	if loan.IssuedBy != nil {
		issuedBy = sql.NullString{String: *loan.IssuedBy, Valid: true}
	}
	err = tx.QueryRowContext(ctx, query,
		loan.UserUID, loan.BookID, loan.DueDate, loan.MaxRenewals,
		nullString(loan.Notes), issuedBy).Scan(&loan.ID, &loan.LoanDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	loan.Status = models.LoanStatusBorrowed

	_, err = tx.ExecContext(ctx,
		`UPDATE books
		 SET available_copies = available_copies - 1,
		     times_borrowed = times_borrowed + 1,
		     status = CASE WHEN available_copies - 1 = 0 AND status = 'available' THEN 'borrowed' ELSE status END,
		     last_updated = now()
		 WHERE id = $1`, loan.BookID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &loan, nil
}

// ReturnTx принимает книгу обратно в одной транзакции: фиксирует дату возврата,
// финализирует штраф и восстанавливает доступность экземпляра, если книга
// вернулась в хорошем состоянии. Возвращенный займ вернуть повторно нельзя.
func (s *Storage) ReturnTx(ctx context.Context, loanID int64, status string, fineAmount float64,
	notes, returnedTo string, returnDate time.Time) (*models.Loan, error) {
	const op = "storage.ReturnTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if loan.Status != models.LoanStatusBorrowed {
		return nil, fmt.Errorf("%s: %w", op, ErrLoanNotActive)
	}

	query := `UPDATE loans
			  SET status = $1, return_date = $2, fine_amount = $3, returned_to = $4,
			      notes = COALESCE(NULLIF($5, ''), notes)
			  WHERE id = $6`
	_, err = tx.ExecContext(ctx, query, status, returnDate, fineAmount, nullString(returnedTo), notes, loanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Потерянный или поврежденный экземпляр в фонд не возвращается.
	if status == models.LoanStatusReturned {
		_, err = tx.ExecContext(ctx,
			`UPDATE books
			 SET available_copies = available_copies + 1,
			     status = CASE WHEN status = 'borrowed' THEN 'available' ELSE status END,
			     last_updated = now()
			 WHERE id = $1`, loan.BookID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loan.Status = status
	loan.ReturnDate = &returnDate
	loan.FineAmount = fineAmount
	if returnedTo != "" {
		loan.ReturnedTo = &returnedTo
	}
	if notes != "" {
		loan.Notes = notes
	}
	return loan, nil
}

// RenewTx продлевает активный займ на days суток в одной транзакции.
// Продление отклоняется для неактивного, просроченного или исчерпавшего
// лимит продлений займа.
func (s *Storage) RenewTx(ctx context.Context, loanID int64, days int, now time.Time) (*models.Loan, error) {
	const op = "storage.RenewTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if loan.Status != models.LoanStatusBorrowed {
		return nil, fmt.Errorf("%s: %w", op, ErrLoanNotActive)
	}
	if loan.IsOverdue(now) {
		return nil, fmt.Errorf("%s: %w", op, ErrLoanOverdue)
	}
	if loan.RenewalCount >= loan.MaxRenewals {
		return nil, fmt.Errorf("%s: %w", op, ErrRenewalLimit)
	}

	newDueDate := loan.DueDate.AddDate(0, 0, days)
	_, err = tx.ExecContext(ctx,
		`UPDATE loans SET due_date = $1, renewal_count = renewal_count + 1 WHERE id = $2`,
		newDueDate, loanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loan.DueDate = newDueDate
	loan.RenewalCount++
	return loan, nil
}

// ReadLoan возвращает данные займа по его ID.
func (s *Storage) ReadLoan(ctx context.Context, id int64) (*models.Loan, error) {
	const op = "storage.ReadLoan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loan, nil
}

// ListLoans возвращает список займов с учётом фильтра и пагинацией.
// Пустой UserUID в фильтре означает займы всех читателей.
func (s *Storage) ListLoans(ctx context.Context, filter models.LoanFilter, limit, offset int) ([]*models.LoanInfo, error) {
	const op = "storage.ListLoans"
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
	if filter.UserUID != "" {
		conds = append(conds, "l.user_uid = "+arg(filter.UserUID))
	}
	if filter.BookID != 0 {
		conds = append(conds, "l.book_id = "+arg(filter.BookID))
	}
	if filter.Status != "" {
		conds = append(conds, "l.status = "+arg(filter.Status))
	}

	query := `SELECT l.id, l.user_uid, l.book_id, l.loan_date, l.due_date, l.return_date,
			      l.status, l.renewal_count, l.max_renewals, l.fine_amount, l.fine_paid,
			      l.notes, l.issued_by, l.returned_to,
			      u.username, u.email, b.title, b.author, b.isbn
			  FROM loans l
			  JOIN users u ON l.user_uid = u.uid
			  JOIN books b ON l.book_id = b.id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY l.loan_date DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	return s.listLoanInfos(ctx, op, query, args...)
}

// ListOverdueLoans возвращает активные займы с истекшим сроком возврата.
// Пустой userUID означает займы всех читателей (для библиотекарей).
func (s *Storage) ListOverdueLoans(ctx context.Context, userUID string, now time.Time) ([]*models.LoanInfo, error) {
	const op = "storage.ListOverdueLoans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.user_uid, l.book_id, l.loan_date, l.due_date, l.return_date,
			      l.status, l.renewal_count, l.max_renewals, l.fine_amount, l.fine_paid,
			      l.notes, l.issued_by, l.returned_to,
			      u.username, u.email, b.title, b.author, b.isbn
			  FROM loans l
			  JOIN users u ON l.user_uid = u.uid
			  JOIN books b ON l.book_id = b.id
			  WHERE l.status = 'borrowed' AND l.due_date < $1`
	args := []any{now}
	if userUID != "" {
		query += ` AND l.user_uid = $2`
		args = append(args, userUID)
	}
	query += ` ORDER BY l.due_date`

	return s.listLoanInfos(ctx, op, query, args...)
}

// UpdateLoanFine сохраняет начисленный штраф по займу.
func (s *Storage) UpdateLoanFine(ctx context.Context, loanID int64, fineAmount float64) error {
	const op = "storage.UpdateLoanFine"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`UPDATE loans SET fine_amount = $1 WHERE id = $2`, fineAmount, loanID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoanStatistics возвращает агрегаты по займам для библиотекарей.
func (s *Storage) LoanStatistics(ctx context.Context, now time.Time) (*models.LoanStatistics, error) {
	const op = "storage.LoanStatistics"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      COUNT(*),
			      COUNT(*) FILTER (WHERE status = 'borrowed'),
			      COUNT(*) FILTER (WHERE status = 'borrowed' AND due_date < $1),
			      COUNT(*) FILTER (WHERE status = 'returned')
			  FROM loans`
	var stats models.LoanStatistics
	err := s.DB.QueryRowContext(ctx, query, now).Scan(
		&stats.TotalLoans, &stats.ActiveLoans, &stats.OverdueLoans, &stats.ReturnedLoans)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if stats.TotalLoans > 0 {
		stats.ReturnRate = float64(stats.ReturnedLoans) / float64(stats.TotalLoans) * 100
	}
	return &stats, nil
}

func (s *Storage) listLoanInfos(ctx context.Context, op, query string, args ...any) ([]*models.LoanInfo, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.LoanInfo
	for rows.Next() {
		var li models.LoanInfo
		var returnDate sql.NullTime
		var notes, issuedBy, returnedTo sql.NullString
		if err := rows.Scan(&li.ID, &li.UserUID, &li.BookID, &li.LoanDate, &li.DueDate,
			&returnDate, &li.Status, &li.RenewalCount, &li.MaxRenewals, &li.FineAmount,
			&li.FinePaid, &notes, &issuedBy, &returnedTo,
			&li.Username, &li.Email, &li.BookTitle, &li.BookAuthor, &li.BookISBN); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if returnDate.Valid {
			li.ReturnDate = &returnDate.Time
		}
		li.Notes = notes.String
		if issuedBy.Valid {
			li.IssuedBy = &issuedBy.String
		}
		if returnedTo.Valid {
			li.ReturnedTo = &returnedTo.String
		}
		result = append(result, &li)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	var l models.Loan
	var returnDate sql.NullTime
	var notes, issuedBy, returnedTo sql.NullString
	if err := row.Scan(&l.ID, &l.UserUID, &l.BookID, &l.LoanDate, &l.DueDate, &returnDate,
		&l.Status, &l.RenewalCount, &l.MaxRenewals, &l.FineAmount, &l.FinePaid,
		&notes, &issuedBy, &returnedTo); err != nil {
		return nil, err
	}
	if returnDate.Valid {
		l.ReturnDate = &returnDate.Time
	}
	l.Notes = notes.String
	if issuedBy.Valid {
		l.IssuedBy = &issuedBy.String
	}
	if returnedTo.Valid {
		l.ReturnedTo = &returnedTo.String
	}
	return &l, nil
}
