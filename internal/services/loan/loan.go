// Package services содержит бизнес-логику выдачи, возврата и продления книг.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/lib/fine"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// ErrNotOwner возвращается, когда читатель пытается управлять чужим займом.
var ErrNotOwner = errors.New("loan belongs to another user")

// LoanRepository определяет методы для работы с займами в хранилище.
type LoanRepository interface {
	// BorrowTx выдает книгу читателю в одной транзакции.
	BorrowTx(ctx context.Context, loan models.Loan, maxActiveLoans int) (*models.Loan, error)
	// ReturnTx принимает книгу обратно в одной транзакции.
	ReturnTx(ctx context.Context, loanID int64, status string, fineAmount float64,
		notes, returnedTo string, returnDate time.Time) (*models.Loan, error)
	// RenewTx продлевает активный займ на days суток.
	RenewTx(ctx context.Context, loanID int64, days int, now time.Time) (*models.Loan, error)
	// ReadLoan возвращает займ по ID.
	ReadLoan(ctx context.Context, id int64) (*models.Loan, error)
	// ListLoans возвращает список займов с учётом фильтра и пагинацией.
	ListLoans(ctx context.Context, filter models.LoanFilter, limit, offset int) ([]*models.LoanInfo, error)
	// ListOverdueLoans возвращает активные займы с истекшим сроком возврата.
	ListOverdueLoans(ctx context.Context, userUID string, now time.Time) ([]*models.LoanInfo, error)
	// UpdateLoanFine сохраняет начисленный штраф по займу.
	UpdateLoanFine(ctx context.Context, loanID int64, fineAmount float64) error
	// LoanStatistics возвращает агрегаты по займам.
	LoanStatistics(ctx context.Context, now time.Time) (*models.LoanStatistics, error)
}

// LoanService реализует бизнес-логику займов согласно политике библиотеки.
type LoanService struct {
	repo   LoanRepository
	policy config.LoanPolicy
	log    *slog.Logger
}

// NewLoanService создает новый экземпляр LoanService.
func NewLoanService(repo LoanRepository, policy config.LoanPolicy, log *slog.Logger) *LoanService {
	return &LoanService{
		repo:   repo,
		policy: policy,
		log:    log,
	}
}

// Borrow выдает книгу читателю. Срок возврата рассчитывается из политики
// займов, если читатель не указал собственную дату. issuedBy заполняется,
// только когда выдачу оформляет библиотекарь.
func (s *LoanService) Borrow(ctx context.Context, userUID string, isLibrarian bool, req models.DummyBorrow) (*models.Loan, error) {
	now := time.Now().UTC()
	dueDate := now.AddDate(0, 0, s.policy.LoanPeriodDays)
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due date: %w", err)
		}
		// Дата приходит без времени, поэтому сравнивается с началом суток:
		// сегодняшняя дата возврата допустима.
		startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if parsed.Before(startOfToday) {
			return nil, fmt.Errorf("due date must not be earlier than today")
		}
		dueDate = parsed
	}

	loan := models.Loan{
		UserUID:     userUID,
		BookID:      req.BookID,
		DueDate:     dueDate,
		MaxRenewals: s.policy.MaxRenewals,
		Notes:       req.Notes,
	}
	if isLibrarian {
		loan.IssuedBy = &userUID
	}

	created, err := s.repo.BorrowTx(ctx, loan, s.policy.MaxActiveLoans)
	if err != nil {
		return nil, err
	}

	s.log.Info("book borrowed",
		slog.Int64("loan_id", created.ID),
		slog.Int64("book_id", created.BookID))
	return created, nil
}

// Return принимает книгу обратно. Читатель может вернуть только собственный
// займ, библиотекарь - любой. Штраф начисляется за каждые начатые сутки
// просрочки, возврат до срока штрафа не дает.
func (s *LoanService) Return(ctx context.Context, userUID string, isLibrarian bool,
	loanID int64, req models.DummyReturn) (*models.Loan, error) {
	loan, err := s.repo.ReadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !isLibrarian && loan.UserUID != userUID {
		return nil, ErrNotOwner
	}

	now := time.Now().UTC()
	fineAmount := fine.Calculate(loan.DueDate, now, s.policy.FineDailyRate)

	status := models.LoanStatusReturned
	switch req.Condition {
	case models.ReturnConditionDamaged:
		status = models.LoanStatusDamaged
	case models.ReturnConditionLost:
		status = models.LoanStatusLost
	}

	var returnedTo string
	if isLibrarian {
		returnedTo = userUID
	}

	returned, err := s.repo.ReturnTx(ctx, loanID, status, fineAmount, req.Notes, returnedTo, now)
	if err != nil {
		return nil, err
	}

	s.log.Info("book returned",
		slog.Int64("loan_id", returned.ID),
		slog.String("status", status),
		slog.Float64("fine_amount", fineAmount))
	return returned, nil
}

// Renew продлевает активный займ. Читатель может продлить только собственный
// займ, библиотекарь - любой. Число суток по умолчанию берется из политики
// займов.
func (s *LoanService) Renew(ctx context.Context, userUID string, isLibrarian bool,
	loanID int64, req models.DummyRenew) (*models.Loan, error) {
	loan, err := s.repo.ReadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !isLibrarian && loan.UserUID != userUID {
		return nil, ErrNotOwner
	}

	days := req.Days
	if days == 0 {
		days = s.policy.LoanPeriodDays
	}

	renewed, err := s.repo.RenewTx(ctx, loanID, days, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.log.Info("loan renewed",
		slog.Int64("loan_id", renewed.ID),
		slog.Time("due_date", renewed.DueDate))
	return renewed, nil
}

// List возвращает займы в зависимости от роли: читатель видит только свои,
// библиотекарь - займы всех читателей с произвольным фильтром.
func (s *LoanService) List(ctx context.Context, userUID string, isLibrarian bool,
	filter models.LoanFilter, limit, offset int) ([]*models.LoanInfo, error) {
	if !isLibrarian {
		filter.UserUID = userUID
	}
	infos, err := s.repo.ListLoans(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	s.fillDaysOverdue(infos, time.Now().UTC())
	return infos, nil
}

// History возвращает полную историю займов читателя, включая возвращенные.
func (s *LoanService) History(ctx context.Context, userUID string, limit, offset int) ([]*models.LoanInfo, error) {
	infos, err := s.repo.ListLoans(ctx, models.LoanFilter{UserUID: userUID}, limit, offset)
	if err != nil {
		return nil, err
	}
	s.fillDaysOverdue(infos, time.Now().UTC())
	return infos, nil
}

// Overdue возвращает просроченные займы и актуализирует начисленные штрафы.
// Читатель видит только свои просрочки, библиотекарь - всех читателей.
func (s *LoanService) Overdue(ctx context.Context, userUID string, isLibrarian bool) ([]*models.LoanInfo, error) {
	filterUID := userUID
	if isLibrarian {
		filterUID = ""
	}

	now := time.Now().UTC()
	infos, err := s.repo.ListOverdueLoans(ctx, filterUID, now)
	if err != nil {
		return nil, err
	}

	for _, li := range infos {
		li.DaysOverdue = fine.DaysLate(li.DueDate, now)
		fineAmount := fine.Calculate(li.DueDate, now, s.policy.FineDailyRate)
		if fineAmount > li.FineAmount {
			if err := s.repo.UpdateLoanFine(ctx, li.ID, fineAmount); err != nil {
				s.log.Warn("failed to update loan fine",
					slog.Int64("loan_id", li.ID), slog.Any("err", err))
				continue
			}
			li.FineAmount = fineAmount
		}
	}
	return infos, nil
}

// Statistics возвращает агрегаты по займам для библиотекарей.
func (s *LoanService) Statistics(ctx context.Context) (*models.LoanStatistics, error) {
	return s.repo.LoanStatistics(ctx, time.Now().UTC())
}

func (s *LoanService) fillDaysOverdue(infos []*models.LoanInfo, now time.Time) {
	for _, li := range infos {
		if li.IsOverdue(now) {
			li.DaysOverdue = fine.DaysLate(li.DueDate, now)
		}
	}
}
