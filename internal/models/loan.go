package models

import "time"

// Статусы займа. Просрочка отдельным статусом не хранится:
// она вычисляется из due_date для активного займа.
const (
	LoanStatusBorrowed = "borrowed"
	LoanStatusReturned = "returned"
	LoanStatusLost     = "lost"
	LoanStatusDamaged  = "damaged"
)

// Состояния книги при возврате.
const (
	ReturnConditionGood    = "good"
	ReturnConditionDamaged = "damaged"
	ReturnConditionLost    = "lost"
)

// Loan представляет выдачу книги читателю на ограниченный срок.
// ReturnDate равен nil, пока книга не возвращена. Записи о займах
// никогда не удаляются - они остаются в истории читателя.
type Loan struct {
	ID           int64      `json:"id"`
	UserUID      string     `json:"user_uid"`
	BookID       int64      `json:"book_id"`
	LoanDate     time.Time  `json:"loan_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Status       string     `json:"status"`
	RenewalCount int        `json:"renewal_count"`
	MaxRenewals  int        `json:"max_renewals"`
	FineAmount   float64    `json:"fine_amount"`
	FinePaid     bool       `json:"fine_paid"`
	Notes        string     `json:"notes,omitempty"`
	IssuedBy     *string    `json:"issued_by,omitempty"`
	ReturnedTo   *string    `json:"returned_to,omitempty"`
}

// IsOverdue сообщает, просрочен ли активный займ на момент now.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusBorrowed && now.After(l.DueDate)
}

// DaysOverdue возвращает число полных суток просрочки на момент now.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours() / 24)
}

// CanRenew сообщает, можно ли продлить займ: только активный,
// не просроченный и не исчерпавший лимит продлений.
func (l *Loan) CanRenew(now time.Time) bool {
	return l.Status == LoanStatusBorrowed &&
		l.RenewalCount < l.MaxRenewals &&
		!l.IsOverdue(now)
}

// DummyBorrow используется для приёма данных выдачи книги из JSON-запроса.
// Дата возврата опциональна, по умолчанию рассчитывается из политики займов.
type DummyBorrow struct {
	BookID  int64  `json:"book_id" validate:"required,gt=0"`
	DueDate string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Notes   string `json:"notes" validate:"omitempty,max=1000"`
}

// DummyReturn используется для приёма данных возврата книги из JSON-запроса.
type DummyReturn struct {
	Condition string `json:"condition" validate:"omitempty,oneof=good damaged lost"`
	Notes     string `json:"notes" validate:"omitempty,max=1000"`
}

// DummyRenew используется для приёма данных продления займа из JSON-запроса.
type DummyRenew struct {
	Days int `json:"days" validate:"omitempty,gte=1,lte=30"`
}

// LoanInfo объединяет данные займа с данными читателя и книги
// для списков просроченных займов и истории.
type LoanInfo struct {
	Loan
	Username    string `json:"username"`
	Email       string `json:"email"`
	BookTitle   string `json:"book_title"`
	BookAuthor  string `json:"book_author"`
	BookISBN    string `json:"book_isbn"`
	DaysOverdue int    `json:"days_overdue,omitempty"`
}

// LoanStatistics содержит агрегаты по займам для библиотекарей.
type LoanStatistics struct {
	TotalLoans    int     `json:"total_loans"`
	ActiveLoans   int     `json:"active_loans"`
	OverdueLoans  int     `json:"overdue_loans"`
	ReturnedLoans int     `json:"returned_loans"`
	ReturnRate    float64 `json:"return_rate"`
}
