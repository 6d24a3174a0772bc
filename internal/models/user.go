// Package models содержит доменные структуры библиотеки: читателей, книги,
// займы и оценки, а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// User представляет зарегистрированного читателя или библиотекаря.
type User struct {
	UID            string     `json:"uid"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	PasswordHash   string     `json:"-"`
	IsLibrarian    bool       `json:"is_librarian"`
	IsActiveMember bool       `json:"is_active_member"`
	MembershipDate time.Time  `json:"membership_date"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
}

// FullName возвращает полное имя читателя.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,alphanum,min=3,max=50"`
	FirstName       string `json:"first_name" validate:"required,max=150"`
	LastName        string `json:"last_name" validate:"required,max=150"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=15"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// DummyProfile используется для приёма изменений профиля из JSON-запроса.
// Пустые поля остаются без изменений.
type DummyProfile struct {
	Email       string `json:"email" validate:"omitempty,email"`
	FirstName   string `json:"first_name" validate:"omitempty,max=150"`
	LastName    string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=15"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// TokenPair содержит пару выданных токенов: короткоживущий access и refresh.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}
