package models

import "time"

// BookRating представляет оценку книги читателем с необязательным отзывом.
// У каждого читателя может быть не больше одной оценки на книгу.
type BookRating struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	UserUID   string    `json:"user_uid"`
	Username  string    `json:"username,omitempty"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummyRating используется для приёма оценки из JSON-запроса.
type DummyRating struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review" validate:"omitempty,max=5000"`
}
