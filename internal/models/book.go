package models

import "time"

// Статусы книги в каталоге.
const (
	BookStatusAvailable   = "available"
	BookStatusBorrowed    = "borrowed"
	BookStatusReserved    = "reserved"
	BookStatusMaintenance = "maintenance"
	BookStatusLost        = "lost"
	BookStatusDamaged     = "damaged"
)

// Book представляет книгу в каталоге библиотеки.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Publisher       string    `json:"publisher"`
	PublicationDate time.Time `json:"publication_date"`
	Genre           string    `json:"genre"`
	Pages           int       `json:"pages"`
	Language        string    `json:"language"`
	Status          string    `json:"status"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	Description     string    `json:"description,omitempty"`
	ShelfLocation   string    `json:"shelf_location,omitempty"`
	AverageRating   float64   `json:"average_rating"`
	TotalRatings    int       `json:"total_ratings"`
	TimesBorrowed   int       `json:"times_borrowed"`
	AddedBy         string    `json:"added_by,omitempty"`
	DateAdded       time.Time `json:"date_added"`
	LastUpdated     time.Time `json:"last_updated"`
}

// IsAvailable сообщает, можно ли взять книгу на руки.
func (b *Book) IsAvailable() bool {
	return b.Status == BookStatusAvailable && b.AvailableCopies > 0
}

// DummyBook используется для приёма данных книги из JSON-запроса,
// прежде чем конвертировать их в Book. Дата публикации приходит строкой
// в формате 2006-01-02, чтобы её можно было валидировать и парсить вручную.
type DummyBook struct {
	Title           string `json:"title" validate:"required,max=200"`
	Author          string `json:"author" validate:"required,max=200"`
	ISBN            string `json:"isbn" validate:"required,numeric,len=13"`
	Publisher       string `json:"publisher" validate:"required,max=100"`
	PublicationDate string `json:"publication_date" validate:"required,datetime=2006-01-02"`
	Genre           string `json:"genre" validate:"required,oneof=fiction non_fiction mystery romance science_fiction fantasy biography history science technology self_help children young_adult poetry drama other"`
	Pages           int    `json:"pages" validate:"required,gt=0"`
	Language        string `json:"language" validate:"omitempty,max=50"`
	TotalCopies     int    `json:"total_copies" validate:"omitempty,gte=1"`
	Description     string `json:"description" validate:"omitempty,max=5000"`
	ShelfLocation   string `json:"shelf_location" validate:"omitempty,max=50"`
}
