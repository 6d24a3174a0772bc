package models

// BookFilter описывает параметры поиска и фильтрации каталога.
// Нулевые значения означают отсутствие фильтра.
type BookFilter struct {
	Title           string
	Author          string
	ISBN            string
	Genre           string
	Status          string
	Language        string
	Publisher       string
	PublicationYear int
	MinRating       float64
	MaxRating       float64
	MinPages        int
	MaxPages        int
	Available       bool
	Search          string
}

// LoanFilter описывает параметры фильтрации списка займов.
type LoanFilter struct {
	UserUID string
	BookID  int64
	Status  string
}
