package handlers

import (
	"time"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type addBookRequest struct {
	Title  string      `json:"title"`
	Author string      `json:"author"`
	Year   models.Year `json:"year"`
	Genre  *string     `json:"genre"`
	Read   *bool       `json:"read"`
}

func (r addBookRequest) toInput() service.AddBookInput {
	return service.AddBookInput{
		Title:  r.Title,
		Author: r.Author,
		Year:   r.Year,
		Genre:  r.Genre,
		Read:   r.Read,
	}
}

type addBookResponse struct {
	Message string `json:"message"`
	BookID  string `json:"book_id"`
}

type updateBookRequest struct {
	Title  *string     `json:"title"`
	Author *string     `json:"author"`
	Year   models.Year `json:"year"`
	Genre  *string     `json:"genre"`
	Read   *bool       `json:"read"`
}

func (r updateBookRequest) toInput() service.UpdateBookInput {
	return service.UpdateBookInput{
		Title:  r.Title,
		Author: r.Author,
		Year:   r.Year,
		Genre:  r.Genre,
		Read:   r.Read,
	}
}

// bookResponse - книга в ответе API. Владелец наружу не отдаётся.
type bookResponse struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Year      int        `json:"year"`
	Genre     string     `json:"genre"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func bookFromModel(b *models.Book) bookResponse {
	return bookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Year:      b.Year,
		Genre:     b.Genre,
		Read:      b.Read,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type listBooksResponse struct {
	Books   []bookResponse `json:"books"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
	Pages   int            `json:"pages"`
}

func listFromModel(books []models.Book, p models.Page) listBooksResponse {
	out := listBooksResponse{
		Books:   make([]bookResponse, 0, len(books)),
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		Pages:   p.Pages,
	}

	for i := range books {
		out.Books = append(out.Books, bookFromModel(&books[i]))
	}

	return out
}
