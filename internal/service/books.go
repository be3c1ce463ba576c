package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/pkg/log"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
)

// AddBookInput - данные новой книги. Отсутствующий год заменяется текущим,
// отсутствующий жанр - models.DefaultGenre, read - false.
type AddBookInput struct {
	Title  string
	Author string
	Year   models.Year
	Genre  *string
	Read   *bool
}

// UpdateBookInput - частичное обновление: nil (или незаданный Year) не меняет поле.
type UpdateBookInput struct {
	Title  *string
	Author *string
	Year   models.Year
	Genre  *string
	Read   *bool
}

// AddBook создаёт книгу, принадлежащую owner, и возвращает её id.
func (s *Service) AddBook(ctx context.Context, owner string, in AddBookInput) (string, error) {
	const op = "service.books.AddBook"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", fmt.Errorf("%s: %w", op, &FieldError{Field: "title"})
	}

	author := strings.TrimSpace(in.Author)
	if author == "" {
		return "", fmt.Errorf("%s: %w", op, &FieldError{Field: "author"})
	}

	now := s.now().UTC()

	year := now.Year()
	if in.Year.Set {
		y, err := s.checkYear(in.Year)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		year = y
	}

	genre := models.DefaultGenre
	if in.Genre != nil && strings.TrimSpace(*in.Genre) != "" {
		genre = strings.TrimSpace(*in.Genre)
	}

	read := in.Read != nil && *in.Read

	book := &models.Book{
		Title:     title,
		Author:    author,
		Year:      year,
		Genre:     genre,
		Read:      read,
		Owner:     owner,
		CreatedAt: now,
	}

	id, err := s.storage.SaveBook(ctx, book)
	if err != nil {
		log.From(ctx).Error("save_book_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("book_added", slog.String("op", op), slog.String("book_id", id))
	return id, nil
}

// ListBooks возвращает страницу книг owner, прошедших filter, в порядке создания.
// Номер страницы < 1 приводится к 1; perPage < 1 заменяется значением
// по умолчанию, perPage больше максимума обрезается до максимума.
// Total и число страниц считаются по отфильтрованной выдаче.
func (s *Service) ListBooks(ctx context.Context, owner string, filter models.BookFilter, page, perPage int) ([]models.Book, models.Page, error) {
	const op = "service.books.ListBooks"

	page, perPage = s.normalizePage(page, perPage)
	offset := (page - 1) * perPage
	filter.Query = strings.TrimSpace(filter.Query)

	books, total, err := s.storage.ListBooks(ctx, owner, filter, offset, perPage)
	if err != nil {
		log.From(ctx).Error("list_books_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, models.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	if books == nil {
		books = []models.Book{}
	}

	return books, models.NewPage(page, perPage, total), nil
}

// GetBook возвращает книгу owner по id. Чужая и несуществующая книга неразличимы.
func (s *Service) GetBook(ctx context.Context, owner, rawID string) (*models.Book, error) {
	const op = "service.books.GetBook"

	id, ok := models.ParseID(rawID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidBookID)
	}

	book, err := s.storage.BookByID(ctx, owner, id)
	if err != nil {
		return nil, s.bookErr(ctx, op, err)
	}

	return book, nil
}

// UpdateBook применяет частичное обновление. Возвращает false, если все переданные
// значения совпадают с текущими: в этом случае запись не изменяется.
func (s *Service) UpdateBook(ctx context.Context, owner, rawID string, in UpdateBookInput) (bool, error) {
	const op = "service.books.UpdateBook"

	id, ok := models.ParseID(rawID)
	if !ok {
		return false, fmt.Errorf("%s: %w", op, ErrInvalidBookID)
	}

	existing, err := s.storage.BookByID(ctx, owner, id)
	if err != nil {
		return false, s.bookErr(ctx, op, err)
	}

	patch, err := s.buildPatch(in)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	diff := patch.Diff(existing)
	if diff.IsEmpty() {
		return false, nil
	}

	if err := s.storage.UpdateBook(ctx, owner, id, diff, s.now().UTC()); err != nil {
		return false, s.bookErr(ctx, op, err)
	}

	log.From(ctx).Info("book_updated", slog.String("op", op), slog.String("book_id", id))
	return true, nil
}

// DeleteBook удаляет книгу owner.
func (s *Service) DeleteBook(ctx context.Context, owner, rawID string) error {
	const op = "service.books.DeleteBook"

	id, ok := models.ParseID(rawID)
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrInvalidBookID)
	}

	if err := s.storage.DeleteBook(ctx, owner, id); err != nil {
		return s.bookErr(ctx, op, err)
	}

	log.From(ctx).Info("book_deleted", slog.String("op", op), slog.String("book_id", id))
	return nil
}

func (s *Service) buildPatch(in UpdateBookInput) (models.BookPatch, error) {
	var patch models.BookPatch

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return patch, &FieldError{Field: "title"}
		}
		patch.Title = &title
	}

	if in.Author != nil {
		author := strings.TrimSpace(*in.Author)
		if author == "" {
			return patch, &FieldError{Field: "author"}
		}
		patch.Author = &author
	}

	if in.Year.Set {
		y, err := s.checkYear(in.Year)
		if err != nil {
			return patch, err
		}
		patch.Year = &y
	}

	if in.Genre != nil {
		genre := strings.TrimSpace(*in.Genre)
		if genre == "" {
			genre = models.DefaultGenre
		}
		patch.Genre = &genre
	}

	patch.Read = in.Read

	return patch, nil
}

// checkYear: год издания - целое в диапазоне [0, текущий год по UTC].
// Тот же год подставляется по умолчанию в AddBook.
func (s *Service) checkYear(y models.Year) (int, error) {
	if y.Invalid {
		return 0, ErrYearNotNumber
	}

	if y.Value < 0 || y.Value > s.now().UTC().Year() {
		return 0, ErrInvalidYear
	}

	return y.Value, nil
}

func (s *Service) normalizePage(page, perPage int) (int, int) {
	// Верхняя граница страницы исключает переполнение при вычислении offset.
	const maxPage = math.MaxInt32

	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	if perPage < 1 {
		perPage = s.limits.DefaultPerPage
	}
	if perPage > s.limits.MaxPerPage {
		perPage = s.limits.MaxPerPage
	}

	return page, perPage
}

// bookErr маппит ошибки хранилища: ErrNotFound -> ErrBookNotFound, прочие логируются.
func (s *Service) bookErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrBookNotFound)
	}

	log.From(ctx).Error("book_storage_failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
	return fmt.Errorf("%s: %w", op, err)
}
