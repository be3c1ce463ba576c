// storage описывает контракт хранилища пользователей и книг.
// Все операции над книгами фильтруются по владельцу (email).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/go-library-catalog/internal/models"
)

var (
	// ErrNotFound - запись не найдена или принадлежит другому владельцу.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists - нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт пользователя; занятый email - ErrAlreadyExists.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// BookStorage выполняет операции над книгами владельца.
type BookStorage interface {
	// SaveBook сохраняет книгу и возвращает её id.
	SaveBook(ctx context.Context, book *models.Book) (string, error)
	// BookByID возвращает книгу владельца.
	BookByID(ctx context.Context, owner, id string) (*models.Book, error)
	// ListBooks возвращает срез книг владельца, прошедших фильтр, в порядке
	// добавления и общее число таких книг.
	ListBooks(ctx context.Context, owner string, filter models.BookFilter, offset, limit int) ([]models.Book, int, error)
	// UpdateBook применяет патч и проставляет updated_at.
	UpdateBook(ctx context.Context, owner, id string, patch models.BookPatch, updatedAt time.Time) error
	// DeleteBook удаляет книгу владельца.
	DeleteBook(ctx context.Context, owner, id string) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	BookStorage
	Close(ctx context.Context) error
}
