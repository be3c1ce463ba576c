// memory - хранилище в памяти процесса (DATABASE_URL=memory://).
// Используется для локального запуска и end-to-end тестов HTTP-слоя;
// данные не переживают рестарт.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
)

type Storage struct {
	mu    sync.RWMutex
	users map[string]models.User
	books map[string]*models.Book
	// order - id книг в порядке добавления (естественный порядок выдачи).
	order []string
}

func New() *Storage {
	return &Storage{
		users: make(map[string]models.User),
		books: make(map[string]*models.Book),
	}
}

func (s *Storage) Close(context.Context) error { return nil }

func (s *Storage) SaveUser(_ context.Context, user *models.User) error {
	const op = "storage/memory/SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	u := *user
	if u.ID == "" {
		u.ID = models.NewID()
		user.ID = u.ID
	}
	s.users[u.Email] = u

	return nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (*models.User, error) {
	const op = "storage/memory/UserByEmail"

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &u, nil
}

func (s *Storage) SaveBook(_ context.Context, book *models.Book) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := *book
	b.ID = models.NewID()
	s.books[b.ID] = &b
	s.order = append(s.order, b.ID)

	return b.ID, nil
}

func (s *Storage) BookByID(_ context.Context, owner, id string) (*models.Book, error) {
	const op = "storage/memory/BookByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.owned(owner, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *b
	return &out, nil
}

func (s *Storage) ListBooks(_ context.Context, owner string, filter models.BookFilter, offset, limit int) ([]models.Book, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 0 {
		limit = 0
	}

	total := 0
	items := make([]models.Book, 0, limit)
	for _, id := range s.order {
		b := s.books[id]
		if b.Owner != owner || !filter.Match(b) {
			continue
		}

		if total >= offset && len(items) < limit {
			items = append(items, *b)
		}
		total++
	}

	return items, total, nil
}

func (s *Storage) UpdateBook(_ context.Context, owner, id string, patch models.BookPatch, updatedAt time.Time) error {
	const op = "storage/memory/UpdateBook"

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.owned(owner, id)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	patch.Apply(b)
	ts := updatedAt
	b.UpdatedAt = &ts

	return nil
}

func (s *Storage) DeleteBook(_ context.Context, owner, id string) error {
	const op = "storage/memory/DeleteBook"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(owner, id); !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	delete(s.books, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return nil
}

// owned вызывается под блокировкой.
func (s *Storage) owned(owner, id string) (*models.Book, bool) {
	b, ok := s.books[id]
	if !ok || b.Owner != owner {
		return nil, false
	}

	return b, true
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
