package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
)

// SaveBook сохраняет книгу; id выпускается приложением в формате ObjectID.
func (s *Storage) SaveBook(ctx context.Context, book *models.Book) (string, error) {
	const op = "storage.postgres.SaveBook"

	id := models.NewID()

	query := `
		INSERT INTO books(id, owner, title, author, year, genre, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(ctx, query,
		id,
		book.Owner,
		book.Title,
		book.Author,
		book.Year,
		book.Genre,
		book.Read,
		book.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// BookByID находит книгу владельца.
func (s *Storage) BookByID(ctx context.Context, owner, id string) (*models.Book, error) {
	const op = "storage.postgres.BookByID"

	query := `
		SELECT id, owner, title, author, year, genre, read, created_at, updated_at
		FROM books
		WHERE id = $1 AND owner = $2
	`

	book, err := scanBook(s.db.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return book, nil
}

// ListBooks возвращает страницу книг владельца в порядке добавления.
func (s *Storage) ListBooks(ctx context.Context, owner string, f models.BookFilter, offset, limit int) ([]models.Book, int, error) {
	const op = "storage.postgres.ListBooks"

	where, args := listWhere(owner, f)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	if limit <= 0 || offset >= total {
		return []models.Book{}, total, nil
	}

	args = append(args, offset, limit)
	query := fmt.Sprintf(`
		SELECT id, owner, title, author, year, genre, read, created_at, updated_at
		FROM books
		WHERE %s
		ORDER BY seq
		OFFSET $%d LIMIT $%d
	`, where, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.Book, 0, limit)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows: %w", op, err)
	}

	return items, total, nil
}

// UpdateBook применяет непустые поля патча и проставляет updated_at.
func (s *Storage) UpdateBook(ctx context.Context, owner, id string, patch models.BookPatch, updatedAt time.Time) error {
	const op = "storage.postgres.UpdateBook"

	sets := []string{"updated_at = $1"}
	args := []any{updatedAt}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Author != nil {
		add("author", *patch.Author)
	}
	if patch.Year != nil {
		add("year", *patch.Year)
	}
	if patch.Genre != nil {
		add("genre", *patch.Genre)
	}
	if patch.Read != nil {
		add("read", *patch.Read)
	}

	args = append(args, id, owner)
	query := fmt.Sprintf(`UPDATE books SET %s WHERE id = $%d AND owner = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteBook удаляет книгу владельца.
func (s *Storage) DeleteBook(ctx context.Context, owner, id string) error {
	const op = "storage.postgres.DeleteBook"

	tag, err := s.db.Exec(ctx, `DELETE FROM books WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// listWhere собирает условие выдачи: владелец, подстрока (ILIKE) и статус прочтения.
func listWhere(owner string, f models.BookFilter) (string, []any) {
	conds := []string{"owner = $1"}
	args := []any{owner}

	if f.Query != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Query)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", n, n))
	}

	if f.Read != nil {
		args = append(args, *f.Read)
		conds = append(conds, "read = $"+strconv.Itoa(len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// likeEscaper экранирует метасимволы LIKE (escape-символ по умолчанию - обратный слеш).
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(
		&b.ID,
		&b.Owner,
		&b.Title,
		&b.Author,
		&b.Year,
		&b.Genre,
		&b.Read,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}
