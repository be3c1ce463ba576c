package memory

import (
	"context"
	"testing"
	"time"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
	"github.com/stretchr/testify/require"
)

func addBook(t *testing.T, s *Storage, owner, title string) string {
	t.Helper()
	id, err := s.SaveBook(context.Background(), &models.Book{Title: title, Author: "A", Owner: owner, Genre: models.DefaultGenre})
	require.NoError(t, err)
	return id
}

func TestUsers_SaveAndLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	u := &models.User{Email: "u1@x.com", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.SaveUser(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := s.UserByEmail(ctx, "u1@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	err = s.SaveUser(ctx, &models.User{Email: "u1@x.com"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.UserByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBooks_OwnershipGating(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	id := addBook(t, s, "b@x.com", "Dune")

	_, err := s.BookByID(ctx, "a@x.com", id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	read := true
	err = s.UpdateBook(ctx, "a@x.com", id, models.BookPatch{Read: &read}, time.Now())
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = s.DeleteBook(ctx, "a@x.com", id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	b, err := s.BookByID(ctx, "b@x.com", id)
	require.NoError(t, err)
	require.False(t, b.Read)
}

func TestBooks_ListPaginationInInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	for _, title := range []string{"one", "two", "three", "four", "five"} {
		addBook(t, s, "a@x.com", title)
		addBook(t, s, "other@x.com", "foreign-"+title)
	}

	items, total, err := s.ListBooks(ctx, "a@x.com", models.BookFilter{}, 0, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, items, 2)
	require.Equal(t, "one", items[0].Title)
	require.Equal(t, "two", items[1].Title)

	items, _, err = s.ListBooks(ctx, "a@x.com", models.BookFilter{}, 4, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "five", items[0].Title)

	items, total, err = s.ListBooks(ctx, "a@x.com", models.BookFilter{}, 10, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestBooks_ListFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	read := true
	for _, b := range []models.Book{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Emma", Author: "Jane Austen", Read: true},
		{Title: "Children of Dune", Author: "Frank Herbert", Read: true},
		{Title: "100% Coverage", Author: "Nobody"},
	} {
		b.Owner = "a@x.com"
		_, err := s.SaveBook(ctx, &b)
		require.NoError(t, err)
	}
	addBook(t, s, "other@x.com", "Dune")

	tcs := []struct {
		name   string
		filter models.BookFilter
		want   []string
	}{
		{"title_case_insensitive", models.BookFilter{Query: "DUNE"}, []string{"Dune", "Children of Dune"}},
		{"author", models.BookFilter{Query: "austen"}, []string{"Emma"}},
		{"read_only", models.BookFilter{Read: &read}, []string{"Emma", "Children of Dune"}},
		{"query_and_read", models.BookFilter{Query: "dune", Read: &read}, []string{"Children of Dune"}},
		{"literal_percent", models.BookFilter{Query: "100%"}, []string{"100% Coverage"}},
		{"no_match", models.BookFilter{Query: "tolstoy"}, nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := s.ListBooks(ctx, "a@x.com", tc.filter, 0, 10)
			require.NoError(t, err)
			require.Equal(t, len(tc.want), total)

			var titles []string
			for _, b := range items {
				titles = append(titles, b.Title)
			}
			require.Equal(t, tc.want, titles)
		})
	}
}

func TestBooks_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	id := addBook(t, s, "a@x.com", "Dune")
	read := true
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.UpdateBook(ctx, "a@x.com", id, models.BookPatch{Read: &read}, at))

	b, err := s.BookByID(ctx, "a@x.com", id)
	require.NoError(t, err)
	require.True(t, b.Read)
	require.NotNil(t, b.UpdatedAt)
	require.Equal(t, at, *b.UpdatedAt)

	require.NoError(t, s.DeleteBook(ctx, "a@x.com", id))
	_, err = s.BookByID(ctx, "a@x.com", id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, total, err := s.ListBooks(ctx, "a@x.com", models.BookFilter{}, 0, 10)
	require.NoError(t, err)
	require.Zero(t, total)
}
