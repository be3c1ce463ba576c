package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
)

const owner = "u1@x.com"

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

// mustBook - книга владельца owner с заданным id.
func mustBook(id string) *models.Book {
	return &models.Book{
		ID:        id,
		Title:     "Dune",
		Author:    "Herbert",
		Year:      1965,
		Genre:     models.DefaultGenre,
		Owner:     owner,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAddBook_OK_Defaults(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)

	st.EXPECT().SaveBook(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *models.Book) (string, error) {
			require.Equal(t, "Dune", b.Title)
			require.Equal(t, "Herbert", b.Author)
			require.Equal(t, 2025, b.Year)
			require.Equal(t, models.DefaultGenre, b.Genre)
			require.False(t, b.Read)
			require.Equal(t, owner, b.Owner)
			require.Equal(t, svc.now(), b.CreatedAt)
			return "66b000000000000000000001", nil
		})

	id, err := svc.AddBook(context.Background(), owner, AddBookInput{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	require.Equal(t, "66b000000000000000000001", id)
}

func TestAddBook_ExplicitFields(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)

	st.EXPECT().SaveBook(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *models.Book) (string, error) {
			require.Equal(t, 1965, b.Year)
			require.Equal(t, "Sci-Fi", b.Genre)
			require.True(t, b.Read)
			return models.NewID(), nil
		})

	_, err := svc.AddBook(context.Background(), owner, AddBookInput{
		Title:  "Dune",
		Author: "Herbert",
		Year:   models.YearOf(1965),
		Genre:  strPtr("Sci-Fi"),
		Read:   boolPtr(true),
	})
	require.NoError(t, err)
}

func TestAddBook_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)

	tcs := []struct {
		name string
		in   AddBookInput
		want error
	}{
		{"no_title", AddBookInput{Author: "Herbert"}, ErrFieldRequired},
		{"blank_title", AddBookInput{Title: "  ", Author: "Herbert"}, ErrFieldRequired},
		{"no_author", AddBookInput{Title: "Dune"}, ErrFieldRequired},
		{"year_not_number", AddBookInput{Title: "Dune", Author: "Herbert", Year: models.Year{Set: true, Invalid: true}}, ErrYearNotNumber},
		{"year_in_future", AddBookInput{Title: "Dune", Author: "Herbert", Year: models.YearOf(9999)}, ErrInvalidYear},
		{"year_negative", AddBookInput{Title: "Dune", Author: "Herbert", Year: models.YearOf(-1)}, ErrInvalidYear},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddBook(context.Background(), owner, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAddBook_FieldErrorNamesField(t *testing.T) {
	t.Parallel()

	svc, _, _ := newSvc(t)

	_, err := svc.AddBook(context.Background(), owner, AddBookInput{Title: "Dune"})

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "author", fe.Field)
}

// Границы диапазона года включены.
func TestAddBook_YearBounds(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	st.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(models.NewID(), nil).Times(2)

	_, err := svc.AddBook(context.Background(), owner, AddBookInput{Title: "A", Author: "B", Year: models.YearOf(0)})
	require.NoError(t, err)

	_, err = svc.AddBook(context.Background(), owner, AddBookInput{Title: "A", Author: "B", Year: models.YearOf(2025)})
	require.NoError(t, err)
}

// Граница года и год по умолчанию берутся по одним часам (UTC): в поясе,
// где уже наступил новый год, он ещё не считается текущим.
func TestAddBook_YearBoundUsesUTC(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	msk := time.FixedZone("UTC+3", 3*60*60)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 1, 0, 0, 0, msk) }

	_, err := svc.AddBook(context.Background(), owner, AddBookInput{Title: "A", Author: "B", Year: models.YearOf(2026)})
	require.ErrorIs(t, err, ErrInvalidYear)

	st.EXPECT().SaveBook(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *models.Book) (string, error) {
			require.Equal(t, 2025, b.Year)
			return models.NewID(), nil
		})

	_, err = svc.AddBook(context.Background(), owner, AddBookInput{Title: "A", Author: "B"})
	require.NoError(t, err)
}

func TestListBooks_Pagination(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name          string
		page, perPage int
		wantOffset    int
		wantLimit     int
		wantPage      int
		total         int
		wantPages     int
	}{
		{"defaults_on_zero", 0, 0, 0, 10, 1, 25, 3},
		{"clamp_per_page", 1, 1000, 0, 50, 1, 120, 3},
		{"second_page", 2, 10, 10, 10, 2, 11, 2},
		{"negative_page", -5, 5, 0, 5, 1, 0, 0},
		{"beyond_end", 9, 10, 80, 10, 9, 11, 2},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			svc, st, _ := newSvc(t)

			st.EXPECT().ListBooks(gomock.Any(), owner, models.BookFilter{}, tc.wantOffset, tc.wantLimit).Return(nil, tc.total, nil)

			books, page, err := svc.ListBooks(context.Background(), owner, models.BookFilter{}, tc.page, tc.perPage)
			require.NoError(t, err)
			require.NotNil(t, books)
			require.Empty(t, books)
			require.Equal(t, tc.wantPage, page.Page)
			require.Equal(t, tc.wantLimit, page.PerPage)
			require.Equal(t, tc.total, page.Total)
			require.Equal(t, tc.wantPages, page.Pages)
		})
	}
}

func TestListBooks_StorageError(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)

	dbErr := errors.New("db down")
	st.EXPECT().ListBooks(gomock.Any(), owner, models.BookFilter{}, 0, 10).Return(nil, 0, dbErr)

	_, _, err := svc.ListBooks(context.Background(), owner, models.BookFilter{}, 1, 10)
	require.ErrorIs(t, err, dbErr)
}

func TestListBooks_PassesTrimmedFilter(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)

	read := true
	want := models.BookFilter{Query: "dune", Read: &read}
	st.EXPECT().ListBooks(gomock.Any(), owner, want, 10, 10).Return([]models.Book{*mustBook(models.NewID())}, 11, nil)

	books, page, err := svc.ListBooks(context.Background(), owner, models.BookFilter{Query: "  dune ", Read: &read}, 2, 10)
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.Equal(t, 11, page.Total)
	require.Equal(t, 2, page.Pages)
}

func TestGetBook(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	id := models.NewID()

	st.EXPECT().BookByID(gomock.Any(), owner, id).Return(mustBook(id), nil)

	b, err := svc.GetBook(context.Background(), owner, id)
	require.NoError(t, err)
	require.Equal(t, id, b.ID)

	_, err = svc.GetBook(context.Background(), owner, "not-an-id")
	require.ErrorIs(t, err, ErrInvalidBookID)
}

// Чужая книга и отсутствующая неразличимы.
func TestGetBook_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	id := models.NewID()

	st.EXPECT().BookByID(gomock.Any(), "u2@x.com", id).Return(nil, storage.ErrNotFound)

	_, err := svc.GetBook(context.Background(), "u2@x.com", id)
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateBook_AppliesOnlyChangedFields(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	id := models.NewID()

	st.EXPECT().BookByID(gomock.Any(), owner, id).Return(mustBook(id), nil)
	st.EXPECT().UpdateBook(gomock.Any(), owner, id, gomock.Any(), svc.now()).DoAndReturn(
		func(_ context.Context, _, _ string, p models.BookPatch, _ time.Time) error {
			require.Nil(t, p.Title)
			require.NotNil(t, p.Read)
			require.True(t, *p.Read)
			return nil
		})

	changed, err := svc.UpdateBook(context.Background(), owner, id, UpdateBookInput{
		Title: strPtr("Dune"),
		Read:  boolPtr(true),
	})
	require.NoError(t, err)
	require.True(t, changed)
}

func TestUpdateBook_NoChanges_SkipsWrite(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	id := models.NewID()

	st.EXPECT().BookByID(gomock.Any(), owner, id).Return(mustBook(id), nil)

	changed, err := svc.UpdateBook(context.Background(), owner, id, UpdateBookInput{
		Title: strPtr("Dune"),
		Year:  models.YearOf(1965),
	})
	require.NoError(t, err)
	require.False(t, changed)
}

func TestUpdateBook_Errors(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	id := models.NewID()
	ctx := context.Background()

	_, err := svc.UpdateBook(ctx, owner, "zzz", UpdateBookInput{Read: boolPtr(true)})
	require.ErrorIs(t, err, ErrInvalidBookID)

	st.EXPECT().BookByID(gomock.Any(), owner, id).Return(nil, storage.ErrNotFound)
	_, err = svc.UpdateBook(ctx, owner, id, UpdateBookInput{Read: boolPtr(true)})
	require.ErrorIs(t, err, ErrBookNotFound)

	st.EXPECT().BookByID(gomock.Any(), owner, id).Return(mustBook(id), nil)
	_, err = svc.UpdateBook(ctx, owner, id, UpdateBookInput{Year: models.YearOf(9999)})
	require.ErrorIs(t, err, ErrInvalidYear)

	st.EXPECT().BookByID(gomock.Any(), owner, id).Return(mustBook(id), nil)
	_, err = svc.UpdateBook(ctx, owner, id, UpdateBookInput{Title: strPtr(" ")})
	require.ErrorIs(t, err, ErrFieldRequired)

	// Книгу удалили между чтением и записью.
	st.EXPECT().BookByID(gomock.Any(), owner, id).Return(mustBook(id), nil)
	st.EXPECT().UpdateBook(gomock.Any(), owner, id, gomock.Any(), gomock.Any()).Return(storage.ErrNotFound)
	_, err = svc.UpdateBook(ctx, owner, id, UpdateBookInput{Read: boolPtr(true)})
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	id := models.NewID()
	ctx := context.Background()

	st.EXPECT().DeleteBook(gomock.Any(), owner, id).Return(nil)
	require.NoError(t, svc.DeleteBook(ctx, owner, id))

	st.EXPECT().DeleteBook(gomock.Any(), owner, id).Return(storage.ErrNotFound)
	require.ErrorIs(t, svc.DeleteBook(ctx, owner, id), ErrBookNotFound)

	require.ErrorIs(t, svc.DeleteBook(ctx, owner, "123"), ErrInvalidBookID)
}
