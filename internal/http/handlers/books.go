package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/go-library-catalog/internal/errors"
	"github.com/pribylovaa/go-library-catalog/internal/models"
)

func (h *Handlers) AddBook(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var in addBookRequest
	if err := readObject(r, &in); err != nil {
		if errors.Is(err, apierrors.ErrNoData) {
			err = apierrors.ErrNoBookData
		}
		apierrors.WriteError(w, r, err)
		return
	}

	bookID, err := h.svc.AddBook(r.Context(), id.Email, in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, addBookResponse{Message: "Book added successfully!", BookID: bookID})
}

// ListBooks: нечисловые page/per_page заменяются значениями по умолчанию,
// приведение к допустимому диапазону делает сервис. q - поиск по названию
// или автору, read=true|false - фильтр по статусу; иное значение read игнорируется.
func (h *Handlers) ListBooks(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page := queryInt(q.Get("page"))
	perPage := queryInt(q.Get("per_page"))
	filter := models.BookFilter{Query: q.Get("q"), Read: queryBool(q.Get("read"))}

	books, p, err := h.svc.ListBooks(r.Context(), id.Email, filter, page, perPage)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listFromModel(books, p))
}

func (h *Handlers) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	book, err := h.svc.GetBook(r.Context(), id.Email, chi.URLParam(r, "id"))
	if err != nil {
		if status, _ := apierrors.ToHTTP(err); status >= http.StatusInternalServerError {
			apierrors.WriteErrorKey(w, r, err)
			return
		}

		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookFromModel(book))
}

func (h *Handlers) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var in updateBookRequest
	if err := readObject(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	changed, err := h.svc.UpdateBook(r.Context(), id.Email, chi.URLParam(r, "id"), in.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if !changed {
		apierrors.WriteMessage(w, http.StatusOK, "No changes made to the book")
		return
	}

	apierrors.WriteMessage(w, http.StatusOK, "Book updated successfully!")
}

func (h *Handlers) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteBook(r.Context(), id.Email, chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteMessage(w, http.StatusOK, "Book deleted successfully!")
}

// queryInt разбирает целое из query; пустое или нечисловое значение - 0.
func queryInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// queryBool разбирает true/false из query; иное значение - nil (фильтр не задан).
func queryBool(v string) *bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
