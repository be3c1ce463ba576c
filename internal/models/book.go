package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// DefaultGenre подставляется, если жанр не передан.
const DefaultGenre = "Fiction"

// Book - запись каталога. Owner - email создателя; наружу не отдаётся.
type Book struct {
	ID        string
	Title     string
	Author    string
	Year      int
	Genre     string
	Read      bool
	Owner     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// BookPatch - частичное обновление: nil означает «поле не менять».
type BookPatch struct {
	Title  *string
	Author *string
	Year   *int
	Genre  *string
	Read   *bool
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Year == nil && p.Genre == nil && p.Read == nil
}

// Diff оставляет в патче только поля, отличающиеся от текущего состояния книги.
func (p BookPatch) Diff(b *Book) BookPatch {
	var out BookPatch

	if p.Title != nil && *p.Title != b.Title {
		out.Title = p.Title
	}

	if p.Author != nil && *p.Author != b.Author {
		out.Author = p.Author
	}

	if p.Year != nil && *p.Year != b.Year {
		out.Year = p.Year
	}

	if p.Genre != nil && *p.Genre != b.Genre {
		out.Genre = p.Genre
	}

	if p.Read != nil && *p.Read != b.Read {
		out.Read = p.Read
	}

	return out
}

// Apply применяет патч к книге.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}

	if p.Author != nil {
		b.Author = *p.Author
	}

	if p.Year != nil {
		b.Year = *p.Year
	}

	if p.Genre != nil {
		b.Genre = *p.Genre
	}

	if p.Read != nil {
		b.Read = *p.Read
	}
}

// BookFilter - отбор книг в списке. Query ищется без учёта регистра
// как подстрока в названии или авторе; Read == nil - статус не важен.
type BookFilter struct {
	Query string
	Read  *bool
}

// Match сообщает, проходит ли книга фильтр.
func (f BookFilter) Match(b *Book) bool {
	if f.Read != nil && *f.Read != b.Read {
		return false
	}

	if f.Query == "" {
		return true
	}

	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q)
}

// Year - год издания из тела запроса. Клиенты присылают его и числом, и строкой,
// поэтому разбор не роняет декодирование всего тела: некорректное значение
// помечается через Invalid и отклоняется сервисом.
type Year struct {
	Value   int
	Set     bool
	Invalid bool
}

// YearOf - заданный год (удобно в тестах и при сборке запросов).
func YearOf(v int) Year { return Year{Value: v, Set: true} }

func (y *Year) UnmarshalJSON(b []byte) error {
	*y = Year{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	y.Set = true

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			y.Invalid = true
			return nil
		}
		raw = strings.TrimSpace(s)

		n, ok := parseInteger(raw)
		if !ok {
			y.Invalid = true
			return nil
		}

		y.Value = n
		return nil
	}

	if n, ok := parseInteger(raw); ok {
		y.Value = n
		return nil
	}

	// Дробное число усекается до целого.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		y.Invalid = true
		return nil
	}

	y.Value = clampYear(f)
	return nil
}

// parseInteger разбирает десятичное целое. Число, не влезающее в int,
// остаётся числом: значение прижимается к границе и не пройдёт проверку диапазона.
func parseInteger(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return 0, false
	}

	if n.Sign() < 0 {
		return math.MinInt32, true
	}

	return math.MaxInt32, true
}

func clampYear(f float64) int {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	default:
		return int(f)
	}
}

// Page - метаданные постраничной выдачи.
type Page struct {
	Page    int
	PerPage int
	Total   int
	Pages   int
}

// NewPage считает число страниц: ceil(total/perPage).
func NewPage(page, perPage, total int) Page {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}

	return Page{Page: page, PerPage: perPage, Total: total, Pages: pages}
}
