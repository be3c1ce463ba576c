// errors стандартизирует ответы об ошибках HTTP-слоя library-service.
// На вход он принимает ошибку сервиса (обёрнутый sentinel), а на выход даёт:
//   - корректный HTTP-статус;
//   - фиксированное сообщение для клиента без утечки деталей.
//
// Классификация идёт через errors.Is, поэтому обёртки с op сохраняются.
// Всё, что не распознано, отдаётся как 500 "Internal server error".
package errors

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-library-catalog/internal/pkg/log"
	"github.com/pribylovaa/go-library-catalog/internal/service"
)

// Ошибки транспорта, возникающие до вызова сервиса.
var (
	// ErrNoData - тело запроса пустое или не является JSON-объектом.
	ErrNoData = errors.New("no data provided")
	// ErrNoBookData - то же для /add_book, у которого своё сообщение.
	ErrNoBookData = errors.New("no data received")
	// ErrInvalidBody - поле тела запроса имеет неверный JSON-тип.
	ErrInvalidBody = errors.New("invalid request body")
	// ErrMissingAuthHeader - нет заголовка Authorization: Bearer.
	ErrMissingAuthHeader = errors.New("missing authorization header")
)

// Сообщение для нераспознанных ошибок.
const internalMessage = "Internal server error"

// Response - тело ответа с сообщением.
type Response struct {
	Message string `json:"message"`
}

type rule struct {
	target error
	status int
	msg    string
}

// rules - таблица маппинга; проверяется по порядку.
var rules = []rule{
	{ErrNoData, http.StatusBadRequest, "No data provided"},
	{ErrNoBookData, http.StatusBadRequest, "No data received!"},
	{ErrInvalidBody, http.StatusBadRequest, "Invalid request body"},
	{ErrMissingAuthHeader, http.StatusUnauthorized, "Missing Authorization Header"},

	{service.ErrCredentialsRequired, http.StatusBadRequest, "Email and password are required"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "Invalid email format"},
	{service.ErrWeakPassword, http.StatusBadRequest, "Password must be at least 8 characters long"},
	{service.ErrEmailTaken, http.StatusBadRequest, "User already exists!"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},

	{service.ErrTokenExpired, http.StatusUnauthorized, "Token has expired"},
	{service.ErrTokenRevoked, http.StatusUnauthorized, "Token has been revoked"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},

	{service.ErrYearNotNumber, http.StatusBadRequest, "Year must be a number"},
	{service.ErrInvalidYear, http.StatusBadRequest, "Invalid year"},
	{service.ErrInvalidBookID, http.StatusBadRequest, "Invalid book ID format"},
	{service.ErrBookNotFound, http.StatusNotFound, "Book not found or access denied!"},
}

// ToHTTP конвертирует ошибку в HTTP-статус и ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500, чтобы не маскировать баг;
//   - *service.FieldError - 400 с именем поля;
//   - известные sentinel - по таблице rules;
//   - прочее - 500 без деталей.
func ToHTTP(err error) (int, Response) {
	if err == nil {
		return http.StatusInternalServerError, Response{Message: internalMessage}
	}

	var fe *service.FieldError
	if errors.As(err, &fe) {
		return http.StatusBadRequest, Response{Message: "Field '" + fe.Field + "' is required"}
	}

	for _, r := range rules {
		if errors.Is(err, r.target) {
			return r.status, Response{Message: r.msg}
		}
	}

	return http.StatusInternalServerError, Response{Message: internalMessage}
}

// WriteError пишет ответ {"message": ...} с корректным статусом.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)
	logServerError(r, status, err)
	writeJSON(w, status, resp)
}

// WriteErrorKey пишет ответ в форме {"error": ...}: так GET /book/{id} отдаёт внутренние сбои.
func WriteErrorKey(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)
	logServerError(r, status, err)
	writeJSON(w, status, map[string]string{"error": resp.Message})
}

// WriteMessage пишет успешный ответ {"message": ...}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Message: msg})
}

func logServerError(r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError || err == nil {
		return
	}

	log.From(r.Context()).Error("request_failed",
		slog.Int("status", status),
		slog.String("err", err.Error()),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
