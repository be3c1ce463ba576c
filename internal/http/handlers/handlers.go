package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/pribylovaa/go-library-catalog/internal/errors"
	"github.com/pribylovaa/go-library-catalog/internal/http/middleware"
	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/service"
)

// Максимальный размер тела запроса.
const maxBodyBytes = 1 << 20

// Handlers агрегирует зависимости REST-обработчиков.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON - единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// readObject декодирует тело запроса в dst. Пустое тело, не-JSON, не-объект
// и пустой объект - apierrors.ErrNoData; неверный тип поля - apierrors.ErrInvalidBody.
func readObject(r *http.Request, dst any) error {
	const op = "handlers.readObject"

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: %w", op, apierrors.ErrNoData)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return fmt.Errorf("%s: %w", op, apierrors.ErrNoData)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", op, apierrors.ErrInvalidBody)
	}

	return nil
}

// identity - владелец запроса, проверенный middleware.AuthBearer.
func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrMissingAuthHeader)
		return models.Identity{}, false
	}

	return id, true
}
