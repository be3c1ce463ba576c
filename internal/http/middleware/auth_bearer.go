package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/go-library-catalog/internal/errors"
	"github.com/pribylovaa/go-library-catalog/internal/models"
	logctx "github.com/pribylovaa/go-library-catalog/internal/pkg/log"
	"github.com/pribylovaa/go-library-catalog/internal/pkg/redact"
)

// Verifier проверяет bearer-токен и возвращает его владельца.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// AuthBearer требует заголовок Authorization: Bearer <token>.
// Проверенный Identity кладётся в контекст (см. IdentityFrom),
// email владельца добавляется к request-scoped логгеру.
func AuthBearer(v Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				apierrors.WriteError(w, r, fmt.Errorf("middleware.AuthBearer: %w", apierrors.ErrMissingAuthHeader))
				return
			}

			id, err := v.Verify(r.Context(), token)
			if err != nil {
				logctx.From(r.Context()).Debug("auth_rejected", slog.String("err", err.Error()))
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, *id)
			ctx = logctx.With(ctx, slog.String("user", redact.Email(id.Email)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom возвращает владельца токена, проверенного AuthBearer.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(models.Identity)
	return id, ok
}

// bearerToken вынимает токен из заголовка. Пустой токен после префикса
// считается переданным: его отклонит проверка подписи.
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "

	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(header[len(prefix):]), true
}
