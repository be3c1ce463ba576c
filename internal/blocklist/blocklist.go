// blocklist хранит идентификаторы (jti) отозванных access-токенов.
//
// Запись живёт до естественного истечения токена: после exp токен и так
// отклоняется проверкой подписи/срока, поэтому хранить его jti дальше незачем.
package blocklist

import (
	"context"
	"time"
)

// Blocklist - контракт хранилища отозванных токенов. Реализации безопасны
// для конкурентного использования.
type Blocklist interface {
	// Revoke помечает jti отозванным до expiresAt.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// IsRevoked сообщает, отозван ли jti.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Close освобождает ресурсы (соединение с Redis).
	Close() error
}
