package models

import "time"

// Identity - проверенный владелец bearer-токена.
type Identity struct {
	Email     string
	TokenID   string
	ExpiresAt time.Time
}
