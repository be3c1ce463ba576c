// Package models содержит доменные сущности library-service.
package models

import "time"

// User - учётная запись. Email - логин и ключ владения книгами.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
