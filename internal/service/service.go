// service содержит бизнес-логику library-service:
// регистрацию/аутентификацию пользователей, выпуск/проверку/отзыв токенов
// и операции над книгами с проверкой владения.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для конкурентного
//     использования при условии, что хранилище и blocklist потокобезопасны.
//   - Ошибки возвращаются обёрнутыми в op и далее маппятся HTTP-слоем
//     (internal/errors) на статус и сообщение для клиента.
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/go-library-catalog/internal/blocklist"
	"github.com/pribylovaa/go-library-catalog/internal/config"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
)

var (
	// ErrCredentialsRequired - не передан email или пароль. HTTP 400.
	ErrCredentialsRequired = errors.New("email and password are required")

	// ErrInvalidEmail - e-mail не проходит проверку формата. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword - пароль короче 8 символов. HTTP 400.
	ErrWeakPassword = errors.New("password is too short")

	// ErrEmailTaken - e-mail уже зарегистрирован. HTTP 400 (конфликт).
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidCredentials - пользователь не найден или пароль неверен.
	// Оба случая неразличимы для клиента. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken - токен некорректен по формату/подписи/claims. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired - срок действия токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked - токен отозван через logout. HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrFieldRequired - обязательное поле книги пустое (см. FieldError). HTTP 400.
	ErrFieldRequired = errors.New("field is required")

	// ErrYearNotNumber - год не приводится к целому числу. HTTP 400.
	ErrYearNotNumber = errors.New("year must be a number")

	// ErrInvalidYear - год вне диапазона [0, текущий год]. HTTP 400.
	ErrInvalidYear = errors.New("invalid year")

	// ErrInvalidBookID - id книги не в формате ObjectID. HTTP 400.
	ErrInvalidBookID = errors.New("invalid book id")

	// ErrBookNotFound - книги нет или она принадлежит другому пользователю. HTTP 404.
	ErrBookNotFound = errors.New("book not found")
)

// FieldError - незаполненное обязательное поле. errors.Is(err, ErrFieldRequired) == true.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return "field '" + e.Field + "' is required" }

func (e *FieldError) Is(target error) bool { return target == ErrFieldRequired }

// Service описывает бизнес-логику library-service.
type Service struct {
	storage   storage.Storage
	blocklist blocklist.Blocklist
	auth      config.AuthConfig
	limits    config.LimitsConfig
	now       func() time.Time
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, bl blocklist.Blocklist, auth config.AuthConfig, limits config.LimitsConfig) *Service {
	return &Service{
		storage:   storage,
		blocklist: bl,
		auth:      auth,
		limits:    limits,
		now:       time.Now,
	}
}
