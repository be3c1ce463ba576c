package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-library-catalog/internal/models"
	"github.com/pribylovaa/go-library-catalog/internal/pkg/log"
	"github.com/pribylovaa/go-library-catalog/internal/pkg/redact"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
)

const minPasswordLen = 8

var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// Register регистрирует нового пользователя. Токен не выдаётся: нужен отдельный вход.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	const op = "service.auth.Register"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrCredentialsRequired)
	}

	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	lg := log.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(email)))

	_, err := s.storage.UserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("user_lookup_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		lg.Error("password_hash_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("save_user_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("user_registered")
	return user, nil
}

// Login проверяет пару email+пароль и выпускает access-токен.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.auth.Login"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%s: %w", op, ErrCredentialsRequired)
	}

	lg := log.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(email)))

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Debug("login_rejected")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("user_lookup_failed", slog.String("err", err.Error()))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		lg.Debug("login_rejected")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.generateAccessToken(ctx, user.Email, s.now())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Logout отзывает токен до его естественного истечения.
func (s *Service) Logout(ctx context.Context, id models.Identity) error {
	const op = "service.auth.Logout"

	if id.TokenID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := s.blocklist.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		log.From(ctx).Error("token_revoke_failed",
			slog.String("op", op),
			slog.String("jti", redact.TokenID(id.TokenID)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Verify проверяет bearer-токен: подпись, срок и отсутствие в blocklist.
func (s *Service) Verify(ctx context.Context, token string) (*models.Identity, error) {
	const op = "service.auth.Verify"

	id, err := s.validateAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	revoked, err := s.blocklist.IsRevoked(ctx, id.TokenID)
	if err != nil {
		log.From(ctx).Error("blocklist_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return id, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
