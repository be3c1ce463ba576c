package blocklist

import (
	"context"
	"sync"
	"time"
)

// Memory - blocklist в памяти процесса для запуска в одном экземпляре.
// Просроченные записи вычищаются Purge (см. фоновый janitor в main).
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if !expiresAt.After(m.now()) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.entries[jti]; !ok || expiresAt.After(cur) {
		m.entries[jti] = expiresAt
	}

	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	exp, ok := m.entries[jti]
	m.mu.RUnlock()

	return ok && m.now().Before(exp), nil
}

// Purge удаляет записи, чей токен истёк к моменту now, и возвращает их число.
func (m *Memory) Purge(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for jti, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, jti)
			n++
		}
	}

	return n
}

// Len - текущее число записей.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

func (m *Memory) Close() error { return nil }

var _ Blocklist = (*Memory)(nil)
