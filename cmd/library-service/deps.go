package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/go-library-catalog/internal/blocklist"
	"github.com/pribylovaa/go-library-catalog/internal/config"
	"github.com/pribylovaa/go-library-catalog/internal/storage"
	"github.com/pribylovaa/go-library-catalog/internal/storage/memory"
	"github.com/pribylovaa/go-library-catalog/internal/storage/mongo"
	"github.com/pribylovaa/go-library-catalog/internal/storage/postgres"
)

// openStorage подключает хранилище по схеме DATABASE_URL.
// Для Postgres перед стартом применяются миграции.
func openStorage(ctx context.Context, cfg config.DBConfig) (storage.Storage, error) {
	const op = "main.openStorage"

	switch cfg.Backend() {
	case config.BackendMongo:
		st, err := mongo.New(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return st, nil

	case config.BackendPostgres:
		st, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := st.Migrate(ctx); err != nil {
			_ = st.Close(context.Background())
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return st, nil

	case config.BackendMemory:
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("%s: unsupported database url scheme", op)
	}
}

// openBlocklist: Redis, если задан REDIS_URL, иначе blocklist в памяти процесса.
func openBlocklist(ctx context.Context, cfg config.Config) (blocklist.Blocklist, error) {
	if cfg.Redis.URL == "" {
		return blocklist.NewMemory(), nil
	}

	bl, err := blocklist.NewRedis(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
	if err != nil {
		return nil, fmt.Errorf("main.openBlocklist: %w", err)
	}

	return bl, nil
}

// closeDeps закрывает хранилище и blocklist; ошибки только логируются.
// Вызывается и при штатной остановке, и перед os.Exit, который пропускает defer.
func closeDeps(log *slog.Logger, store storage.Storage, bl blocklist.Blocklist) {
	if bl != nil {
		if err := bl.Close(); err != nil {
			log.Warn("blocklist_close_failed", slog.String("err", err.Error()))
		}
	}

	if store != nil {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("storage_close_failed", slog.String("err", err.Error()))
		}
	}
}

// purger - blocklist, который надо чистить вручную (in-memory).
type purger interface {
	Purge(now time.Time) int
}

// startBlocklistJanitor периодически удаляет записи об истёкших токенах.
// Для Redis не нужен: ключи живут с TTL.
func startBlocklistJanitor(ctx context.Context, bl blocklist.Blocklist, log *slog.Logger, period time.Duration) {
	p, ok := bl.(purger)
	if !ok || period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := p.Purge(time.Now()); n > 0 {
					log.Debug("blocklist_purged", slog.Int("removed", n))
				}
			}
		}
	}()
}
