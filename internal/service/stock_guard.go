package service

import (
	"context"
	"time"

	"go-stock-ledger/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Locker is a distributed mutex keyed by string. cache.RedisClient implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// StockGuard selects how movement creation protects the stock check from
// concurrent writers. See config.Guard* for the modes.
type StockGuard struct {
	Mode       string
	Locker     Locker
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

func NewStockGuard(mode string, locker Locker, ttl time.Duration) StockGuard {
	return StockGuard{
		Mode:       mode,
		Locker:     locker,
		TTL:        ttl,
		Retries:    3,
		RetryDelay: 100 * time.Millisecond,
	}
}

func (g StockGuard) inTransaction() bool {
	return g.Mode != config.GuardNone
}

func (g StockGuard) lockRows() bool {
	return g.Mode == config.GuardRow
}

func lockKey(id uuid.UUID) string {
	return "lock:stock:" + id.String()
}

// lockProducts takes one lock per product in the given (sorted) order. It is
// a no-op outside redis mode. The returned func releases everything taken.
func (g StockGuard) lockProducts(ctx context.Context, ids []uuid.UUID) (func(), error) {
	if g.Mode != config.GuardRedis || g.Locker == nil {
		return func() {}, nil
	}

	token := uuid.NewString()
	held := make([]string, 0, len(ids))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := g.Locker.ReleaseLock(context.WithoutCancel(ctx), held[i], token); err != nil {
				log.Warn().Err(err).Str("key", held[i]).Msg("failed to release stock lock")
			}
		}
	}

	for _, id := range ids {
		key := lockKey(id)
		if !g.acquire(ctx, key, token) {
			release()
			return nil, ErrStockBusy
		}
		held = append(held, key)
	}
	return release, nil
}

func (g StockGuard) acquire(ctx context.Context, key, token string) bool {
	attempts := g.Retries
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		ok, err := g.Locker.AcquireLock(ctx, key, token, g.TTL)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to acquire stock lock")
		}
		if ok {
			return true
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(g.RetryDelay):
			}
		}
	}
	return false
}
