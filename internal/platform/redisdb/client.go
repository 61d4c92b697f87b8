package redisdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
	"github.com/yungbote/moviegraph/internal/pkg/retry"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

// New dials addr and pings it once. The caller owns the returned client.
func New(ctx context.Context, addr string, log *logger.Logger) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("redisdb: logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redisdb: %w: missing address", pkgerrors.ErrInvalidArgument)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	err := retry.Do(ctx, retry.Policy{Attempts: 3, Base: 200 * time.Millisecond, Retryable: retry.IsRetryable}, func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return rdb.Ping(pctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisdb: %w: ping: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	log.Info("redis connected", "addr", addr)
	return rdb, nil
}
