package graph

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

const DefaultCacheTTL = 10 * time.Minute

// CachedStore is a read-through cache in front of another Store. Cached answers are
// keyed by a generation counter that every successful write bumps, so a mutation
// invalidates all earlier answers at once. Redis failures degrade to uncached reads.
type CachedStore struct {
	inner  Store
	rdb    *goredis.Client
	log    *logger.Logger
	prefix string
	ttl    time.Duration
}

func NewCachedStore(inner Store, rdb *goredis.Client, log *logger.Logger, prefix string, ttl time.Duration) *CachedStore {
	if log == nil {
		log = logger.NewNop()
	}
	if prefix == "" {
		prefix = "moviegraph"
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{inner: inner, rdb: rdb, log: log.With("store", "CachedMovieGraph"), prefix: prefix, ttl: ttl}
}

func (c *CachedStore) genKey() string { return c.prefix + ":gen" }

func (c *CachedStore) generation(ctx context.Context) (string, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *CachedStore) bump(ctx context.Context) {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		c.log.Warn("cache invalidation failed", "error", err)
	}
}

func cacheKey(prefix, gen, op string, args any) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s:q:%s:%s:%s", prefix, gen, op, hex.EncodeToString(sum[:])), nil
}

func cached[T any](ctx context.Context, c *CachedStore, op string, args any, load func() (T, error)) (T, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn("cache unavailable", "op", op, "error", err)
		return load()
	}
	key, err := cacheKey(c.prefix, gen, op, args)
	if err != nil {
		return load()
	}
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		c.log.Warn("cache entry unreadable", "op", op, "key", key)
	} else if !errors.Is(err, goredis.Nil) {
		c.log.Warn("cache read failed", "op", op, "error", err)
	}

	out, err := load()
	if err != nil {
		return out, err
	}
	if raw, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("cache write failed", "op", op, "error", err)
		}
	}
	return out, nil
}

func (c *CachedStore) EnsureSchema(ctx context.Context) error { return c.inner.EnsureSchema(ctx) }

func (c *CachedStore) MergeBatch(ctx context.Context, batch *domain.Batch) (domain.MergeStats, error) {
	stats, err := c.inner.MergeBatch(ctx, batch)
	if err == nil && !batch.Empty() {
		c.bump(ctx)
	}
	return stats, err
}

func (c *CachedStore) LinkActor(ctx context.Context, link domain.ActingLink) (domain.LinkResult, error) {
	res, err := c.inner.LinkActor(ctx, link)
	if err == nil && res.Linked {
		c.bump(ctx)
	}
	return res, err
}

func (c *CachedStore) UnlinkActor(ctx context.Context, person string, movieID int64) (domain.UnlinkResult, error) {
	res, err := c.inner.UnlinkActor(ctx, person, movieID)
	if err == nil && res.Removed > 0 {
		c.bump(ctx)
	}
	return res, err
}

// Counts is never cached; ingestion progress reads it.
func (c *CachedStore) Counts(ctx context.Context) (domain.GraphCounts, error) {
	return c.inner.Counts(ctx)
}

func (c *CachedStore) MoviesByDirector(ctx context.Context, name string) ([]domain.MovieSummary, error) {
	return cached(ctx, c, "director", name, func() ([]domain.MovieSummary, error) {
		return c.inner.MoviesByDirector(ctx, name)
	})
}

func (c *CachedStore) MoviesByActors(ctx context.Context, names []string) ([]domain.MovieSummary, error) {
	return cached(ctx, c, "actors", names, func() ([]domain.MovieSummary, error) {
		return c.inner.MoviesByActors(ctx, names)
	})
}

func (c *CachedStore) MoviesByGenreSince(ctx context.Context, genre string, minYear int64) ([]domain.MovieSummary, error) {
	args := map[string]any{"genre": genre, "min_year": minYear}
	return cached(ctx, c, "genre", args, func() ([]domain.MovieSummary, error) {
		return c.inner.MoviesByGenreSince(ctx, genre, minYear)
	})
}

func (c *CachedStore) MoviesByCountry(ctx context.Context, code string) ([]domain.MovieSummary, error) {
	return cached(ctx, c, "country", code, func() ([]domain.MovieSummary, error) {
		return c.inner.MoviesByCountry(ctx, code)
	})
}

func (c *CachedStore) TopGenres(ctx context.Context, limit int) ([]domain.GenreCount, error) {
	return cached(ctx, c, "top_genres", limit, func() ([]domain.GenreCount, error) {
		return c.inner.TopGenres(ctx, limit)
	})
}

func (c *CachedStore) TopCollaborators(ctx context.Context, limit int) ([]domain.Collaboration, error) {
	return cached(ctx, c, "top_collaborators", limit, func() ([]domain.Collaboration, error) {
		return c.inner.TopCollaborators(ctx, limit)
	})
}

func (c *CachedStore) DirectorCameos(ctx context.Context) ([]domain.DirectorCameo, error) {
	return cached(ctx, c, "cameos", nil, func() ([]domain.DirectorCameo, error) {
		return c.inner.DirectorCameos(ctx)
	})
}

func (c *CachedStore) Close(ctx context.Context) error {
	err := c.inner.Close(ctx)
	if cerr := c.rdb.Close(); err == nil {
		err = cerr
	}
	return err
}
