package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var _ domain.RankingRepository = (*CachedRankingRepository)(nil)

const (
	rankingGenerationKey = "ranking:gen"
	rankingTTL           = 5 * time.Minute
)

// CachedRankingRepository keeps ranking pages in redis. Pages are keyed by a
// generation counter, so Invalidate only has to bump the counter; stale pages
// age out through their TTL.
type CachedRankingRepository struct {
	next   domain.RankingRepository
	cache  *redis.Client
	logger *zap.Logger
}

func NewCachedRankingRepository(next domain.RankingRepository, cache *redis.Client, logger *zap.Logger) *CachedRankingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRankingRepository{
		next:   next,
		cache:  cache,
		logger: logger.Named("ranking_cache"),
	}
}

func (r *CachedRankingRepository) generation(ctx context.Context) (int64, bool) {
	gen, err := r.cache.Get(ctx, rankingGenerationKey).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		r.logger.Warn("redis read error", zap.Error(err))
		return 0, false
	}
}

func (r *CachedRankingRepository) Invalidate(ctx context.Context) {
	if err := r.cache.Incr(ctx, rankingGenerationKey).Err(); err != nil {
		r.logger.Warn("failed to invalidate ranking", zap.Error(err))
	}
}

func (r *CachedRankingRepository) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	gen, ok := r.generation(ctx)
	if !ok {
		return r.next.List(ctx, limit)
	}

	key := fmt.Sprintf("ranking:%d:list:%d", gen, limit)
	var entries []domain.RankingEntry
	if r.load(ctx, key, &entries) {
		return entries, nil
	}

	entries, err := r.next.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, entries)
	return entries, nil
}

func (r *CachedRankingRepository) GetByUserID(ctx context.Context, userID string) (*domain.RankingEntry, error) {
	gen, ok := r.generation(ctx)
	if !ok {
		return r.next.GetByUserID(ctx, userID)
	}

	key := fmt.Sprintf("ranking:%d:user:%s", gen, userID)
	var entry domain.RankingEntry
	if r.load(ctx, key, &entry) {
		return &entry, nil
	}

	found, err := r.next.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, found)
	return found, nil
}

func (r *CachedRankingRepository) load(ctx context.Context, key string, out any) bool {
	val, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis read error", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(val, out); err != nil {
		r.logger.Warn("corrupted cache entry, cleaning up key", zap.String("key", key))
		r.cache.Del(ctx, key)
		return false
	}
	return true
}

func (r *CachedRankingRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, rankingTTL).Err(); err != nil {
		r.logger.Warn("redis set error", zap.String("key", key), zap.Error(err))
	}
}
