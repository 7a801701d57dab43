package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// SortedSetEntry is one (key, score, member) insertion for bulk adds.
type SortedSetEntry struct {
	Key    string
	Score  float64
	Member string
}

// SortedSetRepository 有序索引存储（redis zset）
// Bulk variants are single pipelined round trips; the store offers no
// cross-key transaction, so callers must not treat them as one.
type SortedSetRepository interface {
	// RangeByScore returns members with min <= score <= max in score order.
	// Bounds follow redis syntax ("-inf", "+inf", "123").
	RangeByScore(ctx context.Context, key, min, max string) ([]string, error)
	// Range returns members by rank, both bounds inclusive, -1 meaning last.
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	RangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error)
	Add(ctx context.Context, key string, score float64, member string) error
	// AddAll adds the same member at the same score to every key.
	AddAll(ctx context.Context, keys []string, score float64, member string) error
	AddBulk(ctx context.Context, entries []SortedSetEntry) error
	Remove(ctx context.Context, key, member string) error
	// RemoveBulk removes one member from every key.
	RemoveBulk(ctx context.Context, keys []string, member string) error
	RemoveRangeByScore(ctx context.Context, keys []string, min, max string) error
	// Score returns the member's score and whether it is present.
	Score(ctx context.Context, key, member string) (float64, bool, error)
	Card(ctx context.Context, key string) (int64, error)
}

type sortedSetRepository struct {
	rdb *redis.Client
}

func NewSortedSetRepository(rdb *redis.Client) SortedSetRepository {
	return &sortedSetRepository{rdb: rdb}
}

func (r *sortedSetRepository) RangeByScore(ctx context.Context, key, min, max string) ([]string, error) {
	return r.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: min, Max: max}).Result()
}

func (r *sortedSetRepository) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.rdb.ZRange(ctx, key, start, stop).Result()
}

func (r *sortedSetRepository) RangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error) {
	return r.rdb.ZRangeWithScores(ctx, key, start, stop).Result()
}

func (r *sortedSetRepository) Add(ctx context.Context, key string, score float64, member string) error {
	return r.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

func (r *sortedSetRepository) AddAll(ctx context.Context, keys []string, score float64, member string) error {
	pipe := r.rdb.Pipeline()
	for _, key := range keys {
		pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *sortedSetRepository) AddBulk(ctx context.Context, entries []SortedSetEntry) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := r.rdb.Pipeline()
	for _, e := range entries {
		pipe.ZAdd(ctx, e.Key, redis.Z{Score: e.Score, Member: e.Member})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *sortedSetRepository) Remove(ctx context.Context, key, member string) error {
	return r.rdb.ZRem(ctx, key, member).Err()
}

func (r *sortedSetRepository) RemoveBulk(ctx context.Context, keys []string, member string) error {
	pipe := r.rdb.Pipeline()
	for _, key := range keys {
		pipe.ZRem(ctx, key, member)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *sortedSetRepository) RemoveRangeByScore(ctx context.Context, keys []string, min, max string) error {
	pipe := r.rdb.Pipeline()
	for _, key := range keys {
		pipe.ZRemRangeByScore(ctx, key, min, max)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *sortedSetRepository) Score(ctx context.Context, key, member string) (float64, bool, error) {
	score, err := r.rdb.ZScore(ctx, key, member).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (r *sortedSetRepository) Card(ctx context.Context, key string) (int64, error) {
	return r.rdb.ZCard(ctx, key).Result()
}
