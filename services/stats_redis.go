package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"elsahm-admin/models"

	"github.com/redis/go-redis/v9"
)

const statsKey = "elsahm:dashboard:stats"

// RedisStatsStore mirrors the dashboard snapshot in redis so a restart
// does not recompute it.
type RedisStatsStore struct {
	rdb *redis.Client
}

func NewRedisStatsStore(rdb *redis.Client) *RedisStatsStore {
	return &RedisStatsStore{rdb: rdb}
}

// Load returns nil without error when nothing is mirrored.
func (s *RedisStatsStore) Load(ctx context.Context) (*models.DashboardStats, error) {
	raw, err := s.rdb.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats models.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *RedisStatsStore) Save(ctx context.Context, stats *models.DashboardStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, statsKey, raw, ttl).Err()
}

func (s *RedisStatsStore) Delete(ctx context.Context) error {
	return s.rdb.Del(ctx, statsKey).Err()
}
