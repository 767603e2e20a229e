package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"userorg-backend/internal/models"
)

// ErrMiss is returned when no cached value exists for the key.
var ErrMiss = errors.New("cache miss")

const (
	orgListTTL = 30 * time.Second
	callBudget = 2 * time.Second
)

type Client interface {
	GetOrgList(userID string) ([]models.Organisation, error)
	SetOrgList(userID string, orgs []models.Organisation) error
	InvalidateOrgList(userID string) error
	Close() error
}

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisClient(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb}, nil
}

func orgListKey(userID string) string {
	return "userorg:orgs:" + userID
}

func (c *RedisCache) GetOrgList(userID string) ([]models.Organisation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callBudget)
	defer cancel()

	raw, err := c.rdb.Get(ctx, orgListKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var orgs []models.Organisation
	if err := json.Unmarshal(raw, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (c *RedisCache) SetOrgList(userID string, orgs []models.Organisation) error {
	ctx, cancel := context.WithTimeout(context.Background(), callBudget)
	defer cancel()

	raw, err := json.Marshal(orgs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, orgListKey(userID), raw, orgListTTL).Err()
}

func (c *RedisCache) InvalidateOrgList(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), callBudget)
	defer cancel()

	return c.rdb.Del(ctx, orgListKey(userID)).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
