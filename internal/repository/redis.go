package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parklot/internal/config"
	"parklot/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores reservation and catalog views as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func reservationKey(id int64) string {
	return fmt.Sprintf("reservation:%d", id)
}

const redisFloorsKey = "catalog:floors"

func (c *RedisCache) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	if c.client == nil {
		return nil, errors.New("redis client is nil")
	}
	val, err := c.client.Get(ctx, reservationKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation from redis: %w", err)
	}

	var reservation models.Reservation
	if err := json.Unmarshal([]byte(val), &reservation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reservation: %w", err)
	}
	return &reservation, nil
}

func (c *RedisCache) SetReservation(ctx context.Context, reservation *models.Reservation) error {
	if c.client == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(reservation)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation: %w", err)
	}
	if err := c.client.Set(ctx, reservationKey(reservation.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set reservation in redis: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateReservation(ctx context.Context, id int64) error {
	if c.client == nil {
		return errors.New("redis client is nil")
	}
	if err := c.client.Del(ctx, reservationKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete reservation from redis: %w", err)
	}
	return nil
}

func (c *RedisCache) GetFloors(ctx context.Context) ([]*models.Floor, error) {
	if c.client == nil {
		return nil, errors.New("redis client is nil")
	}
	val, err := c.client.Get(ctx, redisFloorsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get floors from redis: %w", err)
	}

	var floors []*models.Floor
	if err := json.Unmarshal([]byte(val), &floors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal floors: %w", err)
	}
	return floors, nil
}

func (c *RedisCache) SetFloors(ctx context.Context, floors []*models.Floor) error {
	if c.client == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(floors)
	if err != nil {
		return fmt.Errorf("failed to marshal floors: %w", err)
	}
	if err := c.client.Set(ctx, redisFloorsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set floors in redis: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateFloors(ctx context.Context) error {
	if c.client == nil {
		return errors.New("redis client is nil")
	}
	if err := c.client.Del(ctx, redisFloorsKey).Err(); err != nil {
		return fmt.Errorf("failed to delete floors from redis: %w", err)
	}
	return nil
}
