package repository

import (
	"context"
	"testing"
	"time"

	"parklot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCacheReservations(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()

	got, err := cache.GetReservation(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)

	r := &models.Reservation{
		ID:            42,
		SlotID:        3,
		HolderID:      "holder-1",
		VehicleNumber: "KA05MH1234",
		StartTime:     time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC),
		Cost:          60,
		Status:        models.StatusActive,
		Version:       1,
	}
	require.NoError(t, cache.SetReservation(ctx, r))

	got, err = cache.GetReservation(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.HolderID, got.HolderID)
	assert.True(t, got.StartTime.Equal(r.StartTime))
	assert.Equal(t, r.Cost, got.Cost)

	require.NoError(t, cache.InvalidateReservation(ctx, 42))
	got, err = cache.GetReservation(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheTTL(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetReservation(ctx, &models.Reservation{ID: 1}))

	mr.FastForward(2 * time.Minute)

	got, err := cache.GetReservation(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheFloors(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()

	floors, err := cache.GetFloors(ctx)
	require.NoError(t, err)
	assert.Nil(t, floors)

	require.NoError(t, cache.SetFloors(ctx, []*models.Floor{{ID: 1, Name: "Ground Floor", FloorNumber: 1}}))

	floors, err = cache.GetFloors(ctx)
	require.NoError(t, err)
	require.Len(t, floors, 1)
	assert.Equal(t, "Ground Floor", floors[0].Name)

	require.NoError(t, cache.InvalidateFloors(ctx))
	floors, err = cache.GetFloors(ctx)
	require.NoError(t, err)
	assert.Nil(t, floors)
}

func TestRedisCacheDownServer(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	mr.Close()

	_, err := cache.GetReservation(context.Background(), 1)
	assert.Error(t, err)
}

func TestRedisCacheNilClient(t *testing.T) {
	cache := NewRedisCache(nil, time.Minute)
	ctx := context.Background()

	_, err := cache.GetReservation(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, cache.SetReservation(ctx, &models.Reservation{ID: 1}))
	_, err = cache.GetFloors(ctx)
	assert.Error(t, err)
}
