package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var _ inventory.AggregateCache = (*RedisAggregateCache)(nil)

// RedisAggregateCache guarda agregados serializados en JSON con TTL.
type RedisAggregateCache struct {
	client *redis.Client
}

func NewRedisAggregateCache(addr, password string, db int) *RedisAggregateCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisAggregateCache{client: client}
}

func (c *RedisAggregateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisAggregateCache) Close() error {
	return c.client.Close()
}

func (c *RedisAggregateCache) Get(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, bool, error) {
	val, err := c.client.Get(ctx, aggregateKey(productID, unitID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var agg entity.AggregateQuantity
	if err := json.Unmarshal(val, &agg); err != nil {
		return nil, false, err
	}
	return &agg, true, nil
}

func (c *RedisAggregateCache) Set(ctx context.Context, agg *entity.AggregateQuantity, ttl time.Duration) error {
	if agg == nil {
		return nil
	}
	payload, err := json.Marshal(agg)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, aggregateKey(agg.ProductID, agg.UnitID), payload, ttl).Err()
}

func (c *RedisAggregateCache) Delete(ctx context.Context, productID, unitID string) error {
	return c.client.Del(ctx, aggregateKey(productID, unitID)).Err()
}
