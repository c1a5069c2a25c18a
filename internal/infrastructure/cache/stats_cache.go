// Package cache implementa la caché Redis de agregados estadísticos. Es
// estrictamente opcional: cualquier error de Redis se trata como cache miss y
// la consulta sigue contra PostgreSQL.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Almacen-api/internal/application/stats"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

var _ stats.AggregateCache = (*StatsCache)(nil)

// StatsCache guarda buckets de agregación serializados como JSON con TTL corto.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewStatsCache construye la caché sobre un cliente Redis ya conectado.
func NewStatsCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &StatsCache{client: client, ttl: ttl, log: log}
}

func (c *StatsCache) Get(ctx context.Context, key string) ([]repository.AggregateBucket, bool) {
	raw, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		return nil, false
	}
	var buckets []repository.AggregateBucket
	if err := json.Unmarshal(raw, &buckets); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("caché de stats corrupta, se ignora")
		return nil, false
	}
	return buckets, true
}

func (c *StatsCache) Set(ctx context.Context, key string, buckets []repository.AggregateBucket) {
	raw, err := json.Marshal(buckets)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.fullKey(key), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("no se pudo escribir caché de stats")
	}
}

func (c *StatsCache) fullKey(key string) string {
	return "almacen:stats:" + key
}
