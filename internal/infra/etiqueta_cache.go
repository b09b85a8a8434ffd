package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	claveGeneracion     = "etiqueta:generacion"
	defaultEtiquetaTTL  = time.Hour
	etiquetaCachePrefix = "etiqueta:"
)

// EtiquetaCache stores flattened label projections in Redis.
//
// Keys embed a generation counter: any recipe or ingredient mutation bumps the
// counter (Invalidar), so entries computed against an older graph are simply
// never read again and expire by TTL. A nil *EtiquetaCache (or nil client) is
// a valid no-op cache.
type EtiquetaCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEtiquetaCache(rdb *redis.Client, ttl time.Duration) *EtiquetaCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultEtiquetaTTL
	}
	return &EtiquetaCache{rdb: rdb, ttl: ttl}
}

func (c *EtiquetaCache) enabled() bool { return c != nil && c.rdb != nil }

// Generacion returns the current graph generation (0 when unset). ok is false
// when the cache is disabled or the generation cannot be read; callers must
// then bypass the cache, since an unknown generation may be stale.
func (c *EtiquetaCache) Generacion(ctx context.Context) (gen int64, ok bool) {
	if !c.enabled() {
		return 0, false
	}
	gen, err := c.rdb.Get(ctx, claveGeneracion).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		log.Warn().Err(err).Msg("etiqueta_cache: generacion no disponible")
		return 0, false
	}
	return gen, true
}

// Invalidar bumps the generation so every cached projection becomes unreachable.
func (c *EtiquetaCache) Invalidar(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Incr(ctx, claveGeneracion).Err()
}

// Get decodes a cached projection into dest. Returns false on miss or error.
func (c *EtiquetaCache) Get(ctx context.Context, loteID uuid.UUID, gen int64, dest any) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, clave(loteID, gen)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores a projection. Best effort: failures are logged, never returned.
func (c *EtiquetaCache) Set(ctx context.Context, loteID uuid.UUID, gen int64, v any) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, clave(loteID, gen), b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("lote_id", loteID.String()).Msg("etiqueta_cache: set failed")
	}
}

func clave(loteID uuid.UUID, gen int64) string {
	return fmt.Sprintf("%s%s:%d", etiquetaCachePrefix, loteID, gen)
}
