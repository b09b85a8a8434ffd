package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"trazabilidad/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// RateLimiter caps requests per client IP in fixed windows. With a Redis
// client the counters are shared by every replica; when Redis fails the
// request is counted in process instead.
func RateLimiter(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	l := &limitador{rdb: rdb, limit: limit, window: window, local: make(map[string]*ventana)}
	return l.handle
}

type ventana struct {
	count int
	fin   time.Time
}

type limitador struct {
	rdb    *redis.Client
	limit  int
	window time.Duration

	mu           sync.Mutex
	local        map[string]*ventana
	proximaPurga time.Time
}

func (l *limitador) handle(c *gin.Context) {
	ip := c.ClientIP()
	now := time.Now()

	n, fin, err := l.contarRedis(c.Request.Context(), ip, now)
	if err != nil {
		if l.rdb != nil {
			log.Debug().Err(err).Msg("rate limiter: redis unavailable, counting locally")
		}
		n, fin = l.contarLocal(ip, now)
	}

	if n > l.limit {
		espera := int(fin.Sub(now).Seconds()) + 1
		c.Header("Retry-After", strconv.Itoa(espera))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
		return
	}
	c.Next()
}

// contarRedis increments the counter of the window containing now.
func (l *limitador) contarRedis(ctx context.Context, ip string, now time.Time) (int, time.Time, error) {
	if l.rdb == nil {
		return 0, time.Time{}, redis.Nil
	}
	idx := now.UnixNano() / int64(l.window)
	fin := time.Unix(0, (idx+1)*int64(l.window))
	key := fmt.Sprintf("ratelimit:%s:%d", ip, idx)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.PExpire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return 0, fin, err
	}
	return int(incr.Val()), fin, nil
}

// contarLocal is the in-process fallback. Expired windows are dropped every
// purgeInterval so IPs that never return do not accumulate.
func (l *limitador) contarLocal(ip string, now time.Time) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.proximaPurga) {
		for k, v := range l.local {
			if now.After(v.fin) {
				delete(l.local, k)
			}
		}
		l.proximaPurga = now.Add(purgeInterval)
	}

	v, ok := l.local[ip]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.local[ip] = v
	}
	v.count++
	return v.count, v.fin
}
