package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-redis/redis/v8"
)

const (
	// DefaultAdmissionLimit is how many requests for one URL are served at once.
	DefaultAdmissionLimit = 100

	// TooManyRequests is the body of a response turned away by Admission.
	TooManyRequests = "Error: Too many requests"

	admissionPrefix = "signpost:admission:"
)

// A Counter counts the requests in flight per key.
type Counter interface {
	// Acquire counts one more request for key unless limit are already in flight,
	// reporting whether it did.
	Acquire(ctx context.Context, key uint64, limit int) (bool, error)

	// Release counts one fewer request for key.
	Release(ctx context.Context, key uint64) error
}

// Admission turns away requests for a URL already being served limit times over.
//
// Requests are keyed by the xxhash of their exact request URI, query included.
// If counter fails, the request is served anyway.
func Admission(counter Counter, limit int) Adapter {
	if counter == nil {
		return NoopAdapter
	}

	if limit <= 0 {
		limit = DefaultAdmissionLimit
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := xxhash.Sum64String(r.RequestURI)
			if r.RequestURI == "" {
				key = xxhash.Sum64String(r.URL.RequestURI())
			}

			ok, err := counter.Acquire(r.Context(), key, limit)
			if err != nil {
				h.ServeHTTP(w, r)
				return
			}

			if !ok {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(TooManyRequests))
				return
			}

			// NOTE: released on a fresh context; r's may already be canceled
			defer counter.Release(context.Background(), key)
			h.ServeHTTP(w, r)
		})
	}
}

// A CounterMap counts requests in memory, for a single process.
type CounterMap struct {
	mu     sync.Mutex
	counts map[uint64]int
}

// NewCounterMap constructs an empty CounterMap.
func NewCounterMap() *CounterMap {
	return &CounterMap{counts: make(map[uint64]int)}
}

func (c *CounterMap) Acquire(_ context.Context, key uint64, limit int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counts[key] >= limit {
		return false, nil
	}

	c.counts[key]++
	return true, nil
}

func (c *CounterMap) Release(_ context.Context, key uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.counts[key] <= 1 {
		delete(c.counts, key)
		return nil
	}

	c.counts[key]--
	return nil
}

// Count reports the requests in flight for key.
func (c *CounterMap) Count(key uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

// A CounterRedis counts requests in Redis, shared by every process using the same server.
//
// Counts expire after TTL, so a process exiting mid-request cannot hold a URL hostage.
type CounterRedis struct {
	client redis.UniversalClient
	TTL    time.Duration
}

// NewCounterRedis constructs a CounterRedis over client.
func NewCounterRedis(client redis.UniversalClient) *CounterRedis {
	return &CounterRedis{client: client, TTL: time.Minute}
}

func (c *CounterRedis) Acquire(ctx context.Context, key uint64, limit int) (bool, error) {
	k := redisKey(key)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, c.TTL)
		return nil
	})
	if err != nil {
		return false, err
	}

	if incr.Val() > int64(limit) {
		return false, c.client.Decr(ctx, k).Err()
	}

	return true, nil
}

func (c *CounterRedis) Release(ctx context.Context, key uint64) error {
	return c.client.Decr(ctx, redisKey(key)).Err()
}

func redisKey(key uint64) string {
	return admissionPrefix + strconv.FormatUint(key, 16)
}
