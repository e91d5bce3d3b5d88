package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost/http/middleware"
)

func TestAdmission(t *testing.T) {
	// Arrange
	const limit = 100
	counter := middleware.NewCounterMap()

	var entered sync.WaitGroup
	release := make(chan struct{})
	var served int
	var mu sync.Mutex
	h := middleware.Admission(counter, limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		mu.Unlock()

		if r.URL.Query().Get("block") != "" {
			entered.Done()
			<-release
		}

		w.Write([]byte("ok"))
	}))

	url := "/busy?block=1"
	entered.Add(limit)
	var done sync.WaitGroup
	for i := 0; i < limit; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, url, nil))
		}()
	}
	entered.Wait()

	// Act
	turnedAway := httptest.NewRecorder()
	h.ServeHTTP(turnedAway, httptest.NewRequest(http.MethodGet, url, nil))

	other := httptest.NewRecorder()
	h.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/busy?block=", nil))

	// Assert
	require.Equal(t, http.StatusTooManyRequests, turnedAway.Code)
	require.Equal(t, middleware.TooManyRequests, turnedAway.Body.String())
	require.Equal(t, "text/plain; charset=utf-8", turnedAway.Header().Get("Content-Type"))
	require.Equal(t, "ok", other.Body.String())

	mu.Lock()
	require.Equal(t, limit+1, served)
	mu.Unlock()

	// Act
	close(release)
	done.Wait()

	// Assert
	require.Zero(t, counter.Count(xxhash.Sum64String(url)))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/busy", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdmissionReleasesOnPanic(t *testing.T) {
	// Arrange
	counter := middleware.NewCounterMap()
	h := middleware.Admission(counter, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	// Act
	require.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/p", nil))
	})

	// Assert
	require.Zero(t, counter.Count(xxhash.Sum64String("/p")))
}

type failingCounter struct{}

func (failingCounter) Acquire(context.Context, uint64, int) (bool, error) {
	return false, errors.New("down")
}

func (failingCounter) Release(context.Context, uint64) error { return nil }

func TestAdmissionCounterFails(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	h := middleware.Admission(failingCounter{}, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("served"))
	}))

	// Act
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, "served", w.Body.String())
}

func TestCounterMap(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := middleware.NewCounterMap()

	// Act + Assert
	ok, err := c.Acquire(ctx, 1, 2)
	require.Nil(t, err)
	require.True(t, ok)

	ok, _ = c.Acquire(ctx, 1, 2)
	require.True(t, ok)

	ok, _ = c.Acquire(ctx, 1, 2)
	require.False(t, ok)
	require.Equal(t, 2, c.Count(1))

	require.Nil(t, c.Release(ctx, 1))
	require.Nil(t, c.Release(ctx, 1))
	require.Nil(t, c.Release(ctx, 1))
	require.Zero(t, c.Count(1))
}

func TestCounterRedis(t *testing.T) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		t.Skip("REDIS_URL not set")
	}

	// Arrange
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	t.Cleanup(func() { client.Close() })

	c := middleware.NewCounterRedis(client)
	key := xxhash.Sum64String(t.Name())

	// Act + Assert
	ok, err := c.Acquire(ctx, key, 1)
	require.Nil(t, err)
	require.True(t, ok)

	ok, err = c.Acquire(ctx, key, 1)
	require.Nil(t, err)
	require.False(t, ok)

	require.Nil(t, c.Release(ctx, key))

	ok, err = c.Acquire(ctx, key, 1)
	require.Nil(t, err)
	require.True(t, ok)
	require.Nil(t, c.Release(ctx, key))
}
