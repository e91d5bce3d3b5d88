package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultVisitorRate  rate.Limit = 5
	DefaultVisitorBurst            = 20

	visitorTTL    = time.Hour
	sweepInterval = time.Minute
)

// A Visitor is the token bucket of one IP address and when it was last drawn from.
type Visitor struct {
	LastSeen time.Time
	Limiter  *rate.Limiter
}

// Visitors keeps a Visitor per IP address, forgetting those not seen for an hour.
type Visitors struct {
	mu        sync.Mutex
	val       map[string]Visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

// NewVisitors allows each visitor limit requests a second, in bursts of up to burst.
// Non-positive values fall back to DefaultVisitorRate and DefaultVisitorBurst.
func NewVisitors(limit rate.Limit, burst int) *Visitors {
	if limit <= 0 {
		limit = DefaultVisitorRate
	}

	if burst <= 0 {
		burst = DefaultVisitorBurst
	}

	return &Visitors{val: make(map[string]Visitor), limit: limit, burst: burst, lastSweep: time.Now()}
}

// Fetch returns the Visitor for ip, marked as seen now.
// Visitors idle past their TTL are swept at most once a minute.
func (vs *Visitors) Fetch(ip string) Visitor {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	now := time.Now().UTC()
	if now.Sub(vs.lastSweep) >= sweepInterval {
		vs.sweep(now)
	}

	v, ok := vs.val[ip]
	if !ok {
		v.Limiter = rate.NewLimiter(vs.limit, vs.burst)
	}

	v.LastSeen = now
	vs.val[ip] = v
	return v
}

func (vs *Visitors) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.val)
}

// sweep forgets visitors last seen more than visitorTTL before now.
// vs.mu must be held.
func (vs *Visitors) sweep(now time.Time) {
	for ip, v := range vs.val {
		if now.Sub(v.LastSeen) > visitorTTL {
			delete(vs.val, ip)
		}
	}

	vs.lastSweep = now
}

// retryAfter is how many whole seconds until the limiter has a token again.
func (vs *Visitors) retryAfter() string {
	return strconv.Itoa(int(math.Ceil(1 / float64(vs.limit))))
}

// RateLimit answers 429 Too Many Requests to visitors, by IP address, out of tokens.
// A nil visitors leaves requests alone.
func RateLimit(visitors *Visitors) Adapter {
	if visitors == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !visitors.Fetch(ClientIP(r)).Limiter.Allow() {
				w.Header().Set("Retry-After", visitors.retryAfter())
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}
