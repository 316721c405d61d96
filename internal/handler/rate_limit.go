package handler

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/srsports/backend/internal/logging"
)

const (
	rateWindow       = time.Minute
	defaultRateLimit = 30
	sweepInterval    = 5 * time.Minute
)

// RateLimiter caps write requests per client and route over a sliding
// one-minute window. Sign-in, sign-up and the contact form each get their
// own budget.
type RateLimiter struct {
	limit          int
	trustedProxies int
	now            func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter allows limit requests per minute. trustedProxies is the
// number of reverse proxies in front of the server; with 0 the
// X-Forwarded-For header is ignored.
func NewRateLimiter(limit, trustedProxies int) *RateLimiter {
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if trustedProxies < 0 {
		trustedProxies = 0
	}
	rl := &RateLimiter{
		limit:          limit,
		trustedProxies: trustedProxies,
		now:            time.Now,
		hits:           make(map[string][]time.Time),
		done:           make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Close stops the background sweep. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweep() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-t.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-rateWindow)
			for key, ts := range rl.hits {
				if ts = dropBefore(ts, cutoff); len(ts) == 0 {
					delete(rl.hits, key)
				} else {
					rl.hits[key] = ts
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow records a hit for key. When the budget is spent it returns false and
// how long until the oldest hit leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ts := dropBefore(rl.hits[key], now.Add(-rateWindow))
	if len(ts) >= rl.limit {
		rl.hits[key] = ts
		return false, ts[0].Add(rateWindow).Sub(now)
	}
	rl.hits[key] = append(ts, now)
	return true, 0
}

// dropBefore は cutoff 以前のタイムスタンプを捨てる（ts は古い順）
func dropBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r, rl.trustedProxies)
		route := r.Pattern
		if route == "" {
			route = r.Method + " " + r.URL.Path
		}

		ok, wait := rl.allow(client + "|" + route)
		if !ok {
			logging.Info("rate limited", "client", client, "route", route, "request_id", RequestIDFromContext(r.Context()))
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(wait)))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retrySeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return max(secs, 1)
}

// clientAddr はクライアントのアドレスを返す。
// X-Forwarded-For は各プロキシが右端に追記するので、右から trustedProxies 番目だけを信用する
func clientAddr(r *http.Request, trustedProxies int) string {
	if trustedProxies > 0 {
		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			hops := strings.Split(strings.Join(xff, ","), ",")
			if i := len(hops) - trustedProxies; i >= 0 {
				if ip := net.ParseIP(strings.TrimSpace(hops[i])); ip != nil {
					return ip.String()
				}
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
