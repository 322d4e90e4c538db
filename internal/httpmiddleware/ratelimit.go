// Package httpmiddleware carries middleware shared by public endpoints.
package httpmiddleware

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window per-IP limit backed by Redis, so the
// limit holds across replicas. A nil client disables limiting.
type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{redis: client, perMinute: perMinute}
}

// Middleware rejects callers over the limit with 429. Redis failures fail
// open: a throttling outage must not block attendance.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.redis == nil || l.perMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := windowKey(clientIP(r))
		count, err := l.redis.Incr(r.Context(), key).Result()
		if err != nil {
			log.Printf("rate limit check failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			_ = l.redis.Expire(r.Context(), key, time.Minute).Err()
		}
		if count > int64(l.perMinute) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate_limited"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return "unknown"
	}
	return host
}

func windowKey(ip string) string {
	return fmt.Sprintf("submit_rate:%s:%d", ip, time.Now().UTC().Unix()/60)
}
