package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ledger-service/pkg/response"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client in Redis and blocks a client for
// blockDuration once it exceeds limit within window. It fails open when
// Redis is unavailable. Mounted after Require it keys by admin id,
// otherwise by client IP.
func RateLimiter(rdb redis.UniversalClient, limit int, window, blockDuration time.Duration, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var clientID string
			if adminID, ok := GetAdminID(ctx); ok {
				clientID = "uid:" + adminID
			} else {
				clientID = "ip:" + clientIP(r)
			}

			key := keyPrefix + ":" + clientID
			blockKey := key + ":blocked"

			blocked, _ := rdb.Get(ctx, blockKey).Result()
			if blocked == "1" {
				ttl, _ := rdb.TTL(ctx, blockKey).Result()
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+ttl.String())
				return
			}

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				rdb.Expire(ctx, key, window)
			}

			if count > int64(limit) {
				rdb.Set(ctx, blockKey, "1", blockDuration)
				w.Header().Set("Retry-After", strconv.Itoa(int(blockDuration.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Blocked for "+blockDuration.String())
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
