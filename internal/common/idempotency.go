package common

import (
	"context"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/anisjkb/deed/internal/obs"
)

// IdempotencyHeader names the request header carrying the client's submission key.
const IdempotencyHeader = "Idempotency-Key"

// Idem rejects replayed lead submissions that carry the same Idempotency-Key.
// A key is only kept once the submission went through: a 4xx or 5xx answer releases it so the
// visitor can fix the form and resend with the same key.
type Idem struct {
	R   redis.Cmdable
	TTL time.Duration
}

func hashKey(path, key string) string {
	return "idem:" + Sha256Hex(path+"|"+key)
}

// Middleware enforces idempotency for write endpoints. Requests without the header, or a nil client, pass through.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ttl := i.TTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		key := hashKey(r.URL.Path, header)
		claimed, err := i.R.SetNX(r.Context(), key, "pending", ttl).Result()
		if err != nil {
			JSONError(w, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "Please try again shortly.", nil)
			return
		}
		if !claimed {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "This submission was already received.", nil)
			return
		}

		recorder := obs.NewStatusRecorder(w)
		completed := false
		defer func() {
			// the request context may already be cancelled here
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if !completed || recorder.Status() >= http.StatusBadRequest {
				_ = i.R.Del(ctx, key).Err()
				return
			}
			_ = i.R.Set(ctx, key, "done", ttl).Err()
		}()
		next.ServeHTTP(recorder, r)
		completed = true
	})
}
