package middleware

import (
	"log"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterMiddleware holds the rate limiters for each actor.
type RateLimiterMiddleware struct {
	limiters map[int64]*rate.Limiter
	mu       sync.Mutex
	// Rate is the number of events per second.
	rate rate.Limit
	// Burst is the burst size.
	burst int
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware.
func NewRateLimiterMiddleware(r rate.Limit, b int) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limiters: make(map[int64]*rate.Limiter),
		rate:     r,
		burst:    b,
	}
}

func (rl *RateLimiterMiddleware) limiter(id int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.limiters[id]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[id] = limiter
	}
	return limiter
}

// Middleware limits each actor separately. It must run after ActorMiddleware.
func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFrom(r.Context())
		if actor == nil {
			log.Printf("RateLimiter: No actor in context - unauthorized")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !rl.limiter(actor.ID).Allow() {
			log.Printf("RateLimiter: Rate limit exceeded for actor %d", actor.ID)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
