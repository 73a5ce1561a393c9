package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// throttle admits inspection requests. A refused request gets the wait
// before a retry would be admitted.
type throttle interface {
	Admit() (ok bool, retryAfter time.Duration)
}

type tokenBucket struct {
	limiter *rate.Limiter
	now     func() time.Time
}

func newTokenBucket(ratePerSecond float64, burst int) *tokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &tokenBucket{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		now:     time.Now,
	}
}

// Admit takes a token when one is available now. Otherwise the reservation
// is returned to the bucket and the caller learns how long to wait.
func (b *tokenBucket) Admit() (bool, time.Duration) {
	now := b.now()
	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

func (rt *inspectionRouter) throttled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rt.throttle.Admit()
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		seconds := max(int(math.Ceil(wait.Seconds())), 1)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeError(w, http.StatusTooManyRequests, "Too many requests",
			fmt.Sprintf("inspection of the %s environment is rate limited, retry in %ds", rt.env(), seconds),
			"Raise server.rate_limit in the config file or pass --rate-limit-rps")
	})
}
