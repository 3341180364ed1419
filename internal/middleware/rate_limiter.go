package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sweepEvery = 5 * time.Minute

type window struct {
	count int
	ends  time.Time
}

// fixedWindow counts hits per client IP in fixed windows. Expired windows are
// swept lazily on the request path, so a limiter owns no goroutine.
type fixedWindow struct {
	name   string
	limit  int
	period time.Duration

	mu        sync.Mutex
	clients   map[string]*window
	nextSweep time.Time
}

func newFixedWindow(name string, limit int, period time.Duration) *fixedWindow {
	return &fixedWindow{
		name:    name,
		limit:   limit,
		period:  period,
		clients: make(map[string]*window),
	}
}

// allow registers one hit for ip and reports whether it is within the limit,
// along with the end of the current window.
func (l *fixedWindow) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		l.sweep(now)
		l.nextSweep = now.Add(sweepEvery)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.ends
}

func (l *fixedWindow) sweep(now time.Time) {
	purged := 0
	for ip, w := range l.clients {
		if now.After(w.ends) {
			delete(l.clients, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Str("limiter", l.name).Int("purged", purged).Int("remaining", len(l.clients)).
			Msg("rate limiter swept")
	}
}

func (l *fixedWindow) handler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		ok, ends := l.allow(c.ClientIP(), now)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(ends.Sub(now).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter allows limit login attempts per IP per minute. Share the
// returned handler between every login route so they draw from one budget.
func LoginRateLimiter(limit int) gin.HandlerFunc {
	return newFixedWindow("login", limit, time.Minute).handler("Too many login attempts. Try again in a minute.")
}

// RateLimiter caps requests per IP within a fixed window.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	return newFixedWindow("api", limit, period).handler("Too many requests. Try again shortly.")
}
