// middleware/rate_limiter.go
package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		blockedIPs:     make(map[string]time.Time),
		mu:             &sync.RWMutex{},
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
	}

	// Strict limits on authentication and OTP endpoints to slow down
	// brute force and OTP pumping
	limiter.endpointLimits["/api/auth/login"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}
	limiter.endpointLimits["/api/auth/signup"] = endpointLimit{
		limit: rate.Every(500 * time.Millisecond),
		burst: 5,
	}
	limiter.endpointLimits["/api/sms/send-otp"] = endpointLimit{
		limit: rate.Every(5 * time.Second),
		burst: 3,
	}
	limiter.endpointLimits["/api/whatsapp/send-otp"] = endpointLimit{
		limit: rate.Every(5 * time.Second),
		burst: 3,
	}
	limiter.endpointLimits["/api/notifications/smart-otp"] = endpointLimit{
		limit: rate.Every(5 * time.Second),
		burst: 3,
	}

	// More lenient limits for the public feed
	limiter.endpointLimits["/api/videos/feed"] = endpointLimit{
		limit: rate.Every(50 * time.Millisecond),
		burst: 40,
	}

	go limiter.cleanupLoop()
	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	for {
		time.Sleep(10 * time.Minute)
		rl.mu.Lock()
		now := time.Now()
		for ip, until := range rl.blockedIPs {
			if now.After(until) {
				delete(rl.blockedIPs, ip)
			}
		}
		// Drop idle per-IP limiters so the map does not grow unbounded
		if len(rl.ips) > 10000 {
			rl.ips = make(map[string]*rate.Limiter)
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) limiterFor(ip, path string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := ip
	limit := rl.defaultLimit
	burst := rl.defaultBurst
	for prefix, el := range rl.endpointLimits {
		if strings.HasPrefix(path, prefix) {
			key = ip + "|" + prefix
			limit = el.limit
			burst = el.burst
			break
		}
	}

	limiter, exists := rl.ips[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		rl.ips[key] = limiter
	}
	return limiter
}

// RateLimit enforces per-IP token buckets with per-endpoint overrides.
// IPs that keep hammering a limited endpoint are blocked for a while.
func (rl *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			rl.mu.RLock()
			blockedUntil, blocked := rl.blockedIPs[ip]
			rl.mu.RUnlock()

			if blocked {
				if time.Now().Before(blockedUntil) {
					return echo.NewHTTPError(429, "Too many requests, try again later")
				}
				rl.mu.Lock()
				delete(rl.blockedIPs, ip)
				rl.mu.Unlock()
			}

			limiter := rl.limiterFor(ip, c.Request().URL.Path)
			if !limiter.Allow() {
				rl.mu.Lock()
				rl.blockedIPs[ip] = time.Now().Add(rl.blockDuration)
				rl.mu.Unlock()
				return echo.NewHTTPError(429, "Too many requests, try again later")
			}

			return next(c)
		}
	}
}
