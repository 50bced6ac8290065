package httpserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first argument runs outermost.
func Chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				http.Error(w, "internal", 500)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
}

type rateWindow struct {
	count int
	since time.Time
}

type limiter struct {
	mu      sync.Mutex
	perMin  int
	windows map[string]*rateWindow
}

func (l *limiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.since) >= time.Minute {
		l.windows[key] = &rateWindow{count: 1, since: now}
		return true
	}
	w.count++
	return w.count <= l.perMin
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit caps requests per client IP per minute across all routes.
func RateLimit(perMin int) middleware {
	l := &limiter{perMin: perMin, windows: map[string]*rateWindow{}}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				http.Error(w, "rate limit", 429)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicRateLimit applies tighter per-route limits to abuse-prone endpoints.
func PublicRateLimit(perRoute map[string]int) middleware {
	limiters := make(map[string]*limiter, len(perRoute))
	for path, n := range perRoute {
		limiters[path] = &limiter{perMin: n, windows: map[string]*rateWindow{}}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l, ok := limiters[r.URL.Path]; ok && !l.allow(clientIP(r)) {
				http.Error(w, "rate limit", 429)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
