package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

const maxTrackedClients = 10000

type window struct {
	count int
	until time.Time
}

// fixedWindow counts requests per key in windows of length per.
type fixedWindow struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	now     func() time.Time
	clients map[string]*window
}

func newFixedWindow(limit int, per time.Duration) *fixedWindow {
	return &fixedWindow{limit: limit, per: per, now: time.Now, clients: make(map[string]*window)}
}

// allow records a request for key. When the window is exhausted it reports
// how long until the next one opens.
func (f *fixedWindow) allow(key string) (bool, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if len(f.clients) >= maxTrackedClients {
		for k, w := range f.clients {
			if now.After(w.until) {
				delete(f.clients, k)
			}
		}
	}
	w, ok := f.clients[key]
	if !ok || now.After(w.until) {
		w = &window{until: now.Add(f.per)}
		f.clients[key] = w
	}
	if w.count >= f.limit {
		return false, w.until.Sub(now)
	}
	w.count++
	return true, 0
}

// RateLimit allows limit requests per window for each client IP; limit <= 0
// disables it. Rejections go through onLimit after Retry-After is set.
func RateLimit(limit int, per time.Duration, onLimit func(w http.ResponseWriter, r *http.Request, status int)) func(http.Handler) http.Handler {
	return rateLimit(newFixedWindow(limit, per), onLimit)
}

func rateLimit(f *fixedWindow, onLimit func(w http.ResponseWriter, r *http.Request, status int)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if f.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := f.allow(ClientIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry/time.Second)+1))
				if onLimit == nil {
					w.WriteHeader(http.StatusTooManyRequests)
					return
				}
				onLimit(w, r, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
