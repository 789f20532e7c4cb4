package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultMCPMaxBodyBytes int64 = 1 << 20 // 1MiB

// maxThrottleClients bounds the throttle map; idle clients are swept once it
// grows past this.
const maxThrottleClients = 4096

type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// wrapHTTPHandler layers bearer auth, per-client throttling, and a request
// body cap around the streamable MCP handler. Auth runs first.
func wrapHTTPHandler(base http.Handler, cfg HTTPHandlerConfig) http.Handler {
	h := limitRequestBody(base, cfg.MaxBodyBytes)
	h = throttleRequests(h, newRequestThrottle(cfg.RateLimitPerMin))
	h = requireBearerToken(h, cfg.AuthToken)
	return h
}

func requireBearerToken(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeJSONError(w, http.StatusForbidden, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, rest, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(rest)
	return token, token != ""
}

func limitRequestBody(next http.Handler, limit int64) http.Handler {
	if limit <= 0 {
		limit = defaultMCPMaxBodyBytes
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

func throttleRequests(next http.Handler, throttle *requestThrottle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if throttle == nil {
			next.ServeHTTP(w, r)
			return
		}
		if !throttle.Allow(throttleKey(r)) {
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// throttleKey buckets by bearer token plus client host so one noisy client
// cannot starve the rest behind a shared token.
func throttleKey(r *http.Request) string {
	token, _ := bearerToken(r)
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	if token == "" {
		return host
	}
	return token + "|" + host
}

type requestThrottle struct {
	mu      sync.Mutex
	perSec  float64
	burst   float64
	clients map[string]*throttleState
}

type throttleState struct {
	allowance float64
	seen      time.Time
}

func newRequestThrottle(perMin int) *requestThrottle {
	if perMin <= 0 {
		perMin = 60
	}
	return &requestThrottle{
		perSec:  float64(perMin) / 60,
		burst:   float64(perMin),
		clients: make(map[string]*throttleState),
	}
}

func (t *requestThrottle) Allow(key string) bool {
	if t == nil {
		return true
	}
	if key == "" {
		key = "default"
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.clients[key]
	if !ok {
		if len(t.clients) >= maxThrottleClients {
			t.sweep(now)
		}
		t.clients[key] = &throttleState{allowance: t.burst - 1, seen: now}
		return true
	}

	st.allowance += now.Sub(st.seen).Seconds() * t.perSec
	if st.allowance > t.burst {
		st.allowance = t.burst
	}
	st.seen = now

	if st.allowance < 1 {
		return false
	}
	st.allowance--
	return true
}

// sweep drops clients idle long enough to have refilled completely. Caller
// holds the lock.
func (t *requestThrottle) sweep(now time.Time) {
	idle := time.Duration(t.burst/t.perSec) * time.Second
	for key, st := range t.clients {
		if now.Sub(st.seen) > idle {
			delete(t.clients, key)
		}
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
