package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	authdomain "todolist/backend/internal/domain/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// withLogging logs each request and reports it to the metrics recorder.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveRequest(r.Method, route, status, duration)

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", recorder.size),
			slog.Float64("duration_ms", float64(duration.Nanoseconds())/float64(time.Millisecond)),
			slog.String("request_id", chimw.GetReqID(r.Context())),
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "http_request", attrs...)
	})
}

// withRecovery turns a handler panic into a 500 response.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				writeInternalError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin != "" && isOriginListed(origin, allowedOrigins):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			case allowsAnyOrigin(allowedOrigins):
				// Wildcard origins never get credentials.
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Token")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isOriginListed reports whether origin is named explicitly in allowed.
func isOriginListed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate != "*" && strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}

func allowsAnyOrigin(allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" {
			return true
		}
	}
	return false
}

// authMiddleware rejects the request before any handler runs unless it
// carries a token for an existing user.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			s.metrics.RecordAuthFailure("token_missing")
			writeError(w, http.StatusUnauthorized, "authorization token required")
			return
		}

		user, err := s.authService.VerifyToken(r.Context(), token)
		if err != nil {
			if authdomain.IsAuthenticationError(err) {
				reason := "token_invalid"
				if errors.Is(err, authdomain.ErrTokenMissingClaim) {
					reason = "token_missing_claim"
				}
				s.metrics.RecordAuthFailure(reason)
				s.logger.Warn("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("reason", err.Error()),
				)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			s.logger.Error("token verification failed", slog.String("error", err.Error()))
			writeInternalError(w)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKeyUser struct{}

func currentUserFromContext(ctx context.Context) (*authdomain.User, bool) {
	user, ok := ctx.Value(ctxKeyUser{}).(*authdomain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// tokenFromRequest reads a bearer token, falling back to the bare "token"
// header sent by older clients.
func tokenFromRequest(r *http.Request) string {
	if token := extractBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get("Token"))
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// ipRateLimiter hands out one token bucket per client address.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	nowFunc   func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPRateLimiter allows perMinute requests per address. A non-positive
// perMinute disables limiting.
func newIPRateLimiter(perMinute int, idleTTL time.Duration) *ipRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		idleTTL:  idleTTL,
		nowFunc:  time.Now,
	}
}

func (l *ipRateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withTrustedRealIP applies chi's RealIP only when the connecting peer is a
// configured proxy. Other requests keep their TCP peer address.
func withTrustedRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		forwarded := chimw.RealIP(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isTrustedPeer(r.RemoteAddr, trusted) {
				forwarded.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isTrustedPeer(remoteAddr string, trusted []netip.Prefix) bool {
	var addr netip.Addr
	if addrPort, err := netip.ParseAddrPort(remoteAddr); err == nil {
		addr = addrPort.Addr()
	} else if parsed, err := netip.ParseAddr(remoteAddr); err == nil {
		addr = parsed
	} else {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
