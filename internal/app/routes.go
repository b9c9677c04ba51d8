package app

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"kilowatt-backend/internal/handlers"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the ID withRequestID stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID keeps a sane incoming X-Request-ID or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// withAccessLog writes one line per request.
func withAccessLog(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", RequestID(r.Context())),
			zap.String("remote", clientIP(r)),
		)
	})
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const limiterIdle = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipLimiter is a token bucket per client IP. Idle buckets are dropped on
// the next call after limiterIdle.
type ipLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	entries   map[string]*limiterEntry
	lastPrune time.Time
	now       func() time.Time
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > limiterIdle {
		l.lastPrune = now
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterIdle {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !l.allow(clientIP(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func registerRoutes(mux *http.ServeMux, env *handlers.Env, submitLimiter *ipLimiter, frontendDir string, corsOrigins []string) {
	cors := handlers.CORS(corsOrigins)

	// --- catalog ---
	mux.Handle("/api/products", cors(http.HandlerFunc(env.HandleProducts)))
	mux.Handle("/api/products/", cors(http.HandlerFunc(env.HandleProductDetail)))
	mux.Handle("/api/digital-services", cors(http.HandlerFunc(env.HandleDigitalServices)))
	mux.Handle("/api/digital-services/", cors(http.HandlerFunc(env.HandleDigitalServiceDetail)))
	mux.Handle("/api/service-catalog", cors(http.HandlerFunc(env.HandleServiceCatalog)))
	mux.Handle("/api/service-catalog/", cors(http.HandlerFunc(env.HandleServiceCatalogDetail)))
	mux.Handle("/api/packages", cors(http.HandlerFunc(env.HandlePackages)))
	mux.Handle("/api/seo", cors(http.HandlerFunc(env.HandleSeo)))

	// --- quote wizard ---
	mux.Handle("/api/quote", cors(http.HandlerFunc(env.HandleQuote)))
	mux.Handle("/api/quote/hardware", cors(http.HandlerFunc(env.HandleQuoteHardware)))
	mux.Handle("/api/quote/submit", cors(submitLimiter.middleware(http.HandlerFunc(env.HandleQuoteSubmit))))
	mux.Handle("/api/quote/", cors(http.HandlerFunc(env.HandleQuoteAction)))
	mux.Handle("/quote/summary", http.HandlerFunc(env.HandleQuoteSummaryPage))

	// --- account ---
	mux.Handle("/api/me", cors(http.HandlerFunc(env.HandleMe)))
	mux.Handle("/api/me/quotes", cors(http.HandlerFunc(env.HandleMeQuotes)))
	mux.Handle("/api/admin/quotes", cors(http.HandlerFunc(env.HandleAdminQuotes)))

	// --- static frontend ---
	if frontendDir == "" {
		return
	}
	fileServer := http.FileServer(http.Dir(frontendDir))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
