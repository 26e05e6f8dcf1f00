// Package http exposes the JSON API: owner-scoped CRUD over every
// collection plus the dashboard aggregations. Handlers read from the
// owner's in-memory store; mutations go through it to the sync gateway.
package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"salone/internal/amqp"
	"salone/internal/auth"
	"salone/internal/core"
	"salone/internal/store"
)

// changePublisher notifies the export pipeline about mutations. Nil-able:
// without AMQP the periodic sweep still picks entries up.
type changePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

type Options struct {
	JWTSecret         string
	Publisher         changePublisher
	Formatter         core.Formatter
	Location          *time.Location
	LowStockThreshold int
}

type Server struct {
	http.Server

	stores      *store.Manager
	publisher   changePublisher
	formatter   core.Formatter
	loc         *time.Location
	lowStock    int
	validate    *validator.Validate
	rateLimiter *rateLimiter

	shutdownOnce sync.Once

	// Overridable in tests; defaults to time.Now.
	now func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, stores *store.Manager, opts Options) *Server {
	mux := http.NewServeMux()

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		stores:      stores,
		publisher:   opts.Publisher,
		formatter:   opts.Formatter,
		loc:         loc,
		lowStock:    opts.LowStockThreshold,
		validate:    validator.New(),
		rateLimiter: newRateLimiter(),
		now:         time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := http.NewServeMux()

	api.HandleFunc("GET /api/clients", s.handleListClients)
	api.HandleFunc("POST /api/clients", s.handleCreateClient)
	api.HandleFunc("PUT /api/clients/{id}", s.handleUpdateClient)
	api.HandleFunc("DELETE /api/clients/{id}", s.handleDeleteClient)

	api.HandleFunc("GET /api/products", s.handleListProducts)
	api.HandleFunc("POST /api/products", s.handleCreateProduct)
	api.HandleFunc("PUT /api/products/{id}", s.handleUpdateProduct)
	api.HandleFunc("DELETE /api/products/{id}", s.handleDeleteProduct)

	api.HandleFunc("GET /api/professionals", s.handleListProfessionals)
	api.HandleFunc("POST /api/professionals", s.handleCreateProfessional)
	api.HandleFunc("PUT /api/professionals/{id}", s.handleUpdateProfessional)
	api.HandleFunc("DELETE /api/professionals/{id}", s.handleDeleteProfessional)

	api.HandleFunc("GET /api/appointments", s.handleListAppointments)
	api.HandleFunc("POST /api/appointments", s.handleCreateAppointment)
	api.HandleFunc("PUT /api/appointments/{id}", s.handleUpdateAppointment)
	api.HandleFunc("DELETE /api/appointments/{id}", s.handleDeleteAppointment)

	api.HandleFunc("GET /api/financial-entries", s.handleListFinance)
	api.HandleFunc("POST /api/financial-entries", s.handleCreateFinance)
	api.HandleFunc("PUT /api/financial-entries/{id}", s.handleUpdateFinance)
	api.HandleFunc("DELETE /api/financial-entries/{id}", s.handleDeleteFinance)

	api.HandleFunc("GET /api/schedule/hours", s.handleListHours)
	api.HandleFunc("PUT /api/schedule/hours", s.handlePutHours)
	api.HandleFunc("GET /api/schedule/exceptions", s.handleListExceptions)
	api.HandleFunc("POST /api/schedule/exceptions", s.handleCreateException)
	api.HandleFunc("DELETE /api/schedule/exceptions/{id}", s.handleDeleteException)

	api.HandleFunc("GET /api/dashboard/daily", s.handleDashboardDaily)
	api.HandleFunc("GET /api/dashboard/weekly", s.handleDashboardWeekly)
	api.HandleFunc("GET /api/dashboard/monthly", s.handleDashboardMonthly)
	api.HandleFunc("GET /api/dashboard/popular-services", s.handleDashboardPopularServices)
	api.HandleFunc("GET /api/dashboard/professional-performance", s.handleDashboardPerformance)
	api.HandleFunc("GET /api/dashboard/summary", s.handleDashboardSummary)

	mux.Handle("/api/", s.withObservability(auth.Middleware(opts.JWTSecret, api)))

	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// withObservability adds a request ID, security headers, rate limiting on
// mutations, and request logging.
func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		ctx := r.Context()

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"request_id", requestID, "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// storeFor resolves the authenticated owner's store.
func (s *Server) storeFor(r *http.Request) (*store.Store, error) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		return nil, core.ErrNoOwner
	}
	return s.stores.ForOwner(r.Context(), owner)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// publishChange notifies the export pipeline, best effort.
func (s *Server) publishChange(ctx context.Context, collection, action string, id int64, ownerID string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewChangeMessage(collection, action, id, ownerID)
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"collection", collection, "action", action, "id", id, "error", err)
	}
}
