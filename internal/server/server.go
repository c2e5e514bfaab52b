package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/database"
	"github.com/tapline-games/tapline/internal/handler"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/metrics"
	"github.com/tapline-games/tapline/internal/player"
	"github.com/tapline-games/tapline/internal/presence"
	"github.com/tapline-games/tapline/internal/signal"
	"github.com/tapline-games/tapline/internal/sse"
)

type Server struct {
	httpServer      *http.Server
	dbPool          database.Pool
	playerService   player.Service
	presenceService presence.Service
	catalogService  catalog.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, playerService player.Service, presenceService presence.Service, catalogService catalog.Service, catalogStore *catalog.Store, dispatcher *signal.Dispatcher, hub *sse.Hub) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/player", func(r chi.Router) {
			r.Post("/click", handler.HandleClick(playerService))
			r.Post("/purchase", handler.HandlePurchase(playerService))
			r.Post("/defend", handler.HandleDefend(playerService))
			r.Post("/resume", handler.HandleResume(playerService, dispatcher))
			r.Post("/depart", handler.HandleDepart(playerService, dispatcher))
			r.Post("/mute", handler.HandleSetMuted(playerService))
			r.Post("/reset", handler.HandleHardReset(playerService))
			r.Get("/state", handler.HandleGetState(playerService))
		})

		r.Route("/group", func(r chi.Router) {
			r.Post("/", handler.HandleCreateGroup(presenceService, playerService))
			r.Post("/join", handler.HandleJoinGroup(presenceService, playerService))
			r.Post("/leave", handler.HandleLeaveGroup(presenceService, playerService))
			r.Post("/heartbeat", handler.HandleHeartbeat(presenceService))
			r.Get("/status", handler.HandleGroupStatus(presenceService))
		})

		r.Route("/signal", func(r chi.Router) {
			r.Post("/attack", handler.HandleInboundAttack(dispatcher))
			r.Post("/gift", handler.HandleInboundGift(dispatcher))
		})

		r.Route("/social", func(r chi.Router) {
			r.Get("/attacks", handler.HandleOwnedAttacks(playerService))
			r.Get("/gifts", handler.HandleOwnedGifts(playerService))
			r.Get("/score", handler.HandleGetScore(playerService))
		})

		r.Get("/catalog", handler.HandleGetCatalog(catalogStore))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/catalog/refresh", handler.HandleRefreshCatalog(catalogService))
		})

		// Server-sent events stream for per-player announcements
		r.Get("/events", sse.Handler(hub))
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:          dbPool,
		playerService:   playerService,
		presenceService: presenceService,
		catalogService:  catalogService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
