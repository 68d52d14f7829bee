// Package httpapi wires the HTTP transport (Gin) to the webhook service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/collin-ho/vs-mysql/docs"
	"github.com/collin-ho/vs-mysql/internal/config"
	"github.com/collin-ho/vs-mysql/internal/domain"
	"github.com/collin-ho/vs-mysql/internal/http/handlers"
	"github.com/collin-ho/vs-mysql/internal/http/middleware"
	"github.com/collin-ho/vs-mysql/internal/repo"
	"github.com/collin-ho/vs-mysql/internal/services"
)

// webhookRepoShim adapts the repository free functions to the
// services.WebhookRepo interface expected by the WebhookService. Each insert
// first makes sure the schema exists (no-op once migrated or when schema is nil).
type webhookRepoShim struct {
	schema *repo.SchemaGuard
}

// InsertCallHistory proxies repo.InsertCallHistory.
func (s webhookRepoShim) InsertCallHistory(ctx context.Context, db *gorm.DB, rec *domain.CallHistory) error {
	if err := s.schema.Ensure(ctx); err != nil {
		return err
	}
	return repo.InsertCallHistory(ctx, db, rec)
}

// InsertContactIfAbsent proxies repo.InsertContactIfAbsent.
func (s webhookRepoShim) InsertContactIfAbsent(ctx context.Context, db *gorm.DB, c *domain.Contact) (int64, error) {
	if err := s.schema.Ensure(ctx); err != nil {
		return 0, err
	}
	return repo.InsertContactIfAbsent(ctx, db, c)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: the webhook receivers under cfg.WebhookBasePath, /health, /,
// /metrics and (when enabled) the Swagger UI. schema, when non-nil, is
// re-run on the first successful health check or webhook after a failed
// startup migration.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing, scoped logger
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per IP; health and scrapes exempt)
//  8. Response compression
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, schema *repo.SchemaGuard) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key", "X-VanillaSoft-Signature"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(cfg.MaxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP()).
		Exempt("/health", "/metrics")
	r.Use(rl.Handler())

	// 8) gzip responses; promhttp negotiates its own encoding
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 9) CORS posture (allow all if none configured)
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		// Force ACAO: * even without an Origin header (simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		NoStorePrefixes: []string{cfg.WebhookBasePath, "/health"},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Dependency injection: services ← repo/db
	svc := services.NewWebhookService(db, webhookRepoShim{schema: schema})
	ping := func(ctx context.Context) error {
		if err := repo.Ping(ctx, db); err != nil {
			return err
		}
		if err := schema.Ensure(ctx); err != nil {
			log.Error().Err(err).Msg("auto-migrate failed")
		}
		return nil
	}
	h := handlers.New(svc, ping, cfg.WebhookBasePath)

	// Liveness/health and service description
	r.GET("/health", h.Health)
	r.GET("/", h.Root)

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = "/"
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Webhook receivers
	hooks := groupWithPrefix(r, cfg.WebhookBasePath)
	{
		hooks.POST("/call", h.ReceiveCallEvent)
		hooks.POST("/contact", h.ReceiveContactEvent)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error. maxBytes <= 0 disables the cap.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
