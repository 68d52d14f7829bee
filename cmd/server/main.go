// Command server runs the VanillaSoft webhook receiver: it accepts call-history
// and contact events over HTTP and persists them to MySQL.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/collin-ho/vs-mysql/internal/config"
	httpapi "github.com/collin-ho/vs-mysql/internal/http"
	"github.com/collin-ho/vs-mysql/internal/observability"
	"github.com/collin-ho/vs-mysql/internal/repo"
	"github.com/collin-ho/vs-mysql/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

const shutdownTimeout = 10 * time.Second

// @title       VanillaSoft to MySQL Webhook Server
// @version     1.0
// @description Receives VanillaSoft call-history and contact webhooks and stores them in MySQL.
// @BasePath    /
func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.MustLoad()
	ver := sysutil.ResolveVersion(version)

	log.Logger = sysutil.NewLogger(os.Stdout, cfg.LogPretty, cfg.OTEL.ServiceName, ver)
	sysutil.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// An unreachable database is reported but does not stop the server;
	// webhooks fail with 500 until it comes back and /health shows "down".
	// The schema is retried on the first successful health check or webhook.
	var schema *repo.SchemaGuard
	if cfg.DB.AutoMigrate {
		schema = repo.NewSchemaGuard(db)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := repo.Ping(pctx, db); err != nil {
		log.Error().Err(err).
			Str("driver", cfg.DB.Driver).
			Str("host", cfg.DB.Host).
			Str("database", cfg.DB.Name).
			Msg("database connection failed")
	} else {
		log.Info().Str("driver", cfg.DB.Driver).Str("database", cfg.DB.Name).Msg("database connected")
		if err := schema.Ensure(pctx); err != nil {
			log.Error().Err(err).Msg("auto-migrate failed; will retry on next database use")
		}
	}
	cancel()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg, schema)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("webhook_base", cfg.WebhookBasePath).
			Bool("swagger", cfg.SwaggerEnabled).
			Msg("webhook server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}
