package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/category"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/feedback"
	"storefront/internal/logger"
	"storefront/internal/media"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/product"
	"storefront/internal/transport"
	"storefront/internal/user"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.L().Warn("JWT_SECRET is empty, login will fail")
	}

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter()
	go limiter.Run(ctx)

	handler, err := newServer(cfg, database, limiter)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.L().Info("storefront API listening",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.AppEnv),
	)
	if err := startServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// newServer wires repositories, services and the HTTP stack.
func newServer(cfg *config.Config, database *sql.DB, limiter *middleware.RateLimiter) (http.Handler, error) {
	images, err := media.NewStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	router := transport.NewRouter(transport.Deps{
		Products:   product.NewService(product.NewRepository(database), images),
		Categories: category.NewService(category.NewRepository(database)),
		Feedback:   feedback.NewService(feedback.NewRepository(database)),
		Users:      user.NewService(user.NewRepository(database)),
		Images:     images,
		Metrics:    rec,
		AssetsDir:  images.Root(),
	})

	return setupRouter(router, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), cfg.CORSOrigins, limiter), nil
}

func setupRouter(router *mux.Router, metricsHandler http.Handler, origins []string, limiter *middleware.RateLimiter) http.Handler {
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	var h http.Handler = router
	h = limiter.Middleware(h)
	h = middleware.LoggingMiddleware(h)
	h = middleware.AuthMiddleware(h)
	h = logger.RequestIDMiddleware(h)

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", logger.RequestIDHeader},
		ExposedHeaders:   []string{logger.RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(h)
}
