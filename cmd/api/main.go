package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cloverhq/clover/config"
	"github.com/cloverhq/clover/internal/handlers"
	"github.com/cloverhq/clover/pkg/crm"
	"github.com/cloverhq/clover/pkg/health"
	"github.com/cloverhq/clover/pkg/middleware"
	"github.com/cloverhq/clover/pkg/prefs"
	"github.com/cloverhq/clover/pkg/redis"
	"github.com/cloverhq/clover/pkg/resourcetypes"
	"github.com/cloverhq/clover/pkg/startup"
	"github.com/cloverhq/clover/pkg/touchpoints"
	"github.com/cloverhq/clover/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, flush, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.AppName, cfg.Version, cfg.OTLPEnabled, tracing.OTLPConfig{
		Endpoint: cfg.OTLPEndpoint,
		Protocol: cfg.OTLPProtocol,
		Insecure: cfg.OTLPInsecure,
	})
	if err != nil {
		logger.WithError(err).Error("failed to set up tracing")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	crmConfig := crm.DefaultConfig(cfg.CRMBaseURL, cfg.CRMBearerToken)
	crmConfig.Timeout = cfg.CRMTimeout
	crmClient, err := crm.NewClient(crmConfig, logger)
	if err != nil {
		logger.WithError(err).Error("failed to create crm client")
		os.Exit(1)
	}

	resolver := resourcetypes.NewResolver(crmClient, logger)
	touchpointFetcher := touchpoints.NewFetcher(crmClient, logger, cfg.TouchpointConcurrency)

	var redisClient *redis.Client
	var prefStore *prefs.Store

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(startup.Dependency{
		Name: "redis",
		OnStart: func(ctx context.Context) error {
			client, err := redis.NewClient(redis.Config{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, logger)
			if err != nil {
				return err
			}
			redisClient = client
			prefStore = prefs.NewStore(client, logger)
			return nil
		},
		OnStop: func(context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Close()
		},
	})
	boot.AddDependency(startup.Dependency{
		Name: "crm",
		OnStart: func(ctx context.Context) error {
			return crmClient.Ping(ctx)
		},
	})
	if cfg.WarmLabelCache {
		boot.AddDependency(startup.Dependency{
			Name:     "label-cache",
			Requires: []string{"crm"},
			OnStart: func(ctx context.Context) error {
				return resolver.Load(ctx)
			},
		})
	}

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("startup failed")
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(otelecho.Middleware(cfg.AppName))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	checker := health.NewChecker(crmClient, redisClient, cfg.Version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	handlers.NewPeopleHandler(crmClient, resolver, touchpointFetcher, logger).Register(api.Group("/people"))
	handlers.NewOrganizationsHandler(crmClient, resolver, logger).Register(api.Group("/organizations"))
	handlers.NewGroupsHandler(crmClient, resolver, logger).Register(api.Group("/groups"))
	handlers.NewTouchpointsHandler(crmClient, logger).Register(api.Group("/touchpoints"))
	handlers.NewResourceTypesHandler(resolver, logger).Register(api.Group("/resource_types"))
	handlers.NewPrefsHandler(prefStore, logger).Register(api.Group("/prefs"))
	handlers.NewSearchHandler(crmClient, cfg.SearchDebounce, logger).Register(api.Group("/search"))

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        e,
		ReadTimeout:    time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:   time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:    time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("%s listening on :%d", cfg.AppName, cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server failed")
			stop()
		}
	}()

	checker.SetReady(true)

	<-ctx.Done()
	logger.Info("shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown failed")
	}
	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("dependency shutdown failed")
	}
}

// newLogger builds the zap-backed structured logger. Pretty logs use the
// development console encoder for local runs.
func newLogger(cfg *config.Config) (ectologger.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, nil, err
	}

	flush := func() { _ = zapLogger.Sync() }
	return zapadapter.NewZapEctoLogger(zapLogger, nil), flush, nil
}
