package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/config"
	"github.com/healthup/internal/db"
	"github.com/healthup/internal/handler"
	"github.com/healthup/internal/llm"
	"github.com/healthup/internal/logger"
	"github.com/healthup/internal/middleware"
	"github.com/healthup/internal/observability"
	"github.com/healthup/internal/router"
	"github.com/healthup/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN()); err != nil {
		log.Error("failed to initialize database", "driver", cfg.DatabaseDriver, "error", err)
		return err
	}

	if cfg.MetricsEnabled {
		service.RegisterMetrics(prometheus.DefaultRegisterer)
		middleware.RegisterMetrics(prometheus.DefaultRegisterer)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.OtelEnabled,
		Endpoint:    cfg.OtelEndpoint,
		ServiceName: "healthup",
		Environment: cfg.GinMode,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	settings := service.NewSystemSettingService(db.DB)
	settings.SetDefaults(service.SystemSettings{
		AIProvider:      cfg.AIProvider,
		AIModel:         cfg.AIModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		DeepSeekAPIKey:  cfg.DeepSeekAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
	})
	settings.SetBaseURL(llm.ProviderOpenAI, cfg.OpenAIBaseURL)

	limiter := middleware.NewRateLimiter(cfg.InsightRatePerMinute)

	engine := router.SetupRouter(handler.NewAPI(db.DB, settings, log), router.Options{
		SessionSecret:  cfg.SessionSecret,
		CORSOrigins:    cfg.CORSOrigins,
		MetricsEnabled: cfg.MetricsEnabled,
		TracingEnabled: cfg.OtelEnabled,
		InsightLimiter: limiter,
		Logger:         log,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.ListenAddr, "driver", cfg.DatabaseDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		limiter.Cleanup(gctx, time.Minute, 10*time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
		return nil
	})

	return g.Wait()
}
