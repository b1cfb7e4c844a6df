package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/lead-console/internal/apiclient"
	"gitlab.com/timkado/api/lead-console/internal/config"
	"gitlab.com/timkado/api/lead-console/internal/conversation"
	"gitlab.com/timkado/api/lead-console/internal/healthcheck"
	"gitlab.com/timkado/api/lead-console/internal/httpapi"
	"gitlab.com/timkado/api/lead-console/internal/observer"
	"gitlab.com/timkado/api/lead-console/internal/usecase"
	"gitlab.com/timkado/api/lead-console/pkg/logger"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	observer.InitMetrics(cfg.Metrics.Enabled)

	client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, apiclient.WithRetryMaxElapsed(cfg.API.RetryMaxElapsed))
	logger.Log.Info("Starting Lead Console",
		zap.String("environment", cfg.Environment),
		zap.String("api_base_url", client.BaseURL()),
		zap.Int("port", cfg.Server.Port),
	)

	conversations := conversation.NewRegistry(cfg.Conversation.RegistrySize, cfg.Conversation.RegistryTTL, client)

	leadOps, err := usecase.NewLeadOps(client, cfg.WorkerPools.BulkStatus, logger.Log)
	if err != nil {
		logger.Log.Fatal("Failed to initialize lead operations", zap.Error(err))
	}

	handler := httpapi.Routes(httpapi.Dependencies{
		Ops:            leadOps,
		Client:         client,
		Conversations:  conversations,
		Log:            logger.Log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})
	apiServer := httpapi.NewServer(cfg.Server.Port, handler, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, logger.Log)

	healthServer := healthcheck.NewServer(cfg.Metrics.Port, client, cfg.API.ReadyTimeout, logger.Log)
	if observer.Enabled() {
		healthServer.RegisterMetricsHandler(promhttp.Handler())
		logger.Log.Info("Metrics endpoint enabled", zap.String("path", "/metrics"), zap.Int("port", cfg.Metrics.Port))
	} else {
		logger.Log.Info("Metrics endpoint disabled", zap.String("environment", cfg.Environment))
	}
	healthServer.Start()

	logger.Log.Info("Health check endpoints available",
		zap.String("health", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port)),
		zap.String("readiness", fmt.Sprintf("http://localhost:%d/ready", cfg.Metrics.Port)),
	)

	sigChan := make(chan os.Signal, 1)
	apiServer.Start(func(err error) {
		select {
		case sigChan <- syscall.SIGTERM:
		default:
			logger.Log.Warn("Could not send SIGTERM to signal channel immediately")
		}
	})

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	// The API server drains first so in-flight bulk updates finish before
	// the pool is released.
	var wg sync.WaitGroup
	wg.Add(1)
	stopComponent(&wg, "dashboard API server", func() error {
		defer leadOps.Stop()
		return apiServer.Stop(shutdownCtx)
	})
	wg.Add(1)
	stopComponent(&wg, "health check server", func() error {
		return healthServer.Stop(shutdownCtx)
	})

	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Log.Info("[shutdown] All components stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Log.Warn("[shutdown] Graceful shutdown timed out, forcing exit")
	}

	logger.Log.Info("Lead Console shutdown complete")
}

// stopComponent runs stop in a recovered goroutine. wg is marked done by the
// deferred call, also when stop panics.
func stopComponent(wg *sync.WaitGroup, name string, stop func() error) {
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping " + name)
		start := time.Now()
		if err := stop(); err != nil {
			logger.Log.Error("[shutdown] Error stopping "+name, zap.Error(err))
			return
		}
		logger.Log.Info("[shutdown] Stopped "+name, zap.Duration("duration", time.Since(start)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping "+name,
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
	})
}
