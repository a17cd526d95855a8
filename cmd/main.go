package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sales-dashboard/internal/connectivity"
	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/handler"
	mid "sales-dashboard/internal/middleware"
	"sales-dashboard/internal/saleform"
	"sales-dashboard/pkg/backend"
	"sales-dashboard/pkg/config"
	"sales-dashboard/pkg/logger"
	"sales-dashboard/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+appConfig.ServiceName, appConfig.LogFields()...)

	// Initialize Prometheus metrics
	metrics := prometheus.InitMetrics(appConfig.Metrics.Prefix)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Backend client, with a service token when a signing key is configured
	var opts []backend.Option
	if signer := backend.NewTokenSigner(appConfig.Backend.JWTSigningKey, appConfig.ServiceName, appConfig.Backend.JWTTTL); signer != nil {
		opts = append(opts, backend.WithTokenSigner(signer))
		log.Info("Service token signing enabled")
	}
	client := backend.NewClient(appConfig.Backend, log, metrics, opts...)

	status := connectivity.NewStatus(metrics)
	dates := dashboard.DateFormatter{
		Layout:   appConfig.Display.DateLayout,
		Location: appConfig.Display.Location(),
	}
	assembler := dashboard.NewAssembler(client, status, dates, log, metrics)
	form := saleform.NewForm(assembler, client, assembler, dates, saleform.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial load. Reads never fail, so the dashboard is usable even when
	// the backend is down.
	if err := assembler.Load(ctx); err != nil {
		log.Error("Initial dashboard load failed", zap.Error(err))
	}
	assembler.LoadCorrelation(ctx)
	if status.UsingMockData() {
		log.Warn("Backend not reachable, serving demonstration data",
			zap.String("backend_url", appConfig.Backend.BaseURL))
	}

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	if appConfig.Server.EnableCORS {
		e.Use(middleware.CORS())
	}
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.Metrics(metrics))

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewHandler(assembler, form, status, client).RegisterRoutes(e)

	// Start server
	port := appConfig.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
