package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripplanner/internal/app/observability/tracer"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/config"
	"github.com/FACorreiaa/go-tripplanner/internal/pkg/logger"
	"github.com/FACorreiaa/go-tripplanner/internal/server"
)

const serviceName = "go-tripplanner"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if err := logger.Init(level, zap.String("service", serviceName)); err != nil {
		return err
	}
	defer logger.Log.Sync()

	otelShutdown, err := server.InitObservability(tracer.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   cfg.OTLPEndpoint,
		MetricsAddr:    cfg.MetricsAddr,
	}, logger.Log)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(context.Background(), cfg, logger.Log)
	if err != nil {
		return err
	}
	defer srv.Close()

	gin.SetMode(gin.ReleaseMode)
	router := server.SetupRouter(srv.Handlers(), srv.RouterOptions(serviceName), logger.Log)
	srv.SetRouter(router)

	pprofServer := server.StartPprofServer(cfg.PprofAddr, logger.Log)

	httpServer := srv.HTTPServer()

	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, logger.Log, done, pprofServer)

	logger.Log.Info("Server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("services_mode", cfg.ServicesMode),
		zap.String("persist_driver", cfg.Persist.Driver))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("Server error", zap.Error(err))
		return err
	}

	<-done
	logger.Log.Info("Graceful shutdown complete")

	return nil
}
