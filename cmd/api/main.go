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

	"curator/internal/config"
	"curator/internal/db"
	"curator/internal/logging"
	"curator/internal/routes"
	"curator/internal/store"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	debug := logging.IsDebug(cfg.LogLevel)
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	dbConn, err := db.InitDB(cfg.DatabaseDriver, cfg.DatabaseURL, debug)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	router := routes.SetupRouter(store.New(dbConn), cfg, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("driver", cfg.DatabaseDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("Shutdown signal received, shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	if sqlDB, err := dbConn.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("Server shut down complete.")
}
