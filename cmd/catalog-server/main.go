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

	"github.com/joho/godotenv"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/api"
	"github.com/tendant/simple-catalog/pkg/catalog/config"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	ctx := context.Background()
	components, err := serverConfig.Build(ctx)
	if err != nil {
		log.Fatalf("Failed to build catalog: %v", err)
	}
	logger := components.Logger

	routerConfig := api.RouterConfig{
		Service:        components.Service,
		Uploads:        components.Uploads,
		TokenAuth:      components.JWTAuth,
		Revoker:        components.Revoker,
		Logger:         logger,
		RequestTimeout: 60 * time.Second,
	}
	if pinger, ok := components.Store.(catalog.Pinger); ok {
		routerConfig.Pinger = pinger
	}
	// CORS for development
	if serverConfig.IsDevelopment() {
		routerConfig.CORSOrigins = []string{"*"}
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           api.NewRouter(routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("catalog server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"storage", serverConfig.Storage.Type,
			"series_cascade", serverConfig.SeriesCascade)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := components.Close(shutdownCtx); err != nil {
		logger.Error("failed to close catalog components", "error", err)
	}

	logger.Info("server exiting")
}
