package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yourusername/promotion-engine/internal/api"
	"github.com/yourusername/promotion-engine/internal/api/middleware"
	"github.com/yourusername/promotion-engine/pkg/config"
	"github.com/yourusername/promotion-engine/pkg/db"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	srvCfg, err := config.LoadServerConfig(configPath())
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// load DB config from env
	dbCfg, _ := db.LoadPostgresConfig()

	conn, err := db.NewPostgresConnection(dbCfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer conn.Close()

	handler := api.NewRouter(conn, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger(logger))
	r.Mount("/", handler)

	srv := &http.Server{
		Addr:         srvCfg.Addr,
		Handler:      r,
		ReadTimeout:  srvCfg.ReadTimeout(),
		WriteTimeout: srvCfg.WriteTimeout(),
		IdleTimeout:  srvCfg.IdleTimeout(),
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting promotion-service", zap.String("addr", srvCfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
