package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jobintel/ml-gateway/internal/cache"
	"github.com/jobintel/ml-gateway/internal/config"
	"github.com/jobintel/ml-gateway/internal/database"
	"github.com/jobintel/ml-gateway/internal/handlers"
	"github.com/jobintel/ml-gateway/internal/mlclient"
	"github.com/jobintel/ml-gateway/internal/ratelimit"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	var db *gorm.DB
	if cfg.LogDBEnabled {
		var err error
		db, err = database.NewPostgresDB(logger, database.PostgresConfig{
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			DBName:   cfg.PostgresDatabase,
			SSLMode:  cfg.PostgresSSLMode,
		})
		if err != nil {
			logger.WithError(err).Fatal("Database setup failed")
		}
	}

	var responseCache cache.Cache
	if cfg.RedisAddr != "" {
		responseCache = cache.NewRedis(logger, cfg.RedisAddr)
		logger.WithField("addr", cfg.RedisAddr).Info("Using Redis response cache")
	} else {
		responseCache = cache.NewMemory()
	}

	limiter := ratelimit.New(map[string]ratelimit.Rule{
		handlers.ClassPredict:  {Capacity: cfg.LimitPredict, Window: cfg.LimitWindow},
		handlers.ClassSkillGap: {Capacity: cfg.LimitSkillGap, Window: cfg.LimitWindow},
		handlers.ClassMetadata: {Capacity: cfg.LimitMetadata, Window: cfg.LimitWindow},
		handlers.ClassLookup:   {Capacity: cfg.LimitLookup, Window: cfg.LimitWindow},
	}, ratelimit.Rule{Capacity: cfg.LimitGlobal, Window: cfg.LimitWindow})

	client := mlclient.NewClient(logger, cfg)
	handler := handlers.NewProxyHandler(logger, cfg, limiter, responseCache, client, db)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger, db))
	handlers.RegisterRoutes(r, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if db != nil {
		retention := database.NewLogRetention(logger, db, cfg.LogRetention)
		go retention.Start(ctx)
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Server shutdown error")
		}
	}()

	logger.WithField("addr", server.Addr).Info("Starting server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("Server failed")
	}
}
