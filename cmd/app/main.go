package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmaster/internal/ai"
	"taskmaster/internal/config"
	"taskmaster/internal/db"
	httpServer "taskmaster/internal/http"
	"taskmaster/internal/http/handlers"
	"taskmaster/internal/http/middleware"
	"taskmaster/internal/logger"
	"taskmaster/internal/repository"
	"taskmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	jwtManager, err := service.NewJWTManager(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		logger.Fatal("invalid jwt configuration", "error", err)
	}

	dbPool := db.Connect(cfg.DatabaseURL, db.Options{MinConns: cfg.DBMinConns, MaxConns: cfg.DBMaxConns})
	defer dbPool.Close()
	prometheus.MustRegister(middleware.NewPoolCollector(dbPool))

	if middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB) {
		logger.Info("redis rate limiter enabled", "addr", cfg.RedisAddr)
	}

	users := repository.NewUserRepository(dbPool)
	categories := repository.NewCategoryRepository(dbPool)
	tasks := repository.NewTaskRepository(dbPool)

	aiClient := ai.NewClient(cfg.OpenRouterURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	if !aiClient.Configured() {
		logger.Warn("OPENROUTER_API_KEY not set, chat answers from the local fallback")
	}

	auth := service.NewAuthService(users, jwtManager)
	chat := service.NewChatService(tasks, aiClient)
	chat.OnFallback(middleware.RecordChatFallback)

	gin.SetMode(gin.ReleaseMode)
	r := httpServer.NewRouter(httpServer.Deps{
		Config:   cfg,
		Handler:  handlers.NewHandler(auth, categories, tasks, chat),
		Health:   handlers.NewHealthHandler(dbPool, cfg.AppVersion, aiClient.Configured()),
		Auth:     auth,
		Acquirer: db.PoolAcquirer{Pool: dbPool},
		Chat:     chat,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
