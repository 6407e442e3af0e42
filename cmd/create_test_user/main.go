package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"taskmaster/internal/config"
	"taskmaster/internal/db"
	"taskmaster/internal/domain"
	"taskmaster/internal/logger"
	"taskmaster/internal/repository"
	"taskmaster/internal/service"
)

func main() {
	username := flag.String("username", "testuser", "username to register or log in")
	password := flag.String("password", "testpass123", "password for the user")
	flag.Parse()

	cfg := config.Load()
	pool := db.Connect(cfg.DatabaseURL, db.Options{MinConns: 1, MaxConns: 2})
	defer pool.Close()

	jwtManager, err := service.NewJWTManager(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		logger.Fatal("invalid jwt configuration", "error", err)
	}
	auth := service.NewAuthService(repository.NewUserRepository(pool), jwtManager)
	ctx := context.Background()

	session, err := auth.Register(ctx, *username, *password, nil)
	if errors.Is(err, domain.ErrConflict) {
		logger.Info("user already exists, logging in", "username", *username)
		session, err = auth.Login(ctx, *username, *password)
	}
	if err != nil {
		logger.Fatal("failed to obtain a session", "username", *username, "error", err)
	}

	logger.Info("test user ready", "user_id", session.User.ID, "username", session.User.Username)
	fmt.Println(session.Token)
}
