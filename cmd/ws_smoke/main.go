package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"time"

	"taskmaster/internal/config"
	"taskmaster/internal/db"
	"taskmaster/internal/domain"
	"taskmaster/internal/logger"
	"taskmaster/internal/repository"
	"taskmaster/internal/service"
	"taskmaster/internal/ws"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

func main() {
	message := flag.String("message", "merhaba", "chat message to send")
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

	session, err := auth.Register(ctx, "smoke", "smoke-password", nil)
	if err != nil && !isConflict(err) {
		logger.Fatal("register smoke user", "error", err)
	}
	if err != nil {
		session, err = auth.Login(ctx, "smoke", "smoke-password")
		if err != nil {
			logger.Fatal("login smoke user", "error", err)
		}
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	u := url.URL{
		Scheme:   "ws",
		Host:     "127.0.0.1:" + cfg.AppPort,
		Path:     "/api/v1/ai/chat/ws",
		RawQuery: url.Values{"token": {session.Token}}.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal("dial", "url", u.Redacted(), "error", err)
	}
	defer conn.Close()

	readFrame := func(timeout time.Duration) map[string]any {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Fatal("read", "error", err)
		}
		var obj map[string]any
		_ = sonic.Unmarshal(msg, &obj)
		return obj
	}

	if frame := readFrame(3 * time.Second); frame["type"] != ws.MsgReady {
		logger.Fatal("expected ready frame", "got", frame)
	}

	payload, _ := sonic.Marshal(ws.ChatPayload{Message: *message})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		logger.Fatal("write", "error", err)
	}

	// the provider call is bounded at 30s
	frame := readFrame(35 * time.Second)
	fmt.Printf("%s: %v\n", frame["type"], frame["response"])
	logger.Info("smoke test finished")
}

func isConflict(err error) bool {
	return domain.KindOf(err) == domain.ErrConflict
}
