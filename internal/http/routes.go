package http

import (
	"taskmaster/internal/config"
	"taskmaster/internal/db"
	"taskmaster/internal/http/handlers"
	"taskmaster/internal/http/middleware"
	"taskmaster/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs. Tests fill it with in-memory fakes.
type Deps struct {
	Config   *config.Config
	Handler  *handlers.Handler
	Health   *handlers.HealthHandler
	Auth     middleware.Resolver
	Acquirer db.Acquirer
	Chat     ws.Replier
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(d.Config.AllowedOrigin))

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// One set of limiters serves both prefixes.
	limits := rateLimits{
		api:  middleware.RateLimit("api", d.Config.APIRateLimit, d.Config.APIRateWindow),
		auth: middleware.RateLimit("auth", d.Config.AuthRateLimit, d.Config.AuthRateWindow),
		chat: middleware.UserRateLimit("chat", d.Config.ChatRateLimit, d.Config.ChatRateWindow),
	}

	v1 := r.Group("/api/v1")
	v1.Use(limits.api)
	registerAPIRoutes(v1, d, limits)

	// Unversioned alias kept for existing clients
	api := r.Group("/api")
	api.Use(limits.api)
	api.GET("/health", d.Health.Health)
	registerAPIRoutes(api, d, limits)

	return r
}

type rateLimits struct {
	api  gin.HandlerFunc
	auth gin.HandlerFunc
	chat gin.HandlerFunc
}

func registerAPIRoutes(api *gin.RouterGroup, d Deps, limits rateLimits) {
	h := d.Handler
	cfg := d.Config
	conn := middleware.AcquireConn(d.Acquirer)
	auth := middleware.Auth(d.Auth)

	// Auth
	api.POST("/auth/register", limits.auth, conn, h.Register)
	api.POST("/auth/login", limits.auth, conn, h.Login)

	protected := api.Group("", conn, auth)
	protected.GET("/auth/me", h.Me)

	// Categories
	protected.GET("/categories", h.ListCategories)
	protected.POST("/categories", h.CreateCategory)
	protected.PUT("/categories/:id", h.UpdateCategory)
	protected.DELETE("/categories/:id", h.DeleteCategory)

	// Tasks
	protected.GET("/tasks", h.ListTasks)
	protected.POST("/tasks", h.CreateTask)
	protected.GET("/tasks/:id", h.GetTask)
	protected.PUT("/tasks/:id", h.UpdateTask)
	protected.DELETE("/tasks/:id", h.DeleteTask)

	// Assistant
	protected.POST("/ai/chat", limits.chat, h.ChatMessage)
	protected.POST("/ai/suggestions", h.Suggestions)

	// The websocket authenticates itself; browsers cannot set headers on upgrade.
	api.GET("/ai/chat/ws", conn, ws.HandleChat(d.Auth, d.Chat, cfg.AllowedOrigin))
}
