package http

import (
	"net/http"
	"time"

	"todo_webapp/internal/cache"
	"todo_webapp/internal/config"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// Rate-limit messages surfaced with 429 responses.
const (
	msgTooManyRequests = "Too many requests from this IP, please try again later"
	msgTooManyLogins   = "Too many login attempts, please try again after 15 minutes"
	msgTooManyTodos    = "Too many todos created, please try again later"
)

// RegisterRoutes wires repositories, services and handlers onto the
// engine. rdb may be nil; rate limiting then falls back to local
// counters and the list cache is disabled.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, version string) {
	userRepo := repository.NewPGUserRepo(pool)
	todoRepo := repository.NewPGTodoRepo(pool)

	var todoCache *cache.TodoCache
	if rdb != nil {
		todoCache = cache.NewTodoCache(rdb, cfg.CacheTTL)
	}

	hub := ws.NewHub()
	tokens := service.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)
	users := service.NewUserService(userRepo, service.BcryptHasher{})
	todos := service.NewTodoService(todoRepo, todoCache, hub)

	h := handlers.NewHandler(users, todos, tokens)
	healthHandler := handlers.NewHealthHandler(pool, version)
	limiter := middleware.NewRateLimiter(rdb)

	// Health checks, unmetered.
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Todo API is running",
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	general := limiter.ByIP("api", cfg.APIRateLimit, cfg.APIRateWindow, msgTooManyRequests)

	auth := r.Group("/auth", general)
	auth.POST("/register", limiter.ByIP("auth", cfg.AuthRateLimit, cfg.AuthRateWindow, msgTooManyLogins), h.Register)
	auth.POST("/login", limiter.ByIP("auth", cfg.AuthRateLimit, cfg.AuthRateWindow, msgTooManyLogins), h.Login)
	auth.GET("/me", middleware.Auth(tokens), h.Me)

	todosGroup := r.Group("/todos", general, middleware.Auth(tokens))
	todosGroup.GET("", h.ListTodos)
	todosGroup.POST("", limiter.ByUser("todo_create", cfg.CreateRateLimit, cfg.CreateRateWindow, msgTooManyTodos), h.CreateTodo)
	todosGroup.PUT("/:id", h.UpdateTodo)
	todosGroup.DELETE("/:id", h.DeleteTodo)

	// Live todo events for the authenticated user.
	r.GET("/ws", ws.Handle(hub, tokens))
}
