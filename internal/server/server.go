package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/api"
	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/service"
)

// Server wraps the HTTP server and its routing.
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New wires services, handlers and routes. redisClient may be nil, which
// disables rate limiting (used in tests).
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3cfg *config.S3Config) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	userService := service.NewUserService(db)
	shoppingService := service.NewShoppingListService(db)
	imageService := service.NewImageService(cfg.MediaRoot, s3cfg)

	var limiter gin.HandlerFunc
	if redisClient != nil {
		limiter = middleware.NewWriteRateLimiter(redisClient).Middleware()
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	if cfg.S3Bucket == "" {
		router.Static("/media", cfg.MediaRoot)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api")
	api.NewAuthHandler(authService).RegisterRoutes(v1)
	api.NewUserHandler(userService, imageService, authService).RegisterRoutes(v1)
	api.NewRecipeHandler(recipeService, userService, shoppingService, imageService, authService, limiter, cfg.BaseURL).RegisterRoutes(v1)
	api.NewTagHandler(db).RegisterRoutes(v1)
	api.NewIngredientHandler(db).RegisterRoutes(v1)
	api.NewShortLinkHandler(recipeService).RegisterRoutes(router)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
