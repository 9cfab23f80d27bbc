package router

import (
	"net/http"
	"time"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"user-management-service/internal/adapter/gin/handler"
	"user-management-service/internal/adapter/gin/middleware"
)

// Options controls the optional parts of the router.
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	// Metrics is exposed on /metrics when set.
	Metrics *prometheus.Registry
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	if opts.Metrics != nil {
		p := ginprom.New(
			ginprom.Engine(router),
			ginprom.Registry(opts.Metrics),
			ginprom.Subsystem("gin"),
			ginprom.Path("/metrics"),
		)
		router.Use(p.Instrument())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	users := router.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.POST("/register", userHandler.Register)
		users.GET("/verify", userHandler.VerifyEmail)
		users.POST("/login", userHandler.Login)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
		users.POST("/:id/verification/resend", userHandler.ResendVerification)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
