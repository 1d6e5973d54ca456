package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"tasktracker/internal/adapter/http/handler"
	"tasktracker/internal/adapter/http/middleware"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/telemetry"
	"tasktracker/pkg/config"
)

const ServiceName = "tasktracker"

type HandlersConfig struct {
	AuthHandler     *handler.AuthHandler
	CategoryHandler *handler.CategoryHandler
	TodoHandler     *handler.TodoHandler
	HealthHandler   *handler.HealthHandler
}

func SetupRouter(handlers HandlersConfig, tokens port.TokenIssuer, metrics *telemetry.AppMetrics, logger *otelzap.Logger, cfg *config.AppConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	httpsEnforcer := middleware.NewHTTPSEnforcer(cfg.EnforceHTTPS, logger.Logger)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	middleware.SetupGinMiddleware(router, ServiceName, metrics, logger)
	router.Use(corsMiddleware())

	limit := func(c *gin.Context) { c.Next() }

	if cfg.RateLimitEnabled {
		limit = middleware.NewRateLimiter(cfg.RateLimitConfigs, logger.Logger, metrics).RateLimitMiddleware()
	}

	if handlers.HealthHandler != nil {
		router.GET("/health", handlers.HealthHandler.Health)
		router.GET("/ready", handlers.HealthHandler.Ready)
	}

	api := router.Group("/api")

	setupPublicRoutes(api, handlers.AuthHandler, limit)
	setupProtectedRoutes(api, handlers, middleware.AuthMiddleware(tokens), limit)

	return router
}

func setupPublicRoutes(api *gin.RouterGroup, authHandler *handler.AuthHandler, limit gin.HandlerFunc) {
	public := api.Group("")
	public.Use(limit)
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/logout", authHandler.Logout)
	}
}

func setupProtectedRoutes(api *gin.RouterGroup, handlers HandlersConfig, auth gin.HandlerFunc, limit gin.HandlerFunc) {
	protected := api.Group("")
	protected.Use(auth)
	protected.Use(limit)
	{
		protected.GET("/user", handlers.AuthHandler.CurrentUser)

		protected.GET("/categories", handlers.CategoryHandler.GetCategories)
		protected.POST("/categories", handlers.CategoryHandler.CreateCategory)
		protected.DELETE("/categories/:id", handlers.CategoryHandler.DeleteCategory)

		protected.GET("/todos", handlers.TodoHandler.GetTodos)
		protected.GET("/todos/labels", handlers.TodoHandler.GetLabels)
		protected.POST("/todos", handlers.TodoHandler.CreateTodo)
		protected.PATCH("/todos/:id", handlers.TodoHandler.UpdateTodo)
		protected.PATCH("/todos/:id/details", handlers.TodoHandler.UpdateTodoDetails)
		protected.DELETE("/todos/:id", handlers.TodoHandler.DeleteTodo)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
