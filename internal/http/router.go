package http

import (
	"log/slog"

	"nestworth-api/internal/config"
	"nestworth-api/internal/http/handlers"
	"nestworth-api/internal/http/middleware"
	"nestworth-api/internal/models"
	"nestworth-api/internal/services"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Config             *config.Config
	UserStore          services.UserStore
	AuthService        *services.AuthService
	AccountService     *services.AccountService
	TransactionService *services.TransactionService
	Logger             *slog.Logger
	RateLimiter        *middleware.RateLimiter
	AuthRateLimiter    *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Config)
	meHandler := handlers.NewMeHandler(deps.UserStore)
	userHandler := handlers.NewUserHandler(deps.UserStore)
	accountHandler := handlers.NewAccountHandler(deps.AccountService)
	txHandler := handlers.NewTransactionHandler(deps.TransactionService)

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api/v1")
	api.Use(deps.RateLimiter.Middleware())

	jwtAuth := middleware.JWTAuth(middleware.AuthConfig{
		Secret: deps.Config.JWTSecret,
		Users:  deps.UserStore,
	})

	authGroup := api.Group("/auth")
	authGroup.Use(deps.AuthRateLimiter.Middleware())
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.PATCH("/reset-password/:token", authHandler.ResetPassword)
		authGroup.PATCH("/update-password", jwtAuth, authHandler.UpdatePassword)
	}

	protected := api.Group("")
	protected.Use(jwtAuth)
	{
		protected.GET("/me", meHandler.GetMe)

		protected.GET("/users", middleware.RequireRole(models.RoleAdmin), userHandler.List)

		protected.GET("/accounts", accountHandler.List)
		protected.POST("/accounts", accountHandler.Create)
		protected.GET("/accounts/summary", accountHandler.Summary)
		protected.GET("/accounts/:id", accountHandler.GetByID)
		protected.PATCH("/accounts/:id", accountHandler.Update)
		protected.DELETE("/accounts/:id", accountHandler.Delete)
		protected.POST("/accounts/:id/recompute", accountHandler.Recompute)

		protected.GET("/transactions", txHandler.List)
		protected.POST("/transactions", txHandler.Create)
		protected.GET("/transactions/summary", txHandler.Summary)
		protected.GET("/transactions/:id", txHandler.GetByID)
		protected.PATCH("/transactions/:id", txHandler.Update)
		protected.DELETE("/transactions/:id", txHandler.Delete)
	}

	return router
}
