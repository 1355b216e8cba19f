package routes

import (
	"usuarios-api/handlers"
	"usuarios-api/middleware"
	"usuarios-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Logger        *zap.Logger
	AllowedOrigin string
	UserHandler   *handlers.UserHandler
	HealthHandler *handlers.HealthHandler
	Tokens        services.TokenService
}

// New builds the router used by main and by the end-to-end tests.
func New(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(middleware.CORS(d.AllowedOrigin))

	router.GET("/health", d.HealthHandler.Health)

	user := router.Group("/user")
	{
		// Public routes
		user.POST("/cadastro", d.UserHandler.Register)
		user.POST("/login", d.UserHandler.Login)
		user.POST("/verify-token", d.UserHandler.VerifyToken)

		// Protected routes
		protected := user.Group("")
		protected.Use(middleware.AuthMiddleware(d.Tokens))
		{
			protected.GET("/usuarios", d.UserHandler.ListUsers)
			protected.GET("/usuario", d.UserHandler.GetSelf)
			protected.PUT("/usuario/:id", d.UserHandler.UpdateUser)
			protected.DELETE("/usuario/:id", d.UserHandler.DeleteUser)
		}
	}

	return router
}
