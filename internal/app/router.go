package app

import (
	"skillverify_backend/docs"
	"skillverify_backend/internal/config"
	"skillverify_backend/internal/middleware"
	"skillverify_backend/internal/model"
	"skillverify_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// Credential verification is intentionally unauthenticated:
		// anyone holding the public id may resolve it.
		public.GET("/credentials/verify/:credentialId", c.credential.Verify)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.POST("/assessments", c.assessment.Start)
		authGroup.POST("/assessments/submit", c.assessment.Submit)
		authGroup.GET("/assessments/history", c.assessment.History)

		authGroup.GET("/credentials", c.credential.List)
		authGroup.POST("/credentials/:credentialId/share", c.credential.Share)
	}

	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.POST("/credentials/:credentialId/revoke", c.credential.Revoke)
	}
}
