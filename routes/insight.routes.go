package routes

import (
	"glycolog/internal/controllers"
	"glycolog/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterInsightRoutes(router *gin.Engine, insightController *controllers.InsightController) {
	insightRoutes := router.Group("/insight")
	insightRoutes.Use(middleware.AuthMiddleware())
	{
		insightRoutes.GET("/me", insightController.GetUserInsights)
		insightRoutes.POST("/me/explain", insightController.ExplainSymptoms)
		insightRoutes.POST("/me/trends", insightController.MineTrends)
	}
}
