package routes

import (
	"glycolog/internal/controllers"
	"glycolog/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterAnalysisRoutes(router *gin.Engine, analysisController *controllers.AnalysisController) {
	analysisRoutes := router.Group("/analysis")
	analysisRoutes.Use(middleware.AuthMiddleware())
	{
		analysisRoutes.POST("/me", analysisController.TriggerAnalysis)
		analysisRoutes.POST("/all", analysisController.TriggerAnalysisForAll)
		analysisRoutes.GET("/status", analysisController.GetWorkerStatus)
	}
}
