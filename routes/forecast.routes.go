package routes

import (
	"glycolog/internal/controllers"
	"glycolog/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterForecastRoutes(router *gin.Engine, forecastController *controllers.ForecastController) {
	forecastRoutes := router.Group("/forecast")
	forecastRoutes.Use(middleware.AuthMiddleware())
	{
		forecastRoutes.GET("/me", forecastController.GetForecast)
	}
}
