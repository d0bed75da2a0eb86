package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"glycolog/internal/models"
	"glycolog/internal/repository"
	"glycolog/internal/services"
)

type ForecastController struct {
	forecast *services.ForecastService
	userRepo repository.UserRepository
}

func NewForecastController(forecast *services.ForecastService, userRepo repository.UserRepository) *ForecastController {
	return &ForecastController{
		forecast: forecast,
		userRepo: userRepo,
	}
}

// GetForecast godoc
// @Summary Forecast the user's glucose levels
// @Description Produce short-horizon glucose point forecasts with uncertainty bounds from the user's merged glucose series
// @Tags forecast
// @Produce json
// @Security ApiKeyAuth
// @Param horizon query int false "Forecast horizon in hours (default 24, max 72)"
// @Param unit query string false "Display unit: mg/dL or mmol/L (defaults to the user's preference)"
// @Success 200 {object} map[string]interface{} "Forecast"
// @Failure 400 {object} map[string]interface{} "Invalid horizon"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Forecast failed"
// @Router /forecast/me [get]
func (fc *ForecastController) GetForecast(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Unauthorized access",
		})
		return
	}

	horizon := services.DefaultForecastHorizonHours
	if raw := c.Query("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid horizon parameter",
				"error":   "horizon must be a positive number of hours",
			})
			return
		}
		horizon = parsed
	}

	unit := c.Query("unit")
	if unit == "" {
		unit = fc.displayUnit(userID.(uint))
	}
	if unit != services.UnitMgdL && unit != services.UnitMmolL {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid unit parameter",
			"error":   "unit must be mg/dL or mmol/L",
		})
		return
	}

	resp, err := fc.forecast.Forecast(c.Request.Context(), userID.(uint), horizon, unit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to generate forecast",
			"error":   err.Error(),
		})
		return
	}

	if resp.Status == models.ForecastStatusInsufficientData {
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": resp.Message,
			"data":    resp,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Forecast generated successfully",
		"data":    resp,
	})
}

func (fc *ForecastController) displayUnit(userID uint) string {
	user, err := fc.userRepo.GetUserByID(userID)
	if err != nil {
		return services.UnitMgdL
	}
	if user.GlucoseUnit == services.UnitMmolL {
		return services.UnitMmolL
	}
	return services.UnitMgdL
}
