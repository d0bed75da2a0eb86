package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"glycolog/internal/repository"
	"glycolog/internal/services"
)

type AnalysisController struct {
	worker   *services.TrainingWorker
	userRepo repository.UserRepository
}

func NewAnalysisController(worker *services.TrainingWorker, userRepo repository.UserRepository) *AnalysisController {
	return &AnalysisController{
		worker:   worker,
		userRepo: userRepo,
	}
}

// TriggerAnalysis godoc
// @Summary Trigger an analysis run for the authenticated user
// @Description Queue an asynchronous retrain-and-insight run; a run already in flight for the user is reused
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Success 202 {object} map[string]interface{} "Analysis queued"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 503 {object} map[string]interface{} "Worker unavailable"
// @Router /analysis/me [post]
func (ac *AnalysisController) TriggerAnalysis(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Unauthorized access",
		})
		return
	}

	jobID, err := ac.worker.SubmitUser(userID.(uint), "manual")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Failed to queue analysis",
			"error":   err.Error(),
		})
		return
	}

	if jobID == "" {
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "success",
			"message": "An analysis run is already in progress for this user",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "success",
		"message": "Analysis queued successfully",
		"data": gin.H{
			"job_id": jobID,
		},
	})
}

// TriggerAnalysisForAll godoc
// @Summary Queue an analysis run for every user
// @Description Maintenance endpoint that schedules a retrain for all users; users with runs in flight are skipped
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Success 202 {object} map[string]interface{} "Runs queued"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Failed to enumerate users"
// @Router /analysis/all [post]
func (ac *AnalysisController) TriggerAnalysisForAll(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Unauthorized access",
		})
		return
	}

	ids, err := ac.userRepo.GetAllUserIDs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to enumerate users",
			"error":   err.Error(),
		})
		return
	}

	queued := 0
	for _, id := range ids {
		jobID, err := ac.worker.SubmitUser(id, "retrain_all")
		if err != nil {
			log.Printf("Failed to queue analysis for user %d: %v", id, err)
			continue
		}
		if jobID != "" {
			queued++
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "success",
		"message": "Analysis runs queued",
		"data": gin.H{
			"users_total":  len(ids),
			"users_queued": queued,
		},
	})
}

// GetWorkerStatus godoc
// @Summary Get training worker status
// @Description Report queue depth, worker count, and broker connectivity
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Worker status"
// @Router /analysis/status [get]
func (ac *AnalysisController) GetWorkerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Worker status retrieved successfully",
		"data":    ac.worker.GetStatus(),
	})
}
