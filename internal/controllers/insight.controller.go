package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"glycolog/internal/features"
	"glycolog/internal/models"
	"glycolog/internal/repository"
	"glycolog/internal/services"
)

type InsightController struct {
	insightRepo repository.InsightRepository
	sessionRepo repository.SessionRepository
	glucoseRepo repository.GlucoseRepository
	userRepo    repository.UserRepository
	explainer   *services.ExplainerService
}

func NewInsightController(
	insightRepo repository.InsightRepository,
	sessionRepo repository.SessionRepository,
	glucoseRepo repository.GlucoseRepository,
	userRepo repository.UserRepository,
	explainer *services.ExplainerService,
) *InsightController {
	return &InsightController{
		insightRepo: insightRepo,
		sessionRepo: sessionRepo,
		glucoseRepo: glucoseRepo,
		userRepo:    userRepo,
		explainer:   explainer,
	}
}

// GetUserInsights godoc
// @Summary Get the authenticated user's saved insights
// @Description List persisted insights, optionally filtered by provenance (attribution, trend, improvement)
// @Tags insight
// @Produce json
// @Security ApiKeyAuth
// @Param provenance query string false "Provenance filter"
// @Success 200 {object} map[string]interface{} "Insights"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Failed to load insights"
// @Router /insight/me [get]
func (ic *InsightController) GetUserInsights(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Unauthorized access",
		})
		return
	}

	provenance := c.Query("provenance")

	var insights []models.Insight
	var err error
	if provenance != "" {
		insights, err = ic.insightRepo.FindByUserIDAndProvenance(userID.(uint), provenance)
	} else {
		insights, err = ic.insightRepo.FindByUserID(userID.(uint))
	}
	if err != nil {
		log.Printf("Error loading insights for user %d: %v", userID.(uint), err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load insights",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Insights retrieved successfully",
		"data":    insights,
	})
}

// ExplainSymptoms godoc
// @Summary Generate symptom explanations on demand
// @Description Run the attribution pipeline against the user's current model bundle and return the rendered sentences without persisting them
// @Tags insight
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Explanations"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Explanation failed"
// @Router /insight/me/explain [post]
func (ic *InsightController) ExplainSymptoms(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Unauthorized access",
		})
		return
	}

	unit := ic.displayUnit(userID.(uint))

	candidates, skips, err := ic.explainer.Explain(userID.(uint), unit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to generate explanations",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Explanations generated successfully",
		"data": gin.H{
			"explanations": candidates,
			"skipped":      skips,
		},
	})
}

// MineTrends godoc
// @Summary Mine rule-based trend insights on demand
// @Description Build the user's feature table and run the fixed trend predicates over it; results are returned, not persisted
// @Tags insight
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Trend insights"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Trend mining failed"
// @Router /insight/me/trends [post]
func (ic *InsightController) MineTrends(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Unauthorized access",
		})
		return
	}

	sessions, err := ic.sessionRepo.GetCompletedSessionsByUserID(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load sessions",
			"error":   err.Error(),
		})
		return
	}
	logs, err := ic.glucoseRepo.GetLogsByUserID(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load glucose logs",
			"error":   err.Error(),
		})
		return
	}

	table := features.BuildUserTable(sessions, logs)
	trends := services.MineTrends(table.Rows)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Trend insights generated successfully",
		"data": gin.H{
			"trends":           trends,
			"usable_sessions":  len(table.Rows),
			"skipped_sessions": table.Skipped,
		},
	})
}

func (ic *InsightController) displayUnit(userID uint) string {
	user, err := ic.userRepo.GetUserByID(userID)
	if err != nil {
		return services.UnitMgdL
	}
	if user.GlucoseUnit == services.UnitMmolL {
		return services.UnitMmolL
	}
	return services.UnitMgdL
}
