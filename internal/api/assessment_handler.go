package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/services"
)

// AssessmentHandler serves the JSON assessment API
type AssessmentHandler struct {
	assessmentService services.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler with service injection
func NewAssessmentHandler(assessmentService services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
	}
}

// CreateAssessment scores the profile in the request body
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	var req services.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := h.assessmentService.Assess(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetVariants lists the dashboard variants and their scorers
func (h *AssessmentHandler) GetVariants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"variants":  h.assessmentService.ListVariants(),
		"default":   h.assessmentService.DefaultVariant(),
		"timestamp": time.Now(),
	})
}
