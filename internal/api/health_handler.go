package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/database"
	"github.com/ajharbinger/churnguard/internal/services"
)

// HealthHandler reports whether the scorers and the optional database are usable
type HealthHandler struct {
	assessmentService services.AssessmentService
	db                *database.DB
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(assessmentService services.AssessmentService, db *database.DB) *HealthHandler {
	return &HealthHandler{
		assessmentService: assessmentService,
		db:                db,
	}
}

// GetHealth returns 200 when the default variant can score and the database, if configured, answers
func (h *HealthHandler) GetHealth(c *gin.Context) {
	healthy := false
	variants := h.assessmentService.ListVariants()
	for _, v := range variants {
		if v.Default && v.Available {
			healthy = true
		}
	}

	response := gin.H{
		"variants":  variants,
		"timestamp": time.Now(),
	}

	if h.db != nil {
		dbHealth := gin.H{"healthy": true, "stats": h.db.GetStats()}
		if err := h.db.HealthCheck(); err != nil {
			healthy = false
			dbHealth["healthy"] = false
			dbHealth["error"] = err.Error()
		}
		response["database"] = dbHealth
	}

	response["healthy"] = healthy

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}
