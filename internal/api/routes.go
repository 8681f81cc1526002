package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/auth"
	"github.com/ajharbinger/churnguard/internal/database"
	"github.com/ajharbinger/churnguard/internal/metrics"
	"github.com/ajharbinger/churnguard/internal/services"
	"github.com/ajharbinger/churnguard/pkg/config"
)

// SetupRoutes configures the dashboard, the JSON API and the operational endpoints.
// db and m may be nil.
func SetupRoutes(r *gin.Engine, svc *services.Services, cfg *config.Config, db *database.DB, m *metrics.Metrics) error {
	tmpl, err := LoadTemplates()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	dashboardHandler := NewDashboardHandler(svc.Assessment, cfg.IsProduction())
	assessmentHandler := NewAssessmentHandler(svc.Assessment)
	ruleSetHandler := NewRuleSetHandler(svc.RuleSets)
	authHandler := NewAuthHandler(svc.Auth)
	healthHandler := NewHealthHandler(svc.Assessment, db)

	// Dashboard
	r.GET("/", dashboardHandler.Index)
	r.POST("/predict", auth.CSRFMiddleware(), dashboardHandler.Predict)

	// Operational
	r.GET("/health", healthHandler.GetHealth)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Public API routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/token", authHandler.IssueToken)
	}

	// API routes, token-protected when REQUIRE_API_AUTH is set
	protected := r.Group("/api/v1")
	if cfg.RequireAPIAuth {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("REQUIRE_API_AUTH is set but JWT_SECRET is empty")
		}
		protected.Use(auth.JWTMiddleware(auth.NewJWTService(cfg.JWTSecret, 0)))
	}
	{
		protected.POST("/assessments", assessmentHandler.CreateAssessment)
		protected.GET("/variants", assessmentHandler.GetVariants)
		protected.GET("/rulesets", ruleSetHandler.GetRuleSets)
		protected.GET("/rulesets/:id", ruleSetHandler.GetRuleSet)
	}

	return nil
}
