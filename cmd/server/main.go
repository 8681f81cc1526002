package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ajharbinger/churnguard/internal/api"
	"github.com/ajharbinger/churnguard/internal/database"
	"github.com/ajharbinger/churnguard/internal/logger"
	"github.com/ajharbinger/churnguard/internal/metrics"
	"github.com/ajharbinger/churnguard/internal/middleware"
	"github.com/ajharbinger/churnguard/internal/predictor"
	"github.com/ajharbinger/churnguard/internal/repository"
	"github.com/ajharbinger/churnguard/internal/services"
	"github.com/ajharbinger/churnguard/pkg/config"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Initialize configuration
	cfg := config.New()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		log.Debug("No .env file found")
	}

	// Optional database rule-set source
	var db *database.DB
	var ruleSetRepo repository.RuleSetRepository

	// log.Fatal exits without running deferred calls, so the pool is closed here first
	fatal := func(msg string, err error, fields ...interface{}) {
		if db != nil {
			_ = db.Close()
		}
		log.Fatal(msg, err, fields...)
	}

	if cfg.HasDatabase() {
		var err error
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to open database", err)
		}
		defer db.Close()

		if err := db.HealthCheck(); err != nil {
			fatal("Failed to connect to database", err)
		}

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			fatal("Failed to run migrations", err)
		}
		ruleSetRepo = repository.NewRuleSetRepository(db)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	ruleSets, err := services.LoadRuleSets(ctx, cfg.RuleSetFile, ruleSetRepo, log)
	cancel()
	if err != nil {
		fatal("Failed to load rule sets", err)
	}

	var artifacts *predictor.Artifacts
	if cfg.HasModel() {
		artifacts, err = predictor.LoadArtifacts(cfg.ModelDir)
		if err != nil {
			fatal("Failed to load model artifacts", err, "dir", cfg.ModelDir)
		}
		log.Info("Loaded model artifacts", "dir", cfg.ModelDir, "features", len(artifacts.FeatureNames()))
	}

	var m *metrics.Metrics
	if cfg.EnableMetrics {
		m = metrics.New()
	}

	svc, err := services.NewServices(cfg, services.Dependencies{
		RuleSets:  ruleSets,
		Artifacts: artifacts,
		Repo:      ruleSetRepo,
		Metrics:   m,
		Logger:    log,
	})
	if err != nil {
		fatal("Failed to create services", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.GetTrustedProxies()); err != nil {
		fatal("Invalid trusted proxies", err)
	}

	// Add request middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(log))
	if m != nil {
		r.Use(middleware.MetricsMiddleware(m))
	}
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware(cfg.MaxRequestSize))

	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitingMiddleware(cfg.RateLimitPerMinute))
	}

	// Add recovery middleware
	r.Use(gin.Recovery())

	if err := api.SetupRoutes(r, svc, cfg, db, m); err != nil {
		fatal("Failed to setup routes", err)
	}

	log.Info("Server starting", "port", cfg.Port, "env", cfg.Environment, "default_variant", cfg.DefaultVariant,
		"rule_sets", len(ruleSets), "model_loaded", artifacts != nil)
	if err := r.Run(":" + cfg.Port); err != nil {
		fatal("Failed to start server", err)
	}
}
