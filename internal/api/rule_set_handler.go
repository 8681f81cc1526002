package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/scoring"
	"github.com/ajharbinger/churnguard/internal/services"
)

// RuleSetHandler exposes the loaded rule tables
type RuleSetHandler struct {
	ruleSetService services.RuleSetService
}

// NewRuleSetHandler creates a new rule set handler with service injection
func NewRuleSetHandler(ruleSetService services.RuleSetService) *RuleSetHandler {
	return &RuleSetHandler{
		ruleSetService: ruleSetService,
	}
}

// GetRuleSets returns every loaded rule set. ?format=yaml returns the rule-set file layout.
func (h *RuleSetHandler) GetRuleSets(c *gin.Context) {
	sets := h.ruleSetService.ListRuleSets()

	if c.Query("format") == "yaml" {
		data, err := scoring.MarshalRuleSetsYAML(sets)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", data)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rule_sets": sets,
		"count":     len(sets),
		"timestamp": time.Now(),
	})
}

// GetRuleSet returns one rule set, including stored ones that are not active
func (h *RuleSetHandler) GetRuleSet(c *gin.Context) {
	rs, err := h.ruleSetService.GetRuleSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rule_set":  rs,
		"timestamp": time.Now(),
	})
}
