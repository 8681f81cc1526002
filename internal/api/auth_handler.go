package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/services"
)

// AuthHandler exchanges API credentials for bearer tokens
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new auth handler with service injection
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// TokenRequest represents a token request
type TokenRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
}

// IssueToken returns a bearer token for valid client credentials
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.authService.IssueToken(req.ClientID, req.APIKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
