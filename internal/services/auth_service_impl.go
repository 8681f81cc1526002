package services

import (
	"crypto/subtle"

	"github.com/ajharbinger/churnguard/internal/auth"
	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/pkg/config"
)

// authServiceImpl implements AuthService for the single configured API client
type authServiceImpl struct {
	jwtService *auth.JWTService
	cfg        *config.Config
}

// newAuthService creates a new auth service implementation
func newAuthService(cfg *config.Config) AuthService {
	return &authServiceImpl{
		jwtService: auth.NewJWTService(cfg.JWTSecret, 0),
		cfg:        cfg,
	}
}

// IssueToken checks the client credentials and returns a bearer token
func (s *authServiceImpl) IssueToken(clientID, apiKey string) (*TokenResponse, error) {
	if !s.cfg.HasAPICredentials() {
		return nil, errors.ServiceError("API authentication is not configured", nil).WithOperation("IssueToken")
	}

	if clientID == "" || apiKey == "" {
		return nil, errors.InvalidInput("client_id and api_key are required", nil).WithOperation("IssueToken")
	}

	clientOK := subtle.ConstantTimeCompare([]byte(clientID), []byte(s.cfg.APIClientID)) == 1
	keyOK := auth.CheckAPIKey(apiKey, s.cfg.APIKeyHash)
	if !clientOK || !keyOK {
		return nil, errors.Unauthorized("invalid credentials", nil).WithOperation("IssueToken")
	}

	token, expiresAt, err := s.jwtService.GenerateToken(clientID, auth.RoleAPIClient)
	if err != nil {
		return nil, errors.InternalError("failed to generate token", err).WithOperation("IssueToken")
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
