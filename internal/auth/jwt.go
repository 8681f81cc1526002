package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ajharbinger/churnguard/internal/errors"
)

// Context keys set by JWTMiddleware
const (
	ClientIDKey = "client_id"
	RoleKey     = "client_role"
)

// RoleAPIClient is the only role issued today
const RoleAPIClient = "api_client"

const (
	issuer          = "churnguard"
	defaultTokenTTL = time.Hour
)

// Claims represents service token claims
type Claims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 service tokens
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a new JWT service. A zero ttl defaults to one hour.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateToken signs a token for an API client
func (j *JWTService) GenerateToken(clientID, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.ttl)
	claims := Claims{
		ClientID: clientID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns its claims
func (j *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// JWTMiddleware requires a valid bearer token
func JWTMiddleware(service *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, errors.Unauthorized("Authentication required", nil))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortWithError(c, errors.Unauthorized("Bearer token required", nil))
			return
		}

		claims, err := service.ValidateToken(tokenString)
		if err != nil {
			abortWithError(c, errors.Unauthorized("Invalid token", err))
			return
		}

		c.Set(ClientIDKey, claims.ClientID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

func abortWithError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{"error": appErr})
}
