package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	AUTH_TYPE_KEY      contextKey = "auth_type"
	WALLET_ADDRESS_KEY contextKey = "wallet_address"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string // HMAC signing secret shared with the web frontend
	APIKeys   []string
}

// WalletClaims carries the authenticated wallet address. The frontend issues
// tokens with the address in the "data" claim.
type WalletClaims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

// AuthResult holds the result of authentication
type AuthResult struct {
	Success  bool
	AuthType string // "jwt" or "apikey"
	Address  string
	Error    error
}

// Authenticate validates the Authorization header and returns the authentication result
func Authenticate(authHeader string, cfg AuthConfig) AuthResult {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	result := AuthResult{
		Success: false,
	}

	if authHeader == "" {
		result.Error = errors.New("missing Authorization header")
		return result
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		result.Error = errors.New("invalid Authorization header format")
		return result
	}

	authType := strings.ToLower(parts[0])
	credentials := parts[1]

	switch authType {
	case "bearer":
		// JWT authentication
		address, err := validateJWT(credentials, cfg.JWTSecret)
		if err != nil {
			result.Error = err
			return result
		}
		result.Success = true
		result.AuthType = "jwt"
		result.Address = address

	case "apikey":
		// API Key authentication
		if !apiKeyMap[credentials] {
			result.Error = errors.New("invalid API key")
			return result
		}
		result.Success = true
		result.AuthType = "apikey"

	default:
		result.Error = fmt.Errorf("unsupported authorization type: %s", authType)
		return result
	}

	return result
}

// Auth returns a gin middleware authenticating wallet JWTs
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := Authenticate(c.GetHeader("Authorization"), cfg)

		if !result.Success || result.AuthType != "jwt" {
			abortUnauthorized(c, result.Error)
			return
		}

		c.Set(string(AUTH_TYPE_KEY), result.AuthType)
		c.Set(string(WALLET_ADDRESS_KEY), result.Address)
		c.Next()
	}
}

// APIKeyAuth returns a gin middleware that only accepts API key
// authentication. Used by the sales tracker endpoints.
func APIKeyAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := Authenticate(c.GetHeader("Authorization"), cfg)

		if !result.Success || result.AuthType != "apikey" {
			err := result.Error
			if err == nil {
				err = errors.New("API key required")
			}
			abortUnauthorized(c, err)
			return
		}

		c.Set(string(AUTH_TYPE_KEY), result.AuthType)
		c.Next()
	}
}

// WalletAddress returns the authenticated wallet address set by Auth
func WalletAddress(c *gin.Context) (string, bool) {
	address := c.GetString(string(WALLET_ADDRESS_KEY))
	return address, address != ""
}

func abortUnauthorized(c *gin.Context, err error) {
	logger.Warn("authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status": "failed",
		"data":   "unauthorized",
	})
}

// validateJWT validates an HS256 token and returns the wallet address it
// carries
func validateJWT(tokenString string, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not configured")
	}

	claims := &WalletClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if claims.Data == "" {
		return "", errors.New("token missing wallet address")
	}
	return domain.NormalizeAddress(claims.Data), nil
}
