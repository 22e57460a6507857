package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-ugc/internal/api/shared/errors"
	"github.com/feral-file/ff-ugc/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	AUTH_SUBJECT_KEY contextKey = "auth_subject"
	JWT_CLAIMS_KEY   contextKey = "jwt_claims"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
}

// AuthResult holds the result of authentication
type AuthResult struct {
	Success     bool
	Claims      *jwt.RegisteredClaims
	AuthSubject string
	Error       error
}

// Authenticate validates the Authorization header against the RSA public key and returns the authentication result
func Authenticate(authHeader string, publicKey *rsa.PublicKey) AuthResult {
	result := AuthResult{
		Success: false,
	}

	if authHeader == "" {
		result.Error = errors.New("missing Authorization header")
		return result
	}

	// Parse the authorization header
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		result.Error = errors.New("invalid Authorization header format")
		return result
	}

	authType := strings.ToLower(parts[0])
	if authType != "bearer" {
		result.Error = fmt.Errorf("unsupported authorization type: %s", authType)
		return result
	}

	claims, err := validateJWT(parts[1], publicKey)
	if err != nil {
		result.Error = err
		return result
	}
	if claims.Subject == "" {
		result.Error = errors.New("token has no subject")
		return result
	}

	result.Success = true
	result.Claims = claims
	result.AuthSubject = claims.Subject
	return result
}

// Auth returns a gin middleware for bearer JWT authentication.
// The token subject is the external auth principal of the caller.
func Auth(cfg AuthConfig) (gin.HandlerFunc, error) {
	if cfg.JWTPublicKey == "" {
		return nil, errors.New("JWT public key not configured")
	}

	publicKey, err := parseRSAPublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	return func(c *gin.Context) {
		result := Authenticate(c.GetHeader("Authorization"), publicKey)

		if !result.Success {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(result.Error),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", result.Error.Error())
			c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
			return
		}

		// Store authentication info in context
		c.Set(JWT_CLAIMS_KEY, result.Claims)
		c.Set(AUTH_SUBJECT_KEY, result.AuthSubject)
		c.Request = c.Request.WithContext(logger.WithFields(c.Request.Context(), zap.String("subject", result.AuthSubject)))

		c.Next()
	}, nil
}

// Subject returns the authenticated principal stored by Auth, empty when the request is anonymous
func Subject(c *gin.Context) string {
	value, ok := c.Get(AUTH_SUBJECT_KEY)
	if !ok {
		return ""
	}
	subject, _ := value.(string)
	return subject
}

// validateJWT validates a JWT token with RSA signature and returns claims
func validateJWT(tokenString string, publicKey *rsa.PublicKey) (*jwt.RegisteredClaims, error) {
	// Parse and validate the token with claims
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is RSA
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	// Validate standard claims
	now := time.Now()

	// Check expiration
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now) {
		return nil, errors.New("token has expired")
	}

	// Check not before
	if claims.NotBefore != nil && claims.NotBefore.After(now) {
		return nil, errors.New("token not yet valid")
	}

	return claims, nil
}

// parseRSAPublicKey parses an RSA public key from PEM format
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	// Try parsing as PKIX (most common format)
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		// Try parsing as PKCS1 format
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}
