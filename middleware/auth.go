package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"median/config"
	"median/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AuthRequired.
const (
	ContextUserID    = "user_id"
	ContextAccountID = "account_id"
	ContextEmail     = "email"
)

// Test identity used when auth is disabled.
const (
	TestUserID    = "user_test123"
	TestAccountID = "acct_test123"
	TestEmail     = "test@example.com"
)

// Claims is the caller identity taken from a token.
type Claims struct {
	UserID    string
	AccountID string
	Email     string
}

// Authenticator validates bearer tokens signed with an HMAC secret or an
// RSA key.
type Authenticator struct {
	required bool
	method   string
	key      any
	issuer   string
	audience string
}

// NewAuthenticator builds an Authenticator from cfg. A public key takes
// precedence over a shared secret.
func NewAuthenticator(cfg config.AuthConfig) (*Authenticator, error) {
	a := &Authenticator{
		required: cfg.RequireAuth,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		a.method, a.key = jwt.SigningMethodRS256.Alg(), key
	case cfg.JWTSecret != "":
		a.method, a.key = jwt.SigningMethodHS256.Alg(), []byte(cfg.JWTSecret)
	case cfg.RequireAuth:
		return nil, errors.New("auth required but no signing key configured")
	}
	return a, nil
}

// Required reports whether requests must carry a token. A nil
// Authenticator requires nothing.
func (a *Authenticator) Required() bool {
	return a != nil && a.required
}

// Validate parses token and returns its claims.
func (a *Authenticator) Validate(token string) (Claims, error) {
	if a.key == nil {
		return Claims{}, errors.New("no signing key configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{a.method}), jwt.WithExpirationRequired()}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}
	if !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, errors.New("token has no subject")
	}

	out := Claims{UserID: sub, AccountID: sub}
	if org, ok := claims["org_id"].(string); ok && org != "" {
		out.AccountID = org
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, nil
}

// AuthRequired checks the bearer token and stores the caller identity in
// the context. Websocket clients may pass the token as ?access_token=.
func AuthRequired(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Required() {
			setClaims(c, Claims{UserID: TestUserID, AccountID: TestAccountID, Email: TestEmail})
			c.Next()
			return
		}

		token := c.Query("access_token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
				c.Abort()
				return
			}
			token = parts[1]
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		claims, err := auth.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextAccountID, claims.AccountID)
	c.Set(ContextEmail, claims.Email)
}

// UserID returns the authenticated user id, or "" outside AuthRequired.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Scope returns the caller identity that reads and writes are scoped to.
func Scope(c *gin.Context) models.Scope {
	return models.Scope{UserID: c.GetString(ContextUserID), AccountID: c.GetString(ContextAccountID)}
}
