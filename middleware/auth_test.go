package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"median/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "user_42",
		"org_id": "org_7",
		"email":  "ada@example.com",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
}

func identityRouter(auth *Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(AuthRequired(auth))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":    UserID(c),
			"account": Scope(c).AccountID,
			"email":   c.GetString(ContextEmail),
		})
	})
	return r
}

func TestNewAuthenticator_RequiresKey(t *testing.T) {
	_, err := NewAuthenticator(config.AuthConfig{RequireAuth: true})
	assert.Error(t, err)

	_, err = NewAuthenticator(config.AuthConfig{RequireAuth: true, PublicKeyPEM: "not pem"})
	assert.Error(t, err)

	auth, err := NewAuthenticator(config.AuthConfig{})
	require.NoError(t, err)
	assert.False(t, auth.Required())
}

func TestAuthenticator_ValidateHS256(t *testing.T) {
	auth, err := NewAuthenticator(config.AuthConfig{RequireAuth: true, JWTSecret: testSecret})
	require.NoError(t, err)

	claims, err := auth.Validate(signHS256(t, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "user_42", AccountID: "org_7", Email: "ada@example.com"}, claims)
}

func TestAuthenticator_AccountFallsBackToSubject(t *testing.T) {
	auth, err := NewAuthenticator(config.AuthConfig{RequireAuth: true, JWTSecret: testSecret})
	require.NoError(t, err)

	c := validClaims()
	delete(c, "org_id")
	claims, err := auth.Validate(signHS256(t, c))
	require.NoError(t, err)
	assert.Equal(t, "user_42", claims.AccountID)
}

func TestAuthenticator_Rejects(t *testing.T) {
	auth, err := NewAuthenticator(config.AuthConfig{
		RequireAuth: true,
		JWTSecret:   testSecret,
		Issuer:      "median",
	})
	require.NoError(t, err)

	withIssuer := func(mutate func(jwt.MapClaims)) jwt.MapClaims {
		c := validClaims()
		c["iss"] = "median"
		mutate(c)
		return c
	}

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, withIssuer(func(jwt.MapClaims) {})).SignedString([]byte("other"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong key", token: otherKey},
		{name: "expired", token: signHS256(t, withIssuer(func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }))},
		{name: "no expiry", token: signHS256(t, withIssuer(func(c jwt.MapClaims) { delete(c, "exp") }))},
		{name: "wrong issuer", token: signHS256(t, withIssuer(func(c jwt.MapClaims) { c["iss"] = "someone" }))},
		{name: "no subject", token: signHS256(t, withIssuer(func(c jwt.MapClaims) { delete(c, "sub") }))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestAuthenticator_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	auth, err := NewAuthenticator(config.AuthConfig{RequireAuth: true, PublicKeyPEM: string(pemKey)})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims()).SignedString(key)
	require.NoError(t, err)
	claims, err := auth.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user_42", claims.UserID)

	// an HMAC token must not pass against an RSA key
	_, err = auth.Validate(signHS256(t, validClaims()))
	assert.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	auth, err := NewAuthenticator(config.AuthConfig{RequireAuth: true, JWTSecret: testSecret})
	require.NoError(t, err)
	router := identityRouter(auth)
	token := signHS256(t, validClaims())

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid header", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "valid query token", query: "?access_token=" + token, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"user":"user_42","account":"org_7","email":"ada@example.com"}`, w.Body.String())
			}
		})
	}
}

func TestAuthRequired_DisabledUsesTestIdentity(t *testing.T) {
	auth, err := NewAuthenticator(config.AuthConfig{RequireAuth: false})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	identityRouter(auth).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user_test123","account":"acct_test123","email":"test@example.com"}`, w.Body.String())
}
