package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/augmentations-api/config"
)

func middlewareConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:            "supersecretkey1234",
		Issuer:               "augmentations-api",
		Audience:             "augmentations-api",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
	}
}

// mintToken signs a token directly so middleware behavior can be tested
// against arbitrary claims.
func mintToken(t *testing.T, secret string, claims *CustomClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func accessClaims(cfg *config.AuthConfig, role string) *CustomClaims {
	now := time.Now()
	return &CustomClaims{
		UserID:    1,
		UserName:  "jcdenton",
		Role:      role,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
		},
	}
}

// protectedHandler records whether the request reached it and what
// claims it saw.
func protectedHandler(reached *bool, gotClaims **CustomClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			*gotClaims = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

func serveWithAuth(cfg *config.AuthConfig, authHeader string) (*httptest.ResponseRecorder, bool, *CustomClaims) {
	var reached bool
	var claims *CustomClaims
	handler := JWTMiddleware(cfg)(protectedHandler(&reached, &claims))

	req := httptest.NewRequest(http.MethodGet, "/api/augmentations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, reached, claims
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	rec, reached, _ := serveWithAuth(middlewareConfig(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTMiddlewareRejectsBadFormat(t *testing.T) {
	rec, reached, _ := serveWithAuth(middlewareConfig(), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTMiddlewareRejectsWrongSecret(t *testing.T) {
	cfg := middlewareConfig()
	token := mintToken(t, "wrong-secret", accessClaims(cfg, RoleUser))

	rec, reached, _ := serveWithAuth(cfg, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	cfg := middlewareConfig()
	claims := accessClaims(cfg, RoleUser)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := mintToken(t, cfg.JWTSecret, claims)

	rec, reached, _ := serveWithAuth(cfg, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTMiddlewareRejectsRefreshToken(t *testing.T) {
	cfg := middlewareConfig()
	claims := accessClaims(cfg, RoleUser)
	claims.TokenType = "refresh"
	token := mintToken(t, cfg.JWTSecret, claims)

	rec, reached, _ := serveWithAuth(cfg, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	cfg := middlewareConfig()
	token := mintToken(t, cfg.JWTSecret, accessClaims(cfg, RoleAdmin))

	rec, reached, claims := serveWithAuth(cfg, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	require.NotNil(t, claims)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWTMiddlewareForeignIssuer(t *testing.T) {
	// Default posture: a token from a different issuer is accepted.
	cfg := middlewareConfig()
	claims := accessClaims(cfg, RoleUser)
	claims.Issuer = "someone-else"
	token := mintToken(t, cfg.JWTSecret, claims)

	rec, _, _ := serveWithAuth(cfg, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Flipping the flag tightens the posture.
	strict := middlewareConfig()
	strict.ValidateIssuer = true
	rec, reached, _ := serveWithAuth(strict, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestRequireRole(t *testing.T) {
	cfg := middlewareConfig()

	var reached bool
	var claims *CustomClaims
	handler := JWTMiddleware(cfg)(RequireRole(RoleAdmin)(protectedHandler(&reached, &claims)))

	// A regular user is forbidden.
	userToken := mintToken(t, cfg.JWTSecret, accessClaims(cfg, RoleUser))
	req := httptest.NewRequest(http.MethodDelete, "/api/augmentations/1", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)

	// An admin passes.
	adminToken := mintToken(t, cfg.JWTSecret, accessClaims(cfg, RoleAdmin))
	req = httptest.NewRequest(http.MethodDelete, "/api/augmentations/1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	var reached bool
	var claims *CustomClaims
	handler := RequireRole(RoleAdmin)(protectedHandler(&reached, &claims))

	req := httptest.NewRequest(http.MethodDelete, "/api/augmentations/1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}
