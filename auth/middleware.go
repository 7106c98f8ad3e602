package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/augmentations-api/apperror"
	"github.com/user/augmentations-api/config"
)

// JWTMiddleware validates the Authorization bearer token on every
// request and stores the claims in the request context. Issuer and
// audience validation follow the configured flags; with both off (the
// default) any token signed with the shared secret is accepted.
func JWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	opts := parserOptions(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			claims := &CustomClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			}, opts...)
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					WriteError(w, r, apperror.NewAuthError("invalid token signature", nil))
					return
				}
				WriteError(w, r, apperror.NewAuthError("invalid token", err))
				return
			}
			if !token.Valid {
				WriteError(w, r, apperror.NewAuthError("invalid token", nil))
				return
			}
			if claims.TokenType != tokenTypeAccess {
				WriteError(w, r, apperror.NewAuthError("token is not an access token", nil))
				return
			}
			if claims.UserID == 0 {
				WriteError(w, r, apperror.NewAuthError("invalid token: user_id claim is missing", nil))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole rejects requests whose authenticated user lacks the given
// role. It must run after JWTMiddleware.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, r, apperror.NewAuthError("no authentication context found", nil))
				return
			}
			if claims.Role != role {
				WriteError(w, r, apperror.NewForbiddenError("insufficient permissions", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
