package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/augmentations-api/apperror"
	"github.com/user/augmentations-api/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Service implements registration, login and token refresh on top of a
// UserStore.
type Service struct {
	store      UserStore
	authConfig config.AuthConfig
	policy     config.PasswordPolicy
}

// NewService creates a Service.
func NewService(store UserStore, authConfig config.AuthConfig, policy config.PasswordPolicy) *Service {
	return &Service{
		store:      store,
		authConfig: authConfig,
		policy:     policy,
	}
}

// CustomClaims is the JWT payload: the standard registered claims plus
// the user identity and the token's role ("access" or "refresh").
type CustomClaims struct {
	UserID    int    `json:"user_id"`
	UserName  string `json:"user_name"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Register creates a new user account. The password is checked against
// the configured policy before hashing; violations come back as a
// field-level validation error so the client sees every unmet rule.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if violations := CheckPasswordPolicy(&s.policy, req.Password); len(violations) > 0 {
		fields := map[string]string{"password": joinViolations(violations)}
		return nil, apperror.NewFieldValidationError("password does not meet the policy", fields)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		UserName:       req.UserName,
		HashedPassword: string(hashedPassword),
		Role:           RoleUser,
	}
	return s.store.CreateUser(ctx, user)
}

// Login authenticates the user and returns an access/refresh token
// pair. Unknown usernames and wrong passwords both surface as the same
// "invalid credentials" error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.store.GetUserByUserName(ctx, req.UserName)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	return s.generateTokens(user)
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is returned unchanged; it stays valid until its
// own expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.ValidateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("invalid refresh token", err)
	}

	user := &User{ID: claims.UserID, UserName: claims.UserName, Role: claims.Role}
	accessToken, accessExpiresAt, err := s.generateSpecificToken(user, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate access token", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    accessExpiresAt.Unix(),
	}, nil
}

func (s *Service) generateTokens(user *User) (*TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.generateSpecificToken(user, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate access token", err)
	}

	refreshToken, _, err := s.generateSpecificToken(user, tokenTypeRefresh, s.authConfig.RefreshTokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate refresh token", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    accessExpiresAt.Unix(),
	}, nil
}

func (s *Service) generateSpecificToken(user *User, tokenType string, duration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(duration)
	claims := &CustomClaims{
		UserID:    user.ID,
		UserName:  user.UserName,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.authConfig.Issuer,
			Audience:  jwt.ClaimStrings{s.authConfig.Audience},
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// ValidateToken parses and verifies a token of the expected type.
// Issuer and audience checks are applied only when enabled in the auth
// configuration; both default to off.
func (s *Service) ValidateToken(tokenString, expectedTokenType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	opts := parserOptions(&s.authConfig)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedTokenType, claims.TokenType)
	}
	return claims, nil
}

// parserOptions translates the configured validation flags into jwt
// parser options.
func parserOptions(cfg *config.AuthConfig) []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.ValidateIssuer {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.ValidateAudience {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return opts
}

func joinViolations(violations []string) string {
	msg := violations[0]
	for _, v := range violations[1:] {
		msg += "; " + v
	}
	return msg
}
