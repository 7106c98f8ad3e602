package auth

// RegisterRequest is the registration payload. Both fields are
// required; the password is additionally checked against the configured
// password policy by the service.
type RegisterRequest struct {
	UserName string `json:"userName" validate:"required" example:"jcdenton"`
	Password string `json:"password" validate:"required" example:"bionicman"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	UserName string `json:"userName" validate:"required" example:"jcdenton"`
	Password string `json:"password" validate:"required" example:"bionicman"`
}

// TokenResponse is returned on successful login or refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	// ExpiresIn is the unix timestamp at which the access token expires.
	ExpiresIn int64 `json:"expires_in" example:"1700000000"`
}

// RefreshTokenRequest carries a refresh token to exchange for a new
// access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
