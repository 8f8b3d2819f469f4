package models

import "time"

// Access Token Response
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	CompanyID    string    `json:"company_id,omitempty"`
	Role         string    `json:"role"`
	FirstLogin   bool      `json:"first_login"`
	TokenID      string    `json:"token_id"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Token Refresh Request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
	GrantType    string `json:"grant_type"`
}

// Token Revocation Request. The bearer token is always revoked; RefreshToken
// is revoked too when present.
type RevokeTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}
