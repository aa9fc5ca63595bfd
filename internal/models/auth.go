package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user by SP number.
type LoginRequest struct {
	SPNo      string `json:"sp_no" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshToken is a stored, revocable refresh token.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"token"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress string     `db:"ip_address" json:"ip_address"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID           string   `json:"id"`
	SPNo         string   `json:"sp_no"`
	FullName     string   `json:"full_name"`
	Role         UserRole `json:"role"`
	CanteenID    string   `json:"canteen_id"`
	CanteenName  string   `json:"canteen_name"`
	LocationID   string   `json:"location_id"`
	LocationName string   `json:"location_name"`
}

// JWTClaims represents the JWT payload for access tokens. Canteen and
// location travel in the token because they are fixed per profile.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	SPNo         string   `json:"sp_no"`
	Role         UserRole `json:"role"`
	FullName     string   `json:"full_name"`
	CanteenID    string   `json:"canteen_id"`
	CanteenName  string   `json:"canteen_name"`
	LocationID   string   `json:"location_id"`
	LocationName string   `json:"location_name"`
	jwt.RegisteredClaims
}
