package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminSubject is the JWT subject of publishing tokens.
const AdminSubject = "admin"

// LoginRequest represents the publisher login request
type LoginRequest struct {
	Password string `json:"password"`
}

// AuthTokens is returned by a successful login
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Claims represents the publisher's JWT claims
type Claims struct {
	Scope string `json:"scope"`

	jwt.RegisteredClaims
}

// ScopePublish allows writing posts and patrons.
const ScopePublish = "feeds:publish"
