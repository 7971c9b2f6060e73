package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims identifies the caller of mutating endpoints. Tokens are
// issued out of band by the campus identity service.
type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
