package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	AdminID string `json:"uid"`
	LoginID string `json:"login_id,omitempty"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpireHours int
}
