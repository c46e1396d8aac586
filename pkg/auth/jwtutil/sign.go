package jwtutil

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSigner(cfg JWTConfig) *Signer {
	return &Signer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.ExpireHours) * time.Hour,
	}
}

// Sign issues an HS256 token for the admin, valid for the configured TTL.
func (s *Signer) Sign(adminID, loginID string, now time.Time) (string, error) {
	claims := &Claims{
		AdminID: adminID,
		LoginID: loginID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}
