package jwtutil

import (
	xerrors "ledger-service/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = xerrors.ErrInvalidToken

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg JWTConfig) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

func (v *Verifier) ParseAndValidate(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parser := jwt.NewParser(opts...)

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.AdminID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
