package gateway

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a bearer token issued by the product API.
type Token struct {
	Value     string
	Type      string
	Subject   string
	ExpiresAt time.Time
}

// InspectToken reads the subject and expiry of a JWT without verifying its
// signature. Only the API can verify it; the claims are used to expire the
// local login early.
func InspectToken(raw string) (Token, error) {
	tok := Token{Value: raw, Type: "bearer"}
	if raw == "" {
		return tok, errors.New("gateway: empty token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return tok, err
	}
	if sub, err := claims.GetSubject(); err == nil {
		tok.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tok.ExpiresAt = exp.Time
	}
	return tok, nil
}
