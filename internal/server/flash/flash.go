// Package flash signs one-shot notices carried across a redirect in a cookie.
package flash

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL bounds how long a notice survives when the redirect is never followed.
const TTL = time.Minute

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

type Notice struct {
	Kind    Kind
	Message string
}

var ErrInvalid = errors.New("invalid flash token")

// Claims carries a notice in a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Kind    Kind   `json:"kind"`
	Message string `json:"msg"`
}

func Sign(n Notice, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		Kind:    n.Kind,
		Message: n.Message,
	})
	return token.SignedString(secretKey)
}

// Parse verifies tokenString and returns its notice. Expired, tampered and
// malformed tokens all report ErrInvalid.
func Parse(tokenString string, secretKey []byte) (Notice, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Notice{}, errors.Join(ErrInvalid, err)
	}

	if claims.Kind != Success && claims.Kind != Error {
		return Notice{}, ErrInvalid
	}
	return Notice{Kind: claims.Kind, Message: claims.Message}, nil
}
