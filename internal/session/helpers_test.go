package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func jwtWithExpiry(exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(exp)}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
}
