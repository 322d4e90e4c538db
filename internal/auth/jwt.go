package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the authenticated lecturer. The engine never reads an
// ambient identity; handlers pass the resolved lecturer id down explicitly.
type Claims struct {
	LecturerID string `json:"lecturer_id"`
	jwt.RegisteredClaims
}

func NewToken(secret, issuer, lecturerID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		LecturerID: lecturerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   lecturerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, issuer, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
