// Package auth signs and verifies the bearer tokens issued at sign-in.
// The token payload carries only the user's email.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mbayed/filevault/internal/common"
)

// Claims extends the registered JWT claims with the account email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateToken signs an HS256 token for email, valid for validityDuration.
func GenerateToken(email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Email: email,
	})

	return token.SignedString(secretKey)
}

// GetEmailFromToken verifies the token signature and expiry and returns the
// embedded email. Any failure is reported as ErrInvalidToken.
func GetEmailFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Email, nil
}
