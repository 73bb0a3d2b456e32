// Package auth verifies access tokens issued by the authentication service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the access token payload: the standard claims plus the user's
// id and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Identity is the verified subject of a token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// GenerateToken signs an HS256 access token. The vault server only
// verifies tokens; issuing them here serves tooling and tests.
func GenerateToken(userID uuid.UUID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID.String(),
		Email:  email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns its subject. Expired tokens
// fail with common.ErrTokenExpired, everything else with
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return Identity{}, common.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: bad user id", common.ErrInvalidToken)
	}

	return Identity{UserID: userID, Email: claims.Email}, nil
}
