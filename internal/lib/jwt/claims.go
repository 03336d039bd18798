// Package jwt implements generation and parsing of session tokens with the
// service's custom claim fields. The token doubles as the session's cached
// claim set: the admin and super_admin booleans embedded at issue time are
// what the claim synchronizer reads without forcing a refresh.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// CustomClaims is the claim payload carried by a session token.
type CustomClaims struct {
	Username   string `json:"username"`
	UserUID    string `json:"user_uid"`
	Role       string `json:"role"`
	Admin      bool   `json:"admin"`
	SuperAdmin bool   `json:"super_admin"`
	jwt.RegisteredClaims
}

// Authority returns the claim set embedded in the token.
func (c *CustomClaims) Authority() models.Claims {
	return models.Claims{Admin: c.Admin, SuperAdmin: c.SuperAdmin}
}

// GenerateToken signs a token for the user with the given authority claims.
// Token lifetime is the maker's TTL.
func (j *MakerImpl) GenerateToken(username, useruid, role string, authority models.Claims) (string, error) {
	claims := CustomClaims{
		Username:   username,
		UserUID:    useruid,
		Role:       role,
		Admin:      authority.Admin,
		SuperAdmin: authority.SuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken verifies the token signature and validity and returns its
// claims.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
