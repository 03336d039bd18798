package jwt

import (
	"time"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// Maker describes generation and parsing of session tokens.
type Maker interface {
	// GenerateToken signs a token carrying username, uid, role and authority claims.
	GenerateToken(username, useruid, role string, authority models.Claims) (string, error)
	// ParseToken returns the *CustomClaims embedded in a valid token.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with an HMAC secret key and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker builds a MakerImpl from the secret key and TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
