// Package auth issues and verifies the signed tokens that carry a request's
// principal, and hashes credentials. The rest of the system only ever sees
// the decoded {id, role} pair.
package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/teamdesk/teamdesk/internal/models"
)

// Principal is the authenticated actor performing a request.
type Principal struct {
	UserID uint64      `json:"userId"`
	Role   models.Role `json:"role"`
}

type claims struct {
	UserID uint64      `json:"ui"`
	Role   models.Role `json:"ro"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access/refresh token pairs.
type TokenManager struct {
	secretKey       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewTokenManager returns a manager with the given secret and TTLs in hours.
func NewTokenManager(secretKey string, accessTTLHours, refreshTTLHours int) *TokenManager {
	return &TokenManager{
		secretKey:       secretKey,
		accessTokenTTL:  time.Duration(accessTTLHours) * time.Hour,
		refreshTokenTTL: time.Duration(refreshTTLHours) * time.Hour,
	}
}

func (tm *TokenManager) createToken(p Principal, ttl time.Duration) (string, error) {
	c := &claims{
		UserID: p.UserID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(tm.secretKey))
}

// CreateTokens creates a new access token and a new refresh token
func (tm *TokenManager) CreateTokens(p Principal) (accessToken, refreshToken string, err error) {
	accessToken, err = tm.createToken(p, tm.accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = tm.createToken(p, tm.refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// CheckToken verifies a signed token and returns its principal.
func (tm *TokenManager) CheckToken(requestToken string) (Principal, error) {
	c := claims{}
	_, err := jwt.ParseWithClaims(requestToken, &c, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	})
	if err != nil {
		return Principal{}, err
	}
	if !c.Role.Valid() {
		return Principal{}, fmt.Errorf("token carries unknown role %q", c.Role)
	}
	return Principal{UserID: c.UserID, Role: c.Role}, nil
}
