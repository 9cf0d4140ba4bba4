package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

const tokenIssuer = "accountd"

// sessionClaims are the JWT claims minted for access and refresh tokens
type sessionClaims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// mintToken creates a signed HS256 token for the given user id.
func mintToken(userID model.UserID, use string, signingKey []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   string(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseAccessToken verifies a token and returns the user id it was minted
// for. Expired, malformed and refresh-use tokens all fail with ErrAuth.
func parseAccessToken(raw string, signingKey []byte, now time.Time) (model.UserID, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return "", model.ErrAuth
	}
	if claims.TokenUse != "access" {
		return "", model.ErrAuth
	}
	return model.UserID(claims.Subject), nil
}
