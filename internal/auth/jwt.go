package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

const (
	// TokenIssuer is the "iss" claim of every session token this server signs.
	TokenIssuer = "kate-backend"
	// TokenAudience is the "aud" claim: tokens are only good for the Mini-App API.
	TokenAudience = "kate-miniapp"
)

// JWTManager issues session tokens for Telegram users who passed init-data
// validation, and checks them on later calls.
type JWTManager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// Claims identify the Telegram user behind a session. Subject carries the
// same user ID in decimal, as registered claims require a string.
type Claims struct {
	TgUserID int64  `json:"tg_user_id"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a manager signing HS256 tokens valid for ttl.
func NewJWTManager(secretKey string, ttl time.Duration) *JWTManager {
	m := &JWTManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

// Generate signs a session token for the given Telegram identity.
func (m *JWTManager) Generate(identity *Identity) (string, error) {
	now := m.now()
	claims := &Claims{
		TgUserID: identity.TgUserID,
		Name:     identity.DisplayName(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			Subject:   strconv.FormatInt(identity.TgUserID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, issuer, audience and expiry, and that the
// subject matches the Telegram user ID.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TgUserID == 0 || claims.Subject != strconv.FormatInt(claims.TgUserID, 10) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
