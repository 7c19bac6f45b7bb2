package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

// signInitData builds init data the way Telegram does for testBotToken.
func signInitData(t *testing.T, values url.Values) string {
	t.Helper()
	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(testBotToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString(values)))
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func initValues(authDate time.Time) url.Values {
	return url.Values{
		"auth_date": {strconv.FormatInt(authDate.Unix(), 10)},
		"query_id":  {"AAH"},
		"user":      {`{"id":433566788,"first_name":"Masha","last_name":"K","username":"masha"}`},
	}
}

func TestTelegramAuthenticator(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_750_000_000, 0)
	a := NewTelegramAuthenticator(testBotToken, time.Hour)
	a.now = func() time.Time { return now }

	t.Run("valid", func(t *testing.T) {
		identity, err := a.Authenticate(ctx, signInitData(t, initValues(now.Add(-time.Minute))))
		require.NoError(t, err)
		assert.Equal(t, int64(433566788), identity.TgUserID)
		assert.Equal(t, "Masha K", identity.DisplayName())
	})

	t.Run("tampered", func(t *testing.T) {
		raw := signInitData(t, initValues(now))
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)
		values.Set("user", `{"id":1,"first_name":"Mallory"}`)

		_, err = a.Authenticate(ctx, values.Encode())
		assert.ErrorIs(t, err, ErrInvalidInitData)
	})

	t.Run("wrong bot", func(t *testing.T) {
		other := NewTelegramAuthenticator("999:OTHER", 0)
		_, err := other.Authenticate(ctx, signInitData(t, initValues(now)))
		assert.ErrorIs(t, err, ErrInvalidInitData)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := a.Authenticate(ctx, signInitData(t, initValues(now.Add(-2*time.Hour))))
		assert.ErrorIs(t, err, ErrExpiredInitData)
	})

	t.Run("missing hash", func(t *testing.T) {
		_, err := a.Authenticate(ctx, initValues(now).Encode())
		assert.ErrorIs(t, err, ErrInvalidInitData)
	})

	t.Run("missing user", func(t *testing.T) {
		values := initValues(now)
		values.Del("user")
		_, err := a.Authenticate(ctx, signInitData(t, values))
		assert.ErrorIs(t, err, ErrInvalidInitData)
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate(&Identity{TgUserID: 42, FirstName: "Ann"})
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.TgUserID)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, "42", claims.Subject)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := NewJWTManager("secret", -time.Minute).Generate(&Identity{TgUserID: 42})
		require.NoError(t, err)
		_, err = m.Validate(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	valid := func() *Claims {
		now := time.Now()
		return &Claims{
			TgUserID: 42,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    TokenIssuer,
				Audience:  jwt.ClaimStrings{TokenAudience},
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		}
	}
	sign := func(t *testing.T, method jwt.SigningMethod, claims *Claims) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		return signed
	}

	t.Run("hand signed with same claims", func(t *testing.T) {
		_, err := m.Validate(sign(t, jwt.SigningMethodHS256, valid()))
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		method jwt.SigningMethod
		mutate func(c *Claims)
	}{
		{"foreign issuer", jwt.SigningMethodHS256, func(c *Claims) { c.Issuer = "splitter" }},
		{"foreign audience", jwt.SigningMethodHS256, func(c *Claims) { c.Audience = jwt.ClaimStrings{"admin"} }},
		{"no expiry", jwt.SigningMethodHS256, func(c *Claims) { c.ExpiresAt = nil }},
		{"subject mismatch", jwt.SigningMethodHS256, func(c *Claims) { c.Subject = "43" }},
		{"no telegram user", jwt.SigningMethodHS256, func(c *Claims) { c.TgUserID = 0; c.Subject = "0" }},
		{"other hmac", jwt.SigningMethodHS512, func(c *Claims) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := valid()
			tt.mutate(claims)
			_, err := m.Validate(sign(t, tt.method, claims))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "A B", (&Identity{FirstName: "A", LastName: "B"}).DisplayName())
	assert.Equal(t, "A", (&Identity{FirstName: "A"}).DisplayName())
	assert.Equal(t, "nick", (&Identity{Username: "nick"}).DisplayName())
	assert.Equal(t, "", (&Identity{}).DisplayName())
}
