package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrExpiredInitData = errors.New("telegram init data expired")
)

// TelegramAuthenticator validates Mini-App init data signed by the bot.
// See https://core.telegram.org/bots/webapps#validating-data-received-via-the-mini-app
type TelegramAuthenticator struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTelegramAuthenticator creates an authenticator for the given bot token.
// A zero maxAge disables the freshness check.
func NewTelegramAuthenticator(botToken string, maxAge time.Duration) *TelegramAuthenticator {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &TelegramAuthenticator{
		secret: mac.Sum(nil),
		maxAge: maxAge,
		now:    time.Now,
	}
}

type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Authenticate checks the hash and age of raw init data and returns the user.
func (a *TelegramAuthenticator) Authenticate(ctx context.Context, initData string) (*Identity, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	hash := values.Get("hash")
	if hash == "" {
		return nil, fmt.Errorf("%w: missing hash", ErrInvalidInitData)
	}

	expected := a.sign(dataCheckString(values))
	got, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(expected, got) {
		return nil, fmt.Errorf("%w: hash mismatch", ErrInvalidInitData)
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad auth_date", ErrInvalidInitData)
	}
	if a.maxAge > 0 && a.now().Sub(time.Unix(authDate, 0)) > a.maxAge {
		return nil, ErrExpiredInitData
	}

	var user telegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidInitData)
	}

	return &Identity{
		TgUserID:  user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
	}, nil
}

func (a *TelegramAuthenticator) sign(data string) []byte {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// dataCheckString joins all fields except hash as sorted key=value lines.
func dataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + values.Get(k)
	}
	return strings.Join(lines, "\n")
}
