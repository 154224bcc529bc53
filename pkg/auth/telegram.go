package auth

import (
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

const telegramKeySeed = "WebAppData"

var (
	ErrInitDataHash    = errors.New("telegram init data hash mismatch")
	ErrInitDataExpired = errors.New("telegram init data expired")
)

// TelegramUser is the subset of the Web App user object we rely on.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// ValidateInitData checks the Web App initData signature against botToken and
// returns the embedded user. A zero maxAge disables the auth_date check.
func ValidateInitData(botToken, initData string, now time.Time, maxAge time.Duration) (*TelegramUser, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	values, err := url.ParseQuery(strings.TrimSpace(initData))
	if err != nil {
		return nil, fmt.Errorf("parse telegram init data: %w", err)
	}
	received := values.Get("hash")
	if received == "" {
		return nil, fmt.Errorf("telegram init data hash missing")
	}
	values.Del("hash")

	if !hmac.Equal([]byte(SignInitData(botToken, values)), []byte(received)) {
		return nil, ErrInitDataHash
	}

	if maxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("telegram auth_date invalid: %w", err)
		}
		if now.Sub(time.Unix(authDate, 0)) > maxAge {
			return nil, ErrInitDataExpired
		}
	}

	user := &TelegramUser{}
	if raw := values.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			return nil, fmt.Errorf("decode telegram user: %w", err)
		}
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("telegram user id missing")
	}
	return user, nil
}

// SignInitData computes the hex signature for the given fields, excluding hash.
func SignInitData(botToken string, values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key != "hash" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}

	secret := hmac.New(sha256.New, []byte(telegramKeySeed))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
