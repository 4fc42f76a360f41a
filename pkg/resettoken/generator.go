// Package resettoken issues and verifies the short-lived tokens used in
// password-reset and account-activation links. Tokens are stateless JWTs
// signed with a per-user key derived from the user's mutable state, so a
// password change or activation invalidates every previously issued token
// without any server-side bookkeeping.
package resettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserState is the snapshot of mutable user fields a token is bound to.
type UserState struct {
	ID           string
	PasswordHash string
	Active       bool
}

type Generator struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), ttl: ttl}
}

// Issue returns a token for the given user state, valid for the configured TTL.
func (g *Generator) Issue(s UserState) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   s.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(g.userKey(s))
}

// Verify reports whether token was issued for this exact user state and has
// not expired. Any parse, signature, or subject mismatch yields false.
func (g *Generator) Verify(s UserState, token string) bool {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.userKey(s), nil
	})
	if err != nil || !tkn.Valid {
		return false
	}
	return claims.Subject == s.ID
}

// userKey mixes the shared secret with the user's id, password hash and
// active flag. Changing any of them changes the key.
func (g *Generator) userKey(s UserState) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(s.ID))
	mac.Write([]byte(s.PasswordHash))
	mac.Write([]byte(strconv.FormatBool(s.Active)))
	return mac.Sum(nil)
}

// EncodeUID wraps a user id for use in links and request payloads.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeUID reverses EncodeUID. Malformed input returns an error; callers are
// expected to collapse it into a generic invalid state rather than surface it.
func DecodeUID(s string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
