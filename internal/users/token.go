package users

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VerificationTokens signs and checks email-confirmation tokens. The token is
// the base64url email and expiry joined with an HMAC-SHA256 tag, so no token
// state is stored server-side.
type VerificationTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewVerificationTokens builds a signer with the given secret and lifetime.
func NewVerificationTokens(secret string, ttl time.Duration) *VerificationTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &VerificationTokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign produces a verification token for the email.
func (v *VerificationTokens) Sign(email string) string {
	expiry := v.now().Add(v.ttl).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(email)) + "." + strconv.FormatInt(expiry, 10)
	return payload + "." + v.tag(payload)
}

// Verify checks signature and expiry, returning the embedded email.
func (v *VerificationTokens) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(v.tag(payload)), []byte(parts[2])) {
		return "", ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || v.now().Unix() > expiry {
		return "", ErrInvalidToken
	}

	email, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(email), nil
}

func (v *VerificationTokens) tag(payload string) string {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprint(mac, payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
