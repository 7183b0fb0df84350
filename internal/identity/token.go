package identity

import (
	"errors"
	"time"

	jw "github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// Tokens mints and parses the HS256 tokens used for both interactive and
// anonymous identities.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

func (t *Tokens) Make(userID string) (string, error) {
	claims := jw.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	return jw.NewWithClaims(jw.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse returns the token's subject. The auth service keys some tokens by
// email rather than sub, so that claim is accepted as a fallback.
func (t *Tokens) Parse(tok string) (string, error) {
	parsed, err := jw.Parse(tok, func(*jw.Token) (any, error) { return t.secret, nil })
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	mc, ok := parsed.Claims.(jw.MapClaims)
	if !ok {
		return "", errors.New("bad claims")
	}
	if sub, _ := mc["sub"].(string); sub != "" {
		return sub, nil
	}
	if email, _ := mc["email"].(string); email != "" {
		return email, nil
	}
	return "", errors.New("missing subject")
}
