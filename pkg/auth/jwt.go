package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const sessionKey ctxKey = 1

// Session is the guest identity baked into a token: a server-issued
// player id plus the nickname it was issued for.
type Session struct {
	PlayerID string
	Nickname string
}

// WithSession adds a session to the context
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom extracts the session from the context
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// JWT wraps a signing secret for issuing/verifying tokens
type JWT struct{ secret []byte }

// New creates a new JWT signer/verifier.
func New(secret string) *JWT { return &JWT{secret: []byte(secret)} }

// Verify checks a token and returns the session claims
func (j *JWT) Verify(tok string) (Session, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Session{}, err
	}
	sid, _ := claims["sub"].(string)
	if sid == "" {
		return Session{}, errors.New("no sub")
	}
	nick, _ := claims["nick"].(string)
	return Session{PlayerID: sid, Nickname: nick}, nil
}

// Sign creates a token for the session with the given TTL
func (j *JWT) Sign(s Session, ttl time.Duration) (string, error) {
	if s.PlayerID == "" {
		return "", errors.New("empty player id")
	}
	claims := jwt.MapClaims{
		"sub":  s.PlayerID,
		"nick": s.Nickname,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(j.secret)
}
