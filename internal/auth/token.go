package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/card-keeper/internal/errs"
)

const tokenSubject = "owner"

// Token issues a session token for an unlocked gate. Tokens carry no expiry;
// they stay valid until the session key rotates.
func (g *Gate) Token(ctx context.Context) (string, error) {
	if !g.Unlocked() {
		return "", errs.ErrUnauthorized
	}
	key, err := g.secrets.SessionKey(ctx)
	if err != nil {
		return "", fmt.Errorf("session key: %w", err)
	}
	claims := jwt.RegisteredClaims{
		Subject:  tokenSubject,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(key)
}

// Resume unlocks the gate from a token issued by Token.
func (g *Gate) Resume(ctx context.Context, token string) error {
	key, err := g.secrets.SessionKey(ctx)
	if err != nil {
		return fmt.Errorf("session key: %w", err)
	}
	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(tokenSubject),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return fmt.Errorf("malformed token: %w", errs.ErrUnauthorized)
		}
		return fmt.Errorf("invalid token: %w", errs.ErrUnauthorized)
	}

	g.mu.Lock()
	g.state = Unlocked
	g.mu.Unlock()
	g.log.Debug("session resumed")
	return nil
}
