package auth

import (
	"context"

	"github.com/and161185/card-keeper/internal/errs"
)

type ctxKey string

const gateKey ctxKey = "ck.gate"

// WithGate stores the session gate in context.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, gateKey, g)
}

// GateFromCtx fetches the session gate from context.
func GateFromCtx(ctx context.Context) (*Gate, bool) {
	g, ok := ctx.Value(gateKey).(*Gate)
	return g, ok && g != nil
}

// RequireUnlocked fails with errs.ErrUnauthorized unless ctx carries an
// unlocked gate.
func RequireUnlocked(ctx context.Context) error {
	g, ok := GateFromCtx(ctx)
	if !ok || !g.Unlocked() {
		return errs.ErrUnauthorized
	}
	return nil
}
