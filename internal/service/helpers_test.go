package service

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/and161185/card-keeper/internal/auth"
	"github.com/and161185/card-keeper/internal/kv/memory"
	"github.com/and161185/card-keeper/internal/repository/blob"
)

// newEnv returns a memory-backed store and a context carrying an unlocked gate.
func newEnv(t *testing.T) (*blob.Store, context.Context) {
	t.Helper()
	st := blob.New(memory.New(), zaptest.NewLogger(t))
	g := auth.NewGate(st.Secrets(), zaptest.NewLogger(t))
	ctx := auth.WithGate(context.Background(), g)
	ok, err := g.Login(ctx, auth.DefaultPIN)
	if err != nil || !ok {
		t.Fatalf("login: ok=%v err=%v", ok, err)
	}
	return st, ctx
}

// lockedCtx carries a gate that was never unlocked.
func lockedCtx(t *testing.T, st *blob.Store) context.Context {
	t.Helper()
	return auth.WithGate(context.Background(), auth.NewGate(st.Secrets(), nil))
}
