package rediskv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
)

func TestStore_RoundTripWithPrefix(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := Open(ctx, Options{Addr: mr.Addr(), Prefix: "ck:"})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "app_cards")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.Put(ctx,
		kv.Entry{Key: "app_cards", Value: []byte(`[]`)},
		kv.Entry{Key: "app_media_files", Value: []byte(`[{}]`)},
	))

	got, err := s.Get(ctx, "app_cards")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	raw, err := mr.Get("ck:app_media_files")
	require.NoError(t, err)
	require.Equal(t, `[{}]`, raw)
}

func TestStore_PutNothing(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(context.Background()))
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), Options{Addr: addr})
	require.Error(t, err)
}
