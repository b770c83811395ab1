package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/and161185/card-keeper/internal/crypto"
	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/repository"
)

const sessionKeyLen = 32

// SecretRepo implements repository.SecretRepository.
type SecretRepo struct{ s *Store }

var _ repository.SecretRepository = (*SecretRepo)(nil)

// PIN returns the stored record, or an empty one when no PIN was ever set.
func (r *SecretRepo) PIN(ctx context.Context) (model.PINRecord, error) {
	raw, err := r.s.kv.Get(ctx, KeyPIN)
	if errors.Is(err, errs.ErrNotFound) {
		return model.PINRecord{}, nil
	}
	if err != nil {
		return model.PINRecord{}, fmt.Errorf("load %s: %w: %w", KeyPIN, errs.ErrStorage, err)
	}
	var rec model.PINRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.PINRecord{}, fmt.Errorf("decode %s: %w: %w", KeyPIN, errs.ErrStorage, err)
	}
	return rec, nil
}

// SetPIN overwrites the PIN record.
func (r *SecretRepo) SetPIN(ctx context.Context, rec model.PINRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", KeyPIN, errs.ErrStorage, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.put(ctx, kv.Entry{Key: KeyPIN, Value: b}); err != nil {
		return err
	}
	r.s.log.Info("pin record replaced")
	return nil
}

// ReplacePIN stores rec together with a new session key. Either both land or
// neither does.
func (r *SecretRepo) ReplacePIN(ctx context.Context, rec model.PINRecord) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w: %w", KeyPIN, errs.ErrStorage, err)
	}
	key, err := crypto.RandBytes(sessionKeyLen)
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.put(ctx,
		kv.Entry{Key: KeyPIN, Value: b},
		kv.Entry{Key: KeySessionKey, Value: key},
	); err != nil {
		return nil, err
	}
	r.s.log.Info("pin record replaced, session key rotated")
	return key, nil
}

// SessionKey returns the token signing key, creating one on first use.
func (r *SecretRepo) SessionKey(ctx context.Context) ([]byte, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	raw, err := r.s.kv.Get(ctx, KeySessionKey)
	switch {
	case err == nil && len(raw) > 0:
		return raw, nil
	case err != nil && !errors.Is(err, errs.ErrNotFound):
		return nil, fmt.Errorf("load %s: %w: %w", KeySessionKey, errs.ErrStorage, err)
	}
	return r.rotate(ctx)
}

// RotateSessionKey replaces the signing key, invalidating every issued token.
func (r *SecretRepo) RotateSessionKey(ctx context.Context) ([]byte, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.rotate(ctx)
}

func (r *SecretRepo) rotate(ctx context.Context) ([]byte, error) {
	key, err := crypto.RandBytes(sessionKeyLen)
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	if err := r.s.put(ctx, kv.Entry{Key: KeySessionKey, Value: key}); err != nil {
		return nil, err
	}
	r.s.log.Info("session key rotated")
	return key, nil
}
