package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/repository"
)

// SettingsRepo implements repository.SettingsRepository.
type SettingsRepo struct{ s *Store }

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// Settings returns stored settings; a missing record yields the defaults.
func (r *SettingsRepo) Settings(ctx context.Context) (model.Settings, error) {
	raw, err := r.s.kv.Get(ctx, KeySettings)
	if errors.Is(err, errs.ErrNotFound) {
		return model.Settings{}, nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("load %s: %w: %w", KeySettings, errs.ErrStorage, err)
	}
	var st model.Settings
	if err := json.Unmarshal(raw, &st); err != nil {
		return model.Settings{}, fmt.Errorf("decode %s: %w: %w", KeySettings, errs.ErrStorage, err)
	}
	return st, nil
}

// SaveSettings overwrites the settings record.
func (r *SettingsRepo) SaveSettings(ctx context.Context, st model.Settings) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", KeySettings, errs.ErrStorage, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.put(ctx, kv.Entry{Key: KeySettings, Value: b}); err != nil {
		return err
	}
	r.s.log.Debug("settings saved", zap.Bool("dark_mode", st.DarkMode))
	return nil
}
