package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/auth"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/repository"
)

// SettingsService reads and updates user preferences.
type SettingsService interface {
	Get(ctx context.Context) (model.Settings, error)
	SetDarkMode(ctx context.Context, on bool) (model.Settings, error)
}

type SettingsServiceImpl struct {
	repo repository.SettingsRepository
	log  *zap.Logger
}

// NewSettingsService constructs SettingsService. A nil logger is replaced by a no-op one.
func NewSettingsService(repo repository.SettingsRepository, log *zap.Logger) *SettingsServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsServiceImpl{repo: repo, log: log}
}

func (s *SettingsServiceImpl) Get(ctx context.Context) (model.Settings, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Settings{}, err
	}
	return s.repo.Settings(ctx)
}

func (s *SettingsServiceImpl) SetDarkMode(ctx context.Context, on bool) (model.Settings, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Settings{}, err
	}
	st, err := s.repo.Settings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	st.DarkMode = on
	if err := s.repo.SaveSettings(ctx, st); err != nil {
		return model.Settings{}, err
	}
	s.log.Info("settings saved", zap.Bool("dark_mode", on))
	return st, nil
}
