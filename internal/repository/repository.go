// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/card-keeper/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CardRepository provides CRUD access to cards. It does not check identifier
// or code uniqueness; callers run the constraint checker first.
type CardRepository interface {
	// List returns every card in stored order.
	List(ctx context.Context) ([]model.Card, error)
	// Get loads a card by ID.
	Get(ctx context.Context, id uuid.UUID) (model.Card, error)
	// Create stores a new card with a generated ID and creation time.
	Create(ctx context.Context, in model.CardInput) (model.Card, error)
	// Update merges the patch into an existing card.
	Update(ctx context.Context, id uuid.UUID, p model.CardPatch) (model.Card, error)
	// Delete removes a card together with its media assets.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// SheetRepository provides CRUD access to tabular files.
type SheetRepository interface {
	// List returns every sheet in stored order.
	List(ctx context.Context) ([]model.Sheet, error)
	// Get loads a sheet by ID.
	Get(ctx context.Context, id uuid.UUID) (model.Sheet, error)
	// Create stores a new sheet with a generated ID.
	Create(ctx context.Context, in model.SheetInput) (model.Sheet, error)
	// Update merges the patch and re-stamps the modification time.
	Update(ctx context.Context, id uuid.UUID, p model.SheetPatch) (model.Sheet, error)
	// Delete removes a sheet.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// MediaRepository provides access to card attachments.
type MediaRepository interface {
	// List returns every media asset.
	List(ctx context.Context) ([]model.MediaAsset, error)
	// ListByCard returns the assets owned by a card.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]model.MediaAsset, error)
	// Get loads an asset by ID.
	Get(ctx context.Context, id uuid.UUID) (model.MediaAsset, error)
	// Create stores a new asset; the owning card must exist.
	Create(ctx context.Context, in model.MediaInput) (model.MediaAsset, error)
	// Delete removes an asset.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// SecretRepository stores the PIN hash and the session signing key.
type SecretRepository interface {
	// PIN returns the stored PIN record; an empty record means none was ever set.
	PIN(ctx context.Context) (model.PINRecord, error)
	// SetPIN overwrites the PIN record.
	SetPIN(ctx context.Context, rec model.PINRecord) error
	// SessionKey returns the signing key, generating it on first use.
	SessionKey(ctx context.Context) ([]byte, error)
	// RotateSessionKey replaces the signing key.
	RotateSessionKey(ctx context.Context) ([]byte, error)
	// ReplacePIN stores rec and a fresh signing key in one write.
	ReplacePIN(ctx context.Context, rec model.PINRecord) ([]byte, error)
}

// SettingsRepository stores user preferences.
type SettingsRepository interface {
	// Settings returns stored settings or the defaults.
	Settings(ctx context.Context) (model.Settings, error)
	// SaveSettings overwrites the settings record.
	SaveSettings(ctx context.Context, s model.Settings) error
}
