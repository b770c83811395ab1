package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/auth"
	"github.com/and161185/card-keeper/internal/dataurl"
	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/repository"
)

// MediaService defines operations over card attachments.
type MediaService interface {
	// Attach encodes raw bytes and stores them as an image or video of the card.
	Attach(ctx context.Context, cardID uuid.UUID, name string, raw []byte) (model.MediaAsset, error)
	// List returns the card's assets.
	List(ctx context.Context, cardID uuid.UUID) ([]model.MediaAsset, error)
	// Delete removes an asset.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// Payload decodes an asset back to its MIME type and bytes.
	Payload(ctx context.Context, id uuid.UUID) (mimeType string, data []byte, err error)
}

type MediaServiceImpl struct {
	media repository.MediaRepository
	log   *zap.Logger
}

// NewMediaService constructs MediaService. A nil logger is replaced by a no-op one.
func NewMediaService(media repository.MediaRepository, log *zap.Logger) *MediaServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &MediaServiceImpl{media: media, log: log}
}

// Attach infers the kind from the MIME type; anything but image/* and
// video/* is rejected.
func (s *MediaServiceImpl) Attach(ctx context.Context, cardID uuid.UUID, name string, raw []byte) (model.MediaAsset, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.MediaAsset{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.MediaAsset{}, invalid("empty media name")
	}
	if len(raw) == 0 {
		return model.MediaAsset{}, invalid("empty media %q", name)
	}
	mt := dataurl.Sniff(name, raw)
	kind := model.MediaKind(dataurl.Kind(mt))
	if !kind.Valid() {
		return model.MediaAsset{}, invalid("media %q is %s, want image or video", name, mt)
	}
	a, err := s.media.Create(ctx, model.MediaInput{
		CardID: cardID,
		Name:   name,
		Kind:   kind,
		Data:   dataurl.Encode(mt, raw),
	})
	if err != nil {
		return model.MediaAsset{}, err
	}
	s.log.Info("media attached",
		zap.String("id", a.ID.String()),
		zap.String("card_id", cardID.String()),
		zap.String("kind", string(kind)),
		zap.Int("bytes", len(raw)),
	)
	return a, nil
}

// List returns the card's assets.
func (s *MediaServiceImpl) List(ctx context.Context, cardID uuid.UUID) ([]model.MediaAsset, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return nil, err
	}
	return s.media.ListByCard(ctx, cardID)
}

// Delete removes an asset.
func (s *MediaServiceImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return false, err
	}
	ok, err := s.media.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.log.Info("media deleted", zap.String("id", id.String()), zap.Bool("found", ok))
	return ok, nil
}

// Payload decodes the stored data URL.
func (s *MediaServiceImpl) Payload(ctx context.Context, id uuid.UUID) (string, []byte, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return "", nil, err
	}
	a, err := s.media.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	mt, data, err := dataurl.Decode(a.Data)
	if err != nil {
		return "", nil, fmt.Errorf("media %s: %w: %w", id, errs.ErrStorage, err)
	}
	return mt, data, nil
}
