package blob

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/repository"
)

// MediaRepo implements repository.MediaRepository.
type MediaRepo struct{ s *Store }

var _ repository.MediaRepository = (*MediaRepo)(nil)

// List returns every media asset.
func (r *MediaRepo) List(ctx context.Context) ([]model.MediaAsset, error) {
	return mediaColl.load(ctx, r.s.kv)
}

// ListByCard returns the assets owned by cardID in stored order.
func (r *MediaRepo) ListByCard(ctx context.Context, cardID uuid.UUID) ([]model.MediaAsset, error) {
	all, err := mediaColl.load(ctx, r.s.kv)
	if err != nil {
		return nil, err
	}
	var out []model.MediaAsset
	for _, a := range all {
		if a.CardID == cardID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Get returns the asset with id or errs.ErrNotFound.
func (r *MediaRepo) Get(ctx context.Context, id uuid.UUID) (model.MediaAsset, error) {
	list, err := mediaColl.load(ctx, r.s.kv)
	if err != nil {
		return model.MediaAsset{}, err
	}
	i := mediaColl.index(list, id)
	if i < 0 {
		return model.MediaAsset{}, fmt.Errorf("media %s: %w", id, errs.ErrNotFound)
	}
	return list[i], nil
}

// Create stores a new asset. The owning card must exist and the kind must be known.
func (r *MediaRepo) Create(ctx context.Context, in model.MediaInput) (model.MediaAsset, error) {
	if !in.Kind.Valid() {
		return model.MediaAsset{}, fmt.Errorf("media kind %q: %w", in.Kind, errs.ErrInvalid)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owners, err := cardColl.load(ctx, r.s.kv)
	if err != nil {
		return model.MediaAsset{}, err
	}
	if cardColl.index(owners, in.CardID) < 0 {
		return model.MediaAsset{}, fmt.Errorf("owner card %s: %w", in.CardID, errs.ErrNotFound)
	}

	list, err := mediaColl.load(ctx, r.s.kv)
	if err != nil {
		return model.MediaAsset{}, err
	}
	id, err := newID()
	if err != nil {
		return model.MediaAsset{}, err
	}
	a := model.MediaAsset{
		ID:        id,
		CardID:    in.CardID,
		Name:      in.Name,
		Kind:      in.Kind,
		Data:      in.Data,
		CreatedAt: r.s.stamp(),
	}
	if err := save(ctx, r.s, mediaColl, append(list, a)); err != nil {
		return model.MediaAsset{}, err
	}
	r.s.log.Debug("media created",
		zap.String("id", id.String()),
		zap.String("card_id", in.CardID.String()),
		zap.Int("bytes", len(in.Data)),
	)
	return a, nil
}

// Delete removes the asset with id.
func (r *MediaRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list, err := mediaColl.load(ctx, r.s.kv)
	if err != nil {
		return false, err
	}
	rest, ok := mediaColl.without(list, id)
	if !ok {
		return false, nil
	}
	if err := save(ctx, r.s, mediaColl, rest); err != nil {
		return false, err
	}
	r.s.log.Debug("media deleted", zap.String("id", id.String()))
	return true, nil
}
