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

// CardRepo implements repository.CardRepository.
type CardRepo struct{ s *Store }

var _ repository.CardRepository = (*CardRepo)(nil)

// List returns every card in stored order.
func (r *CardRepo) List(ctx context.Context) ([]model.Card, error) {
	return cardColl.load(ctx, r.s.kv)
}

// Get returns the card with id or errs.ErrNotFound.
func (r *CardRepo) Get(ctx context.Context, id uuid.UUID) (model.Card, error) {
	list, err := cardColl.load(ctx, r.s.kv)
	if err != nil {
		return model.Card{}, err
	}
	i := cardColl.index(list, id)
	if i < 0 {
		return model.Card{}, fmt.Errorf("card %s: %w", id, errs.ErrNotFound)
	}
	return list[i], nil
}

// Create appends a new card. Uniqueness of identifier and code is the
// caller's responsibility.
func (r *CardRepo) Create(ctx context.Context, in model.CardInput) (model.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list, err := cardColl.load(ctx, r.s.kv)
	if err != nil {
		return model.Card{}, err
	}
	id, err := newID()
	if err != nil {
		return model.Card{}, err
	}
	c := model.Card{
		ID:             id,
		Identifier:     in.Identifier,
		Code:           in.Code,
		FirstName:      in.FirstName,
		Surname:        in.Surname,
		City:           in.City,
		Identity:       in.Identity,
		Gender:         in.Gender,
		MaritalStatus:  in.MaritalStatus,
		SocialPlatform: in.SocialPlatform,
		SocialLink:     in.SocialLink,
		DriveLink:      in.DriveLink,
		ProfilePicture: in.ProfilePicture,
		CreatedAt:      r.s.stamp(),
	}
	if err := save(ctx, r.s, cardColl, append(list, c)); err != nil {
		return model.Card{}, err
	}
	r.s.log.Debug("card created", zap.String("id", id.String()))
	return c, nil
}

// Update merges p into the card with id. ID and CreatedAt never change.
func (r *CardRepo) Update(ctx context.Context, id uuid.UUID, p model.CardPatch) (model.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list, err := cardColl.load(ctx, r.s.kv)
	if err != nil {
		return model.Card{}, err
	}
	i := cardColl.index(list, id)
	if i < 0 {
		return model.Card{}, fmt.Errorf("card %s: %w", id, errs.ErrNotFound)
	}
	list[i] = p.Apply(list[i])
	if err := save(ctx, r.s, cardColl, list); err != nil {
		return model.Card{}, err
	}
	r.s.log.Debug("card updated", zap.String("id", id.String()))
	return list[i], nil
}

// Delete removes the card and every media asset it owns in one atomic write.
func (r *CardRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list, err := cardColl.load(ctx, r.s.kv)
	if err != nil {
		return false, err
	}
	rest, ok := cardColl.without(list, id)
	if !ok {
		return false, nil
	}
	assets, err := mediaColl.load(ctx, r.s.kv)
	if err != nil {
		return false, err
	}
	kept := make([]model.MediaAsset, 0, len(assets))
	for _, a := range assets {
		if a.CardID != id {
			kept = append(kept, a)
		}
	}

	ce, err := cardColl.entry(rest)
	if err != nil {
		return false, err
	}
	me, err := mediaColl.entry(kept)
	if err != nil {
		return false, err
	}
	if err := r.s.put(ctx, ce, me); err != nil {
		return false, err
	}
	r.s.log.Debug("card deleted",
		zap.String("id", id.String()),
		zap.Int("media_removed", len(assets)-len(kept)),
	)
	return true, nil
}
