// Package service contains application services for cards, sheets, media
// and settings. Every call requires an unlocked gate in the context.
package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/auth"
	"github.com/and161185/card-keeper/internal/constraint"
	"github.com/and161185/card-keeper/internal/dataurl"
	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/query"
	"github.com/and161185/card-keeper/internal/repository"
)

// CardService defines validated operations over cards.
type CardService interface {
	// Create validates the input, checks uniqueness and stores a new card.
	Create(ctx context.Context, in model.CardInput) (model.Card, error)
	// Update validates the merged card, checks uniqueness against other cards and stores it.
	Update(ctx context.Context, id uuid.UUID, p model.CardPatch) (model.Card, error)
	// Delete removes the card and its media.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// Get returns a single card.
	Get(ctx context.Context, id uuid.UUID) (model.Card, error)
	// Query returns the searched, filtered and sorted card list.
	Query(ctx context.Context, q QueryParams) ([]model.Card, error)
}

// QueryParams bundles the inputs of the card query pipeline.
type QueryParams struct {
	Search  string
	Filters query.Filters
	Sort    query.Sort
}

type CardServiceImpl struct {
	cards   repository.CardRepository
	checker *constraint.Checker
	log     *zap.Logger
}

// NewCardService constructs CardService. A nil logger is replaced by a no-op one.
func NewCardService(cards repository.CardRepository, log *zap.Logger) *CardServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &CardServiceImpl{cards: cards, checker: constraint.NewChecker(cards), log: log}
}

var (
	identifierRe = regexp.MustCompile(`^\d{3}$`)
	codeRe       = regexp.MustCompile(`^[A-Z]{3}$`)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("validation: "+format+": %w", append(args, errs.ErrInvalid)...)
}

// validateCard applies the form rules:
// - identifier is three digits, code is three uppercase letters
// - names, city and identity are not blank
// - gender and marital status are known values
// - links, when set, are absolute URLs
func validateCard(c model.Card) error {
	if !identifierRe.MatchString(c.Identifier) {
		return invalid("identifier %q must be 3 digits", c.Identifier)
	}
	if !codeRe.MatchString(c.Code) {
		return invalid("code %q must be 3 uppercase letters", c.Code)
	}
	for _, f := range [...]struct{ name, v string }{
		{"first name", c.FirstName},
		{"surname", c.Surname},
		{"city", c.City},
		{"identity", c.Identity},
	} {
		if strings.TrimSpace(f.v) == "" {
			return invalid("empty %s", f.name)
		}
	}
	if !c.Gender.Valid() {
		return invalid("gender %q", c.Gender)
	}
	if !c.MaritalStatus.Valid() {
		return invalid("marital status %q", c.MaritalStatus)
	}
	if c.SocialLink != "" && !absoluteURL(c.SocialLink) {
		return invalid("social link %q is not an absolute url", c.SocialLink)
	}
	if c.DriveLink != "" && !absoluteURL(c.DriveLink) {
		return invalid("drive link %q is not an absolute url", c.DriveLink)
	}
	return nil
}

func absoluteURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func fromInput(in model.CardInput) model.Card {
	return model.CardPatch{
		Identifier:     &in.Identifier,
		Code:           &in.Code,
		FirstName:      &in.FirstName,
		Surname:        &in.Surname,
		City:           &in.City,
		Identity:       &in.Identity,
		Gender:         &in.Gender,
		MaritalStatus:  &in.MaritalStatus,
		SocialPlatform: &in.SocialPlatform,
		SocialLink:     &in.SocialLink,
		DriveLink:      &in.DriveLink,
		ProfilePicture: &in.ProfilePicture,
	}.Apply(model.Card{})
}

// Create validates, checks uniqueness, then stores.
func (s *CardServiceImpl) Create(ctx context.Context, in model.CardInput) (model.Card, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Card{}, err
	}
	if err := validateCard(fromInput(in)); err != nil {
		return model.Card{}, err
	}
	if err := s.checker.Check(ctx, in.Identifier, in.Code, uuid.Nil); err != nil {
		return model.Card{}, err
	}
	c, err := s.cards.Create(ctx, in)
	if err != nil {
		return model.Card{}, err
	}
	s.log.Info("card created", zap.String("id", c.ID.String()), zap.String("identifier", c.Identifier))
	return c, nil
}

// Update merges the patch, validates the result and checks uniqueness
// against every other card.
func (s *CardServiceImpl) Update(ctx context.Context, id uuid.UUID, p model.CardPatch) (model.Card, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Card{}, err
	}
	cur, err := s.cards.Get(ctx, id)
	if err != nil {
		return model.Card{}, err
	}
	merged := p.Apply(cur)
	if err := validateCard(merged); err != nil {
		return model.Card{}, err
	}
	if err := s.checker.Check(ctx, merged.Identifier, merged.Code, id); err != nil {
		return model.Card{}, err
	}
	c, err := s.cards.Update(ctx, id, p)
	if err != nil {
		return model.Card{}, err
	}
	s.log.Info("card updated", zap.String("id", id.String()))
	return c, nil
}

// Delete removes the card and every media asset it owns.
func (s *CardServiceImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return false, err
	}
	ok, err := s.cards.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.log.Info("card deleted", zap.String("id", id.String()), zap.Bool("found", ok))
	return ok, nil
}

// Get fetches a single card by id.
func (s *CardServiceImpl) Get(ctx context.Context, id uuid.UUID) (model.Card, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Card{}, err
	}
	return s.cards.Get(ctx, id)
}

// Query runs the stored list through the query pipeline.
func (s *CardServiceImpl) Query(ctx context.Context, q QueryParams) ([]model.Card, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return nil, err
	}
	list, err := s.cards.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.Cards(list, q.Search, q.Filters, q.Sort), nil
}

// PictureDataURL encodes an image file for Card.ProfilePicture.
func PictureDataURL(name string, raw []byte) (string, error) {
	mt := dataurl.Sniff(name, raw)
	if dataurl.Kind(mt) != string(model.MediaImage) {
		return "", invalid("profile picture %q is %s, not an image", name, mt)
	}
	return dataurl.Encode(mt, raw), nil
}
