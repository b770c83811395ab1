// Package constraint checks card uniqueness rules before a write.
package constraint

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/model"
)

// CardLister is the part of the card repository the checker reads.
type CardLister interface {
	List(ctx context.Context) ([]model.Card, error)
}

// Checker scans the card collection for clashes. Both checks are O(n).
type Checker struct {
	cards CardLister
}

// NewChecker returns a checker over cards.
func NewChecker(cards CardLister) *Checker {
	return &Checker{cards: cards}
}

// IsIdentifierUnique reports whether no card other than excludeID carries value.
// uuid.Nil excludes nothing.
func (c *Checker) IsIdentifierUnique(ctx context.Context, value string, excludeID uuid.UUID) (bool, error) {
	return c.unique(ctx, excludeID, func(card model.Card) bool { return card.Identifier == value })
}

// IsCodeUnique reports whether no card other than excludeID carries code value.
func (c *Checker) IsCodeUnique(ctx context.Context, value string, excludeID uuid.UUID) (bool, error) {
	return c.unique(ctx, excludeID, func(card model.Card) bool { return card.Code == value })
}

// Check returns errs.ErrDuplicateIdentifier or errs.ErrDuplicateCode when
// either value is taken by another card. The identifier is checked first.
func (c *Checker) Check(ctx context.Context, identifier, code string, excludeID uuid.UUID) error {
	list, err := c.cards.List(ctx)
	if err != nil {
		return err
	}
	for _, card := range list {
		if card.ID != excludeID && card.Identifier == identifier {
			return fmt.Errorf("identifier %q: %w", identifier, errs.ErrDuplicateIdentifier)
		}
	}
	for _, card := range list {
		if card.ID != excludeID && card.Code == code {
			return fmt.Errorf("code %q: %w", code, errs.ErrDuplicateCode)
		}
	}
	return nil
}

func (c *Checker) unique(ctx context.Context, excludeID uuid.UUID, clash func(model.Card) bool) (bool, error) {
	list, err := c.cards.List(ctx)
	if err != nil {
		return false, err
	}
	for _, card := range list {
		if card.ID != excludeID && clash(card) {
			return false, nil
		}
	}
	return true, nil
}
