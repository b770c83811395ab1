package blob

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/repository"
	"github.com/and161185/card-keeper/internal/sheet"
)

// SheetRepo implements repository.SheetRepository.
type SheetRepo struct{ s *Store }

var _ repository.SheetRepository = (*SheetRepo)(nil)

func checkGrid(g [][]string) error {
	if !sheet.Rectangular(g) {
		return fmt.Errorf("sheet data: rows differ in length: %w", errs.ErrInvalid)
	}
	if len(g) > 0 && sheet.Width(g) == 0 {
		return fmt.Errorf("sheet data: rows have no cells: %w", errs.ErrInvalid)
	}
	return nil
}

// List returns every sheet in stored order.
func (r *SheetRepo) List(ctx context.Context) ([]model.Sheet, error) {
	return sheetColl.load(ctx, r.s.kv)
}

// Get returns the sheet with id or errs.ErrNotFound.
func (r *SheetRepo) Get(ctx context.Context, id uuid.UUID) (model.Sheet, error) {
	list, err := sheetColl.load(ctx, r.s.kv)
	if err != nil {
		return model.Sheet{}, err
	}
	i := sheetColl.index(list, id)
	if i < 0 {
		return model.Sheet{}, fmt.Errorf("sheet %s: %w", id, errs.ErrNotFound)
	}
	return list[i], nil
}

// Create appends a new sheet. Data must be rectangular, and rows need at
// least one cell.
func (r *SheetRepo) Create(ctx context.Context, in model.SheetInput) (model.Sheet, error) {
	if err := checkGrid(in.Data); err != nil {
		return model.Sheet{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list, err := sheetColl.load(ctx, r.s.kv)
	if err != nil {
		return model.Sheet{}, err
	}
	id, err := newID()
	if err != nil {
		return model.Sheet{}, err
	}
	f := model.Sheet{
		ID:           id,
		Name:         in.Name,
		Data:         sheet.Clone(in.Data),
		LastModified: r.s.stamp(),
	}
	if err := save(ctx, r.s, sheetColl, append(list, f)); err != nil {
		return model.Sheet{}, err
	}
	r.s.log.Debug("sheet created", zap.String("id", id.String()))
	return f, nil
}

// Update merges p into the sheet and re-stamps LastModified.
func (r *SheetRepo) Update(ctx context.Context, id uuid.UUID, p model.SheetPatch) (model.Sheet, error) {
	if p.Data != nil {
		if err := checkGrid(p.Data); err != nil {
			return model.Sheet{}, err
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list, err := sheetColl.load(ctx, r.s.kv)
	if err != nil {
		return model.Sheet{}, err
	}
	i := sheetColl.index(list, id)
	if i < 0 {
		return model.Sheet{}, fmt.Errorf("sheet %s: %w", id, errs.ErrNotFound)
	}
	f := list[i]
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Data != nil {
		f.Data = sheet.Clone(p.Data)
	}
	f.LastModified = r.s.stamp()
	list[i] = f
	if err := save(ctx, r.s, sheetColl, list); err != nil {
		return model.Sheet{}, err
	}
	r.s.log.Debug("sheet updated", zap.String("id", id.String()))
	return f, nil
}

// Delete removes the sheet with id.
func (r *SheetRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	list, err := sheetColl.load(ctx, r.s.kv)
	if err != nil {
		return false, err
	}
	rest, ok := sheetColl.without(list, id)
	if !ok {
		return false, nil
	}
	if err := save(ctx, r.s, sheetColl, rest); err != nil {
		return false, err
	}
	r.s.log.Debug("sheet deleted", zap.String("id", id.String()))
	return true, nil
}
