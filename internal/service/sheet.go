package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/auth"
	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/query"
	"github.com/and161185/card-keeper/internal/repository"
	"github.com/and161185/card-keeper/internal/sheet"
)

// SheetService defines operations over tabular files.
type SheetService interface {
	// Create stores a new sheet; nil data yields the default empty grid.
	Create(ctx context.Context, name string, data [][]string) (model.Sheet, error)
	// Get returns a single sheet.
	Get(ctx context.Context, id uuid.UUID) (model.Sheet, error)
	// List returns sheets whose name contains search.
	List(ctx context.Context, search string) ([]model.Sheet, error)
	// Rename changes the sheet name.
	Rename(ctx context.Context, id uuid.UUID, name string) (model.Sheet, error)
	// SetCell writes one cell.
	SetCell(ctx context.Context, id uuid.UUID, row, col int, v string) (model.Sheet, error)
	// AddRow appends an empty row.
	AddRow(ctx context.Context, id uuid.UUID) (model.Sheet, error)
	// AddColumn appends an empty column.
	AddColumn(ctx context.Context, id uuid.UUID) (model.Sheet, error)
	// RemoveRow drops a row; the last row is kept.
	RemoveRow(ctx context.Context, id uuid.UUID, row int) (model.Sheet, error)
	// RemoveColumn drops a column; the last column is kept.
	RemoveColumn(ctx context.Context, id uuid.UUID, col int) (model.Sheet, error)
	// Delete removes a sheet.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// Import creates a sheet from CSV.
	Import(ctx context.Context, name string, r io.Reader) (model.Sheet, error)
	// Export writes the sheet as CSV.
	Export(ctx context.Context, id uuid.UUID, w io.Writer) error
}

type SheetServiceImpl struct {
	sheets repository.SheetRepository
	log    *zap.Logger
}

// NewSheetService constructs SheetService. A nil logger is replaced by a no-op one.
func NewSheetService(sheets repository.SheetRepository, log *zap.Logger) *SheetServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &SheetServiceImpl{sheets: sheets, log: log}
}

func sheetName(name string) (string, error) {
	n := sheet.NormalizeName(name)
	if n == "" {
		return "", invalid("empty sheet name")
	}
	return n, nil
}

// Create normalizes the name and stores the sheet.
func (s *SheetServiceImpl) Create(ctx context.Context, name string, data [][]string) (model.Sheet, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Sheet{}, err
	}
	n, err := sheetName(name)
	if err != nil {
		return model.Sheet{}, err
	}
	if data == nil {
		data = sheet.New(sheet.DefaultRows, sheet.DefaultCols)
	}
	f, err := s.sheets.Create(ctx, model.SheetInput{Name: n, Data: data})
	if err != nil {
		return model.Sheet{}, err
	}
	s.log.Info("sheet created",
		zap.String("id", f.ID.String()),
		zap.Int("rows", len(f.Data)),
		zap.Int("cols", sheet.Width(f.Data)),
	)
	return f, nil
}

// Get fetches a single sheet.
func (s *SheetServiceImpl) Get(ctx context.Context, id uuid.UUID) (model.Sheet, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Sheet{}, err
	}
	return s.sheets.Get(ctx, id)
}

// List filters sheets by name.
func (s *SheetServiceImpl) List(ctx context.Context, search string) ([]model.Sheet, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return nil, err
	}
	all, err := s.sheets.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.Sheets(all, strings.TrimSpace(search)), nil
}

// Rename normalizes and stores a new name.
func (s *SheetServiceImpl) Rename(ctx context.Context, id uuid.UUID, name string) (model.Sheet, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Sheet{}, err
	}
	n, err := sheetName(name)
	if err != nil {
		return model.Sheet{}, err
	}
	f, err := s.sheets.Update(ctx, id, model.SheetPatch{Name: &n})
	if err != nil {
		return model.Sheet{}, err
	}
	s.log.Info("sheet renamed", zap.String("id", id.String()))
	return f, nil
}

// edit loads the grid, applies op and persists the result.
func (s *SheetServiceImpl) edit(ctx context.Context, id uuid.UUID, what string, op func([][]string) ([][]string, error)) (model.Sheet, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Sheet{}, err
	}
	cur, err := s.sheets.Get(ctx, id)
	if err != nil {
		return model.Sheet{}, err
	}
	next, err := op(cur.Data)
	if err != nil {
		return model.Sheet{}, fmt.Errorf("%s: %w: %w", what, errs.ErrInvalid, err)
	}
	f, err := s.sheets.Update(ctx, id, model.SheetPatch{Data: next})
	if err != nil {
		return model.Sheet{}, err
	}
	s.log.Info("sheet edited",
		zap.String("id", id.String()),
		zap.String("op", what),
		zap.Int("rows", len(f.Data)),
		zap.Int("cols", sheet.Width(f.Data)),
	)
	return f, nil
}

func infallible(op func([][]string) [][]string) func([][]string) ([][]string, error) {
	return func(g [][]string) ([][]string, error) { return op(g), nil }
}

// SetCell writes v at (row, col).
func (s *SheetServiceImpl) SetCell(ctx context.Context, id uuid.UUID, row, col int, v string) (model.Sheet, error) {
	return s.edit(ctx, id, "set cell", func(g [][]string) ([][]string, error) {
		return sheet.SetCell(g, row, col, v)
	})
}

// AddRow appends an empty row.
func (s *SheetServiceImpl) AddRow(ctx context.Context, id uuid.UUID) (model.Sheet, error) {
	return s.edit(ctx, id, "add row", infallible(sheet.AddRow))
}

// AddColumn appends an empty column.
func (s *SheetServiceImpl) AddColumn(ctx context.Context, id uuid.UUID) (model.Sheet, error) {
	return s.edit(ctx, id, "add column", infallible(sheet.AddColumn))
}

// RemoveRow drops row i.
func (s *SheetServiceImpl) RemoveRow(ctx context.Context, id uuid.UUID, i int) (model.Sheet, error) {
	return s.edit(ctx, id, "remove row", func(g [][]string) ([][]string, error) {
		return sheet.RemoveRow(g, i)
	})
}

// RemoveColumn drops column j.
func (s *SheetServiceImpl) RemoveColumn(ctx context.Context, id uuid.UUID, j int) (model.Sheet, error) {
	return s.edit(ctx, id, "remove column", func(g [][]string) ([][]string, error) {
		return sheet.RemoveColumn(g, j)
	})
}

// Delete removes a sheet.
func (s *SheetServiceImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return false, err
	}
	ok, err := s.sheets.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.log.Info("sheet deleted", zap.String("id", id.String()), zap.Bool("found", ok))
	return ok, nil
}

// Import reads CSV into a new sheet. An empty file yields the default grid.
func (s *SheetServiceImpl) Import(ctx context.Context, name string, r io.Reader) (model.Sheet, error) {
	if err := auth.RequireUnlocked(ctx); err != nil {
		return model.Sheet{}, err
	}
	g, err := sheet.ReadCSV(r)
	if err != nil {
		return model.Sheet{}, fmt.Errorf("import %q: %w: %w", name, errs.ErrInvalid, err)
	}
	if len(g) == 0 || sheet.Width(g) == 0 {
		g = nil
	}
	return s.Create(ctx, name, g)
}

// Export writes the sheet as CSV.
func (s *SheetServiceImpl) Export(ctx context.Context, id uuid.UUID, w io.Writer) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return sheet.WriteCSV(w, f.Data)
}
