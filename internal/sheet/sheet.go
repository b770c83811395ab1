// Package sheet implements edits on rectangular grids of text cells.
//
// Every function returns a new grid and leaves its input untouched.
package sheet

import (
	"errors"
	"strings"
)

// Default dimensions of a fresh sheet.
const (
	DefaultRows = 10
	DefaultCols = 5
)

// Extension appended to sheet names.
const Extension = ".xlsx"

// Errors returned by grid edits.
var (
	ErrOutOfRange = errors.New("cell address out of range")
	ErrLastRow    = errors.New("cannot remove the last row")
	ErrLastColumn = errors.New("cannot remove the last column")
)

// New returns a rows×cols grid of empty cells.
func New(rows, cols int) [][]string {
	g := make([][]string, rows)
	for i := range g {
		g[i] = make([]string, cols)
	}
	return g
}

// Width is the length of the first row, or 0 for an empty grid.
func Width(g [][]string) int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Rectangular reports whether every row has the same length.
func Rectangular(g [][]string) bool {
	w := Width(g)
	for _, row := range g {
		if len(row) != w {
			return false
		}
	}
	return true
}

// Clone deep-copies g.
func Clone(g [][]string) [][]string {
	if g == nil {
		return nil
	}
	out := make([][]string, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// AddRow appends an empty row as wide as the grid (DefaultCols for an empty grid).
func AddRow(g [][]string) [][]string {
	w := Width(g)
	if w == 0 {
		w = DefaultCols
	}
	return append(Clone(g), make([]string, w))
}

// AddColumn appends an empty cell to every row. An empty grid gets one
// single-cell row.
func AddColumn(g [][]string) [][]string {
	if len(g) == 0 {
		return [][]string{{""}}
	}
	out := make([][]string, len(g))
	for i, row := range g {
		r := make([]string, len(row), len(row)+1)
		copy(r, row)
		out[i] = append(r, "")
	}
	return out
}

// RemoveRow drops row i. The last remaining row cannot be removed.
func RemoveRow(g [][]string, i int) ([][]string, error) {
	if i < 0 || i >= len(g) {
		return nil, ErrOutOfRange
	}
	if len(g) <= 1 {
		return nil, ErrLastRow
	}
	out := make([][]string, 0, len(g)-1)
	for k, row := range g {
		if k != i {
			out = append(out, append([]string(nil), row...))
		}
	}
	return out, nil
}

// RemoveColumn drops column j from every row. The last remaining column
// cannot be removed.
func RemoveColumn(g [][]string, j int) ([][]string, error) {
	w := Width(g)
	if j < 0 || j >= w {
		return nil, ErrOutOfRange
	}
	if w <= 1 {
		return nil, ErrLastColumn
	}
	out := make([][]string, len(g))
	for i, row := range g {
		r := make([]string, 0, w-1)
		r = append(r, row[:j]...)
		out[i] = append(r, row[j+1:]...)
	}
	return out, nil
}

// SetCell writes v at row r, column c.
func SetCell(g [][]string, r, c int, v string) ([][]string, error) {
	if r < 0 || r >= len(g) || c < 0 || c >= len(g[r]) {
		return nil, ErrOutOfRange
	}
	out := Clone(g)
	out[r][c] = v
	return out, nil
}

// Pad extends short rows with empty cells so the grid becomes rectangular.
func Pad(g [][]string) [][]string {
	w := 0
	for _, row := range g {
		w = max(w, len(row))
	}
	out := make([][]string, len(g))
	for i, row := range g {
		r := make([]string, w)
		copy(r, row)
		out[i] = r
	}
	return out
}

// ColumnLabel returns the spreadsheet label of column i: A..Z, AA, AB, ...
func ColumnLabel(i int) string {
	if i < 0 {
		return ""
	}
	var b []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		b = append(b, byte('A'+(n-1)%26))
	}
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
	return string(b)
}

// ParseCell parses an "A1"-style address into zero-based row and column.
func ParseCell(addr string) (row, col int, err error) {
	addr = strings.ToUpper(strings.TrimSpace(addr))
	i := 0
	for i < len(addr) && addr[i] >= 'A' && addr[i] <= 'Z' {
		col = col*26 + int(addr[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(addr) {
		return 0, 0, ErrOutOfRange
	}
	for _, ch := range addr[i:] {
		if ch < '0' || ch > '9' {
			return 0, 0, ErrOutOfRange
		}
		row = row*10 + int(ch-'0')
	}
	if row == 0 {
		return 0, 0, ErrOutOfRange
	}
	return row - 1, col - 1, nil
}

// NormalizeName trims name and appends Extension when missing.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}
