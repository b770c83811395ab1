// Package query filters and orders card and sheet lists for display.
//
// Functions here never mutate their input and are deterministic: equal
// inputs give equal outputs, and ties keep their input order.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/model"
)

// Field selects the sort key.
type Field string

const (
	ByName       Field = "name"
	ByIdentifier Field = "id"
)

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is a sort key and direction. The zero value sorts by name ascending.
type Sort struct {
	Field     Field
	Direction Direction
}

// Filters narrow a card list. Empty fields are not applied.
type Filters struct {
	City          string
	Identity      string
	Gender        model.Gender
	MaritalStatus model.MaritalStatus
}

// ParseSort validates user-supplied sort strings. Empty strings take defaults.
func ParseSort(field, dir string) (Sort, error) {
	s := Sort{Field: ByName, Direction: Asc}
	switch f := Field(strings.ToLower(field)); f {
	case "":
	case ByName, ByIdentifier:
		s.Field = f
	default:
		return Sort{}, fmt.Errorf("sort field %q: %w", field, errs.ErrInvalid)
	}
	switch d := Direction(strings.ToLower(dir)); d {
	case "":
	case Asc, Desc:
		s.Direction = d
	default:
		return Sort{}, fmt.Errorf("sort direction %q: %w", dir, errs.ErrInvalid)
	}
	return s, nil
}

// ParseFilters validates user-supplied filter strings.
func ParseFilters(city, identity, gender, marital string) (Filters, error) {
	f := Filters{City: city, Identity: identity}
	if gender != "" {
		g := model.Gender(strings.ToLower(gender))
		if !g.Valid() {
			return Filters{}, fmt.Errorf("gender %q: %w", gender, errs.ErrInvalid)
		}
		f.Gender = g
	}
	if marital != "" {
		m := model.MaritalStatus(strings.ToLower(marital))
		if !m.Valid() {
			return Filters{}, fmt.Errorf("marital status %q: %w", marital, errs.ErrInvalid)
		}
		f.MaritalStatus = m
	}
	return f, nil
}

// folder lowercases text the way the search box always has. A cases.Caser
// keeps state, so each call builds its own.
type folder struct{ c cases.Caser }

func newFolder() folder { return folder{c: cases.Lower(language.Und)} }

func (f folder) fold(s string) string { return f.c.String(s) }

func (f folder) contains(haystack, needle string) bool {
	return strings.Contains(f.fold(haystack), f.fold(needle))
}

// Cards applies search, then filters, then a stable sort.
func Cards(cards []model.Card, search string, fl Filters, s Sort) []model.Card {
	f := newFolder()
	out := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if search != "" && !f.contains(c.FullName(), search) {
			continue
		}
		if fl.City != "" && !f.contains(c.City, fl.City) {
			continue
		}
		if fl.Identity != "" && !f.contains(c.Identity, fl.Identity) {
			continue
		}
		if fl.Gender != "" && c.Gender != fl.Gender {
			continue
		}
		if fl.MaritalStatus != "" && c.MaritalStatus != fl.MaritalStatus {
			continue
		}
		out = append(out, c)
	}

	var key func(model.Card) string
	if s.Field == ByIdentifier {
		key = func(c model.Card) string { return c.Identifier }
	} else {
		key = func(c model.Card) string { return f.fold(c.FullName()) }
	}
	sign := 1
	if s.Direction == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b model.Card) int {
		return sign * cmp.Compare(key(a), key(b))
	})
	return out
}

// Sheets keeps files whose name contains search, ignoring case. Order is kept.
func Sheets(files []model.Sheet, search string) []model.Sheet {
	f := newFolder()
	out := make([]model.Sheet, 0, len(files))
	for _, s := range files {
		if search == "" || f.contains(s.Name, search) {
			out = append(out, s)
		}
	}
	return out
}
