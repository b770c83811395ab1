package sheet

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func grid3x2() [][]string {
	return [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}
}

func TestNew_DefaultShape(t *testing.T) {
	t.Parallel()

	g := New(DefaultRows, DefaultCols)
	if len(g) != 10 || Width(g) != 5 || !Rectangular(g) {
		t.Fatalf("bad default grid: %dx%d", len(g), Width(g))
	}
}

func TestAddColumn_EveryRowGrowsByOne(t *testing.T) {
	t.Parallel()

	in := grid3x2()
	out := AddColumn(in)
	for i := range in {
		if len(out[i]) != len(in[i])+1 {
			t.Fatalf("row %d: len=%d, want %d", i, len(out[i]), len(in[i])+1)
		}
		if out[i][2] != "" {
			t.Fatalf("new cell must be empty")
		}
	}
	if Width(in) != 2 {
		t.Fatalf("input mutated")
	}
	if got := AddColumn(nil); !reflect.DeepEqual(got, [][]string{{""}}) {
		t.Fatalf("AddColumn(empty)=%v", got)
	}
}

func TestAddRow_KeepsWidth(t *testing.T) {
	t.Parallel()

	out := AddRow(grid3x2())
	if len(out) != 4 || len(out[3]) != 2 || !Rectangular(out) {
		t.Fatalf("AddRow: %v", out)
	}
	if empty := AddRow(nil); len(empty) != 1 || len(empty[0]) != DefaultCols {
		t.Fatalf("AddRow(empty): %v", empty)
	}
}

func TestRemoveRow(t *testing.T) {
	t.Parallel()

	in := grid3x2()
	out, err := RemoveRow(in, 1)
	if err != nil {
		t.Fatalf("RemoveRow: %v", err)
	}
	want := [][]string{{"a", "b"}, {"e", "f"}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	if len(in) != 3 {
		t.Fatalf("input mutated")
	}

	if _, err := RemoveRow([][]string{{"x"}}, 0); !errors.Is(err, ErrLastRow) {
		t.Fatalf("want ErrLastRow, got %v", err)
	}
	if _, err := RemoveRow(in, 3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
}

func TestRemoveColumn(t *testing.T) {
	t.Parallel()

	out, err := RemoveColumn(grid3x2(), 0)
	if err != nil {
		t.Fatalf("RemoveColumn: %v", err)
	}
	want := [][]string{{"b"}, {"d"}, {"f"}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	if _, err := RemoveColumn(out, 0); !errors.Is(err, ErrLastColumn) {
		t.Fatalf("want ErrLastColumn, got %v", err)
	}
	if _, err := RemoveColumn(out, -1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
}

func TestSetCell(t *testing.T) {
	t.Parallel()

	in := grid3x2()
	out, err := SetCell(in, 2, 1, "z")
	if err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if out[2][1] != "z" || in[2][1] != "f" {
		t.Fatalf("SetCell wrote wrong cell or mutated input")
	}
	if _, err := SetCell(in, 0, 2, "z"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
}

func TestRectangular(t *testing.T) {
	t.Parallel()

	if !Rectangular(nil) || !Rectangular(grid3x2()) {
		t.Fatalf("expected rectangular")
	}
	if Rectangular([][]string{{"a"}, {"b", "c"}}) {
		t.Fatalf("ragged grid reported rectangular")
	}
}

func TestColumnLabel(t *testing.T) {
	t.Parallel()

	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for i, want := range cases {
		if got := ColumnLabel(i); got != want {
			t.Fatalf("ColumnLabel(%d)=%q, want %q", i, got, want)
		}
	}
}

func TestParseCell(t *testing.T) {
	t.Parallel()

	r, c, err := ParseCell("b3")
	if err != nil || r != 2 || c != 1 {
		t.Fatalf("ParseCell(b3)=%d,%d,%v", r, c, err)
	}
	r, c, err = ParseCell("AA10")
	if err != nil || r != 9 || c != 26 {
		t.Fatalf("ParseCell(AA10)=%d,%d,%v", r, c, err)
	}
	for _, bad := range []string{"", "A", "12", "A0", "A1x"} {
		if _, _, err := ParseCell(bad); err == nil {
			t.Fatalf("ParseCell(%q) should fail", bad)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	if got := NormalizeName(" budget "); got != "budget.xlsx" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeName("budget.xlsx"); got != "budget.xlsx" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeName("  "); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestCSV_RoundTripAndPadding(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, [][]string{{"a", "b,c"}, {"", "d"}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "a,\"b,c\"\n,d\n" {
		t.Fatalf("csv=%q", buf.String())
	}

	g, err := ReadCSV(strings.NewReader("a,b,c\nd\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := [][]string{{"a", "b", "c"}, {"d", "", ""}}
	if !reflect.DeepEqual(g, want) {
		t.Fatalf("got %v, want %v", g, want)
	}
}
