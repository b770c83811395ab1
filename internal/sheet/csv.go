package sheet

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the grid as CSV records.
func WriteCSV(w io.Writer, g [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(g); err != nil {
		return err
	}
	return cw.Error()
}

// ReadCSV reads CSV records into a rectangular grid; ragged rows are padded.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return Pad(recs), nil
}
