package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var ErrUnreadable = errors.New("unreadable spreadsheet")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads CSV text. Blank lines are dropped, the first non-blank line is
// the header. Quoted fields may contain commas, doubled quotes and newlines.
func Parse(data []byte) (*Grid, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		records = append(records, rec)
	}
	return newGrid(records), nil
}

// ParseString is Parse for callers holding text. Input the reader rejects
// yields an empty grid.
func ParseString(text string) *Grid {
	g, err := Parse([]byte(text))
	if err != nil {
		return newGrid(nil)
	}
	return g
}
