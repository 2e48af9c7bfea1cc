package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ReadGrid parses delimited text into a 2-D grid of stringified cells.
// The delimiter is sniffed from the first line (semicolon, tab, or comma),
// quoting is lenient, and rows may have ragged widths. Input that is not
// valid UTF-8 is decoded as Windows-1252, which is what most exported
// supplier sheets turn out to be.
func ReadGrid(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err == nil {
			data = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	return grid, nil
}

// sniffDelimiter picks the separator that occurs most often in the first
// line, defaulting to comma.
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	best := ','
	bestCount := bytes.Count(line, []byte{','})
	for _, candidate := range []byte{';', '\t'} {
		if n := bytes.Count(line, []byte{candidate}); n > bestCount {
			best = rune(candidate)
			bestCount = n
		}
	}
	return best
}
