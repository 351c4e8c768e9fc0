package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// ReadCSV parses a CSV stream into a frame. A source that cannot be parsed
// as tabular data is a fatal startup error for the pipeline, so any parse
// failure is returned rather than skipped.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}

	return NewFrame(header, rows), nil
}

// ReadCSVFile opens and parses a CSV file.
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	f, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	log.Info().
		Str("file", path).
		Int("rows", f.Len()).
		Int("columns", len(f.Header)).
		Msg("CSV data loaded")

	return f, nil
}

// LeftJoin joins every row of left with the first matching row of right on
// the shared key column. Rows with no match keep empty cells in the joined
// columns; the joined columns are only for human inspection, so the choice
// of left over inner join does not affect the model.
func LeftJoin(left, right *Frame, key string) (*Frame, error) {
	lk, ok := left.Col(key)
	if !ok {
		return nil, fmt.Errorf("join: key %q not in left schema", key)
	}
	rk, ok := right.Col(key)
	if !ok {
		return nil, fmt.Errorf("join: key %q not in right schema", key)
	}

	// Right-side columns other than the key are appended to the left schema.
	rCols := make([]int, 0, len(right.Header)-1)
	header := append([]string(nil), left.Header...)
	for j, col := range right.Header {
		if j == rk {
			continue
		}
		rCols = append(rCols, j)
		header = append(header, col)
	}

	lookup := make(map[string][]string, right.Len())
	for _, row := range right.Rows {
		if _, seen := lookup[row[rk]]; !seen {
			lookup[row[rk]] = row
		}
	}

	rows := make([][]string, len(left.Rows))
	matched := 0
	for i, row := range left.Rows {
		out := make([]string, 0, len(header))
		out = append(out, row...)
		if match, ok := lookup[row[lk]]; ok {
			matched++
			for _, j := range rCols {
				out = append(out, match[j])
			}
		} else {
			for range rCols {
				out = append(out, "")
			}
		}
		rows[i] = out
	}

	log.Debug().
		Str("key", key).
		Int("rows", len(rows)).
		Int("matched", matched).
		Msg("Frames joined")

	return NewFrame(header, rows), nil
}
