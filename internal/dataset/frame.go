// Package dataset implements the tabular data stages of the hit prediction
// pipeline: loading and joining the raw Statcast exports, column projection,
// null filtering, type coercion, shuffling, and the train/eval split.
//
// Every stage returns a fresh Frame; no stage mutates its input. The frames
// hold raw string cells so that null-sentinel filtering and coercion can
// operate on the textual form the upstream export actually produced.
package dataset

import (
	"fmt"
	"math/rand"
	"time"
)

// Required columns for the model, in projection order. The batter id is the
// join key only; the name columns from the player lookup are for human
// inspection and never reach the classifier.
var RequiredColumns = []string{
	"launch_speed",
	"launch_angle",
	"hit_distance_sc",
	"hit_location",
	"if_fielding_alignment",
	"of_fielding_alignment",
	"babip_value",
}

// Frame is a row-major string table with a named header.
type Frame struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewFrame builds a frame and its column index. Rows are taken as-is.
func NewFrame(header []string, rows [][]string) *Frame {
	f := &Frame{Header: header, Rows: rows}
	f.index = make(map[string]int, len(header))
	for i, col := range header {
		f.index[col] = i
	}
	return f
}

// Col returns the index of the named column.
func (f *Frame) Col(name string) (int, bool) {
	i, ok := f.index[name]
	return i, ok
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Select returns a projection containing exactly the named columns, in the
// given order, preserving row order. It fails if any column is absent.
// Applying the same selection twice yields an identical frame.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	idx := make([]int, len(cols))
	for i, col := range cols {
		j, ok := f.Col(col)
		if !ok {
			return nil, fmt.Errorf("select: column %q not in schema %v", col, f.Header)
		}
		idx[i] = j
	}

	rows := make([][]string, len(f.Rows))
	for r, row := range f.Rows {
		out := make([]string, len(idx))
		for i, j := range idx {
			out[i] = row[j]
		}
		rows[r] = out
	}
	return NewFrame(append([]string(nil), cols...), rows), nil
}

// missing reports whether a raw cell encodes an absent value. The Statcast
// export produces both true missing markers and the literal string "null"
// from its text serialization; both are checked on the pre-coercion text.
func missing(cell string) bool {
	switch cell {
	case "", "null", "NA", "NaN":
		return true
	}
	return false
}

// DropNull removes every row holding a missing or "null"-sentinel value in
// any of the named columns. The output is a subsequence of the input and
// filtering is idempotent. Columns not present are ignored rather than
// treated as all-missing; Select runs first and enforces the schema.
func (f *Frame) DropNull(cols ...string) *Frame {
	idx := make([]int, 0, len(cols))
	for _, col := range cols {
		if j, ok := f.Col(col); ok {
			idx = append(idx, j)
		}
	}

	rows := make([][]string, 0, len(f.Rows))
rowLoop:
	for _, row := range f.Rows {
		for _, j := range idx {
			if missing(row[j]) {
				continue rowLoop
			}
		}
		rows = append(rows, row)
	}
	return NewFrame(f.Header, rows)
}

// Shuffle returns a uniformly random permutation of the rows. Cell values
// are untouched. The shuffle deliberately uses fresh, unseeded randomness on
// every run; reproducibility lives in the seeded split, not here.
func (f *Frame) Shuffle() *Frame {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	perm := rnd.Perm(len(f.Rows))
	rows := make([][]string, len(f.Rows))
	for i, p := range perm {
		rows[i] = f.Rows[p]
	}
	return NewFrame(f.Header, rows)
}

// Head returns at most n leading rows as a new frame.
func (f *Frame) Head(n int) *Frame {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	return NewFrame(f.Header, f.Rows[:n])
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, error) {
	j, ok := f.Col(name)
	if !ok {
		return nil, fmt.Errorf("column %q not in schema %v", name, f.Header)
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[j]
	}
	return out, nil
}
