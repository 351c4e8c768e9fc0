package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Continuous columns of the event export. Everything else required by the
// model is categorical.
var numericColumns = map[string]bool{
	"launch_speed":    true,
	"launch_angle":    true,
	"hit_distance_sc": true,
}

// Coerce normalizes every cell into its semantic type's canonical text form.
//
// Numeric cells go through a label-then-number round trip: the raw cell is
// first treated as a discrete label (whitespace normalized), and only that
// label's text is parsed as a float. The upstream export formats values
// inconsistently enough that parsing the raw import form directly can
// silently produce wrong values. Categorical cells are normalized as labels
// only.
//
// A numeric cell that still fails to parse after null filtering marks the
// row as malformed, which is an error; it is never coerced to a default.
// Coerce is idempotent: already-canonical cells round-trip unchanged.
func Coerce(f *Frame) (*Frame, error) {
	numeric := make([]bool, len(f.Header))
	for j, col := range f.Header {
		numeric[j] = numericColumns[col]
	}

	rows := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		out := make([]string, len(row))
		for j, cell := range row {
			label := strings.TrimSpace(cell)
			if !numeric[j] {
				out[j] = label
				continue
			}
			v, err := strconv.ParseFloat(label, 64)
			if err != nil {
				return nil, fmt.Errorf("coerce: row %d column %q: malformed numeric value %q", i+1, f.Header[j], cell)
			}
			out[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		rows[i] = out
	}
	return NewFrame(f.Header, rows), nil
}

// Design is the numeric view of a partition fed to the classifier: the three
// model features per row and the binary outcome label.
type Design struct {
	X      [][]float64 // launch_speed, launch_angle, hit_location code
	Y      []int       // babip_value: 1 hit, 0 out
	Levels []string    // hit_location label set; a label's index is its code
	Labels []string    // raw babip_value labels, row order
}

// Encode builds the design matrix for a coerced partition, deriving the
// hit_location level set from the rows actually present, in first-seen order.
func Encode(f *Frame) (*Design, error) {
	return encode(f, nil)
}

// EncodeWithLevels encodes a partition against a level set derived elsewhere,
// so the same raw hit_location label always maps to the same code. Every
// partition scored against one trained model must be encoded through that
// model's training levels. Labels absent from levels get fresh codes appended
// after it; a fitted tree has no split on those codes, so they fall through
// every equality test.
func EncodeWithLevels(f *Frame, levels []string) (*Design, error) {
	return encode(f, levels)
}

func encode(f *Frame, known []string) (*Design, error) {
	speed, err := f.Column("launch_speed")
	if err != nil {
		return nil, err
	}
	angle, err := f.Column("launch_angle")
	if err != nil {
		return nil, err
	}
	location, err := f.Column("hit_location")
	if err != nil {
		return nil, err
	}
	outcome, err := f.Column("babip_value")
	if err != nil {
		return nil, err
	}

	d := &Design{
		X:      make([][]float64, f.Len()),
		Y:      make([]int, f.Len()),
		Labels: outcome,
	}

	levels := make(map[string]int, len(known))
	for i, label := range known {
		levels[label] = i
	}
	d.Levels = append(d.Levels, known...)

	for i := 0; i < f.Len(); i++ {
		sv, err := strconv.ParseFloat(speed[i], 64)
		if err != nil {
			return nil, fmt.Errorf("encode: row %d launch_speed %q: %w", i+1, speed[i], err)
		}
		av, err := strconv.ParseFloat(angle[i], 64)
		if err != nil {
			return nil, fmt.Errorf("encode: row %d launch_angle %q: %w", i+1, angle[i], err)
		}

		code, ok := levels[location[i]]
		if !ok {
			code = len(levels)
			levels[location[i]] = code
			d.Levels = append(d.Levels, location[i])
		}

		switch outcome[i] {
		case "1":
			d.Y[i] = 1
		case "0":
			d.Y[i] = 0
		default:
			return nil, fmt.Errorf("encode: row %d babip_value %q outside binary label space", i+1, outcome[i])
		}

		d.X[i] = []float64{sv, av, float64(code)}
	}

	return d, nil
}
