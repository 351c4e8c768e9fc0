package eval

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Report is the full human-readable outcome of one pipeline run.
type Report struct {
	GeneratedAt time.Time
	CleanedRows int
	TrainRows   int
	EvalRows    int

	Sample      []string // pre-rendered sample lines of the cleaned data
	Frequencies []LabelCount
	Features    []FeatureSummary
	Metrics     Metrics
	Degenerate  string // set instead of Metrics when evaluation was impossible
}

// SampleLines renders the first n rows of header+rows as aligned text.
func SampleLines(header []string, rows [][]string, n int) []string {
	if n > len(rows) {
		n = len(rows)
	}
	widths := make([]int, len(header))
	for j, h := range header {
		widths[j] = len(h)
	}
	for _, row := range rows[:n] {
		for j, cell := range row {
			if len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for j, cell := range cells {
			parts[j] = fmt.Sprintf("%-*s", widths[j], cell)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	out := make([]string, 0, n+1)
	out = append(out, line(header))
	for _, row := range rows[:n] {
		out = append(out, line(row))
	}
	return out
}

// Write renders the report.
func (r *Report) Write(w io.Writer) error {
	fmt.Fprintf(w, "HIT PREDICTION RESULTS\n")
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Cleaned rows: %d (train %d / eval %d)\n\n", r.CleanedRows, r.TrainRows, r.EvalRows)

	fmt.Fprintf(w, "SAMPLE OF CLEANED DATA\n")
	fmt.Fprintf(w, "----------------------\n")
	for _, line := range r.Sample {
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\nOUTCOME LABEL FREQUENCY\n")
	fmt.Fprintf(w, "-----------------------\n")
	for _, fc := range r.Frequencies {
		fmt.Fprintf(w, "%s: %d (%.2f%%)\n", fc.Label, fc.Count, fc.Share*100)
	}

	if len(r.Features) > 0 {
		fmt.Fprintf(w, "\nFEATURE SUMMARY\n")
		fmt.Fprintf(w, "---------------\n")
		for _, fs := range r.Features {
			fmt.Fprintf(w, "%s: mean %.2f, stddev %.2f, range [%.2f, %.2f]\n",
				fs.Name, fs.Mean, fs.StdDev, fs.Min, fs.Max)
		}
	}

	fmt.Fprintf(w, "\nEVALUATION\n")
	fmt.Fprintf(w, "----------\n")
	if r.Degenerate != "" {
		fmt.Fprintf(w, "%s\n", r.Degenerate)
		return nil
	}
	fmt.Fprintf(w, "Accuracy: %.4f (%d rows)\n", r.Metrics.Accuracy, r.Metrics.Rows)
	fmt.Fprintf(w, "Actual hit rate:    %.4f\n", r.Metrics.ActualPositiveRate)
	fmt.Fprintf(w, "Predicted hit rate: %.4f\n", r.Metrics.PredictedPositiveRate)
	return nil
}

// Save writes the report to a file.
func (r *Report) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if err := r.Write(file); err != nil {
		return err
	}
	log.Info().Str("file", path).Msg("Report generated")
	return nil
}
