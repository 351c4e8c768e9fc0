// Package eval scores classifier predictions against true labels and renders
// the run report.
package eval

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Metrics compares predicted against actual binary labels.
type Metrics struct {
	Rows                  int
	Accuracy              float64
	ActualPositiveRate    float64
	PredictedPositiveRate float64
}

// ErrNoRows marks a degenerate evaluation input: accuracy is undefined on an
// empty partition and must be reported as such, not divided into.
var ErrNoRows = errors.New("eval: no rows to evaluate, insufficient data")

// Evaluate computes accuracy and the actual and predicted positive-class
// rates over a partition carrying both label forms.
func Evaluate(truth, predicted []int) (Metrics, error) {
	if len(truth) == 0 {
		return Metrics{}, ErrNoRows
	}
	if len(truth) != len(predicted) {
		return Metrics{}, fmt.Errorf("eval: %d true labels but %d predictions", len(truth), len(predicted))
	}

	correct, actualPos, predictedPos := 0, 0, 0
	for i := range truth {
		if truth[i] == predicted[i] {
			correct++
		}
		if truth[i] == 1 {
			actualPos++
		}
		if predicted[i] == 1 {
			predictedPos++
		}
	}

	n := float64(len(truth))
	return Metrics{
		Rows:                  len(truth),
		Accuracy:              float64(correct) / n,
		ActualPositiveRate:    float64(actualPos) / n,
		PredictedPositiveRate: float64(predictedPos) / n,
	}, nil
}

// LabelCount is one row of a frequency table.
type LabelCount struct {
	Label string
	Count int
	Share float64
}

// FrequencyTable tallies label occurrences, sorted by label for stable
// output.
func FrequencyTable(labels []string) []LabelCount {
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{
			Label: label,
			Count: count,
			Share: float64(count) / float64(len(labels)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// FeatureSummary describes one continuous feature's distribution.
type FeatureSummary struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes distribution statistics for a continuous feature.
func Summarize(name string, values []float64) FeatureSummary {
	s := FeatureSummary{Name: name}
	if len(values) == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	s.Min, s.Max = values[0], values[0]
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}
