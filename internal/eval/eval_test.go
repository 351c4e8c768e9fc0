package eval

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePerfect(t *testing.T) {
	truth := []int{1, 0, 1, 1, 0}

	m, err := Evaluate(truth, truth)
	require.NoError(t, err)

	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 5, m.Rows)
	assert.Equal(t, m.ActualPositiveRate, m.PredictedPositiveRate)
}

func TestEvaluateFlipped(t *testing.T) {
	truth := []int{1, 0, 1, 1, 0}
	flipped := make([]int, len(truth))
	for i, v := range truth {
		flipped[i] = 1 - v
	}

	m, err := Evaluate(truth, flipped)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Accuracy)
}

func TestEvaluateThreeRowScenario(t *testing.T) {
	m, err := Evaluate([]int{1, 0, 1}, []int{1, 0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, m.Accuracy, 1e-12)
	assert.InDelta(t, 2.0/3.0, m.ActualPositiveRate, 1e-12)
	assert.InDelta(t, 1.0/3.0, m.PredictedPositiveRate, 1e-12)
}

func TestEvaluateEmpty(t *testing.T) {
	_, err := Evaluate(nil, nil)
	require.ErrorIs(t, err, ErrNoRows)
}

func TestEvaluateLengthMismatch(t *testing.T) {
	_, err := Evaluate([]int{1, 0}, []int{1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRows)
}

func TestFrequencyTable(t *testing.T) {
	got := FrequencyTable([]string{"1", "0", "0", "1", "0"})

	require.Len(t, got, 2)
	assert.Equal(t, LabelCount{Label: "0", Count: 3, Share: 0.6}, got[0])
	assert.Equal(t, LabelCount{Label: "1", Count: 2, Share: 0.4}, got[1])
}

func TestSummarize(t *testing.T) {
	s := Summarize("launch_speed", []float64{90, 100, 110})

	assert.Equal(t, "launch_speed", s.Name)
	assert.InDelta(t, 100, s.Mean, 1e-12)
	assert.InDelta(t, 10, s.StdDev, 1e-12)
	assert.Equal(t, 90.0, s.Min)
	assert.Equal(t, 110.0, s.Max)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("launch_angle", nil)
	assert.False(t, math.IsNaN(s.Mean))
	assert.Zero(t, s.Mean)
}

func TestSampleLines(t *testing.T) {
	header := []string{"launch_speed", "babip_value"}
	rows := [][]string{{"98.4", "1"}, {"75.2", "0"}, {"91.1", "1"}}

	lines := SampleLines(header, rows, 2)

	require.Len(t, lines, 3, "header plus two rows")
	assert.Contains(t, lines[0], "launch_speed")
	assert.Contains(t, lines[1], "98.4")
}

func TestReportWrite(t *testing.T) {
	r := &Report{
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		CleanedRows: 100,
		TrainRows:   75,
		EvalRows:    25,
		Sample:      []string{"launch_speed  babip_value", "98.4  1"},
		Frequencies: []LabelCount{{Label: "0", Count: 60, Share: 0.6}, {Label: "1", Count: 40, Share: 0.4}},
		Metrics: Metrics{
			Rows:                  25,
			Accuracy:              0.82,
			ActualPositiveRate:    0.4,
			PredictedPositiveRate: 0.36,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "Accuracy: 0.8200")
	assert.Contains(t, out, "Actual hit rate:    0.4000")
	assert.Contains(t, out, "Predicted hit rate: 0.3600")
	assert.Contains(t, out, "OUTCOME LABEL FREQUENCY")
}

func TestReportWriteDegenerate(t *testing.T) {
	r := &Report{
		GeneratedAt: time.Now(),
		Degenerate:  "insufficient data: evaluation partition is empty, accuracy undefined",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))

	assert.Contains(t, buf.String(), "insufficient data")
	assert.NotContains(t, buf.String(), "Accuracy:")
}
