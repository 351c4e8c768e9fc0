// Package pipeline wires the dataset stages, classifier, and evaluator into
// the single batch run described by the configuration: load and join the two
// sources, project and clean, shuffle, split, train, predict, score.
//
// Stages run strictly in order and each fully materializes its output before
// the next begins. Any stage failure aborts the run; no partial report is
// produced.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"hitcast/internal/cfg"
	"hitcast/internal/dataset"
	"hitcast/internal/eval"
	"hitcast/internal/fetch"
	"hitcast/internal/metrics"
	"hitcast/internal/model"
	"hitcast/internal/storage"

	"github.com/rs/zerolog/log"
)

// Result carries the final report and the trained model of one run.
type Result struct {
	Report *eval.Report
	Forest *model.Forest
}

// Run executes the full pipeline. store may be nil, in which case nothing is
// persisted.
func Run(ctx context.Context, settings cfg.Settings, m *metrics.Metrics, store *storage.Store) (*Result, error) {
	start := time.Now()

	res, err := run(ctx, settings, m, store, start)
	if err != nil {
		m.Errors.Inc()
		return nil, err
	}
	m.PipelineRuns.Inc()

	log.Info().
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run complete")
	return res, nil
}

func run(ctx context.Context, settings cfg.Settings, m *metrics.Metrics, store *storage.Store, start time.Time) (*Result, error) {
	events, err := loadEvents(ctx, settings)
	if err != nil {
		return nil, err
	}
	players, err := dataset.ReadCSVFile(settings.PlayersPath)
	if err != nil {
		return nil, err
	}
	m.RowsLoaded.Add(float64(events.Len()))

	joined, err := dataset.LeftJoin(events, players, "batter")
	if err != nil {
		return nil, err
	}

	selected, err := joined.Select(dataset.RequiredColumns...)
	if err != nil {
		return nil, err
	}

	cleaned := selected.DropNull(dataset.RequiredColumns...)
	m.RowsFiltered.Add(float64(selected.Len() - cleaned.Len()))
	log.Info().
		Int("before", selected.Len()).
		Int("after", cleaned.Len()).
		Msg("Null and sentinel rows removed")

	coerced, err := dataset.Coerce(cleaned)
	if err != nil {
		return nil, err
	}

	shuffled := coerced.Shuffle()

	train, holdout, err := dataset.Split(shuffled, settings.SampleLimit, settings.TrainFraction, settings.SplitSeed)
	if err != nil {
		return nil, err
	}
	m.RowsSampled.Add(float64(train.Len() + holdout.Len()))
	log.Info().
		Int("train", train.Len()).
		Int("eval", holdout.Len()).
		Int64("seed", settings.SplitSeed).
		Msg("Partitions created")

	trainDesign, err := dataset.Encode(train)
	if err != nil {
		return nil, err
	}

	forest := model.New(model.Config{
		Trees:            settings.Trees,
		FeaturesPerSplit: settings.FeaturesPerSplit,
		LeafSize:         settings.LeafSize,
		Seed:             settings.ForestSeed,
	}, []bool{false, false, true})

	trainStart := time.Now()
	if err := forest.Fit(trainDesign.X, trainDesign.Y); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	m.TrainDuration.Observe(time.Since(trainStart).Seconds())
	log.Info().
		Int("trees", settings.Trees).
		Dur("elapsed", time.Since(trainStart)).
		Msg("Forest trained")

	report := &eval.Report{
		GeneratedAt: start,
		CleanedRows: coerced.Len(),
		TrainRows:   train.Len(),
		EvalRows:    holdout.Len(),
		Sample:      eval.SampleLines(coerced.Header, coerced.Rows, 5),
	}
	if labels, err := coerced.Column("babip_value"); err == nil {
		report.Frequencies = eval.FrequencyTable(labels)
	}

	if holdout.Len() == 0 {
		report.Degenerate = "insufficient data: evaluation partition is empty, accuracy undefined"
		return &Result{Report: report, Forest: forest}, persist(store, start, forest, report)
	}

	// The holdout is encoded through the training level set so a location
	// label carries the same code at predict time as it did at fit time.
	holdoutDesign, err := dataset.EncodeWithLevels(holdout, trainDesign.Levels)
	if err != nil {
		return nil, err
	}

	predicted, err := forest.Predict(holdoutDesign.X)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	m.Predictions.Add(float64(len(predicted)))

	scores, err := eval.Evaluate(holdoutDesign.Y, predicted)
	if err != nil {
		return nil, err
	}
	m.Accuracy.Set(scores.Accuracy)
	report.Metrics = scores
	report.Features = featureSummaries(holdoutDesign.X)

	return &Result{Report: report, Forest: forest}, persist(store, start, forest, report)
}

func loadEvents(ctx context.Context, settings cfg.Settings) (*dataset.Frame, error) {
	if settings.EventsPath != "" {
		return dataset.ReadCSVFile(settings.EventsPath)
	}

	body, err := fetch.New(settings.FetchTimeout).Download(ctx, settings.EventsURL)
	if err != nil {
		return nil, err
	}
	f, err := dataset.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", settings.EventsURL, err)
	}
	return f, nil
}

func featureSummaries(x [][]float64) []eval.FeatureSummary {
	names := []string{"launch_speed", "launch_angle"}
	out := make([]eval.FeatureSummary, 0, len(names))
	for j, name := range names {
		values := make([]float64, len(x))
		for i, row := range x {
			values[i] = row[j]
		}
		out = append(out, eval.Summarize(name, values))
	}
	return out
}

func persist(store *storage.Store, ts time.Time, forest *model.Forest, report *eval.Report) error {
	if store == nil {
		return nil
	}

	data, err := forest.MarshalBinary()
	if err != nil {
		return err
	}
	if err := store.SaveModel(ts, data); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	err = store.SaveRun(storage.RunRecord{
		Timestamp:             ts,
		CleanedRows:           report.CleanedRows,
		TrainRows:             report.TrainRows,
		EvalRows:              report.EvalRows,
		Accuracy:              report.Metrics.Accuracy,
		ActualPositiveRate:    report.Metrics.ActualPositiveRate,
		PredictedPositiveRate: report.Metrics.PredictedPositiveRate,
		Degenerate:            report.Degenerate,
	})
	if err != nil {
		return fmt.Errorf("save run record: %w", err)
	}

	log.Info().Msg("Model and run record persisted")
	return nil
}
