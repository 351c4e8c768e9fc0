package model

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Config is the classifier's hyperparameter surface.
type Config struct {
	Trees            int   // ensemble size
	FeaturesPerSplit int   // candidate features sampled per decision split
	LeafSize         int   // minimum terminal-node sample count
	Seed             int64 // 0 => fresh seed per Fit
}

// DefaultConfig mirrors the reference run: 150 trees, all three features
// eligible at every split, unit leaves.
func DefaultConfig() Config {
	return Config{Trees: 150, FeaturesPerSplit: 3, LeafSize: 1}
}

// Forest is a bootstrap-aggregated ensemble of CART trees.
type Forest struct {
	cfg         Config
	trees       []*Node
	categorical []bool
}

// New returns an untrained forest. Categorical marks which feature columns
// split on equality rather than threshold; nil means all continuous.
func New(cfg Config, categorical []bool) *Forest {
	return &Forest{cfg: cfg, categorical: categorical}
}

// Fit trains the ensemble on X (n rows of p features) and the labels y.
// Each tree draws a bootstrap sample and owns a generator derived from the
// forest seed, so training randomness never leaks into the pipeline's
// shuffle or split sources.
func (f *Forest) Fit(x [][]float64, y []int) error {
	if len(x) == 0 {
		return errors.New("forest: empty training set")
	}
	n := len(x)
	if len(y) != n {
		return fmt.Errorf("forest: %d rows but %d labels", n, len(y))
	}
	p := len(x[0])
	for i := range x {
		if len(x[i]) != p {
			return fmt.Errorf("forest: row %d has %d features, want %d", i, len(x[i]), p)
		}
	}
	if f.cfg.Trees <= 0 {
		return fmt.Errorf("forest: tree count %d must be positive", f.cfg.Trees)
	}
	if f.cfg.FeaturesPerSplit < 1 || f.cfg.FeaturesPerSplit > p {
		return fmt.Errorf("forest: features per split %d outside [1,%d]", f.cfg.FeaturesPerSplit, p)
	}
	if f.cfg.LeafSize < 1 {
		return fmt.Errorf("forest: leaf size %d must be at least 1", f.cfg.LeafSize)
	}

	if f.categorical == nil {
		f.categorical = make([]bool, p)
	}
	seed := f.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f.trees = make([]*Node, f.cfg.Trees)
	var wg sync.WaitGroup
	for t := 0; t < f.cfg.Trees; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed + int64(t)))

			sample := make([]int, n)
			for i := range sample {
				sample[i] = rnd.Intn(n)
			}

			builder := &treeBuilder{
				x:           x,
				y:           y,
				categorical: f.categorical,
				leafSize:    f.cfg.LeafSize,
				perSplit:    f.cfg.FeaturesPerSplit,
				rnd:         rnd,
			}
			f.trees[t] = builder.build(sample)
		}(t)
	}
	wg.Wait()
	return nil
}

// Predict returns the majority-vote label for each row, in input order.
func (f *Forest) Predict(x [][]float64) ([]int, error) {
	if len(f.trees) == 0 {
		return nil, errors.New("forest: not trained")
	}
	out := make([]int, len(x))
	for i, row := range x {
		votes := map[int]int{}
		for _, tree := range f.trees {
			votes[tree.predict(row)]++
		}
		out[i] = majority(votes)
	}
	return out, nil
}

// forestState is the gob image of a trained forest.
type forestState struct {
	Config      Config
	Trees       []*Node
	Categorical []bool
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f *Forest) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(forestState{
		Config:      f.cfg,
		Trees:       f.trees,
		Categorical: f.categorical,
	})
	if err != nil {
		return nil, fmt.Errorf("forest: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (f *Forest) UnmarshalBinary(data []byte) error {
	var state forestState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("forest: decode: %w", err)
	}
	f.cfg = state.Config
	f.trees = state.Trees
	f.categorical = state.Categorical
	return nil
}
