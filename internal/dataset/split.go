package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// Split truncates the frame to its first limit rows and partitions them into
// disjoint training and evaluation frames. The truncation runs post-shuffle,
// so the prefix is a random sample rather than a biased head of the source.
//
// The selection is driven by its own generator seeded with seed, so repeated
// runs over the same input reproduce the identical train/eval boundary while
// the classifier's own randomness stays free to vary. Training set size is
// floor(trainFrac * limit); the remaining rows form the evaluation set, no
// row dropped or duplicated.
func Split(f *Frame, limit int, trainFrac float64, seed int64) (train, eval *Frame, err error) {
	if trainFrac <= 0 || trainFrac > 1 {
		return nil, nil, fmt.Errorf("split: training fraction %v outside (0,1]", trainFrac)
	}
	if limit <= 0 {
		return nil, nil, fmt.Errorf("split: row limit %d must be positive", limit)
	}
	if limit > f.Len() {
		return nil, nil, fmt.Errorf("split: row limit %d exceeds available rows %d", limit, f.Len())
	}

	sample := f.Rows[:limit]
	// The epsilon keeps fractions whose product lands a hair under the real
	// value (0.29*100 = 28.999...) from losing a training row to truncation.
	nTrain := int(math.Floor(trainFrac*float64(limit) + 1e-9))

	rnd := rand.New(rand.NewSource(seed))
	perm := rnd.Perm(limit)

	inTrain := make([]bool, limit)
	for _, p := range perm[:nTrain] {
		inTrain[p] = true
	}

	trainRows := make([][]string, 0, nTrain)
	evalRows := make([][]string, 0, limit-nTrain)
	for i, row := range sample {
		if inTrain[i] {
			trainRows = append(trainRows, row)
		} else {
			evalRows = append(evalRows, row)
		}
	}

	return NewFrame(f.Header, trainRows), NewFrame(f.Header, evalRows), nil
}
