// Package model implements the random forest classifier used to predict the
// batted-ball outcome label from the three model features. Trees are
// CART-style with gini impurity; categorical features split on equality and
// continuous features on thresholds.
package model

import (
	"math/rand"
	"sort"
)

// Node is a tree node. Fields are exported for gob serialization of trained
// models.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Equal     bool // equality split (categorical feature)
	Left      *Node
	Right     *Node
	Label     int
	N         int
}

// treeBuilder carries per-tree build state. The generator belongs to the
// tree alone; it never touches the pipeline's shuffle or split randomness.
type treeBuilder struct {
	x           [][]float64
	y           []int
	categorical []bool
	leafSize    int
	perSplit    int
	rnd         *rand.Rand
}

func (b *treeBuilder) build(idx []int) *Node {
	node := &Node{N: len(idx)}

	counts := map[int]int{}
	for _, i := range idx {
		counts[b.y[i]]++
	}
	node.Label = majority(counts)

	if len(counts) <= 1 || len(idx) < 2*b.leafSize {
		node.Leaf = true
		return node
	}

	feature, threshold, equal, left, right := b.bestSplit(idx, counts)
	if feature < 0 {
		node.Leaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Equal = equal
	node.Left = b.build(left)
	node.Right = b.build(right)
	return node
}

// bestSplit searches a random subset of features for the gini-optimal split
// that leaves at least leafSize samples on each side. feature is -1 when no
// split improves on the parent.
func (b *treeBuilder) bestSplit(idx []int, parentCounts map[int]int) (feature int, threshold float64, equal bool, left, right []int) {
	p := len(b.x[0])
	features := b.rnd.Perm(p)
	if b.perSplit < p {
		features = features[:b.perSplit]
	}

	parent := gini(parentCounts, len(idx))
	bestGain := 0.0
	feature = -1

	for _, f := range features {
		if b.categorical[f] {
			for _, v := range b.uniqueValues(idx, f) {
				l, r := b.partition(idx, f, v, true)
				if gain := b.splitGain(parent, len(idx), l, r); gain > bestGain {
					bestGain, feature, threshold, equal, left, right = gain, f, v, true, l, r
				}
			}
			continue
		}

		values := b.uniqueValues(idx, f)
		for i := 1; i < len(values); i++ {
			thr := (values[i-1] + values[i]) / 2
			l, r := b.partition(idx, f, thr, false)
			if gain := b.splitGain(parent, len(idx), l, r); gain > bestGain {
				bestGain, feature, threshold, equal, left, right = gain, f, thr, false, l, r
			}
		}
	}
	return feature, threshold, equal, left, right
}

func (b *treeBuilder) uniqueValues(idx []int, f int) []float64 {
	seen := map[float64]struct{}{}
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		v := b.x[i][f]
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	sort.Float64s(values)
	return values
}

func (b *treeBuilder) partition(idx []int, f int, value float64, equal bool) (left, right []int) {
	for _, i := range idx {
		v := b.x[i][f]
		if (equal && v == value) || (!equal && v <= value) {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func (b *treeBuilder) splitGain(parent float64, n int, left, right []int) float64 {
	if len(left) < b.leafSize || len(right) < b.leafSize {
		return 0
	}
	lc := map[int]int{}
	for _, i := range left {
		lc[b.y[i]]++
	}
	rc := map[int]int{}
	for _, i := range right {
		rc[b.y[i]]++
	}
	weighted := float64(len(left))/float64(n)*gini(lc, len(left)) +
		float64(len(right))/float64(n)*gini(rc, len(right))
	return parent - weighted
}

func (n *Node) predict(x []float64) int {
	node := n
	for !node.Leaf {
		v := x[node.Feature]
		if (node.Equal && v == node.Threshold) || (!node.Equal && v <= node.Threshold) {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Label
}

func gini(counts map[int]int, n int) float64 {
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		res += p * (1 - p)
	}
	return res
}

func majority(counts map[int]int) int {
	best, bestCount := 0, -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best
}
