package predict

import (
	"math/rand/v2"
	"slices"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/logger"
)

const numFeatures = 2

type point [numFeatures]float64

// Forest is a bagged ensemble of regression trees. A Forest with the same
// Trees and Seed always gives the same predictions for the same history.
type Forest struct {
	Trees int
	Seed  uint64
}

func NewForest() *Forest {
	return &Forest{Trees: constants.PredictionTrees, Seed: constants.PredictionSeed}
}

var _ Predictor = (*Forest)(nil)

func (f *Forest) Predict(history []Sample, scenarios []Scenario) ([]float64, error) {
	if err := checkHistory(history); err != nil {
		return nil, err
	}

	xs := make([]point, len(history))
	ys := make([]float64, len(history))
	for i, s := range history {
		xs[i] = point{s.TimeTakenMin, float64(s.Difficulty)}
		ys[i] = s.Percentage
	}

	trees := max(f.Trees, 1)
	rng := rand.New(rand.NewPCG(f.Seed, f.Seed))
	roots := make([]*node, trees)
	for t := range roots {
		idx := make([]int, len(xs))
		for i := range idx {
			idx[i] = rng.IntN(len(xs))
		}
		roots[t] = grow(xs, ys, idx)
	}
	logger.Debug("Fitted forest", "trees", trees, "samples", len(xs))

	out := make([]float64, len(scenarios))
	for i, sc := range scenarios {
		p := point{sc.TimeTakenMin, float64(sc.Difficulty)}
		var sum float64
		for _, r := range roots {
			sum += r.eval(p)
		}
		out[i] = analytics.Round2(sum / float64(trees))
	}
	return out, nil
}

type node struct {
	leaf        bool
	value       float64
	feature     int
	threshold   float64
	left, right *node
}

func (n *node) eval(p point) float64 {
	for !n.leaf {
		if p[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// grow builds a CART tree on the rows in idx, splitting on the threshold that
// minimises the summed squared error until a node is pure or cannot split.
func grow(xs []point, ys []float64, idx []int) *node {
	var sum float64
	for _, i := range idx {
		sum += ys[i]
	}
	leaf := &node{leaf: true, value: sum / float64(len(idx))}
	if len(idx) < 2 || pure(ys, idx) {
		return leaf
	}

	feature, threshold, ok := bestSplit(xs, ys, idx)
	if !ok {
		return leaf
	}
	var left, right []int
	for _, i := range idx {
		if xs[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      grow(xs, ys, left),
		right:     grow(xs, ys, right),
	}
}

func pure(ys []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if ys[i] != ys[idx[0]] {
			return false
		}
	}
	return true
}

func bestSplit(xs []point, ys []float64, idx []int) (feature int, threshold float64, ok bool) {
	var total float64
	for _, i := range idx {
		total += ys[i]
	}
	n := float64(len(idx))
	// Minimising SSE is maximising sum_l^2/n_l + sum_r^2/n_r.
	best := total * total / n

	sorted := slices.Clone(idx)
	for f := range numFeatures {
		slices.SortStableFunc(sorted, func(a, b int) int {
			switch {
			case xs[a][f] < xs[b][f]:
				return -1
			case xs[a][f] > xs[b][f]:
				return 1
			}
			return 0
		})
		var left float64
		for k := 0; k < len(sorted)-1; k++ {
			left += ys[sorted[k]]
			lo, hi := xs[sorted[k]][f], xs[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			nl := float64(k + 1)
			right := total - left
			score := left*left/nl + right*right/(n-nl)
			if score > best+1e-12 {
				best, feature, threshold, ok = score, f, (lo+hi)/2, true
			}
		}
	}
	return feature, threshold, ok
}
