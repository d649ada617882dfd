// Package classifier picks a cooling setting for a reading with a decision tree.
//
// Training labels come from binning each example's true temperature with the
// shared comfort band, so labelling and occupant feedback read the same
// configuration. The tree itself is a deterministic CART classifier (Gini
// impurity, midpoint thresholds) over temperature, occupancy and air quality.
package classifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/models"
)

var (
	// ErrUntrainedData is returned when no example can be used for training.
	ErrUntrainedData = errors.New("no usable training data")

	// ErrModelNotTrained is returned when predicting without a trained model.
	ErrModelNotTrained = errors.New("decision tree not trained")
)

// FeatureNames lists the feature columns in the order the tree indexes them.
var FeatureNames = []string{"temperature", "occupancy", "air_quality"}

const numClasses = 3

// Options controls tree growth.
type Options struct {
	// MaxDepth limits depth. 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the smallest node that may be split. Values below 2 act as 2.
	MinSamplesSplit int
}

// OptionsFromConfig converts classifier configuration into training options.
func OptionsFromConfig(c config.ClassifierConfig) Options {
	return Options{MaxDepth: c.MaxDepth, MinSamplesSplit: c.MinSamplesSplit}
}

// Node is a decision tree node. Leaves carry a Setting; internal nodes send
// x[Feature] <= Threshold left and everything else right.
type Node struct {
	Leaf      bool           `json:"leaf"`
	Setting   models.Setting `json:"setting,omitempty"`
	Feature   int            `json:"feature"`
	Threshold float64        `json:"threshold"`
	Left      *Node          `json:"left,omitempty"`
	Right     *Node          `json:"right,omitempty"`

	// Counts holds the training class counts indexed like models.AllSettings.
	Counts [numClasses]int `json:"counts"`
}

// Tree is a trained classifier. It is immutable once returned by Train.
type Tree struct {
	Root      *Node                `json:"root"`
	Band      config.ComfortConfig `json:"band"`
	Samples   int                  `json:"samples"`
	Dropped   int                  `json:"dropped"`
	TrainedAt time.Time            `json:"trained_at"`
}

// Label bins a true temperature with the comfort band:
// (floor, lowUpper] -> Low, (lowUpper, mediumUpper] -> Medium,
// (mediumUpper, ceiling] -> High. Anything else has no label.
func Label(trueTemp float64, band config.ComfortConfig) (models.Setting, bool) {
	switch {
	case trueTemp <= band.LabelFloor || trueTemp > band.LabelCeiling:
		return "", false
	case trueTemp <= band.LowUpper:
		return models.SettingLow, true
	case trueTemp <= band.MediumUpper:
		return models.SettingMedium, true
	default:
		return models.SettingHigh, true
	}
}

type sample struct {
	x     [3]float64
	class int
}

// Train fits a tree to the examples. Examples whose true temperature falls
// outside the band are dropped; if none remain, ErrUntrainedData is returned.
func Train(examples []models.TrainingExample, band config.ComfortConfig, opts Options) (*Tree, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("train: %w", ErrUntrainedData)
	}

	samples := make([]sample, 0, len(examples))
	for _, ex := range examples {
		s, ok := Label(ex.TrueTemperature, band)
		if !ok {
			continue
		}
		samples = append(samples, sample{x: ex.Features(), class: s.Index()})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("train: all %d examples fall outside (%g, %g]: %w",
			len(examples), band.LabelFloor, band.LabelCeiling, ErrUntrainedData)
	}

	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = 2
	}

	g := grower{opts: opts}
	root := g.grow(samples, 0)

	return &Tree{
		Root:      root,
		Band:      band,
		Samples:   len(samples),
		Dropped:   len(examples) - len(samples),
		TrainedAt: time.Now().UTC(),
	}, nil
}

// Predict classifies one reading. It is pure for a given tree.
func (t *Tree) Predict(temperature float64, occupancy int, airQuality float64) (models.Setting, error) {
	if t == nil || t.Root == nil {
		return "", ErrModelNotTrained
	}
	x := [3]float64{temperature, float64(occupancy), airQuality}
	n := t.Root
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Setting, nil
}

// PredictReading classifies a reading.
func (t *Tree) PredictReading(r models.Reading) (models.Setting, error) {
	return t.Predict(r.Temperature, r.Occupancy, r.AirQuality)
}

// Accuracy returns the share of labelled examples the tree classifies
// correctly. Examples outside the band are ignored.
func (t *Tree) Accuracy(examples []models.TrainingExample) (float64, error) {
	if t == nil || t.Root == nil {
		return 0, ErrModelNotTrained
	}
	var total, correct int
	for _, ex := range examples {
		want, ok := Label(ex.TrueTemperature, t.Band)
		if !ok {
			continue
		}
		got, err := t.Predict(ex.Temperature, ex.Occupancy, ex.AirQuality)
		if err != nil {
			return 0, err
		}
		total++
		if got == want {
			correct++
		}
	}
	if total == 0 {
		return 0, ErrUntrainedData
	}
	return float64(correct) / float64(total), nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if t == nil {
		return 0
	}
	return depth(t.Root)
}

// NodeCount returns the total number of nodes.
func (t *Tree) NodeCount() int {
	if t == nil {
		return 0
	}
	return count(t.Root)
}

// Rules renders every root-to-leaf path as a readable rule, left to right.
func (t *Tree) Rules() []string {
	if t == nil || t.Root == nil {
		return nil
	}
	var out []string
	var walk func(n *Node, conds []string)
	walk = func(n *Node, conds []string) {
		if n.Leaf {
			cond := "always"
			if len(conds) > 0 {
				cond = strings.Join(conds, " and ")
			}
			out = append(out, fmt.Sprintf("if %s then %s %v", cond, n.Setting, n.Counts))
			return
		}
		name := FeatureNames[n.Feature]
		walk(n.Left, append(conds[:len(conds):len(conds)], fmt.Sprintf("%s <= %.3f", name, n.Threshold)))
		walk(n.Right, append(conds[:len(conds):len(conds)], fmt.Sprintf("%s > %.3f", name, n.Threshold)))
	}
	walk(t.Root, nil)
	return out
}

func depth(n *Node) int {
	if n == nil || n.Leaf {
		return 0
	}
	return 1 + max(depth(n.Left), depth(n.Right))
}

func count(n *Node) int {
	if n == nil {
		return 0
	}
	return 1 + count(n.Left) + count(n.Right)
}

type grower struct {
	opts Options
}

func (g grower) grow(samples []sample, d int) *Node {
	var counts [numClasses]int
	for _, s := range samples {
		counts[s.class]++
	}
	node := &Node{Counts: counts}

	if isPure(counts) || len(samples) < g.opts.MinSamplesSplit ||
		(g.opts.MaxDepth > 0 && d >= g.opts.MaxDepth) {
		return makeLeaf(node)
	}

	feature, threshold, ok := bestSplit(samples, counts)
	if !ok {
		return makeLeaf(node)
	}

	var left, right []sample
	for _, s := range samples {
		if s.x[feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return makeLeaf(node)
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = g.grow(left, d+1)
	node.Right = g.grow(right, d+1)
	return node
}

// makeLeaf turns n into a leaf predicting its majority class. Ties go to the
// weaker setting.
func makeLeaf(n *Node) *Node {
	best := 0
	for c := 1; c < numClasses; c++ {
		if n.Counts[c] > n.Counts[best] {
			best = c
		}
	}
	n.Leaf = true
	n.Setting = models.AllSettings[best]
	return n
}

func isPure(counts [numClasses]int) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

func gini(counts [numClasses]int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

// bestSplit scans every feature in order and every midpoint between distinct
// consecutive values, keeping the first split with the lowest weighted Gini.
// It reports false when all features are constant.
func bestSplit(samples []sample, total [numClasses]int) (int, float64, bool) {
	n := len(samples)
	bestScore := 0.0
	bestFeature, bestThreshold := -1, 0.0

	idx := make([]int, n)
	for f := 0; f < len(FeatureNames); f++ {
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return samples[idx[a]].x[f] < samples[idx[b]].x[f]
		})

		var left [numClasses]int
		right := total
		for i := 0; i < n-1; i++ {
			s := samples[idx[i]]
			left[s.class]++
			right[s.class]--

			v, next := s.x[f], samples[idx[i+1]].x[f]
			if v == next {
				continue
			}

			nl, nr := i+1, n-i-1
			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if bestFeature < 0 || score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = v + (next-v)/2
				if bestThreshold >= next {
					bestThreshold = v
				}
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
