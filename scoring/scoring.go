/*
Package scoring defines the feature scores of grammar rules, chart items and
derivations, and the weights to combine them into a single model score.

Scores are log-domain values. Combining scores of sub-derivations is plain
vector addition, the model score is the dot product with a weight vector.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scoring

import (
	"fmt"
	"strings"
)

// Feature is an index into a score vector.
type Feature int

// Features of the log-linear model.
const (
	TM   Feature = iota // translation model score (rule weight)
	LM                  // n-gram language model log-probability
	WP                  // word penalty: number of NL words
	Rule                // rule count
	Gap                 // gap filler log-probability
	NumFeatures
)

var featureNames = [...]string{"TM", "LM", "WP", "Rule", "Gap"}

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return fmt.Sprintf("Feature(%d)", int(f))
	}
	return featureNames[f]
}

// Vector holds one score per feature.
type Vector [NumFeatures]float64

// Add returns the component-wise sum of v and w.
func (v Vector) Add(w Vector) Vector {
	for i := range v {
		v[i] += w[i]
	}
	return v
}

// With returns a copy of v with feature f incremented by x.
func (v Vector) With(f Feature, x float64) Vector {
	v[f] += x
	return v
}

// Get returns the score of feature f.
func (v Vector) Get(f Feature) float64 {
	return v[f]
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, x := range v {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%.4g", Feature(i), x)
	}
	b.WriteString("]")
	return b.String()
}

// Weights is a weight vector for the features.
type Weights Vector

// DefaultWeights returns weight 1 for the probabilistic features and weight 0
// for the count features.
func DefaultWeights() Weights {
	var w Weights
	w[TM] = 1
	w[LM] = 1
	w[Gap] = 1
	return w
}

// NewWeights creates weights from a map of feature names, e.g.
//
//     NewWeights(map[string]float64{"TM": 1.0, "LM": 0.5, "WP": -0.1})
//
// Unnamed features get weight 0.
func NewWeights(m map[string]float64) (Weights, error) {
	var w Weights
	for name, x := range m {
		found := false
		for i, fn := range featureNames {
			if strings.EqualFold(fn, name) {
				w[i] = x
				found = true
				break
			}
		}
		if !found {
			return w, fmt.Errorf("unknown feature: %s", name)
		}
	}
	return w, nil
}

// Of returns the weight of feature f.
func (w Weights) Of(f Feature) float64 {
	return w[f]
}

// Dot returns the model score of a score vector.
func (w Weights) Dot(v Vector) float64 {
	s := 0.0
	for i := range v {
		s += w[i] * v[i]
	}
	return s
}
