package evolve

import (
	"fmt"
	"math/rand"
)

// LinearClassifier is a weighted-sum decision unit over a fixed-length feature vector.
// The number of weights is fixed at construction; only their values change.
type LinearClassifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// NewLinearClassifier creates a classifier over numFeatures inputs with weights and
// bias drawn uniformly from [-1, 1].
func NewLinearClassifier(numFeatures int, rng *rand.Rand) *LinearClassifier {
	c := &LinearClassifier{Weights: make([]float64, numFeatures)}
	c.Randomize(rng)
	return c
}

// NewLinearClassifierWith creates a classifier from explicit parameters. The weights are copied.
func NewLinearClassifierWith(weights []float64, bias float64) *LinearClassifier {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &LinearClassifier{Weights: w, Bias: bias}
}

// Randomize resets every weight and the bias to an independent uniform value in [-1, 1].
// It is only used when a genome is created from scratch.
func (c *LinearClassifier) Randomize(rng *rand.Rand) {
	for i := range c.Weights {
		c.Weights[i] = uniform(rng, -1, 1)
	}
	c.Bias = uniform(rng, -1, 1)
}

// Evaluate returns bias + Σ weights[i]*features[i].
func (c *LinearClassifier) Evaluate(features []float64) (float64, error) {
	if len(features) != len(c.Weights) {
		return 0, fmt.Errorf("evaluate classifier: %d features for %d weights: %w", len(features), len(c.Weights), ErrLengthMismatch)
	}
	sum := c.Bias
	for i, x := range features {
		sum += c.Weights[i] * x
	}
	return sum, nil
}

// Predict returns +1 when Evaluate is non-negative and -1 otherwise.
func (c *LinearClassifier) Predict(features []float64) (int, error) {
	score, err := c.Evaluate(features)
	if err != nil {
		return 0, err
	}
	if score >= 0 {
		return 1, nil
	}
	return -1, nil
}

// Len returns the feature length the classifier accepts.
func (c *LinearClassifier) Len() int {
	return len(c.Weights)
}

// Copy creates a deep copy of the classifier.
func (c *LinearClassifier) Copy() *LinearClassifier {
	return NewLinearClassifierWith(c.Weights, c.Bias)
}

// String returns a string representation of the classifier.
func (c *LinearClassifier) String() string {
	return fmt.Sprintf("LinearClassifier(Weights: %.3f, Bias: %.3f)", c.Weights, c.Bias)
}

// uniform draws a value uniformly from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
