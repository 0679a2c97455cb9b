package policy

import (
	"fmt"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// Action is one of the fixed steering decisions an agent can take per tick.
type Action int

const (
	Straight Action = iota
	Left
	Right
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case Straight:
		return "straight"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Classifier positions inside a steering genome.
const (
	LeftClassifier = iota
	RightClassifier
	StraightClassifier

	// NumClassifiers is the genome length a steering policy requires.
	NumClassifiers
)

// SteeringPolicy is the phenotype of a steering genome: one classifier scoring each
// action over the same sensor readings.
type SteeringPolicy struct {
	NumFeatures int
	left        *evolve.LinearClassifier
	right       *evolve.LinearClassifier
	straight    *evolve.LinearClassifier
}

// CreateSteeringPolicy builds a policy from a genome of NumClassifiers classifiers
// ordered left, right, straight. The policy reads the genome's classifiers without
// copying them, so mutations of g are visible to the policy.
func CreateSteeringPolicy(g *evolve.Genome) (*SteeringPolicy, error) {
	if g.Len() != NumClassifiers {
		return nil, fmt.Errorf("steering policy needs %d classifiers, genome has %d: %w", NumClassifiers, g.Len(), evolve.ErrLengthMismatch)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("steering policy: %w", err)
	}
	return &SteeringPolicy{
		NumFeatures: g.FeatureLen(),
		left:        g.Classifiers[LeftClassifier],
		right:       g.Classifiers[RightClassifier],
		straight:    g.Classifiers[StraightClassifier],
	}, nil
}

// Scores evaluates every classifier on features, indexed by classifier position.
func (p *SteeringPolicy) Scores(features []float64) ([NumClassifiers]float64, error) {
	var scores [NumClassifiers]float64
	if len(features) != p.NumFeatures {
		return scores, fmt.Errorf("mismatch between feature count (%d) and policy inputs (%d): %w", len(features), p.NumFeatures, evolve.ErrLengthMismatch)
	}
	for i, c := range []*evolve.LinearClassifier{p.left, p.right, p.straight} {
		score, err := c.Evaluate(features)
		if err != nil {
			return scores, err
		}
		scores[i] = score
	}
	return scores, nil
}

// Decide returns the action whose classifier scores highest. A turn is only taken
// when its score is strictly above both others; every tie resolves to Straight.
func (p *SteeringPolicy) Decide(features []float64) (Action, error) {
	scores, err := p.Scores(features)
	if err != nil {
		return Straight, err
	}
	left, right, straight := scores[LeftClassifier], scores[RightClassifier], scores[StraightClassifier]
	switch {
	case left > right && left > straight:
		return Left, nil
	case right > left && right > straight:
		return Right, nil
	default:
		return Straight, nil
	}
}
