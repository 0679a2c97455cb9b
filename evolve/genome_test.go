package evolve

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenomeCloneIsDeep(t *testing.T) {
	g := NewRandomGenome(3, 7, rand.New(rand.NewSource(2)))
	clone := g.Clone()
	require.True(t, g.Equal(clone))

	clone.Classifiers[0].Weights[0] += 1
	clone.Classifiers[2].Bias -= 1
	assert.False(t, g.Equal(clone))
	assert.NotSame(t, g.Classifiers[0], clone.Classifiers[0])

	var empty *Genome
	assert.Nil(t, empty.Clone())
	assert.Equal(t, 0, empty.Len())
}

func TestNewGenomeCopiesClassifiers(t *testing.T) {
	c := NewLinearClassifierWith([]float64{1, 2}, 3)
	g := NewGenome(c)
	c.Weights[0] = 9
	assert.Equal(t, 1.0, g.Classifiers[0].Weights[0])
}

func TestGenomeValidate(t *testing.T) {
	ok := NewGenome(
		NewLinearClassifierWith([]float64{1, 2}, 0),
		NewLinearClassifierWith([]float64{3, 4}, 0),
	)
	require.NoError(t, ok.Validate())
	assert.Equal(t, 2, ok.FeatureLen())

	bad := NewGenome(
		NewLinearClassifierWith([]float64{1, 2}, 0),
		NewLinearClassifierWith([]float64{3}, 0),
	)
	require.ErrorIs(t, bad.Validate(), ErrLengthMismatch)

	require.NoError(t, (&Genome{}).Validate())
}

func TestGenomeCompatible(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := NewRandomGenome(3, 7, rng)
	b := NewRandomGenome(3, 7, rng)
	assert.True(t, a.Compatible(b))

	assert.False(t, a.Compatible(NewRandomGenome(2, 7, rng)))
	assert.False(t, a.Compatible(NewRandomGenome(3, 5, rng)))
	assert.False(t, a.Compatible(&Genome{}))
	assert.False(t, (&Genome{}).Compatible(&Genome{}))
}
