package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleReturnsDistinctIndices(t *testing.T) {
	indices, err := Sample(10, 4)
	require.NoError(t, err)
	require.Len(t, indices, 4)

	seen := make(map[int]bool)
	for _, idx := range indices {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 10)
		assert.False(t, seen[idx], "index sampled twice")
		seen[idx] = true
	}
}

func TestSampleCapsAtPopulation(t *testing.T) {
	indices, err := Sample(3, 10)
	require.NoError(t, err)
	assert.Len(t, indices, 3)
}

func TestSampleEmpty(t *testing.T) {
	indices, err := Sample(0, 5)
	require.NoError(t, err)
	assert.Empty(t, indices)
}

func TestShuffleKeepsElements(t *testing.T) {
	values := []int{1, 2, 3, 4, 5}
	err := Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, values)
}

func TestToken(t *testing.T) {
	first, err := Token(8)
	require.NoError(t, err)
	assert.Len(t, first, 8)

	second, err := Token(8)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
