package confidence

import (
	"testing"

	"denovo/api/models/constants"

	"github.com/stretchr/testify/assert"
)

func TestRankOrdersTiers(t *testing.T) {
	assert.Greater(t, Rank(High), Rank(Moderate))
	assert.Greater(t, Rank(Moderate), Rank(Low))
	assert.Greater(t, Rank(Low), Rank(None))
}

func TestAtOrAboveReturnsMinimumTierAndStronger(t *testing.T) {
	assert.Equal(t, []constants.ConfidenceLevel{Moderate, High}, AtOrAbove(Moderate))
	assert.Equal(t, []constants.ConfidenceLevel{High}, AtOrAbove(High))
	assert.Equal(t, []constants.ConfidenceLevel{None, Low, Moderate, High}, AtOrAbove(None))
}

func TestCastToConfidenceLevelIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, High, CastToConfidenceLevel("HIGH"))
	assert.Equal(t, Moderate, CastToConfidenceLevel("moderate"))
	assert.Equal(t, Low, CastToConfidenceLevel("Low"))
}
