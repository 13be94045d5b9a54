package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"outgoing", "incoming", "both"} {
		got, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, Direction(s), got)
	}

	got, err := ParseDirection(" Both ")
	require.NoError(t, err)
	assert.Equal(t, DirectionBoth, got)

	_, err = ParseDirection("sideways")
	require.Error(t, err)
}
