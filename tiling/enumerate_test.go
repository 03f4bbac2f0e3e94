package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/symtile/graph"
)

func TestCandidateTileSizes(t *testing.T) {
	assert.Equal(t, []int64{1}, candidateTileSizes(1))
	assert.Equal(t, []int64{1, 2, 4, 8}, candidateTileSizes(8))
	// A non-power-of-two extent is appended as its own candidate.
	assert.Equal(t, []int64{1, 2, 4, 8, 16, 32, 64, 100}, candidateTileSizes(100))
	assert.NotContains(t, candidateTileSizes(100), int64(128))
}

func TestEnumerateGoodTilingsOrderAndFilter(t *testing.T) {
	everything := EnumerateGoodTilings([]int64{4, 3}, func(Tiling) bool { return true })
	require.Len(t, everything, 9) // {1,2,4} x {1,2,3}
	assert.Equal(t, Tiling{1, 1}, everything[0])
	assert.Equal(t, Tiling{1, 2}, everything[1])
	assert.Equal(t, Tiling{2, 1}, everything[3])
	assert.Equal(t, Tiling{4, 3}, everything[8])

	onlySquare := EnumerateGoodTilings([]int64{4, 4}, func(tiling Tiling) bool {
		return tiling[0] == tiling[1]
	})
	assert.Equal(t, []Tiling{{1, 1}, {2, 2}, {4, 4}}, onlySquare)
}

func TestGoodTilings(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 8, 16))
	a := mustAnalyze(t, g.Reshape(x, 128))

	good, err := a.GoodTilings(DefaultEmitterLimits)
	require.NoError(t, err)
	// Every power of two keeps whole rows; the extent itself is one of them.
	assert.Equal(t, []Tiling{{1}, {2}, {4}, {8}, {16}, {32}, {64}, {128}}, good)
}

func TestGoodTilingsHonorsEmitterLimits(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	a := mustAnalyze(t, g.Exp(x))

	good, err := a.GoodTilings(EmitterLimits{MaxTileElements: 64})
	require.NoError(t, err)
	require.NotEmpty(t, good)
	for _, tiling := range good {
		assert.LessOrEqual(t, tiling[0]*tiling[1], int64(64))
	}
	// The largest admissible tiling is present.
	assert.Contains(t, good, Tiling{64, 1})
	assert.Contains(t, good, Tiling{1, 64})
	assert.NotContains(t, good, Tiling{128, 1})
}
