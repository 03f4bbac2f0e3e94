package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/symtile/graph"
)

func TestComputeTiledNodes(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	y := g.Parameter("y", MS(F32, 128, 64))
	root := g.Exp(g.Add(x, y))
	a := mustAnalyze(t, root)

	tc, err := a.ComputeTiledNodes(Tiling{32, 16}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 4}, tc.GridDims())
	assert.Equal(t, int64(16), tc.NumTiles())
	assert.Equal(t, Tiling{32, 16}, tc.TileSizes())
	require.Len(t, tc.Nodes(), 4)
	assert.Same(t, root, tc.Root().Node())

	for _, tn := range tc.Nodes() {
		assert.Equal(t, []int64{32, 16}, tn.TileSizes())
		assert.Equal(t, []int64{1, 1}, tn.TileStrides())
	}

	// The 4x4 grid partitions the output exactly.
	offsets, err := tc.Root().TileOffsets([]int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{32, 32}, offsets)
	offsets, err = tc.Root().TileOffsets([]int64{3, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{96, 48}, offsets)
	_, err = tc.Root().TileOffsets([]int64{0})
	require.Error(t, err)
}

func TestComputeTiledNodesSharesOperands(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 16))
	e := g.Exp(x)
	n := g.Neg(e)
	root := g.Add(e, n)
	a := mustAnalyze(t, root)

	tc, err := a.ComputeTiledNodes(Tiling{4}, false)
	require.NoError(t, err)
	require.Len(t, tc.Nodes(), 4)

	// Both consumers of e reference the same materialized instance.
	tiledRoot := tc.Root()
	tiledE := tiledRoot.Operands()[0]
	assert.Same(t, e, tiledE.Node())
	tiledNeg := tiledRoot.Operands()[1]
	assert.Same(t, tiledE, tiledNeg.Operands()[0])
}

func TestComputeTiledNodesOffsetMapsFlag(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128))
	a := mustAnalyze(t, g.Slice(x, []int{10}, []int{74}, []int{2})) // root shape [32]

	lazy, err := a.ComputeTiledNodes(Tiling{8}, false)
	require.NoError(t, err)
	eager, err := a.ComputeTiledNodes(Tiling{8}, true)
	require.NoError(t, err)

	// The flag only changes when offsets maps are built, never the result.
	require.Len(t, eager.Nodes(), len(lazy.Nodes()))
	for ii := range eager.Nodes() {
		lazyNode, eagerNode := lazy.Nodes()[ii], eager.Nodes()[ii]
		assert.Nil(t, lazyNode.OffsetsMap())
		require.NotNil(t, eagerNode.OffsetsMap())

		for coord := int64(0); coord < lazy.GridDims()[0]; coord++ {
			want, err := lazyNode.TileOffsets([]int64{coord})
			require.NoError(t, err)
			got, err := eagerNode.TileOffsets([]int64{coord})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}

	// x reads offset (d0*8)*2 + 10 with stride 2 and size 8.
	tiledX := eager.Nodes()[0]
	require.Same(t, x, tiledX.Node())
	assert.Equal(t, []int64{8}, tiledX.TileSizes())
	assert.Equal(t, []int64{2}, tiledX.TileStrides())
	offsets, err := tiledX.TileOffsets([]int64{3})
	require.NoError(t, err)
	assert.Equal(t, []int64{58}, offsets)
}

func TestComputeTiledNodesValidation(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	a := mustAnalyze(t, g.Exp(x))

	_, err := a.ComputeTiledNodes(Tiling{32}, false)
	require.Error(t, err)
	_, err = a.ComputeTiledNodes(Tiling{32, 16, 8}, false)
	require.Error(t, err)
	_, err = a.ComputeTiledNodes(Tiling{32, 0}, false)
	require.Error(t, err)

	// Uneven division rounds the grid up.
	tc, err := a.ComputeTiledNodes(Tiling{48, 64}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, tc.GridDims())
	assert.Equal(t, int64(3), tc.NumTiles())
}

func TestComputeTiledNodesOversizeTile(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128))
	a := mustAnalyze(t, g.Neg(x))

	// A tile size beyond the axis extent passes the satisfaction query, so it
	// must also materialize: one padded tile covering the whole axis.
	ok, err := a.ParametersSatisfyConstraints(Tiling{256})
	require.NoError(t, err)
	assert.True(t, ok)

	tc, err := a.ComputeTiledNodes(Tiling{256}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, tc.GridDims())
	assert.Equal(t, int64(1), tc.NumTiles())
	assert.Equal(t, []int64{256}, tc.Root().TileSizes())
	offsets, err := tc.Root().TileOffsets([]int64{0})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, offsets)
}
