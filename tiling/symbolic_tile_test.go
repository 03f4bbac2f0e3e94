package tiling

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/symtile/affine"
	"github.com/gomlx/symtile/graph"
	"github.com/gomlx/symtile/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	F32 = dtypes.Float32
	MS  = shapes.Make
)

func mustAnalyze(t *testing.T, root *graph.Node) *Analysis {
	t.Helper()
	a, err := AnalyzeGraph(root, affine.NewContext())
	require.NoError(t, err)
	return a
}

// findTiled returns the single tiled instance of node, failing if the node was
// tiled zero or multiple times.
func findTiled(t *testing.T, a *Analysis, node *graph.Node) *SymbolicTiledNode {
	t.Helper()
	var found *SymbolicTiledNode
	for _, tn := range a.SymbolicTiledNodes() {
		if tn.Node() == node {
			require.Nil(t, found, "node %s tiled more than once", node)
			found = tn
		}
	}
	require.NotNil(t, found, "node %s not tiled", node)
	return found
}

func TestRootTile(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	a := mustAnalyze(t, g.Exp(x))

	tile := a.Root().Tile()
	assert.Equal(t, "(d0, d1)[s0, s1] -> (d0 * s0, d1 * s1)", tile.Offsets().String())
	assert.Equal(t, "()[s0, s1] -> (s0, s1)", tile.Sizes().String())
	assert.Equal(t, "()[s0, s1] -> (1, 1)", tile.Strides().String())
	assert.True(t, tile.Constraint().IsAlwaysSatisfied())
}

func TestElementwisePropagatesTileUnchanged(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	y := g.Parameter("y", MS(F32, 128, 64))
	root := g.Exp(g.Add(x, y))
	a := mustAnalyze(t, root)

	want := a.Root().Tile()
	for _, node := range []*graph.Node{x, y} {
		tile := findTiled(t, a, node).Tile()
		assert.True(t, tile.Offsets().Equal(want.Offsets()))
		assert.True(t, tile.Sizes().Equal(want.Sizes()))
		assert.True(t, tile.Strides().Equal(want.Strides()))
	}
	assert.True(t, a.Constraints().IsAlwaysSatisfied())
}

func TestBroadcastDropsExpandedAxes(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128))
	y := g.Parameter("y", MS(F32, 128, 64))
	root := g.Mul(g.BroadcastInDim(x, MS(F32, 128, 64), []int{0}), y)
	a := mustAnalyze(t, root)

	tile := findTiled(t, a, x).Tile()
	assert.Equal(t, "(d0, d1)[s0, s1] -> (d0 * s0)", tile.Offsets().String())
	assert.Equal(t, "()[s0, s1] -> (s0)", tile.Sizes().String())
	assert.Equal(t, "()[s0, s1] -> (1)", tile.Strides().String())
}

func TestTransposePermutesTile(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	a := mustAnalyze(t, g.Transpose(x, 1, 0)) // root shape [64 128]

	tile := findTiled(t, a, x).Tile()
	assert.Equal(t, "(d0, d1)[s0, s1] -> (d1 * s1, d0 * s0)", tile.Offsets().String())
	assert.Equal(t, "()[s0, s1] -> (s1, s0)", tile.Sizes().String())
}

func TestReduceReadsReducedAxisInFull(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	a := mustAnalyze(t, g.ReduceSum(x, 1)) // root shape [128]

	tile := findTiled(t, a, x).Tile()
	assert.Equal(t, "(d0)[s0] -> (d0 * s0, 0)", tile.Offsets().String())
	assert.Equal(t, "()[s0] -> (s0, 64)", tile.Sizes().String())
	assert.Equal(t, "()[s0] -> (1, 1)", tile.Strides().String())
	assert.True(t, a.Constraints().IsAlwaysSatisfied())
}

func TestReduceWindowWidensTile(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 130))
	a := mustAnalyze(t, g.ReduceWindow(x, []int{3}, []int{1})) // root shape [128]

	tile := findTiled(t, a, x).Tile()
	assert.Equal(t, "(d0)[s0] -> (d0 * s0)", tile.Offsets().String())
	assert.Equal(t, "()[s0] -> (s0 + 2)", tile.Sizes().String())

	// The widened tile must still fit in the operand.
	ok, err := a.ParametersSatisfyConstraints(Tiling{128})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = a.Constraints().IsSatisfiedBy([]int64{129})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReduceWindowStridesOffsets(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 256))
	a := mustAnalyze(t, g.ReduceWindow(x, []int{2}, []int{2})) // root shape [128]

	tile := findTiled(t, a, x).Tile()
	// offset = (d0*s0)*2, size = (s0-1)*2+2 = s0*2, stride = 2.
	offsets, err := tile.Offsets().Evaluate([]int64{3}, []int64{8})
	require.NoError(t, err)
	assert.Equal(t, []int64{48}, offsets)
	sizes, err := tile.Sizes().Evaluate(nil, []int64{8})
	require.NoError(t, err)
	assert.Equal(t, []int64{16}, sizes)
	strides, err := tile.Strides().Evaluate(nil, []int64{8})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, strides)
}

func TestSliceShiftsAndStridesTile(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128))
	a := mustAnalyze(t, g.Slice(x, []int{10}, []int{74}, []int{2})) // root shape [32]

	tile := findTiled(t, a, x).Tile()
	// offset = (d0*s0)*2 + 10.
	offsets, err := tile.Offsets().Evaluate([]int64{3}, []int64{4})
	require.NoError(t, err)
	assert.Equal(t, []int64{34}, offsets)
	strides, err := tile.Strides().Evaluate(nil, []int64{4})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, strides)
}

func TestReshapeMergeConstraints(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 8, 16))
	a := mustAnalyze(t, g.Reshape(x, 128))

	assert.False(t, a.Constraints().IsAlwaysSatisfied())
	for _, size := range []int64{1, 2, 4, 8, 16, 32, 64, 128} {
		ok, err := a.ParametersSatisfyConstraints(Tiling{size})
		require.NoError(t, err)
		assert.True(t, ok, "tile size %d should be accepted", size)
	}
	for _, size := range []int64{3, 24, 48, 96} {
		ok, err := a.ParametersSatisfyConstraints(Tiling{size})
		require.NoError(t, err)
		assert.False(t, ok, "tile size %d should be rejected", size)
	}

	// A legal tile delinearizes into whole rows: 32 elements = 2 rows of 16.
	tile := findTiled(t, a, x).Tile()
	sizes, err := tile.Sizes().Evaluate(nil, []int64{32})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 16}, sizes)
	sizes, err = tile.Sizes().Evaluate(nil, []int64{8})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 8}, sizes)
	offsets, err := tile.Offsets().Evaluate([]int64{3}, []int64{32})
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 0}, offsets)
}

func TestReshapeSplitConstraints(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 512))
	a := mustAnalyze(t, g.Reshape(x, 4, 8, 16))

	// A run of whole rows of some pivot axis: unit tile sizes outside the
	// pivot, fully tiled axes inside it.
	for _, tiling := range []Tiling{{2, 8, 16}, {4, 8, 16}, {1, 1, 5}, {1, 1, 16}, {1, 4, 16}} {
		ok, err := a.ParametersSatisfyConstraints(tiling)
		require.NoError(t, err)
		assert.True(t, ok, "tiling %s should be accepted", tiling)
	}
	for _, tiling := range []Tiling{{2, 2, 16}, {2, 8, 8}, {1, 4, 8}} {
		ok, err := a.ParametersSatisfyConstraints(tiling)
		require.NoError(t, err)
		assert.False(t, ok, "tiling %s should be rejected", tiling)
	}

	// Relinearized tile of [2 8 16] covers 256 contiguous elements.
	tile := findTiled(t, a, x).Tile()
	sizes, err := tile.Sizes().Evaluate(nil, []int64{2, 8, 16})
	require.NoError(t, err)
	assert.Equal(t, []int64{256}, sizes)
	offsets, err := tile.Offsets().Evaluate([]int64{1, 0, 0}, []int64{2, 8, 16})
	require.NoError(t, err)
	assert.Equal(t, []int64{256}, offsets)
}

func TestReshapePassthroughAndDegenerateAxes(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 32, 16))
	a := mustAnalyze(t, g.Reshape(x, 32, 16, 1))

	tile := findTiled(t, a, x).Tile()
	assert.Equal(t, "(d0, d1, d2)[s0, s1, s2] -> (d0 * s0, d1 * s1)", tile.Offsets().String())
	assert.True(t, a.Constraints().IsAlwaysSatisfied())
}

func TestReshapeManyToManyIsRejected(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 4, 6))
	root := g.Reshape(x, 3, 8)

	_, err := AnalyzeGraph(root, affine.NewContext())
	require.Error(t, err)
	var decision *Decision
	require.ErrorAs(t, err, &decision)
	assert.Same(t, root, decision.Node)
}

func TestStridedTileThroughReshapeIsRejected(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 8, 16))
	r := g.Reshape(x, 128)
	root := g.Slice(r, []int{0}, []int{128}, []int{2}) // root shape [64]

	_, err := AnalyzeGraph(root, affine.NewContext())
	require.Error(t, err)
	var decision *Decision
	require.ErrorAs(t, err, &decision)
	assert.Same(t, r, decision.Node)
}
