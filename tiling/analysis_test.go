package tiling

import (
	"testing"

	"github.com/gomlx/symtile/affine"
	"github.com/gomlx/symtile/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisOrderAndSharing(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 16))
	e := g.Exp(x)
	n := g.Neg(e)
	root := g.Add(e, n)
	a := mustAnalyze(t, root)

	// The diamond shares one tiled instance of e (and of x).
	nodes := a.SymbolicTiledNodes()
	require.Len(t, nodes, 4)
	assert.Same(t, root, a.Root().Node())
	assert.Same(t, root, nodes[len(nodes)-1].Node())
	assert.Same(t, findTiled(t, a, e), a.Root().Operands()[0])
	assert.Same(t, findTiled(t, a, e), findTiled(t, a, n).Operands()[0])

	// Def-before-use: every operand appears before its consumer.
	position := make(map[*SymbolicTiledNode]int)
	for ii, tn := range nodes {
		position[tn] = ii
	}
	for _, tn := range nodes {
		for _, operand := range tn.Operands() {
			assert.Less(t, position[operand], position[tn])
		}
	}
}

func TestAnalysisKeepsDistinctTilesOfOneNode(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128))
	a := g.Slice(x, []int{0}, []int{64}, []int{1})
	b := g.Slice(x, []int{64}, []int{128}, []int{1})
	analysis := mustAnalyze(t, g.Add(a, b))

	// x is read at two different offsets, so it is tiled twice.
	var tilesOfX []*SymbolicTiledNode
	for _, tn := range analysis.SymbolicTiledNodes() {
		if tn.Node() == x {
			tilesOfX = append(tilesOfX, tn)
		}
	}
	require.Len(t, tilesOfX, 2)
	assert.False(t, tilesOfX[0].Tile().Offsets().Equal(tilesOfX[1].Tile().Offsets()))
}

func TestAnalysisRespectsSubgraphLeaves(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 130))
	w := g.ReduceWindow(x, []int{3}, []int{1}) // shape [128]
	root := g.Exp(w)

	// Stopping at w leaves the analysis unconstrained; including the window
	// operation can only narrow the accepted tilings.
	narrow, err := AnalyzeSubgraph(graph.NewSubgraph(root, w), affine.NewContext())
	require.NoError(t, err)
	assert.Len(t, narrow.SymbolicTiledNodes(), 2)
	assert.True(t, narrow.Constraints().IsAlwaysSatisfied())

	full := mustAnalyze(t, root)
	assert.False(t, full.Constraints().IsAlwaysSatisfied())
	for _, size := range []int64{1, 16, 64, 128} {
		ok, err := full.ParametersSatisfyConstraints(Tiling{size})
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = narrow.ParametersSatisfyConstraints(Tiling{size})
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestAnalysisRejectsUnsupportedOperations(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 32, 64))
	y := g.Parameter("y", MS(F32, 64, 16))
	dot := g.Dot(x, y)

	_, err := AnalyzeGraph(dot, affine.NewContext())
	require.Error(t, err)
	var decision *Decision
	require.ErrorAs(t, err, &decision)
	assert.Same(t, dot, decision.Node)
	assert.Contains(t, decision.Cause, "affine tile mapping")

	// But the same operation as a subgraph leaf is fine.
	a, err := AnalyzeSubgraph(graph.NewSubgraph(g.Exp(dot), dot), affine.NewContext())
	require.NoError(t, err)
	assert.Len(t, a.SymbolicTiledNodes(), 2)
}

func TestParametersSatisfyConstraintsValidation(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	a := mustAnalyze(t, g.Exp(x))
	assert.Equal(t, 2, a.NumTileParameters())

	// Too few parameters is indeterminate, never false.
	_, err := a.ParametersSatisfyConstraints(Tiling{32})
	require.Error(t, err)
	_, err = a.ParametersSatisfyConstraints(Tiling{32, 0})
	require.Error(t, err)

	// Extra trailing parameters are ignored.
	ok, err := a.ParametersSatisfyConstraints(Tiling{32, 16, 99})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEmitterConstraintsBoundTileFootprint(t *testing.T) {
	g := graph.New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	a := mustAnalyze(t, g.Exp(x))

	limits := EmitterLimits{MaxTileElements: 1024}
	ok, err := a.ParametersSatisfyEmitterConstraints(Tiling{32, 16}, limits)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = a.ParametersSatisfyEmitterConstraints(Tiling{128, 64}, limits)
	require.NoError(t, err)
	assert.False(t, ok)

	// Intermediate tiles count too: the reduced operand reads its full axis.
	rsum := mustAnalyze(t, g.ReduceSum(x, 1))
	ok, err = rsum.ParametersSatisfyEmitterConstraints(Tiling{32}, limits)
	require.NoError(t, err)
	assert.False(t, ok) // the x tile is 32*64 = 2048 elements
	ok, err = rsum.ParametersSatisfyEmitterConstraints(Tiling{16}, limits)
	require.NoError(t, err)
	assert.True(t, ok)
}
