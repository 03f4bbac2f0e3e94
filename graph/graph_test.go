package graph

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/symtile/types/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	F32 = dtypes.Float32
	MS  = shapes.Make
)

func TestBuilder(t *testing.T) {
	g := New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	y := g.Parameter("y", MS(F32, 128, 64))
	sum := g.Add(x, y)
	out := g.Exp(sum)

	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, OpTypeExp, out.OpType())
	assert.True(t, out.Shape().Equal(MS(F32, 128, 64)))
	assert.Equal(t, []*Node{sum}, out.Inputs())
	assert.Equal(t, 3, out.Id())
	assert.True(t, x.IsLeafOp())
	assert.False(t, sum.IsLeafOp())
	assert.Equal(t, "x", x.Name())
	assert.Equal(t, `#2 Add(#0, #1) -> (Float32)[128 64]`, sum.String())
}

func TestBinaryOpShapeCheck(t *testing.T) {
	g := New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	y := g.Parameter("y", MS(F32, 64, 128))
	err := exceptions.TryCatch[error](func() { g.Add(x, y) })
	require.Error(t, err)
}

func TestBroadcastInDim(t *testing.T) {
	g := New("test")
	x := g.Parameter("x", MS(F32, 128))
	b := g.BroadcastInDim(x, MS(F32, 128, 64), []int{0})
	assert.True(t, b.Shape().Equal(MS(F32, 128, 64)))
	assert.Equal(t, []int{0}, b.BroadcastDims())

	// Mapped dimensions must match, and dims must be increasing.
	require.Error(t, exceptions.TryCatch[error](func() {
		g.BroadcastInDim(x, MS(F32, 64, 128), []int{0})
	}))
	x2 := g.Parameter("x2", MS(F32, 128, 64))
	require.Error(t, exceptions.TryCatch[error](func() {
		g.BroadcastInDim(x2, MS(F32, 64, 128), []int{1, 0})
	}))
}

func TestReshapeAndTranspose(t *testing.T) {
	g := New("test")
	x := g.Parameter("x", MS(F32, 8, 16))
	r := g.Reshape(x, 128)
	assert.True(t, r.Shape().Equal(MS(F32, 128)))
	require.Error(t, exceptions.TryCatch[error](func() { g.Reshape(x, 100) }))

	tr := g.Transpose(x, 1, 0)
	assert.True(t, tr.Shape().Equal(MS(F32, 16, 8)))
	assert.Equal(t, []int{1, 0}, tr.TransposePermutation())
	require.Error(t, exceptions.TryCatch[error](func() { g.Transpose(x, 0, 0) }))
}

func TestReduceAndWindow(t *testing.T) {
	g := New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	r := g.ReduceSum(x, 1)
	assert.True(t, r.Shape().Equal(MS(F32, 128)))
	assert.Equal(t, []int{1}, r.ReduceAxes())
	require.Error(t, exceptions.TryCatch[error](func() { g.ReduceSum(x, 2) }))
	require.Error(t, exceptions.TryCatch[error](func() { g.ReduceSum(x) }))

	w := g.ReduceWindow(x, []int{3, 1}, []int{2, 1})
	assert.True(t, w.Shape().Equal(MS(F32, 63, 64)))
	assert.Equal(t, []int{3, 1}, w.WindowDims())
	assert.Equal(t, []int{2, 1}, w.WindowStrides())
	require.Error(t, exceptions.TryCatch[error](func() {
		g.ReduceWindow(x, []int{200, 1}, []int{1, 1})
	}))
}

func TestSliceAndConcatenate(t *testing.T) {
	g := New("test")
	x := g.Parameter("x", MS(F32, 128, 64))
	s := g.Slice(x, []int{10, 0}, []int{74, 64}, []int{2, 1})
	assert.True(t, s.Shape().Equal(MS(F32, 32, 64)))
	assert.Equal(t, []int{10, 0}, s.SliceStarts())
	assert.Equal(t, []int{2, 1}, s.SliceStrides())

	y := g.Parameter("y", MS(F32, 128, 32))
	c := g.Concatenate(1, x, y)
	assert.True(t, c.Shape().Equal(MS(F32, 128, 96)))
	assert.Equal(t, 1, c.ConcatenateAxis())
	require.Error(t, exceptions.TryCatch[error](func() { g.Concatenate(0, x, y) }))
}

func TestSubgraph(t *testing.T) {
	g := New("test")
	x := g.Parameter("x", MS(F32, 16))
	a := g.Exp(x)
	b := g.Neg(a)
	root := g.Add(a, b)

	sub := WholeGraphAt(root)
	assert.Same(t, root, sub.Root())
	assert.True(t, sub.IsLeaf(x))
	assert.False(t, sub.IsLeaf(a))

	nodes := sub.Nodes()
	assert.Same(t, root, nodes[len(nodes)-1])
	// Def-before-use: every node's inputs appear earlier.
	position := make(map[*Node]int)
	for ii, node := range nodes {
		position[node] = ii
	}
	for _, node := range nodes {
		if sub.IsLeaf(node) {
			continue
		}
		for _, input := range node.Inputs() {
			assert.Less(t, position[input], position[node])
		}
	}

	// Explicit leaves cut the traversal.
	sub2 := NewSubgraph(root, a)
	assert.True(t, sub2.IsLeaf(a))
	nodes2 := sub2.Nodes()
	assert.Len(t, nodes2, 3) // a, b, root
}
