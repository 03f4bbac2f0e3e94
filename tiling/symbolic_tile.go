package tiling

import (
	"fmt"

	"github.com/gomlx/symtile/affine"
	"github.com/gomlx/symtile/graph"
	"github.com/pkg/errors"
)

// SymbolicTile describes the region of one node's output that a single tile
// instance covers, as a function of the tile-size parameters (symbols s0..sN-1,
// one per root axis) and the tile coordinates (dims d0..dR-1, the position of
// the tile in the root's grid):
//
//   - offsets: (d0..dR-1)[s0..sN-1] -> first element read/written per axis;
//   - sizes: ()[s0..sN-1] -> number of elements per axis;
//   - strides: ()[s0..sN-1] -> step between consecutive elements per axis;
//
// plus a constraint restricting the tile-size parameters for which the mapping
// is well-formed. R == N == rank of the analysis root.
//
// SymbolicTiles are immutable: they are created during analysis construction
// and only read afterwards.
type SymbolicTile struct {
	offsets *affine.Map
	sizes   *affine.Map
	strides *affine.Map

	constraint ConstraintExpression
}

// Offsets returns the per-axis offset map "(tile coords)[tile sizes] -> offsets".
func (t SymbolicTile) Offsets() *affine.Map { return t.offsets }

// Sizes returns the per-axis size map "()[tile sizes] -> sizes".
func (t SymbolicTile) Sizes() *affine.Map { return t.sizes }

// Strides returns the per-axis stride map "()[tile sizes] -> strides".
func (t SymbolicTile) Strides() *affine.Map { return t.strides }

// Constraint over the tile-size parameters contributed by this tile.
func (t SymbolicTile) Constraint() ConstraintExpression { return t.constraint }

// Rank is the number of axes the tile describes.
func (t SymbolicTile) Rank() int { return t.offsets.NumResults() }

func (t SymbolicTile) String() string {
	s := fmt.Sprintf("offsets: %s, sizes: %s, strides: %s", t.offsets, t.sizes, t.strides)
	if !t.constraint.IsAlwaysSatisfied() {
		s += fmt.Sprintf(", constraint: %s", t.constraint)
	}
	return s
}

// mappingKey is a canonical serialization of the three maps, used to recognize
// when two access paths reach a node with the same tile.
func (t SymbolicTile) mappingKey() string {
	return t.offsets.String() + "|" + t.sizes.String() + "|" + t.strides.String()
}

// rootTile builds the identity tile of the analysis root: tile (d0..dR-1) covers
// offsets d_i*s_i, sizes s_i, strides 1.
func rootTile(ctx *affine.Context, rank int) SymbolicTile {
	offsets := make([]affine.Expr, rank)
	sizes := make([]affine.Expr, rank)
	strides := make([]affine.Expr, rank)
	for axis := 0; axis < rank; axis++ {
		offsets[axis] = ctx.Mul(ctx.Dim(axis), ctx.Symbol(axis))
		sizes[axis] = ctx.Symbol(axis)
		strides[axis] = ctx.One()
	}
	return SymbolicTile{
		offsets:    ctx.NewMap(rank, rank, offsets...),
		sizes:      ctx.NewMap(0, rank, sizes...),
		strides:    ctx.NewMap(0, rank, strides...),
		constraint: AlwaysSatisfied(),
	}
}

// tileComponents is a mutable builder for a derived tile, one (offset, size,
// stride) expression triple per axis of the operand being derived.
type tileComponents struct {
	ctx                     *affine.Context
	numDims, numSymbols     int
	offsets, sizes, strides []affine.Expr
	constraint              ConstraintExpression
}

func newTileComponents(template SymbolicTile, rank int) *tileComponents {
	return &tileComponents{
		ctx:        template.offsets.Context(),
		numDims:    template.offsets.NumDims(),
		numSymbols: template.offsets.NumSymbols(),
		offsets:    make([]affine.Expr, rank),
		sizes:      make([]affine.Expr, rank),
		strides:    make([]affine.Expr, rank),
		constraint: AlwaysSatisfied(),
	}
}

// set one axis of the derived tile.
func (tc *tileComponents) set(axis int, offset, size, stride affine.Expr) {
	tc.offsets[axis] = offset
	tc.sizes[axis] = size
	tc.strides[axis] = stride
}

// copyAxis copies the consumer tile's components for consumerAxis into axis.
func (tc *tileComponents) copyAxis(axis int, from SymbolicTile, consumerAxis int) {
	tc.set(axis, from.offsets.Result(consumerAxis), from.sizes.Result(consumerAxis), from.strides.Result(consumerAxis))
}

func (tc *tileComponents) build() SymbolicTile {
	return SymbolicTile{
		offsets:    tc.ctx.NewMap(tc.numDims, tc.numSymbols, tc.offsets...),
		sizes:      tc.ctx.NewMap(0, tc.numSymbols, tc.sizes...),
		strides:    tc.ctx.NewMap(0, tc.numSymbols, tc.strides...),
		constraint: tc.constraint,
	}
}

// deriveOperandTiles computes, for each operand of node, the tile the operand
// must provide so that node can produce the given output tile. This is the
// per-operator backward propagation rule set; an operation whose semantics
// cannot be expressed as an affine tile mapping returns an error (which aborts
// the whole analysis).
func deriveOperandTiles(node *graph.Node, tile SymbolicTile) ([]SymbolicTile, error) {
	opType := node.OpType()
	switch {
	case graph.UnaryOperations[opType] || graph.BinaryOperations[opType]:
		// Elementwise: operands are accessed exactly like the output.
		shared := SymbolicTile{offsets: tile.offsets, sizes: tile.sizes, strides: tile.strides, constraint: AlwaysSatisfied()}
		tiles := make([]SymbolicTile, len(node.Inputs()))
		for ii := range tiles {
			tiles[ii] = shared
		}
		return tiles, nil

	case opType == graph.OpTypeBroadcastInDim:
		return deriveBroadcast(node, tile)

	case opType == graph.OpTypeTranspose:
		return deriveTranspose(node, tile)

	case opType == graph.OpTypeReduceSum || opType == graph.OpTypeReduceMax:
		return deriveReduce(node, tile)

	case opType == graph.OpTypeReduceWindow:
		return deriveReduceWindow(node, tile)

	case opType == graph.OpTypeSlice:
		return deriveSlice(node, tile)

	case opType == graph.OpTypeReshape:
		return deriveReshape(node, tile)
	}
	return nil, errors.Errorf("operation %s cannot be expressed as an affine tile mapping", opType)
}

// deriveBroadcast restricts the output tile to the operand's (non-broadcast)
// axes: operand axis i is output axis broadcastDims[i], every other output axis
// is dropped from the operand's tile.
func deriveBroadcast(node *graph.Node, tile SymbolicTile) ([]SymbolicTile, error) {
	operand := node.Inputs()[0]
	tc := newTileComponents(tile, operand.Rank())
	for operandAxis, outputAxis := range node.BroadcastDims() {
		tc.copyAxis(operandAxis, tile, outputAxis)
	}
	return []SymbolicTile{tc.build()}, nil
}

// deriveTranspose permutes the tile components back to operand axis order:
// output axis i reads operand axis permutation[i].
func deriveTranspose(node *graph.Node, tile SymbolicTile) ([]SymbolicTile, error) {
	operand := node.Inputs()[0]
	tc := newTileComponents(tile, operand.Rank())
	for outputAxis, operandAxis := range node.TransposePermutation() {
		tc.copyAxis(operandAxis, tile, outputAxis)
	}
	return []SymbolicTile{tc.build()}, nil
}

// deriveReduce passes the retained axes through unchanged; a reduced axis is
// read in full (offset 0, full extent, stride 1), so it is never partially
// tiled and needs no extra constraint.
func deriveReduce(node *graph.Node, tile SymbolicTile) ([]SymbolicTile, error) {
	operand := node.Inputs()[0]
	reducedAxes := node.ReduceAxes()
	tc := newTileComponents(tile, operand.Rank())
	outputAxis := 0
	for operandAxis := 0; operandAxis < operand.Rank(); operandAxis++ {
		isReduced := false
		for _, axis := range reducedAxes {
			if axis == operandAxis {
				isReduced = true
				break
			}
		}
		if isReduced {
			tc.set(operandAxis, tc.ctx.Zero(), tc.ctx.Constant(int64(operand.Shape().Dim(operandAxis))), tc.ctx.One())
			continue
		}
		tc.copyAxis(operandAxis, tile, outputAxis)
		outputAxis++
	}
	return []SymbolicTile{tc.build()}, nil
}

// deriveReduceWindow scales offsets by the window stride and widens sizes to
// cover the window of every output element in the tile. It contributes the
// constraint that a full tile's window span fits in the operand.
func deriveReduceWindow(node *graph.Node, tile SymbolicTile) ([]SymbolicTile, error) {
	operand := node.Inputs()[0]
	windowDims, windowStrides := node.WindowDims(), node.WindowStrides()
	tc := newTileComponents(tile, operand.Rank())
	conjoint := ConjointConstraints{}
	for axis := 0; axis < operand.Rank(); axis++ {
		window := int64(windowDims[axis])
		stride := int64(windowStrides[axis])
		offset := tc.ctx.MulConst(tile.offsets.Result(axis), stride)
		// Input span of a tile of outputSize elements: (outputSize-1)*stride + window.
		size := tc.ctx.AddConst(tc.ctx.MulConst(tc.ctx.AddConst(tile.sizes.Result(axis), -1), stride), window)
		strideExpr := tc.ctx.MulConst(tile.strides.Result(axis), stride)
		tc.set(axis, offset, size, strideExpr)
		conjoint = appendBoundsConstraint(conjoint, size, affine.AtMost(int64(operand.Shape().Dim(axis))))
	}
	if len(conjoint) > 0 {
		tc.constraint = NewConstraintExpression(conjoint)
	}
	return []SymbolicTile{tc.build()}, nil
}

// deriveSlice shifts offsets by the slice start and scales by the slice stride.
func deriveSlice(node *graph.Node, tile SymbolicTile) ([]SymbolicTile, error) {
	operand := node.Inputs()[0]
	starts, strides := node.SliceStarts(), node.SliceStrides()
	tc := newTileComponents(tile, operand.Rank())
	for axis := 0; axis < operand.Rank(); axis++ {
		start := int64(starts[axis])
		stride := int64(strides[axis])
		offset := tc.ctx.AddConst(tc.ctx.MulConst(tile.offsets.Result(axis), stride), start)
		size := tile.sizes.Result(axis)
		strideExpr := tc.ctx.MulConst(tile.strides.Result(axis), stride)
		tc.set(axis, offset, size, strideExpr)
	}
	return []SymbolicTile{tc.build()}, nil
}

// appendBoundsConstraint adds "expr in bounds" to the conjunction, dropping
// atoms that fold to a concrete, always-true value.
func appendBoundsConstraint(conjoint ConjointConstraints, expr affine.Expr, bounds affine.Interval) ConjointConstraints {
	if c, ok := expr.(*affine.ConstantExpr); ok && bounds.Contains(c.Value) {
		return conjoint
	}
	return append(conjoint, Constraint{Expr: expr, Bounds: bounds})
}
