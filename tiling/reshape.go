package tiling

import (
	"github.com/gomlx/symtile/affine"
	"github.com/gomlx/symtile/graph"
	"github.com/pkg/errors"
)

// Reshape tile derivation.
//
// A reshape is decomposed into independent groups of axes whose total sizes
// match: within a group either one input axis splits into several output axes,
// or several input axes merge into one output axis (or it is a plain 1:1
// passthrough). A group that is many-to-many has no affine tile mapping and
// aborts the analysis.
//
// Merges and splits stay affine only for tile sizes that respect the original
// axis boundaries; those requirements are emitted as constraints over the
// tile-size parameters, so illegal tilings are rejected by the satisfaction
// query rather than producing a wrong mapping.

// reshapeGroup is a minimal set of input and output axes with equal size products.
type reshapeGroup struct {
	inputAxes, outputAxes []int
}

// factorizeReshape splits a reshape into groups of axes with matching products.
// Fails when the axis sizes cannot be aligned into one-to-many or many-to-one
// groups, e.g. [4 6] -> [3 8].
func factorizeReshape(inputDims, outputDims []int) ([]reshapeGroup, error) {
	var groups []reshapeGroup
	in, out := 0, 0
	for in < len(inputDims) && out < len(outputDims) {
		group := reshapeGroup{inputAxes: []int{in}, outputAxes: []int{out}}
		inputProduct, outputProduct := inputDims[in], outputDims[out]
		for inputProduct != outputProduct {
			if inputProduct < outputProduct {
				in++
				if in >= len(inputDims) {
					return nil, errors.Errorf("reshape %v -> %v cannot be factorized into aligned axis groups", inputDims, outputDims)
				}
				inputProduct *= inputDims[in]
				group.inputAxes = append(group.inputAxes, in)
			} else {
				out++
				if out >= len(outputDims) {
					return nil, errors.Errorf("reshape %v -> %v cannot be factorized into aligned axis groups", inputDims, outputDims)
				}
				outputProduct *= outputDims[out]
				group.outputAxes = append(group.outputAxes, out)
			}
		}
		if len(group.inputAxes) > 1 && len(group.outputAxes) > 1 {
			return nil, errors.Errorf("reshape group %v -> %v recombines multiple axes on both sides, not expressible as an affine tile mapping",
				group.inputAxes, group.outputAxes)
		}
		groups = append(groups, group)
		in++
		out++
	}
	// Trailing size-1 axes on either side form degenerate groups.
	for ; in < len(inputDims); in++ {
		if inputDims[in] != 1 {
			return nil, errors.Errorf("reshape %v -> %v cannot be factorized into aligned axis groups", inputDims, outputDims)
		}
		groups = append(groups, reshapeGroup{inputAxes: []int{in}})
	}
	for ; out < len(outputDims); out++ {
		if outputDims[out] != 1 {
			return nil, errors.Errorf("reshape %v -> %v cannot be factorized into aligned axis groups", inputDims, outputDims)
		}
		groups = append(groups, reshapeGroup{outputAxes: []int{out}})
	}
	return groups, nil
}

// deriveReshape maps the output tile back through the reshape, group by group.
func deriveReshape(node *graph.Node, tile SymbolicTile) ([]SymbolicTile, error) {
	operand := node.Inputs()[0]
	inputDims := operand.Shape().Dimensions
	outputDims := node.Shape().Dimensions
	groups, err := factorizeReshape(inputDims, outputDims)
	if err != nil {
		return nil, err
	}

	tc := newTileComponents(tile, operand.Rank())
	for _, group := range groups {
		// Tiles reaching a reshape must be contiguous along regrouped axes; a
		// 1:1 passthrough keeps whatever stride it has.
		if len(group.inputAxes) > 1 || len(group.outputAxes) > 1 {
			for _, outputAxis := range group.outputAxes {
				if tile.strides.Result(outputAxis) != tc.ctx.One() {
					return nil, errors.Errorf("strided tile (stride %s on axis %d) cannot be propagated through a reshape",
						tile.strides.Result(outputAxis), outputAxis)
				}
			}
		}
		switch {
		case len(group.inputAxes) == 0 || len(group.outputAxes) == 0:
			// Degenerate trailing size-1 axis.
			if len(group.inputAxes) == 1 {
				tc.set(group.inputAxes[0], tc.ctx.Zero(), tc.ctx.One(), tc.ctx.One())
			}
		case len(group.inputAxes) == 1 && len(group.outputAxes) == 1:
			tc.copyAxis(group.inputAxes[0], tile, group.outputAxes[0])
		case len(group.outputAxes) == 1:
			deriveMergeGroup(tc, tile, group, inputDims)
		default:
			deriveSplitGroup(tc, tile, group, outputDims)
		}
	}
	return []SymbolicTile{tc.build()}, nil
}

// deriveMergeGroup handles input axes j0..jk-1 merged into one output axis: the
// merged offset and size are delinearized back into per-axis coordinates.
//
// With w_j the row-major stride of input axis j within the group, the mapping
//
//	offset_j = (offset floordiv w_j) mod D_j   (no mod for the outermost axis)
//	size_j   = min(size ceildiv w_j, D_j)
//
// is exact whenever the tile size is w_j rows of axis j for some j, with the row
// count dividing D_j. That condition, one disjunct per candidate axis j, is the
// group's constraint.
func deriveMergeGroup(tc *tileComponents, tile SymbolicTile, group reshapeGroup, inputDims []int) {
	outputAxis := group.outputAxes[0]
	mergedOffset := tile.offsets.Result(outputAxis)
	mergedSize := tile.sizes.Result(outputAxis)

	// Row-major strides of each input axis within the merged group.
	k := len(group.inputAxes)
	strides := make([]int64, k)
	stride := int64(1)
	for ii := k - 1; ii >= 0; ii-- {
		strides[ii] = stride
		stride *= int64(inputDims[group.inputAxes[ii]])
	}

	constraint := Unsatisfiable()
	for ii, inputAxis := range group.inputAxes {
		axisDim := int64(inputDims[inputAxis])
		w := tc.ctx.Constant(strides[ii])
		offset := tc.ctx.FloorDiv(mergedOffset, w)
		if ii > 0 {
			offset = tc.ctx.Mod(offset, tc.ctx.Constant(axisDim))
		}
		size := tc.ctx.Min(tc.ctx.CeilDiv(mergedSize, w), tc.ctx.Constant(axisDim))
		tc.set(inputAxis, offset, size, tc.ctx.One())

		// Disjunct: the tile is a whole number of axis-ii rows, and that row
		// count divides the axis. The max(..., 1) guards the division for
		// parameter vectors that fail the first atom.
		conjoint := ConjointConstraints{}
		if strides[ii] > 1 {
			conjoint = appendBoundsConstraint(conjoint, tc.ctx.Mod(mergedSize, w), affine.Point(0))
		}
		rows := tc.ctx.Max(tc.ctx.FloorDiv(mergedSize, w), tc.ctx.One())
		conjoint = appendBoundsConstraint(conjoint, tc.ctx.Mod(tc.ctx.Constant(axisDim), rows), affine.Point(0))
		constraint = constraint.Or(NewConstraintExpression(conjoint))
	}
	tc.constraint = tc.constraint.And(constraint)
}

// deriveSplitGroup handles one input axis split into output axes q0..qk-1: the
// per-axis offsets are relinearized into the input axis.
//
// The combined size is the product of the per-axis sizes, which only covers a
// contiguous input range when the tile is a run of whole rows of some pivot
// axis: every axis outside the pivot has tile size 1 and every axis inside it
// is fully tiled, while the pivot itself may take any size. One disjunct per
// pivot axis forms the group's constraint.
func deriveSplitGroup(tc *tileComponents, tile SymbolicTile, group reshapeGroup, outputDims []int) {
	inputAxis := group.inputAxes[0]

	k := len(group.outputAxes)
	offset := affine.Expr(tc.ctx.Zero())
	size := affine.Expr(tc.ctx.One())
	stride := int64(1)
	for ii := k - 1; ii >= 0; ii-- {
		outputAxis := group.outputAxes[ii]
		offset = tc.ctx.Add(offset, tc.ctx.MulConst(tile.offsets.Result(outputAxis), stride))
		size = tc.ctx.Mul(size, tile.sizes.Result(outputAxis))
		stride *= int64(outputDims[outputAxis])
	}
	tc.set(inputAxis, offset, size, tc.ctx.One())

	constraint := Unsatisfiable()
	for pivot := 0; pivot < k; pivot++ {
		conjoint := ConjointConstraints{}
		for ii := 0; ii < pivot; ii++ {
			outputAxis := group.outputAxes[ii]
			conjoint = appendBoundsConstraint(conjoint, tile.sizes.Result(outputAxis), affine.Point(1))
		}
		for ii := pivot + 1; ii < k; ii++ {
			outputAxis := group.outputAxes[ii]
			conjoint = appendBoundsConstraint(conjoint, tile.sizes.Result(outputAxis),
				affine.Point(int64(outputDims[outputAxis])))
		}
		constraint = constraint.Or(NewConstraintExpression(conjoint))
	}
	tc.constraint = tc.constraint.And(constraint)
}
