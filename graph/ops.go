package graph

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symtile/types/shapes"
)

// Op-specific attributes, attached to Node.data. Accessed through the typed
// getter methods below.

type broadcastData struct {
	// broadcastDims[i] is the output axis that operand axis i maps to.
	broadcastDims []int
}

type iotaData struct {
	axis int
}

type reduceData struct {
	// axes being reduced away, sorted ascending.
	axes []int
}

type windowData struct {
	windowDims []int
	strides    []int
}

type sliceData struct {
	starts  []int
	limits  []int
	strides []int
}

type transposeData struct {
	// permutation[i] is the operand axis that output axis i takes its data from.
	permutation []int
}

type concatenateData struct {
	axis int
}

// attrData returns the node data cast to type T, panicking on mismatch.
func attrData[T any](n *Node, opName string) T {
	data, ok := n.data.(T)
	if !ok {
		exceptions.Panicf("%s attributes requested from node %s", opName, n)
	}
	return data
}

// Parameter creates a named input to the graph.
func (g *Graph) Parameter(name string, shape shapes.Shape) *Node {
	if !shape.Ok() {
		exceptions.Panicf("graph %q: Parameter(%q) with invalid shape", g.name, name)
	}
	n := g.newNode(OpTypeParameter, shape, nil)
	n.name = name
	return n
}

// Constant creates a leaf node standing for a literal of the given shape.
// The analysis only needs the shape, so no value is attached.
func (g *Graph) Constant(shape shapes.Shape) *Node {
	if !shape.Ok() {
		exceptions.Panicf("graph %q: Constant with invalid shape", g.name)
	}
	return g.newNode(OpTypeConstant, shape, nil)
}

// Iota creates a leaf node whose values count up along the given axis.
func (g *Graph) Iota(shape shapes.Shape, axis int) *Node {
	if axis < 0 || axis >= shape.Rank() {
		exceptions.Panicf("graph %q: Iota axis %d out-of-range for %s", g.name, axis, shape)
	}
	return g.newNode(OpTypeIota, shape, iotaData{axis: axis})
}

// IotaAxis returns the axis attribute of an Iota node.
func (n *Node) IotaAxis() int { return attrData[iotaData](n, "Iota").axis }

// unaryOp creates a shape-preserving single-operand node.
func (g *Graph) unaryOp(opType OpType, x *Node) *Node {
	if !UnaryOperations[opType] {
		exceptions.Panicf("graph %q: %s is not a unary operation", g.name, opType)
	}
	return g.newNode(opType, x.shape.Clone(), nil, x)
}

// binaryOp creates a two-operand node; both operands must have identical shapes.
// There is no implicit broadcasting: make it explicit with BroadcastInDim.
func (g *Graph) binaryOp(opType OpType, lhs, rhs *Node) *Node {
	if !BinaryOperations[opType] {
		exceptions.Panicf("graph %q: %s is not a binary operation", g.name, opType)
	}
	if !lhs.shape.Equal(rhs.shape) {
		exceptions.Panicf("graph %q: %s operands have incompatible shapes %s and %s",
			g.name, opType, lhs.shape, rhs.shape)
	}
	return g.newNode(opType, lhs.shape.Clone(), nil, lhs, rhs)
}

// Abs returns |x| elementwise.
func (g *Graph) Abs(x *Node) *Node { return g.unaryOp(OpTypeAbs, x) }

// Exp returns e^x elementwise.
func (g *Graph) Exp(x *Node) *Node { return g.unaryOp(OpTypeExp, x) }

// Log returns the natural logarithm elementwise.
func (g *Graph) Log(x *Node) *Node { return g.unaryOp(OpTypeLog, x) }

// Neg returns -x elementwise.
func (g *Graph) Neg(x *Node) *Node { return g.unaryOp(OpTypeNeg, x) }

// Tanh returns the hyperbolic tangent elementwise.
func (g *Graph) Tanh(x *Node) *Node { return g.unaryOp(OpTypeTanh, x) }

// Add returns lhs + rhs elementwise.
func (g *Graph) Add(lhs, rhs *Node) *Node { return g.binaryOp(OpTypeAdd, lhs, rhs) }

// Sub returns lhs - rhs elementwise.
func (g *Graph) Sub(lhs, rhs *Node) *Node { return g.binaryOp(OpTypeSub, lhs, rhs) }

// Mul returns lhs * rhs elementwise.
func (g *Graph) Mul(lhs, rhs *Node) *Node { return g.binaryOp(OpTypeMul, lhs, rhs) }

// Div returns lhs / rhs elementwise.
func (g *Graph) Div(lhs, rhs *Node) *Node { return g.binaryOp(OpTypeDiv, lhs, rhs) }

// Max returns the elementwise maximum.
func (g *Graph) Max(lhs, rhs *Node) *Node { return g.binaryOp(OpTypeMax, lhs, rhs) }

// Min returns the elementwise minimum.
func (g *Graph) Min(lhs, rhs *Node) *Node { return g.binaryOp(OpTypeMin, lhs, rhs) }

// BroadcastInDim expands x to outputShape: operand axis i maps to output axis
// broadcastDims[i], every other output axis is filled by repetition.
//
// broadcastDims must be strictly increasing and each mapped output dimension must
// equal the corresponding operand dimension -- degenerate (size 1) expansion is
// not supported, reshape it away first.
func (g *Graph) BroadcastInDim(x *Node, outputShape shapes.Shape, broadcastDims []int) *Node {
	if len(broadcastDims) != x.Rank() {
		exceptions.Panicf("graph %q: BroadcastInDim needs one broadcast dimension per operand axis, got %d for %s",
			g.name, len(broadcastDims), x.shape)
	}
	for ii, outputAxis := range broadcastDims {
		if outputAxis < 0 || outputAxis >= outputShape.Rank() {
			exceptions.Panicf("graph %q: BroadcastInDim dimension %d out-of-range for %s", g.name, outputAxis, outputShape)
		}
		if ii > 0 && broadcastDims[ii-1] >= outputAxis {
			exceptions.Panicf("graph %q: BroadcastInDim dimensions must be strictly increasing, got %v", g.name, broadcastDims)
		}
		if outputShape.Dim(outputAxis) != x.shape.Dim(ii) {
			exceptions.Panicf("graph %q: BroadcastInDim operand axis %d (dimension %d) mapped to output axis %d (dimension %d)",
				g.name, ii, x.shape.Dim(ii), outputAxis, outputShape.Dim(outputAxis))
		}
	}
	return g.newNode(OpTypeBroadcastInDim, outputShape.Clone(),
		broadcastData{broadcastDims: slices.Clone(broadcastDims)}, x)
}

// BroadcastDims returns the broadcast dimensions attribute of a BroadcastInDim node.
func (n *Node) BroadcastDims() []int { return attrData[broadcastData](n, "BroadcastInDim").broadcastDims }

// Reshape reinterprets x with new dimensions; the total size must not change.
func (g *Graph) Reshape(x *Node, dimensions ...int) *Node {
	newShape := shapes.Make(x.shape.DType, dimensions...)
	if newShape.Size() != x.shape.Size() {
		exceptions.Panicf("graph %q: Reshape from %s to %v changes the total size", g.name, x.shape, dimensions)
	}
	return g.newNode(OpTypeReshape, newShape, nil, x)
}

// Transpose permutes the axes of x: output axis i takes its data from operand
// axis permutation[i].
func (g *Graph) Transpose(x *Node, permutation ...int) *Node {
	if len(permutation) != x.Rank() {
		exceptions.Panicf("graph %q: Transpose permutation %v does not match rank of %s", g.name, permutation, x.shape)
	}
	seen := make([]bool, x.Rank())
	newDims := make([]int, x.Rank())
	for ii, inputAxis := range permutation {
		if inputAxis < 0 || inputAxis >= x.Rank() || seen[inputAxis] {
			exceptions.Panicf("graph %q: Transpose permutation %v is not a permutation of the axes of %s",
				g.name, permutation, x.shape)
		}
		seen[inputAxis] = true
		newDims[ii] = x.shape.Dim(inputAxis)
	}
	return g.newNode(OpTypeTranspose, shapes.Make(x.shape.DType, newDims...),
		transposeData{permutation: slices.Clone(permutation)}, x)
}

// TransposePermutation returns the permutation attribute of a Transpose node.
func (n *Node) TransposePermutation() []int {
	return attrData[transposeData](n, "Transpose").permutation
}

// reduceOp creates a reduction over the given axes; the reduced axes disappear
// from the output shape (no keep-dims variant).
func (g *Graph) reduceOp(opType OpType, x *Node, axes []int) *Node {
	if len(axes) == 0 {
		exceptions.Panicf("graph %q: %s requires at least one axis to reduce", g.name, opType)
	}
	axes = slices.Clone(axes)
	slices.Sort(axes)
	for ii, axis := range axes {
		if axis < 0 || axis >= x.Rank() || (ii > 0 && axes[ii-1] == axis) {
			exceptions.Panicf("graph %q: %s axes %v out-of-range or repeated for %s", g.name, opType, axes, x.shape)
		}
	}
	newDims := make([]int, 0, x.Rank()-len(axes))
	for axis := 0; axis < x.Rank(); axis++ {
		if slices.Contains(axes, axis) {
			continue
		}
		newDims = append(newDims, x.shape.Dim(axis))
	}
	newShape := shapes.Shape{DType: x.shape.DType, Dimensions: newDims}
	return g.newNode(opType, newShape, reduceData{axes: axes}, x)
}

// ReduceSum sums over the given axes.
func (g *Graph) ReduceSum(x *Node, axes ...int) *Node { return g.reduceOp(OpTypeReduceSum, x, axes) }

// ReduceMax takes the maximum over the given axes.
func (g *Graph) ReduceMax(x *Node, axes ...int) *Node { return g.reduceOp(OpTypeReduceMax, x, axes) }

// ReduceAxes returns the axes attribute of a reduction node.
func (n *Node) ReduceAxes() []int { return attrData[reduceData](n, "Reduce").axes }

// ReduceWindow slides a window of windowDims over x with the given strides
// ("valid" padding): output dimension i is (input_i - window_i)/stride_i + 1.
func (g *Graph) ReduceWindow(x *Node, windowDims, strides []int) *Node {
	if len(windowDims) != x.Rank() || len(strides) != x.Rank() {
		exceptions.Panicf("graph %q: ReduceWindow needs one window dimension and stride per axis of %s, got %v and %v",
			g.name, x.shape, windowDims, strides)
	}
	newDims := make([]int, x.Rank())
	for axis := range newDims {
		window, stride := windowDims[axis], strides[axis]
		if window <= 0 || stride <= 0 || window > x.shape.Dim(axis) {
			exceptions.Panicf("graph %q: ReduceWindow window %v / strides %v invalid for %s",
				g.name, windowDims, strides, x.shape)
		}
		newDims[axis] = (x.shape.Dim(axis)-window)/stride + 1
	}
	return g.newNode(OpTypeReduceWindow, shapes.Make(x.shape.DType, newDims...),
		windowData{windowDims: slices.Clone(windowDims), strides: slices.Clone(strides)}, x)
}

// WindowDims returns the window dimensions attribute of a ReduceWindow node.
func (n *Node) WindowDims() []int { return attrData[windowData](n, "ReduceWindow").windowDims }

// WindowStrides returns the strides attribute of a ReduceWindow node.
func (n *Node) WindowStrides() []int { return attrData[windowData](n, "ReduceWindow").strides }

// Slice extracts x[starts[i]:limits[i]:strides[i]] on every axis.
func (g *Graph) Slice(x *Node, starts, limits, strides []int) *Node {
	if len(starts) != x.Rank() || len(limits) != x.Rank() || len(strides) != x.Rank() {
		exceptions.Panicf("graph %q: Slice needs starts, limits and strides for every axis of %s", g.name, x.shape)
	}
	newDims := make([]int, x.Rank())
	for axis := range newDims {
		start, limit, stride := starts[axis], limits[axis], strides[axis]
		if stride <= 0 || start < 0 || limit > x.shape.Dim(axis) || start >= limit {
			exceptions.Panicf("graph %q: Slice starts=%v limits=%v strides=%v invalid for %s",
				g.name, starts, limits, strides, x.shape)
		}
		newDims[axis] = (limit - start + stride - 1) / stride
	}
	return g.newNode(OpTypeSlice, shapes.Make(x.shape.DType, newDims...),
		sliceData{starts: slices.Clone(starts), limits: slices.Clone(limits), strides: slices.Clone(strides)}, x)
}

// SliceStarts returns the start offsets attribute of a Slice node.
func (n *Node) SliceStarts() []int { return attrData[sliceData](n, "Slice").starts }

// SliceStrides returns the strides attribute of a Slice node.
func (n *Node) SliceStrides() []int { return attrData[sliceData](n, "Slice").strides }

// Concatenate joins the operands along the given axis. All other dimensions must match.
func (g *Graph) Concatenate(axis int, operands ...*Node) *Node {
	if len(operands) < 2 {
		exceptions.Panicf("graph %q: Concatenate requires at least two operands", g.name)
	}
	first := operands[0]
	if axis < 0 || axis >= first.Rank() {
		exceptions.Panicf("graph %q: Concatenate axis %d out-of-range for %s", g.name, axis, first.shape)
	}
	newDims := slices.Clone(first.shape.Dimensions)
	for _, operand := range operands[1:] {
		if operand.Rank() != first.Rank() || operand.shape.DType != first.shape.DType {
			exceptions.Panicf("graph %q: Concatenate operands %s and %s are incompatible", g.name, first.shape, operand.shape)
		}
		for otherAxis := 0; otherAxis < first.Rank(); otherAxis++ {
			if otherAxis != axis && operand.shape.Dim(otherAxis) != first.shape.Dim(otherAxis) {
				exceptions.Panicf("graph %q: Concatenate operands %s and %s differ outside axis %d",
					g.name, first.shape, operand.shape, axis)
			}
		}
		newDims[axis] += operand.shape.Dim(axis)
	}
	return g.newNode(OpTypeConcatenate, shapes.Make(first.shape.DType, newDims...),
		concatenateData{axis: axis}, operands...)
}

// ConcatenateAxis returns the axis attribute of a Concatenate node.
func (n *Node) ConcatenateAxis() int { return attrData[concatenateData](n, "Concatenate").axis }

// Dot is a plain matrix multiplication: [m, k] x [k, n] -> [m, n].
func (g *Graph) Dot(lhs, rhs *Node) *Node {
	if lhs.Rank() != 2 || rhs.Rank() != 2 || lhs.shape.Dim(1) != rhs.shape.Dim(0) {
		exceptions.Panicf("graph %q: Dot operands %s and %s are not compatible matrices", g.name, lhs.shape, rhs.shape)
	}
	return g.newNode(OpTypeDot, shapes.Make(lhs.shape.DType, lhs.shape.Dim(0), rhs.shape.Dim(1)), nil, lhs, rhs)
}
