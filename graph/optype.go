package graph

// OpType is an enum of the operations a Node can represent.
//
// The set is closed on purpose: the tiling analysis dispatches on OpType and must
// be exhaustive, an operation it doesn't know is a construction-time rejection,
// not a silent fallback.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota
	OpTypeParameter
	OpTypeConstant
	OpTypeIota

	OpTypeAbs
	OpTypeAdd
	OpTypeBroadcastInDim
	OpTypeConcatenate
	OpTypeDiv
	OpTypeDot
	OpTypeExp
	OpTypeLog
	OpTypeMax
	OpTypeMin
	OpTypeMul
	OpTypeNeg
	OpTypeReduceMax
	OpTypeReduceSum
	OpTypeReduceWindow
	OpTypeReshape
	OpTypeSlice
	OpTypeSub
	OpTypeTanh
	OpTypeTranspose
)

// LeafOperations have no operands: they are the starting points of a computation.
var LeafOperations = map[OpType]bool{
	OpTypeParameter: true,
	OpTypeConstant:  true,
	OpTypeIota:      true,
}

// UnaryOperations take a single operand and keep its shape.
var UnaryOperations = map[OpType]bool{
	OpTypeAbs:  true,
	OpTypeExp:  true,
	OpTypeLog:  true,
	OpTypeNeg:  true,
	OpTypeTanh: true,
}

// BinaryOperations take two operands of identical shape and keep it.
var BinaryOperations = map[OpType]bool{
	OpTypeAdd: true,
	OpTypeDiv: true,
	OpTypeMax: true,
	OpTypeMin: true,
	OpTypeMul: true,
	OpTypeSub: true,
}
