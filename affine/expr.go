// Package affine implements the small symbolic algebra used by the tiling analysis:
// affine expressions over dimension and symbol variables, multi-result affine maps,
// and intervals.
//
// Expressions are immutable and uniqued ("interned") by a Context: two structurally
// equal expressions built from the same Context are the same pointer, so equality
// is pointer equality. A Context must not be mutated concurrently: use one Context
// per single-threaded compilation unit, many concurrent readers are fine once no
// more expressions are being created. See Context.
//
// The conventions follow the usual affine-map notation: dimensions are written
// d0, d1, ... and symbols s0, s1, .... In the tiling analysis, dimensions stand
// for tile coordinates and symbols for tile-size parameters.
package affine

import (
	"fmt"

	"github.com/pkg/errors"
)

// Expr is a symbolic affine expression: a constant, a dimension (d0, d1, ...),
// a symbol (s0, s1, ...), or a binary operation combining two expressions.
//
// Exprs are created through a Context and are immutable; compare them with ==.
type Expr interface {
	fmt.Stringer

	// isExpr limits implementations to this package.
	isExpr()
}

func (*ConstantExpr) isExpr() {}
func (*DimExpr) isExpr()      {}
func (*SymbolExpr) isExpr()   {}
func (*BinaryExpr) isExpr()   {}

// ConstantExpr is an integer constant.
type ConstantExpr struct {
	Value int64
}

func (e *ConstantExpr) String() string { return fmt.Sprintf("%d", e.Value) }

// DimExpr is a reference to dimension variable d<Index>.
type DimExpr struct {
	Index int
}

func (e *DimExpr) String() string { return fmt.Sprintf("d%d", e.Index) }

// SymbolExpr is a reference to symbol variable s<Index>.
type SymbolExpr struct {
	Index int
}

func (e *SymbolExpr) String() string { return fmt.Sprintf("s%d", e.Index) }

// BinaryOp enumerates the operations a BinaryExpr can apply.
type BinaryOp int

//go:generate go tool enumer -type=BinaryOp -trimprefix=Op -output=gen_binaryop_enumer.go expr.go

const (
	OpAdd BinaryOp = iota
	OpMul
	OpFloorDiv
	OpCeilDiv
	OpMod
	OpMin
	OpMax
)

// BinaryExpr combines two sub-expressions with a BinaryOp.
//
// Division and modulo follow the affine convention: the right-hand side must be a
// positive constant at evaluation time, FloorDiv rounds towards negative infinity
// and Mod always returns a value in [0, rhs).
type BinaryExpr struct {
	Op       BinaryOp
	LHS, RHS Expr
}

func (e *BinaryExpr) String() string {
	switch e.Op {
	case OpAdd:
		return fmt.Sprintf("%s + %s", exprSubString(e.LHS, false), exprSubString(e.RHS, false))
	case OpMul:
		return fmt.Sprintf("%s * %s", exprSubString(e.LHS, true), exprSubString(e.RHS, true))
	case OpFloorDiv:
		return fmt.Sprintf("%s floordiv %s", exprSubString(e.LHS, true), exprSubString(e.RHS, true))
	case OpCeilDiv:
		return fmt.Sprintf("%s ceildiv %s", exprSubString(e.LHS, true), exprSubString(e.RHS, true))
	case OpMod:
		return fmt.Sprintf("%s mod %s", exprSubString(e.LHS, true), exprSubString(e.RHS, true))
	case OpMin:
		return fmt.Sprintf("min(%s, %s)", e.LHS, e.RHS)
	case OpMax:
		return fmt.Sprintf("max(%s, %s)", e.LHS, e.RHS)
	}
	return "?"
}

// exprSubString renders a sub-expression, parenthesizing compound operands in
// higher-precedence (tight) contexts. Min and max render with their own
// parentheses already.
func exprSubString(e Expr, tight bool) string {
	if binary, ok := e.(*BinaryExpr); ok && tight && binary.Op != OpMin && binary.Op != OpMax {
		return fmt.Sprintf("(%s)", e)
	}
	return e.String()
}

// Evaluate computes the concrete value of the expression for the given dimension
// and symbol values. It returns an error if the expression references a variable
// beyond the provided values, or divides (or takes modulo) by a non-positive value.
func Evaluate(e Expr, dims, symbols []int64) (int64, error) {
	switch e := e.(type) {
	case *ConstantExpr:
		return e.Value, nil
	case *DimExpr:
		if e.Index >= len(dims) {
			return 0, errors.Errorf("affine.Evaluate: expression references d%d, but only %d dimension values given", e.Index, len(dims))
		}
		return dims[e.Index], nil
	case *SymbolExpr:
		if e.Index >= len(symbols) {
			return 0, errors.Errorf("affine.Evaluate: expression references s%d, but only %d symbol values given", e.Index, len(symbols))
		}
		return symbols[e.Index], nil
	case *BinaryExpr:
		lhs, err := Evaluate(e.LHS, dims, symbols)
		if err != nil {
			return 0, err
		}
		rhs, err := Evaluate(e.RHS, dims, symbols)
		if err != nil {
			return 0, err
		}
		return evaluateBinary(e.Op, lhs, rhs)
	}
	return 0, errors.Errorf("affine.Evaluate: unknown expression type %T", e)
}

func evaluateBinary(op BinaryOp, lhs, rhs int64) (int64, error) {
	switch op {
	case OpAdd:
		return lhs + rhs, nil
	case OpMul:
		return lhs * rhs, nil
	case OpFloorDiv:
		if rhs <= 0 {
			return 0, errors.Errorf("affine.Evaluate: floordiv by non-positive value %d", rhs)
		}
		return floorDiv(lhs, rhs), nil
	case OpCeilDiv:
		if rhs <= 0 {
			return 0, errors.Errorf("affine.Evaluate: ceildiv by non-positive value %d", rhs)
		}
		return ceilDiv(lhs, rhs), nil
	case OpMod:
		if rhs <= 0 {
			return 0, errors.Errorf("affine.Evaluate: mod by non-positive value %d", rhs)
		}
		return lhs - floorDiv(lhs, rhs)*rhs, nil
	case OpMin:
		return min(lhs, rhs), nil
	case OpMax:
		return max(lhs, rhs), nil
	}
	return 0, errors.Errorf("affine.Evaluate: unknown binary op %d", op)
}

// floorDiv rounds the quotient towards negative infinity. b must be > 0.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ceilDiv rounds the quotient towards positive infinity. b must be > 0.
func ceilDiv(a, b int64) int64 {
	return floorDiv(a+b-1, b)
}

// UsedSymbols returns the set of symbol indices referenced by the expression.
func UsedSymbols(e Expr) map[int]bool {
	used := make(map[int]bool)
	collectUsedSymbols(e, used)
	return used
}

func collectUsedSymbols(e Expr, used map[int]bool) {
	switch e := e.(type) {
	case *SymbolExpr:
		used[e.Index] = true
	case *BinaryExpr:
		collectUsedSymbols(e.LHS, used)
		collectUsedSymbols(e.RHS, used)
	}
}
