package affine

// Context creates and owns affine expressions, uniquing them so structurally equal
// expressions are pointer-equal.
//
// A Context is not safe for concurrent expression creation: share one Context per
// compilation unit and only create expressions from a single goroutine at a time.
// Once all expressions are built, any number of goroutines may read them (and
// evaluate maps that only use Evaluate, which allocates nothing in the Context).
type Context struct {
	dims      map[int]*DimExpr
	symbols   map[int]*SymbolExpr
	constants map[int64]*ConstantExpr
	binaries  map[binaryKey]*BinaryExpr
}

type binaryKey struct {
	op       BinaryOp
	lhs, rhs Expr
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{
		dims:      make(map[int]*DimExpr),
		symbols:   make(map[int]*SymbolExpr),
		constants: make(map[int64]*ConstantExpr),
		binaries:  make(map[binaryKey]*BinaryExpr),
	}
}

// Dim returns the uniqued dimension expression d<index>.
func (ctx *Context) Dim(index int) *DimExpr {
	if e, found := ctx.dims[index]; found {
		return e
	}
	e := &DimExpr{Index: index}
	ctx.dims[index] = e
	return e
}

// Symbol returns the uniqued symbol expression s<index>.
func (ctx *Context) Symbol(index int) *SymbolExpr {
	if e, found := ctx.symbols[index]; found {
		return e
	}
	e := &SymbolExpr{Index: index}
	ctx.symbols[index] = e
	return e
}

// Constant returns the uniqued constant expression for the given value.
func (ctx *Context) Constant(value int64) *ConstantExpr {
	if e, found := ctx.constants[value]; found {
		return e
	}
	e := &ConstantExpr{Value: value}
	ctx.constants[value] = e
	return e
}

// Zero and One are so common they get shortcuts.
func (ctx *Context) Zero() *ConstantExpr { return ctx.Constant(0) }
func (ctx *Context) One() *ConstantExpr  { return ctx.Constant(1) }

// binary interns a binary expression node without simplifying. The public
// builders below simplify first.
func (ctx *Context) binary(op BinaryOp, lhs, rhs Expr) Expr {
	key := binaryKey{op: op, lhs: lhs, rhs: rhs}
	if e, found := ctx.binaries[key]; found {
		return e
	}
	e := &BinaryExpr{Op: op, LHS: lhs, RHS: rhs}
	ctx.binaries[key] = e
	return e
}

// constValue returns the value of e if it is a constant.
func constValue(e Expr) (int64, bool) {
	if c, ok := e.(*ConstantExpr); ok {
		return c.Value, true
	}
	return 0, false
}

// Add returns lhs + rhs, simplified: constants are folded and moved to the
// right-hand side, and zeros are dropped.
func (ctx *Context) Add(lhs, rhs Expr) Expr {
	lhsConst, lhsIsConst := constValue(lhs)
	rhsConst, rhsIsConst := constValue(rhs)
	if lhsIsConst && rhsIsConst {
		return ctx.Constant(lhsConst + rhsConst)
	}
	if lhsIsConst {
		// Canonical form keeps the constant on the right.
		lhs, rhs = rhs, lhs
		rhsConst, rhsIsConst = lhsConst, true
	}
	if rhsIsConst {
		if rhsConst == 0 {
			return lhs
		}
		// (x + c1) + c2 => x + (c1+c2)
		if lhsBinary, ok := lhs.(*BinaryExpr); ok && lhsBinary.Op == OpAdd {
			if inner, ok := constValue(lhsBinary.RHS); ok {
				return ctx.Add(lhsBinary.LHS, ctx.Constant(inner+rhsConst))
			}
		}
	}
	return ctx.binary(OpAdd, lhs, rhs)
}

// AddConst returns e + value.
func (ctx *Context) AddConst(e Expr, value int64) Expr {
	return ctx.Add(e, ctx.Constant(value))
}

// Mul returns lhs * rhs, simplified: constants are folded and moved to the
// right-hand side, multiplication by 0 or 1 is resolved.
func (ctx *Context) Mul(lhs, rhs Expr) Expr {
	lhsConst, lhsIsConst := constValue(lhs)
	rhsConst, rhsIsConst := constValue(rhs)
	if lhsIsConst && rhsIsConst {
		return ctx.Constant(lhsConst * rhsConst)
	}
	if lhsIsConst {
		lhs, rhs = rhs, lhs
		rhsConst, rhsIsConst = lhsConst, true
	}
	if rhsIsConst {
		switch rhsConst {
		case 0:
			return ctx.Zero()
		case 1:
			return lhs
		}
		// (x * c1) * c2 => x * (c1*c2)
		if lhsBinary, ok := lhs.(*BinaryExpr); ok && lhsBinary.Op == OpMul {
			if inner, ok := constValue(lhsBinary.RHS); ok {
				return ctx.Mul(lhsBinary.LHS, ctx.Constant(inner*rhsConst))
			}
		}
	}
	return ctx.binary(OpMul, lhs, rhs)
}

// MulConst returns e * value.
func (ctx *Context) MulConst(e Expr, value int64) Expr {
	return ctx.Mul(e, ctx.Constant(value))
}

// FloorDiv returns lhs floordiv rhs (rounding towards negative infinity).
// Division by 1 and constant operands are folded, but only for positive constant
// divisors: a non-positive divisor is left symbolic and fails at evaluation.
func (ctx *Context) FloorDiv(lhs, rhs Expr) Expr {
	lhsConst, lhsIsConst := constValue(lhs)
	rhsConst, rhsIsConst := constValue(rhs)
	if rhsIsConst && rhsConst > 0 {
		if rhsConst == 1 {
			return lhs
		}
		if lhsIsConst {
			return ctx.Constant(floorDiv(lhsConst, rhsConst))
		}
		// (x * c1) floordiv c2 => x * (c1/c2) when c2 divides c1.
		if lhsBinary, ok := lhs.(*BinaryExpr); ok && lhsBinary.Op == OpMul {
			if inner, ok := constValue(lhsBinary.RHS); ok && inner%rhsConst == 0 {
				return ctx.Mul(lhsBinary.LHS, ctx.Constant(inner/rhsConst))
			}
		}
	}
	if lhsIsConst && lhsConst == 0 {
		return ctx.Zero()
	}
	return ctx.binary(OpFloorDiv, lhs, rhs)
}

// CeilDiv returns lhs ceildiv rhs (rounding towards positive infinity).
func (ctx *Context) CeilDiv(lhs, rhs Expr) Expr {
	lhsConst, lhsIsConst := constValue(lhs)
	rhsConst, rhsIsConst := constValue(rhs)
	if rhsIsConst && rhsConst > 0 {
		if rhsConst == 1 {
			return lhs
		}
		if lhsIsConst {
			return ctx.Constant(ceilDiv(lhsConst, rhsConst))
		}
	}
	if lhsIsConst && lhsConst == 0 {
		return ctx.Zero()
	}
	return ctx.binary(OpCeilDiv, lhs, rhs)
}

// Mod returns lhs mod rhs, always in [0, rhs) for a positive divisor.
func (ctx *Context) Mod(lhs, rhs Expr) Expr {
	lhsConst, lhsIsConst := constValue(lhs)
	rhsConst, rhsIsConst := constValue(rhs)
	if rhsIsConst && rhsConst > 0 {
		if rhsConst == 1 {
			return ctx.Zero()
		}
		if lhsIsConst {
			return ctx.Constant(lhsConst - floorDiv(lhsConst, rhsConst)*rhsConst)
		}
		// (x * c1) mod c2 => 0 when c2 divides c1.
		if lhsBinary, ok := lhs.(*BinaryExpr); ok && lhsBinary.Op == OpMul {
			if inner, ok := constValue(lhsBinary.RHS); ok && inner%rhsConst == 0 {
				return ctx.Zero()
			}
		}
	}
	if lhsIsConst && lhsConst == 0 {
		return ctx.Zero()
	}
	if lhs == rhs {
		return ctx.Zero()
	}
	return ctx.binary(OpMod, lhs, rhs)
}

// Min returns min(lhs, rhs), folding constants and identical operands.
func (ctx *Context) Min(lhs, rhs Expr) Expr {
	if lhs == rhs {
		return lhs
	}
	lhsConst, lhsIsConst := constValue(lhs)
	rhsConst, rhsIsConst := constValue(rhs)
	if lhsIsConst && rhsIsConst {
		return ctx.Constant(min(lhsConst, rhsConst))
	}
	return ctx.binary(OpMin, lhs, rhs)
}

// Max returns max(lhs, rhs), folding constants and identical operands.
func (ctx *Context) Max(lhs, rhs Expr) Expr {
	if lhs == rhs {
		return lhs
	}
	lhsConst, lhsIsConst := constValue(lhs)
	rhsConst, rhsIsConst := constValue(rhs)
	if lhsIsConst && rhsIsConst {
		return ctx.Constant(max(lhsConst, rhsConst))
	}
	return ctx.binary(OpMax, lhs, rhs)
}

// Replace rebuilds the expression substituting dimension d<i> with dimReplacements[i]
// and symbol s<i> with symbolReplacements[i]. Variables beyond the replacement slices
// are kept as they are. The result is simplified by the usual builder rules.
func (ctx *Context) Replace(e Expr, dimReplacements, symbolReplacements []Expr) Expr {
	switch e := e.(type) {
	case *ConstantExpr:
		return e
	case *DimExpr:
		if e.Index < len(dimReplacements) && dimReplacements[e.Index] != nil {
			return dimReplacements[e.Index]
		}
		return e
	case *SymbolExpr:
		if e.Index < len(symbolReplacements) && symbolReplacements[e.Index] != nil {
			return symbolReplacements[e.Index]
		}
		return e
	case *BinaryExpr:
		lhs := ctx.Replace(e.LHS, dimReplacements, symbolReplacements)
		rhs := ctx.Replace(e.RHS, dimReplacements, symbolReplacements)
		if lhs == e.LHS && rhs == e.RHS {
			return e
		}
		switch e.Op {
		case OpAdd:
			return ctx.Add(lhs, rhs)
		case OpMul:
			return ctx.Mul(lhs, rhs)
		case OpFloorDiv:
			return ctx.FloorDiv(lhs, rhs)
		case OpCeilDiv:
			return ctx.CeilDiv(lhs, rhs)
		case OpMod:
			return ctx.Mod(lhs, rhs)
		case OpMin:
			return ctx.Min(lhs, rhs)
		case OpMax:
			return ctx.Max(lhs, rhs)
		}
	}
	return e
}

// ReplaceSymbols substitutes a prefix of the symbols with the given constant
// values and simplifies: s<i> becomes values[i] for i < len(values).
func (ctx *Context) ReplaceSymbols(e Expr, values []int64) Expr {
	replacements := make([]Expr, len(values))
	for ii, value := range values {
		replacements[ii] = ctx.Constant(value)
	}
	return ctx.Replace(e, nil, replacements)
}
