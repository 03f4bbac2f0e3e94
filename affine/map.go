package affine

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Map is a multi-result affine map "(d0, ..., dN-1)[s0, ..., sM-1] -> (e0, ..., eK-1)".
//
// A Map is immutable: the transformation methods return new maps sharing the same
// Context. Maps built from the same Context with the same signature and result
// expressions are Equal (their results are pointer-equal).
type Map struct {
	ctx                 *Context
	numDims, numSymbols int
	results             []Expr
}

// NewMap creates a Map over numDims dimensions and numSymbols symbols with the
// given result expressions.
func (ctx *Context) NewMap(numDims, numSymbols int, results ...Expr) *Map {
	return &Map{ctx: ctx, numDims: numDims, numSymbols: numSymbols, results: results}
}

// IdentityMap returns the map (d0, ..., dN-1)[s0...] -> (d0, ..., dN-1).
func (ctx *Context) IdentityMap(numDims, numSymbols int) *Map {
	results := make([]Expr, numDims)
	for ii := range results {
		results[ii] = ctx.Dim(ii)
	}
	return ctx.NewMap(numDims, numSymbols, results...)
}

// Context returns the Context that owns the map's expressions.
func (m *Map) Context() *Context { return m.ctx }

// NumDims returns the number of dimension variables of the map.
func (m *Map) NumDims() int { return m.numDims }

// NumSymbols returns the number of symbol variables of the map.
func (m *Map) NumSymbols() int { return m.numSymbols }

// NumResults returns the number of result expressions.
func (m *Map) NumResults() int { return len(m.results) }

// Result returns the idx-th result expression.
func (m *Map) Result(idx int) Expr { return m.results[idx] }

// Results returns the result expressions. The returned slice must not be modified.
func (m *Map) Results() []Expr { return m.results }

// Equal reports whether both maps have the same signature and the same result
// expressions. Only meaningful for maps sharing a Context, where structural
// equality is pointer equality.
func (m *Map) Equal(other *Map) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.numDims != other.numDims || m.numSymbols != other.numSymbols || len(m.results) != len(other.results) {
		return false
	}
	for ii, result := range m.results {
		if result != other.results[ii] {
			return false
		}
	}
	return true
}

// Evaluate computes the concrete results for the given dimension and symbol values.
func (m *Map) Evaluate(dims, symbols []int64) ([]int64, error) {
	if len(dims) < m.numDims {
		return nil, errors.Errorf("affine.Map.Evaluate: map has %d dimensions, only %d values given", m.numDims, len(dims))
	}
	values := make([]int64, 0, len(m.results))
	for _, result := range m.results {
		value, err := Evaluate(result, dims, symbols)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// ReplaceSymbols returns a new map with a prefix of the symbols substituted by
// the given constant values, results simplified. The signature is unchanged.
func (m *Map) ReplaceSymbols(values []int64) *Map {
	results := make([]Expr, len(m.results))
	for ii, result := range m.results {
		results[ii] = m.ctx.ReplaceSymbols(result, values)
	}
	return m.ctx.NewMap(m.numDims, m.numSymbols, results...)
}

// Compose returns the map m ∘ inner: the results of inner are substituted for
// the dimensions of m. It requires inner.NumResults() == m.NumDims(). Both maps
// must share the same symbol space; the composed map has inner's dimensions and
// the larger of both symbol counts.
func (m *Map) Compose(inner *Map) (*Map, error) {
	if inner.NumResults() != m.numDims {
		return nil, errors.Errorf("affine.Map.Compose: outer map takes %d dimensions, inner map produces %d results",
			m.numDims, inner.NumResults())
	}
	if inner.ctx != m.ctx {
		return nil, errors.Errorf("affine.Map.Compose: maps belong to different contexts")
	}
	results := make([]Expr, len(m.results))
	for ii, result := range m.results {
		results[ii] = m.ctx.Replace(result, inner.results, nil)
	}
	return m.ctx.NewMap(inner.numDims, max(m.numSymbols, inner.numSymbols), results...), nil
}

// IsConstant reports whether every result is a constant expression.
func (m *Map) IsConstant() bool {
	for _, result := range m.results {
		if _, ok := result.(*ConstantExpr); !ok {
			return false
		}
	}
	return true
}

// ConstantResults returns the results of a constant map (see IsConstant).
func (m *Map) ConstantResults() ([]int64, error) {
	values := make([]int64, 0, len(m.results))
	for _, result := range m.results {
		c, ok := result.(*ConstantExpr)
		if !ok {
			return nil, errors.Errorf("affine.Map.ConstantResults: result %q is not a constant", result)
		}
		values = append(values, c.Value)
	}
	return values, nil
}

// String renders the map in the usual affine notation, e.g.
// "(d0, d1)[s0] -> (d0 * s0, d1)".
func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for ii := 0; ii < m.numDims; ii++ {
		if ii > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "d%d", ii)
	}
	sb.WriteString(")")
	if m.numSymbols > 0 {
		sb.WriteString("[")
		for ii := 0; ii < m.numSymbols; ii++ {
			if ii > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "s%d", ii)
		}
		sb.WriteString("]")
	}
	sb.WriteString(" -> (")
	for ii, result := range m.results {
		if ii > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(result.String())
	}
	sb.WriteString(")")
	return sb.String()
}
