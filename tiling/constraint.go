// Package tiling implements the symbolic tiling analysis: given a closed
// computation subgraph, it derives how every operation's output and input
// regions decompose into tiles parameterized by a vector of tile sizes, which
// tile-size vectors are legal, and materializes the concrete tiled graph for a
// chosen vector.
//
// Entry points are AnalyzeGraph and AnalyzeSubgraph, which return an immutable
// Analysis. All queries on an Analysis (constraint satisfaction, tile
// materialization, tiling enumeration) are read-only and safe to run
// concurrently, as long as the affine.Context handed to the analysis is not
// concurrently mutated by construction of another analysis. Materialization
// creates expressions, so it counts as a Context writer: serialize
// materializations per Context or give each analysis its own Context.
package tiling

import (
	"strings"

	"github.com/gomlx/symtile/affine"
	"github.com/pkg/errors"
)

// Constraint is one atomic condition over the tile-size parameters: the value of
// Expr (whose symbols s0, s1, ... are the tile sizes) must lie within Bounds.
type Constraint struct {
	Expr   affine.Expr
	Bounds affine.Interval
}

// IsSatisfiedBy evaluates the constraint against concrete tile sizes.
// It returns an error when parameters do not provide enough values to evaluate
// Expr -- the caller must treat that as "indeterminate", never as false.
func (c Constraint) IsSatisfiedBy(parameters []int64) (bool, error) {
	value, err := affine.Evaluate(c.Expr, nil, parameters)
	if err != nil {
		return false, errors.WithMessagef(err, "evaluating constraint %s", c)
	}
	return c.Bounds.Contains(value), nil
}

func (c Constraint) String() string {
	if c.Bounds.IsPoint() && c.Bounds.Lower == 0 {
		return c.Expr.String() + " == 0"
	}
	return c.Expr.String() + " in " + c.Bounds.String()
}

// ConjointConstraints is a conjunction (logical AND) of constraints.
type ConjointConstraints []Constraint

// ConstraintExpression is a boolean formula over the tile-size parameters in
// disjunctive normal form: an OR of ANDs of atomic Constraints.
//
// The zero value is NOT meaningful; use AlwaysSatisfied, Unsatisfiable or
// NewConstraintExpression. ConstraintExpressions are immutable, And and Or
// return new values.
type ConstraintExpression struct {
	isSatisfiable bool

	// disjointConjoints empty (with isSatisfiable) means "always satisfied".
	disjointConjoints []ConjointConstraints
}

// AlwaysSatisfied returns the constraint satisfied by every parameter vector.
func AlwaysSatisfied() ConstraintExpression {
	return ConstraintExpression{isSatisfiable: true}
}

// Unsatisfiable returns the constraint satisfied by no parameter vector.
func Unsatisfiable() ConstraintExpression {
	return ConstraintExpression{isSatisfiable: false}
}

// NewConstraintExpression returns the disjunction of the given conjunctions.
// With no arguments it is Unsatisfiable (an empty OR is false).
func NewConstraintExpression(conjunctions ...ConjointConstraints) ConstraintExpression {
	if len(conjunctions) == 0 {
		return Unsatisfiable()
	}
	return ConstraintExpression{isSatisfiable: true, disjointConjoints: conjunctions}
}

// IsSatisfiable reports whether any parameter vector can satisfy the expression.
func (ce ConstraintExpression) IsSatisfiable() bool { return ce.isSatisfiable }

// IsAlwaysSatisfied reports whether every parameter vector satisfies the expression.
func (ce ConstraintExpression) IsAlwaysSatisfied() bool {
	return ce.isSatisfiable && len(ce.disjointConjoints) == 0
}

// DisjointConjoints returns the disjuncts of the DNF. Empty for both the
// always-satisfied and the unsatisfiable expressions (distinguish them with
// IsSatisfiable). The returned slice must not be modified.
func (ce ConstraintExpression) DisjointConjoints() []ConjointConstraints {
	return ce.disjointConjoints
}

// And returns the conjunction of both expressions. In DNF the AND distributes
// over the disjuncts: the result has one disjunct per pair of input disjuncts.
// The result can only be stricter: every parameter vector satisfying the result
// satisfies both inputs.
func (ce ConstraintExpression) And(other ConstraintExpression) ConstraintExpression {
	if !ce.isSatisfiable || !other.isSatisfiable {
		return Unsatisfiable()
	}
	if ce.IsAlwaysSatisfied() {
		return other
	}
	if other.IsAlwaysSatisfied() {
		return ce
	}
	product := make([]ConjointConstraints, 0, len(ce.disjointConjoints)*len(other.disjointConjoints))
	for _, lhs := range ce.disjointConjoints {
		for _, rhs := range other.disjointConjoints {
			merged, ok := mergeConjoints(lhs, rhs)
			if !ok {
				// Contradictory bounds on the same expression, drop the disjunct.
				continue
			}
			product = append(product, merged)
		}
	}
	if len(product) == 0 {
		return Unsatisfiable()
	}
	return ConstraintExpression{isSatisfiable: true, disjointConjoints: product}
}

// Or returns the disjunction of both expressions.
func (ce ConstraintExpression) Or(other ConstraintExpression) ConstraintExpression {
	if ce.IsAlwaysSatisfied() || other.IsAlwaysSatisfied() {
		return AlwaysSatisfied()
	}
	if !ce.isSatisfiable {
		return other
	}
	if !other.isSatisfiable {
		return ce
	}
	joined := make([]ConjointConstraints, 0, len(ce.disjointConjoints)+len(other.disjointConjoints))
	joined = append(joined, ce.disjointConjoints...)
	joined = append(joined, other.disjointConjoints...)
	return ConstraintExpression{isSatisfiable: true, disjointConjoints: joined}
}

// mergeConjoints concatenates two conjunctions, intersecting the bounds of
// constraints on the same expression. Returns ok=false when an intersection is
// empty, making the merged conjunction unsatisfiable.
func mergeConjoints(lhs, rhs ConjointConstraints) (ConjointConstraints, bool) {
	merged := make(ConjointConstraints, 0, len(lhs)+len(rhs))
	merged = append(merged, lhs...)
	for _, c := range rhs {
		found := false
		for ii, existing := range merged {
			if existing.Expr == c.Expr {
				intersection := affine.Interval{
					Lower: max(existing.Bounds.Lower, c.Bounds.Lower),
					Upper: min(existing.Bounds.Upper, c.Bounds.Upper),
				}
				if intersection.IsEmpty() {
					return nil, false
				}
				merged[ii].Bounds = intersection
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, c)
		}
	}
	return merged, true
}

// IsSatisfiedBy evaluates the expression against concrete tile sizes. The
// semantics are three-valued: (true, nil) when satisfied, (false, nil) when the
// parameters are legal inputs but fail the constraints, and (false, err) when
// some atom cannot be reduced to a concrete truth value -- typically when too
// few tile parameters were provided.
//
// Within a conjunction, atoms are evaluated in order and evaluation stops at the
// first unsatisfied atom, so guards emitted earlier in a conjunction protect
// later atoms from undefined evaluation (e.g. division by zero).
func (ce ConstraintExpression) IsSatisfiedBy(parameters []int64) (bool, error) {
	if !ce.isSatisfiable {
		return false, nil
	}
	for _, conjoint := range ce.disjointConjoints {
		satisfied := true
		for _, constraint := range conjoint {
			ok, err := constraint.IsSatisfiedBy(parameters)
			if err != nil {
				return false, err
			}
			if !ok {
				satisfied = false
				break
			}
		}
		if satisfied {
			return true, nil
		}
	}
	return len(ce.disjointConjoints) == 0, nil
}

// String renders the DNF, one disjunct per "||"-separated group.
func (ce ConstraintExpression) String() string {
	if !ce.isSatisfiable {
		return "unsatisfiable"
	}
	if ce.IsAlwaysSatisfied() {
		return "always satisfied"
	}
	var groups []string
	for _, conjoint := range ce.disjointConjoints {
		var atoms []string
		for _, constraint := range conjoint {
			atoms = append(atoms, constraint.String())
		}
		groups = append(groups, strings.Join(atoms, " && "))
	}
	return strings.Join(groups, " || ")
}
