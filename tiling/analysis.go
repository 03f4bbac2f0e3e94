package tiling

import (
	"fmt"
	"strings"

	"github.com/gomlx/symtile/affine"
	"github.com/gomlx/symtile/graph"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Decision reports why a subgraph cannot be symbolically tiled. It identifies
// the first node the analysis could not handle, so callers can decide whether
// to re-cluster, fall back to an unfused emitter, or surface the diagnostic.
type Decision struct {
	// Node is the graph node the analysis rejected, or nil when the rejection
	// is not attributable to a single node.
	Node *graph.Node

	// Cause is a human-readable explanation of the rejection.
	Cause string
}

func (d *Decision) Error() string {
	if d.Node == nil {
		return d.Cause
	}
	return fmt.Sprintf("cannot tile %s: %s", d.Node, d.Cause)
}

// Analysis holds the result of symbolically tiling a subgraph: one
// SymbolicTiledNode per (node, access path) pair, and the aggregate constraint
// the tile-size parameters must satisfy.
//
// An Analysis is immutable once built and safe for concurrent reads, with the
// caveat documented in the package comment: ComputeTiledNodes writes to the
// shared affine.Context and must not race with other uses of the same Context.
type Analysis struct {
	ctx *affine.Context

	// tiledNodes in def-before-use order: operands precede consumers, the root
	// is last.
	tiledNodes []*SymbolicTiledNode

	constraints ConstraintExpression

	// tileSizeMaps are the distinct size maps appearing among tiledNodes, used
	// to bound the footprint of every intermediate tile.
	tileSizeMaps []*affine.Map
}

// EmitterLimits bounds tilings by what the target code generator can handle,
// beyond what the symbolic constraints require.
type EmitterLimits struct {
	// MaxTileElements is the largest number of elements any single tile, of
	// any node in the subgraph, may hold.
	MaxTileElements int64
}

// DefaultEmitterLimits is a conservative bound suitable for most targets.
var DefaultEmitterLimits = EmitterLimits{MaxTileElements: 1 << 20}

// AnalyzeGraph tiles the whole graph hanging off root: every leaf operation
// reachable from root becomes an analysis leaf.
func AnalyzeGraph(root *graph.Node, ctx *affine.Context) (*Analysis, error) {
	return AnalyzeSubgraph(graph.WholeGraphAt(root), ctx)
}

// AnalyzeSubgraph propagates the root's parametric tile backward through the
// subgraph and aggregates per-node constraints. All affine expressions are
// interned in ctx, which must outlive the returned Analysis.
//
// It returns a *Decision error when some node cannot be expressed as an affine
// tile mapping, or when the aggregate constraints are unsatisfiable for every
// choice of tile sizes.
func AnalyzeSubgraph(sub *graph.Subgraph, ctx *affine.Context) (*Analysis, error) {
	root := sub.Root()
	b := &analysisBuilder{
		sub:         sub,
		ctx:         ctx,
		memo:        make(map[tiledNodeKey]*SymbolicTiledNode),
		constraints: AlwaysSatisfied(),
	}
	if _, err := b.visit(root, rootTile(ctx, root.Rank())); err != nil {
		return nil, err
	}
	if !b.constraints.IsSatisfiable() {
		return nil, &Decision{Node: root, Cause: "conflicting constraints: no tile sizes satisfy all operations"}
	}
	a := &Analysis{
		ctx:          ctx,
		tiledNodes:   b.ordered,
		constraints:  b.constraints,
		tileSizeMaps: collectSizeMaps(b.ordered),
	}
	klog.V(1).Infof("tiling analysis of %s: %d tiled nodes, %d distinct size maps, constraints: %s",
		root, len(a.tiledNodes), len(a.tileSizeMaps), a.constraints)
	return a, nil
}

// tiledNodeKey memoizes construction per (node, tile mapping): the same node
// reached twice with the same mapping shares one SymbolicTiledNode, while
// different mappings (e.g. through a transpose on one path only) stay separate.
type tiledNodeKey struct {
	node    *graph.Node
	mapping string
}

type analysisBuilder struct {
	sub         *graph.Subgraph
	ctx         *affine.Context
	memo        map[tiledNodeKey]*SymbolicTiledNode
	ordered     []*SymbolicTiledNode
	constraints ConstraintExpression
}

func (b *analysisBuilder) visit(node *graph.Node, tile SymbolicTile) (*SymbolicTiledNode, error) {
	key := tiledNodeKey{node: node, mapping: tile.mappingKey()}
	if existing, found := b.memo[key]; found {
		return existing, nil
	}

	b.constraints = b.constraints.And(tile.Constraint())

	tiled := &SymbolicTiledNode{node: node, tile: tile}
	if !b.sub.IsLeaf(node) {
		operandTiles, err := deriveOperandTiles(node, tile)
		if err != nil {
			return nil, &Decision{Node: node, Cause: err.Error()}
		}
		inputs := node.Inputs()
		tiled.operands = make([]*SymbolicTiledNode, len(inputs))
		for i, input := range inputs {
			operand, err := b.visit(input, operandTiles[i])
			if err != nil {
				return nil, err
			}
			tiled.operands[i] = operand
		}
	}

	b.memo[key] = tiled
	b.ordered = append(b.ordered, tiled)
	return tiled, nil
}

func collectSizeMaps(tiledNodes []*SymbolicTiledNode) []*affine.Map {
	var maps []*affine.Map
	for _, tn := range tiledNodes {
		sizes := tn.tile.Sizes()
		duplicate := false
		for _, seen := range maps {
			if seen.Equal(sizes) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			maps = append(maps, sizes)
		}
	}
	return maps
}

// Root returns the tiled root of the analyzed subgraph.
func (a *Analysis) Root() *SymbolicTiledNode {
	return a.tiledNodes[len(a.tiledNodes)-1]
}

// NumTileParameters is the number of tile-size parameters, one per root axis.
func (a *Analysis) NumTileParameters() int {
	return a.Root().Node().Rank()
}

// SymbolicTiledNodes returns every tiled node in def-before-use order, the root
// last. The returned slice must not be modified.
func (a *Analysis) SymbolicTiledNodes() []*SymbolicTiledNode {
	return a.tiledNodes
}

// Constraints over the tile-size parameters, aggregated over all tiled nodes.
func (a *Analysis) Constraints() ConstraintExpression {
	return a.constraints
}

// Context in which all affine expressions of this analysis are interned.
func (a *Analysis) Context() *affine.Context {
	return a.ctx
}

func (a *Analysis) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analysis of %s: %d tiled node(s)\n", a.Root().Node(), len(a.tiledNodes))
	for _, tn := range a.tiledNodes {
		fmt.Fprintf(&sb, "  %s\n", tn)
	}
	fmt.Fprintf(&sb, "constraints: %s", a.constraints)
	return sb.String()
}

// ParametersSatisfyConstraints reports whether the concrete tile sizes satisfy
// every constraint of the analysis. An error means the question could not be
// decided: too few parameters, or a constraint whose value is undefined for
// these parameters. Extra trailing parameters are ignored.
func (a *Analysis) ParametersSatisfyConstraints(tiling Tiling) (bool, error) {
	if len(tiling) < a.NumTileParameters() {
		return false, errors.Errorf("got %d tile-size parameters, analysis has %d tile axes",
			len(tiling), a.NumTileParameters())
	}
	for i, size := range tiling {
		if size < 1 {
			return false, errors.Errorf("tile size for axis %d must be at least 1, got %d", i, size)
		}
	}
	return a.constraints.IsSatisfiedBy(tiling)
}

// ParametersSatisfyEmitterConstraints extends ParametersSatisfyConstraints with
// target-backend bounds: additionally, no node's tile may exceed
// limits.MaxTileElements elements.
func (a *Analysis) ParametersSatisfyEmitterConstraints(tiling Tiling, limits EmitterLimits) (bool, error) {
	ok, err := a.ParametersSatisfyConstraints(tiling)
	if !ok || err != nil {
		return ok, err
	}
	for _, sizeMap := range a.tileSizeMaps {
		sizes, err := sizeMap.Evaluate(nil, tiling)
		if err != nil {
			return false, errors.WithMessagef(err, "evaluating tile sizes %s", sizeMap)
		}
		elements := int64(1)
		for _, size := range sizes {
			elements *= size
		}
		if elements > limits.MaxTileElements {
			return false, nil
		}
	}
	return true, nil
}
