package tiling

import (
	"fmt"

	"github.com/gomlx/symtile/graph"
)

// SymbolicTiledNode pairs one graph.Node with the SymbolicTile describing how it
// is accessed along one path from the analysis root. A node reached through
// structurally different paths -- and therefore with different derived tiles --
// appears once per distinct tile: the code generator must honor each access
// pattern separately.
//
// Instances are created during analysis construction and immutable afterwards.
type SymbolicTiledNode struct {
	node *graph.Node
	tile SymbolicTile

	// operands are the tiled nodes feeding this one, parallel to node.Inputs().
	// Empty for subgraph leaves.
	operands []*SymbolicTiledNode
}

// Node returns the underlying graph node.
func (tn *SymbolicTiledNode) Node() *graph.Node { return tn.node }

// Tile returns the symbolic tile of this node along this access path.
func (tn *SymbolicTiledNode) Tile() SymbolicTile { return tn.tile }

// Operands returns the tiled operand nodes. The returned slice must not be modified.
func (tn *SymbolicTiledNode) Operands() []*SymbolicTiledNode { return tn.operands }

func (tn *SymbolicTiledNode) String() string {
	return fmt.Sprintf("%s:\n\t%s", tn.node, tn.tile)
}
