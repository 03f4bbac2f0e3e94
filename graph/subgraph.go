package graph

import (
	"github.com/gomlx/exceptions"
)

// Subgraph is a closed region of a Graph handed to the tiling analysis: a single
// root plus an explicit set of leaves where traversal stops. Leaves are treated
// like parameters -- whatever operation produces them is outside the region.
//
// Nodes without operands (Parameter, Constant, Iota) are implicit leaves and
// don't need to be listed.
type Subgraph struct {
	root   *Node
	leaves map[*Node]bool
}

// NewSubgraph creates a Subgraph rooted at root with the given explicit leaves.
// It panics if a leaf does not belong to the same graph as the root.
func NewSubgraph(root *Node, leaves ...*Node) *Subgraph {
	sub := &Subgraph{root: root, leaves: make(map[*Node]bool, len(leaves))}
	for _, leaf := range leaves {
		if leaf.Graph() != root.Graph() {
			exceptions.Panicf("subgraph leaf %s belongs to a different graph than root %s", leaf, root)
		}
		sub.leaves[leaf] = true
	}
	return sub
}

// WholeGraphAt returns the subgraph covering everything reachable from root.
func WholeGraphAt(root *Node) *Subgraph {
	return NewSubgraph(root)
}

// Root of the subgraph.
func (sub *Subgraph) Root() *Node { return sub.root }

// IsLeaf reports whether node is a boundary of the subgraph: either an explicit
// leaf or an operation without operands.
func (sub *Subgraph) IsLeaf(node *Node) bool {
	return sub.leaves[node] || node.IsLeafOp()
}

// Nodes returns the nodes reachable from the root without crossing leaves, in
// def-before-use order (the root last). Leaves themselves are included.
func (sub *Subgraph) Nodes() []*Node {
	var ordered []*Node
	visited := make(map[*Node]bool)
	var visit func(node *Node)
	visit = func(node *Node) {
		if visited[node] {
			return
		}
		visited[node] = true
		if !sub.IsLeaf(node) {
			for _, input := range node.Inputs() {
				visit(input)
			}
		}
		ordered = append(ordered, node)
	}
	visit(sub.root)
	return ordered
}
