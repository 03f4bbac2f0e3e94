// Package graph defines the computation-graph IR consumed by the tiling analysis.
//
// A Graph is a flat, append-only collection of Nodes, each with an OpType, a
// static output Shape and its input Nodes. Graphs are built with the op
// constructor methods (Add, Reshape, ReduceSum, ...) which validate operands and
// infer the output shape, panicking with an exception on invalid inputs -- the
// usual builder-style contract: errors at graph-building time are programming
// errors, not runtime conditions.
//
// Once built, a Graph and its Nodes are immutable and safe for concurrent reads.
// The tiling analysis never mutates them.
package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/symtile/types/shapes"
)

// Graph is an append-only DAG of operation Nodes.
//
// Create one with New and build nodes with the op constructor methods.
type Graph struct {
	name  string
	nodes []*Node
}

// New creates an empty Graph with the given name (used in diagnostics only).
func New(name string) *Graph {
	return &Graph{name: name}
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// NumNodes returns the number of nodes created so far.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Nodes returns all nodes in creation (def-before-use) order.
// The returned slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node is one operation in a Graph: an OpType, the inferred output Shape and the
// input Nodes. Nodes are immutable once created and are identified within their
// Graph by Id.
type Node struct {
	graph  *Graph
	id     int
	opType OpType
	shape  shapes.Shape
	inputs []*Node

	// name is set for parameters only.
	name string

	// data holds op-specific attributes (axes, window sizes, ...).
	data any
}

// newNode appends a new node to the graph. All op constructors funnel through here.
func (g *Graph) newNode(opType OpType, shape shapes.Shape, data any, inputs ...*Node) *Node {
	for _, input := range inputs {
		if input.graph != g {
			exceptions.Panicf("graph %q: operand %s belongs to a different graph %q", g.name, input, input.graph.name)
		}
	}
	n := &Node{
		graph:  g,
		id:     len(g.nodes),
		opType: opType,
		shape:  shape,
		inputs: inputs,
		data:   data,
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Graph that owns the node.
func (n *Node) Graph() *Graph { return n.graph }

// Id of the node within its Graph; also its position in Graph.Nodes.
func (n *Node) Id() int { return n.id }

// OpType of the node.
func (n *Node) OpType() OpType { return n.opType }

// Shape of the node's output.
func (n *Node) Shape() shapes.Shape { return n.shape }

// Rank is shorthand for Shape().Rank().
func (n *Node) Rank() int { return n.shape.Rank() }

// Inputs returns the operand nodes. The returned slice must not be modified.
func (n *Node) Inputs() []*Node { return n.inputs }

// Name returns the parameter name, or "" for non-parameter nodes.
func (n *Node) Name() string { return n.name }

// IsLeafOp reports whether the node takes no operands (Parameter, Constant, Iota).
func (n *Node) IsLeafOp() bool { return LeafOperations[n.opType] }

// String renders a one-line description of the node, e.g.
// "#3 Add(#1, #2) -> (Float32)[128 64]".
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s", n.id, n.opType)
	if n.name != "" {
		fmt.Fprintf(&sb, "[%q]", n.name)
	}
	sb.WriteString("(")
	for ii, input := range n.inputs {
		if ii > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "#%d", input.id)
	}
	fmt.Fprintf(&sb, ") -> %s", n.shape)
	return sb.String()
}
