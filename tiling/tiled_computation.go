package tiling

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/gomlx/symtile/affine"
	"github.com/gomlx/symtile/graph"
	"github.com/pkg/errors"
)

// TiledNode is a SymbolicTiledNode instantiated with concrete tile sizes: its
// sizes and strides are plain numbers, only the offsets still depend on the
// tile coordinates.
type TiledNode struct {
	node        *graph.Node
	tileSizes   []int64
	tileStrides []int64

	// offsets is the symbolic map "(tile coords)[tile sizes] -> offsets";
	// tiling holds the concrete tile sizes bound to its symbols.
	offsets *affine.Map
	tiling  Tiling

	// offsetsMap is offsets with the tile sizes substituted in. Nil unless the
	// computation was built with computeAllOffsetMaps; TileOffsets works either
	// way, but only the precomputed form avoids touching the affine.Context.
	offsetsMap *affine.Map

	operands []*TiledNode
}

// Node returns the underlying graph node.
func (tn *TiledNode) Node() *graph.Node { return tn.node }

// TileSizes returns the concrete per-axis tile sizes. Must not be modified.
func (tn *TiledNode) TileSizes() []int64 { return tn.tileSizes }

// TileStrides returns the concrete per-axis element strides. Must not be modified.
func (tn *TiledNode) TileStrides() []int64 { return tn.tileStrides }

// Operands returns the tiled operand nodes. Must not be modified.
func (tn *TiledNode) Operands() []*TiledNode { return tn.operands }

// OffsetsMap returns the offsets map "(tile coords) -> offsets" with tile sizes
// already substituted, or nil when the computation was built without
// computeAllOffsetMaps.
func (tn *TiledNode) OffsetsMap() *affine.Map { return tn.offsetsMap }

// TileOffsets evaluates the per-axis start offsets of the tile at the given
// grid coordinates.
func (tn *TiledNode) TileOffsets(tileCoords []int64) ([]int64, error) {
	if len(tileCoords) != tn.offsets.NumDims() {
		return nil, errors.Errorf("got %d tile coordinates, %s wants %d",
			len(tileCoords), tn.node, tn.offsets.NumDims())
	}
	if tn.offsetsMap != nil {
		return tn.offsetsMap.Evaluate(tileCoords, nil)
	}
	return tn.offsets.Evaluate(tileCoords, tn.tiling)
}

func (tn *TiledNode) String() string {
	return fmt.Sprintf("%s, tile sizes %v, strides %v, offsets %s",
		tn.node, tn.tileSizes, tn.tileStrides, tn.offsets)
}

// TiledComputation is a subgraph instantiated for one concrete tiling: every
// node carries numeric tile sizes and strides, and the root's grid tells how
// many tiles cover the output.
type TiledComputation struct {
	// nodes in def-before-use order, root last, after deduplication.
	nodes []*TiledNode

	tiling   Tiling
	gridDims []int64
	numTiles int64
}

// Nodes returns all tiled nodes in def-before-use order, the root last. The
// returned slice must not be modified.
func (tc *TiledComputation) Nodes() []*TiledNode { return tc.nodes }

// Root returns the tiled root node.
func (tc *TiledComputation) Root() *TiledNode { return tc.nodes[len(tc.nodes)-1] }

// TileSizes returns the root tile sizes this computation was built with.
func (tc *TiledComputation) TileSizes() Tiling { return tc.tiling }

// GridDims returns the number of tiles along each root axis.
func (tc *TiledComputation) GridDims() []int64 { return tc.gridDims }

// NumTiles is the total number of tiles covering the root output.
func (tc *TiledComputation) NumTiles() int64 { return tc.numTiles }

func (tc *TiledComputation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TiledComputation with tile sizes %v, grid %v (%d tiles):\n",
		tc.tiling, tc.gridDims, tc.numTiles)
	for _, tn := range tc.nodes {
		fmt.Fprintf(&sb, "  %s\n", tn)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ComputeTiledNodes instantiates the analysis for one concrete tiling. Tiled
// nodes that end up identical (same node, tile sizes, strides and offsets) are
// merged. The tiling must have exactly one size per root axis, each at least 1;
// a size above the axis extent yields a single padded tile along that axis. It
// does not need to satisfy the analysis constraints, that check is the caller's
// call to make.
//
// With computeAllOffsetMaps every TiledNode gets its offsets map substituted
// eagerly, which writes to the shared affine.Context; afterwards TileOffsets is
// safe to call concurrently with anything. Without it, construction leaves the
// Context untouched and TileOffsets evaluates the symbolic form on the fly.
func (a *Analysis) ComputeTiledNodes(tiling Tiling, computeAllOffsetMaps bool) (*TiledComputation, error) {
	numParameters := a.NumTileParameters()
	if len(tiling) != numParameters {
		return nil, errors.Errorf("got %d tile sizes, analysis has %d tile axes", len(tiling), numParameters)
	}
	tiling = slices.Clone(tiling)
	rootDims := a.Root().Node().Shape().Dimensions
	gridDims := make([]int64, numParameters)
	numTiles := int64(1)
	for axis, size := range tiling {
		extent := int64(rootDims[axis])
		if size < 1 {
			return nil, errors.Errorf("tile size for axis %d must be at least 1, got %d", axis, size)
		}
		gridDims[axis] = (extent + size - 1) / size
		numTiles *= gridDims[axis]
	}

	// Dedup by content hash, with a full comparison on collision.
	byHash := make(map[uint64][]*TiledNode)
	canonical := make(map[*SymbolicTiledNode]*TiledNode, len(a.tiledNodes))
	substituted := make(map[string]*affine.Map)
	var nodes []*TiledNode

	for _, stn := range a.tiledNodes {
		tileSizes, err := stn.tile.Sizes().Evaluate(nil, tiling)
		if err != nil {
			return nil, errors.WithMessagef(err, "evaluating tile sizes of %s", stn.node)
		}
		tileStrides, err := stn.tile.Strides().Evaluate(nil, tiling)
		if err != nil {
			return nil, errors.WithMessagef(err, "evaluating tile strides of %s", stn.node)
		}
		offsets := stn.tile.Offsets()
		hash := tiledNodeHash(stn.node, tileSizes, tileStrides, offsets)
		var tn *TiledNode
		for _, existing := range byHash[hash] {
			if existing.node == stn.node &&
				slices.Equal(existing.tileSizes, tileSizes) &&
				slices.Equal(existing.tileStrides, tileStrides) &&
				existing.offsets.Equal(offsets) {
				tn = existing
				break
			}
		}
		if tn == nil {
			tn = &TiledNode{
				node:        stn.node,
				tileSizes:   tileSizes,
				tileStrides: tileStrides,
				offsets:     offsets,
				tiling:      tiling,
				operands:    make([]*TiledNode, len(stn.operands)),
			}
			for i, operand := range stn.operands {
				tn.operands[i] = canonical[operand]
			}
			if computeAllOffsetMaps {
				key := offsets.String()
				offsetsMap, found := substituted[key]
				if !found {
					offsetsMap = offsets.ReplaceSymbols(tiling)
					substituted[key] = offsetsMap
				}
				tn.offsetsMap = offsetsMap
			}
			byHash[hash] = append(byHash[hash], tn)
			nodes = append(nodes, tn)
		}
		canonical[stn] = tn
	}

	return &TiledComputation{
		nodes:    nodes,
		tiling:   tiling,
		gridDims: gridDims,
		numTiles: numTiles,
	}, nil
}

func tiledNodeHash(node *graph.Node, sizes, strides []int64, offsets *affine.Map) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "#%d|%v|%v|%s", node.Id(), sizes, strides, offsets)
	return h.Sum64()
}
