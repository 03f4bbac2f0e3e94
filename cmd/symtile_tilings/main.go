// symtile_tilings demonstrates the symbolic tiling analysis on a fused
// softmax-like subgraph and reports which tile sizes are worth emitting.
//
// Usage:
//
//	symtile_tilings [-rows=1024] [-cols=512] [-max_tile_elements=16384] [-constraints]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/symtile/affine"
	"github.com/gomlx/symtile/graph"
	"github.com/gomlx/symtile/tiling"
	"github.com/gomlx/symtile/types/shapes"
	"github.com/gomlx/symtile/types/xslices"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagRows = flag.Int("rows", 1024, "Number of rows of the softmax input.")
	flagCols = flag.Int("cols", 512, "Number of columns of the softmax input; the reduction runs over columns.")
	flagMaxTileElements = flag.Int64("max_tile_elements", 16*1024,
		"Largest number of elements any single tile may hold, the emitter-side bound on tilings.")
	flagConstraints = flag.Bool("constraints", false, "Also print the symbolic tiles and aggregated constraints.")
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
)

func newTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == 0:
				return headerRowStyle
			case row%2 == 0:
				return oddRowStyle
			default:
				return evenRowStyle
			}
		}).
		Headers(headers...)
}

// softmaxGraph builds exp(x) / broadcast(reduce_sum(exp(x))), the usual fused
// softmax body (numerical stabilization elided).
func softmaxGraph(rows, cols int) *graph.Node {
	g := graph.New("softmax")
	x := g.Parameter("x", shapes.Make(dtypes.Float32, rows, cols))
	exp := g.Exp(x)
	total := g.ReduceSum(exp, 1)
	denominator := g.BroadcastInDim(total, x.Shape(), []int{0})
	return g.Div(exp, denominator)
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagRows < 1 || *flagCols < 1 {
		klog.Errorf("-rows and -cols must be positive, got %d x %d", *flagRows, *flagCols)
		os.Exit(1)
	}

	root := softmaxGraph(*flagRows, *flagCols)
	analysis := must.M1(tiling.AnalyzeGraph(root, affine.NewContext()))

	fmt.Println(titleStyle.Render(fmt.Sprintf("Symbolic tiling of softmax over %s",
		root.Shape())))
	if *flagConstraints {
		fmt.Println(analysis)
		fmt.Println()
	}

	limits := tiling.EmitterLimits{MaxTileElements: *flagMaxTileElements}
	good := must.M1(analysis.GoodTilings(limits))
	if len(good) == 0 {
		fmt.Println("No tiling satisfies the constraints within the emitter limits.")
		return
	}

	dtypeBytes := uint64(dtypes.Float32.Memory())
	table := newTable("Tile Sizes", "Grid", "Tiles", "Largest Tile")
	for _, t := range good {
		computation := must.M1(analysis.ComputeTiledNodes(t, false))
		largest := int64(0)
		for _, tn := range computation.Nodes() {
			largest = max(largest, xslices.Product(tn.TileSizes()))
		}
		table.Row(
			t.String(),
			fmt.Sprintf("%v", computation.GridDims()),
			humanize.Comma(computation.NumTiles()),
			humanize.Bytes(uint64(largest)*dtypeBytes),
		)
	}
	fmt.Println(table.Render())
	fmt.Printf("%d good tiling(s) within %s elements per tile.\n", len(good),
		humanize.Comma(*flagMaxTileElements))
}
