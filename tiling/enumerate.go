package tiling

import (
	"fmt"

	"github.com/gomlx/symtile/types/xslices"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/combin"
	"k8s.io/klog/v2"
)

// Tiling is one concrete choice of tile sizes, one per root axis.
type Tiling []int64

func (t Tiling) String() string {
	return fmt.Sprintf("%v", []int64(t))
}

// candidateTileSizes lists the tile sizes worth trying for one axis: every
// power of two up to the axis extent, plus the extent itself, ascending.
func candidateTileSizes(dim int64) []int64 {
	var candidates []int64
	for size := int64(1); size <= dim; size *= 2 {
		candidates = append(candidates, size)
	}
	if xslices.Last(candidates) != dim {
		candidates = append(candidates, dim)
	}
	return candidates
}

// EnumerateGoodTilings builds the cross product of candidateTileSizes over all
// axes and keeps the tilings isValid accepts. The result is deterministic:
// lexicographic in the candidate order, first axis most significant.
func EnumerateGoodTilings(dimSizes []int64, isValid func(Tiling) bool) []Tiling {
	candidates := xslices.Map(dimSizes, candidateTileSizes)
	lens := xslices.Map(candidates, func(c []int64) int { return len(c) })
	var good []Tiling
	for _, choice := range combin.Cartesian(lens) {
		tiling := make(Tiling, len(choice))
		for axis, idx := range choice {
			tiling[axis] = candidates[axis][idx]
		}
		if isValid(tiling) {
			good = append(good, tiling)
		}
	}
	return good
}

// GoodTilings enumerates the tile sizes that satisfy both the analysis
// constraints and the emitter limits. A tiling whose satisfaction cannot be
// decided fails the whole enumeration.
func (a *Analysis) GoodTilings(limits EmitterLimits) ([]Tiling, error) {
	dimSizes := xslices.Map(a.Root().Node().Shape().Dimensions, func(d int) int64 { return int64(d) })
	var firstErr error
	good := EnumerateGoodTilings(dimSizes, func(t Tiling) bool {
		ok, err := a.ParametersSatisfyEmitterConstraints(t, limits)
		if err != nil && firstErr == nil {
			firstErr = errors.WithMessagef(err, "deciding constraints for tiling %s", t)
		}
		return err == nil && ok
	})
	if firstErr != nil {
		return nil, firstErr
	}
	klog.V(1).Infof("enumerated %d good tilings for %s", len(good), a.Root().Node())
	return good, nil
}
