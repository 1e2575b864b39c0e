package volcano

import (
	"math"

	"github.com/mkuiper/deplot/internal/detable"
)

// Range is a closed interval on a plot axis.
type Range struct {
	Min, Max float64
}

// EstimateRanges computes volcano-plot axis ranges for a table. The x range
// is symmetric about zero and covers the largest absolute fold-change; the y
// range runs from zero to the largest -log10 adjusted p-value. Optional
// floors widen the ranges to at least [-|fcFloor|, |fcFloor|] and
// [0, logPFloor]. Nil floors contribute nothing, and an empty table leaves
// only the floors, so both absent yields degenerate zero-width ranges.
func EstimateRanges(tbl *detable.Table, fcFloor, logPFloor *float64) (x, y Range) {
	var xm, ym float64
	if fcFloor != nil {
		xm = math.Abs(*fcFloor)
	}
	if logPFloor != nil {
		ym = *logPFloor
	}

	if tbl != nil {
		for i := 0; i < tbl.Len(); i++ {
			r := tbl.Record(i)
			if v := math.Abs(r.LogFC); v > xm {
				xm = v
			}
			if v := -math.Log10(r.AdjP); v > ym {
				ym = v
			}
		}
	}

	return Range{Min: -xm, Max: xm}, Range{Min: 0, Max: ym}
}
