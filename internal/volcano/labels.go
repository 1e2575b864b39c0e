package volcano

import (
	"math"
	"sort"

	"github.com/mkuiper/deplot/internal/detable"
)

// labelPoint is a gene selected for labeling, anchored at its display
// position.
type labelPoint struct {
	gene string
	x, y float64
}

// selectLabels picks the records to label under the configured mode, in
// table order.
func selectLabels(tbl *detable.Table, cfg *Config) []labelPoint {
	var out []labelPoint
	for i := 0; i < tbl.Len(); i++ {
		r := tbl.Record(i)
		if !labelWanted(r.LogFC, r.AdjP, cfg) {
			continue
		}
		out = append(out, labelPoint{gene: r.Gene, x: r.LogFC, y: -math.Log10(r.AdjP)})
	}
	return out
}

// labelWanted applies the label selection rule to one record.
func labelWanted(logFC, adjP float64, cfg *Config) bool {
	switch cfg.LabelMode {
	case LabelThreshold:
		if -math.Log10(adjP) <= cfg.LabelYCut {
			return false
		}
		switch cfg.LabelDirection {
		case DirectionLower:
			return logFC < cfg.LabelXCut
		case DirectionUpper:
			return logFC > cfg.LabelXCut
		default:
			return math.Abs(logFC) > cfg.LabelXCut
		}
	case LabelEllipse:
		fc := logFC / cfg.LabelXCut
		lp := math.Log10(adjP) / cfg.LabelYCut
		return fc*fc+lp*lp > 1
	}
	return false
}

// repelLabels nudges overlapping label anchors upward until consecutive
// labels sit at least minGap apart in y data units. The nudge is
// deterministic and preserves the vertical ordering of the anchors.
func repelLabels(points []labelPoint, minGap float64) {
	if len(points) < 2 || minGap <= 0 {
		return
	}

	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return points[order[a]].y < points[order[b]].y
	})

	for k := 1; k < len(order); k++ {
		prev, cur := order[k-1], order[k]
		if points[cur].y-points[prev].y < minGap {
			points[cur].y = points[prev].y + minGap
		}
	}
}
