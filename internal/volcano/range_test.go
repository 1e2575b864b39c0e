package volcano

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuiper/deplot/internal/detable"
)

func testTable(t *testing.T, recs ...detable.Record) *detable.Table {
	t.Helper()
	tbl := detable.NewTable()
	for _, r := range recs {
		require.NoError(t, tbl.Append(r))
	}
	return tbl
}

func TestEstimateRanges_DataOnly(t *testing.T) {
	tbl := testTable(t,
		detable.Record{Gene: "A", LogFC: -2.5, PValue: 0.01, AdjP: 0.1},
		detable.Record{Gene: "B", LogFC: 1.0, PValue: 0.001, AdjP: 1e-4},
	)

	x, y := EstimateRanges(tbl, nil, nil)

	assert.Equal(t, -2.5, x.Min)
	assert.Equal(t, 2.5, x.Max)
	assert.Equal(t, 0.0, y.Min)
	assert.InDelta(t, 4.0, y.Max, 1e-9)
}

func TestEstimateRanges_FloorsOnly(t *testing.T) {
	fc := 1.5
	lp := 2.0

	x, y := EstimateRanges(detable.NewTable(), &fc, &lp)

	assert.Equal(t, -1.5, x.Min)
	assert.Equal(t, 1.5, x.Max)
	assert.Equal(t, 0.0, y.Min)
	assert.Equal(t, 2.0, y.Max)
}

func TestEstimateRanges_FloorWinsWhenWider(t *testing.T) {
	tbl := testTable(t,
		detable.Record{Gene: "A", LogFC: 0.5, PValue: 0.1, AdjP: 0.5},
	)
	fc := 2.0
	lp := 3.0

	x, y := EstimateRanges(tbl, &fc, &lp)

	assert.Equal(t, 2.0, x.Max)
	assert.Equal(t, 3.0, y.Max)
}

func TestEstimateRanges_DataWinsWhenWider(t *testing.T) {
	tbl := testTable(t,
		detable.Record{Gene: "A", LogFC: -4.0, PValue: 0.001, AdjP: 1e-5},
	)
	fc := 1.0
	lp := 2.0

	x, y := EstimateRanges(tbl, &fc, &lp)

	assert.Equal(t, -4.0, x.Min)
	assert.Equal(t, 4.0, x.Max)
	assert.InDelta(t, 5.0, y.Max, 1e-9)
}

func TestEstimateRanges_NegativeFloorUsesMagnitude(t *testing.T) {
	fc := -3.0

	x, _ := EstimateRanges(detable.NewTable(), &fc, nil)

	assert.Equal(t, -3.0, x.Min)
	assert.Equal(t, 3.0, x.Max)
}

func TestEstimateRanges_EmptyTableNoFloors(t *testing.T) {
	x, y := EstimateRanges(detable.NewTable(), nil, nil)

	assert.Zero(t, x.Max-x.Min)
	assert.Zero(t, y.Max-y.Min)
}
