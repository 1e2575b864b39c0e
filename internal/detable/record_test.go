package detable

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AppendRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"empty gene", Record{Gene: "", LogFC: 1, PValue: 0.1, AdjP: 0.2}},
		{"missing fold-change", Record{Gene: "A", LogFC: math.NaN(), PValue: 0.1, AdjP: 0.2}},
		{"missing adjusted p-value", Record{Gene: "A", LogFC: 1, PValue: 0.1, AdjP: math.NaN()}},
		{"zero adjusted p-value", Record{Gene: "A", LogFC: 1, PValue: 0.1, AdjP: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable()
			err := tbl.Append(tt.rec)
			require.Error(t, err)

			var dataErr *DataError
			assert.True(t, errors.As(err, &dataErr))
			assert.Equal(t, 0, tbl.Len())
		})
	}
}

func TestTable_AppendRejectsDuplicateGene(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Append(Record{Gene: "A", LogFC: 1, PValue: 0.1, AdjP: 0.2}))

	err := tbl.Append(Record{Gene: "A", LogFC: 2, PValue: 0.2, AdjP: 0.3})
	require.Error(t, err)

	var dataErr *DataError
	assert.True(t, errors.As(err, &dataErr))
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_SortedByPValueIsStable(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Append(Record{Gene: "C", LogFC: 1, PValue: 0.05, AdjP: 0.1}))
	require.NoError(t, tbl.Append(Record{Gene: "A", LogFC: 1, PValue: 0.01, AdjP: 0.05}))
	require.NoError(t, tbl.Append(Record{Gene: "B", LogFC: 1, PValue: 0.01, AdjP: 0.05}))
	require.NoError(t, tbl.Append(Record{Gene: "D", LogFC: 1, PValue: 0.5, AdjP: 0.6}))

	ranked := tbl.SortedByPValue()

	genes := make([]string, len(ranked))
	for i, r := range ranked {
		genes[i] = r.Gene
	}
	// A and B tie on p-value and keep their input order
	assert.Equal(t, []string{"A", "B", "C", "D"}, genes)

	// The table itself is untouched
	assert.Equal(t, []string{"C", "A", "B", "D"}, tbl.Genes())
}

func TestTable_WithSignificance(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Append(Record{Gene: "HIT", LogFC: 1.0, PValue: 0.0005, AdjP: 0.001}))

	flagged := tbl.WithSignificance(math.Log2(1.5), 0.01)

	require.True(t, flagged.HasSignificance())
	assert.True(t, flagged.Record(0).Significant)

	// The source table is left without flags
	assert.False(t, tbl.HasSignificance())
	assert.False(t, tbl.Record(0).Significant)
}

func TestTable_WithSignificanceBoundariesAreExclusive(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Append(Record{Gene: "AtFC", LogFC: 1.0, PValue: 0.001, AdjP: 0.001}))
	require.NoError(t, tbl.Append(Record{Gene: "AtP", LogFC: 2.0, PValue: 0.01, AdjP: 0.01}))
	require.NoError(t, tbl.Append(Record{Gene: "Past", LogFC: -1.1, PValue: 0.001, AdjP: 0.009}))

	flagged := tbl.WithSignificance(1.0, 0.01)

	assert.False(t, flagged.Record(0).Significant) // |logFC| == cutoff
	assert.False(t, flagged.Record(1).Significant) // adjP == cutoff
	assert.True(t, flagged.Record(2).Significant)  // negative fold-change counts by magnitude
}

func TestTable_RecordsReturnsCopy(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Append(Record{Gene: "A", LogFC: 1, PValue: 0.1, AdjP: 0.2}))

	recs := tbl.Records()
	recs[0].Gene = "MUTATED"

	assert.Equal(t, "A", tbl.Record(0).Gene)
}
