package duckdb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuiper/deplot/internal/detable"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTable(t *testing.T, hasSig bool, recs ...detable.Record) *detable.Table {
	t.Helper()
	tbl := detable.NewTable()
	for _, r := range recs {
		require.NoError(t, tbl.Append(r))
	}
	tbl.SetSignificance(hasSig)
	return tbl
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestImportAndLoadRoundTrip(t *testing.T) {
	s := openInMemory(t)

	tbl := newTable(t, true,
		detable.Record{Gene: "TP53", LogFC: 1.2, PValue: 0.001, AdjP: 0.01, Significant: true},
		detable.Record{Gene: "MDM2", LogFC: -2.4, PValue: 0.0005, AdjP: 0.008, Significant: true},
		detable.Record{Gene: "ACTB", LogFC: 0.1, PValue: 0.6, AdjP: 0.8},
	)
	require.NoError(t, s.ImportTable("p53_study", tbl))

	loaded, err := s.LoadTable("p53_study")
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())
	assert.True(t, loaded.HasSignificance())

	// Records come back in gene-ascending order.
	assert.Equal(t, []string{"ACTB", "MDM2", "TP53"}, loaded.Genes())

	recs := loaded.Records()
	assert.Equal(t, -2.4, recs[1].LogFC)
	assert.Equal(t, 0.0005, recs[1].PValue)
	assert.Equal(t, 0.008, recs[1].AdjP)
	assert.True(t, recs[1].Significant)
	assert.False(t, recs[0].Significant)
}

func TestLoadMissingDataset(t *testing.T) {
	s := openInMemory(t)

	_, err := s.LoadTable("nope")
	require.Error(t, err)

	var dataErr *detable.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Contains(t, err.Error(), "nope")
}

func TestImportReplacesExisting(t *testing.T) {
	s := openInMemory(t)

	first := newTable(t, false,
		detable.Record{Gene: "A", LogFC: 1, PValue: 0.01, AdjP: 0.02},
		detable.Record{Gene: "B", LogFC: 2, PValue: 0.02, AdjP: 0.03},
		detable.Record{Gene: "C", LogFC: 3, PValue: 0.03, AdjP: 0.04},
	)
	require.NoError(t, s.ImportTable("exp1", first))

	second := newTable(t, false,
		detable.Record{Gene: "D", LogFC: -1, PValue: 0.05, AdjP: 0.06},
	)
	require.NoError(t, s.ImportTable("exp1", second))

	loaded, err := s.LoadTable("exp1")
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, loaded.Genes())

	n, err := s.Count("exp1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	datasets, err := s.Datasets()
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, int64(1), datasets[0].Genes)
}

func TestLoadZeroesFlagsWithoutSignificance(t *testing.T) {
	s := openInMemory(t)

	// Flags set on individual records but the table itself does not
	// carry a significance column.
	tbl := newTable(t, false,
		detable.Record{Gene: "A", LogFC: 3, PValue: 0.001, AdjP: 0.002, Significant: true},
		detable.Record{Gene: "B", LogFC: -3, PValue: 0.002, AdjP: 0.003, Significant: true},
	)
	require.NoError(t, s.ImportTable("unflagged", tbl))

	loaded, err := s.LoadTable("unflagged")
	require.NoError(t, err)
	assert.False(t, loaded.HasSignificance())
	for _, r := range loaded.Records() {
		assert.False(t, r.Significant, r.Gene)
	}
}

func TestDatasetsListing(t *testing.T) {
	s := openInMemory(t)

	older := newTable(t, false,
		detable.Record{Gene: "A", LogFC: 1, PValue: 0.01, AdjP: 0.02},
		detable.Record{Gene: "B", LogFC: 2, PValue: 0.02, AdjP: 0.03},
	)
	require.NoError(t, s.ImportTable("older", older))

	newer := newTable(t, true,
		detable.Record{Gene: "C", LogFC: 3, PValue: 0.03, AdjP: 0.04, Significant: true},
	)
	require.NoError(t, s.ImportTable("newer", newer))

	datasets, err := s.Datasets()
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	assert.Equal(t, "newer", datasets[0].Name)
	assert.Equal(t, int64(1), datasets[0].Genes)
	assert.True(t, datasets[0].HasSignificance)
	assert.WithinDuration(t, time.Now().UTC(), datasets[0].ImportedAt, time.Minute)

	assert.Equal(t, "older", datasets[1].Name)
	assert.Equal(t, int64(2), datasets[1].Genes)
	assert.False(t, datasets[1].HasSignificance)
}

func TestCount(t *testing.T) {
	s := openInMemory(t)

	n, err := s.Count("missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	tbl := newTable(t, false,
		detable.Record{Gene: "A", LogFC: 1, PValue: 0.01, AdjP: 0.02},
		detable.Record{Gene: "B", LogFC: 2, PValue: 0.02, AdjP: 0.03},
	)
	require.NoError(t, s.ImportTable("exp", tbl))

	n, err = s.Count("exp")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteDataset(t *testing.T) {
	s := openInMemory(t)

	tbl := newTable(t, false,
		detable.Record{Gene: "A", LogFC: 1, PValue: 0.01, AdjP: 0.02},
	)
	require.NoError(t, s.ImportTable("exp", tbl))
	require.NoError(t, s.DeleteDataset("exp"))

	_, err := s.LoadTable("exp")
	var dataErr *detable.DataError
	require.True(t, errors.As(err, &dataErr))

	// Deleting again is a no-op.
	require.NoError(t, s.DeleteDataset("exp"))
}

func TestImportRejectsBadInput(t *testing.T) {
	s := openInMemory(t)

	err := s.ImportTable("exp", nil)
	var dataErr *detable.DataError
	require.True(t, errors.As(err, &dataErr))

	err = s.ImportTable("", detable.NewTable())
	var cfgErr *detable.ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestImportEmptyTable(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.ImportTable("empty", detable.NewTable()))

	loaded, err := s.LoadTable("empty")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())

	datasets, err := s.Datasets()
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, int64(0), datasets[0].Genes)
}

func TestOnDiskPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats", "deplot.duckdb")

	s, err := Open(path)
	require.NoError(t, err)

	tbl := newTable(t, true,
		detable.Record{Gene: "KRAS", LogFC: 2.5, PValue: 1e-08, AdjP: 1e-06, Significant: true},
	)
	require.NoError(t, s.ImportTable("persisted", tbl))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	loaded, err := s.LoadTable("persisted")
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "KRAS", loaded.Record(0).Gene)
	assert.True(t, loaded.Record(0).Significant)
}
