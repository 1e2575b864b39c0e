// Package detable models differential-expression results tables: one record
// per gene carrying a log2 fold-change, a raw p-value and a multiple-testing
// adjusted p-value.
package detable

import (
	"fmt"
	"math"
	"sort"
)

// Record is a single gene's differential-expression statistics.
type Record struct {
	Gene   string
	LogFC  float64 // log2 fold-change
	PValue float64 // raw p-value
	AdjP   float64 // adjusted p-value

	// Significant reports whether the gene passed the significance cutoffs.
	// Only meaningful when the owning table has significance flags.
	Significant bool
}

// Table is an ordered collection of records keyed by gene identifier.
type Table struct {
	records []Record
	index   map[string]int
	hasSig  bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Append adds a record to the table. Records with an empty or duplicate gene
// identifier, a missing (NaN) statistic, or a non-positive adjusted p-value
// are rejected.
func (t *Table) Append(r Record) error {
	if r.Gene == "" {
		return &DataError{Msg: "record has empty gene identifier"}
	}
	if _, ok := t.index[r.Gene]; ok {
		return &DataError{Msg: fmt.Sprintf("duplicate gene identifier %q", r.Gene)}
	}
	if math.IsNaN(r.LogFC) || math.IsNaN(r.AdjP) || math.IsNaN(r.PValue) {
		return &DataError{Msg: fmt.Sprintf("gene %q has a missing statistic", r.Gene)}
	}
	if r.AdjP <= 0 {
		return &DataError{Msg: fmt.Sprintf("gene %q has non-positive adjusted p-value %g", r.Gene, r.AdjP)}
	}
	t.index[r.Gene] = len(t.records)
	t.records = append(t.records, r)
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Record returns the record at index i in input order.
func (t *Table) Record(i int) Record {
	return t.records[i]
}

// Records returns a copy of all records in input order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Genes returns all gene identifiers in input order.
func (t *Table) Genes() []string {
	out := make([]string, len(t.records))
	for i, r := range t.records {
		out[i] = r.Gene
	}
	return out
}

// SortedByPValue returns a copy of the records sorted by ascending raw
// p-value. The sort is stable: ties keep their input order.
func (t *Table) SortedByPValue() []Record {
	out := t.Records()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PValue < out[j].PValue
	})
	return out
}

// HasSignificance reports whether the records carry meaningful significance
// flags, either parsed from the input or derived from cutoffs.
func (t *Table) HasSignificance() bool {
	return t.hasSig
}

// SetSignificance declares whether the records carry meaningful significance
// flags. Used when restoring a table from storage.
func (t *Table) SetSignificance(has bool) {
	t.hasSig = has
}

// WithSignificance returns a copy of the table with per-record significance
// flags derived from the cutoffs: |LogFC| > fcCut and AdjP < pCut. The
// receiver is left unchanged.
func (t *Table) WithSignificance(fcCut, pCut float64) *Table {
	out := &Table{
		records: make([]Record, len(t.records)),
		index:   make(map[string]int, len(t.records)),
		hasSig:  true,
	}
	for i, r := range t.records {
		r.Significant = math.Abs(r.LogFC) > fcCut && r.AdjP < pCut
		out.records[i] = r
		out.index[r.Gene] = i
	}
	return out
}
