package detable

import (
	"fmt"
	"strings"
)

// ColumnMap names the table column serving each record field. Empty entries
// resolve against the usual names emitted by DE pipelines (limma, DESeq2,
// edgeR). Resolution happens once, when a reader is constructed.
type ColumnMap struct {
	Gene        string
	LogFC       string
	PValue      string
	AdjP        string
	Significant string // optional precomputed significance flag column
}

// Alias sets for unnamed roles, in priority order, matched case-insensitively.
var (
	geneAliases   = []string{"gene", "symbol", "gene_id", "id"}
	logFCAliases  = []string{"logfc", "log2foldchange", "log2fc", "lfc"}
	pValueAliases = []string{"p.value", "pvalue", "pval", "p_value"}
	adjPAliases   = []string{"adj.p.val", "padj", "fdr", "adj_p", "qvalue"}
	sigAliases    = []string{"significant", "sig"}
)

// columnIndices holds the resolved column positions; -1 means absent.
type columnIndices struct {
	gene        int
	logFC       int
	pValue      int
	adjP        int
	significant int
}

// resolveColumns maps record fields to header positions. Explicitly named
// columns must exist. An empty first header field marks a row-label column,
// which serves as the gene column unless one is named.
func resolveColumns(header []string, m ColumnMap) (columnIndices, error) {
	idx := columnIndices{gene: -1, logFC: -1, pValue: -1, adjP: -1, significant: -1}

	var err error
	if m.Gene == "" && len(header) > 0 && header[0] == "" {
		idx.gene = 0
	} else if idx.gene, err = findColumn(header, "gene", m.Gene, geneAliases, true); err != nil {
		return idx, err
	}
	if idx.logFC, err = findColumn(header, "fold-change", m.LogFC, logFCAliases, true); err != nil {
		return idx, err
	}
	if idx.pValue, err = findColumn(header, "p-value", m.PValue, pValueAliases, true); err != nil {
		return idx, err
	}
	if idx.adjP, err = findColumn(header, "adjusted p-value", m.AdjP, adjPAliases, true); err != nil {
		return idx, err
	}
	if idx.significant, err = findColumn(header, "significance", m.Significant, sigAliases, false); err != nil {
		return idx, err
	}

	return idx, nil
}

// findColumn locates one role's column. A named column must match exactly;
// unnamed roles try their aliases in priority order. Required roles error
// when nothing matches, optional ones return -1.
func findColumn(header []string, role, named string, aliases []string, required bool) (int, error) {
	if named != "" {
		for i, col := range header {
			if col == named {
				return i, nil
			}
		}
		return -1, &DataError{Msg: fmt.Sprintf("%s column %q not found in header", role, named)}
	}

	for _, a := range aliases {
		for i, col := range header {
			if strings.EqualFold(col, a) {
				return i, nil
			}
		}
	}

	if required {
		return -1, &DataError{
			Msg: fmt.Sprintf("no %s column found in header (looked for %s)", role, strings.Join(aliases, ", ")),
		}
	}
	return -1, nil
}
