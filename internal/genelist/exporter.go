// Package genelist writes ranked and thresholded gene lists from
// differential-expression tables, one gene identifier per line, for
// downstream enrichment tools.
package genelist

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/mkuiper/deplot/internal/detable"
)

// DefaultAdjPCutoff is the usual 5% FDR significance cutoff.
const DefaultAdjPCutoff = 0.05

// Config holds the selection cutoffs for an export run.
type Config struct {
	// AdjPCutoff selects genes with an adjusted p-value strictly below it.
	// Values above 1 select every gene and omit the p tag from filenames.
	AdjPCutoff float64

	// FoldChangeCutoff selects genes with |LogFC| strictly above it, in
	// log2 units. Zero disables fold-change selection and its filename tag.
	FoldChangeCutoff float64

	// FoldChangeAdjust rescales the fold-change cutoff in filenames only,
	// for tables whose fold-change column is not a plain log2 ratio.
	// Zero means 1.
	FoldChangeAdjust float64
}

// Exporter writes gene list files.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates an exporter.
func NewExporter() *Exporter {
	return &Exporter{logger: zap.NewNop()}
}

// SetLogger sets the logger for progress messages.
func (e *Exporter) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Export writes the gene list files selected by methods, named from prefix,
// and returns the written paths in order. Genes are ranked by ascending raw
// p-value; ties keep their table order. The first write failure stops the
// run and is returned together with the paths already written.
func (e *Exporter) Export(tbl *detable.Table, prefix string, methods []Method, cfg Config) ([]string, error) {
	if tbl == nil {
		return nil, &detable.DataError{Msg: "nil results table"}
	}
	if len(methods) == 0 {
		return nil, &detable.ConfigError{Msg: "no export methods given"}
	}
	for _, m := range methods {
		if int(m) >= len(methodNames) {
			return nil, &detable.ConfigError{Msg: fmt.Sprintf("invalid method %d", m)}
		}
	}

	ranked := tbl.SortedByPValue()
	token := thresholdToken(cfg)

	var written []string
	for _, m := range methods {
		var paths []string
		var err error
		switch m {
		case MethodRankedList:
			paths, err = e.writeRanked(prefix, ranked)
		case MethodCombined:
			paths, err = e.writeCombined(prefix, token, ranked, cfg)
		case MethodDirectional:
			paths, err = e.writeDirectional(prefix, token, ranked, cfg)
		}
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// selected reports whether rec passes both significance cutoffs.
func selected(rec detable.Record, cfg Config) bool {
	return rec.AdjP < cfg.AdjPCutoff && math.Abs(rec.LogFC) > cfg.FoldChangeCutoff
}

// thresholdToken builds the filename fragment describing the cutoffs, e.g.
// "_FC1.5_P0.05". The fold-change tag converts the log2 cutoff back to a
// plain ratio, rounded to three decimals, and appears only for positive
// cutoffs. The p tag is omitted for cutoffs above 1, which select nothing
// extra anyway.
func thresholdToken(cfg Config) string {
	var token string

	if cfg.FoldChangeCutoff > 0 {
		adjust := cfg.FoldChangeAdjust
		if adjust == 0 {
			adjust = 1
		}
		fc := math.Pow(2, cfg.FoldChangeCutoff*adjust)
		fc = math.Round(fc*1000) / 1000
		token += "_FC" + strconv.FormatFloat(fc, 'g', -1, 64)
	}

	if cfg.AdjPCutoff <= 1 {
		token += "_P" + strconv.FormatFloat(cfg.AdjPCutoff, 'g', -1, 64)
	}

	return token
}

func (e *Exporter) writeRanked(prefix string, ranked []detable.Record) ([]string, error) {
	path := prefix + ".all_genes_ranked_pval.txt"

	genes := make([]string, len(ranked))
	for i, r := range ranked {
		genes[i] = r.Gene
	}
	if err := writeGeneList(path, genes); err != nil {
		return nil, err
	}

	e.logger.Info("wrote ranked gene list",
		zap.String("path", path),
		zap.Int("genes", len(genes)))
	return []string{path}, nil
}

func (e *Exporter) writeCombined(prefix, token string, ranked []detable.Record, cfg Config) ([]string, error) {
	path := prefix + ".genes" + token + ".txt"

	var genes []string
	for _, r := range ranked {
		if selected(r, cfg) {
			genes = append(genes, r.Gene)
		}
	}
	if err := writeGeneList(path, genes); err != nil {
		return nil, err
	}

	e.logger.Info("wrote significant gene list",
		zap.String("path", path),
		zap.Int("genes", len(genes)))
	return []string{path}, nil
}

func (e *Exporter) writeDirectional(prefix, token string, ranked []detable.Record, cfg Config) ([]string, error) {
	base := prefix + ".genes" + token

	var up, down []string
	for _, r := range ranked {
		if !selected(r, cfg) {
			continue
		}
		// A fold-change of exactly zero is in neither direction
		switch {
		case r.LogFC > 0:
			up = append(up, r.Gene)
		case r.LogFC < 0:
			down = append(down, r.Gene)
		}
	}

	upPath := base + ".up.txt"
	if err := writeGeneList(upPath, up); err != nil {
		return nil, err
	}
	written := []string{upPath}

	downPath := base + ".down.txt"
	if err := writeGeneList(downPath, down); err != nil {
		return written, err
	}

	e.logger.Info("wrote directional gene lists",
		zap.String("up", upPath),
		zap.String("down", downPath),
		zap.Int("up_genes", len(up)),
		zap.Int("down_genes", len(down)))
	return append(written, downPath), nil
}

// writeGeneList writes one gene identifier per line, overwriting path.
func writeGeneList(path string, genes []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gene list: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, g := range genes {
		if _, err := w.WriteString(g + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write gene list: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush gene list: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close gene list: %w", err)
	}
	return nil
}
