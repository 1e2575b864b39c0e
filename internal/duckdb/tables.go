package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/mkuiper/deplot/internal/detable"
)

// Dataset describes one imported results table.
type Dataset struct {
	Name            string
	Genes           int64
	HasSignificance bool
	ImportedAt      time.Time
}

// ImportTable stores tbl under the given dataset name, replacing any
// previous import with the same name.
func (s *Store) ImportTable(name string, tbl *detable.Table) error {
	if tbl == nil {
		return &detable.DataError{Msg: "nil results table"}
	}
	if name == "" {
		return &detable.ConfigError{Msg: "empty dataset name"}
	}

	if err := s.DeleteDataset(name); err != nil {
		return err
	}
	if err := s.appendGeneStats(name, tbl.Records()); err != nil {
		return err
	}

	if _, err := s.db.Exec(
		"INSERT INTO datasets VALUES (?, ?, ?, ?)",
		name, int64(tbl.Len()), tbl.HasSignificance(), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record dataset: %w", err)
	}

	s.logger.Info("imported dataset",
		zap.String("dataset", name),
		zap.Int("genes", tbl.Len()),
		zap.Bool("has_significance", tbl.HasSignificance()))
	return nil
}

// appendGeneStats batch-inserts records into DuckDB using the Appender API.
func (s *Store) appendGeneStats(name string, recs []detable.Record) error {
	if len(recs) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "gene_stats")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range recs {
		if err := appender.AppendRow(name, r.Gene, r.LogFC, r.PValue, r.AdjP, r.Significant); err != nil {
			return fmt.Errorf("append gene stats: %w", err)
		}
	}

	return appender.Flush()
}

// LoadTable reconstructs the named dataset. Records come back in
// gene-ascending order; the original file order is not preserved.
func (s *Store) LoadTable(name string) (*detable.Table, error) {
	var hasSig bool
	err := s.db.QueryRow("SELECT has_significance FROM datasets WHERE name=?", name).Scan(&hasSig)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &detable.DataError{Msg: fmt.Sprintf("dataset %q not found", name)}
	}
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}

	rows, err := s.db.Query(`SELECT gene, log_fc, p_value, adj_p, significant
		FROM gene_stats WHERE dataset=? ORDER BY gene`, name)
	if err != nil {
		return nil, fmt.Errorf("query gene stats: %w", err)
	}
	defer rows.Close()

	tbl := detable.NewTable()
	for rows.Next() {
		var r detable.Record
		if err := rows.Scan(&r.Gene, &r.LogFC, &r.PValue, &r.AdjP, &r.Significant); err != nil {
			return nil, fmt.Errorf("scan gene stats: %w", err)
		}
		if !hasSig {
			r.Significant = false
		}
		if err := tbl.Append(r); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gene stats: %w", err)
	}

	tbl.SetSignificance(hasSig)
	return tbl, nil
}

// Datasets lists imported datasets, most recent first.
func (s *Store) Datasets() ([]Dataset, error) {
	rows, err := s.db.Query(`SELECT name, genes, has_significance, imported_at
		FROM datasets ORDER BY imported_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.Name, &d.Genes, &d.HasSignificance, &d.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return out, nil
}

// Count returns the number of stored genes for a dataset.
func (s *Store) Count(name string) (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT count(*) FROM gene_stats WHERE dataset=?", name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count gene stats: %w", err)
	}
	return n, nil
}

// DeleteDataset removes a dataset and its gene statistics. Deleting a
// dataset that does not exist is not an error.
func (s *Store) DeleteDataset(name string) error {
	if _, err := s.db.Exec("DELETE FROM gene_stats WHERE dataset=?", name); err != nil {
		return fmt.Errorf("delete gene stats: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM datasets WHERE name=?", name); err != nil {
		return fmt.Errorf("delete dataset entry: %w", err)
	}
	return nil
}
