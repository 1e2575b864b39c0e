package detable

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reader reads records from a tab-separated results table.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    columnIndices
	headerLine string
}

// NewReader opens a results table for reading. Supports plain and gzipped
// files; "-" reads from stdin. Column roles are resolved against the header
// immediately, so a missing column fails here rather than mid-stream.
func NewReader(path string, cols ColumnMap) (*Reader, error) {
	if path == "-" {
		return NewReaderFrom(os.Stdin, cols)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results table: %w", err)
	}

	r := &Reader{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read table header: %w", err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek results table: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	if err := r.parseHeader(cols); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// NewReaderFrom creates a reader from an io.Reader (e.g. stdin).
func NewReaderFrom(src io.Reader, cols ColumnMap) (*Reader, error) {
	r := &Reader{reader: bufio.NewReader(src)}

	if err := r.parseHeader(cols); err != nil {
		return nil, err
	}

	return r, nil
}

// parseHeader reads the header line and resolves the column mapping.
func (r *Reader) parseHeader(cols ColumnMap) error {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return &ParseError{
					Line:    r.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		// Skip comment and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		r.headerLine = line
		idx, err := resolveColumns(strings.Split(line, "\t"), cols)
		if err != nil {
			return err
		}
		r.columns = idx
		return nil
	}
}

// Next reads the next record from the table.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*Record, error) {
	line, err := r.reader.ReadString('\n')
	if err == io.EOF && line == "" {
		return nil, nil
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read table line: %w", err)
	}
	r.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, "#") {
		if err == io.EOF {
			return nil, nil
		}
		return r.Next() // Skip comment and empty lines
	}

	return r.parseLine(line)
}

// parseLine parses a single data line into a Record.
func (r *Reader) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")

	minCols := max(r.columns.gene, r.columns.logFC, r.columns.pValue, r.columns.adjP)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	logFC, err := strconv.ParseFloat(fields[r.columns.logFC], 64)
	if err != nil {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("invalid fold-change: %s", fields[r.columns.logFC]),
		}
	}

	pval, err := strconv.ParseFloat(fields[r.columns.pValue], 64)
	if err != nil {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("invalid p-value: %s", fields[r.columns.pValue]),
		}
	}

	adjP, err := strconv.ParseFloat(fields[r.columns.adjP], 64)
	if err != nil {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("invalid adjusted p-value: %s", fields[r.columns.adjP]),
		}
	}

	rec := &Record{
		Gene:   fields[r.columns.gene],
		LogFC:  logFC,
		PValue: pval,
		AdjP:   adjP,
	}

	if r.columns.significant >= 0 && r.columns.significant < len(fields) {
		sig, err := parseFlag(fields[r.columns.significant])
		if err != nil {
			return nil, &ParseError{
				Line:    r.lineNumber,
				Message: fmt.Sprintf("invalid significance flag: %s", fields[r.columns.significant]),
			}
		}
		rec.Significant = sig
	}

	return rec, nil
}

// parseFlag parses the boolean spellings found in exported tables.
func parseFlag(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "TRUE", "T", "1", "YES":
		return true, nil
	case "FALSE", "F", "0", "NO":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", s)
}

// Header returns the table header line.
func (r *Reader) Header() string {
	return r.headerLine
}

// HasSignificance reports whether the table carries a significance column.
func (r *Reader) HasSignificance() bool {
	return r.columns.significant >= 0
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadTable reads a whole results table from path.
func ReadTable(path string, cols ColumnMap) (*Table, error) {
	r, err := NewReader(path, cols)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return drain(r)
}

// ReadTableFrom reads a whole results table from src.
func ReadTableFrom(src io.Reader, cols ColumnMap) (*Table, error) {
	r, err := NewReaderFrom(src, cols)
	if err != nil {
		return nil, err
	}

	return drain(r)
}

func drain(r *Reader) (*Table, error) {
	t := NewTable()
	t.hasSig = r.HasSignificance()
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return t, nil
		}
		if err := t.Append(*rec); err != nil {
			return nil, err
		}
	}
}
