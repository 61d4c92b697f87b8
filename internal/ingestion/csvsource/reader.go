// Package csvsource reads a headed CSV file as a sequence of bounded chunks.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const DefaultChunkSize = 500

// Row is one data record keyed by lower-cased header name.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the column value, or "" when the column is absent.
func (r Row) Get(col string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[col]
}

// RowError is a record the CSV parser could not read. It is a data-quality issue,
// not a failure of the whole file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// Chunk is a bounded batch of consecutive records. Index is 1-based.
type Chunk struct {
	Index int
	Rows  []Row
	Bad   []RowError
}

// Len counts every record consumed by the chunk, readable or not.
func (c *Chunk) Len() int { return len(c.Rows) + len(c.Bad) }

type ChunkReader struct {
	r      *csv.Reader
	header []string
	size   int
	limit  int
	seen   int
	index  int
	done   bool
}

// NewChunkReader reads the header row and prepares chunked reads of at most size
// records. limit > 0 stops after that many records.
func NewChunkReader(r io.Reader, size, limit int) (*ChunkReader, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	cr := newCSVReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csvsource: missing header row")
		}
		return nil, fmt.Errorf("csvsource: read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return &ChunkReader{r: cr, header: cols, size: size, limit: limit}, nil
}

func (c *ChunkReader) Header() []string { return append([]string(nil), c.header...) }

// Next returns the next chunk, or io.EOF once every record has been returned.
// Errors other than per-record parse errors are returned as-is and end the read.
func (c *ChunkReader) Next() (*Chunk, error) {
	if c.done {
		return nil, io.EOF
	}
	chunk := &Chunk{Index: c.index + 1}
	for chunk.Len() < c.size {
		if c.limit > 0 && c.seen >= c.limit {
			c.done = true
			break
		}
		rec, err := c.r.Read()
		if errors.Is(err, io.EOF) {
			c.done = true
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				c.seen++
				chunk.Bad = append(chunk.Bad, RowError{Line: perr.StartLine, Err: perr.Err})
				continue
			}
			return nil, fmt.Errorf("csvsource: read: %w", err)
		}
		c.seen++
		line, _ := c.r.FieldPos(0)
		chunk.Rows = append(chunk.Rows, c.row(line, rec))
	}
	if chunk.Len() == 0 {
		return nil, io.EOF
	}
	c.index++
	return chunk, nil
}

func (c *ChunkReader) row(line int, rec []string) Row {
	fields := make(map[string]string, len(c.header))
	for i, col := range c.header {
		if i < len(rec) {
			fields[col] = rec[i]
		} else {
			fields[col] = ""
		}
	}
	return Row{Line: line, Fields: fields}
}

// CountRows counts data records (excluding the header), honoring quoted newlines.
func CountRows(r io.Reader) (int, error) {
	cr := newCSVReader(r)
	cr.ReuseRecord = true
	n := -1
	for {
		_, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return 0, err
			}
		}
		n++
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// TotalChunks is the number of chunks needed for rows records, capped by limit.
func TotalChunks(rows, size, limit int) int {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if limit > 0 && limit < rows {
		rows = limit
	}
	if rows <= 0 {
		return 0
	}
	return (rows + size - 1) / size
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}
