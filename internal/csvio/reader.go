package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var bomBytes = []byte(BOM)

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if err := r.skip(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// ReadString reads until the first occurrence of delim, skipping a leading BOM.
func (r *BOMSkippingReader) ReadString(delim byte) (string, error) {
	if err := r.skip(); err != nil {
		return "", err
	}
	return r.r.ReadString(delim)
}

func (r *BOMSkippingReader) skip() error {
	if r.checked {
		return nil
	}
	r.checked = true
	if head, err := r.r.Peek(len(bomBytes)); err == nil && bytes.Equal(head, bomBytes) {
		_, err := r.r.Discard(len(bomBytes))
		return err
	}
	return nil
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// HeaderIndex maps normalized column names to their position in a row.
type HeaderIndex map[string]int

// NormalizeHeader trims whitespace and lowercases a header cell.
func NormalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MakeHeaderIndex builds a HeaderIndex from a header row. A column named
// twice is a ParseError on line 1.
func MakeHeaderIndex(headers []string) (HeaderIndex, error) {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		name := NormalizeHeader(h)
		if _, dup := idx[name]; dup {
			return nil, &ParseError{Line: 1, Column: name, Err: ErrDuplicateColumn}
		}
		idx[name] = i
	}
	return idx, nil
}

// Check verifies every header column is known and every required column
// is present. Errors point at line 1.
func (h HeaderIndex) Check(known, required []string) error {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	for name := range h {
		if !allowed[name] {
			return &ParseError{Line: 1, Column: name, Err: ErrUnknownColumn}
		}
	}
	for _, r := range required {
		if _, ok := h[r]; !ok {
			return &ParseError{Line: 1, Column: r, Err: ErrMissingColumn}
		}
	}
	return nil
}

// Reader reads header-led CSV files.
type Reader struct {
	cr      *csv.Reader
	counter *CountingReader
	header  []string
	index   HeaderIndex
}

// NewReader returns a Reader for r. A leading BOM is skipped.
func NewReader(r io.Reader) *Reader {
	counter := NewCountingReader(r)
	cr := csv.NewReader(NewBOMSkippingReader(counter))
	cr.FieldsPerRecord = -1
	return &Reader{cr: cr, counter: counter}
}

// Header reads the header row. It must be called before Next.
func (r *Reader) Header() (HeaderIndex, error) {
	if r.index != nil {
		return r.index, nil
	}
	row, err := r.cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Line: 1, Err: ErrMissingHeader}
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}
	idx, err := MakeHeaderIndex(row)
	if err != nil {
		return nil, err
	}
	r.header = row
	r.index = idx
	return r.index, nil
}

// Next returns the next data row, or io.EOF when the file is exhausted.
// A row with more fields than the header is a ParseError; shorter rows are
// allowed and their trailing columns read as absent.
func (r *Reader) Next() (Record, error) {
	if r.index == nil {
		if _, err := r.Header(); err != nil {
			return Record{}, err
		}
	}
	row, err := r.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, wrapCSVError(err)
	}
	line, _ := r.cr.FieldPos(0)
	if len(row) > len(r.header) {
		return Record{}, &ParseError{
			Line: line,
			Err:  fmt.Errorf("%w: got %d fields, header has %d", ErrFieldCount, len(row), len(r.header)),
		}
	}
	return Record{Line: line, values: row, index: r.index}, nil
}

// BytesRead reports how many bytes of input have been consumed.
func (r *Reader) BytesRead() int64 {
	return r.counter.BytesRead
}

func wrapCSVError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return err
}

// Record is one data row addressed by header name.
type Record struct {
	Line   int
	values []string
	index  HeaderIndex
}

// NewRecord builds a Record from a header index and values.
func NewRecord(line int, index HeaderIndex, values []string) Record {
	return Record{Line: line, values: values, index: index}
}

// Lookup returns the raw value of col and whether the row carries it.
func (r Record) Lookup(col string) (string, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Blank reports whether col is absent or empty.
func (r Record) Blank(col string) bool {
	v, ok := r.Lookup(col)
	return !ok || strings.TrimSpace(v) == ""
}

// String returns the value of col, or "" when absent.
func (r Record) String(col string) string {
	v, _ := r.Lookup(col)
	return v
}

// HeaderNames returns the normalized header in file order. It is empty
// before Header has been read.
func (r *Reader) HeaderNames() []string {
	names := make([]string, len(r.header))
	for i, h := range r.header {
		names[i] = NormalizeHeader(h)
	}
	return names
}
