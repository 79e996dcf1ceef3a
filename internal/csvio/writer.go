// Package csvio encodes and decodes the CSV files exchanged by csvport.
//
// Exported files always start with a UTF-8 byte order mark, quote every
// field, double embedded quotes and end lines with "\n". The reader accepts
// the same shape with or without the BOM. Timestamp rendering and parsing go
// through Zone so the ORM path and the database-native path agree on the
// local time zone.
package csvio

import (
	"bufio"
	"io"
	"strings"
)

// BOM is the UTF-8 byte order mark written at the start of exported files.
const BOM = "\ufeff"

// Writer writes force-quoted CSV records.
//
// encoding/csv only quotes fields that need it, so exported files would not
// be byte-compatible with spreadsheet tools expecting quoted cells.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteBOM writes the UTF-8 byte order mark. Call it before the header.
func (w *Writer) WriteBOM() error {
	_, err := w.w.WriteString(BOM)
	return err
}

// Write writes a single record. Every field is wrapped in double quotes.
func (w *Writer) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := w.w.WriteByte('"'); err != nil {
			return err
		}
		if strings.IndexByte(field, '"') >= 0 {
			field = strings.ReplaceAll(field, `"`, `""`)
		}
		if _, err := w.w.WriteString(field); err != nil {
			return err
		}
		if err := w.w.WriteByte('"'); err != nil {
			return err
		}
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return nil
}

// WriteAll writes records and flushes.
func (w *Writer) WriteAll(records [][]string) error {
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
