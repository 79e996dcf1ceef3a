package csvio

import (
	"strconv"
	"strings"
	"time"
)

// Formatting helpers for export rows. NULL renders as "".

func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func FormatText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func FormatNullDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return FormatDate(*v)
}

func (z *Zone) FormatNullHuman(v *time.Time) string {
	if v == nil {
		return ""
	}
	return z.Human(*v)
}

// Decoding helpers. Errors are *ParseError carrying the record line.

func (r Record) fail(col, value string, err error) error {
	return &ParseError{Line: r.Line, Column: col, Value: value, Err: err}
}

// RequiredText returns the value of col, failing when it is blank.
func (r Record) RequiredText(col string) (string, error) {
	if r.Blank(col) {
		return "", r.fail(col, "", ErrBlank)
	}
	return r.String(col), nil
}

// NullText returns nil for an absent or empty value.
func (r Record) NullText(col string) *string {
	v, ok := r.Lookup(col)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// Int64 parses col. ok is false when the value is absent or blank.
func (r Record) Int64(col string) (v int64, ok bool, err error) {
	if r.Blank(col) {
		return 0, false, nil
	}
	s := strings.TrimSpace(r.String(col))
	v, err = strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, r.fail(col, s, ErrInvalidInt)
	}
	return v, true, nil
}

// RequiredInt64 parses col, failing when it is blank.
func (r Record) RequiredInt64(col string) (int64, error) {
	v, ok, err := r.Int64(col)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, r.fail(col, "", ErrBlank)
	}
	return v, nil
}

// Timestamp parses col as a local timestamp in z, returning def when blank.
func (r Record) Timestamp(col string, z *Zone, def time.Time) (time.Time, error) {
	if r.Blank(col) {
		return def, nil
	}
	s := r.String(col)
	t, err := z.Parse(s)
	if err != nil {
		return time.Time{}, r.fail(col, s, err)
	}
	return t, nil
}

// NullTimestamp parses col as a local timestamp in z, returning nil when blank.
func (r Record) NullTimestamp(col string, z *Zone) (*time.Time, error) {
	if r.Blank(col) {
		return nil, nil
	}
	s := r.String(col)
	t, err := z.Parse(s)
	if err != nil {
		return nil, r.fail(col, s, err)
	}
	return &t, nil
}

// NullDate parses col as a calendar date, returning nil when blank.
func (r Record) NullDate(col string) (*time.Time, error) {
	if r.Blank(col) {
		return nil, nil
	}
	s := r.String(col)
	t, err := ParseDate(s)
	if err != nil {
		return nil, r.fail(col, s, err)
	}
	return &t, nil
}
