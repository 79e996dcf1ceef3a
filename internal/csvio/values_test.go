package csvio

import (
	"errors"
	"testing"
	"time"
)

func TestRecord_Decode(t *testing.T) {
	z := tokyo(t)
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	idx, err := MakeHeaderIndex([]string{"id", "name", "description", "due_on", "created_at", "updated_at"})
	if err != nil {
		t.Fatal(err)
	}

	rec := NewRecord(2, idx, []string{"7", "Alpha", "", "2020-03-15", "2020-01-02 08:59:00", ""})

	id, ok, err := rec.Int64("id")
	if err != nil || !ok || id != 7 {
		t.Errorf("Int64(id) = %d, %v, %v", id, ok, err)
	}
	if rec.NullText("description") != nil {
		t.Error("NullText(description) should be nil for empty value")
	}
	due, err := rec.NullDate("due_on")
	if err != nil || due == nil || FormatDate(*due) != "2020-03-15" {
		t.Errorf("NullDate(due_on) = %v, %v", due, err)
	}
	created, err := rec.Timestamp("created_at", z, start)
	if err != nil || !created.Equal(time.Date(2020, 1, 1, 23, 59, 0, 0, time.UTC)) {
		t.Errorf("Timestamp(created_at) = %v, %v", created, err)
	}
	updated, err := rec.Timestamp("updated_at", z, start)
	if err != nil || !updated.Equal(start) {
		t.Errorf("blank updated_at should default to start, got %v, %v", updated, err)
	}
	missing, err := rec.NullTimestamp("last_login_at", z)
	if err != nil || missing != nil {
		t.Errorf("NullTimestamp(absent) = %v, %v", missing, err)
	}
}

func TestRecord_DecodeErrors(t *testing.T) {
	z := tokyo(t)
	idx, err := MakeHeaderIndex([]string{"id", "name", "created_at"})
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecord(4, idx, []string{"x1", " ", "soon"})

	tests := []struct {
		name    string
		decode  func() error
		column  string
		wantErr error
	}{
		{"integer", func() error { _, _, err := rec.Int64("id"); return err }, "id", ErrInvalidInt},
		{"blank required", func() error { _, err := rec.RequiredText("name"); return err }, "name", ErrBlank},
		{"timestamp", func() error { _, err := rec.Timestamp("created_at", z, time.Now()); return err }, "created_at", ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode()
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Line != 4 || pe.Column != tt.column {
				t.Errorf("ParseError = line %d column %q", pe.Line, pe.Column)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	desc := "x"
	if FormatText(nil) != "" || FormatText(&desc) != "x" {
		t.Error("FormatText mismatch")
	}
	if FormatNullDate(nil) != "" {
		t.Error("FormatNullDate(nil) should be empty")
	}
	if FormatInt(42) != "42" {
		t.Error("FormatInt mismatch")
	}
}
