package csvio

import (
	"bytes"
	"testing"
)

func TestWriter_ForceQuotes(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"plain", []string{"1", "Project 1", "Test 1"}, `"1","Project 1","Test 1"` + "\n"},
		{"empty field", []string{"1", "", "x"}, `"1","","x"` + "\n"},
		{"embedded quote", []string{`say "hi"`}, `"say ""hi"""` + "\n"},
		{"embedded newline", []string{"a\nb"}, "\"a\nb\"\n"},
		{"comma", []string{"a,b"}, `"a,b"` + "\n"},
		{"multibyte", []string{"テスト 2 “暫定”"}, `"テスト 2 “暫定”"` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.Write(tt.record); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_BOMAndHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBOM(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteAll([][]string{{"id", "name", "description"}}); err != nil {
		t.Fatal(err)
	}

	want := "\xEF\xBB\xBF" + `"id","name","description"` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
