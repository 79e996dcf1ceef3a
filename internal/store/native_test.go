package store

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/csvport/internal/csvio"
)

func TestNativeExpr(t *testing.T) {
	z, err := csvio.LoadZone("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		col  Column
		want string
	}{
		{Column{Name: "name", Kind: KindText}, "name AS name"},
		{Column{Name: "description", Kind: KindText, Nullable: true}, "COALESCE(description, '') AS description"},
		{Column{Name: "id", Kind: KindInt}, "CAST(id AS text) AS id"},
		{Column{Name: "due_on", Kind: KindDate, Nullable: true}, "COALESCE(to_char(due_on, 'YYYY-MM-DD'), '') AS due_on"},
		{
			Column{Name: "created_at", Kind: KindTimestamp},
			"to_char(created_at AT TIME ZONE 'Asia/Tokyo', 'YYYY-MM-DD HH24:MI:SS.US') AS created_at",
		},
	}

	for _, tt := range tests {
		if got := NativeExpr(tt.col, z); got != tt.want {
			t.Errorf("NativeExpr(%s) = %q, want %q", tt.col.Name, got, tt.want)
		}
	}
}

func TestCopyInStatement(t *testing.T) {
	got := copyInStatement(CopyIn{
		Table:     "projects",
		Columns:   []string{"id", "name", "description"},
		ForceNull: []string{"description"},
	})
	want := `COPY "projects" ("id", "name", "description") FROM STDIN WITH (FORMAT csv, FORCE_NULL ("description"))`
	if got != want {
		t.Errorf("copyInStatement() = %q, want %q", got, want)
	}

	if s := resyncStatement("projects"); !strings.Contains(s, `pg_get_serial_sequence('projects', 'id')`) {
		t.Errorf("resyncStatement() = %q", s)
	}
}
