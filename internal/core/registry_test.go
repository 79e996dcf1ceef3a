package core

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/store"
)

func testDefinition(key string) EntityDefinition {
	return EntityDefinition{
		Info: EntityInfo{Key: key, Label: key, Table: key},
		Columns: []store.Column{
			{Name: "id", Kind: store.KindInt},
			{Name: "name", Kind: store.KindText},
		},
		ExtraImportColumns: []string{"group"},
	}
}

func TestRegistry(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(testDefinition("widgets"))
	Register(testDefinition("gadgets"))

	t.Run("keys are sorted", func(t *testing.T) {
		got := Keys()
		if len(got) != 2 || got[0] != "gadgets" || got[1] != "widgets" {
			t.Errorf("Keys() = %v, want [gadgets widgets]", got)
		}
	})

	t.Run("export columns default to table columns", func(t *testing.T) {
		def, ok := Get("widgets")
		if !ok {
			t.Fatal("Get(widgets) not found")
		}
		want := []string{"id", "name"}
		if len(def.Info.ExportColumns) != len(want) {
			t.Fatalf("ExportColumns = %v, want %v", def.Info.ExportColumns, want)
		}
		for i := range want {
			if def.Info.ExportColumns[i] != want[i] {
				t.Errorf("ExportColumns[%d] = %q, want %q", i, def.Info.ExportColumns[i], want[i])
			}
		}
		if got := def.ImportColumns(); len(got) != 3 || got[2] != "group" {
			t.Errorf("ImportColumns() = %v", got)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Lookup("tasks")
		if !errors.Is(err, ErrUnknownEntity) {
			t.Errorf("Lookup() error = %v, want ErrUnknownEntity", err)
		}
		if !IsConfigError(err) {
			t.Error("Lookup() error should be a ConfigError")
		}
	})

	t.Run("duplicate key panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Register() should panic on a duplicate key")
			}
		}()
		Register(testDefinition("widgets"))
	})
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "bulk", want: StrategyBulk},
		{in: "find-or-create", want: StrategyFindOrCreate},
		{in: "native", want: StrategyNative},
		{in: "orm", wantErr: true},
		{in: "", wantErr: true},
		{in: "Bulk", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) {
					t.Errorf("ParseStrategy(%q) error = %v, want ErrUnknownStrategy", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Setting: "DB_DRIVER", Value: "sqlite", Err: store.ErrNativeUnsupported}

	want := `configuration error: DB_DRIVER="sqlite": native bulk transfer is not supported by this storage engine`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, store.ErrNativeUnsupported) {
		t.Error("ConfigError should unwrap to its cause")
	}
	if IsConfigError(errors.New("other")) {
		t.Error("IsConfigError() should be false for plain errors")
	}
}

func TestRowError(t *testing.T) {
	if RowError(3, nil) != nil {
		t.Error("RowError(nil) should be nil")
	}

	var pe *csvio.ParseError
	err := RowError(4, errors.New("boom"))
	if !errors.As(err, &pe) || pe.Line != 4 {
		t.Errorf("RowError() = %v, want ParseError at line 4", err)
	}

	inner := &csvio.ParseError{Line: 2, Column: "name", Err: csvio.ErrBlank}
	if got := RowError(9, inner); got != error(inner) {
		t.Errorf("RowError() = %v, want the original ParseError", got)
	}
}
