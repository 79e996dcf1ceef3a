package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New(`ERROR: duplicate key value violates unique constraint "projects_pkey" (SQLSTATE 23505)`),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "sqlite unique constraint maps correctly",
			err:         errors.New("constraint failed: UNIQUE constraint failed: users.name (2067)"),
			wantCode:    "DB002",
			wantMessage: "This value must be unique but already exists",
		},
		{
			name:        "foreign key maps correctly",
			err:         errors.New(`insert or update on table "memberships" violates foreign key constraint`),
			wantCode:    "DB003",
			wantMessage: "Referenced record does not exist",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "sqlite busy maps correctly",
			err:         errors.New("database is locked (5) (SQLITE_BUSY)"),
			wantCode:    "DB008",
			wantMessage: "Database file is locked by another process",
		},
		{
			name:        "native on sqlite maps to config code",
			err:         &ConfigError{Setting: "DB_DRIVER", Value: "sqlite", Err: store.ErrNativeUnsupported},
			wantCode:    "CFG001",
			wantMessage: "The storage engine has no native bulk transfer",
		},
		{
			name:        "unknown entity maps correctly",
			err:         &ConfigError{Setting: "entity", Value: "tasks", Err: ErrUnknownEntity},
			wantCode:    "CFG002",
			wantMessage: "Unknown entity",
		},
		{
			name:        "unknown strategy maps correctly",
			err:         &ConfigError{Setting: "strategy", Value: "fast", Err: ErrUnknownStrategy},
			wantCode:    "CFG003",
			wantMessage: "Unknown import strategy",
		},
		{
			name:        "config validation maps correctly",
			err:         errors.New("config validation: DB_DRIVER must be postgres or sqlite"),
			wantCode:    "CFG005",
			wantMessage: "Configuration is invalid",
		},
		{
			name:        "invalid timestamp on a row",
			err:         &csvio.ParseError{Line: 3, Column: "created_at", Value: "yesterday", Err: csvio.ErrInvalidTime},
			wantCode:    "VAL002",
			wantMessage: "Invalid timestamp format detected",
		},
		{
			name:        "blank required field",
			err:         &csvio.ParseError{Line: 2, Column: "name", Err: csvio.ErrBlank},
			wantCode:    "VAL004",
			wantMessage: "Required field is empty",
		},
		{
			name:        "missing column in header",
			err:         &csvio.ParseError{Line: 1, Column: "name", Err: csvio.ErrMissingColumn},
			wantCode:    "VAL005",
			wantMessage: "Required column is missing from CSV",
		},
		{
			name:        "repeated column in header",
			err:         &csvio.ParseError{Line: 1, Column: "description", Err: csvio.ErrDuplicateColumn},
			wantCode:    "VAL009",
			wantMessage: "CSV header names a column twice",
		},
		{
			name:        "too many fields",
			err:         &csvio.ParseError{Line: 4, Err: csvio.ErrFieldCount},
			wantCode:    "FILE001",
			wantMessage: "Row has more fields than the header",
		},
		{
			name:        "bare quote",
			err:         errors.New(`parse error on line 2, column 5: bare " in non-quoted-field`),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "missing file",
			err:         fmt.Errorf("open import file: %w", errors.New("open users.csv: no such file or directory")),
			wantCode:    "FILE004",
			wantMessage: "File not found",
		},
		{
			name:        "cancelled run",
			err:         fmt.Errorf("flush batch: %w", errors.New("context canceled")),
			wantCode:    "RUN001",
			wantMessage: "Run was cancelled",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("duplicate key value violates")
	result := FormatUserError(err)

	expected := "A record with this ID already exists (Code: DB001). Remove or renumber rows whose id is already stored"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("duplicate key"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
