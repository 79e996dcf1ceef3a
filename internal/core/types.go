package core

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/store"
)

// Direction tells whether a run wrote or read a CSV file.
type Direction string

const (
	DirectionExport Direction = "export"
	DirectionImport Direction = "import"
)

// Strategy selects how rows move between storage and CSV.
type Strategy string

const (
	// StrategyORM exports through batched ORM queries.
	StrategyORM Strategy = "orm"
	// StrategyBulk imports with multi-row inserts flushed every batch.
	StrategyBulk Strategy = "bulk"
	// StrategyFindOrCreate imports one row at a time keyed by natural key.
	StrategyFindOrCreate Strategy = "find-or-create"
	// StrategyNative delegates to the database's own bulk file I/O.
	StrategyNative Strategy = "native"
)

// ParseStrategy validates an import strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategyBulk, StrategyFindOrCreate, StrategyNative:
		return st, nil
	default:
		return "", &ConfigError{Setting: "strategy", Value: s, Err: ErrUnknownStrategy}
	}
}

// ExportOptions narrows an export. Nil Offset and Limit mean "from the
// start" and "everything".
type ExportOptions struct {
	Offset *int
	Limit  *int
	Scope  store.Scope
}

// EntityInfo contains descriptive information about an entity.
type EntityInfo struct {
	Key           string   // Unique identifier and file prefix: "projects"
	Label         string   // Display name: "Projects"
	Table         string   // Database table
	ExportColumns []string // Header of the human CSV export
	Required      []string // Columns an import file must carry
	NaturalKey    []string // Lookup key for find-or-create
}

// Batch is one page of export rows.
type Batch struct {
	Rows    [][]string
	LastID  int64 // id of the last source record read
	Records int   // source records read; may differ from len(Rows)
}

// Decoding carries what row decoders need besides the row itself.
type Decoding struct {
	Zone  *csvio.Zone
	Start time.Time // run start, used for missing timestamps
}

// ExportBatchFunc reads one page of records and renders its CSV rows.
type ExportBatchFunc func(ctx context.Context, db bun.IDB, page store.Page, z *csvio.Zone) (Batch, error)

// DecodeFunc turns one CSV record into an entity value.
type DecodeFunc func(rec csvio.Record, d Decoding) (any, error)

// InsertBatchFunc writes decoded values with as few statements as possible.
type InsertBatchFunc func(ctx context.Context, db bun.IDB, values []any) (int64, error)

// FindOrCreateFunc stores value unless a record with the same natural key
// exists. It reports whether a record was created.
type FindOrCreateFunc func(ctx context.Context, db bun.IDB, value any) (bool, error)

// EntityDefinition contains everything needed to export and import an entity.
type EntityDefinition struct {
	Info  EntityInfo
	Model any // nil pointer to the bun model, e.g. (*models.Project)(nil)

	// Columns are the table columns in dump order. Native exports write all
	// of them; imports accept any subset.
	Columns []store.Column

	// ExtraImportColumns are accepted by ORM imports beyond Columns.
	ExtraImportColumns []string

	ExportBatch  ExportBatchFunc
	Decode       DecodeFunc
	InsertBatch  InsertBatchFunc
	FindOrCreate FindOrCreateFunc
}

// ColumnNames returns the names of Columns.
func (d EntityDefinition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ImportColumns returns every column an ORM import accepts.
func (d EntityDefinition) ImportColumns() []string {
	return append(d.ColumnNames(), d.ExtraImportColumns...)
}

// column returns the Column named name.
func (d EntityDefinition) column(name string) (store.Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return store.Column{}, false
}

// RunResult summarizes one export or import run.
type RunResult struct {
	RunID     string
	Entity    string
	Direction Direction
	Strategy  Strategy
	Path      string
	Rows      int64 // CSV data rows written or read
	Inserted  int64 // records created by an import
	Bytes     int64 // bytes read by an import
	StartedAt time.Time
	Duration  time.Duration
}

// ImportStats counts what an import read and created.
type ImportStats struct {
	Rows     int64
	Inserted int64
	Bytes    int64
}
