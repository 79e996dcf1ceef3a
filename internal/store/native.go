package store

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/csvio"
)

// ColumnKind tells how a column is rendered in native dumps.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInt
	KindDate
	KindTimestamp
)

// Column describes one column of a full-table dump.
type Column struct {
	Name     string
	Kind     ColumnKind
	Nullable bool
}

// NativeExpr returns the SQL rendering col as CSV text. NULL becomes ''.
func NativeExpr(col Column, z *csvio.Zone) string {
	var expr string
	switch col.Kind {
	case KindInt:
		expr = fmt.Sprintf("CAST(%s AS text)", col.Name)
	case KindDate:
		expr = fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col.Name)
	case KindTimestamp:
		expr = z.SQLDump(col.Name)
	default:
		expr = col.Name
	}
	if col.Nullable {
		expr = fmt.Sprintf("COALESCE(%s, '')", expr)
	}
	return expr + " AS " + col.Name
}

// NativeQuery builds the SELECT feeding a native dump of model.
func NativeQuery(db bun.IDB, model any, cols []Column, z *csvio.Zone, page Page) string {
	q := db.NewSelect().Model(model)
	for _, c := range cols {
		q = q.ColumnExpr(NativeExpr(c, z))
	}
	return page.Apply(q).String()
}
