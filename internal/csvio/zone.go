package csvio

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Timestamp layouts.
const (
	HumanLayout = "2006-01-02 15:04:05"
	DumpLayout  = "2006-01-02 15:04:05.000000"
	DateLayout  = "2006-01-02"
)

// PostgreSQL to_char patterns matching HumanLayout and DumpLayout.
const (
	sqlHumanPattern = "YYYY-MM-DD HH24:MI:SS"
	sqlDumpPattern  = "YYYY-MM-DD HH24:MI:SS.US"
)

var parseLayouts = []string{
	HumanLayout,
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
	DateLayout,
	"2006/01/02",
}

// Zone converts between stored UTC instants and the local wall-clock time
// written to CSV files. Both the Go formatting path and the SQL generated
// for database-native dumps come from the same Zone.
type Zone struct {
	name string
	loc  *time.Location
}

// LoadZone returns the Zone for an IANA name such as "Asia/Tokyo".
func LoadZone(name string) (*Zone, error) {
	if name == "" {
		return nil, fmt.Errorf("load zone: empty name")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	return &Zone{name: name, loc: loc}, nil
}

func (z *Zone) Name() string { return z.name }
func (z *Zone) Location() *time.Location { return z.loc }
func (z *Zone) In(t time.Time) time.Time { return t.In(z.loc) }
func (z *Zone) Human(t time.Time) string { return t.In(z.loc).Format(HumanLayout) }
func (z *Zone) Dump(t time.Time) string { return t.In(z.loc).Format(DumpLayout) }

// Parse reads a local timestamp. Fractional seconds are accepted after the
// seconds field; values carrying an explicit offset keep it. The result is UTC.
func (z *Zone) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, z.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTime
}

// SQLLiteral returns the zone name as a quoted SQL string literal.
func (z *Zone) SQLLiteral() string {
	return quoteLiteral(z.name)
}

// SQLHuman returns a PostgreSQL expression rendering the timestamptz column
// col like Human.
func (z *Zone) SQLHuman(col string) string {
	return fmt.Sprintf("to_char(%s AT TIME ZONE %s, '%s')", col, z.SQLLiteral(), sqlHumanPattern)
}

// SQLDump returns a PostgreSQL expression rendering the timestamptz column
// col like Dump.
func (z *Zone) SQLDump(col string) string {
	return fmt.Sprintf("to_char(%s AT TIME ZONE %s, '%s')", col, z.SQLLiteral(), sqlDumpPattern)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// FormatDate renders a calendar date. Dates are not zone converted.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006/01/02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FileName builds an export file name from an entity prefix and the local
// generation time, e.g. projects_2020-01-02_08_59_59_000JST.csv.
func FileName(prefix string, local time.Time) string {
	return fmt.Sprintf("%s_%s_%03d%s.csv",
		prefix,
		local.Format("2006-01-02_15_04_05"),
		local.Nanosecond()/int(time.Millisecond),
		local.Format("MST"),
	)
}
