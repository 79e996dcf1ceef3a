package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/logging"
	"github.com/JonMunkholm/csvport/internal/store"
)

// Import loads the CSV file at path into entity key and records the run.
// The native strategy fails with ErrNativeUnsupported before the file is
// opened when the engine has no bulk loader.
func (s *Service) Import(ctx context.Context, key, path string, strategy Strategy) (res *RunResult, err error) {
	def, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if strategy == StrategyNative {
		if _, err := s.native(); err != nil {
			return nil, err
		}
	}

	ctx, res, logger := s.beginRun(ctx, def.Info.Key, DirectionImport, strategy, path)
	defer func() { s.finishRun(ctx, res, logger, err) }()

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	stats, err := s.importFrom(ctx, def, f, strategy)
	res.Rows, res.Inserted, res.Bytes = stats.Rows, stats.Inserted, stats.Bytes
	return res, err
}

// ImportFrom loads CSV read from r into entity key.
func (s *Service) ImportFrom(ctx context.Context, key string, r io.Reader, strategy Strategy) (ImportStats, error) {
	def, err := Lookup(key)
	if err != nil {
		return ImportStats{}, err
	}
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return ImportStats{}, err
	}
	return s.importFrom(ctx, def, r, strategy)
}

func (s *Service) importFrom(ctx context.Context, def EntityDefinition, r io.Reader, strategy Strategy) (ImportStats, error) {
	if strategy == StrategyNative {
		return s.importNative(ctx, def, r)
	}

	rd := csvio.NewReader(r)
	header, err := rd.Header()
	if err != nil {
		return ImportStats{}, err
	}
	if err := header.Check(def.ImportColumns(), def.Info.Required); err != nil {
		return ImportStats{}, err
	}

	dec := Decoding{Zone: s.zone, Start: s.now()}

	var stats ImportStats
	switch strategy {
	case StrategyFindOrCreate:
		stats, err = s.importFindOrCreate(ctx, def, rd, dec)
	default:
		stats, err = s.importBulk(ctx, def, rd, dec)
	}
	stats.Bytes = rd.BytesRead()

	// Committed batches keep their explicit ids even when a later one fails,
	// so the sequence moves past them either way.
	if stats.Inserted > 0 {
		if rerr := store.ResyncIDs(context.WithoutCancel(ctx), s.store.DB, def.Info.Table); rerr != nil {
			return stats, errors.Join(err, rerr)
		}
	}
	return stats, err
}

// importBulk buffers decoded rows and flushes them with one multi-row insert
// whenever the buffer reaches the batch size, then flushes the remainder.
func (s *Service) importBulk(ctx context.Context, def EntityDefinition, rd *csvio.Reader, dec Decoding) (ImportStats, error) {
	logger := logging.FromContext(ctx)
	var stats ImportStats
	buf := make([]any, 0, s.importBatch)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		var inserted int64
		err := s.store.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			n, err := def.InsertBatch(ctx, tx, buf)
			inserted = n
			return err
		})
		if err != nil {
			return fmt.Errorf("insert batch ending at row %d: %w", stats.Rows, err)
		}
		stats.Inserted += inserted
		logger.Debug("import batch flushed", "rows", len(buf), "inserted", inserted)
		buf = buf[:0]
		return nil
	}

	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		v, err := def.Decode(rec, dec)
		if err != nil {
			return stats, RowError(rec.Line, err)
		}
		buf = append(buf, v)
		stats.Rows++

		if len(buf) >= s.importBatch {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	return stats, flush()
}

// importFindOrCreate stores each row unless its natural key already exists.
func (s *Service) importFindOrCreate(ctx context.Context, def EntityDefinition, rd *csvio.Reader, dec Decoding) (ImportStats, error) {
	var stats ImportStats
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		v, err := def.Decode(rec, dec)
		if err != nil {
			return stats, RowError(rec.Line, err)
		}
		stats.Rows++

		created, err := def.FindOrCreate(ctx, s.store.DB, v)
		if err != nil {
			return stats, RowError(rec.Line, err)
		}
		if created {
			stats.Inserted++
		}
	}
}

// importNative reads the header itself and streams the remaining bytes to
// the engine's bulk loader.
func (s *Service) importNative(ctx context.Context, def EntityDefinition, r io.Reader) (ImportStats, error) {
	native, err := s.native()
	if err != nil {
		return ImportStats{}, err
	}

	counter := csvio.NewCountingReader(r)
	br := csvio.NewBOMSkippingReader(counter)
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ImportStats{}, fmt.Errorf("read header: %w", err)
	}

	hr := csvio.NewReader(strings.NewReader(line))
	header, err := hr.Header()
	if err != nil {
		return ImportStats{}, err
	}
	if err := header.Check(def.ColumnNames(), def.Info.Required); err != nil {
		return ImportStats{}, err
	}

	in := store.CopyIn{Table: def.Info.Table, TimeZone: s.zone.Name()}
	for _, name := range hr.HeaderNames() {
		in.Columns = append(in.Columns, name)
		if col, ok := def.column(name); ok && col.Nullable {
			in.ForceNull = append(in.ForceNull, name)
		}
	}

	n, err := native.CopyIn(ctx, br, in)
	stats := ImportStats{Rows: n, Inserted: n, Bytes: counter.BytesRead}
	return stats, err
}
