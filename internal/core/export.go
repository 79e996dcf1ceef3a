package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/logging"
	"github.com/JonMunkholm/csvport/internal/store"
)

// Export writes the human CSV of entity key to a new file in the export
// directory and records the run.
func (s *Service) Export(ctx context.Context, key string, opts ExportOptions) (res *RunResult, err error) {
	def, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	if err := checkOptions(opts); err != nil {
		return nil, err
	}

	path := filepath.Join(s.exportDir, s.CSVName(def.Info.Key))
	ctx, res, logger := s.beginRun(ctx, def.Info.Key, DirectionExport, StrategyORM, path)
	defer func() { s.finishRun(ctx, res, logger, err) }()

	err = s.writeFile(path, func(w io.Writer) error {
		n, err := s.exportORM(ctx, def, w, opts)
		res.Rows = n
		return err
	})
	return res, err
}

// ExportTo writes the human CSV of entity key to w.
func (s *Service) ExportTo(ctx context.Context, key string, w io.Writer, opts ExportOptions) (int64, error) {
	def, err := Lookup(key)
	if err != nil {
		return 0, err
	}
	if err := checkOptions(opts); err != nil {
		return 0, err
	}
	return s.exportORM(ctx, def, w, opts)
}

// ExportNative dumps every column of entity key through the database's bulk
// writer into a new file in the export directory. Engines without one fail
// with ErrNativeUnsupported before any file is created.
func (s *Service) ExportNative(ctx context.Context, key string, opts ExportOptions) (res *RunResult, err error) {
	def, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	native, err := s.native()
	if err != nil {
		return nil, err
	}
	if err := checkOptions(opts); err != nil {
		return nil, err
	}

	path := filepath.Join(s.exportDir, s.CSVName(def.Info.Key))
	ctx, res, logger := s.beginRun(ctx, def.Info.Key, DirectionExport, StrategyNative, path)
	defer func() { s.finishRun(ctx, res, logger, err) }()

	err = s.writeFile(path, func(w io.Writer) error {
		n, err := s.exportNative(ctx, def, native, w, opts)
		res.Rows = n
		return err
	})
	return res, err
}

// ExportNativeTo is ExportNative writing to w.
func (s *Service) ExportNativeTo(ctx context.Context, key string, w io.Writer, opts ExportOptions) (int64, error) {
	def, err := Lookup(key)
	if err != nil {
		return 0, err
	}
	native, err := s.native()
	if err != nil {
		return 0, err
	}
	if err := checkOptions(opts); err != nil {
		return 0, err
	}
	return s.exportNative(ctx, def, native, w, opts)
}

func (s *Service) native() (store.NativeBulk, error) {
	native, err := s.store.Native()
	if err != nil {
		return nil, &ConfigError{Setting: "DB_DRIVER", Value: s.store.Driver(), Err: err}
	}
	return native, nil
}

func checkOptions(opts ExportOptions) error {
	if opts.Offset != nil && *opts.Offset < 0 {
		return &ConfigError{Setting: "offset", Value: strconv.Itoa(*opts.Offset), Err: ErrInvalidOption}
	}
	if opts.Limit != nil && *opts.Limit < 0 {
		return &ConfigError{Setting: "limit", Value: strconv.Itoa(*opts.Limit), Err: ErrInvalidOption}
	}
	return nil
}

// writeFile creates path, hands it to write and closes it on every path.
func (s *Service) writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()
	return write(f)
}

// exportORM writes BOM, header and rows fetched in keyset batches.
func (s *Service) exportORM(ctx context.Context, def EntityDefinition, w io.Writer, opts ExportOptions) (int64, error) {
	logger := logging.FromContext(ctx)
	cw := csvio.NewWriter(w)
	if err := cw.WriteBOM(); err != nil {
		return 0, fmt.Errorf("write BOM: %w", err)
	}
	if err := cw.Write(def.Info.ExportColumns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	var rows int64
	err := s.paginate(ctx, opts, func(page store.Page) (Batch, error) {
		batch, err := def.ExportBatch(ctx, s.store.DB, page, s.zone)
		if err != nil {
			return Batch{}, err
		}
		for _, row := range batch.Rows {
			if err := cw.Write(row); err != nil {
				return Batch{}, fmt.Errorf("write row: %w", err)
			}
		}
		rows += int64(len(batch.Rows))
		logger.Debug("export batch written", "records", batch.Records, "rows", len(batch.Rows))
		return batch, nil
	})
	if err != nil {
		return rows, err
	}
	if err := cw.Flush(); err != nil {
		return rows, fmt.Errorf("flush: %w", err)
	}
	return rows, nil
}

// paginate calls fetch for consecutive keyset pages until the source or the
// limit is exhausted. The offset applies to the first page only; later
// pages continue after the last id seen.
func (s *Service) paginate(ctx context.Context, opts ExportOptions, fetch func(store.Page) (Batch, error)) error {
	remaining := -1
	if opts.Limit != nil {
		remaining = *opts.Limit
	}
	page := store.Page{Scope: opts.Scope}
	if opts.Offset != nil {
		page.Offset = *opts.Offset
	}

	for remaining != 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		size := s.exportBatch
		if remaining > 0 && remaining < size {
			size = remaining
		}
		page.Limit = size

		batch, err := fetch(page)
		if err != nil {
			return err
		}
		if batch.Records < size {
			return nil
		}
		if remaining > 0 {
			remaining -= batch.Records
		}
		last := batch.LastID
		page.After = &last
		page.Offset = 0
	}
	return nil
}

// exportNative writes the dump header and lets the engine stream the rows.
func (s *Service) exportNative(ctx context.Context, def EntityDefinition, native store.NativeBulk, w io.Writer, opts ExportOptions) (int64, error) {
	if err := csvio.NewWriter(w).WriteAll([][]string{def.ColumnNames()}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	if opts.Limit != nil && *opts.Limit == 0 {
		return 0, nil
	}

	page := store.Page{Scope: opts.Scope}
	if opts.Offset != nil {
		page.Offset = *opts.Offset
	}
	if opts.Limit != nil {
		page.Limit = *opts.Limit
	}
	query := store.NativeQuery(s.store.DB, def.Model, def.Columns, s.zone, page)
	return native.CopyOut(ctx, w, query)
}
