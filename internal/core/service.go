package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvport/internal/config"
	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store"
)

// Service provides the export and import operations.
type Service struct {
	store       *store.Store
	zone        *csvio.Zone
	exportDir   string
	exportBatch int
	importBatch int
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of run start times, file name
// timestamps and default record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithExportDir overrides the configured export directory.
func WithExportDir(dir string) Option {
	return func(s *Service) { s.exportDir = dir }
}

// WithBatchSizes overrides the configured export and import batch sizes.
func WithBatchSizes(export, imp int) Option {
	return func(s *Service) {
		s.exportBatch = export
		s.importBatch = imp
	}
}

// NewService creates a new Service instance.
func NewService(st *store.Store, cfg *config.Config, opts ...Option) (*Service, error) {
	zone, err := csvio.LoadZone(cfg.Export.TimeZone)
	if err != nil {
		return nil, &ConfigError{Setting: "CSV_TIME_ZONE", Value: cfg.Export.TimeZone, Err: err}
	}

	s := &Service{
		store:       st,
		zone:        zone,
		exportDir:   cfg.Export.Dir,
		exportBatch: cfg.Export.BatchSize,
		importBatch: cfg.Import.BatchSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.exportBatch <= 0 {
		return nil, &ConfigError{Setting: "EXPORT_BATCH_SIZE", Value: fmt.Sprint(s.exportBatch), Err: ErrInvalidOption}
	}
	if s.importBatch <= 0 {
		return nil, &ConfigError{Setting: "IMPORT_BATCH_SIZE", Value: fmt.Sprint(s.importBatch), Err: ErrInvalidOption}
	}
	return s, nil
}

// Zone returns the time zone used for CSV timestamps.
func (s *Service) Zone() *csvio.Zone {
	return s.zone
}

// ListEntities returns information about all registered entities.
func (s *Service) ListEntities() []EntityInfo {
	defs := All()
	infos := make([]EntityInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Migrate creates missing tables and indexes.
func (s *Service) Migrate(ctx context.Context) error {
	return store.Migrate(ctx, s.store.DB)
}

// Reset deletes all stored records and the transfer history.
func (s *Service) Reset(ctx context.Context) error {
	return store.Reset(ctx, s.store.DB)
}

// Count returns the number of stored records of an entity.
func (s *Service) Count(ctx context.Context, key string) (int, error) {
	def, err := Lookup(key)
	if err != nil {
		return 0, err
	}
	return store.Count(ctx, s.store.DB, def.Model)
}

// History returns up to limit recorded runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.Transfer, error) {
	return store.RecentTransfers(ctx, s.store.DB, limit)
}

// CSVName returns the file name an export of key started now would use.
func (s *Service) CSVName(key string) string {
	return csvio.FileName(key, s.zone.In(s.now()))
}
