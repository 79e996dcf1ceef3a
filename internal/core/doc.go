// Package core provides the CSV export and import pipeline.
//
// This package holds the domain logic independent of any command line or
// transport layer. It can be used by the csvport CLI or by tests without
// modification.
//
// # Entity Registry
//
// Entities are registered at init time using [Register]. Each
// [EntityDefinition] carries everything needed to move one entity between
// storage and CSV:
//
//	core.Register(core.EntityDefinition{
//	    Info:         core.EntityInfo{Key: "projects", Table: "projects", ...},
//	    Model:        (*models.Project)(nil),
//	    Columns:      []store.Column{{Name: "id", Kind: store.KindInt}, ...},
//	    ExportBatch:  exportProjects,
//	    Decode:       decodeProject,
//	    InsertBatch:  insertProjects,
//	    FindOrCreate: findOrCreateProject,
//	})
//
// # Export
//
// [Service.Export] reads records in keyset batches ordered by id and writes a
// BOM, a quoted header and one quoted row per CSV line.
// [Service.ExportNative] hands the same projection to the database's own
// bulk writer when the engine has one.
//
// # Import
//
// [Service.Import] decodes a header-led CSV file and loads it with one of
// three strategies: multi-row inserts flushed every batch, per-row
// find-or-create by natural key, or the database's own bulk loader.
//
// Every run gets a uuid, is logged with it, and is recorded in the
// csv_transfers history table.
package core
