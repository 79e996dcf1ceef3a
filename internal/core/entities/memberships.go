package entities

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/core"
	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store"
)

func registerMemberships() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:        "memberships",
			Label:      "Memberships",
			Table:      "memberships",
			Required:   []string{"project_id", "user_id"},
			NaturalKey: []string{"project_id", "user_id"},
		},
		Model: (*models.Membership)(nil),
		Columns: []store.Column{
			{Name: "id", Kind: store.KindInt},
			{Name: "project_id", Kind: store.KindInt},
			{Name: "user_id", Kind: store.KindInt},
			{Name: "created_at", Kind: store.KindTimestamp},
			{Name: "updated_at", Kind: store.KindTimestamp},
		},
		ExportBatch:  exportMemberships,
		Decode:       decodeMembership,
		InsertBatch:  insertMemberships,
		FindOrCreate: findOrCreateMembership,
	})
}

func exportMemberships(ctx context.Context, db bun.IDB, page store.Page, z *csvio.Zone) (core.Batch, error) {
	ms, err := store.SelectMemberships(ctx, db, page)
	if err != nil {
		return core.Batch{}, err
	}

	batch := core.Batch{Rows: make([][]string, 0, len(ms)), Records: len(ms)}
	for _, m := range ms {
		batch.Rows = append(batch.Rows, []string{
			csvio.FormatInt(m.ID),
			csvio.FormatInt(m.ProjectID),
			csvio.FormatInt(m.UserID),
			z.Human(m.CreatedAt),
			z.Human(m.UpdatedAt),
		})
		batch.LastID = m.ID
	}
	return batch, nil
}

func decodeMembership(rec csvio.Record, d core.Decoding) (any, error) {
	m := &models.Membership{}

	var err error
	if m.ID, _, err = rec.Int64("id"); err != nil {
		return nil, err
	}
	if m.ProjectID, err = rec.RequiredInt64("project_id"); err != nil {
		return nil, err
	}
	if m.UserID, err = rec.RequiredInt64("user_id"); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = rec.Timestamp("created_at", d.Zone, d.Start); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = rec.Timestamp("updated_at", d.Zone, d.Start); err != nil {
		return nil, err
	}

	if err := models.Validate("membership", m); err != nil {
		return nil, err
	}
	return m, nil
}

func insertMemberships(ctx context.Context, db bun.IDB, values []any) (int64, error) {
	ms := make([]models.Membership, len(values))
	for i, v := range values {
		ms[i] = *v.(*models.Membership)
	}
	return store.InsertMemberships(ctx, db, ms)
}

// findOrCreateMembership keys memberships by (project_id, user_id).
func findOrCreateMembership(ctx context.Context, db bun.IDB, v any) (bool, error) {
	m := v.(*models.Membership)

	_, err := store.FindMembership(ctx, db, store.Pair{ProjectID: m.ProjectID, UserID: m.UserID})
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, err
	}

	if err := store.InsertMembership(ctx, db, m); err != nil {
		return false, err
	}
	return true, nil
}
