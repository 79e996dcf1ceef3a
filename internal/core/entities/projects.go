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

func registerProjects() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:           "projects",
			Label:         "Projects",
			Table:         "projects",
			ExportColumns: []string{"id", "name", "description"},
			Required:      []string{"name"},
			NaturalKey:    []string{"name"},
		},
		Model: (*models.Project)(nil),
		Columns: []store.Column{
			{Name: "id", Kind: store.KindInt},
			{Name: "name", Kind: store.KindText},
			{Name: "description", Kind: store.KindText, Nullable: true},
			{Name: "due_on", Kind: store.KindDate, Nullable: true},
			{Name: "created_at", Kind: store.KindTimestamp},
			{Name: "updated_at", Kind: store.KindTimestamp},
		},
		ExportBatch:  exportProjects,
		Decode:       decodeProject,
		InsertBatch:  insertProjects,
		FindOrCreate: findOrCreateProject,
	})
}

func exportProjects(ctx context.Context, db bun.IDB, page store.Page, _ *csvio.Zone) (core.Batch, error) {
	projects, err := store.SelectProjects(ctx, db, page, "id", "name", "description")
	if err != nil {
		return core.Batch{}, err
	}

	batch := core.Batch{Rows: make([][]string, 0, len(projects)), Records: len(projects)}
	for _, p := range projects {
		batch.Rows = append(batch.Rows, []string{
			csvio.FormatInt(p.ID),
			p.Name,
			csvio.FormatText(p.Description),
		})
		batch.LastID = p.ID
	}
	return batch, nil
}

func decodeProject(rec csvio.Record, d core.Decoding) (any, error) {
	p := &models.Project{Description: rec.NullText("description")}

	var err error
	if p.ID, _, err = rec.Int64("id"); err != nil {
		return nil, err
	}
	if p.Name, err = rec.RequiredText("name"); err != nil {
		return nil, err
	}
	if p.DueOn, err = rec.NullDate("due_on"); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = rec.Timestamp("created_at", d.Zone, d.Start); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = rec.Timestamp("updated_at", d.Zone, d.Start); err != nil {
		return nil, err
	}

	if err := models.Validate("project", p); err != nil {
		return nil, err
	}
	return p, nil
}

func insertProjects(ctx context.Context, db bun.IDB, values []any) (int64, error) {
	projects := make([]models.Project, len(values))
	for i, v := range values {
		projects[i] = *v.(*models.Project)
	}
	return store.InsertProjects(ctx, db, projects)
}

// findOrCreateProject keys projects by name.
func findOrCreateProject(ctx context.Context, db bun.IDB, v any) (bool, error) {
	p := v.(*models.Project)

	_, err := store.FindProjectByName(ctx, db, p.Name)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, err
	}

	if err := store.InsertProject(ctx, db, p); err != nil {
		return false, err
	}
	return true, nil
}
