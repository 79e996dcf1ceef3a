package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/models"
)

// SelectProjects reads one page of projects with the given columns.
func SelectProjects(ctx context.Context, db bun.IDB, page Page, columns ...string) ([]models.Project, error) {
	var projects []models.Project
	q := db.NewSelect().Model(&projects)
	if len(columns) > 0 {
		q = q.Column(columns...)
	}
	if err := page.Apply(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	return projects, nil
}

// InsertProjects writes projects with one multi-row insert.
func InsertProjects(ctx context.Context, db bun.IDB, projects []models.Project) (int64, error) {
	if len(projects) == 0 {
		return 0, nil
	}
	res, err := db.NewInsert().Model(&projects).Returning("NULL").Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert projects: %w", err)
	}
	return res.RowsAffected()
}

// InsertProject writes one project and sets its id.
func InsertProject(ctx context.Context, db bun.IDB, p *models.Project) error {
	if _, err := db.NewInsert().Model(p).Exec(ctx); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// FindProjectByName returns the project named name or ErrNotFound.
func FindProjectByName(ctx context.Context, db bun.IDB, name string) (*models.Project, error) {
	p := new(models.Project)
	err := db.NewSelect().Model(p).Where("?TableAlias.name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ProjectNameTaken reports whether another project already uses name.
func ProjectNameTaken(ctx context.Context, db bun.IDB, name string, exceptID int64) (bool, error) {
	return db.NewSelect().Model((*models.Project)(nil)).
		Where("?TableAlias.name = ?", name).
		Where("?TableAlias.id <> ?", exceptID).
		Exists(ctx)
}

// ProjectExists reports whether a project with id exists.
func ProjectExists(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	return db.NewSelect().Model((*models.Project)(nil)).Where("?TableAlias.id = ?", id).Exists(ctx)
}

// ProjectIDsByName maps each stored name in names to its project id.
func ProjectIDsByName(ctx context.Context, db bun.IDB, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}
	var projects []models.Project
	err := db.NewSelect().Model(&projects).
		Column("id", "name").
		Where("?TableAlias.name IN (?)", bun.In(names)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select project ids: %w", err)
	}
	for _, p := range projects {
		ids[p.Name] = p.ID
	}
	return ids, nil
}
