package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/models"
)

type index struct {
	model   any
	name    string
	unique  bool
	columns []string
}

var indexes = []index{
	{(*models.Project)(nil), "index_projects_on_name", true, []string{"name"}},
	{(*models.User)(nil), "index_users_on_name", true, []string{"name"}},
	{(*models.User)(nil), "index_users_on_lower_email", true, []string{"lower(email)"}},
	{(*models.Membership)(nil), "index_memberships_on_project_id_and_user_id", false, []string{"project_id", "user_id"}},
	{(*models.Membership)(nil), "index_memberships_on_user_id", false, []string{"user_id"}},
	{(*models.Transfer)(nil), "index_csv_transfers_on_started_at", false, []string{"started_at"}},
}

// Migrate creates every table and index that does not exist yet.
func Migrate(ctx context.Context, db bun.IDB) error {
	tables := []any{
		(*models.Project)(nil),
		(*models.User)(nil),
		(*models.Membership)(nil),
		(*models.Transfer)(nil),
	}
	for _, model := range tables {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	for _, ix := range indexes {
		q := db.NewCreateIndex().Model(ix.model).Index(ix.name).IfNotExists()
		if ix.unique {
			q = q.Unique()
		}
		for _, col := range ix.columns {
			q = q.ColumnExpr(col)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", ix.name, err)
		}
	}
	return nil
}

// Reset deletes every project, user, membership and transfer record and
// restarts id sequences.
func Reset(ctx context.Context, db bun.IDB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		steps := []struct {
			model any
			table string
		}{
			{(*models.Membership)(nil), "memberships"},
			{(*models.User)(nil), "users"},
			{(*models.Project)(nil), "projects"},
		}
		for _, step := range steps {
			if _, err := tx.NewDelete().Model(step.model).Where("1 = 1").Exec(ctx); err != nil {
				return fmt.Errorf("reset %s: %w", step.table, err)
			}
			if err := ResyncIDs(ctx, tx, step.table); err != nil {
				return err
			}
		}
		if _, err := tx.NewDelete().Model((*models.Transfer)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("reset csv_transfers: %w", err)
		}
		return nil
	})
}

// Count returns the number of rows stored for model.
func Count(ctx context.Context, db bun.IDB, model any) (int, error) {
	n, err := db.NewSelect().Model(model).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %T: %w", model, err)
	}
	return n, nil
}
