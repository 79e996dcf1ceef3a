package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/models"
)

// SelectUsers reads one page of users with the given columns.
func SelectUsers(ctx context.Context, db bun.IDB, page Page, columns ...string) ([]models.User, error) {
	var users []models.User
	q := db.NewSelect().Model(&users)
	if len(columns) > 0 {
		q = q.Column(columns...)
	}
	if err := page.Apply(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

// InsertUsers writes users with one multi-row insert. Rows whose name is
// already stored are skipped, so a flattened users file loads each user once.
func InsertUsers(ctx context.Context, db bun.IDB, users []models.User) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}
	res, err := db.NewInsert().
		Model(&users).
		On("CONFLICT (name) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert users: %w", err)
	}
	return res.RowsAffected()
}

// InsertUser writes one user and sets its id.
func InsertUser(ctx context.Context, db bun.IDB, u *models.User) error {
	if _, err := db.NewInsert().Model(u).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByName returns the user named name or ErrNotFound.
func FindUserByName(ctx context.Context, db bun.IDB, name string) (*models.User, error) {
	u := new(models.User)
	err := db.NewSelect().Model(u).Where("?TableAlias.name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// UserNameTaken reports whether another user already uses name.
func UserNameTaken(ctx context.Context, db bun.IDB, name string, exceptID int64) (bool, error) {
	return db.NewSelect().Model((*models.User)(nil)).
		Where("?TableAlias.name = ?", name).
		Where("?TableAlias.id <> ?", exceptID).
		Exists(ctx)
}

// UserEmailTaken reports whether another user already uses email, ignoring case.
func UserEmailTaken(ctx context.Context, db bun.IDB, email string, exceptID int64) (bool, error) {
	return db.NewSelect().Model((*models.User)(nil)).
		Where("lower(?TableAlias.email) = lower(?)", email).
		Where("?TableAlias.id <> ?", exceptID).
		Exists(ctx)
}

// UserExists reports whether a user with id exists.
func UserExists(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	return db.NewSelect().Model((*models.User)(nil)).Where("?TableAlias.id = ?", id).Exists(ctx)
}

// UserIDsByName maps each stored name in names to its user id.
func UserIDsByName(ctx context.Context, db bun.IDB, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}
	var users []models.User
	err := db.NewSelect().Model(&users).
		Column("id", "name").
		Where("?TableAlias.name IN (?)", bun.In(names)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select user ids: %w", err)
	}
	for _, u := range users {
		ids[u.Name] = u.ID
	}
	return ids, nil
}
