package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/models"
)

// Pair identifies a membership by its project and user.
type Pair struct {
	ProjectID int64
	UserID    int64
}

// SelectMemberships reads one page of memberships.
func SelectMemberships(ctx context.Context, db bun.IDB, page Page) ([]models.Membership, error) {
	var ms []models.Membership
	q := db.NewSelect().Model(&ms)
	if err := page.Apply(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select memberships: %w", err)
	}
	return ms, nil
}

// InsertMemberships writes memberships with one multi-row insert.
func InsertMemberships(ctx context.Context, db bun.IDB, ms []models.Membership) (int64, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	res, err := db.NewInsert().Model(&ms).Returning("NULL").Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert memberships: %w", err)
	}
	return res.RowsAffected()
}

// InsertMembership writes one membership and sets its id.
func InsertMembership(ctx context.Context, db bun.IDB, m *models.Membership) error {
	if _, err := db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// FindMembership returns the first membership for the pair or ErrNotFound.
func FindMembership(ctx context.Context, db bun.IDB, pair Pair) (*models.Membership, error) {
	m := new(models.Membership)
	err := db.NewSelect().Model(m).
		Where("?TableAlias.project_id = ?", pair.ProjectID).
		Where("?TableAlias.user_id = ?", pair.UserID).
		OrderExpr("?TableAlias.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// MembershipPairs returns the stored pairs for the given users.
func MembershipPairs(ctx context.Context, db bun.IDB, userIDs []int64) (map[Pair]bool, error) {
	pairs := make(map[Pair]bool)
	if len(userIDs) == 0 {
		return pairs, nil
	}
	var ms []models.Membership
	err := db.NewSelect().Model(&ms).
		Column("project_id", "user_id").
		Where("?TableAlias.user_id IN (?)", bun.In(userIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select membership pairs: %w", err)
	}
	for _, m := range ms {
		pairs[Pair{ProjectID: m.ProjectID, UserID: m.UserID}] = true
	}
	return pairs, nil
}

type projectLink struct {
	UserID      int64  `bun:"user_id"`
	ProjectName string `bun:"project_name"`
}

// ProjectNamesByUser returns, for each of the given users, the names of
// their projects ordered by project id. One query serves the whole batch.
func ProjectNamesByUser(ctx context.Context, db bun.IDB, userIDs []int64) (map[int64][]string, error) {
	names := make(map[int64][]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	var links []projectLink
	err := db.NewSelect().
		TableExpr("memberships AS m").
		ColumnExpr("m.user_id").
		ColumnExpr("p.name AS project_name").
		Join("JOIN projects AS p ON p.id = m.project_id").
		Where("m.user_id IN (?)", bun.In(userIDs)).
		OrderExpr("m.user_id ASC, p.id ASC, m.id ASC").
		Scan(ctx, &links)
	if err != nil {
		return nil, fmt.Errorf("select project names: %w", err)
	}
	for _, l := range links {
		names[l.UserID] = append(names[l.UserID], l.ProjectName)
	}
	return names, nil
}
