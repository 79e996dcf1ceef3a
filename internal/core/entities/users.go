package entities

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/core"
	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store"
)

// ErrUnknownProject is returned when a users file names a project that is
// not stored.
var ErrUnknownProject = errors.New("unknown project")

func registerUsers() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:           "users",
			Label:         "Users",
			Table:         "users",
			ExportColumns: []string{"id", "name", "email", "last_login_at", "project_name"},
			Required:      []string{"name", "email"},
			NaturalKey:    []string{"name"},
		},
		Model: (*models.User)(nil),
		Columns: []store.Column{
			{Name: "id", Kind: store.KindInt},
			{Name: "name", Kind: store.KindText},
			{Name: "email", Kind: store.KindText},
			{Name: "last_login_at", Kind: store.KindTimestamp, Nullable: true},
			{Name: "created_at", Kind: store.KindTimestamp},
			{Name: "updated_at", Kind: store.KindTimestamp},
		},
		ExtraImportColumns: []string{"project_name"},
		ExportBatch:        exportUsers,
		Decode:             decodeUser,
		InsertBatch:        insertUsers,
		FindOrCreate:       findOrCreateUser,
	})
}

// exportUsers writes one row per membership, or a single row with an empty
// project_name for users without any.
func exportUsers(ctx context.Context, db bun.IDB, page store.Page, z *csvio.Zone) (core.Batch, error) {
	users, err := store.SelectUsers(ctx, db, page, "id", "name", "email", "last_login_at")
	if err != nil {
		return core.Batch{}, err
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	projects, err := store.ProjectNamesByUser(ctx, db, ids)
	if err != nil {
		return core.Batch{}, err
	}

	batch := core.Batch{Rows: make([][]string, 0, len(users)), Records: len(users)}
	for _, u := range users {
		names := projects[u.ID]
		if len(names) == 0 {
			names = []string{""}
		}
		for _, name := range names {
			batch.Rows = append(batch.Rows, []string{
				csvio.FormatInt(u.ID),
				u.Name,
				u.Email,
				z.FormatNullHuman(u.LastLoginAt),
				name,
			})
		}
		batch.LastID = u.ID
	}
	return batch, nil
}

// userRow is a decoded users row. Flattened files repeat the user once per
// project.
type userRow struct {
	User        models.User
	ProjectName string
	Line        int
	Start       time.Time
}

func decodeUser(rec csvio.Record, d core.Decoding) (any, error) {
	r := &userRow{
		ProjectName: strings.TrimSpace(rec.String("project_name")),
		Line:        rec.Line,
		Start:       d.Start,
	}
	u := &r.User

	var err error
	if u.ID, _, err = rec.Int64("id"); err != nil {
		return nil, err
	}
	if u.Name, err = rec.RequiredText("name"); err != nil {
		return nil, err
	}
	if u.Email, err = rec.RequiredText("email"); err != nil {
		return nil, err
	}
	if u.LastLoginAt, err = rec.NullTimestamp("last_login_at", d.Zone); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = rec.Timestamp("created_at", d.Zone, d.Start); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = rec.Timestamp("updated_at", d.Zone, d.Start); err != nil {
		return nil, err
	}

	if err := models.Validate("user", u); err != nil {
		return nil, err
	}
	return r, nil
}

// insertUsers stores the first row of each user name in the batch, skipping
// names already stored, then links the rows' projects.
func insertUsers(ctx context.Context, db bun.IDB, values []any) (int64, error) {
	rows := make([]*userRow, len(values))
	names := make([]string, len(values))
	for i, v := range values {
		rows[i] = v.(*userRow)
		names[i] = rows[i].User.Name
	}

	// A stored name never reaches the insert: a conflicting row would still
	// draw an id from the sequence.
	stored, err := store.UserIDsByName(ctx, db, names)
	if err != nil {
		return 0, err
	}
	users := make([]models.User, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if _, ok := stored[r.User.Name]; ok || seen[r.User.Name] {
			continue
		}
		seen[r.User.Name] = true
		users = append(users, r.User)
	}

	n, err := store.InsertUsers(ctx, db, users)
	if err != nil {
		return 0, err
	}
	if err := linkProjects(ctx, db, rows); err != nil {
		return n, err
	}
	return n, nil
}

// findOrCreateUser keys users by name. Project links are added for found
// and created users alike.
func findOrCreateUser(ctx context.Context, db bun.IDB, v any) (bool, error) {
	r := v.(*userRow)

	var created bool
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := store.FindUserByName(ctx, tx, r.User.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			u := r.User
			if err := store.InsertUser(ctx, tx, &u); err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		}
		return linkProjects(ctx, tx, []*userRow{r})
	})
	return created, err
}

// linkProjects creates the memberships named by rows' project_name that do
// not exist yet. The users must already be stored.
func linkProjects(ctx context.Context, db bun.IDB, rows []*userRow) error {
	var projectNames, userNames []string
	for _, r := range rows {
		if r.ProjectName == "" {
			continue
		}
		projectNames = append(projectNames, r.ProjectName)
		userNames = append(userNames, r.User.Name)
	}
	if len(projectNames) == 0 {
		return nil
	}

	projectIDs, err := store.ProjectIDsByName(ctx, db, projectNames)
	if err != nil {
		return err
	}
	userIDs, err := store.UserIDsByName(ctx, db, userNames)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id)
	}
	existing, err := store.MembershipPairs(ctx, db, ids)
	if err != nil {
		return err
	}

	var ms []models.Membership
	for _, r := range rows {
		if r.ProjectName == "" {
			continue
		}
		projectID, ok := projectIDs[r.ProjectName]
		if !ok {
			return &csvio.ParseError{Line: r.Line, Column: "project_name", Value: r.ProjectName, Err: ErrUnknownProject}
		}
		pair := store.Pair{ProjectID: projectID, UserID: userIDs[r.User.Name]}
		if existing[pair] {
			continue
		}
		existing[pair] = true

		m := models.Membership{ProjectID: pair.ProjectID, UserID: pair.UserID}
		m.Touch(r.Start)
		ms = append(ms, m)
	}

	_, err = store.InsertMemberships(ctx, db, ms)
	return err
}
