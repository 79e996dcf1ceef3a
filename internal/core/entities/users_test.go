package entities_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvport/internal/core"
	"github.com/JonMunkholm/csvport/internal/core/entities"
	"github.com/JonMunkholm/csvport/internal/csvio"
	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store/storetest"
)

const usersHeader = `"id","name","email","last_login_at","project_name"` + "\n"

// seedUsers stores alice with memberships in projects 3, 1 and 2 (added
// in that order) and bob without any.
func seedUsers(t *testing.T, svc *core.Service) {
	t.Helper()
	ctx := context.Background()
	projects := seedProjects(t, svc, 3)

	login := time.Date(2020, 1, 1, 15, 0, 0, 0, time.UTC)
	alice := &models.User{Name: "alice", Email: "alice@example.com", LastLoginAt: &login}
	require.NoError(t, svc.CreateUser(ctx, alice))
	require.NoError(t, svc.CreateUser(ctx, &models.User{Name: "bob", Email: "bob@example.com"}))

	for _, i := range []int{2, 0, 1} {
		_, err := svc.AddMembership(ctx, projects[i].ID, alice.ID)
		require.NoError(t, err)
	}
}

func TestExportUsersFlattensMemberships(t *testing.T) {
	svc := newService(t, storetest.SQLite(t))
	seedUsers(t, svc)

	want := csvio.BOM + usersHeader +
		`"1","alice","alice@example.com","2020-01-02 00:00:00","Project 1"` + "\n" +
		`"1","alice","alice@example.com","2020-01-02 00:00:00","Project 2"` + "\n" +
		`"1","alice","alice@example.com","2020-01-02 00:00:00","Project 3"` + "\n" +
		`"2","bob","bob@example.com","",""` + "\n"
	assert.Equal(t, want, exportString(t, svc, "users", core.ExportOptions{}))
}

func TestExportUsersLimitCountsUsers(t *testing.T) {
	svc := newService(t, storetest.SQLite(t), core.WithBatchSizes(1, 1000))
	seedUsers(t, svc)

	got := exportString(t, svc, "users", core.ExportOptions{Limit: ptr(1)})
	assert.Equal(t, 3, strings.Count(got, `"alice"`))
	assert.NotContains(t, got, "bob")

	got = exportString(t, svc, "users", core.ExportOptions{Offset: ptr(1)})
	assert.Equal(t, csvio.BOM+usersHeader+`"2","bob","bob@example.com","",""`+"\n", got)
}

func TestImportUsers(t *testing.T) {
	ctx := context.Background()
	data := "name,email,project_name\n" +
		"alice,alice@example.com,Project 1\n" +
		"alice,alice@example.com,Project 2\n" +
		"bob,bob@example.com,\n"

	for _, strategy := range []core.Strategy{core.StrategyBulk, core.StrategyFindOrCreate} {
		t.Run(string(strategy), func(t *testing.T) {
			svc := newService(t, storetest.SQLite(t), core.WithBatchSizes(1000, 1))
			seedProjects(t, svc, 2)

			stats, err := svc.ImportFrom(ctx, "users", strings.NewReader(data), strategy)
			require.NoError(t, err)
			assert.Equal(t, int64(3), stats.Rows)
			assert.Equal(t, int64(2), stats.Inserted)

			assertCount(t, svc, "users", 2)
			assertCount(t, svc, "memberships", 2)

			stats, err = svc.ImportFrom(ctx, "users", strings.NewReader(data), strategy)
			require.NoError(t, err)
			assert.Zero(t, stats.Inserted)
			assertCount(t, svc, "users", 2)
			assertCount(t, svc, "memberships", 2)

			got := exportString(t, svc, "users", core.ExportOptions{})
			assert.Contains(t, got, `"1","alice","alice@example.com","","Project 2"`)
			assert.Contains(t, got, `"2","bob","bob@example.com","",""`)
		})
	}
}

func TestImportUsersUnknownProject(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.SQLite(t))
	seedProjects(t, svc, 1)

	data := "name,email,project_name\n" +
		"alice,alice@example.com,Project 1\n" +
		"carol,carol@example.com,Nope\n"

	_, err := svc.ImportFrom(ctx, "users", strings.NewReader(data), core.StrategyBulk)
	require.ErrorIs(t, err, entities.ErrUnknownProject)

	var pe *csvio.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, "Nope", pe.Value)
	assert.Equal(t, "VAL008", core.MapError(err).Code)

	assertCount(t, svc, "users", 0)
	assertCount(t, svc, "memberships", 0)
}

func TestImportUsersEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.SQLite(t))

	data := "name,email\n" +
		"dave,dave@example.com\n" +
		"david,DAVE@example.com\n"

	_, err := svc.ImportFrom(ctx, "users", strings.NewReader(data), core.StrategyBulk)
	require.Error(t, err)
	assert.Equal(t, "DB002", core.MapError(err).Code)
	assertCount(t, svc, "users", 0)
}

func TestImportUsersTimestamps(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.SQLite(t))

	data := "name,email,last_login_at\n" +
		"alice,alice@example.com,2020-01-02 00:00:00\n" +
		"bob,bob@example.com,\n"
	_, err := svc.ImportFrom(ctx, "users", strings.NewReader(data), core.StrategyBulk)
	require.NoError(t, err)

	want := csvio.BOM + usersHeader +
		`"1","alice","alice@example.com","2020-01-02 00:00:00",""` + "\n" +
		`"2","bob","bob@example.com","",""` + "\n"
	assert.Equal(t, want, exportString(t, svc, "users", core.ExportOptions{}))
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.SQLite(t))
	seedUsers(t, svc)

	projects := exportString(t, svc, "projects", core.ExportOptions{})
	users := exportString(t, svc, "users", core.ExportOptions{})
	require.NoError(t, svc.Reset(ctx))

	_, err := svc.ImportFrom(ctx, "projects", strings.NewReader(projects), core.StrategyBulk)
	require.NoError(t, err)
	_, err = svc.ImportFrom(ctx, "users", strings.NewReader(users), core.StrategyBulk)
	require.NoError(t, err)

	assert.Equal(t, users, exportString(t, svc, "users", core.ExportOptions{}))
	assertCount(t, svc, "memberships", 3)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.SQLite(t))
	require.NoError(t, svc.CreateUser(ctx, &models.User{Name: "alice", Email: "alice@example.com"}))

	tests := []struct {
		name string
		user *models.User
		want map[string][]string
	}{
		{
			name: "blank fields",
			user: &models.User{},
			want: map[string][]string{
				"name":  {"can't be blank"},
				"email": {"can't be blank"},
			},
		},
		{
			name: "taken name and email in another case",
			user: &models.User{Name: "alice", Email: "ALICE@example.com"},
			want: map[string][]string{
				"name":  {"has already been taken"},
				"email": {"has already been taken"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateUser(ctx, tt.user)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Fields)
			assert.Zero(t, tt.user.ID)
		})
	}

	assertCount(t, svc, "users", 1)
}

func TestCreateProjectValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.SQLite(t))
	seedProjects(t, svc, 1)

	err := svc.CreateProject(ctx, &models.Project{Name: "Project 1"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "project is invalid: name has already been taken", verr.Error())

	err = svc.CreateProject(ctx, &models.Project{Name: "project 1"})
	require.NoError(t, err, "names are case-sensitive")
}

func assertCount(t *testing.T, svc *core.Service, key string, want int) {
	t.Helper()
	n, err := svc.Count(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, want, n, "%s count", key)
}
