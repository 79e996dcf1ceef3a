package entities_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvport/internal/core"
	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store/storetest"
)

func TestNativeProjectsPostgres(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.Postgres(t))

	seedProjects(t, svc, 2)
	require.NoError(t, svc.CreateProject(ctx, &models.Project{Name: "Described", Description: ptr(`a "quoted", text`)}))

	var dump bytes.Buffer
	n, err := svc.ExportNativeTo(ctx, "projects", &dump, core.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	want := `"id","name","description","due_on","created_at","updated_at"` + "\n" +
		`"1","Project 1","","","2020-01-02 08:59:59.000000","2020-01-02 08:59:59.000000"` + "\n" +
		`"2","Project 2","","","2020-01-02 08:59:59.000000","2020-01-02 08:59:59.000000"` + "\n" +
		`"3","Described","a ""quoted"", text","","2020-01-02 08:59:59.000000","2020-01-02 08:59:59.000000"` + "\n"
	assert.Equal(t, want, dump.String())

	var limited bytes.Buffer
	n, err = svc.ExportNativeTo(ctx, "projects", &limited, core.ExportOptions{Offset: ptr(1), Limit: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, limited.String(), `"2","Project 2"`)

	require.NoError(t, svc.Reset(ctx))

	stats, err := svc.ImportFrom(ctx, "projects", strings.NewReader(dump.String()), core.StrategyNative)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Inserted)

	var again bytes.Buffer
	_, err = svc.ExportNativeTo(ctx, "projects", &again, core.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, again.String(), "NULLs and timestamps survive the round trip")

	p := &models.Project{Name: "After import"}
	require.NoError(t, svc.CreateProject(ctx, p))
	assert.Equal(t, int64(4), p.ID, "sequence continues after loaded ids")
}

func TestUsersPostgres(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.Postgres(t))
	seedUsers(t, svc)

	users := exportString(t, svc, "users", core.ExportOptions{})
	projects := exportString(t, svc, "projects", core.ExportOptions{})
	require.NoError(t, svc.Reset(ctx))

	_, err := svc.ImportFrom(ctx, "projects", strings.NewReader(projects), core.StrategyBulk)
	require.NoError(t, err)
	_, err = svc.ImportFrom(ctx, "users", strings.NewReader(users), core.StrategyBulk)
	require.NoError(t, err)

	assert.Equal(t, users, exportString(t, svc, "users", core.ExportOptions{}))

	u := &models.User{Name: "carol", Email: "carol@example.com"}
	require.NoError(t, svc.CreateUser(ctx, u))
	assert.Equal(t, int64(3), u.ID)
}

func TestFailedBulkImportResyncsPostgres(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storetest.Postgres(t), core.WithBatchSizes(1000, 2))

	data := "id,name\n" +
		"1,Project 1\n" +
		"2,Project 2\n" +
		"3,Project 1\n"
	stats, err := svc.ImportFrom(ctx, "projects", strings.NewReader(data), core.StrategyBulk)
	require.Error(t, err)
	assert.Equal(t, "DB001", core.MapError(err).Code)
	assert.Equal(t, int64(2), stats.Inserted)
	assertCount(t, svc, "projects", 2)

	p := &models.Project{Name: "After failure"}
	require.NoError(t, svc.CreateProject(ctx, p))
	assert.Equal(t, int64(3), p.ID)
}
