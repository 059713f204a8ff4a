//go:build integration

package app_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Black-And-White-Club/marathon-manager/app"
	actionservice "github.com/Black-And-White-Club/marathon-manager/app/modules/action/application"
	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	scheduleservice "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/application"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/observability"
	"github.com/Black-And-White-Club/marathon-manager/config"
	"github.com/Black-And-White-Club/marathon-manager/integration_tests/containers"
	"github.com/Black-And-White-Club/marathon-manager/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, connStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		panic(err)
	}
	dsn = connStr

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = dsn
	obs, err := observability.NewWithWriter(observability.Config{LogLevel: "debug"}, io.Discard)
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg, obs)
	require.NoError(t, err)
	return a
}

func TestMemberCascadeAndExportOnPostgres(t *testing.T) {
	ctx := context.Background()
	gen := testutils.NewTestDataGenerator(42)
	t.Logf("seed %d", gen.Seed())

	a := newApp(t)
	schedule := a.ScheduleModule.ScheduleService
	actions := a.ActionModule.ActionService

	members := gen.Members(2)
	for i := range members {
		created, err := schedule.CreateMember(ctx, members[i])
		require.NoError(t, err)
		members[i] = *created
	}

	event, err := schedule.CreateEvent(ctx, scheduleservice.EventInput{Name: "Integration Marathon"})
	require.NoError(t, err)
	run, err := schedule.AddRun(ctx, event.ID, gen.Run(members...))
	require.NoError(t, err)

	renamed := members[0]
	renamed.Name = "Renamed Runner"
	_, err = schedule.UpdateMember(ctx, renamed)
	require.NoError(t, err)

	_, err = actions.SaveExportFile(ctx, actiondomain.ExportFile{Name: "runner.txt", Template: "<item property='runners' index='0'>{runners[name]}</item>"})
	require.NoError(t, err)
	dest := t.TempDir()
	button, err := actions.CreateButton(ctx, gen.ExportButton(dest))
	require.NoError(t, err)

	report, err := actions.Trigger(ctx, actionservice.TriggerRequest{ButtonID: button.ID, EventID: event.ID, RunID: run.ID})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	data, err := os.ReadFile(filepath.Join(dest, "runner.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed Runner", string(data))

	require.NoError(t, a.Close())

	// the cascade and the button are persisted
	reopened := newApp(t)
	defer reopened.Close()

	got, err := reopened.ScheduleModule.ScheduleService.GetRun(ctx, event.ID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Runner", got.Runners[0].Name)

	buttons, err := reopened.ActionModule.ActionService.ListButtons(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, buttons)
}
