package actionservice

import (
	"context"
	"slices"
	"strconv"
	"sync"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	actiondb "github.com/Black-And-White-Club/marathon-manager/app/modules/action/infrastructure/repositories"
	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	twitchclient "github.com/Black-And-White-Club/marathon-manager/app/modules/twitch/infrastructure/client"
	"github.com/Black-And-White-Club/marathon-manager/app/eventbus"
	"github.com/Black-And-White-Club/marathon-manager/pkg/obsws"
	"github.com/Black-And-White-Club/marathon-manager/pkg/textgen"
	"github.com/uptrace/bun"
)

// callLog is a goroutine-safe call log shared by the fakes.
type callLog struct {
	mu    sync.Mutex
	steps []string
}

func (t *callLog) record(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, step)
}

func (t *callLog) Trace() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.steps)
}

// ------------------------
// Fake Action Repo
// ------------------------

type FakeActionRepo struct {
	callLog
	snap actiondb.Snapshot

	LoadFunc func(ctx context.Context, db bun.IDB) (actiondb.Snapshot, error)
	SaveFunc func(ctx context.Context, db bun.IDB, snap actiondb.Snapshot) error
}

func NewFakeActionRepo() *FakeActionRepo {
	return &FakeActionRepo{}
}

func (f *FakeActionRepo) Load(ctx context.Context, db bun.IDB) (actiondb.Snapshot, error) {
	f.record("Load")
	if f.LoadFunc != nil {
		return f.LoadFunc(ctx, db)
	}
	return f.snap, nil
}

func (f *FakeActionRepo) Save(ctx context.Context, db bun.IDB, snap actiondb.Snapshot) error {
	f.record("Save")
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, snap)
	}
	f.snap = snap
	return nil
}

// ------------------------
// Fake Runs
// ------------------------

type FakeRuns struct {
	runs map[string]scheduledomain.Run

	GetRunFunc func(ctx context.Context, eventID, runID string) (*scheduledomain.Run, error)
}

func (f *FakeRuns) GetRun(ctx context.Context, eventID, runID string) (*scheduledomain.Run, error) {
	if f.GetRunFunc != nil {
		return f.GetRunFunc(ctx, eventID, runID)
	}
	run, ok := f.runs[eventID+"/"+runID]
	if !ok {
		return nil, errRunMissing
	}
	return &run, nil
}

// ------------------------
// Fake Executor
// ------------------------

type FakeExecutor struct {
	callLog

	ExecuteFunc func(ctx context.Context, modules []actiondomain.ActionModule, run scheduledomain.Run) *Report
}

func (f *FakeExecutor) Execute(ctx context.Context, modules []actiondomain.ActionModule, run scheduledomain.Run) *Report {
	f.record("Execute " + run.ID + " " + strconv.Itoa(len(modules)))
	if f.ExecuteFunc != nil {
		return f.ExecuteFunc(ctx, modules, run)
	}
	return &Report{RunID: run.ID}
}

// ------------------------
// Fake integrations
// ------------------------

type FakeBroadcaster struct {
	callLog
	batches [][]obsws.Request

	SendBatchFunc func(ctx context.Context, requests []obsws.Request) (*obsws.BatchResult, error)
}

func (f *FakeBroadcaster) SendBatch(ctx context.Context, requests []obsws.Request) (*obsws.BatchResult, error) {
	f.record("SendBatch " + strconv.Itoa(len(requests)))
	f.mu.Lock()
	f.batches = append(f.batches, requests)
	f.mu.Unlock()
	if f.SendBatchFunc != nil {
		return f.SendBatchFunc(ctx, requests)
	}
	result := &obsws.BatchResult{}
	for _, r := range requests {
		result.Results = append(result.Results, obsws.RequestResult{RequestType: r.RequestType, Success: true})
	}
	return result, nil
}

type FakeCommandUpdater struct {
	callLog

	UpdateCommandFunc func(ctx context.Context, id, message string) error
}

func (f *FakeCommandUpdater) UpdateCommand(ctx context.Context, id, message string) error {
	f.record("UpdateCommand " + id + " " + message)
	if f.UpdateCommandFunc != nil {
		return f.UpdateCommandFunc(ctx, id, message)
	}
	return nil
}

type FakeChannelEditor struct {
	callLog
	games map[string]string

	FindGameFunc    func(ctx context.Context, name string) (twitchclient.Game, bool, error)
	UpdateTitleFunc func(ctx context.Context, title string) error
	UpdateGameFunc  func(ctx context.Context, gameID string) error
}

func (f *FakeChannelEditor) FindGame(ctx context.Context, name string) (twitchclient.Game, bool, error) {
	f.record("FindGame " + name)
	if f.FindGameFunc != nil {
		return f.FindGameFunc(ctx, name)
	}
	id, ok := f.games[name]
	return twitchclient.Game{ID: id, Name: name}, ok, nil
}

func (f *FakeChannelEditor) UpdateTitle(ctx context.Context, title string) error {
	f.record("UpdateTitle " + title)
	if f.UpdateTitleFunc != nil {
		return f.UpdateTitleFunc(ctx, title)
	}
	return nil
}

func (f *FakeChannelEditor) UpdateGame(ctx context.Context, gameID string) error {
	f.record("UpdateGame " + gameID)
	if f.UpdateGameFunc != nil {
		return f.UpdateGameFunc(ctx, gameID)
	}
	return nil
}

type FakeExporter struct {
	callLog

	ExportFunc func(ctx context.Context, files []actiondomain.ExportFile, destination string, run textgen.Source) error
}

func (f *FakeExporter) Export(ctx context.Context, files []actiondomain.ExportFile, destination string, run textgen.Source) error {
	f.record("Export " + destination + " " + strconv.Itoa(len(files)))
	if f.ExportFunc != nil {
		return f.ExportFunc(ctx, files, destination, run)
	}
	return nil
}

type FakeNotifier struct {
	mu            sync.Mutex
	notifications []eventbus.Notification
}

func (f *FakeNotifier) Notify(ctx context.Context, n eventbus.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *FakeNotifier) Levels() map[eventbus.Level]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[eventbus.Level]int{}
	for _, n := range f.notifications {
		out[n.Level]++
	}
	return out
}

type staticConfig settingsdomain.Configuration

func (c staticConfig) Configuration() settingsdomain.Configuration {
	return settingsdomain.Configuration(c)
}

type staticFiles []actiondomain.ExportFile

func (f staticFiles) ExportFiles() []actiondomain.ExportFile { return f }

// ------------------------
// IDs
// ------------------------

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}
