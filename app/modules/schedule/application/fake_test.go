package scheduleservice

import (
	"context"
	"strconv"
	"time"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Schedule Repo
// ------------------------

type FakeScheduleRepo struct {
	trace []string

	events  []scheduledomain.Event
	members []scheduledomain.Member

	LoadEventsFunc  func(ctx context.Context, db bun.IDB) ([]scheduledomain.Event, error)
	SaveEventsFunc  func(ctx context.Context, db bun.IDB, events []scheduledomain.Event) error
	LoadMembersFunc func(ctx context.Context, db bun.IDB) ([]scheduledomain.Member, error)
	SaveMembersFunc func(ctx context.Context, db bun.IDB, members []scheduledomain.Member) error
}

func NewFakeScheduleRepo() *FakeScheduleRepo {
	return &FakeScheduleRepo{
		trace: []string{},
	}
}

func (f *FakeScheduleRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScheduleRepo) Trace() []string {
	return f.trace
}

// --- Repository Interface Implementation ---

func (f *FakeScheduleRepo) LoadEvents(ctx context.Context, db bun.IDB) ([]scheduledomain.Event, error) {
	f.record("LoadEvents")
	if f.LoadEventsFunc != nil {
		return f.LoadEventsFunc(ctx, db)
	}
	return f.events, nil
}

func (f *FakeScheduleRepo) SaveEvents(ctx context.Context, db bun.IDB, events []scheduledomain.Event) error {
	f.record("SaveEvents")
	if f.SaveEventsFunc != nil {
		return f.SaveEventsFunc(ctx, db, events)
	}
	f.events = events
	return nil
}

func (f *FakeScheduleRepo) LoadMembers(ctx context.Context, db bun.IDB) ([]scheduledomain.Member, error) {
	f.record("LoadMembers")
	if f.LoadMembersFunc != nil {
		return f.LoadMembersFunc(ctx, db)
	}
	return f.members, nil
}

func (f *FakeScheduleRepo) SaveMembers(ctx context.Context, db bun.IDB, members []scheduledomain.Member) error {
	f.record("SaveMembers")
	if f.SaveMembersFunc != nil {
		return f.SaveMembersFunc(ctx, db, members)
	}
	f.members = members
	return nil
}

// ------------------------
// Fixed clock and IDs
// ------------------------

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}
