package schedulehandlers

import (
	"context"

	scheduleservice "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/application"
	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
)

// FakeService implements scheduleservice.Service for handler tests.
type FakeService struct {
	trace []string

	LoadFunc           func(ctx context.Context) error
	ListEventsFunc     func(ctx context.Context) ([]scheduledomain.Event, error)
	GetEventFunc       func(ctx context.Context, eventID string) (*scheduledomain.Event, error)
	CreateEventFunc    func(ctx context.Context, in scheduleservice.EventInput) (*scheduledomain.Event, error)
	UpdateEventFunc    func(ctx context.Context, eventID string, in scheduleservice.EventInput) (*scheduledomain.Event, error)
	DeleteEventFunc    func(ctx context.Context, eventID string) error
	GetRunFunc         func(ctx context.Context, eventID, runID string) (*scheduledomain.Run, error)
	AddRunFunc         func(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error)
	UpdateRunFunc      func(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error)
	RemoveRunFunc      func(ctx context.Context, eventID, runID string) error
	MoveRunFunc        func(ctx context.Context, eventID, runID string, toIndex int) error
	ListMembersFunc    func(ctx context.Context) ([]scheduledomain.Member, error)
	GetMemberFunc      func(ctx context.Context, memberID string) (*scheduledomain.Member, error)
	CreateMemberFunc   func(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error)
	UpdateMemberFunc   func(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error)
	RemoveMemberFunc   func(ctx context.Context, memberID string) error
	ImportRunsFunc     func(ctx context.Context, eventID, filename string, data []byte) ([]scheduledomain.Run, error)
	ScheduleChartFunc  func(ctx context.Context, eventID string) ([]byte, error)
	ScheduleQRCodeFunc func(ctx context.Context, eventID string, size int) ([]byte, error)
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Load(ctx context.Context) error {
	f.record("Load")
	if f.LoadFunc != nil {
		return f.LoadFunc(ctx)
	}
	return nil
}

func (f *FakeService) ListEvents(ctx context.Context) ([]scheduledomain.Event, error) {
	f.record("ListEvents")
	if f.ListEventsFunc != nil {
		return f.ListEventsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetEvent(ctx context.Context, eventID string) (*scheduledomain.Event, error) {
	f.record("GetEvent")
	if f.GetEventFunc != nil {
		return f.GetEventFunc(ctx, eventID)
	}
	return nil, scheduleservice.ErrEventNotFound
}

func (f *FakeService) CreateEvent(ctx context.Context, in scheduleservice.EventInput) (*scheduledomain.Event, error) {
	f.record("CreateEvent")
	if f.CreateEventFunc != nil {
		return f.CreateEventFunc(ctx, in)
	}
	return nil, nil
}

func (f *FakeService) UpdateEvent(ctx context.Context, eventID string, in scheduleservice.EventInput) (*scheduledomain.Event, error) {
	f.record("UpdateEvent")
	if f.UpdateEventFunc != nil {
		return f.UpdateEventFunc(ctx, eventID, in)
	}
	return nil, scheduleservice.ErrEventNotFound
}

func (f *FakeService) DeleteEvent(ctx context.Context, eventID string) error {
	f.record("DeleteEvent")
	if f.DeleteEventFunc != nil {
		return f.DeleteEventFunc(ctx, eventID)
	}
	return nil
}

func (f *FakeService) GetRun(ctx context.Context, eventID, runID string) (*scheduledomain.Run, error) {
	f.record("GetRun")
	if f.GetRunFunc != nil {
		return f.GetRunFunc(ctx, eventID, runID)
	}
	return nil, scheduleservice.ErrRunNotFound
}

func (f *FakeService) AddRun(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error) {
	f.record("AddRun")
	if f.AddRunFunc != nil {
		return f.AddRunFunc(ctx, eventID, run)
	}
	return &run, nil
}

func (f *FakeService) UpdateRun(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error) {
	f.record("UpdateRun")
	if f.UpdateRunFunc != nil {
		return f.UpdateRunFunc(ctx, eventID, run)
	}
	return &run, nil
}

func (f *FakeService) RemoveRun(ctx context.Context, eventID, runID string) error {
	f.record("RemoveRun")
	if f.RemoveRunFunc != nil {
		return f.RemoveRunFunc(ctx, eventID, runID)
	}
	return nil
}

func (f *FakeService) MoveRun(ctx context.Context, eventID, runID string, toIndex int) error {
	f.record("MoveRun")
	if f.MoveRunFunc != nil {
		return f.MoveRunFunc(ctx, eventID, runID, toIndex)
	}
	return nil
}

func (f *FakeService) ListMembers(ctx context.Context) ([]scheduledomain.Member, error) {
	f.record("ListMembers")
	if f.ListMembersFunc != nil {
		return f.ListMembersFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetMember(ctx context.Context, memberID string) (*scheduledomain.Member, error) {
	f.record("GetMember")
	if f.GetMemberFunc != nil {
		return f.GetMemberFunc(ctx, memberID)
	}
	return nil, scheduleservice.ErrMemberNotFound
}

func (f *FakeService) CreateMember(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error) {
	f.record("CreateMember")
	if f.CreateMemberFunc != nil {
		return f.CreateMemberFunc(ctx, member)
	}
	return &member, nil
}

func (f *FakeService) UpdateMember(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error) {
	f.record("UpdateMember")
	if f.UpdateMemberFunc != nil {
		return f.UpdateMemberFunc(ctx, member)
	}
	return &member, nil
}

func (f *FakeService) RemoveMember(ctx context.Context, memberID string) error {
	f.record("RemoveMember")
	if f.RemoveMemberFunc != nil {
		return f.RemoveMemberFunc(ctx, memberID)
	}
	return nil
}

func (f *FakeService) ImportRuns(ctx context.Context, eventID, filename string, data []byte) ([]scheduledomain.Run, error) {
	f.record("ImportRuns")
	if f.ImportRunsFunc != nil {
		return f.ImportRunsFunc(ctx, eventID, filename, data)
	}
	return nil, nil
}

func (f *FakeService) ScheduleChart(ctx context.Context, eventID string) ([]byte, error) {
	f.record("ScheduleChart")
	if f.ScheduleChartFunc != nil {
		return f.ScheduleChartFunc(ctx, eventID)
	}
	return nil, nil
}

func (f *FakeService) ScheduleQRCode(ctx context.Context, eventID string, size int) ([]byte, error) {
	f.record("ScheduleQRCode")
	if f.ScheduleQRCodeFunc != nil {
		return f.ScheduleQRCodeFunc(ctx, eventID, size)
	}
	return nil, nil
}

var _ scheduleservice.Service = (*FakeService)(nil)
