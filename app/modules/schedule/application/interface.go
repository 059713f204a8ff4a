package scheduleservice

import (
	"context"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
)

// EventInput carries the editable event fields. StartsAt accepts RFC 3339 or
// natural language such as "saturday 5pm"; empty clears it.
type EventInput struct {
	Name         string `json:"name"`
	ScheduleLink string `json:"scheduleLink"`
	StartsAt     string `json:"startsAt"`
}

// Service defines the schedule operations: events, runs and members.
type Service interface {
	Load(ctx context.Context) error

	ListEvents(ctx context.Context) ([]scheduledomain.Event, error)
	GetEvent(ctx context.Context, eventID string) (*scheduledomain.Event, error)
	CreateEvent(ctx context.Context, in EventInput) (*scheduledomain.Event, error)
	UpdateEvent(ctx context.Context, eventID string, in EventInput) (*scheduledomain.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error

	GetRun(ctx context.Context, eventID, runID string) (*scheduledomain.Run, error)
	AddRun(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error)
	UpdateRun(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error)
	RemoveRun(ctx context.Context, eventID, runID string) error
	MoveRun(ctx context.Context, eventID, runID string, toIndex int) error

	ListMembers(ctx context.Context) ([]scheduledomain.Member, error)
	GetMember(ctx context.Context, memberID string) (*scheduledomain.Member, error)
	CreateMember(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error)
	UpdateMember(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error)
	RemoveMember(ctx context.Context, memberID string) error

	ImportRuns(ctx context.Context, eventID, filename string, data []byte) ([]scheduledomain.Run, error)
	ScheduleChart(ctx context.Context, eventID string) ([]byte, error)
	ScheduleQRCode(ctx context.Context, eventID string, size int) ([]byte, error)
}
