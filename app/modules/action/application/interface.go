package actionservice

import (
	"context"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
)

// TriggerRequest fires a button for one run.
type TriggerRequest struct {
	ButtonID  string `json:"buttonId"`
	EventID   string `json:"eventId"`
	RunID     string `json:"runId"`
	Confirmed bool   `json:"confirmed"`
}

// Service defines the action button operations.
type Service interface {
	Load(ctx context.Context) error

	ListButtons(ctx context.Context) ([]actiondomain.ActionButton, error)
	GetButton(ctx context.Context, buttonID string) (*actiondomain.ActionButton, error)
	CreateButton(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error)
	UpdateButton(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error)
	DeleteButton(ctx context.Context, buttonID string) error
	VisibleButtons(ctx context.Context, eventID, runID string) ([]actiondomain.ActionButton, error)

	ExportFiles() []actiondomain.ExportFile
	SaveExportFile(ctx context.Context, file actiondomain.ExportFile) (*actiondomain.ExportFile, error)
	DeleteExportFile(ctx context.Context, name string) error

	Activations(ctx context.Context) ([]actiondomain.ActivationRecord, error)
	Trigger(ctx context.Context, req TriggerRequest) (*Report, error)
	Render(ctx context.Context, eventID, runID, template string, maxCharsPerLine int) (string, error)
}

// RunSource looks runs up in the schedule.
type RunSource interface {
	GetRun(ctx context.Context, eventID, runID string) (*scheduledomain.Run, error)
}

// Executor dispatches modules for a run.
type Executor interface {
	Execute(ctx context.Context, modules []actiondomain.ActionModule, run scheduledomain.Run) *Report
}
