package actionhandlers

import (
	"context"

	actionservice "github.com/Black-And-White-Club/marathon-manager/app/modules/action/application"
	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
)

// FakeService implements actionservice.Service; unset funcs return zero values.
type FakeService struct {
	trace []string

	LoadFunc             func(ctx context.Context) error
	ListButtonsFunc      func(ctx context.Context) ([]actiondomain.ActionButton, error)
	GetButtonFunc        func(ctx context.Context, buttonID string) (*actiondomain.ActionButton, error)
	CreateButtonFunc     func(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error)
	UpdateButtonFunc     func(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error)
	DeleteButtonFunc     func(ctx context.Context, buttonID string) error
	VisibleButtonsFunc   func(ctx context.Context, eventID, runID string) ([]actiondomain.ActionButton, error)
	ExportFilesFunc      func() []actiondomain.ExportFile
	SaveExportFileFunc   func(ctx context.Context, file actiondomain.ExportFile) (*actiondomain.ExportFile, error)
	DeleteExportFileFunc func(ctx context.Context, name string) error
	ActivationsFunc      func(ctx context.Context) ([]actiondomain.ActivationRecord, error)
	TriggerFunc          func(ctx context.Context, req actionservice.TriggerRequest) (*actionservice.Report, error)
	RenderFunc           func(ctx context.Context, eventID, runID, template string, maxCharsPerLine int) (string, error)
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) Load(ctx context.Context) error {
	f.record("Load")
	if f.LoadFunc != nil {
		return f.LoadFunc(ctx)
	}
	return nil
}

func (f *FakeService) ListButtons(ctx context.Context) ([]actiondomain.ActionButton, error) {
	f.record("ListButtons")
	if f.ListButtonsFunc != nil {
		return f.ListButtonsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetButton(ctx context.Context, buttonID string) (*actiondomain.ActionButton, error) {
	f.record("GetButton")
	if f.GetButtonFunc != nil {
		return f.GetButtonFunc(ctx, buttonID)
	}
	return &actiondomain.ActionButton{ID: buttonID}, nil
}

func (f *FakeService) CreateButton(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error) {
	f.record("CreateButton")
	if f.CreateButtonFunc != nil {
		return f.CreateButtonFunc(ctx, button)
	}
	return &button, nil
}

func (f *FakeService) UpdateButton(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error) {
	f.record("UpdateButton")
	if f.UpdateButtonFunc != nil {
		return f.UpdateButtonFunc(ctx, button)
	}
	return &button, nil
}

func (f *FakeService) DeleteButton(ctx context.Context, buttonID string) error {
	f.record("DeleteButton")
	if f.DeleteButtonFunc != nil {
		return f.DeleteButtonFunc(ctx, buttonID)
	}
	return nil
}

func (f *FakeService) VisibleButtons(ctx context.Context, eventID, runID string) ([]actiondomain.ActionButton, error) {
	f.record("VisibleButtons")
	if f.VisibleButtonsFunc != nil {
		return f.VisibleButtonsFunc(ctx, eventID, runID)
	}
	return nil, nil
}

func (f *FakeService) ExportFiles() []actiondomain.ExportFile {
	f.record("ExportFiles")
	if f.ExportFilesFunc != nil {
		return f.ExportFilesFunc()
	}
	return nil
}

func (f *FakeService) SaveExportFile(ctx context.Context, file actiondomain.ExportFile) (*actiondomain.ExportFile, error) {
	f.record("SaveExportFile")
	if f.SaveExportFileFunc != nil {
		return f.SaveExportFileFunc(ctx, file)
	}
	return &file, nil
}

func (f *FakeService) DeleteExportFile(ctx context.Context, name string) error {
	f.record("DeleteExportFile")
	if f.DeleteExportFileFunc != nil {
		return f.DeleteExportFileFunc(ctx, name)
	}
	return nil
}

func (f *FakeService) Activations(ctx context.Context) ([]actiondomain.ActivationRecord, error) {
	f.record("Activations")
	if f.ActivationsFunc != nil {
		return f.ActivationsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) Trigger(ctx context.Context, req actionservice.TriggerRequest) (*actionservice.Report, error) {
	f.record("Trigger")
	if f.TriggerFunc != nil {
		return f.TriggerFunc(ctx, req)
	}
	return &actionservice.Report{ButtonID: req.ButtonID, RunID: req.RunID}, nil
}

func (f *FakeService) Render(ctx context.Context, eventID, runID, template string, maxCharsPerLine int) (string, error) {
	f.record("Render")
	if f.RenderFunc != nil {
		return f.RenderFunc(ctx, eventID, runID, template, maxCharsPerLine)
	}
	return "", nil
}

var _ actionservice.Service = (*FakeService)(nil)
