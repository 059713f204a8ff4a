package actionservice

import (
	"context"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	actiondb "github.com/Black-And-White-Club/marathon-manager/app/modules/action/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
)

type buttonResult = results.OperationResult[*actiondomain.ActionButton, error]

func (s *ActionService) ListButtons(ctx context.Context) ([]actiondomain.ActionButton, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]actiondomain.ActionButton, len(s.state.Buttons))
	for i, b := range s.state.Buttons {
		out[i] = b.Clone()
	}
	return out, nil
}

func (s *ActionService) GetButton(ctx context.Context, buttonID string) (*actiondomain.ActionButton, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := buttonIndex(&s.state, buttonID); i >= 0 {
		b := s.state.Buttons[i].Clone()
		return &b, nil
	}
	return nil, ErrButtonNotFound
}

// CreateButton assigns a new id and appends the button.
func (s *ActionService) CreateButton(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error) {
	result, err := withTelemetry(s, ctx, "CreateActionButton", button.Label, func(ctx context.Context) (buttonResult, error) {
		if err := button.Validate(); err != nil {
			return results.FailureResult[*actiondomain.ActionButton, error](err), nil
		}
		return mutate(s, ctx, func(next *actiondb.Snapshot) (buttonResult, bool) {
			b := button.Clone()
			b.ID = s.newID()
			if b.Actions == nil {
				b.Actions = []actiondomain.ActionModule{}
			}
			next.Buttons = append(next.Buttons, b)
			out := b.Clone()
			return results.SuccessResult[*actiondomain.ActionButton, error](&out), true
		})
	})
	return unwrap(result, err)
}

func (s *ActionService) UpdateButton(ctx context.Context, button actiondomain.ActionButton) (*actiondomain.ActionButton, error) {
	result, err := withTelemetry(s, ctx, "UpdateActionButton", button.ID, func(ctx context.Context) (buttonResult, error) {
		if err := button.Validate(); err != nil {
			return results.FailureResult[*actiondomain.ActionButton, error](err), nil
		}
		return mutate(s, ctx, func(next *actiondb.Snapshot) (buttonResult, bool) {
			i := buttonIndex(next, button.ID)
			if i < 0 {
				return results.FailureResult[*actiondomain.ActionButton, error](ErrButtonNotFound), false
			}
			next.Buttons[i] = button.Clone()
			out := button.Clone()
			return results.SuccessResult[*actiondomain.ActionButton, error](&out), true
		})
	})
	return unwrap(result, err)
}

// DeleteButton removes the button and its activation record.
func (s *ActionService) DeleteButton(ctx context.Context, buttonID string) error {
	result, err := withTelemetry(s, ctx, "DeleteActionButton", buttonID, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return mutate(s, ctx, func(next *actiondb.Snapshot) (results.OperationResult[struct{}, error], bool) {
			i := buttonIndex(next, buttonID)
			if i < 0 {
				return results.FailureResult[struct{}, error](ErrButtonNotFound), false
			}
			next.Buttons = append(next.Buttons[:i], next.Buttons[i+1:]...)
			next.Activations = removeActivation(next.Activations, buttonID)
			return results.SuccessResult[struct{}, error](struct{}{}), true
		})
	})
	_, err = unwrap(result, err)
	return err
}

// VisibleButtons lists the buttons offered for a run, in configured order.
func (s *ActionService) VisibleButtons(ctx context.Context, eventID, runID string) ([]actiondomain.ActionButton, error) {
	run, err := s.runs.GetRun(ctx, eventID, runID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []actiondomain.ActionButton{}
	for _, b := range s.state.Buttons {
		if b.Visible(*run) {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

func removeActivation(records []actiondomain.ActivationRecord, buttonID string) []actiondomain.ActivationRecord {
	out := records[:0]
	for _, r := range records {
		if r.TagID != buttonID {
			out = append(out, r)
		}
	}
	return out
}
