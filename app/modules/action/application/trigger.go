package actionservice

import (
	"context"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	actiondb "github.com/Black-And-White-Club/marathon-manager/app/modules/action/infrastructure/repositories"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
)

func (s *ActionService) Activations(ctx context.Context) ([]actiondomain.ActivationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]actiondomain.ActivationRecord{}, s.state.Activations...), nil
}

// Trigger fires a button's enabled modules for a run. Module failures are
// reported in the Report, not as an error; the error covers the gates in
// front of the dispatch.
func (s *ActionService) Trigger(ctx context.Context, req TriggerRequest) (*Report, error) {
	result, err := withTelemetry(s, ctx, "TriggerAction", req.ButtonID, func(ctx context.Context) (results.OperationResult[*Report, error], error) {
		button, err := s.GetButton(ctx, req.ButtonID)
		if err != nil {
			return results.FailureResult[*Report, error](err), nil
		}
		if button.IsRequiredConfirmation && !req.Confirmed {
			return results.FailureResult[*Report, error](ErrConfirmationRequired), nil
		}

		run, err := s.runs.GetRun(ctx, req.EventID, req.RunID)
		if err != nil {
			return results.FailureResult[*Report, error](err), nil
		}
		if !button.Visible(*run) {
			return results.FailureResult[*Report, error](ErrButtonHidden), nil
		}

		if !s.acquire(button.ID) {
			return results.FailureResult[*Report, error](ErrActionInFlight), nil
		}
		defer s.release(button.ID)

		report := s.executor.Execute(ctx, actiondomain.Enabled(button.Actions), *run)
		report.ButtonID = button.ID

		// The activation only drives highlighting; a failed write is logged.
		if _, err := mutate(s, ctx, func(next *actiondb.Snapshot) (results.OperationResult[struct{}, error], bool) {
			next.Activations = append(removeActivation(next.Activations, button.ID), actiondomain.ActivationRecord{
				TagID: button.ID,
				RunID: run.ID,
			})
			return results.SuccessResult[struct{}, error](struct{}{}), true
		}); err != nil {
			s.logger.ErrorContext(ctx, "Failed to record activation",
				attr.ExtractCorrelationID(ctx),
				attr.ButtonID(button.ID),
				attr.RunID(run.ID),
				attr.Error(err),
			)
		}

		return results.SuccessResult[*Report, error](report), nil
	})
	return unwrap(result, err)
}

func (s *ActionService) acquire(buttonID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[buttonID]; busy {
		return false
	}
	s.inflight[buttonID] = struct{}{}
	return true
}

func (s *ActionService) release(buttonID string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, buttonID)
}

// Render previews a template against a run.
func (s *ActionService) Render(ctx context.Context, eventID, runID, template string, maxCharsPerLine int) (string, error) {
	run, err := s.runs.GetRun(ctx, eventID, runID)
	if err != nil {
		return "", err
	}
	return s.engine.Generate(template, *run, maxCharsPerLine), nil
}
