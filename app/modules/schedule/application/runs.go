package scheduleservice

import (
	"context"
	"fmt"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
)

// GetRun returns a copy of one run.
func (s *ScheduleService) GetRun(ctx context.Context, eventID, runID string) (*scheduledomain.Run, error) {
	return unwrap(view(s, func(st *state) results.OperationResult[*scheduledomain.Run, error] {
		i := st.eventIndex(eventID)
		if i < 0 {
			return results.FailureResult[*scheduledomain.Run, error](ErrEventNotFound)
		}
		j := st.events[i].RunIndex(runID)
		if j < 0 {
			return results.FailureResult[*scheduledomain.Run, error](ErrRunNotFound)
		}
		r := st.events[i].Runs[j].Clone()
		return results.SuccessResult[*scheduledomain.Run, error](&r)
	}), nil)
}

// AddRun appends a run to an event. Members are referenced by ID and replaced
// with their canonical values; an empty run ID is assigned.
func (s *ScheduleService) AddRun(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error) {
	result, err := withTelemetry(s, ctx, "AddRun", eventID, func(ctx context.Context) (results.OperationResult[*scheduledomain.Run, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[*scheduledomain.Run, error], dirty, error) {
			i := next.eventIndex(eventID)
			if i < 0 {
				return failure[*scheduledomain.Run](ErrEventNotFound)
			}
			run = run.Clone()
			if run.ID == "" {
				run.ID = s.newID()
			} else if next.events[i].RunIndex(run.ID) >= 0 {
				return failure[*scheduledomain.Run](ErrDuplicateRunID)
			}
			if err := next.canonicalize(&run); err != nil {
				return failure[*scheduledomain.Run](err)
			}
			e := &next.events[i]
			e.Runs = append(e.Runs, run)
			e.UpdatedAt = s.clock.Now()
			out := run.Clone()
			return results.SuccessResult[*scheduledomain.Run, error](&out), dirtyEvents, nil
		})
	})
	return unwrap(result, err)
}

// UpdateRun replaces the run with the same ID, keeping its position.
func (s *ScheduleService) UpdateRun(ctx context.Context, eventID string, run scheduledomain.Run) (*scheduledomain.Run, error) {
	result, err := withTelemetry(s, ctx, "UpdateRun", run.ID, func(ctx context.Context) (results.OperationResult[*scheduledomain.Run, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[*scheduledomain.Run, error], dirty, error) {
			i := next.eventIndex(eventID)
			if i < 0 {
				return failure[*scheduledomain.Run](ErrEventNotFound)
			}
			j := next.events[i].RunIndex(run.ID)
			if j < 0 {
				return failure[*scheduledomain.Run](ErrRunNotFound)
			}
			run = run.Clone()
			if err := next.canonicalize(&run); err != nil {
				return failure[*scheduledomain.Run](err)
			}
			e := &next.events[i]
			e.Runs[j] = run
			e.UpdatedAt = s.clock.Now()
			out := run.Clone()
			return results.SuccessResult[*scheduledomain.Run, error](&out), dirtyEvents, nil
		})
	})
	return unwrap(result, err)
}

// RemoveRun drops a run from its event.
func (s *ScheduleService) RemoveRun(ctx context.Context, eventID, runID string) error {
	result, err := withTelemetry(s, ctx, "RemoveRun", runID, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[struct{}, error], dirty, error) {
			i := next.eventIndex(eventID)
			if i < 0 {
				return failure[struct{}](ErrEventNotFound)
			}
			e := &next.events[i]
			j := e.RunIndex(runID)
			if j < 0 {
				return failure[struct{}](ErrRunNotFound)
			}
			e.Runs = append(e.Runs[:j], e.Runs[j+1:]...)
			e.UpdatedAt = s.clock.Now()
			return results.SuccessResult[struct{}, error](struct{}{}), dirtyEvents, nil
		})
	})
	return unwrapErr(result, err)
}

// MoveRun moves a run to toIndex, shifting the runs in between.
func (s *ScheduleService) MoveRun(ctx context.Context, eventID, runID string, toIndex int) error {
	result, err := withTelemetry(s, ctx, "MoveRun", runID, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[struct{}, error], dirty, error) {
			i := next.eventIndex(eventID)
			if i < 0 {
				return failure[struct{}](ErrEventNotFound)
			}
			e := &next.events[i]
			from := e.RunIndex(runID)
			if from < 0 {
				return failure[struct{}](ErrRunNotFound)
			}
			if toIndex < 0 || toIndex >= len(e.Runs) {
				return failure[struct{}](fmt.Errorf("%w: %d", ErrInvalidPosition, toIndex))
			}
			if from == toIndex {
				return results.SuccessResult[struct{}, error](struct{}{}), 0, nil
			}
			run := e.Runs[from]
			e.Runs = append(e.Runs[:from], e.Runs[from+1:]...)
			e.Runs = append(e.Runs[:toIndex], append([]scheduledomain.Run{run}, e.Runs[toIndex:]...)...)
			e.UpdatedAt = s.clock.Now()
			return results.SuccessResult[struct{}, error](struct{}{}), dirtyEvents, nil
		})
	})
	return unwrapErr(result, err)
}

// canonicalize validates run and swaps each member reference for the stored
// member with the same ID.
func (st *state) canonicalize(run *scheduledomain.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	for _, list := range []*[]scheduledomain.Member{&run.Runners, &run.Hosts, &run.Comments} {
		if *list == nil {
			*list = []scheduledomain.Member{}
		}
		for k, ref := range *list {
			i := st.memberIndex(ref.ID)
			if i < 0 {
				return fmt.Errorf("%w: %q", ErrMemberNotFound, ref.ID)
			}
			m := st.members[i]
			m.Images = append([]scheduledomain.Image(nil), m.Images...)
			(*list)[k] = m
		}
	}
	return nil
}
