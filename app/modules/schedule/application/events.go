package scheduleservice

import (
	"context"
	"strings"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
)

// ListEvents returns copies of every event in creation order.
func (s *ScheduleService) ListEvents(ctx context.Context) ([]scheduledomain.Event, error) {
	return unwrap(view(s, func(st *state) results.OperationResult[[]scheduledomain.Event, error] {
		out := make([]scheduledomain.Event, len(st.events))
		for i, e := range st.events {
			out[i] = e.Clone()
		}
		return results.SuccessResult[[]scheduledomain.Event, error](out)
	}), nil)
}

// GetEvent returns a copy of one event.
func (s *ScheduleService) GetEvent(ctx context.Context, eventID string) (*scheduledomain.Event, error) {
	return unwrap(view(s, func(st *state) results.OperationResult[*scheduledomain.Event, error] {
		i := st.eventIndex(eventID)
		if i < 0 {
			return results.FailureResult[*scheduledomain.Event, error](ErrEventNotFound)
		}
		e := st.events[i].Clone()
		return results.SuccessResult[*scheduledomain.Event, error](&e)
	}), nil)
}

// CreateEvent adds an empty event.
func (s *ScheduleService) CreateEvent(ctx context.Context, in EventInput) (*scheduledomain.Event, error) {
	result, err := withTelemetry(s, ctx, "CreateEvent", in.Name, func(ctx context.Context) (results.OperationResult[*scheduledomain.Event, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[*scheduledomain.Event, error], dirty, error) {
			if strings.TrimSpace(in.Name) == "" {
				return failure[*scheduledomain.Event](ErrEventNameRequired)
			}
			now := s.clock.Now()
			startsAt, err := parseStartTime(in.StartsAt, now)
			if err != nil {
				return failure[*scheduledomain.Event](err)
			}
			e := scheduledomain.Event{
				ID:           s.newID(),
				Name:         strings.TrimSpace(in.Name),
				Runs:         []scheduledomain.Run{},
				ScheduleLink: in.ScheduleLink,
				StartsAt:     startsAt,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			next.events = append(next.events, e)
			out := e.Clone()
			return results.SuccessResult[*scheduledomain.Event, error](&out), dirtyEvents, nil
		})
	})
	return unwrap(result, err)
}

// UpdateEvent replaces the editable fields of an event. Runs are untouched.
func (s *ScheduleService) UpdateEvent(ctx context.Context, eventID string, in EventInput) (*scheduledomain.Event, error) {
	result, err := withTelemetry(s, ctx, "UpdateEvent", eventID, func(ctx context.Context) (results.OperationResult[*scheduledomain.Event, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[*scheduledomain.Event, error], dirty, error) {
			i := next.eventIndex(eventID)
			if i < 0 {
				return failure[*scheduledomain.Event](ErrEventNotFound)
			}
			if strings.TrimSpace(in.Name) == "" {
				return failure[*scheduledomain.Event](ErrEventNameRequired)
			}
			now := s.clock.Now()
			startsAt, err := parseStartTime(in.StartsAt, now)
			if err != nil {
				return failure[*scheduledomain.Event](err)
			}
			e := &next.events[i]
			e.Name = strings.TrimSpace(in.Name)
			e.ScheduleLink = in.ScheduleLink
			e.StartsAt = startsAt
			e.UpdatedAt = now
			out := e.Clone()
			return results.SuccessResult[*scheduledomain.Event, error](&out), dirtyEvents, nil
		})
	})
	return unwrap(result, err)
}

// DeleteEvent removes an event together with its runs.
func (s *ScheduleService) DeleteEvent(ctx context.Context, eventID string) error {
	result, err := withTelemetry(s, ctx, "DeleteEvent", eventID, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[struct{}, error], dirty, error) {
			i := next.eventIndex(eventID)
			if i < 0 {
				return failure[struct{}](ErrEventNotFound)
			}
			next.events = append(next.events[:i], next.events[i+1:]...)
			return results.SuccessResult[struct{}, error](struct{}{}), dirtyEvents, nil
		})
	})
	return unwrapErr(result, err)
}
