package scheduleservice

import (
	"context"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
)

// ListMembers returns copies of every member.
func (s *ScheduleService) ListMembers(ctx context.Context) ([]scheduledomain.Member, error) {
	return unwrap(view(s, func(st *state) results.OperationResult[[]scheduledomain.Member, error] {
		return results.SuccessResult[[]scheduledomain.Member, error](st.clone().members)
	}), nil)
}

// GetMember returns a copy of one member.
func (s *ScheduleService) GetMember(ctx context.Context, memberID string) (*scheduledomain.Member, error) {
	return unwrap(view(s, func(st *state) results.OperationResult[*scheduledomain.Member, error] {
		i := st.memberIndex(memberID)
		if i < 0 {
			return results.FailureResult[*scheduledomain.Member, error](ErrMemberNotFound)
		}
		m := st.members[i]
		m.Images = append([]scheduledomain.Image(nil), m.Images...)
		return results.SuccessResult[*scheduledomain.Member, error](&m)
	}), nil)
}

// CreateMember stores a new member under a fresh ID.
func (s *ScheduleService) CreateMember(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error) {
	result, err := withTelemetry(s, ctx, "CreateMember", member.Name, func(ctx context.Context) (results.OperationResult[*scheduledomain.Member, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[*scheduledomain.Member, error], dirty, error) {
			if err := member.Validate(); err != nil {
				return failure[*scheduledomain.Member](err)
			}
			m := next.addMember(member, s.newID())
			return results.SuccessResult[*scheduledomain.Member, error](&m), dirtyMembers, nil
		})
	})
	return unwrap(result, err)
}

// UpdateMember replaces a member and every copy of it held by runs in any event.
func (s *ScheduleService) UpdateMember(ctx context.Context, member scheduledomain.Member) (*scheduledomain.Member, error) {
	result, err := withTelemetry(s, ctx, "UpdateMember", member.ID, func(ctx context.Context) (results.OperationResult[*scheduledomain.Member, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[*scheduledomain.Member, error], dirty, error) {
			i := next.memberIndex(member.ID)
			if i < 0 {
				return failure[*scheduledomain.Member](ErrMemberNotFound)
			}
			if err := member.Validate(); err != nil {
				return failure[*scheduledomain.Member](err)
			}
			member.Images = append([]scheduledomain.Image(nil), member.Images...)
			next.members[i] = member

			touched := dirtyMembers
			now := s.clock.Now()
			for e := range next.events {
				changed := false
				for r := range next.events[e].Runs {
					if next.events[e].Runs[r].ReplaceMember(member) {
						changed = true
					}
				}
				if changed {
					next.events[e].UpdatedAt = now
					touched |= dirtyEvents
				}
			}
			out := member
			out.Images = append([]scheduledomain.Image(nil), member.Images...)
			return results.SuccessResult[*scheduledomain.Member, error](&out), touched, nil
		})
	})
	return unwrap(result, err)
}

// RemoveMember deletes a member and drops it from every run in every event.
func (s *ScheduleService) RemoveMember(ctx context.Context, memberID string) error {
	result, err := withTelemetry(s, ctx, "RemoveMember", memberID, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return mutate(s, ctx, func(next *state) (results.OperationResult[struct{}, error], dirty, error) {
			i := next.memberIndex(memberID)
			if i < 0 {
				return failure[struct{}](ErrMemberNotFound)
			}
			next.members = append(next.members[:i], next.members[i+1:]...)

			touched := dirtyMembers
			now := s.clock.Now()
			for e := range next.events {
				changed := false
				for r := range next.events[e].Runs {
					if next.events[e].Runs[r].RemoveMember(memberID) {
						changed = true
					}
				}
				if changed {
					next.events[e].UpdatedAt = now
					touched |= dirtyEvents
				}
			}
			return results.SuccessResult[struct{}, error](struct{}{}), touched, nil
		})
	})
	return unwrapErr(result, err)
}

func (st *state) addMember(member scheduledomain.Member, id string) scheduledomain.Member {
	member.ID = id
	member.Images = append([]scheduledomain.Image(nil), member.Images...)
	st.members = append(st.members, member)
	out := member
	out.Images = append([]scheduledomain.Image(nil), member.Images...)
	return out
}
