package scheduleservice

import (
	"context"
	"fmt"
	"strings"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
)

// ImportRuns appends the runs of a CSV or XLSX schedule to an event. Runner
// names are matched to existing members case-insensitively; unknown names
// become new members.
func (s *ScheduleService) ImportRuns(ctx context.Context, eventID, filename string, data []byte) ([]scheduledomain.Run, error) {
	result, err := withTelemetry(s, ctx, "ImportRuns", eventID, func(ctx context.Context) (results.OperationResult[[]scheduledomain.Run, error], error) {
		parser, err := s.parsers.GetParser(filename)
		if err != nil {
			return results.FailureResult[[]scheduledomain.Run, error](fmt.Errorf("%w: %v", ErrUnsupportedImport, err)), nil
		}
		parsed, err := parser.Parse(data)
		if err != nil {
			return results.FailureResult[[]scheduledomain.Run, error](fmt.Errorf("%w: %v", ErrUnsupportedImport, err)), nil
		}

		return mutate(s, ctx, func(next *state) (results.OperationResult[[]scheduledomain.Run, error], dirty, error) {
			i := next.eventIndex(eventID)
			if i < 0 {
				return failure[[]scheduledomain.Run](ErrEventNotFound)
			}

			byName := make(map[string]int, len(next.members))
			for k, m := range next.members {
				byName[strings.ToLower(m.Name)] = k
			}

			touched := dirtyEvents
			imported := make([]scheduledomain.Run, 0, len(parsed))
			for row, p := range parsed {
				run := scheduledomain.Run{
					ID:       s.newID(),
					Game:     p.Game,
					Category: p.Category,
					Platform: p.Platform,
					Estimate: p.Estimate,
					Year:     p.Year,
					Runners:  []scheduledomain.Member{},
					Hosts:    []scheduledomain.Member{},
					Comments: []scheduledomain.Member{},
				}
				if err := run.Validate(); err != nil {
					return failure[[]scheduledomain.Run](fmt.Errorf("%w %d: %v", ErrInvalidScheduleRow, row+1, err))
				}
				for _, name := range p.Runners {
					k, ok := byName[strings.ToLower(name)]
					if !ok {
						next.addMember(scheduledomain.Member{Name: name}, s.newID())
						k = len(next.members) - 1
						byName[strings.ToLower(name)] = k
						touched |= dirtyMembers
						s.logger.InfoContext(ctx, "Created member from schedule import",
							attr.EventID(eventID),
							attr.String("member_name", name),
						)
					}
					m := next.members[k]
					m.Images = append([]scheduledomain.Image(nil), m.Images...)
					run.Runners = append(run.Runners, m)
				}
				imported = append(imported, run)
			}

			e := &next.events[i]
			for _, r := range imported {
				e.Runs = append(e.Runs, r.Clone())
			}
			e.UpdatedAt = s.clock.Now()
			return results.SuccessResult[[]scheduledomain.Run, error](imported), touched, nil
		})
	})
	return unwrap(result, err)
}
