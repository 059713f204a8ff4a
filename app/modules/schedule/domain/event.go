package scheduledomain

import "time"

// Event is a marathon. It owns its runs.
type Event struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Runs         []Run      `json:"runs"`
	ScheduleLink string     `json:"scheduleLink,omitempty"`
	StartsAt     *time.Time `json:"startsAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// RunIndex returns the position of runID, or -1.
func (e Event) RunIndex(runID string) int {
	for i, r := range e.Runs {
		if r.ID == runID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy.
func (e Event) Clone() Event {
	if e.Runs != nil {
		runs := make([]Run, len(e.Runs))
		for i, r := range e.Runs {
			runs[i] = r.Clone()
		}
		e.Runs = runs
	}
	if e.StartsAt != nil {
		t := *e.StartsAt
		e.StartsAt = &t
	}
	return e
}
