package scheduleservice

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

var compactClock = regexp.MustCompile(`(\d{1,2})(\d{2})(am|pm)`)

// parseStartTime accepts RFC 3339 or English phrases like "tomorrow 5 pm",
// resolved relative to now. Empty input clears the start time.
func parseStartTime(input string, now time.Time) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		t = t.UTC()
		return &t, nil
	}

	normalized := strings.ToLower(input)
	normalized = compactClock.ReplaceAllString(normalized, "$1:$2 $3")

	w := when.New(nil)
	w.Add(en.All...)

	r, err := w.Parse(normalized, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidStartTime, input, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartTime, input)
	}
	t := r.Time.UTC().Truncate(time.Minute)
	return &t, nil
}
