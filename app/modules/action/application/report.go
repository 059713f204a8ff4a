package actionservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
)

// Outcome is the result of one action module.
type Outcome struct {
	// Index is the module's position in the dispatched list.
	Index     int
	Action    actiondomain.ActionType
	Component actiondomain.Component
	Target    string
	Skipped   bool
	Reason    string
	Err       error
}

// Message is the operator-facing summary.
func (o Outcome) Message() string {
	subject := fmt.Sprintf("%s %s", o.Action, o.Component)
	if o.Target != "" {
		subject += " (" + o.Target + ")"
	}
	switch {
	case o.Err != nil:
		return subject + " failed"
	case o.Skipped:
		return subject + " skipped: " + o.Reason
	}
	return subject + " done"
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	view := struct {
		Index     int                     `json:"index"`
		Action    actiondomain.ActionType `json:"action"`
		Component actiondomain.Component  `json:"component"`
		Target    string                  `json:"target,omitempty"`
		Skipped   bool                    `json:"skipped,omitempty"`
		Reason    string                  `json:"reason,omitempty"`
		Error     string                  `json:"error,omitempty"`
		Message   string                  `json:"message"`
	}{
		Index:     o.Index,
		Action:    o.Action,
		Component: o.Component,
		Target:    o.Target,
		Skipped:   o.Skipped,
		Reason:    o.Reason,
		Message:   o.Message(),
	}
	if o.Err != nil {
		view.Error = o.Err.Error()
	}
	return json.Marshal(view)
}

// Report aggregates the outcomes of one dispatch.
type Report struct {
	ButtonID string    `json:"buttonId,omitempty"`
	RunID    string    `json:"runId"`
	Outcomes []Outcome `json:"outcomes"`

	mu sync.Mutex
}

func (r *Report) add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.SliceStable(r.Outcomes, func(i, j int) bool { return r.Outcomes[i].Index < r.Outcomes[j].Index })
}

// Err joins every failed outcome, or returns nil.
func (r *Report) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", o.Action, o.Component, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Failed counts failed outcomes.
func (r *Report) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
