package scheduleservice

import "errors"

// Domain failures. Handlers map these to 4xx responses; anything else is a 500.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrRunNotFound        = errors.New("run not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrDuplicateRunID     = errors.New("run id already exists in event")
	ErrEventNameRequired  = errors.New("event name is required")
	ErrInvalidStartTime   = errors.New("could not understand start time")
	ErrInvalidPosition    = errors.New("run position out of range")
	ErrNoScheduleLink     = errors.New("event has no schedule link")
	ErrNoRuns             = errors.New("event has no runs")
	ErrUnsupportedImport  = errors.New("unsupported schedule file")
	ErrInvalidScheduleRow = errors.New("invalid schedule row")
)
