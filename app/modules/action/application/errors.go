package actionservice

import "errors"

var (
	ErrButtonNotFound         = errors.New("action button not found")
	ErrButtonHidden           = errors.New("action button is not available for this run")
	ErrConfirmationRequired   = errors.New("action button requires confirmation")
	ErrActionInFlight         = errors.New("action button is already running")
	ErrExportFileNotFound     = errors.New("export file not found")
	ErrIntegrationUnavailable = errors.New("integration not configured")
	ErrActionPanicked         = errors.New("action module panicked")
)
