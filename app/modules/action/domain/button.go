package actiondomain

import (
	"errors"
	"fmt"

	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
)

var (
	ErrButtonLabelRequired = errors.New("action button label is required")
	ErrInvalidMinimum      = errors.New("minimumRunnersToShow must not be negative")
)

// ActionButton is an operator trigger fanning out to its action modules.
type ActionButton struct {
	ID                     string         `json:"id"`
	Label                  string         `json:"label"`
	Description            string         `json:"description,omitempty"`
	Color                  string         `json:"color"`
	Variant                string         `json:"variant"`
	MinimumRunnersToShow   int            `json:"minimumRunnersToShow"`
	IsRequiredConfirmation bool           `json:"isRequiredConfirmation"`
	IsShow                 bool           `json:"isShow"`
	Actions                []ActionModule `json:"actions"`
}

// Visible reports whether the button is offered for run.
func (b ActionButton) Visible(run scheduledomain.Run) bool {
	return b.IsShow && len(run.Runners) >= b.MinimumRunnersToShow
}

func (b ActionButton) Validate() error {
	if b.Label == "" {
		return ErrButtonLabelRequired
	}
	if b.MinimumRunnersToShow < 0 {
		return ErrInvalidMinimum
	}
	for i, m := range b.Actions {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (b ActionButton) Clone() ActionButton {
	actions := make([]ActionModule, len(b.Actions))
	for i, m := range b.Actions {
		actions[i] = m.clone()
	}
	b.Actions = actions
	return b
}

// ActivationRecord marks the run a button was last fired for.
type ActivationRecord struct {
	TagID string `json:"tagId"`
	RunID string `json:"runId"`
}

// ExportFile is a named template written by EXPORT_FILES actions.
type ExportFile struct {
	Name            string `json:"name"`
	Template        string `json:"template"`
	MaxCharsPerLine int    `json:"maxCharsPerLine,omitempty"`
}

var ErrExportFileNameRequired = errors.New("export file name is required")

func (f ExportFile) Validate() error {
	if f.Name == "" {
		return ErrExportFileNameRequired
	}
	return nil
}
