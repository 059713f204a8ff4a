package actiondomain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ActionType discriminates the external system an ActionModule drives.
type ActionType string

const (
	ActionNightbot    ActionType = "NIGHTBOT"
	ActionOBS         ActionType = "OBS"
	ActionTwitch      ActionType = "TWITCH"
	ActionExportFiles ActionType = "EXPORT_FILES"
)

// Component selects the operation within an action type.
type Component string

const (
	ComponentUpdateCommand    Component = "UPDATE_COMMAND"
	ComponentSetBrowserSource Component = "SET_BROWSER_SOURCE"
	ComponentChangeScene      Component = "CHANGE_SCENE"
	ComponentUpdateTitle      Component = "UPDATE_TITLE"
	ComponentUpdateGame       Component = "UPDATE_GAME"
	ComponentExportAll        Component = "EXPORT_ALL"
)

var components = map[ActionType][]Component{
	ActionNightbot:    {ComponentUpdateCommand},
	ActionOBS:         {ComponentSetBrowserSource, ComponentChangeScene},
	ActionTwitch:      {ComponentUpdateTitle, ComponentUpdateGame},
	ActionExportFiles: {ComponentExportAll},
}

var (
	ErrUnknownAction    = errors.New("unknown action type")
	ErrInvalidComponent = errors.New("component not valid for action")
	ErrPayloadMismatch  = errors.New("action module payload does not match its action type")
	ErrUnknownRole      = errors.New("configurationCommandField must be runner, host or commentator")
)

// NightbotAction updates the chat command bound to a member role.
type NightbotAction struct {
	Component                 Component `json:"component"`
	ConfigurationCommandField string    `json:"configurationCommandField"`
	Template                  string    `json:"template,omitempty"`
}

// OBSAction points a browser source at a URL or switches the program scene.
type OBSAction struct {
	Component    Component `json:"component"`
	Value        string    `json:"value,omitempty"`
	ResourceName string    `json:"resourceName,omitempty"`
}

// TwitchAction edits the channel title or category.
type TwitchAction struct {
	Component Component `json:"component"`
	Value     string    `json:"value,omitempty"`
}

// ExportFilesAction writes every export file into Value.
type ExportFilesAction struct {
	Component Component `json:"component"`
	Value     string    `json:"value"`
}

// ActionModule is one configured side effect of an action button. Exactly
// one payload matching Action is set.
type ActionModule struct {
	Action    ActionType
	IsEnabled bool

	Nightbot    *NightbotAction
	OBS         *OBSAction
	Twitch      *TwitchAction
	ExportFiles *ExportFilesAction

	// raw keeps a module with an unknown action tag as it was stored.
	raw json.RawMessage
}

// Component returns the payload's component.
func (m ActionModule) Component() Component {
	switch {
	case m.Nightbot != nil:
		return m.Nightbot.Component
	case m.OBS != nil:
		return m.OBS.Component
	case m.Twitch != nil:
		return m.Twitch.Component
	case m.ExportFiles != nil:
		return m.ExportFiles.Component
	}
	return ""
}

// Validate checks the action tag, the payload and the component pairing.
func (m ActionModule) Validate() error {
	allowed, ok := components[m.Action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, m.Action)
	}

	set := 0
	for _, p := range []bool{m.Nightbot != nil, m.OBS != nil, m.Twitch != nil, m.ExportFiles != nil} {
		if p {
			set++
		}
	}
	var matches bool
	switch m.Action {
	case ActionNightbot:
		matches = m.Nightbot != nil
	case ActionOBS:
		matches = m.OBS != nil
	case ActionTwitch:
		matches = m.Twitch != nil
	case ActionExportFiles:
		matches = m.ExportFiles != nil
	}
	if set != 1 || !matches {
		return fmt.Errorf("%w: %s", ErrPayloadMismatch, m.Action)
	}

	component := m.Component()
	valid := false
	for _, c := range allowed {
		if c == component {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %s/%q", ErrInvalidComponent, m.Action, component)
	}

	if m.Nightbot != nil {
		switch m.Nightbot.ConfigurationCommandField {
		case "runner", "host", "commentator":
		default:
			return fmt.Errorf("%w: %q", ErrUnknownRole, m.Nightbot.ConfigurationCommandField)
		}
	}
	return nil
}

type moduleHeader struct {
	Action    ActionType `json:"action"`
	IsEnabled bool       `json:"isEnabled"`
}

// MarshalJSON flattens the payload next to the action tag.
func (m ActionModule) MarshalJSON() ([]byte, error) {
	var payload any
	switch m.Action {
	case ActionNightbot:
		payload = m.Nightbot
	case ActionOBS:
		payload = m.OBS
	case ActionTwitch:
		payload = m.Twitch
	case ActionExportFiles:
		payload = m.ExportFiles
	default:
		if m.raw != nil {
			return m.raw, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, m.Action)
	}

	fields := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	header, err := json.Marshal(moduleHeader{Action: m.Action, IsEnabled: m.IsEnabled})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(header, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes the payload selected by the action tag. It does not
// validate: stored modules that no longer validate still load and are
// reported when triggered. Unknown action tags are kept verbatim.
func (m *ActionModule) UnmarshalJSON(data []byte) error {
	var header moduleHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}

	decoded := ActionModule{Action: header.Action, IsEnabled: header.IsEnabled}
	var target any
	switch header.Action {
	case ActionNightbot:
		decoded.Nightbot = &NightbotAction{}
		target = decoded.Nightbot
	case ActionOBS:
		decoded.OBS = &OBSAction{}
		target = decoded.OBS
	case ActionTwitch:
		decoded.Twitch = &TwitchAction{}
		target = decoded.Twitch
	case ActionExportFiles:
		decoded.ExportFiles = &ExportFilesAction{}
		target = decoded.ExportFiles
	default:
		decoded.raw = append(json.RawMessage(nil), data...)
		*m = decoded
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return err
	}
	*m = decoded
	return nil
}

// Enabled returns the modules with IsEnabled set, in order.
func Enabled(modules []ActionModule) []ActionModule {
	out := make([]ActionModule, 0, len(modules))
	for _, m := range modules {
		if m.IsEnabled {
			out = append(out, m)
		}
	}
	return out
}

func (m ActionModule) clone() ActionModule {
	if m.Nightbot != nil {
		v := *m.Nightbot
		m.Nightbot = &v
	}
	if m.OBS != nil {
		v := *m.OBS
		m.OBS = &v
	}
	if m.Twitch != nil {
		v := *m.Twitch
		m.Twitch = &v
	}
	if m.ExportFiles != nil {
		v := *m.ExportFiles
		m.ExportFiles = &v
	}
	return m
}
