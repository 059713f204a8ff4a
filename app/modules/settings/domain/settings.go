package settingsdomain

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultBrowserSourceURL is the multi-viewer page used when a browser-source
// action has no URL template. {channel} is the first runner's channel.
const DefaultBrowserSourceURL = "https://player.twitch.tv/?channel={channel}&parent=localhost&muted=true"

const channelPlaceholder = "{channel}"

var (
	ErrUnknownRole         = errors.New("unknown nightbot role binding")
	ErrInvalidOBSVersion   = errors.New("obs version must be v4 or v5")
	ErrBrowserURLTemplate  = errors.New("browser source url must contain {channel}")
	ErrTwitchClientMissing = errors.New("twitch client id is required with an access token")
)

// Role binding names accepted by Nightbot actions.
const (
	BindingRunner      = "runner"
	BindingHost        = "host"
	BindingCommentator = "commentator"
)

// RoleBinding ties a member role to a Nightbot command and its texts.
type RoleBinding struct {
	CommandID string `json:"commandId"`
	Singular  string `json:"singular"`
	Plural    string `json:"plural"`
}

type NightbotBindings struct {
	Runner      RoleBinding `json:"runner"`
	Host        RoleBinding `json:"host"`
	Commentator RoleBinding `json:"commentator"`
}

// For returns the binding for a role name.
func (b NightbotBindings) For(role string) (RoleBinding, error) {
	switch role {
	case BindingRunner:
		return b.Runner, nil
	case BindingHost:
		return b.Host, nil
	case BindingCommentator:
		return b.Commentator, nil
	}
	return RoleBinding{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

// Configuration is the CONFIGURATION_STORE singleton.
type Configuration struct {
	Nightbot         NightbotBindings `json:"nightbot"`
	TitleTemplate    string           `json:"titleTemplate"`
	BrowserSourceURL string           `json:"browserSourceUrl"`
}

// DefaultConfiguration is used until an operator saves one.
func DefaultConfiguration() Configuration {
	return Configuration{
		Nightbot: NightbotBindings{
			Runner:      RoleBinding{Singular: "Runner:", Plural: "Runners:"},
			Host:        RoleBinding{Singular: "Host:", Plural: "Hosts:"},
			Commentator: RoleBinding{Singular: "Commentator:", Plural: "Commentators:"},
		},
		TitleTemplate:    "{game} ({category}) by <loop property='runners' separator=', ' prefix=''>{runners[name]}</loop>",
		BrowserSourceURL: DefaultBrowserSourceURL,
	}
}

func (c Configuration) Validate() error {
	if c.BrowserSourceURL != "" && !strings.Contains(c.BrowserSourceURL, channelPlaceholder) {
		return ErrBrowserURLTemplate
	}
	return nil
}

// BrowserURL fills the browser-source pattern with channel.
func (c Configuration) BrowserURL(channel string) string {
	pattern := c.BrowserSourceURL
	if pattern == "" {
		pattern = DefaultBrowserSourceURL
	}
	return strings.ReplaceAll(pattern, channelPlaceholder, channel)
}

// OBSSettings is the OBS_STORE record.
type OBSSettings struct {
	Address  string `json:"address"`
	Password string `json:"password,omitempty"`
	Secure   bool   `json:"secure"`
	Version  string `json:"version"`
}

func DefaultOBSSettings() OBSSettings {
	return OBSSettings{Address: "localhost:4455", Version: "v5"}
}

func (s OBSSettings) Validate() error {
	switch s.Version {
	case "v4", "v5":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidOBSVersion, s.Version)
}

// NightbotSettings is the NIGHTBOT_STORE record.
type NightbotSettings struct {
	AccessToken string `json:"accessToken,omitempty"`
	Connected   bool   `json:"connected"`
}

// TwitchSettings is the TWITCH_STORE record.
type TwitchSettings struct {
	AccessToken   string `json:"accessToken,omitempty"`
	ClientID      string `json:"clientId"`
	BroadcasterID string `json:"broadcasterId,omitempty"`
	Connected     bool   `json:"connected"`
}

func (s TwitchSettings) Validate() error {
	if s.AccessToken != "" && s.ClientID == "" {
		return ErrTwitchClientMissing
	}
	return nil
}
