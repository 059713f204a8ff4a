package settingsservice

import (
	"context"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/Black-And-White-Club/marathon-manager/internal/apiclient"
)

// Service owns the configuration singleton and the integration settings.
type Service interface {
	Load(ctx context.Context) error

	Configuration() settingsdomain.Configuration
	UpdateConfiguration(ctx context.Context, cfg settingsdomain.Configuration) (settingsdomain.Configuration, error)

	OBS() settingsdomain.OBSSettings
	UpdateOBS(ctx context.Context, s settingsdomain.OBSSettings) (settingsdomain.OBSSettings, error)
	OnOBSChange(fn func(ctx context.Context, s settingsdomain.OBSSettings))

	Nightbot() settingsdomain.NightbotSettings
	UpdateNightbot(ctx context.Context, s settingsdomain.NightbotSettings) (settingsdomain.NightbotSettings, error)
	NightbotTokens() apiclient.TokenStore

	Twitch() settingsdomain.TwitchSettings
	UpdateTwitch(ctx context.Context, s settingsdomain.TwitchSettings) (settingsdomain.TwitchSettings, error)
	TwitchTokens() apiclient.TokenStore
}
