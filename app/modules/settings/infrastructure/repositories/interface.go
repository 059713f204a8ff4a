package settingsdb

import (
	"context"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/uptrace/bun"
)

// Repository persists the configuration and integration settings records.
// Load methods return found=false when the record has never been written.
type Repository interface {
	LoadConfiguration(ctx context.Context, db bun.IDB) (settingsdomain.Configuration, bool, error)
	SaveConfiguration(ctx context.Context, db bun.IDB, cfg settingsdomain.Configuration) error
	LoadOBS(ctx context.Context, db bun.IDB) (settingsdomain.OBSSettings, bool, error)
	SaveOBS(ctx context.Context, db bun.IDB, s settingsdomain.OBSSettings) error
	LoadNightbot(ctx context.Context, db bun.IDB) (settingsdomain.NightbotSettings, bool, error)
	SaveNightbot(ctx context.Context, db bun.IDB, s settingsdomain.NightbotSettings) error
	LoadTwitch(ctx context.Context, db bun.IDB) (settingsdomain.TwitchSettings, bool, error)
	SaveTwitch(ctx context.Context, db bun.IDB, s settingsdomain.TwitchSettings) error
}
