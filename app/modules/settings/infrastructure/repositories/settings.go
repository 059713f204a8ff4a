package settingsdb

import (
	"context"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/uptrace/bun"
)

// Impl stores each settings value as its own state record.
type Impl struct {
	state bundb.StateRepository
}

func NewRepository(state bundb.StateRepository) Repository {
	return &Impl{state: state}
}

func load[T any](ctx context.Context, r *Impl, db bun.IDB, store string) (T, bool, error) {
	var v T
	found, err := bundb.LoadJSON(ctx, r.state, db, store, &v)
	return v, found, err
}

func (r *Impl) LoadConfiguration(ctx context.Context, db bun.IDB) (settingsdomain.Configuration, bool, error) {
	return load[settingsdomain.Configuration](ctx, r, db, bundb.StoreConfiguration)
}

func (r *Impl) SaveConfiguration(ctx context.Context, db bun.IDB, cfg settingsdomain.Configuration) error {
	return bundb.SaveJSON(ctx, r.state, db, bundb.StoreConfiguration, cfg)
}

func (r *Impl) LoadOBS(ctx context.Context, db bun.IDB) (settingsdomain.OBSSettings, bool, error) {
	return load[settingsdomain.OBSSettings](ctx, r, db, bundb.StoreOBS)
}

func (r *Impl) SaveOBS(ctx context.Context, db bun.IDB, s settingsdomain.OBSSettings) error {
	return bundb.SaveJSON(ctx, r.state, db, bundb.StoreOBS, s)
}

func (r *Impl) LoadNightbot(ctx context.Context, db bun.IDB) (settingsdomain.NightbotSettings, bool, error) {
	return load[settingsdomain.NightbotSettings](ctx, r, db, bundb.StoreNightbot)
}

func (r *Impl) SaveNightbot(ctx context.Context, db bun.IDB, s settingsdomain.NightbotSettings) error {
	return bundb.SaveJSON(ctx, r.state, db, bundb.StoreNightbot, s)
}

func (r *Impl) LoadTwitch(ctx context.Context, db bun.IDB) (settingsdomain.TwitchSettings, bool, error) {
	return load[settingsdomain.TwitchSettings](ctx, r, db, bundb.StoreTwitch)
}

func (r *Impl) SaveTwitch(ctx context.Context, db bun.IDB, s settingsdomain.TwitchSettings) error {
	return bundb.SaveJSON(ctx, r.state, db, bundb.StoreTwitch, s)
}
