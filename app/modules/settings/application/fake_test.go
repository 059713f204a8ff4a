package settingsservice

import (
	"context"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Settings Repo
// ------------------------

type FakeSettingsRepo struct {
	trace []string

	configuration *settingsdomain.Configuration
	obs           *settingsdomain.OBSSettings
	nightbot      *settingsdomain.NightbotSettings
	twitch        *settingsdomain.TwitchSettings

	SaveErr error
}

func NewFakeSettingsRepo() *FakeSettingsRepo {
	return &FakeSettingsRepo{
		trace: []string{},
	}
}

func (f *FakeSettingsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func loadPtr[T any](p *T) (T, bool, error) {
	if p == nil {
		var zero T
		return zero, false, nil
	}
	return *p, true, nil
}

func (f *FakeSettingsRepo) LoadConfiguration(ctx context.Context, db bun.IDB) (settingsdomain.Configuration, bool, error) {
	f.record("LoadConfiguration")
	return loadPtr(f.configuration)
}

func (f *FakeSettingsRepo) SaveConfiguration(ctx context.Context, db bun.IDB, cfg settingsdomain.Configuration) error {
	f.record("SaveConfiguration")
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.configuration = &cfg
	return nil
}

func (f *FakeSettingsRepo) LoadOBS(ctx context.Context, db bun.IDB) (settingsdomain.OBSSettings, bool, error) {
	f.record("LoadOBS")
	return loadPtr(f.obs)
}

func (f *FakeSettingsRepo) SaveOBS(ctx context.Context, db bun.IDB, s settingsdomain.OBSSettings) error {
	f.record("SaveOBS")
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.obs = &s
	return nil
}

func (f *FakeSettingsRepo) LoadNightbot(ctx context.Context, db bun.IDB) (settingsdomain.NightbotSettings, bool, error) {
	f.record("LoadNightbot")
	return loadPtr(f.nightbot)
}

func (f *FakeSettingsRepo) SaveNightbot(ctx context.Context, db bun.IDB, s settingsdomain.NightbotSettings) error {
	f.record("SaveNightbot")
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.nightbot = &s
	return nil
}

func (f *FakeSettingsRepo) LoadTwitch(ctx context.Context, db bun.IDB) (settingsdomain.TwitchSettings, bool, error) {
	f.record("LoadTwitch")
	return loadPtr(f.twitch)
}

func (f *FakeSettingsRepo) SaveTwitch(ctx context.Context, db bun.IDB, s settingsdomain.TwitchSettings) error {
	f.record("SaveTwitch")
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.twitch = &s
	return nil
}
