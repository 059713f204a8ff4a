package settingsservice

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/metrics"
	"github.com/Black-And-White-Club/marathon-manager/internal/db/bundb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, repo *FakeSettingsRepo) *SettingsService {
	t.Helper()
	svc := NewSettingsService(repo, slog.Default(), metrics.NewNoop(), nil, nil)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestLoadDefaults(t *testing.T) {
	svc := newTestService(t, NewFakeSettingsRepo())

	assert.Equal(t, settingsdomain.DefaultConfiguration(), svc.Configuration())
	assert.Equal(t, settingsdomain.DefaultOBSSettings(), svc.OBS())
	assert.False(t, svc.Nightbot().Connected)
}

func TestLoadStored(t *testing.T) {
	repo := NewFakeSettingsRepo()
	repo.obs = &settingsdomain.OBSSettings{Address: "10.0.0.5:4444", Version: "v4"}
	repo.twitch = &settingsdomain.TwitchSettings{AccessToken: "tok", ClientID: "cid", Connected: true}

	svc := newTestService(t, repo)

	assert.Equal(t, "v4", svc.OBS().Version)
	assert.True(t, svc.Twitch().Connected)
	assert.Equal(t, []string{"LoadConfiguration", "LoadOBS", "LoadNightbot", "LoadTwitch"}, repo.trace)
}

func TestUpdateOBS(t *testing.T) {
	tests := []struct {
		name         string
		input        settingsdomain.OBSSettings
		saveErr      error
		wantErr      error
		wantVersion  string
		wantNotified bool
	}{
		{
			name:         "valid",
			input:        settingsdomain.OBSSettings{Address: "localhost:4444", Version: "v4"},
			wantVersion:  "v4",
			wantNotified: true,
		},
		{
			name:        "invalid version",
			input:       settingsdomain.OBSSettings{Address: "localhost:4444", Version: "v6"},
			wantErr:     settingsdomain.ErrInvalidOBSVersion,
			wantVersion: "v5",
		},
		{
			name:        "persistence failure",
			input:       settingsdomain.OBSSettings{Address: "localhost:4444", Version: "v4"},
			saveErr:     fmt.Errorf("%w: OBS_STORE: locked", bundb.ErrPersistence),
			wantErr:     bundb.ErrPersistence,
			wantVersion: "v5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeSettingsRepo()
			svc := newTestService(t, repo)
			repo.SaveErr = tt.saveErr

			notified := false
			svc.OnOBSChange(func(ctx context.Context, s settingsdomain.OBSSettings) {
				notified = true
				assert.Equal(t, tt.input, s)
			})

			_, err := svc.UpdateOBS(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantVersion, svc.OBS().Version)
			assert.Equal(t, tt.wantNotified, notified)
		})
	}
}

func TestUpdateNightbotSetsConnected(t *testing.T) {
	repo := NewFakeSettingsRepo()
	svc := newTestService(t, repo)

	saved, err := svc.UpdateNightbot(context.Background(), settingsdomain.NightbotSettings{AccessToken: "abc"})
	require.NoError(t, err)
	assert.True(t, saved.Connected)
	assert.True(t, repo.nightbot.Connected)
}

func TestTokenStores(t *testing.T) {
	repo := NewFakeSettingsRepo()
	repo.nightbot = &settingsdomain.NightbotSettings{AccessToken: "nb-token", Connected: true}
	repo.twitch = &settingsdomain.TwitchSettings{AccessToken: "tw-token", ClientID: "cid", BroadcasterID: "42", Connected: true}
	svc := newTestService(t, repo)
	ctx := context.Background()

	tok, err := svc.NightbotTokens().Token()
	require.NoError(t, err)
	assert.Equal(t, "nb-token", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())

	require.NoError(t, svc.NightbotTokens().Invalidate(ctx))
	assert.False(t, svc.Nightbot().Connected)
	assert.False(t, repo.nightbot.Connected)
	_, err = svc.NightbotTokens().Token()
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, svc.TwitchTokens().Invalidate(ctx))
	tw := svc.Twitch()
	assert.False(t, tw.Connected)
	assert.Empty(t, tw.AccessToken)
	assert.Equal(t, "cid", tw.ClientID)
	assert.Equal(t, "42", tw.BroadcasterID)
}
