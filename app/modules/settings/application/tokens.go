package settingsservice

import (
	"context"
	"fmt"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/Black-And-White-Club/marathon-manager/internal/apiclient"
	"golang.org/x/oauth2"
)

// NightbotTokens exposes the stored Nightbot token to the API client.
func (s *SettingsService) NightbotTokens() apiclient.TokenStore {
	return &tokenStore{
		integration: "nightbot",
		token: func() string {
			return s.Nightbot().AccessToken
		},
		invalidate: func(ctx context.Context) error {
			_, err := s.UpdateNightbot(ctx, settingsdomain.NightbotSettings{})
			return err
		},
	}
}

// TwitchTokens exposes the stored Twitch token to the API client. Invalidate
// keeps the client and broadcaster IDs.
func (s *SettingsService) TwitchTokens() apiclient.TokenStore {
	return &tokenStore{
		integration: "twitch",
		token: func() string {
			return s.Twitch().AccessToken
		},
		invalidate: func(ctx context.Context) error {
			current := s.Twitch()
			current.AccessToken = ""
			_, err := s.UpdateTwitch(ctx, current)
			return err
		},
	}
}

type tokenStore struct {
	integration string
	token       func() string
	invalidate  func(ctx context.Context) error
}

func (t *tokenStore) Token() (*oauth2.Token, error) {
	access := t.token()
	if access == "" {
		return nil, fmt.Errorf("%s: %w", t.integration, ErrNotConnected)
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

func (t *tokenStore) Invalidate(ctx context.Context) error {
	return t.invalidate(ctx)
}
