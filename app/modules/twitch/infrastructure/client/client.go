// Package twitchclient talks to the Twitch Helix API.
package twitchclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Black-And-White-Club/marathon-manager/internal/apiclient"
)

// DefaultBaseURL is the Helix API root.
const DefaultBaseURL = "https://api.twitch.tv/helix"

var (
	// ErrUserNotFound is returned when /users yields no user for the token.
	ErrUserNotFound = errors.New("twitch user not found")
	// ErrGameNameRequired is returned by FindGame for an empty name.
	ErrGameNameRequired = errors.New("twitch game name is required")
)

// User is a Twitch account.
type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// Game is a Twitch category.
type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BoxArtURL string `json:"box_art_url"`
}

// Credentials supplies the application client id and the broadcaster whose
// channel is edited. They are read per request so settings changes apply
// without rebuilding the client.
type Credentials interface {
	ClientID() string
	BroadcasterID() string
}

// Client edits the channel information.
type Client interface {
	CurrentUser(ctx context.Context) (User, error)
	FindGame(ctx context.Context, name string) (Game, bool, error)
	UpdateTitle(ctx context.Context, title string) error
	UpdateGame(ctx context.Context, gameID string) error
}

// Impl implements Client on the shared API client.
type Impl struct {
	api   *apiclient.Client
	creds Credentials
}

// New builds a Helix client. A rejected token is cleared through tokens.
func New(baseURL string, tokens apiclient.TokenStore, creds Credentials, logger *slog.Logger, opts ...apiclient.Option) *Impl {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]apiclient.Option{
		apiclient.WithLogger(logger),
		apiclient.WithRequestEditor(func(r *http.Request) {
			if id := creds.ClientID(); id != "" {
				r.Header.Set("Client-Id", id)
			}
		}),
	}, opts...)
	return &Impl{
		api:   apiclient.New("twitch", baseURL, tokens, opts...),
		creds: creds,
	}
}

type dataResponse[T any] struct {
	Data []T `json:"data"`
}

// CurrentUser returns the user owning the access token.
func (c *Impl) CurrentUser(ctx context.Context) (User, error) {
	var resp dataResponse[User]
	if err := c.api.Do(ctx, http.MethodGet, "/users", nil, nil, &resp); err != nil {
		return User{}, err
	}
	if len(resp.Data) == 0 {
		return User{}, ErrUserNotFound
	}
	return resp.Data[0], nil
}

// FindGame looks a category up by its exact name.
func (c *Impl) FindGame(ctx context.Context, name string) (Game, bool, error) {
	if name == "" {
		return Game{}, false, ErrGameNameRequired
	}
	var resp dataResponse[Game]
	if err := c.api.Do(ctx, http.MethodGet, "/games", url.Values{"name": {name}}, nil, &resp); err != nil {
		return Game{}, false, err
	}
	if len(resp.Data) == 0 {
		return Game{}, false, nil
	}
	return resp.Data[0], true, nil
}

func (c *Impl) UpdateTitle(ctx context.Context, title string) error {
	return c.patchChannel(ctx, map[string]string{"title": title})
}

func (c *Impl) UpdateGame(ctx context.Context, gameID string) error {
	return c.patchChannel(ctx, map[string]string{"game_id": gameID})
}

func (c *Impl) patchChannel(ctx context.Context, body map[string]string) error {
	broadcasterID, err := c.broadcasterID(ctx)
	if err != nil {
		return err
	}
	query := url.Values{"broadcaster_id": {broadcasterID}}
	return c.api.Do(ctx, http.MethodPatch, "/channels", query, body, nil)
}

// broadcasterID falls back to the token owner when none is configured.
func (c *Impl) broadcasterID(ctx context.Context) (string, error) {
	if id := c.creds.BroadcasterID(); id != "" {
		return id, nil
	}
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
