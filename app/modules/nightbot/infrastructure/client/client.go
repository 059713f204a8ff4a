// Package nightbotclient talks to the Nightbot v1 API.
package nightbotclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Black-And-White-Club/marathon-manager/internal/apiclient"
)

// DefaultBaseURL is the Nightbot API root.
const DefaultBaseURL = "https://api.nightbot.tv/1"

// ErrCommandIDRequired is returned by UpdateCommand for an empty id.
var ErrCommandIDRequired = errors.New("nightbot command id is required")

// Command is a custom chat command.
type Command struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	CoolDown  int    `json:"coolDown"`
	Count     int    `json:"count"`
	UserLevel string `json:"userLevel"`
}

// Client updates chat commands.
type Client interface {
	ListCommands(ctx context.Context) ([]Command, error)
	UpdateCommand(ctx context.Context, id, message string) error
}

// Impl implements Client on the shared API client.
type Impl struct {
	api *apiclient.Client
}

// New builds a Nightbot client. A rejected token is cleared through tokens.
func New(baseURL string, tokens apiclient.TokenStore, logger *slog.Logger, opts ...apiclient.Option) *Impl {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]apiclient.Option{apiclient.WithLogger(logger)}, opts...)
	return &Impl{api: apiclient.New("nightbot", baseURL, tokens, opts...)}
}

type commandsResponse struct {
	Total    int       `json:"_total"`
	Status   int       `json:"status"`
	Commands []Command `json:"commands"`
}

func (c *Impl) ListCommands(ctx context.Context) ([]Command, error) {
	var resp commandsResponse
	if err := c.api.Do(ctx, http.MethodGet, "/commands", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Commands, nil
}

// UpdateCommand replaces the message of the command with the given id.
func (c *Impl) UpdateCommand(ctx context.Context, id, message string) error {
	if id == "" {
		return ErrCommandIDRequired
	}
	path := fmt.Sprintf("/commands/%s", url.PathEscape(id))
	return c.api.Do(ctx, http.MethodPut, path, nil, map[string]string{"message": message}, nil)
}
