package nightbotclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Black-And-White-Club/marathon-manager/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeTokens struct {
	token       string
	invalidated int
}

func (f *fakeTokens) Token() (*oauth2.Token, error) {
	if f.token == "" {
		return nil, errors.New("not connected")
	}
	return &oauth2.Token{AccessToken: f.token, TokenType: "Bearer"}, nil
}

func (f *fakeTokens) Invalidate(context.Context) error {
	f.invalidated++
	f.token = ""
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/1/commands", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"_total":1,"status":200,"commands":[{"_id":"abc","name":"!runner","message":"old"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/1", &fakeTokens{token: "tok"}, discardLogger())
	cmds, err := c.ListCommands(context.Background())

	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, Command{ID: "abc", Name: "!runner", Message: "old"}, cmds[0])
}

func TestUpdateCommand(t *testing.T) {
	tests := []struct {
		name            string
		id              string
		status          int
		wantErr         error
		wantCalled      bool
		wantInvalidated int
	}{
		{name: "updates message", id: "abc", status: http.StatusOK, wantCalled: true},
		{name: "empty id", id: "", wantErr: ErrCommandIDRequired},
		{name: "rejected token", id: "abc", status: http.StatusUnauthorized, wantErr: apiclient.ErrUnauthorized, wantCalled: true, wantInvalidated: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var body map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/commands/abc", r.URL.Path)
				_ = json.NewDecoder(r.Body).Decode(&body)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			tokens := &fakeTokens{token: "tok"}
			err := New(srv.URL, tokens, discardLogger()).UpdateCommand(context.Background(), tt.id, "Runner: twitch.tv/a")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, map[string]string{"message": "Runner: twitch.tv/a"}, body)
			}
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantInvalidated, tokens.invalidated)
		})
	}
}
