// Package obsws controls OBS Studio over obs-websocket.
//
// Two wire protocols exist: the legacy 4.x protocol and the 5.x protocol.
// New selects one once; callers then use the same Adapter surface and the
// same lifecycle events regardless of which one is active.
package obsws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Version names a wire protocol.
type Version string

const (
	V4 Version = "v4"
	V5 Version = "v5"
)

// ParseVersion accepts "v4", "4", "v5", "5"; empty means V5.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "", "v5", "5":
		return V5, nil
	case "v4", "4":
		return V4, nil
	}
	return "", fmt.Errorf("unknown obs-websocket version %q", s)
}

// Event is a protocol-independent lifecycle event.
type Event string

const (
	EventConnectionOpened Event = "connection-opened"
	EventAuthenticated    Event = "authenticated"
	EventIdentified       Event = "identified"
	EventConnectionClosed Event = "connection-closed"
	EventError            Event = "error"
)

// Listener receives lifecycle events. err is set only for EventError.
type Listener func(ev Event, err error)

// State is the connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	default:
		return "disconnected"
	}
}

// Request is one RPC in 5.x vocabulary.
type Request struct {
	RequestType string         `json:"requestType"`
	RequestData map[string]any `json:"requestData,omitempty"`
}

// RequestResult is the outcome of one request inside a batch.
type RequestResult struct {
	RequestType string
	Success     bool
	Code        int
	Comment     string
	Data        map[string]any
}

// BatchResult collects per-request outcomes. Skipped lists request types
// the active protocol cannot express; they were not sent.
type BatchResult struct {
	Results []RequestResult
	Skipped []string
}

// Adapter is the capability surface shared by both protocols.
type Adapter interface {
	Connect(ctx context.Context, address, password string, secure bool) error
	Send(ctx context.Context, requestType string, requestData map[string]any) (map[string]any, error)
	SendBatch(ctx context.Context, requests []Request) (*BatchResult, error)
	Disconnect()
	On(ev Event, fn Listener) (remove func())
	RemoveAllListeners()
	State() State
	Version() Version
}

var (
	ErrAuthFailed   = errors.New("authentication failed")
	ErrNotConnected = errors.New("not connected")
)

// ConnectionError reports a failure to reach or authenticate with OBS.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("obs connection: %v", e.Err)
	}
	return fmt.Sprintf("obs connection to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RequestError is a request OBS answered with a failure status.
type RequestError struct {
	RequestType string
	Code        int
	Comment     string
}

func (e *RequestError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("obs request %s failed (%d): %s", e.RequestType, e.Code, e.Comment)
	}
	return fmt.Sprintf("obs request %s failed: %s", e.RequestType, e.Comment)
}

// Option configures an Adapter.
type Option func(*session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithDialer(d *websocket.Dialer) Option {
	return func(s *session) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithRequestTimeout bounds handshakes and each request when ctx has no deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New builds an Adapter speaking version.
func New(version Version, opts ...Option) (Adapter, error) {
	s := newSession(opts...)
	switch version {
	case V5:
		return &v5Adapter{session: s}, nil
	case V4:
		return &v4Adapter{session: s}, nil
	}
	return nil, fmt.Errorf("unknown obs-websocket version %q", version)
}
