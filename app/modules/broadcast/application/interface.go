package broadcastservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/marathon-manager/pkg/obsws"
)

// Status is a snapshot of the OBS connection for operators.
type Status struct {
	State     string    `json:"state"`
	Ready     bool      `json:"ready"`
	Version   string    `json:"version,omitempty"`
	Address   string    `json:"address,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// Service owns the single OBS connection of the process.
type Service interface {
	Connect(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Disconnect()
	Status() Status
	Send(ctx context.Context, requestType string, requestData map[string]any) (map[string]any, error)
	SendBatch(ctx context.Context, requests []obsws.Request) (*obsws.BatchResult, error)
	Close() error
}
