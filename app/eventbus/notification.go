package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
)

// Level is the severity shown to the operator.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a transient operator message.
type Notification struct {
	ID          string    `json:"id"`
	Level       Level     `json:"level"`
	Integration string    `json:"integration,omitempty"`
	Component   string    `json:"component,omitempty"`
	ButtonID    string    `json:"buttonId,omitempty"`
	RunID       string    `json:"runId,omitempty"`
	Message     string    `json:"message"`
	Error       string    `json:"error,omitempty"`
	At          time.Time `json:"at"`
}

// LogHandler writes notifications to logger.
func LogHandler(logger *slog.Logger) func(ctx context.Context, n Notification) error {
	return func(ctx context.Context, n Notification) error {
		level := slog.LevelInfo
		if n.Level == LevelError {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, n.Message,
			attr.ExtractCorrelationID(ctx),
			attr.String("integration", n.Integration),
			attr.String("component", n.Component),
			attr.RunID(n.RunID),
			attr.String("error", n.Error),
		)
		return nil
	}
}

// Feed keeps the most recent notifications for polling clients.
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	size  int
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 100
	}
	return &Feed{size: size}
}

// Handle appends n, dropping the oldest entry once full.
func (f *Feed) Handle(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.size {
		f.items = append([]Notification(nil), f.items[len(f.items)-f.size:]...)
	}
	return nil
}

// Since returns notifications newer than t, oldest first.
func (f *Feed) Since(t time.Time) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		if n.At.After(t) {
			out = append(out, n)
		}
	}
	return out
}
