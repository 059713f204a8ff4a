package broadcastservice

import (
	"context"
	"sync"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/Black-And-White-Club/marathon-manager/pkg/obsws"
)

// ------------------------
// Fake Adapter
// ------------------------

// FakeAdapter emits lifecycle events the way the real adapters do.
type FakeAdapter struct {
	mu        sync.Mutex
	trace     []string
	version   obsws.Version
	state     obsws.State
	listeners map[obsws.Event][]obsws.Listener

	ConnectFunc   func(ctx context.Context, address, password string, secure bool) error
	SendBatchFunc func(ctx context.Context, requests []obsws.Request) (*obsws.BatchResult, error)
}

func NewFakeAdapter(version obsws.Version) *FakeAdapter {
	return &FakeAdapter{
		version:   version,
		trace:     []string{},
		listeners: map[obsws.Event][]obsws.Listener{},
	}
}

func (f *FakeAdapter) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeAdapter) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeAdapter) emit(ev obsws.Event, err error) {
	f.mu.Lock()
	ls := append([]obsws.Listener(nil), f.listeners[ev]...)
	f.mu.Unlock()
	for _, fn := range ls {
		fn(ev, err)
	}
}

func (f *FakeAdapter) Connect(ctx context.Context, address, password string, secure bool) error {
	f.record("Connect " + address)
	if f.ConnectFunc != nil {
		if err := f.ConnectFunc(ctx, address, password, secure); err != nil {
			f.emit(obsws.EventError, err)
			return err
		}
	}
	f.state = obsws.StateReady
	f.emit(obsws.EventConnectionOpened, nil)
	f.emit(obsws.EventAuthenticated, nil)
	f.emit(obsws.EventIdentified, nil)
	return nil
}

func (f *FakeAdapter) Send(ctx context.Context, requestType string, requestData map[string]any) (map[string]any, error) {
	f.record("Send " + requestType)
	return map[string]any{"requestType": requestType}, nil
}

func (f *FakeAdapter) SendBatch(ctx context.Context, requests []obsws.Request) (*obsws.BatchResult, error) {
	f.record("SendBatch")
	if f.SendBatchFunc != nil {
		return f.SendBatchFunc(ctx, requests)
	}
	return &obsws.BatchResult{}, nil
}

func (f *FakeAdapter) Disconnect() {
	f.record("Disconnect")
	if f.state == obsws.StateDisconnected {
		return
	}
	f.state = obsws.StateDisconnected
	f.emit(obsws.EventConnectionClosed, nil)
}

func (f *FakeAdapter) On(ev obsws.Event, fn obsws.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners[ev] = append(f.listeners[ev], fn)
	return func() {}
}

func (f *FakeAdapter) RemoveAllListeners() {
	f.record("RemoveAllListeners")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = map[obsws.Event][]obsws.Listener{}
}

func (f *FakeAdapter) State() obsws.State     { return f.state }
func (f *FakeAdapter) Version() obsws.Version { return f.version }

// drop simulates OBS going away.
func (f *FakeAdapter) drop() {
	f.state = obsws.StateDisconnected
	f.emit(obsws.EventError, &obsws.ConnectionError{Err: context.Canceled})
	f.emit(obsws.EventConnectionClosed, nil)
}

// ------------------------
// Fake Settings
// ------------------------

type fakeSettings struct {
	mu  sync.Mutex
	obs settingsdomain.OBSSettings
}

func (f *fakeSettings) OBS() settingsdomain.OBSSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.obs
}

func (f *fakeSettings) set(s settingsdomain.OBSSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = s
}
