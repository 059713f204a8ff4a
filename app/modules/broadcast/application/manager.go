package broadcastservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/metrics"
	"github.com/Black-And-White-Club/marathon-manager/pkg/obsws"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SettingsSource supplies the current OBS connection settings.
type SettingsSource interface {
	OBS() settingsdomain.OBSSettings
}

// AdapterFactory matches obsws.New.
type AdapterFactory func(version obsws.Version, opts ...obsws.Option) (obsws.Adapter, error)

// Manager holds the process-wide adapter. Connects and version switches are
// serialized by connMu; readiness is tracked from lifecycle events.
// adapter and address are written with both locks held, so readers that
// must not wait for a dial only take stateMu.
type Manager struct {
	settings SettingsSource
	factory  AdapterFactory
	logger   *slog.Logger
	metrics  metrics.OperationMetrics
	tracer   trace.Tracer

	connMu sync.Mutex

	stateMu   sync.RWMutex
	adapter   obsws.Adapter
	address   string
	ready     bool
	lastErr   error
	changedAt time.Time
}

// NewManager creates a Manager. A nil factory uses obsws.New.
func NewManager(
	settings SettingsSource,
	factory AdapterFactory,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
) *Manager {
	if factory == nil {
		factory = obsws.New
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		settings: settings,
		factory:  factory,
		logger:   logger,
		metrics:  m,
		tracer:   tracer,
	}
}

// Connect connects with the stored settings. When the stored protocol
// version differs from the live adapter's, the old adapter is torn down
// first: listeners removed, then disconnected.
func (m *Manager) Connect(ctx context.Context) error {
	settings := m.settings.OBS()
	version, err := obsws.ParseVersion(settings.Version)
	if err != nil {
		return &obsws.ConnectionError{Address: settings.Address, Err: err}
	}

	m.connMu.Lock()
	defer m.connMu.Unlock()

	if m.adapter != nil && m.adapter.Version() != version {
		m.logger.InfoContext(ctx, "Switching obs-websocket version",
			attr.String("from", string(m.adapter.Version())),
			attr.String("to", string(version)),
		)
		m.teardownLocked()
	}
	if m.adapter == nil {
		adapter, err := m.factory(version, obsws.WithLogger(m.logger))
		if err != nil {
			return &obsws.ConnectionError{Address: settings.Address, Err: err}
		}
		m.track(adapter)
		m.stateMu.Lock()
		m.adapter = adapter
		m.stateMu.Unlock()
	}
	m.stateMu.Lock()
	m.address = settings.Address
	m.stateMu.Unlock()

	start := time.Now()
	err = m.adapter.Connect(ctx, settings.Address, settings.Password, settings.Secure)
	if m.metrics != nil {
		m.metrics.RecordOperationDuration(ctx, "Connect", "BroadcastManager", time.Since(start))
	}
	if err != nil {
		m.setLastErr(err)
		m.logger.WarnContext(ctx, "OBS connection failed",
			attr.String("address", settings.Address),
			attr.Error(err),
		)
		return err
	}
	return nil
}

// Reconnect drops the live connection, if any, and connects again.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.Disconnect()
	return m.Connect(ctx)
}

// Disconnect closes the live connection but keeps the adapter.
func (m *Manager) Disconnect() {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	if m.adapter != nil {
		m.adapter.Disconnect()
	}
}

// Close tears the adapter down.
func (m *Manager) Close() error {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	m.teardownLocked()
	return nil
}

// Status never waits for an in-progress connect.
func (m *Manager) Status() Status {
	m.stateMu.RLock()
	adapter := m.adapter
	st := Status{
		State:     obsws.StateDisconnected.String(),
		Ready:     m.ready,
		Address:   m.address,
		ChangedAt: m.changedAt,
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
	}
	m.stateMu.RUnlock()

	if adapter != nil {
		st.State = adapter.State().String()
		st.Version = string(adapter.Version())
	}
	return st
}

// Send issues one request on the live connection.
func (m *Manager) Send(ctx context.Context, requestType string, requestData map[string]any) (map[string]any, error) {
	adapter, err := m.readyAdapter()
	if err != nil {
		return nil, err
	}
	return adapter.Send(ctx, requestType, requestData)
}

// SendBatch sends requests as one batch. It fails with a ConnectionError
// wrapping ErrNotReady until OBS has identified the connection.
func (m *Manager) SendBatch(ctx context.Context, requests []obsws.Request) (*obsws.BatchResult, error) {
	if m.tracer != nil {
		var span trace.Span
		ctx, span = m.tracer.Start(ctx, "BroadcastManager.SendBatch", trace.WithAttributes(
			attribute.Int("requests", len(requests)),
		))
		defer span.End()
	}

	adapter, err := m.readyAdapter()
	if err != nil {
		return nil, err
	}
	res, err := adapter.SendBatch(ctx, requests)
	if err != nil {
		m.logger.WarnContext(ctx, "OBS batch reported failures", attr.Error(err))
	}
	return res, err
}

func (m *Manager) readyAdapter() (obsws.Adapter, error) {
	m.stateMu.RLock()
	adapter, address, ready := m.adapter, m.address, m.ready
	m.stateMu.RUnlock()

	if adapter == nil || !ready {
		return nil, &obsws.ConnectionError{Address: address, Err: ErrNotReady}
	}
	return adapter, nil
}

// track subscribes the readiness tracker to adapter's lifecycle events.
func (m *Manager) track(adapter obsws.Adapter) {
	version := string(adapter.Version())
	for _, ev := range []obsws.Event{
		obsws.EventConnectionOpened,
		obsws.EventAuthenticated,
		obsws.EventIdentified,
		obsws.EventConnectionClosed,
		obsws.EventError,
	} {
		adapter.On(ev, func(ev obsws.Event, err error) {
			m.stateMu.Lock()
			switch ev {
			case obsws.EventIdentified:
				m.ready = true
				m.lastErr = nil
			case obsws.EventConnectionClosed:
				m.ready = false
			case obsws.EventError:
				m.lastErr = err
			}
			m.changedAt = time.Now()
			m.stateMu.Unlock()

			m.logger.Debug("obs lifecycle event",
				attr.String("event", string(ev)),
				attr.String("version", version),
			)
		})
	}
}

func (m *Manager) teardownLocked() {
	if m.adapter == nil {
		return
	}
	m.adapter.RemoveAllListeners()
	m.adapter.Disconnect()

	m.stateMu.Lock()
	m.adapter = nil
	m.ready = false
	m.changedAt = time.Now()
	m.stateMu.Unlock()
}

func (m *Manager) setLastErr(err error) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.lastErr = err
	m.changedAt = time.Now()
}

// OnSettingsChanged reconnects in the background after the OBS settings
// change.
func (m *Manager) OnSettingsChanged(ctx context.Context, _ settingsdomain.OBSSettings) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := m.Reconnect(ctx); err != nil {
			m.logger.WarnContext(ctx, "Reconnect after settings change failed", attr.Error(err))
		}
	}()
}

var _ Service = (*Manager)(nil)

func (s Status) String() string {
	return fmt.Sprintf("%s (%s %s)", s.State, s.Version, s.Address)
}
