package obsws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const defaultTimeout = 10 * time.Second

type response struct {
	raw []byte
	err error
}

// link is one live socket. It is discarded on close; reconnecting makes a new one.
type link struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan response

	done chan struct{}
	once sync.Once
}

func (l *link) write(v any) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.conn.WriteJSON(v)
}

func (l *link) register(id string) chan response {
	ch := make(chan response, 1)
	l.mu.Lock()
	l.pending[id] = ch
	l.mu.Unlock()
	return ch
}

func (l *link) forget(id string) {
	l.mu.Lock()
	delete(l.pending, id)
	l.mu.Unlock()
}

func (l *link) resolve(id string, r response) bool {
	l.mu.Lock()
	ch, ok := l.pending[id]
	delete(l.pending, id)
	l.mu.Unlock()
	if ok {
		ch <- r
	}
	return ok
}

func (l *link) failAll(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.pending {
		ch <- response{err: err}
		delete(l.pending, id)
	}
}

// session holds what both protocol strategies share: dialing, the read loop,
// request correlation, state and listeners.
type session struct {
	logger  *slog.Logger
	dialer  *websocket.Dialer
	timeout time.Duration
	events  *emitter
	state   atomic.Int32
	seq     atomic.Uint64

	mu   sync.Mutex
	link *link
}

func newSession(opts ...Option) *session {
	s := &session{
		logger:  slog.Default(),
		dialer:  websocket.DefaultDialer,
		timeout: defaultTimeout,
		events:  newEmitter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *session) State() State { return State(s.state.Load()) }

func (s *session) setState(st State) { s.state.Store(int32(st)) }

func (s *session) On(ev Event, fn Listener) func() { return s.events.on(ev, fn) }

func (s *session) RemoveAllListeners() { s.events.removeAll() }

func (s *session) nextID() string {
	return strconv.FormatUint(s.seq.Add(1), 10)
}

// endpoint accepts "host:port" or a full ws:// / wss:// URL.
func endpoint(address string, secure bool) (string, error) {
	if strings.Contains(address, "://") {
		u, err := url.Parse(address)
		if err != nil {
			return "", err
		}
		return u.String(), nil
	}
	if address == "" {
		return "", errors.New("address is empty")
	}
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: address}).String(), nil
}

func (s *session) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(s.timeout)
}

// dial opens the socket and emits connection-opened.
func (s *session) dial(ctx context.Context, address string, secure bool) (*websocket.Conn, error) {
	s.setState(StateConnecting)
	target, err := endpoint(address, secure)
	if err != nil {
		return nil, s.connectFailed(address, err, false)
	}
	conn, _, err := s.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, s.connectFailed(address, err, false)
	}
	s.logger.InfoContext(ctx, "obs websocket opened", slog.String("address", target))
	s.events.emit(EventConnectionOpened, nil)
	return conn, nil
}

// connectFailed resets state and notifies listeners about a failed connect.
func (s *session) connectFailed(address string, err error, opened bool) error {
	s.setState(StateDisconnected)
	connErr := &ConnectionError{Address: address, Err: err}
	s.events.emit(EventError, connErr)
	if opened {
		s.events.emit(EventConnectionClosed, nil)
	}
	return connErr
}

// start installs conn as the live link and begins reading.
func (s *session) start(conn *websocket.Conn, route func(l *link, data []byte)) {
	l := &link{
		conn:    conn,
		pending: make(map[string]chan response),
		done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.link = l
	s.mu.Unlock()
	s.setState(StateReady)
	go s.readLoop(l, route)
}

func (s *session) readLoop(l *link, route func(l *link, data []byte)) {
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-l.done:
				return
			default:
			}
			s.shutdown(l, err)
			return
		}
		route(l, data)
	}
}

// shutdown closes l once. cause is nil for a requested disconnect.
func (s *session) shutdown(l *link, cause error) {
	l.once.Do(func() {
		close(l.done)
		_ = l.conn.Close()

		failure := cause
		if failure == nil {
			failure = ErrNotConnected
		}
		l.failAll(failure)

		s.mu.Lock()
		if s.link == l {
			s.link = nil
			s.setState(StateDisconnected)
		}
		s.mu.Unlock()

		if cause != nil && !websocket.IsCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			s.logger.Warn("obs websocket closed unexpectedly", slog.String("error", cause.Error()))
			s.events.emit(EventError, &ConnectionError{Err: cause})
		}
		s.events.emit(EventConnectionClosed, nil)
	})
}

// Disconnect closes the live link, if any. Safe to call repeatedly.
func (s *session) Disconnect() {
	s.mu.Lock()
	l := s.link
	s.mu.Unlock()
	if l == nil {
		s.setState(StateDisconnected)
		return
	}
	l.writeMu.Lock()
	_ = l.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	l.writeMu.Unlock()
	s.shutdown(l, nil)
}

func (s *session) current() (*link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link == nil || s.State() != StateReady {
		return nil, ErrNotConnected
	}
	return s.link, nil
}

// call writes msg and waits for the response correlated by id.
func (s *session) call(ctx context.Context, l *link, id string, msg any) ([]byte, error) {
	ch := l.register(id)
	if err := l.write(msg); err != nil {
		l.forget(id)
		return nil, fmt.Errorf("write request: %w", err)
	}

	timer := time.NewTimer(time.Until(s.deadline(ctx)))
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.raw, r.err
	case <-ctx.Done():
		l.forget(id)
		return nil, ctx.Err()
	case <-timer.C:
		l.forget(id)
		return nil, fmt.Errorf("request %s timed out", id)
	case <-l.done:
		l.forget(id)
		return nil, ErrNotConnected
	}
}

// readHandshake reads one JSON message before the read loop starts.
func (s *session) readHandshake(ctx context.Context, conn *websocket.Conn, v any) error {
	if err := conn.SetReadDeadline(s.deadline(ctx)); err != nil {
		return err
	}
	defer conn.SetReadDeadline(time.Time{})
	return conn.ReadJSON(v)
}
