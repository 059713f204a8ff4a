package obsws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const (
	testSalt      = "lM1GncleQOaCu9lT1yeUZhFYnqhsLLP1G5lAGo3ixaI="
	testChallenge = "+IxH4CnCiqpX1rM9scsNynZzbOe4KhDeYcTNS3PDaeY="
)

// fakeOBS is an in-process obs-websocket server for either protocol.
type fakeOBS struct {
	version  Version
	password string
	server   *httptest.Server

	mu       sync.Mutex
	received []map[string]any
	failType string
	conns    []*websocket.Conn
}

func newFakeOBS(t *testing.T, version Version, password string) *fakeOBS {
	t.Helper()
	f := &fakeOBS{version: version, password: password}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()
		if version == V5 {
			f.serveV5(conn)
		} else {
			f.serveV4(conn)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOBS) address() string {
	return strings.TrimPrefix(f.server.URL, "http://")
}

// drop closes every server-side socket without a close handshake.
func (f *fakeOBS) drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
}

func (f *fakeOBS) record(msg map[string]any) {
	f.mu.Lock()
	f.received = append(f.received, msg)
	f.mu.Unlock()
}

func (f *fakeOBS) messages() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.received...)
}

func (f *fakeOBS) failRequestType(requestType string) {
	f.mu.Lock()
	f.failType = requestType
	f.mu.Unlock()
}

func (f *fakeOBS) shouldFail(requestType string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failType != "" && f.failType == requestType
}

func (f *fakeOBS) serveV5(conn *websocket.Conn) {
	hello := map[string]any{"obsWebSocketVersion": "5.4.2", "rpcVersion": 1}
	if f.password != "" {
		hello["authentication"] = map[string]any{"challenge": testChallenge, "salt": testSalt}
	}
	if err := conn.WriteJSON(map[string]any{"op": opHello, "d": hello}); err != nil {
		return
	}

	var identify struct {
		Op int `json:"op"`
		D  struct {
			Authentication string `json:"authentication"`
		} `json:"d"`
	}
	if err := conn.ReadJSON(&identify); err != nil {
		return
	}
	if f.password != "" && identify.D.Authentication != authResponse(f.password, testSalt, testChallenge) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeAuthenticationFailed, "Authentication failed."),
			time.Now().Add(time.Second))
		return
	}
	if err := conn.WriteJSON(map[string]any{"op": opIdentified, "d": map[string]any{"negotiatedRpcVersion": 1}}); err != nil {
		return
	}

	for {
		var msg struct {
			Op int            `json:"op"`
			D  map[string]any `json:"d"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		f.record(map[string]any{"op": msg.Op, "d": msg.D})

		switch msg.Op {
		case opRequest:
			requestType, _ := msg.D["requestType"].(string)
			_ = conn.WriteJSON(map[string]any{"op": opRequestResponse, "d": f.v5Result(requestType, msg.D["requestId"])})
		case opRequestBatch:
			requests, _ := msg.D["requests"].([]any)
			results := make([]any, 0, len(requests))
			for _, r := range requests {
				req, _ := r.(map[string]any)
				requestType, _ := req["requestType"].(string)
				results = append(results, f.v5Result(requestType, nil))
			}
			_ = conn.WriteJSON(map[string]any{"op": opRequestBatchResponse, "d": map[string]any{
				"requestId": msg.D["requestId"],
				"results":   results,
			}})
		}
	}
}

func (f *fakeOBS) v5Result(requestType string, requestID any) map[string]any {
	res := map[string]any{
		"requestType":   requestType,
		"requestStatus": map[string]any{"result": true, "code": 100},
		"responseData":  map[string]any{"obsVersion": "30.0.0"},
	}
	if requestID != nil {
		res["requestId"] = requestID
	}
	if f.shouldFail(requestType) {
		res["requestStatus"] = map[string]any{"result": false, "code": 600, "comment": "No source was found"}
		delete(res, "responseData")
	}
	return res
}

func (f *fakeOBS) serveV4(conn *websocket.Conn) {
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		f.record(msg)

		reply := map[string]any{"message-id": msg["message-id"], "status": "ok"}
		requestType, _ := msg["request-type"].(string)
		switch requestType {
		case "GetAuthRequired":
			reply["authRequired"] = f.password != ""
			if f.password != "" {
				reply["challenge"] = testChallenge
				reply["salt"] = testSalt
			}
		case "Authenticate":
			if msg["auth"] != authResponse(f.password, testSalt, testChallenge) {
				reply["status"] = "error"
				reply["error"] = "Authentication Failed."
			}
		default:
			if f.shouldFail(requestType) {
				reply["status"] = "error"
				reply["error"] = "specified source doesn't exist"
			}
		}
		// An unsolicited event between replies must not confuse correlation.
		_ = conn.WriteJSON(map[string]any{"update-type": "Heartbeat"})
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

// recorder captures lifecycle events in order.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(a Adapter) {
	for _, ev := range []Event{EventConnectionOpened, EventAuthenticated, EventIdentified, EventConnectionClosed, EventError} {
		a.On(ev, func(ev Event, _ error) {
			r.mu.Lock()
			r.events = append(r.events, ev)
			r.mu.Unlock()
		})
	}
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) count(ev Event) int {
	n := 0
	for _, e := range r.snapshot() {
		if e == ev {
			n++
		}
	}
	return n
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}
