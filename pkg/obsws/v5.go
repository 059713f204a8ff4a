package obsws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
)

const (
	opHello                = 0
	opIdentify             = 1
	opIdentified           = 2
	opEvent                = 5
	opRequest              = 6
	opRequestResponse      = 7
	opRequestBatch         = 8
	opRequestBatchResponse = 9

	closeAuthenticationFailed = 4009
	rpcVersion                = 1
)

type v5Inbound struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type v5Outbound struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type v5Hello struct {
	RPCVersion     int `json:"rpcVersion"`
	Authentication *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication,omitempty"`
}

type v5Identify struct {
	RPCVersion     int    `json:"rpcVersion"`
	Authentication string `json:"authentication,omitempty"`
}

type v5Status struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment"`
}

type v5Response struct {
	RequestType   string         `json:"requestType"`
	RequestID     string         `json:"requestId"`
	RequestStatus v5Status       `json:"requestStatus"`
	ResponseData  map[string]any `json:"responseData"`
}

type v5BatchResponse struct {
	RequestID string       `json:"requestId"`
	Results   []v5Response `json:"results"`
}

// v5Adapter speaks obs-websocket 5.x.
type v5Adapter struct {
	*session
}

func (a *v5Adapter) Version() Version { return V5 }

func (a *v5Adapter) Connect(ctx context.Context, address, password string, secure bool) error {
	a.Disconnect()

	conn, err := a.dial(ctx, address, secure)
	if err != nil {
		return err
	}
	if err := a.identify(ctx, conn, password); err != nil {
		_ = conn.Close()
		return a.connectFailed(address, err, true)
	}

	a.start(conn, a.route)
	a.logger.InfoContext(ctx, "obs websocket identified", slog.String("version", string(V5)))
	a.events.emit(EventAuthenticated, nil)
	a.events.emit(EventIdentified, nil)
	return nil
}

// identify runs Hello -> Identify -> Identified.
func (a *v5Adapter) identify(ctx context.Context, conn *websocket.Conn, password string) error {
	var msg v5Inbound
	if err := a.readHandshake(ctx, conn, &msg); err != nil {
		return handshakeErr(err)
	}
	if msg.Op != opHello {
		return fmt.Errorf("expected Hello, got op %d", msg.Op)
	}
	var hello v5Hello
	if err := json.Unmarshal(msg.D, &hello); err != nil {
		return fmt.Errorf("decode Hello: %w", err)
	}

	identify := v5Identify{RPCVersion: rpcVersion}
	if hello.Authentication != nil {
		identify.Authentication = authResponse(password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}
	if err := conn.WriteJSON(v5Outbound{Op: opIdentify, D: identify}); err != nil {
		return fmt.Errorf("send Identify: %w", err)
	}

	if err := a.readHandshake(ctx, conn, &msg); err != nil {
		return handshakeErr(err)
	}
	if msg.Op != opIdentified {
		return fmt.Errorf("expected Identified, got op %d", msg.Op)
	}
	return nil
}

func handshakeErr(err error) error {
	if websocket.IsCloseError(err, closeAuthenticationFailed) {
		return ErrAuthFailed
	}
	return err
}

func (a *v5Adapter) route(l *link, data []byte) {
	var msg v5Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		a.logger.Warn("obs websocket sent undecodable message", slog.String("error", err.Error()))
		return
	}
	switch msg.Op {
	case opRequestResponse, opRequestBatchResponse:
		var head struct {
			RequestID string `json:"requestId"`
		}
		if err := json.Unmarshal(msg.D, &head); err != nil {
			return
		}
		l.resolve(head.RequestID, response{raw: msg.D})
	case opEvent:
		var ev struct {
			EventType string `json:"eventType"`
		}
		_ = json.Unmarshal(msg.D, &ev)
		a.logger.Debug("obs event", slog.String("event_type", ev.EventType))
	}
}

func (a *v5Adapter) Send(ctx context.Context, requestType string, requestData map[string]any) (map[string]any, error) {
	l, err := a.current()
	if err != nil {
		return nil, err
	}
	id := a.nextID()
	d := map[string]any{"requestType": requestType, "requestId": id}
	if requestData != nil {
		d["requestData"] = requestData
	}
	raw, err := a.call(ctx, l, id, v5Outbound{Op: opRequest, D: d})
	if err != nil {
		return nil, err
	}
	var resp v5Response
	if err := decodeResponse(raw, &resp); err != nil {
		return nil, err
	}
	if !resp.RequestStatus.Result {
		return nil, &RequestError{RequestType: requestType, Code: resp.RequestStatus.Code, Comment: resp.RequestStatus.Comment}
	}
	return resp.ResponseData, nil
}

// SendBatch sends every request in one RequestBatch. Failed requests do not
// halt the batch; they are returned joined as RequestErrors.
func (a *v5Adapter) SendBatch(ctx context.Context, requests []Request) (*BatchResult, error) {
	result := &BatchResult{}
	if len(requests) == 0 {
		return result, nil
	}
	l, err := a.current()
	if err != nil {
		return nil, err
	}
	id := a.nextID()
	d := map[string]any{
		"requestId":     id,
		"haltOnFailure": false,
		"executionType": 0,
		"requests":      requests,
	}
	raw, err := a.call(ctx, l, id, v5Outbound{Op: opRequestBatch, D: d})
	if err != nil {
		return nil, err
	}
	var resp v5BatchResponse
	if err := decodeResponse(raw, &resp); err != nil {
		return nil, err
	}

	var errs []error
	for _, r := range resp.Results {
		result.Results = append(result.Results, RequestResult{
			RequestType: r.RequestType,
			Success:     r.RequestStatus.Result,
			Code:        r.RequestStatus.Code,
			Comment:     r.RequestStatus.Comment,
			Data:        r.ResponseData,
		})
		if !r.RequestStatus.Result {
			errs = append(errs, &RequestError{RequestType: r.RequestType, Code: r.RequestStatus.Code, Comment: r.RequestStatus.Comment})
		}
	}
	return result, errors.Join(errs...)
}

func decodeResponse(raw []byte, v any) error {
	if len(raw) == 0 {
		return errors.New("empty response")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
