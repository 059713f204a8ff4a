package obsws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
)

// legacyRenames maps a 5.x request type to its 4.x name and field renames.
var legacyRenames = map[string]struct {
	requestType string
	fields      map[string]string
}{
	"SetInputSettings": {
		requestType: "SetSourceSettings",
		fields:      map[string]string{"inputName": "sourceName", "inputSettings": "sourceSettings", "inputKind": "sourceType"},
	},
	"SetCurrentProgramScene": {
		requestType: "SetCurrentScene",
		fields:      map[string]string{"sceneName": "scene-name"},
	},
	"GetCurrentProgramScene": {
		requestType: "GetCurrentScene",
	},
	"GetSceneList": {
		requestType: "GetSceneList",
	},
	"GetVersion": {
		requestType: "GetVersion",
	},
}

// TranslateLegacy rewrites a 5.x request into 4.x vocabulary. Fields without
// a rename are copied unchanged. ok is false for request types 4.x cannot express.
func TranslateLegacy(req Request) (requestType string, fields map[string]any, ok bool) {
	rename, ok := legacyRenames[req.RequestType]
	if !ok {
		return "", nil, false
	}
	fields = make(map[string]any, len(req.RequestData))
	for k, v := range req.RequestData {
		if to, renamed := rename.fields[k]; renamed {
			k = to
		}
		fields[k] = v
	}
	return rename.requestType, fields, true
}

// v4Adapter speaks the legacy obs-websocket 4.x protocol.
type v4Adapter struct {
	*session
}

func (a *v4Adapter) Version() Version { return V4 }

func (a *v4Adapter) Connect(ctx context.Context, address, password string, secure bool) error {
	a.Disconnect()

	conn, err := a.dial(ctx, address, secure)
	if err != nil {
		return err
	}
	if err := a.authenticate(ctx, conn, password); err != nil {
		_ = conn.Close()
		return a.connectFailed(address, err, true)
	}

	a.start(conn, a.route)
	a.logger.InfoContext(ctx, "obs websocket identified", slog.String("version", string(V4)))
	a.events.emit(EventAuthenticated, nil)
	// 4.x has no Identified step; readiness is reached after Authenticate.
	a.events.emit(EventIdentified, nil)
	return nil
}

func (a *v4Adapter) authenticate(ctx context.Context, conn *websocket.Conn, password string) error {
	required, err := a.handshakeCall(ctx, conn, "GetAuthRequired", nil)
	if err != nil {
		return err
	}
	if authRequired, _ := required["authRequired"].(bool); !authRequired {
		return nil
	}
	challenge, _ := required["challenge"].(string)
	salt, _ := required["salt"].(string)

	_, err = a.handshakeCall(ctx, conn, "Authenticate", map[string]any{
		"auth": authResponse(password, salt, challenge),
	})
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return ErrAuthFailed
	}
	return err
}

// handshakeCall performs one request synchronously, skipping unrelated messages.
func (a *v4Adapter) handshakeCall(ctx context.Context, conn *websocket.Conn, requestType string, fields map[string]any) (map[string]any, error) {
	id := a.nextID()
	if err := conn.WriteJSON(legacyMessage(id, requestType, fields)); err != nil {
		return nil, fmt.Errorf("send %s: %w", requestType, err)
	}
	for {
		var msg map[string]any
		if err := a.readHandshake(ctx, conn, &msg); err != nil {
			return nil, err
		}
		if msgID, _ := msg["message-id"].(string); msgID == id {
			return legacyResult(requestType, msg)
		}
	}
}

func legacyMessage(id, requestType string, fields map[string]any) map[string]any {
	msg := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		msg[k] = v
	}
	msg["request-type"] = requestType
	msg["message-id"] = id
	return msg
}

func legacyResult(requestType string, msg map[string]any) (map[string]any, error) {
	if status, _ := msg["status"].(string); status == "error" {
		comment, _ := msg["error"].(string)
		return nil, &RequestError{RequestType: requestType, Comment: comment}
	}
	delete(msg, "status")
	delete(msg, "message-id")
	return msg, nil
}

func (a *v4Adapter) route(l *link, data []byte) {
	var head struct {
		MessageID  string `json:"message-id"`
		UpdateType string `json:"update-type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		a.logger.Warn("obs websocket sent undecodable message", slog.String("error", err.Error()))
		return
	}
	if head.MessageID != "" {
		l.resolve(head.MessageID, response{raw: data})
		return
	}
	if head.UpdateType != "" {
		a.logger.Debug("obs event", slog.String("event_type", head.UpdateType))
	}
}

// Send issues one request in 4.x vocabulary; requestData is flattened into the message.
func (a *v4Adapter) Send(ctx context.Context, requestType string, requestData map[string]any) (map[string]any, error) {
	l, err := a.current()
	if err != nil {
		return nil, err
	}
	return a.send(ctx, l, requestType, requestData)
}

func (a *v4Adapter) send(ctx context.Context, l *link, requestType string, fields map[string]any) (map[string]any, error) {
	id := a.nextID()
	raw, err := a.call(ctx, l, id, legacyMessage(id, requestType, fields))
	if err != nil {
		return nil, err
	}
	var msg map[string]any
	if err := decodeResponse(raw, &msg); err != nil {
		return nil, err
	}
	return legacyResult(requestType, msg)
}

// SendBatch emulates a batch with sequential sends. Requests TranslateLegacy
// cannot express are skipped and listed in BatchResult.Skipped.
func (a *v4Adapter) SendBatch(ctx context.Context, requests []Request) (*BatchResult, error) {
	result := &BatchResult{}
	if len(requests) == 0 {
		return result, nil
	}
	l, err := a.current()
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, req := range requests {
		requestType, fields, ok := TranslateLegacy(req)
		if !ok {
			a.logger.WarnContext(ctx, "obs request has no 4.x equivalent; skipped",
				slog.String("request_type", req.RequestType))
			result.Skipped = append(result.Skipped, req.RequestType)
			continue
		}
		data, err := a.send(ctx, l, requestType, fields)
		rr := RequestResult{RequestType: req.RequestType, Success: err == nil, Data: data}
		if err != nil {
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				return result, err
			}
			rr.Comment = reqErr.Comment
			errs = append(errs, err)
		}
		result.Results = append(result.Results, rr)
	}
	return result, errors.Join(errs...)
}
