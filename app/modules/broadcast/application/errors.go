package broadcastservice

import "errors"

// ErrNotReady is wrapped in an *obsws.ConnectionError when a batch is sent
// before OBS has identified the connection.
var ErrNotReady = errors.New("broadcast software is not ready")
