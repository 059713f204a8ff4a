package settingsservice

import "errors"

// ErrNotConnected is returned by a token store holding no token.
var ErrNotConnected = errors.New("integration is not connected")
