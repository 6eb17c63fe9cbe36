package wsclient

import "errors"

// ErrNotConnected is returned when sending without an open connection.
var ErrNotConnected = errors.New("wsclient: not connected")
